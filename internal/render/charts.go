package render

import (
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/spacesedan/confessit/internal/models"
	"github.com/spacesedan/confessit/internal/processing"
)

const (
	CLOUD_SIZE     = "800px"
	CHART_WIDTH    = "700px"
	CHART_HEIGHT   = "450px"
	CLOUD_MAX_WORD = 200
)

// CategoryPie shows the share of confessions per category, labelled with
// percentages.
func CategoryPie(summary models.Summary) *charts.Pie {
	items := make([]opts.PieData, 0, len(summary.ByCategory))
	for _, c := range summary.CategoryCounts() {
		items = append(items, opts.PieData{Name: c.Label, Value: c.Count})
	}

	pie := charts.NewPie()
	pie.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Pie Chart for Confession Category"}),
		charts.WithInitializationOpts(opts.Initialization{Width: CHART_WIDTH, Height: CHART_HEIGHT}),
	)
	pie.AddSeries("Category", items).
		SetSeriesOptions(charts.WithLabelOpts(opts.Label{Show: true, Formatter: "{b}: {d}%"}))
	return pie
}

// SentimentBar shows how many confessions fall into each sentiment label.
func SentimentBar(summary models.Summary) *charts.Bar {
	counts := summary.SentimentCounts()
	labels := make([]string, 0, len(counts))
	items := make([]opts.BarData, 0, len(counts))
	for _, c := range counts {
		labels = append(labels, c.Label)
		items = append(items, opts.BarData{Value: c.Count})
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Bar Chart for Negative and Positive Word Use"}),
		charts.WithInitializationOpts(opts.Initialization{Width: CHART_WIDTH, Height: CHART_HEIGHT}),
	)
	bar.SetXAxis(labels).AddSeries("Confessions", items)
	return bar
}

func WordCloud(title string, words []models.WordCount) *charts.WordCloud {
	items := make([]opts.WordCloudData, 0, len(words))
	for _, w := range words {
		items = append(items, opts.WordCloudData{Name: w.Word, Value: w.Count})
	}

	wc := charts.NewWordCloud()
	wc.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithInitializationOpts(opts.Initialization{Width: CLOUD_SIZE, Height: CLOUD_SIZE}),
	)
	wc.AddSeries("words", items)
	return wc
}

// BucketWords returns the word cloud input for one sentiment bucket, nil when
// the bucket has no usable words.
func BucketWords(summary models.Summary, label models.Sentiment) []models.WordCount {
	text, _ := summary.Text(label)
	if text == "" {
		return nil
	}
	return processing.WordFrequencies(text, processing.Stopwords, CLOUD_MAX_WORD)
}

// Dashboard assembles the category pie, the sentiment bar and the positive and
// negative word clouds. A cloud is left out when its bucket has no words.
func Dashboard(summary models.Summary) *components.Page {
	page := components.NewPage()
	page.AddCharts(CategoryPie(summary), SentimentBar(summary))

	if words := BucketWords(summary, models.SentimentPositive); len(words) > 0 {
		page.AddCharts(WordCloud("WordCloud for positive words", words))
	}
	if words := BucketWords(summary, models.SentimentNegative); len(words) > 0 {
		page.AddCharts(WordCloud("WordCloud for negative words", words))
	}
	return page
}

func RenderDashboard(w io.Writer, summary models.Summary) error {
	return Dashboard(summary).Render(w)
}
