package processing

import (
	"strings"

	"github.com/spacesedan/confessit/internal/models"
)

// Summarize counts records per category and per sentiment and joins the text
// of each sentiment bucket with single spaces in input order. Every sentiment
// gets a BucketText entry, empty when no record carries that label.
func Summarize(results models.ResultSet) models.Summary {
	summary := models.NewSummary()
	summary.Total = len(results)

	buckets := make(map[models.Sentiment][]string, len(models.Sentiments))
	for _, record := range results {
		summary.ObserveCategory(record.Category)
		summary.ObserveSentiment(record.Sentiment)
		buckets[record.Sentiment] = append(buckets[record.Sentiment], record.Text)
	}

	for _, label := range models.Sentiments {
		summary.BucketText[label] = strings.Join(buckets[label], " ")
	}
	return summary
}
