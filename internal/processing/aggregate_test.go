package processing

import (
	"testing"

	"github.com/spacesedan/confessit/internal/models"
	"github.com/stretchr/testify/assert"
)

func record(text string, s models.Sentiment, c models.Category) models.AnalysisRecord {
	return models.AnalysisRecord{Text: text, Sentiment: s, Category: c}
}

func TestSummarize(t *testing.T) {
	results := models.ResultSet{
		record("a", models.SentimentPositive, models.CategoryRomance),
		record("b", models.SentimentNegative, models.CategoryRant),
		record("c", models.SentimentPositive, models.CategoryNone),
		record("d", models.SentimentNeutral, models.CategoryRomance),
	}

	summary := Summarize(results)

	assert.Equal(t, 4, summary.Total)
	assert.Equal(t, map[models.Category]int{
		models.CategoryRomance: 2,
		models.CategoryRant:    1,
		models.CategoryNone:    1,
	}, summary.ByCategory)
	assert.Equal(t, map[models.Sentiment]int{
		models.SentimentPositive: 2,
		models.SentimentNegative: 1,
		models.SentimentNeutral:  1,
	}, summary.BySentiment)

	assert.Equal(t, "a c", summary.BucketText[models.SentimentPositive])
	assert.Equal(t, "b", summary.BucketText[models.SentimentNegative])
	assert.Equal(t, "d", summary.BucketText[models.SentimentNeutral])

	assert.Equal(t, models.LabelCount{Label: string(models.CategoryRomance), Count: 2}, summary.CategoryCounts()[0])
}

func TestSummarize_PartitionsSumToTotal(t *testing.T) {
	input := []models.Confession{
		"I love Campus", "Rant about Studies", "meh", "Whistleblow: they cheat", "best day", "",
	}
	results := Analyze(input)
	summary := Summarize(results)

	categoryTotal := 0
	for _, n := range summary.ByCategory {
		categoryTotal += n
	}
	sentimentTotal := 0
	for _, n := range summary.BySentiment {
		sentimentTotal += n
	}

	assert.Equal(t, len(results), categoryTotal)
	assert.Equal(t, len(results), sentimentTotal)
}

func TestSummarize_EmptyBucketsAreExplicit(t *testing.T) {
	summary := Summarize(models.ResultSet{record("only neutral", models.SentimentNeutral, models.CategoryNone)})

	text, computed := summary.Text(models.SentimentPositive)
	assert.True(t, computed)
	assert.Empty(t, text)

	text, computed = summary.Text(models.SentimentNegative)
	assert.True(t, computed)
	assert.Empty(t, text)
}

func TestSummarize_Empty(t *testing.T) {
	summary := Summarize(nil)

	assert.Zero(t, summary.Total)
	assert.Empty(t, summary.ByCategory)
	assert.Empty(t, summary.BySentiment)
	assert.Empty(t, summary.CategoryCounts())
	for _, label := range models.Sentiments {
		text, computed := summary.Text(label)
		assert.True(t, computed)
		assert.Equal(t, "", text)
	}
}
