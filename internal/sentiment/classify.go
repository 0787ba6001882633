package sentiment

import "github.com/spacesedan/confessit/internal/models"

// Classify buckets a polarity score. Zero, NaN and anything outside [-1, 1]
// are Neutral.
func Classify(polarity float64) models.Sentiment {
	switch {
	case polarity > 0 && polarity <= 1:
		return models.SentimentPositive
	case polarity < 0 && polarity >= -1:
		return models.SentimentNegative
	default:
		return models.SentimentNeutral
	}
}

// Analyze scores text and classifies the result.
func Analyze(text string) (float64, models.Sentiment) {
	score := Score(text)
	return score, Classify(score)
}
