package processing

import (
	"fmt"
	"log/slog"

	"github.com/spacesedan/confessit/internal/metrics"
	"github.com/spacesedan/confessit/internal/models"
	"github.com/spacesedan/confessit/internal/sentiment"
)

type Analyzer struct {
	score  func(string) float64
	tagger Tagger
}

type AnalyzerOption func(*Analyzer)

// WithScorer swaps the polarity function, mainly for tests.
func WithScorer(score func(string) float64) AnalyzerOption {
	return func(a *Analyzer) {
		a.score = score
	}
}

func WithTagger(tagger Tagger) AnalyzerOption {
	return func(a *Analyzer) {
		a.tagger = tagger
	}
}

func NewAnalyzer(opts ...AnalyzerOption) *Analyzer {
	a := &Analyzer{
		score:  sentiment.Score,
		tagger: NewTagger(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

var defaultAnalyzer = NewAnalyzer()

// Analyze runs the default analyzer over confessions.
func Analyze(confessions []models.Confession) models.ResultSet {
	return defaultAnalyzer.Analyze(confessions)
}

// Analyze returns one record per confession in input order. A confession that
// fails to analyze is kept as a neutral, uncategorized record.
func (a *Analyzer) Analyze(confessions []models.Confession) models.ResultSet {
	results := make(models.ResultSet, 0, len(confessions))
	for i, confession := range confessions {
		record, err := a.analyzeOne(confession)
		if err != nil {
			metrics.AnalysisRecoveredTotal.Inc()
			slog.Warn("[Analyzer] Failed to analyze confession, keeping it as neutral",
				slog.Int("index", i),
				slog.String("error", err.Error()))
		}
		metrics.ConfessionsAnalyzedTotal.WithLabelValues(string(record.Sentiment)).Inc()
		results = append(results, record)
	}
	return results
}

func (a *Analyzer) analyzeOne(confession models.Confession) (record models.AnalysisRecord, err error) {
	record = models.AnalysisRecord{
		Text:      confession,
		Sentiment: models.SentimentNeutral,
		Category:  models.CategoryNone,
	}

	defer func() {
		if r := recover(); r != nil {
			record.Polarity = 0
			record.Sentiment = models.SentimentNeutral
			err = fmt.Errorf("[Analyzer] recovered from panic: %v", r)
		}
	}()

	record.Category = a.tagger.Tag(confession)
	record.Polarity = a.score(confession)
	record.Sentiment = sentiment.Classify(record.Polarity)
	return record, nil
}
