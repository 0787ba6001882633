package models

// Confession is one free-text item submitted for analysis. It has no identity
// beyond its content.
type Confession = string

type Sentiment string

const (
	SentimentPositive Sentiment = "Positive"
	SentimentNegative Sentiment = "Negative"
	SentimentNeutral  Sentiment = "Neutral"
)

// Sentiments lists the labels in display order.
var Sentiments = []Sentiment{SentimentPositive, SentimentNegative, SentimentNeutral}

type Category string

const (
	CategoryOthers      Category = "Others"
	CategoryStudies     Category = "Studies"
	CategoryRomance     Category = "Romance"
	CategoryCampus      Category = "Campus"
	CategoryRant        Category = "Rant"
	CategoryWhistleblow Category = "Whistleblow"

	// CategoryNone is assigned when no category keyword appears in the text.
	CategoryNone Category = "No category selected"
)

type AnalysisRecord struct {
	Text      string    `json:"text"`
	Polarity  float64   `json:"polarity"`
	Sentiment Sentiment `json:"sentiment"`
	Category  Category  `json:"category"`
}

// ResultSet holds one record per input confession, in input order.
type ResultSet []AnalysisRecord
