package models

import "sort"

// Summary is the aggregate view of a ResultSet.
//
// BucketText always carries an entry for every Sentiment once computed, so an
// empty string means "no records with that label" while a missing key means
// the summary was never built.
type Summary struct {
	Total       int                  `json:"total"`
	ByCategory  map[Category]int     `json:"by_category"`
	BySentiment map[Sentiment]int    `json:"by_sentiment"`
	BucketText  map[Sentiment]string `json:"bucket_text"`

	categoryOrder  []Category
	sentimentOrder []Sentiment
}

type LabelCount struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

type WordCount struct {
	Word  string `json:"word"`
	Count int    `json:"count"`
}

func NewSummary() Summary {
	return Summary{
		ByCategory:  make(map[Category]int),
		BySentiment: make(map[Sentiment]int),
		BucketText:  make(map[Sentiment]string, len(Sentiments)),
	}
}

// ObserveCategory records the order in which categories first appeared so that
// ordered views are stable.
func (s *Summary) ObserveCategory(c Category) {
	if _, seen := s.ByCategory[c]; !seen {
		s.categoryOrder = append(s.categoryOrder, c)
	}
	s.ByCategory[c]++
}

func (s *Summary) ObserveSentiment(l Sentiment) {
	if _, seen := s.BySentiment[l]; !seen {
		s.sentimentOrder = append(s.sentimentOrder, l)
	}
	s.BySentiment[l]++
}

// Text returns the joined text for a bucket and whether the bucket was computed.
func (s Summary) Text(l Sentiment) (string, bool) {
	text, ok := s.BucketText[l]
	return text, ok
}

// CategoryCounts returns category counts ordered by count descending, ties by
// first appearance.
func (s Summary) CategoryCounts() []LabelCount {
	out := make([]LabelCount, 0, len(s.categoryOrder))
	for _, c := range s.categoryOrder {
		out = append(out, LabelCount{Label: string(c), Count: s.ByCategory[c]})
	}
	sortCounts(out)
	return out
}

// SentimentCounts returns sentiment counts ordered like CategoryCounts.
func (s Summary) SentimentCounts() []LabelCount {
	out := make([]LabelCount, 0, len(s.sentimentOrder))
	for _, l := range s.sentimentOrder {
		out = append(out, LabelCount{Label: string(l), Count: s.BySentiment[l]})
	}
	sortCounts(out)
	return out
}

func sortCounts(counts []LabelCount) {
	sort.SliceStable(counts, func(i, j int) bool {
		return counts[i].Count > counts[j].Count
	})
}
