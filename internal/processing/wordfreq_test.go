package processing

import (
	"testing"

	"github.com/spacesedan/confessit/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestWordFrequencies(t *testing.T) {
	text := "Exams exams EXAMS are over. Exams! Library at 3am, library 2024. Sam's cat."

	got := WordFrequencies(text, Stopwords, 0)

	assert.Equal(t, []models.WordCount{
		{Word: "Exams", Count: 4},
		{Word: "Library", Count: 2},
		{Word: "3am", Count: 1},
		{Word: "Sam", Count: 1},
		{Word: "cat", Count: 1},
	}, got)
}

func TestWordFrequencies_CustomStopwords(t *testing.T) {
	got := WordFrequencies("NTU hall friend confession lonely", Stopwords, 0)
	assert.Equal(t, []models.WordCount{{Word: "lonely", Count: 1}}, got)
}

func TestWordFrequencies_Limit(t *testing.T) {
	got := WordFrequencies("alpha alpha beta beta gamma delta", NewStopwords(), 2)
	assert.Equal(t, []models.WordCount{
		{Word: "alpha", Count: 2},
		{Word: "beta", Count: 2},
	}, got)
}

func TestWordFrequencies_Empty(t *testing.T) {
	assert.Empty(t, WordFrequencies("", Stopwords, 10))
	assert.Empty(t, WordFrequencies("the and of", Stopwords, 10))
}

func TestWordFrequencies_FoldsPlurals(t *testing.T) {
	got := WordFrequencies("happy happy happy cat Cats dogs dogs boss bosss glass", NewStopwords(), 0)
	assert.Equal(t, []models.WordCount{
		{Word: "happy", Count: 3},
		{Word: "cat", Count: 2},
		{Word: "dogs", Count: 2},
		{Word: "boss", Count: 1},
		{Word: "bosss", Count: 1},
		{Word: "glass", Count: 1},
	}, got)
}
