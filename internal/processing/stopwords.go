package processing

import "strings"

var englishStopwords = []string{
	"a", "about", "above", "after", "again", "against", "all", "also", "am", "an", "and",
	"any", "are", "aren't", "as", "at", "be", "because", "been", "before", "being", "below",
	"between", "both", "but", "by", "can", "can't", "cannot", "com", "could", "couldn't",
	"did", "didn't", "do", "does", "doesn't", "doing", "don't", "down", "during", "each",
	"else", "ever", "few", "for", "from", "further", "get", "had", "hadn't", "has", "hasn't",
	"have", "haven't", "having", "he", "he'd", "he'll", "he's", "hence", "her", "here",
	"here's", "hers", "herself", "him", "himself", "his", "how", "how's", "however", "http",
	"i", "i'd", "i'll", "i'm", "i've", "if", "in", "into", "is", "isn't", "it", "it's",
	"its", "itself", "just", "k", "let's", "like", "me", "more", "most", "mustn't", "my",
	"myself", "no", "nor", "not", "of", "off", "on", "once", "only", "or", "other",
	"otherwise", "ought", "our", "ours", "ourselves", "out", "over", "own", "r", "same",
	"shall", "shan't", "she", "she'd", "she'll", "she's", "should", "shouldn't", "since",
	"so", "some", "such", "than", "that", "that's", "the", "their", "theirs", "them",
	"themselves", "then", "there", "there's", "therefore", "these", "they", "they'd",
	"they'll", "they're", "they've", "this", "those", "through", "to", "too", "under",
	"until", "up", "very", "was", "wasn't", "we", "we'd", "we'll", "we're", "we've",
	"were", "weren't", "what", "what's", "when", "when's", "where", "where's", "which",
	"while", "who", "who's", "whom", "why", "why's", "with", "won't", "would", "wouldn't",
	"www", "you", "you'd", "you'll", "you're", "you've", "your", "yours", "yourself",
	"yourselves",
}

// Filler words that dominate the confession channel without saying anything
// about a bucket: post headers, category names and common verbs.
var confessionStopwords = []string{
	"ID", "Post", "PM", "confession", "confessor", "Others",
	"Studies", "Romance", "Campus", "Rant", "Whistleblow",
	"hall", "friend", "feeling", "time", "t", "s", "NTU",
	"friends", "even", "feel", "people", "make", "want", "phone", "one", "world",
	"hurt", "something", "someone", "I'm", "im", "will", "can",
	"cca", "don", "cos", "because", "don't", "now", "take", "know", "m",
	"RS",
}

// Stopwords is the exclusion list applied to word clouds. Keys are lower case.
var Stopwords = NewStopwords(englishStopwords, confessionStopwords)

type StopwordSet map[string]struct{}

func NewStopwords(lists ...[]string) StopwordSet {
	set := make(StopwordSet)
	for _, list := range lists {
		for _, word := range list {
			set[strings.ToLower(word)] = struct{}{}
		}
	}
	return set
}

func (s StopwordSet) Contains(word string) bool {
	_, ok := s[strings.ToLower(word)]
	return ok
}
