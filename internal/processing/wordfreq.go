package processing

import (
	"regexp"
	"sort"
	"strings"

	"github.com/spacesedan/confessit/internal/models"
)

const DEFAULT_MAX_WORDS = 200

var wordPattern = regexp.MustCompile(`[\p{L}\p{N}_][\p{L}\p{N}_']*`)

// WordFrequencies counts the words of text for a word cloud. Words are
// counted case-insensitively and shown in their most frequent casing, and a
// plural is counted with its singular when both occur. Stopwords, numbers and
// single characters are skipped. At most max words
// are returned, most frequent first; max <= 0 means DEFAULT_MAX_WORDS.
func WordFrequencies(text string, stopwords StopwordSet, max int) []models.WordCount {
	if max <= 0 {
		max = DEFAULT_MAX_WORDS
	}

	totals := make(map[string]int)
	variants := make(map[string]map[string]int)

	for _, word := range wordPattern.FindAllString(text, -1) {
		if strings.HasSuffix(strings.ToLower(word), "'s") {
			word = word[:len(word)-2]
		}
		word = strings.TrimRight(word, "'")
		if len([]rune(word)) < 2 || isNumber(word) || stopwords.Contains(word) {
			continue
		}

		key := strings.ToLower(word)
		totals[key]++
		if variants[key] == nil {
			variants[key] = make(map[string]int)
		}
		variants[key][word]++
	}

	foldPlurals(totals)

	counts := make([]models.WordCount, 0, len(totals))
	for key, total := range totals {
		counts = append(counts, models.WordCount{Word: dominantVariant(variants[key]), Count: total})
	}

	sort.Slice(counts, func(i, j int) bool {
		if counts[i].Count != counts[j].Count {
			return counts[i].Count > counts[j].Count
		}
		return counts[i].Word < counts[j].Word
	})

	if len(counts) > max {
		counts = counts[:max]
	}
	return counts
}

// foldPlurals moves the count of "cats" onto "cat" when both were seen.
// Words ending in "ss" are not plurals.
func foldPlurals(totals map[string]int) {
	for key, count := range totals {
		if !strings.HasSuffix(key, "s") || strings.HasSuffix(key, "ss") {
			continue
		}
		singular := strings.TrimSuffix(key, "s")
		if _, ok := totals[singular]; !ok {
			continue
		}
		totals[singular] += count
		delete(totals, key)
	}
}

func dominantVariant(variants map[string]int) string {
	best, bestCount := "", 0
	for word, count := range variants {
		if count > bestCount || (count == bestCount && word < best) {
			best, bestCount = word, count
		}
	}
	return best
}

func isNumber(word string) bool {
	for _, r := range word {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
