package services

import (
	"strings"

	"github.com/fiam/gounidecode/unidecode"
	"github.com/schollz/closestmatch"
	"github.com/texttheater/golang-levenshtein/levenshtein"
	"golang.org/x/text/unicode/norm"
)

// minSuggestionSimilarity is the lowest score a "did you mean" location may have.
const minSuggestionSimilarity = 0.5

func normalizeInput(input string) string {
	input = norm.NFC.String(strings.TrimSpace(input))
	input = strings.ToLower(unidecode.Unidecode(input))
	return input
}

func createMatcher(keywords []string) *closestmatch.ClosestMatch {
	return closestmatch.New(keywords, []int{2, 3})
}

// calculateSimilarity is 1 minus the normalized edit distance.
func calculateSimilarity(a, b string) float64 {
	distance := levenshtein.DistanceForStrings([]rune(a), []rune(b), levenshtein.DefaultOptions)
	maxLen := len([]rune(a))
	if l := len([]rune(b)); l > maxLen {
		maxLen = l
	}
	if maxLen == 0 {
		return 1.0
	}
	return 1.0 - float64(distance)/float64(maxLen)
}

// prepareUniqueList maps normalized values back to their first original spelling.
func prepareUniqueList(values []string) ([]string, map[string]string) {
	originals := make(map[string]string)
	list := make([]string, 0, len(values))
	for _, v := range values {
		key := normalizeInput(v)
		if key == "" {
			continue
		}
		if _, seen := originals[key]; seen {
			continue
		}
		originals[key] = strings.TrimSpace(v)
		list = append(list, key)
	}
	return list, originals
}

// SuggestLocation picks the known location closest to query, or "" if none is close enough.
func SuggestLocation(query string, locations []string) string {
	normalizedQuery := normalizeInput(query)
	if normalizedQuery == "" || len(locations) == 0 {
		return ""
	}

	keys, originals := prepareUniqueList(locations)
	if len(keys) == 0 {
		return ""
	}

	best := createMatcher(keys).Closest(normalizedQuery)
	bestScore := calculateSimilarity(normalizedQuery, best)
	if best == "" {
		bestScore = 0
	}
	// closestmatch works on n-grams, so very short queries are also checked directly.
	for _, k := range keys {
		if score := calculateSimilarity(normalizedQuery, k); score > bestScore {
			best, bestScore = k, score
		}
	}

	if best == "" || bestScore < minSuggestionSimilarity || best == normalizedQuery {
		return ""
	}
	return originals[best]
}
