// Package match resolves candidate ingredient names against the reference
// vocabulary through a fixed cascade of matching strategies, each with a
// disclosed method tag and confidence score.
package match

import (
	"strings"
	"unicode/utf8"

	"github.com/pmezard/go-difflib/difflib"
)

// stemSuffixes is the fixed suffix set stripped by the simplified stemmer.
// Order matters: the first matching suffix wins.
var stemSuffixes = []string{"ing", "ed", "ine", "ate", "ol", "il"}

// stem strips one known suffix from the end of word, but only when the word
// is longer than len(suffix)+3 characters, guarding against over-stemming
// short words ("bed" keeps its "ed").
func stem(word string) string {
	for _, suffix := range stemSuffixes {
		if strings.HasSuffix(word, suffix) && len(word) > len(suffix)+3 {
			return word[:len(word)-len(suffix)]
		}
	}
	return word
}

// levenshteinDistance computes the edit distance between a and b using the
// classic two-row dynamic programme.  Operates on runes, not bytes, so
// accented synonyms count one edit per character.  Inputs are assumed
// pre-folded.
func levenshteinDistance(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) < len(rb) {
		ra, rb = rb, ra
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 0; i < len(ra); i++ {
		curr[0] = i + 1
		for j := 0; j < len(rb); j++ {
			cost := 1
			if ra[i] == rb[j] {
				cost = 0
			}
			curr[j+1] = min3(
				prev[j+1]+1,  // deletion
				curr[j]+1,    // insertion
				prev[j]+cost, // substitution
			)
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}

// levenshteinSimilarity normalises edit distance into [0,1]:
// 1 − dist/max(len(a), len(b)), lengths in runes.  Symmetric; two empty
// strings score 0.
func levenshteinSimilarity(a, b string) float64 {
	maxLen := utf8.RuneCountInString(a)
	if n := utf8.RuneCountInString(b); n > maxLen {
		maxLen = n
	}
	if maxLen == 0 {
		return 0
	}
	return 1.0 - float64(levenshteinDistance(a, b))/float64(maxLen)
}

// fuzzyRatio computes the difflib sequence-similarity ratio in [0,1] between
// two pre-folded strings, character-wise.
func fuzzyRatio(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	m := difflib.NewMatcher(strings.Split(a, ""), strings.Split(b, ""))
	return m.Ratio()
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}
