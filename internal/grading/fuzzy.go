package grading

import (
	"unicode/utf8"

	"github.com/hbollon/go-edlib"
)

const (
	fuzzyMinLen           = 3
	fuzzyShortLen         = 6
	fuzzyShortThreshold   = 0.8
	fuzzyLongThreshold    = 0.7
	completenessThreshold = 0.85
)

// Ratio is the normalized InDel similarity of a and b in [0,1]:
// (len(a)+len(b)-indel) / (len(a)+len(b)), counted in runes.
func Ratio(a, b string) float64 {
	total := utf8.RuneCountInString(a) + utf8.RuneCountInString(b)
	if total == 0 {
		return 1
	}

	return float64(total-edlib.LCSEditDistance(a, b)) / float64(total)
}

// Matches reports whether a is in set exactly or, for a longer than three
// characters, fuzzily. The first member above the threshold wins.
func Matches(a string, set ConceptSet) bool {
	if set.Has(a) {
		return true
	}

	n := utf8.RuneCountInString(a)
	if n <= fuzzyMinLen {
		return false
	}

	threshold := fuzzyLongThreshold
	if n < fuzzyShortLen {
		threshold = fuzzyShortThreshold
	}

	for b := range set {
		if Ratio(a, b) > threshold {
			return true
		}
	}

	return false
}
