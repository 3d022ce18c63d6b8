package grading

import (
	"math"
	"strconv"
	"strings"

	"github.com/lueurxax/answer-grader/internal/core/nlp"
)

const (
	associationWindow      = 3
	contradictionTolerance = 0.1
)

// NumericFacts maps a concept to the literal number associated with it,
// keeping insertion order.
type NumericFacts struct {
	keys   []string
	values map[string]string
}

// Get returns the number recorded for concept.
func (f NumericFacts) Get(concept string) (string, bool) {
	v, ok := f.values[concept]
	return v, ok
}

// Concepts returns the concepts in insertion order.
func (f NumericFacts) Concepts() []string {
	return f.keys
}

// Len returns the number of facts.
func (f NumericFacts) Len() int {
	return len(f.keys)
}

func (f *NumericFacts) add(concept, value string) {
	if f.values == nil {
		f.values = make(map[string]string)
	}

	if _, exists := f.values[concept]; !exists {
		f.keys = append(f.keys, concept)
	}

	f.values[concept] = value
}

// ExtractNumericFacts associates every number-like token with the first noun
// in document order that lies within three tokens of it. A concept keeps the
// last number associated with it and the position where it was first seen.
func ExtractNumericFacts(doc *nlp.Doc) NumericFacts {
	var facts NumericFacts

	for i, tok := range doc.Tokens {
		if !tok.LikeNum {
			continue
		}

		for j, cand := range doc.Tokens {
			if cand.IsNoun() && abs(j-i) <= associationWindow {
				facts.add(strings.ToLower(cand.Lemma), tok.Text)
				break
			}
		}
	}

	return facts
}

// Contradiction is a concept whose numbers disagree between two answers.
type Contradiction struct {
	Concept   string `json:"concept"`
	Reference string `json:"reference"`
	Candidate string `json:"candidate"`
}

// DetectContradictions compares shared concepts. Numbers that differ by more
// than 10% of max(reference, 1), or that cannot be parsed, are contradictions.
func DetectContradictions(ref, cand NumericFacts) []Contradiction {
	out := []Contradiction{}

	for _, concept := range ref.Concepts() {
		refVal, _ := ref.Get(concept)

		candVal, ok := cand.Get(concept)
		if !ok || candVal == refVal {
			continue
		}

		r, errR := parseNumber(refVal)
		c, errC := parseNumber(candVal)

		if errR != nil || errC != nil || math.Abs(r-c)/math.Max(r, 1) > contradictionTolerance {
			out = append(out, Contradiction{Concept: concept, Reference: refVal, Candidate: candVal})
		}
	}

	return out
}

// parseNumber keeps only digits and dots before parsing, so "1,000" is 1000
// and "ten" fails.
func parseNumber(s string) (float64, error) {
	cleaned := strings.Map(func(r rune) rune {
		if (r >= '0' && r <= '9') || r == '.' {
			return r
		}

		return -1
	}, s)

	return strconv.ParseFloat(cleaned, 64)
}

func abs(x int) int {
	if x < 0 {
		return -x
	}

	return x
}
