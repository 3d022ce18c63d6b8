package grading

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func facts(pairs ...string) NumericFacts {
	var f NumericFacts
	for i := 0; i+1 < len(pairs); i += 2 {
		f.add(pairs[i], pairs[i+1])
	}

	return f
}

func TestExtractNumericFacts(t *testing.T) {
	got := ExtractNumericFacts(annotate(t, "water boils at 100 degrees celsius."))

	require.Equal(t, 1, got.Len())
	assert.Equal(t, []string{"water"}, got.Concepts())

	v, ok := got.Get("water")
	require.True(t, ok)
	assert.Equal(t, "100", v)
}

func TestExtractNumericFacts_LastValueWins(t *testing.T) {
	got := ExtractNumericFacts(annotate(t, "paris has 2 million people and 20 bridges."))

	// "paris" is within three tokens of "2" and "million"; "20" reaches "people".
	assert.Equal(t, []string{"paris", "people"}, got.Concepts())

	v, _ := got.Get("paris")
	assert.Equal(t, "million", v)
}

func TestNumericFacts_Add(t *testing.T) {
	tests := []struct {
		name     string
		pairs    []string
		concepts []string
		values   map[string]string
	}{
		{
			name:     "distinct concepts",
			pairs:    []string{"water", "100", "ice", "0"},
			concepts: []string{"water", "ice"},
			values:   map[string]string{"water": "100", "ice": "0"},
		},
		{
			name:     "repeat overwrites value",
			pairs:    []string{"water", "100", "ice", "0", "water", "212"},
			concepts: []string{"water", "ice"},
			values:   map[string]string{"water": "212", "ice": "0"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := facts(tt.pairs...)

			assert.Equal(t, tt.concepts, got.Concepts())
			assert.Equal(t, len(tt.concepts), got.Len())

			for concept, want := range tt.values {
				v, ok := got.Get(concept)
				require.True(t, ok)
				assert.Equal(t, want, v)
			}
		})
	}
}

func TestExtractNumericFacts_NoNearbyNoun(t *testing.T) {
	got := ExtractNumericFacts(annotate(t, "it is 5 and 6 and 7 at the end."))
	assert.Equal(t, 1, got.Len(), "only the last number reaches a noun")
}

func TestDetectContradictions(t *testing.T) {
	tests := []struct {
		name string
		ref  NumericFacts
		cand NumericFacts
		want []Contradiction
	}{
		{"none shared", facts("water", "100"), facts("ice", "0"), []Contradiction{}},
		{"same literal", facts("water", "100"), facts("water", "100"), []Contradiction{}},
		{"within tolerance", facts("water", "100"), facts("water", "105"), []Contradiction{}},
		{"beyond tolerance", facts("water", "100"), facts("water", "50"),
			[]Contradiction{{Concept: "water", Reference: "100", Candidate: "50"}}},
		{"small values use floor of one", facts("moon", "0.5"), facts("moon", "0.55"), []Contradiction{}},
		{"separators stripped", facts("people", "1,000"), facts("people", "1000"), []Contradiction{}},
		{"unparseable is a contradiction", facts("day", "ten"), facts("day", "10"),
			[]Contradiction{{Concept: "day", Reference: "ten", Candidate: "10"}}},
		{"insertion order", facts("b", "1", "a", "1"), facts("a", "9", "b", "9"),
			[]Contradiction{{Concept: "b", Reference: "1", Candidate: "9"}, {Concept: "a", Reference: "1", Candidate: "9"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectContradictions(tt.ref, tt.cand))
		})
	}
}

func TestDetectContradictions_SwapDetectsSameViolation(t *testing.T) {
	a := facts("water", "100")
	b := facts("water", "50")

	forward := DetectContradictions(a, b)
	backward := DetectContradictions(b, a)

	require.Len(t, forward, 1)
	require.Len(t, backward, 1)
	assert.Equal(t, forward[0].Concept, backward[0].Concept)
	assert.Equal(t, forward[0].Reference, backward[0].Candidate)
	assert.Equal(t, forward[0].Candidate, backward[0].Reference)
}
