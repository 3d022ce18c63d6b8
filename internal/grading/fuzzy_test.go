package grading

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRatio(t *testing.T) {
	tests := []struct {
		a, b string
		want float64
	}{
		{"", "", 1},
		{"abc", "abc", 1},
		{"abc", "", 0},
		{"abc", "xyz", 0},
		{"kitten", "sitting", 8.0 / 13.0},
		{"boil", "boils", 8.0 / 9.0},
		{"café", "cafe", 6.0 / 8.0},
	}

	for _, tt := range tests {
		t.Run(tt.a+"_"+tt.b, func(t *testing.T) {
			assert.InDelta(t, tt.want, Ratio(tt.a, tt.b), 1e-9)
			assert.InDelta(t, tt.want, Ratio(tt.b, tt.a), 1e-9)
		})
	}
}

func TestMatches(t *testing.T) {
	tests := []struct {
		name string
		a    string
		set  ConceptSet
		want bool
	}{
		{"exact", "cat", NewConceptSet("cat"), true},
		{"short words need exact", "cat", NewConceptSet("cats"), false},
		{"short tier above 0.8", "boil", NewConceptSet("boils"), true},
		{"short tier below 0.8", "boil", NewConceptSet("bowl"), false},
		{"long tier above 0.7", "colour", NewConceptSet("color"), true},
		{"long tier below 0.7", "kitten", NewConceptSet("sitting"), false},
		{"first qualifying member", "capital", NewConceptSet("zzz", "capitol"), true},
		{"empty set", "paris", NewConceptSet(), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Matches(tt.a, tt.set))
		})
	}
}

func TestMatches_Reflexive(t *testing.T) {
	for _, a := range []string{"a", "paris", "boils at 100 degrees celsius"} {
		assert.True(t, Matches(a, NewConceptSet(a)), a)
	}
}
