package grading

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"lowercase and trim", "  The Capital  ", "the capital"},
		{"celsius", "Water boils at 100 °C.", "water boils at 100 degrees celsius."},
		{"celsius no space", "100°c", "100 degrees celsius"},
		{"celsius sign", "100℃", "100 degrees celsius"},
		{"kilometers", "It is 42km away", "it is 42 kilometers away"},
		{"km needs boundary", "5 kmh", "5 kmh"},
		{"miles", "26   miles", "26 miles"},
		{"ww2", "WW2 ended in 1945", "world war 2 ended in 1945"},
		{"usa", "the U.S.A is big", "the united states is big"},
		{"us with dot", "the u.s. army", "the united states army"},
		{"usa with dot at end", "born in the U.S.A.", "born in the united states"},
		{"us before comma", "the u.s, then", "the united states, then"},
		{"us joined to word", "u.s.army", "united states.army"},
		{"whitespace", "a\t\tb\n c", "a b c"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{
		"Water boils at 100 °C and 212 °F.",
		"100 degrees celsius",
		"WW2 lasted 6 years; the U.S. joined in 1941.",
		"The marathon is 42.195 km or 26.2 miles",
		"ww2km",
		"born in the U.S.A.",
		"a b c\u0085d",
		"",
	}

	for _, in := range inputs {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once), in)
	}
}

func TestWordCount(t *testing.T) {
	assert.Equal(t, 0, WordCount(""))
	assert.Equal(t, 3, WordCount("a b  c"))
}
