package grading

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

type rewrite struct {
	pattern     *regexp.Regexp
	replacement string
}

// Unit rewrites end on a word boundary so rewritten text is a fixed point.
var rewrites = []rewrite{
	{regexp.MustCompile(`(\d+)\s*°\s*c\b`), "${1} degrees celsius"},
	{regexp.MustCompile(`(\d+)\s*km\b`), "${1} kilometers"},
	{regexp.MustCompile(`(\d+)\s*miles\b`), "${1} miles"},
	{regexp.MustCompile(`\bww2\b`), "world war 2"},
	// A trailing abbreviation dot is consumed when whitespace or the end of text follows.
	{regexp.MustCompile(`\bu\.s(?:\.a)?(?:\.(\s|$)|\b)`), "united states${1}"},
}

// Normalize canonicalizes an answer: Unicode compatibility folding, lowercase,
// unit and abbreviation rewriting, single spaces. It is idempotent.
func Normalize(raw string) string {
	text := norm.NFKC.String(raw)
	text = cases.Lower(language.Und).String(text)
	text = collapseSpaces(text)

	for _, rw := range rewrites {
		text = rw.pattern.ReplaceAllString(text, rw.replacement)
	}

	return collapseSpaces(text)
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// WordCount counts whitespace-separated words.
func WordCount(text string) int {
	return len(strings.Fields(text))
}
