package grading

import (
	"sort"
	"strings"

	"github.com/lueurxax/answer-grader/internal/core/nlp"
)

const (
	maxChunkWords = 3
	windowBefore  = 2
	windowAfter   = 3
)

// ConceptSet is a set of lowercased comparable units.
type ConceptSet map[string]struct{}

// NewConceptSet builds a set from items.
func NewConceptSet(items ...string) ConceptSet {
	s := make(ConceptSet, len(items))
	for _, it := range items {
		s.Add(it)
	}

	return s
}

// Add inserts the lowercased item. Empty strings are ignored.
func (s ConceptSet) Add(item string) {
	if item = strings.ToLower(item); item != "" {
		s[item] = struct{}{}
	}
}

// Has reports exact membership.
func (s ConceptSet) Has(item string) bool {
	_, ok := s[item]
	return ok
}

// Sorted returns the members in lexical order.
func (s ConceptSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for k := range s {
		out = append(out, k)
	}

	sort.Strings(out)

	return out
}

// ExtractConcepts collects noun and proper-noun lemmas, numeric tokens, named
// entities, short noun chunks and the token window around every number.
func ExtractConcepts(doc *nlp.Doc) ConceptSet {
	concepts := make(ConceptSet)

	for _, tok := range doc.Tokens {
		switch {
		case tok.IsNoun():
			concepts.Add(tok.Lemma)
		case tok.POS == nlp.PosNum:
			concepts.Add(tok.Text)
		}
	}

	for _, ent := range doc.Entities {
		concepts.Add(ent.Text)
	}

	for _, chunk := range doc.NounChunks {
		if len(strings.Fields(chunk.Text)) <= maxChunkWords {
			concepts.Add(chunk.Text)
		}
	}

	for i, tok := range doc.Tokens {
		if tok.LikeNum {
			concepts.Add(doc.SpanText(i-windowBefore, i+windowAfter))
		}
	}

	return concepts
}

// ExtractKeyConcepts collects lemmas of nouns, proper nouns and verbs that are not stopwords.
func ExtractKeyConcepts(doc *nlp.Doc) ConceptSet {
	concepts := make(ConceptSet)

	for _, tok := range doc.Tokens {
		if (tok.IsNoun() || tok.POS == nlp.PosVerb) && !tok.IsStop {
			concepts.Add(tok.Lemma)
		}
	}

	return concepts
}
