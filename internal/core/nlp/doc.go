// Package nlp annotates English text with the linguistic features the grader
// compares: coarse part-of-speech tags, lemmas, stopword and number flags,
// named entities and noun chunks.
package nlp

import (
	"context"
	"strings"
)

// POS is a coarse, universal part-of-speech tag.
type POS string

// Universal part-of-speech tags.
const (
	PosNoun  POS = "NOUN"
	PosPropn POS = "PROPN"
	PosVerb  POS = "VERB"
	PosAux   POS = "AUX"
	PosNum   POS = "NUM"
	PosAdj   POS = "ADJ"
	PosAdv   POS = "ADV"
	PosPron  POS = "PRON"
	PosDet   POS = "DET"
	PosAdp   POS = "ADP"
	PosCconj POS = "CCONJ"
	PosPart  POS = "PART"
	PosIntj  POS = "INTJ"
	PosPunct POS = "PUNCT"
	PosSym   POS = "SYM"
	PosOther POS = "X"
)

// Token is one annotated token. Start and End are byte offsets into Doc.Text,
// or -1 when the token could not be located in the source.
type Token struct {
	Text    string
	Lemma   string
	POS     POS
	Tag     string // Penn Treebank tag
	IsStop  bool
	LikeNum bool
	Start   int
	End     int
}

// IsNoun reports whether the token is a common or proper noun.
func (t Token) IsNoun() bool {
	return t.POS == PosNoun || t.POS == PosPropn
}

// Span is a half-open token range [Start, End) with its rendered text.
type Span struct {
	Text  string
	Label string
	Start int
	End   int
}

// Doc is an annotated text.
type Doc struct {
	Text       string
	Tokens     []Token
	Entities   []Span
	NounChunks []Span
}

// Annotator turns raw text into a Doc. Implementations must be safe for concurrent use.
type Annotator interface {
	Annotate(ctx context.Context, text string) (*Doc, error)
}

// SpanText renders tokens [start, end) as they appear in the source text.
// Indices are clamped to the token range.
func (d *Doc) SpanText(start, end int) string {
	start = max(start, 0)
	end = min(end, len(d.Tokens))

	if start >= end {
		return ""
	}

	first, last := d.Tokens[start], d.Tokens[end-1]
	if first.Start >= 0 && last.End >= first.Start && last.End <= len(d.Text) && d.aligned(start, end) {
		return d.Text[first.Start:last.End]
	}

	parts := make([]string, 0, end-start)
	for _, tok := range d.Tokens[start:end] {
		parts = append(parts, tok.Text)
	}

	return strings.Join(parts, " ")
}

func (d *Doc) aligned(start, end int) bool {
	for _, tok := range d.Tokens[start:end] {
		if tok.Start < 0 {
			return false
		}
	}

	return true
}
