package grading

import (
	"context"
	"strings"

	"github.com/lueurxax/answer-grader/internal/core/nlp"
)

// fakeAnnotator is a rule-based stand-in for the linguistic models.
type fakeAnnotator struct {
	err error
}

var fakeTags = map[string]nlp.POS{
	"the": nlp.PosDet, "a": nlp.PosDet, "an": nlp.PosDet,
	"of": nlp.PosAdp, "at": nlp.PosAdp, "in": nlp.PosAdp, "on": nlp.PosAdp, "by": nlp.PosAdp,
	"is": nlp.PosAux, "was": nlp.PosAux, "are": nlp.PosAux,
	"boils": nlp.PosVerb, "orbits": nlp.PosVerb, "has": nlp.PosVerb, "freezes": nlp.PosVerb, "won": nlp.PosVerb,
	"and": nlp.PosCconj, "it": nlp.PosPron, "very": nlp.PosAdv, "hot": nlp.PosAdj,
}

var fakeProperNouns = map[string]bool{"paris": true, "france": true, "earth": true, "sun": true}

var fakeLemmas = map[string]string{
	"degrees": "degree", "boils": "boil", "freezes": "freeze", "orbits": "orbit",
	"kilometers": "kilometer", "days": "day", "won": "win", "is": "be", "was": "be", "are": "be",
}

func (f fakeAnnotator) Annotate(_ context.Context, text string) (*nlp.Doc, error) {
	if f.err != nil {
		return nil, f.err
	}

	doc := &nlp.Doc{Text: text}
	cursor := 0

	for _, field := range strings.Fields(text) {
		word := strings.TrimRight(field, ".,!?;:")
		parts := []string{word}

		if punct := field[len(word):]; punct != "" {
			parts = append(parts, strings.Split(punct, "")...)
		}

		for _, p := range parts {
			if p == "" {
				continue
			}

			start := cursor + strings.Index(text[cursor:], p)
			cursor = start + len(p)

			doc.Tokens = append(doc.Tokens, fakeToken(p, start))
		}
	}

	for i, tok := range doc.Tokens {
		if tok.POS == nlp.PosPropn {
			doc.Entities = append(doc.Entities, nlp.Span{Text: tok.Text, Label: "GPE", Start: i, End: i + 1})
		}
	}

	return doc, nil
}

func fakeToken(text string, start int) nlp.Token {
	lower := strings.ToLower(text)

	tok := nlp.Token{
		Text:    text,
		Lemma:   lower,
		IsStop:  nlp.IsStopWord(lower),
		LikeNum: nlp.LikeNum(text),
		Start:   start,
		End:     start + len(text),
	}

	if l, ok := fakeLemmas[lower]; ok {
		tok.Lemma = l
	}

	switch {
	case tok.LikeNum:
		tok.POS, tok.Tag = nlp.PosNum, "CD"
	case strings.Trim(lower, ".,!?;:") == "":
		tok.POS, tok.Tag = nlp.PosPunct, "."
	case fakeProperNouns[lower]:
		tok.POS, tok.Tag = nlp.PosPropn, "NNP"
	default:
		if pos, ok := fakeTags[lower]; ok {
			tok.POS = pos
		} else {
			tok.POS, tok.Tag = nlp.PosNoun, "NN"
		}
	}

	return tok
}
