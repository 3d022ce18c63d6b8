package nlp

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/aaaton/golem/v4"
	"github.com/aaaton/golem/v4/dicts/en"
	"github.com/jdkato/prose/v2"
	"github.com/rs/zerolog"

	graderrors "github.com/lueurxax/answer-grader/internal/core/errors"
)

const warmupText = "The model loads once."

// ProseAnnotator tags and extracts entities with prose and lemmatizes with golem.
// Both models load in the constructor and are shared by every call.
type ProseAnnotator struct {
	model      *prose.Model
	lemmatizer *golem.Lemmatizer
	mu         sync.Mutex
	logger     *zerolog.Logger
}

var _ Annotator = (*ProseAnnotator)(nil)

// NewProseAnnotator loads the tagging, entity and lemma models. Failures wrap
// ErrModelUnavailable.
func NewProseAnnotator(logger *zerolog.Logger) (*ProseAnnotator, error) {
	lemmatizer, err := golem.New(en.New())
	if err != nil {
		return nil, fmt.Errorf("%w: loading lemmatizer: %w", graderrors.ErrModelUnavailable, err)
	}

	warm, err := prose.NewDocument(warmupText, prose.WithSegmentation(false))
	if err != nil {
		return nil, fmt.Errorf("%w: loading prose model: %w", graderrors.ErrModelUnavailable, err)
	}

	logger.Info().Msg("loaded linguistic models")

	return &ProseAnnotator{
		model:      warm.Model,
		lemmatizer: lemmatizer,
		logger:     logger,
	}, nil
}

// Annotate runs one annotation pass over text. Failures wrap ErrInferenceFailed.
func (a *ProseAnnotator) Annotate(ctx context.Context, text string) (doc *Doc, err error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("annotate: %w", err)
	}

	if strings.TrimSpace(text) == "" {
		return &Doc{Text: text}, nil
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	defer func() {
		if r := recover(); r != nil {
			doc = nil
			err = fmt.Errorf("%w: annotator panic: %v", graderrors.ErrInferenceFailed, r)
		}
	}()

	pd, err := prose.NewDocument(text,
		prose.WithSegmentation(false),
		prose.UsingModel(a.model),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", graderrors.ErrInferenceFailed, err)
	}

	return a.build(text, pd), nil
}

func (a *ProseAnnotator) build(text string, pd *prose.Document) *Doc {
	raw := pd.Tokens()
	tokens := make([]Token, len(raw))

	for i, rt := range raw {
		lower := strings.ToLower(rt.Text)
		pos := universalPOS(rt.Tag, lower)

		tokens[i] = Token{
			Text:    rt.Text,
			Lemma:   a.lemma(lower, pos),
			POS:     pos,
			Tag:     rt.Tag,
			IsStop:  IsStopWord(lower),
			LikeNum: LikeNum(rt.Text),
		}
	}

	alignOffsets(text, tokens)

	doc := &Doc{Text: text, Tokens: tokens}

	from := 0

	for _, ent := range pd.Entities() {
		start, end, ok := locateEntity(tokens, ent.Text, from)
		if !ok {
			doc.Entities = append(doc.Entities, Span{Text: ent.Text, Label: ent.Label, Start: -1, End: -1})
			continue
		}

		doc.Entities = append(doc.Entities, Span{Text: doc.SpanText(start, end), Label: ent.Label, Start: start, End: end})
		from = end
	}

	for _, chunk := range nounChunks(tokens) {
		chunk.Text = doc.SpanText(chunk.Start, chunk.End)
		doc.NounChunks = append(doc.NounChunks, chunk)
	}

	return doc
}

// lemma returns the dictionary form for nouns and verbs. Proper nouns and
// everything else keep their lowercased surface form.
func (a *ProseAnnotator) lemma(lower string, pos POS) string {
	switch pos {
	case PosNoun, PosVerb, PosAux:
		if l := a.lemmatizer.Lemma(lower); l != "" {
			return strings.ToLower(l)
		}
	}

	return lower
}
