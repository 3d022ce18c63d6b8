package grading

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/lueurxax/answer-grader/internal/core/embeddings"
	"github.com/lueurxax/answer-grader/internal/core/nlp"
)

type mockEmbedder struct {
	mock.Mock
}

func (m *mockEmbedder) Embed(ctx context.Context, texts []string) (embeddings.EmbeddingResult, error) {
	args := m.Called(ctx, texts)

	res, _ := args.Get(0).(embeddings.EmbeddingResult)

	return res, args.Error(1)
}

func annotate(t *testing.T, text string) *nlp.Doc {
	t.Helper()

	doc, err := fakeAnnotator{}.Annotate(context.Background(), text)
	require.NoError(t, err)

	return doc
}

func TestExtractConcepts(t *testing.T) {
	doc := annotate(t, "water boils at 100 degrees celsius.")
	doc.NounChunks = []nlp.Span{
		{Text: "100 degrees celsius", Start: 3, End: 6},
		{Text: "a very long noun chunk", Start: 0, End: 5},
	}

	got := ExtractConcepts(doc)

	for _, want := range []string{"water", "degree", "celsius", "100", "100 degrees celsius", "boils at 100 degrees celsius"} {
		assert.True(t, got.Has(want), want)
	}

	assert.False(t, got.Has("a very long noun chunk"))
	assert.False(t, got.Has("boils"), "verbs are not concepts")
}

func TestExtractConcepts_WindowClampsAtEdges(t *testing.T) {
	got := ExtractConcepts(annotate(t, "5 apples"))
	assert.True(t, got.Has("5 apples"))
}

func TestExtractKeyConcepts(t *testing.T) {
	got := ExtractKeyConcepts(annotate(t, "the capital of france is paris and it boils."))

	assert.Equal(t, []string{"boil", "capital", "france", "paris"}, got.Sorted())
}

func TestFactualAccuracy(t *testing.T) {
	assert.Equal(t, 1.0, FactualAccuracy(NewConceptSet(), NewConceptSet("x")))
	assert.Equal(t, 1.0, FactualAccuracy(NewConceptSet(), NewConceptSet()))
	assert.Equal(t, 0.0, FactualAccuracy(NewConceptSet("paris"), NewConceptSet()))
	assert.Equal(t, 0.67, FactualAccuracy(NewConceptSet("paris", "france", "capital"), NewConceptSet("paris", "frances")))
}

func TestCompleteness(t *testing.T) {
	assert.Equal(t, 1.0, Completeness(NewConceptSet(), NewConceptSet("anything")))
	assert.Equal(t, 0.5, Completeness(NewConceptSet("boil", "water"), NewConceptSet("boils")))
	// Short concepts need an exact match.
	assert.Equal(t, 0.0, Completeness(NewConceptSet("sun"), NewConceptSet("suns")))
	// 0.85 is stricter than the factual tier.
	assert.Equal(t, 0.0, Completeness(NewConceptSet("kitten"), NewConceptSet("mitten")))
	assert.True(t, Matches("kitten", NewConceptSet("mitten")))
}

func TestSemanticSimilarity(t *testing.T) {
	ctx := context.Background()

	t.Run("empty texts skip the embedder", func(t *testing.T) {
		m := &mockEmbedder{}

		got, err := SemanticSimilarity(ctx, m, "", "")
		require.NoError(t, err)
		assert.Equal(t, 1.0, got)

		got, err = SemanticSimilarity(ctx, m, "paris", "")
		require.NoError(t, err)
		assert.Equal(t, 0.0, got)

		m.AssertNotCalled(t, "Embed", mock.Anything, mock.Anything)
	})

	t.Run("cosine rounded to 3 decimals", func(t *testing.T) {
		m := &mockEmbedder{}
		m.On("Embed", mock.Anything, []string{"a", "b"}).Return(embeddings.EmbeddingResult{
			Vectors: [][]float32{{1, 0}, {1, 1}},
		}, nil).Once()

		got, err := SemanticSimilarity(ctx, m, "a", "b")
		require.NoError(t, err)
		assert.Equal(t, 0.707, got)
		m.AssertExpectations(t)
	})

	t.Run("error is wrapped", func(t *testing.T) {
		errDown := errors.New("down")

		m := &mockEmbedder{}
		m.On("Embed", mock.Anything, mock.Anything).Return(embeddings.EmbeddingResult{}, errDown)

		_, err := SemanticSimilarity(ctx, m, "a", "b")
		assert.ErrorIs(t, err, errDown)
	})
}
