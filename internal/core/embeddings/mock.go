package embeddings

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
	"unicode"
)

// Mock provider constants.
const (
	// LCG (Linear Congruential Generator) constants for deterministic pseudo-random generation.
	lcgMultiplier = 6364136223846793005
	lcgIncrement  = 1442695040888963407

	seedShift  = 33
	floatScale = 0x40000000

	mockDimensions = 384
)

// MockProvider implements the embedding Provider interface for tests and local
// development. Every word maps to a deterministic pseudo-random vector and a
// text embeds as the normalized sum of its words, so reordered sentences embed
// identically and unrelated ones land far apart.
type MockProvider struct {
	dimensions int
	priority   int
}

// NewMockProvider creates a new mock embedding provider.
func NewMockProvider() *MockProvider {
	return &MockProvider{
		dimensions: mockDimensions,
		priority:   PriorityMock,
	}
}

// Name returns the provider identifier.
func (p *MockProvider) Name() ProviderName {
	return ProviderMock
}

// Priority returns the provider priority.
func (p *MockProvider) Priority() int {
	return p.priority
}

// Dimensions returns the output dimensions.
func (p *MockProvider) Dimensions() int {
	return p.dimensions
}

// IsAvailable returns true (mock is always available).
func (p *MockProvider) IsAvailable() bool {
	return true
}

// Embed generates deterministic embeddings for texts.
func (p *MockProvider) Embed(_ context.Context, texts []string) (EmbeddingResult, error) {
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vectors[i] = p.embedOne(text)
	}

	return newResult(ProviderMock, vectors), nil
}

func (p *MockProvider) embedOne(text string) []float32 {
	vec := make([]float32, p.dimensions)

	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	for _, w := range words {
		h := fnv.New64a()
		_, _ = h.Write([]byte(w)) // fnv.Write never returns an error
		seed := h.Sum64()

		for i := range vec {
			seed = seed*lcgMultiplier + lcgIncrement
			//nolint:gosec // intentional uint64->int64 conversion for pseudo-random generation
			vec[i] += float32(int64(seed>>seedShift)-floatScale) / float32(floatScale)
		}
	}

	return l2Normalize(vec)
}

// l2Normalize scales vec to unit length in place. Zero vectors are returned unchanged.
func l2Normalize(vec []float32) []float32 {
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}

	if sum == 0 {
		return vec
	}

	norm := float32(math.Sqrt(sum))
	for i := range vec {
		vec[i] /= norm
	}

	return vec
}
