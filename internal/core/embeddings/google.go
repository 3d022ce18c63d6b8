package embeddings

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"golang.org/x/time/rate"
	"google.golang.org/api/option"
)

// Google embedding constants.
const (
	ModelGeminiEmbedding001 = "gemini-embedding-001" // latest Google embedding model (replaces text-embedding-004)

	googleDimensions       = 3072
	googleRateLimiterBurst = 5
)

// Google embedding errors.
var (
	ErrGoogleEmptyResponse = errors.New("empty embedding response from Google")
	ErrGoogleAPIFailure    = errors.New("google embedding API error")
)

// GoogleProvider implements the embedding Provider interface for Google Gemini.
type GoogleProvider struct {
	client      *genai.Client
	model       string
	priority    int
	rateLimiter *rate.Limiter
	available   bool
}

// GoogleConfig holds configuration for the Google embedding provider.
type GoogleConfig struct {
	APIKey    string
	Model     string // Default: "gemini-embedding-001"
	RateLimit int    // Requests per second
	Priority  int
}

// NewGoogleProvider creates a new Google embedding provider. Without an API key
// the provider is returned unavailable.
func NewGoogleProvider(ctx context.Context, cfg GoogleConfig) (*GoogleProvider, error) {
	if cfg.APIKey == "" {
		return &GoogleProvider{available: false}, nil
	}

	if cfg.Model == "" {
		cfg.Model = ModelGeminiEmbedding001
	}

	if cfg.RateLimit == 0 {
		cfg.RateLimit = 1
	}

	if cfg.Priority == 0 {
		cfg.Priority = PrioritySecondFallback
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("creating google genai client: %w", err)
	}

	return &GoogleProvider{
		client:      client,
		model:       cfg.Model,
		priority:    cfg.Priority,
		rateLimiter: rate.NewLimiter(rate.Limit(cfg.RateLimit), googleRateLimiterBurst),
		available:   true,
	}, nil
}

// Name returns the provider identifier.
func (p *GoogleProvider) Name() ProviderName {
	return ProviderGoogle
}

// Priority returns the provider priority.
func (p *GoogleProvider) Priority() int {
	return p.priority
}

// Dimensions returns the output dimensions (3072 for gemini-embedding-001).
func (p *GoogleProvider) Dimensions() int {
	return googleDimensions
}

// IsAvailable returns true if the provider is configured.
func (p *GoogleProvider) IsAvailable() bool {
	return p.available
}

// Embed generates embeddings for all texts in one batch request.
func (p *GoogleProvider) Embed(ctx context.Context, texts []string) (EmbeddingResult, error) {
	if err := p.rateLimiter.Wait(ctx); err != nil {
		return EmbeddingResult{}, fmt.Errorf(errRateLimiterFmt, err)
	}

	em := p.client.EmbeddingModel(p.model)

	batch := em.NewBatch()
	for _, text := range texts {
		batch.AddContent(genai.Text(text))
	}

	resp, err := em.BatchEmbedContents(ctx, batch)
	if err != nil {
		return EmbeddingResult{}, fmt.Errorf("%w: %w", ErrGoogleAPIFailure, err)
	}

	if resp == nil || len(resp.Embeddings) != len(texts) {
		return EmbeddingResult{}, ErrGoogleEmptyResponse
	}

	vectors := make([][]float32, len(resp.Embeddings))

	for i, e := range resp.Embeddings {
		if e == nil || len(e.Values) == 0 {
			return EmbeddingResult{}, ErrGoogleEmptyResponse
		}

		vectors[i] = e.Values
	}

	return newResult(ProviderGoogle, vectors), nil
}

// Close closes the Google client.
func (p *GoogleProvider) Close() error {
	if p.client != nil {
		if err := p.client.Close(); err != nil {
			return fmt.Errorf("closing google embedding client: %w", err)
		}
	}

	return nil
}
