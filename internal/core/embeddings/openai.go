package embeddings

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"
)

// OpenAI model constants.
const (
	ModelTextEmbedding3Large = "text-embedding-3-large"
	ModelTextEmbedding3Small = "text-embedding-3-small"

	openaiSmallDimensions  = 1536
	openaiLargeDimensions  = 3072
	openaiRateLimiterBurst = 5
)

// OpenAI errors.
var ErrOpenAIEmptyResponse = errors.New("empty embedding response from OpenAI")

// OpenAIProvider implements the embedding Provider interface for OpenAI.
type OpenAIProvider struct {
	client      *openai.Client
	model       string
	priority    int
	rateLimiter *rate.Limiter
	available   bool
}

// OpenAIConfig holds configuration for the OpenAI provider.
type OpenAIConfig struct {
	APIKey    string
	Model     string // Default: "text-embedding-3-small"
	RateLimit int    // Requests per second
	Priority  int
	BaseURL   string // Optional, for compatible gateways and tests
}

// NewOpenAIProvider creates a new OpenAI embedding provider.
func NewOpenAIProvider(cfg OpenAIConfig) *OpenAIProvider {
	if cfg.Model == "" {
		cfg.Model = ModelTextEmbedding3Small
	}

	if cfg.RateLimit == 0 {
		cfg.RateLimit = 1
	}

	if cfg.Priority == 0 {
		cfg.Priority = PriorityFallback
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	return &OpenAIProvider{
		client:      openai.NewClientWithConfig(clientCfg),
		model:       cfg.Model,
		priority:    cfg.Priority,
		rateLimiter: rate.NewLimiter(rate.Limit(cfg.RateLimit), openaiRateLimiterBurst),
		available:   cfg.APIKey != "",
	}
}

// Name returns the provider identifier.
func (p *OpenAIProvider) Name() ProviderName {
	return ProviderOpenAI
}

// Priority returns the provider priority.
func (p *OpenAIProvider) Priority() int {
	return p.priority
}

// Dimensions returns the native output dimensions of the configured model.
func (p *OpenAIProvider) Dimensions() int {
	if p.model == ModelTextEmbedding3Large {
		return openaiLargeDimensions
	}

	return openaiSmallDimensions
}

// IsAvailable returns true if the provider is configured.
func (p *OpenAIProvider) IsAvailable() bool {
	return p.available
}

// Embed generates embeddings for all texts in one API call.
func (p *OpenAIProvider) Embed(ctx context.Context, texts []string) (EmbeddingResult, error) {
	if err := p.rateLimiter.Wait(ctx); err != nil {
		return EmbeddingResult{}, fmt.Errorf(errRateLimiterFmt, err)
	}

	resp, err := p.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: texts,
		Model: openai.EmbeddingModel(p.model),
	})
	if err != nil {
		return EmbeddingResult{}, fmt.Errorf("openai embeddings: %w", err)
	}

	if len(resp.Data) != len(texts) {
		return EmbeddingResult{}, ErrOpenAIEmptyResponse
	}

	// Vectors must line up with texts.
	sort.Slice(resp.Data, func(i, j int) bool { return resp.Data[i].Index < resp.Data[j].Index })

	vectors := make([][]float32, len(resp.Data))
	for i := range resp.Data {
		vectors[i] = resp.Data[i].Embedding
	}

	return newResult(ProviderOpenAI, vectors), nil
}
