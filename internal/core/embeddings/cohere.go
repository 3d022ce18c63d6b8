package embeddings

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// Cohere API constants.
const (
	CohereAPIEndpoint      = "https://api.cohere.ai/v1/embed"
	ModelEmbedEnglishV3    = "embed-english-v3.0"
	cohereDimensions       = 1024
	cohereRateLimiterBurst = 5
	cohereDefaultTimeout   = 30 * time.Second
	cohereInputType        = "search_document"

	headerContentType = "Content-Type"
	contentTypeJSON   = "application/json"
)

// Cohere errors.
var (
	ErrCohereEmptyResponse = errors.New("empty embedding response from Cohere")
	ErrCohereAPIFailure    = errors.New("cohere API error")
)

// CohereProvider implements the embedding Provider interface for Cohere.
type CohereProvider struct {
	apiKey      string
	model       string
	endpoint    string
	priority    int
	httpClient  *http.Client
	rateLimiter *rate.Limiter
	available   bool
}

// CohereConfig holds configuration for the Cohere provider.
type CohereConfig struct {
	APIKey    string
	Model     string // Default: "embed-english-v3.0"
	RateLimit int    // Requests per second
	Priority  int
	Timeout   time.Duration
	Endpoint  string // Optional override, used by tests
}

type cohereEmbedRequest struct {
	Texts     []string `json:"texts"`
	Model     string   `json:"model"`
	InputType string   `json:"input_type"`
}

type cohereEmbedResponse struct {
	ID         string      `json:"id"`
	Embeddings [][]float32 `json:"embeddings"`
}

type cohereErrorResponse struct {
	Message string `json:"message"`
}

// NewCohereProvider creates a new Cohere embedding provider.
func NewCohereProvider(cfg CohereConfig) *CohereProvider {
	if cfg.Model == "" {
		cfg.Model = ModelEmbedEnglishV3
	}

	if cfg.RateLimit == 0 {
		cfg.RateLimit = 1
	}

	if cfg.Timeout == 0 {
		cfg.Timeout = cohereDefaultTimeout
	}

	if cfg.Priority == 0 {
		cfg.Priority = PrioritySecondFallback
	}

	if cfg.Endpoint == "" {
		cfg.Endpoint = CohereAPIEndpoint
	}

	return &CohereProvider{
		apiKey:   cfg.APIKey,
		model:    cfg.Model,
		endpoint: cfg.Endpoint,
		priority: cfg.Priority,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		rateLimiter: rate.NewLimiter(rate.Limit(cfg.RateLimit), cohereRateLimiterBurst),
		available:   cfg.APIKey != "",
	}
}

// Name returns the provider identifier.
func (p *CohereProvider) Name() ProviderName {
	return ProviderCohere
}

// Priority returns the provider priority.
func (p *CohereProvider) Priority() int {
	return p.priority
}

// Dimensions returns the output dimensions (1024 for the v3 models).
func (p *CohereProvider) Dimensions() int {
	return cohereDimensions
}

// IsAvailable returns true if the provider is configured.
func (p *CohereProvider) IsAvailable() bool {
	return p.available
}

// Embed generates embeddings for all texts in one API call.
func (p *CohereProvider) Embed(ctx context.Context, texts []string) (EmbeddingResult, error) {
	if err := p.rateLimiter.Wait(ctx); err != nil {
		return EmbeddingResult{}, fmt.Errorf(errRateLimiterFmt, err)
	}

	body, err := p.callCohereAPI(ctx, texts)
	if err != nil {
		return EmbeddingResult{}, err
	}

	return p.parseEmbeddingResponse(body, len(texts))
}

func (p *CohereProvider) callCohereAPI(ctx context.Context, texts []string) ([]byte, error) {
	jsonData, err := json.Marshal(cohereEmbedRequest{ //nolint:errchkjson // request contains only strings
		Texts:     texts,
		Model:     p.model,
		InputType: cohereInputType,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+p.apiKey)
	req.Header.Set(headerContentType, contentTypeJSON)
	req.Header.Set("Accept", contentTypeJSON)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("cohere request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, parseCohereError(body, resp.StatusCode)
	}

	return body, nil
}

func parseCohereError(body []byte, statusCode int) error {
	var errResp cohereErrorResponse
	if jsonErr := json.Unmarshal(body, &errResp); jsonErr == nil && errResp.Message != "" {
		return fmt.Errorf("%w (%d): %s", ErrCohereAPIFailure, statusCode, errResp.Message)
	}

	return fmt.Errorf("%w: status %d", ErrCohereAPIFailure, statusCode)
}

func (p *CohereProvider) parseEmbeddingResponse(body []byte, want int) (EmbeddingResult, error) {
	var cohereResp cohereEmbedResponse
	if err := json.Unmarshal(body, &cohereResp); err != nil {
		return EmbeddingResult{}, fmt.Errorf("decode response: %w", err)
	}

	if len(cohereResp.Embeddings) != want {
		return EmbeddingResult{}, ErrCohereEmptyResponse
	}

	return newResult(ProviderCohere, cohereResp.Embeddings), nil
}
