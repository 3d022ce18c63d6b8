package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const appEnvLocal = "local"

type Config struct {
	AppEnv         string        `env:"APP_ENV" envDefault:"local"`
	LogLevel       string        `env:"LOG_LEVEL" envDefault:"info"`
	HTTPPort       int           `env:"HTTP_PORT" envDefault:"8000"`
	CORSOrigins    []string      `env:"CORS_ORIGINS" envSeparator:"," envDefault:"*"`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"30s"`

	// Embedding providers, tried in this order with fallback.
	EmbeddingProviderOrder    string        `env:"EMBEDDING_PROVIDER_ORDER" envDefault:"onnx,openai,cohere,google"`
	EmbeddingCircuitThreshold int           `env:"EMBEDDING_CIRCUIT_THRESHOLD" envDefault:"5"`
	EmbeddingCircuitReset     time.Duration `env:"EMBEDDING_CIRCUIT_RESET" envDefault:"1m"`
	EmbeddingMockFallback     bool          `env:"EMBEDDING_MOCK_FALLBACK" envDefault:"false"`

	// Local sentence-transformer export (all-MiniLM-L6-v2 by default).
	ONNXLibraryPath   string `env:"ONNX_LIBRARY_PATH"`
	ONNXModelPath     string `env:"ONNX_MODEL_PATH"`
	ONNXTokenizerPath string `env:"ONNX_TOKENIZER_PATH"`
	ONNXMaxSeqLen     int    `env:"ONNX_MAX_SEQ_LEN" envDefault:"256"`

	OpenAIAPIKey         string `env:"OPENAI_API_KEY"`
	OpenAIEmbeddingModel string `env:"OPENAI_EMBEDDING_MODEL" envDefault:"text-embedding-3-small"`
	OpenAIEmbeddingRPS   int    `env:"OPENAI_EMBEDDING_RPS" envDefault:"5"`

	CohereAPIKey         string `env:"COHERE_API_KEY"`
	CohereEmbeddingModel string `env:"COHERE_EMBEDDING_MODEL" envDefault:"embed-english-v3.0"`
	CohereEmbeddingRPS   int    `env:"COHERE_EMBEDDING_RPS" envDefault:"2"`

	GoogleAPIKey         string `env:"GOOGLE_API_KEY"`
	GoogleEmbeddingModel string `env:"GOOGLE_EMBEDDING_MODEL" envDefault:"gemini-embedding-001"`
	GoogleEmbeddingRPS   int    `env:"GOOGLE_EMBEDDING_RPS" envDefault:"2"`

	// Embedding cache. The in-memory cache is used unless POSTGRES_DSN is set.
	EmbeddingCacheTTL           time.Duration `env:"EMBEDDING_CACHE_TTL" envDefault:"24h"`
	EmbeddingCacheMaxEntries    int           `env:"EMBEDDING_CACHE_MAX_ENTRIES" envDefault:"10000"`
	EmbeddingCacheSweepInterval time.Duration `env:"EMBEDDING_CACHE_SWEEP_INTERVAL" envDefault:"10m"`

	PostgresDSN         string        `env:"POSTGRES_DSN"`
	DBMaxConnections    int32         `env:"DB_MAX_CONNECTIONS" envDefault:"10"`
	DBMinConnections    int32         `env:"DB_MIN_CONNECTIONS" envDefault:"1"`
	DBMaxConnIdleTime   time.Duration `env:"DB_MAX_CONN_IDLE_TIME" envDefault:"5m"`
	DBMaxConnLifetime   time.Duration `env:"DB_MAX_CONN_LIFETIME" envDefault:"1h"`
	DBHealthCheckPeriod time.Duration `env:"DB_HEALTH_CHECK_PERIOD" envDefault:"1m"`

	EvalConcurrency int `env:"EVAL_CONCURRENCY" envDefault:"4"`
}

func Load() (*Config, error) {
	_ = godotenv.Load() //nolint:errcheck // .env file is optional, error is expected when not present

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing environment config: %w", err)
	}

	cfg.CORSOrigins = trimList(cfg.CORSOrigins)

	if cfg.EvalConcurrency < 1 {
		cfg.EvalConcurrency = 1
	}

	return cfg, nil
}

// IsLocal reports whether the process runs in a developer environment.
func (c *Config) IsLocal() bool {
	return c.AppEnv == appEnvLocal
}

// ProviderOrder splits EmbeddingProviderOrder into lowercase provider names.
func (c *Config) ProviderOrder() []string {
	var out []string

	for _, p := range strings.Split(c.EmbeddingProviderOrder, ",") {
		p = strings.ToLower(strings.TrimSpace(p))
		if p != "" {
			out = append(out, p)
		}
	}

	return out
}

// UsePostgresCache reports whether embeddings are cached in Postgres.
func (c *Config) UsePostgresCache() bool {
	return strings.TrimSpace(c.PostgresDSN) != ""
}

func trimList(values []string) []string {
	out := make([]string, 0, len(values))

	for _, v := range values {
		if s := strings.TrimSpace(v); s != "" {
			out = append(out, s)
		}
	}

	return out
}
