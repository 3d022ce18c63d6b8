// Package app provides the main application bootstrap and runtime orchestration.
//
// The App type loads the linguistic and embedding models once, wires the
// embedding cache and the evaluator, and exposes two ways to run:
//
//   - Serve: the HTTP API together with health, readiness and metrics endpoints
//   - Evaluator: direct access for batch tools
//
// A background worker loop sweeps expired embedding cache entries while serving.
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/lueurxax/answer-grader/internal/api"
	"github.com/lueurxax/answer-grader/internal/core/embeddings"
	"github.com/lueurxax/answer-grader/internal/core/nlp"
	"github.com/lueurxax/answer-grader/internal/grading"
	"github.com/lueurxax/answer-grader/internal/platform/config"
	"github.com/lueurxax/answer-grader/internal/platform/observability"
	"github.com/lueurxax/answer-grader/internal/platform/worker"
	db "github.com/lueurxax/answer-grader/internal/storage"
)

const (
	apiPrefix = "/"

	workerName    = "grader-maintenance"
	taskSweepName = "embedding-cache-sweep"

	logFieldRemoved   = "removed"
	logFieldProviders = "providers"
	logFieldCache     = "cache"

	cacheKindMemory   = "memory"
	cacheKindPostgres = "postgres"
)

// App holds the application dependencies.
type App struct {
	cfg    *config.Config
	logger *zerolog.Logger

	annotator *nlp.ProseAnnotator
	registry  *embeddings.Registry
	evaluator *grading.Evaluator

	database    *db.DB
	pgCache     *db.EmbeddingCache
	memoryCache *embeddings.MemoryStore
}

// New loads the models and wires the evaluator. Model load failures wrap
// ErrModelUnavailable.
func New(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) (*App, error) {
	a := &App{cfg: cfg, logger: logger}

	annotator, err := nlp.NewProseAnnotator(logger)
	if err != nil {
		return nil, err
	}

	a.annotator = annotator

	registry, err := embeddings.NewRegistryFromConfig(ctx, embeddingConfig(cfg), logger)
	if err != nil {
		return nil, fmt.Errorf("embedding providers: %w", err)
	}

	a.registry = registry

	store, err := a.newCacheStore(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}

	client := embeddings.NewCachedClient(registry, store, cfg.EmbeddingCacheTTL, logger)
	a.evaluator = grading.NewEvaluator(annotator, client, logger)

	logger.Info().
		Interface(logFieldProviders, registry.ProviderNames()).
		Str(logFieldCache, a.cacheKind()).
		Msg("grader ready")

	return a, nil
}

func embeddingConfig(cfg *config.Config) embeddings.Config {
	return embeddings.Config{
		ONNX: embeddings.ONNXConfig{
			LibraryPath:   cfg.ONNXLibraryPath,
			ModelPath:     cfg.ONNXModelPath,
			TokenizerPath: cfg.ONNXTokenizerPath,
			MaxSeqLen:     cfg.ONNXMaxSeqLen,
		},
		OpenAIAPIKey:    cfg.OpenAIAPIKey,
		OpenAIModel:     cfg.OpenAIEmbeddingModel,
		OpenAIRateLimit: cfg.OpenAIEmbeddingRPS,
		CohereAPIKey:    cfg.CohereAPIKey,
		CohereModel:     cfg.CohereEmbeddingModel,
		CohereRateLimit: cfg.CohereEmbeddingRPS,
		GoogleAPIKey:    cfg.GoogleAPIKey,
		GoogleModel:     cfg.GoogleEmbeddingModel,
		GoogleRateLimit: cfg.GoogleEmbeddingRPS,
		ProviderOrder:   cfg.ProviderOrder(),
		CircuitBreakerConfig: embeddings.CircuitBreakerConfig{
			Threshold:  cfg.EmbeddingCircuitThreshold,
			ResetAfter: cfg.EmbeddingCircuitReset,
		},
		MockFallback: cfg.EmbeddingMockFallback,
	}
}

func (a *App) newCacheStore(ctx context.Context) (embeddings.Store, error) {
	if !a.cfg.UsePostgresCache() {
		a.memoryCache = embeddings.NewMemoryStore(a.cfg.EmbeddingCacheMaxEntries, a.cfg.EmbeddingCacheTTL)
		return a.memoryCache, nil
	}

	poolOpts := db.PoolOptions{
		MaxConns:          a.cfg.DBMaxConnections,
		MinConns:          a.cfg.DBMinConnections,
		MaxConnIdleTime:   a.cfg.DBMaxConnIdleTime,
		MaxConnLifetime:   a.cfg.DBMaxConnLifetime,
		HealthCheckPeriod: a.cfg.DBHealthCheckPeriod,
	}

	database, err := db.NewWithOptions(ctx, a.cfg.PostgresDSN, poolOpts, a.logger)
	if err != nil {
		return nil, fmt.Errorf("embedding cache database: %w", err)
	}

	if err := database.Migrate(ctx); err != nil {
		database.Close()
		return nil, fmt.Errorf("embedding cache migrations: %w", err)
	}

	a.database = database
	a.pgCache = db.NewEmbeddingCache(database)

	return a.pgCache, nil
}

func (a *App) cacheKind() string {
	if a.pgCache != nil {
		return cacheKindPostgres
	}

	return cacheKindMemory
}

// Evaluator returns the shared evaluator.
func (a *App) Evaluator() *grading.Evaluator {
	return a.evaluator
}

// Ready reports whether the grader can serve requests.
func (a *App) Ready(ctx context.Context) error {
	if err := a.registry.Ready(ctx); err != nil {
		return fmt.Errorf("embeddings: %w", err)
	}

	if a.database != nil {
		if err := a.database.Ping(ctx); err != nil {
			return err
		}
	}

	return nil
}

// Serve runs the HTTP server and the maintenance loop until ctx is canceled.
func (a *App) Serve(ctx context.Context) error {
	handler := api.NewHandler(a.evaluator, a.cfg.RequestTimeout, a.logger)
	srv := observability.NewServerWithAPI(a.cfg.HTTPPort, a.Ready, apiPrefix, handler.Routes(a.cfg.CORSOrigins), a.logger)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := srv.Start(gctx); err != nil {
			return fmt.Errorf("http server: %w", err)
		}

		return nil
	})

	g.Go(func() error {
		err := worker.Loop(gctx, worker.Config{
			Name: workerName,
			Tasks: []worker.Task{
				{Name: taskSweepName, Interval: a.cfg.EmbeddingCacheSweepInterval, Run: a.sweepCache},
			},
			Logger: a.logger,
		})
		if errors.Is(err, context.Canceled) {
			return nil
		}

		return err
	})

	return g.Wait()
}

func (a *App) sweepCache(ctx context.Context) {
	if a.pgCache != nil {
		removed, err := a.pgCache.DeleteExpired(ctx)
		if err != nil {
			a.logger.Warn().Err(err).Msg("embedding cache sweep failed")
			return
		}

		a.logger.Debug().Int64(logFieldRemoved, removed).Msg("embedding cache swept")

		return
	}

	if a.memoryCache != nil {
		removed := a.memoryCache.Sweep()
		a.logger.Debug().Int(logFieldRemoved, removed).Msg("embedding cache swept")
	}
}

// Close releases models and connections.
func (a *App) Close() {
	if a.registry != nil {
		if err := a.registry.Close(); err != nil {
			a.logger.Warn().Err(err).Msg("close embedding providers")
		}
	}

	if a.database != nil {
		a.database.Close()
	}
}
