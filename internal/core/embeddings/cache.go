package embeddings

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/rs/zerolog"

	graderrors "github.com/lueurxax/answer-grader/internal/core/errors"
)

// Store persists embedding vectors by key.
type Store interface {
	// Get returns the cached vector. Misses return ErrCacheNotFound or ErrCacheExpired.
	Get(ctx context.Context, key string) ([]float32, error)
	// Put stores a vector produced by provider for ttl.
	Put(ctx context.Context, key, provider string, vector []float32, ttl time.Duration) error
}

// PreferringClient is a Client that can tell which provider will serve the next call.
type PreferringClient interface {
	Client
	PreferredProvider() ProviderName
}

// CacheKey derives the store key for text embedded by provider.
func CacheKey(provider ProviderName, text string) string {
	h := sha256.New()
	_, _ = h.Write([]byte(provider))
	_, _ = h.Write([]byte{0})
	_, _ = h.Write([]byte(text))

	return string(provider) + ":" + hex.EncodeToString(h.Sum(nil))
}

// CachedClient serves repeated texts from a Store. Cached vectors are looked up
// under the provider the registry currently prefers; when a fallback provider
// answers instead, the whole batch is re-embedded by that provider.
type CachedClient struct {
	inner  PreferringClient
	store  Store
	ttl    time.Duration
	logger *zerolog.Logger
}

// NewCachedClient wraps inner with a cache.
func NewCachedClient(inner PreferringClient, store Store, ttl time.Duration, logger *zerolog.Logger) *CachedClient {
	return &CachedClient{
		inner:  inner,
		store:  store,
		ttl:    ttl,
		logger: logger,
	}
}

// Embed returns vectors for texts, embedding only cache misses when possible.
func (c *CachedClient) Embed(ctx context.Context, texts []string) (EmbeddingResult, error) {
	if len(texts) == 0 {
		return EmbeddingResult{}, nil
	}

	provider := c.inner.PreferredProvider()
	if provider == "" {
		return c.inner.Embed(ctx, texts)
	}

	vectors := make([][]float32, len(texts))

	var (
		missTexts []string
		missIdx   []int
	)

	for i, text := range texts {
		vec, err := c.store.Get(ctx, CacheKey(provider, text))
		if err == nil {
			vectors[i] = vec
			continue
		}

		if !graderrors.Is(err, graderrors.ErrCacheNotFound) && !graderrors.Is(err, graderrors.ErrCacheExpired) {
			recordCache(cacheResultError, 1)
			c.logger.Warn().Err(err).Str(logKeyProvider, string(provider)).Msg("embedding cache lookup failed")
		}

		missTexts = append(missTexts, text)
		missIdx = append(missIdx, i)
	}

	recordCache(cacheResultHit, len(texts)-len(missTexts))
	recordCache(cacheResultMiss, len(missTexts))

	if len(missTexts) == 0 {
		return newResult(provider, vectors), nil
	}

	res, err := c.inner.Embed(ctx, missTexts)
	if err != nil {
		return EmbeddingResult{}, err
	}

	if res.Provider != provider && len(missTexts) < len(texts) {
		c.logger.Debug().
			Str(logKeyProvider, string(res.Provider)).
			Str(logKeyFromProvider, string(provider)).
			Msg("provider changed, re-embedding cached texts")

		full, err := c.inner.Embed(ctx, texts)
		if err != nil {
			return EmbeddingResult{}, err
		}

		c.storeAll(ctx, full.Provider, texts, full.Vectors)

		return full, nil
	}

	for j, i := range missIdx {
		vectors[i] = res.Vectors[j]
	}

	c.storeAll(ctx, res.Provider, missTexts, res.Vectors)

	return newResult(res.Provider, vectors), nil
}

func (c *CachedClient) storeAll(ctx context.Context, provider ProviderName, texts []string, vectors [][]float32) {
	stored := 0

	for i, text := range texts {
		if i >= len(vectors) {
			break
		}

		if err := c.store.Put(ctx, CacheKey(provider, text), string(provider), vectors[i], c.ttl); err != nil {
			recordCache(cacheResultError, 1)
			c.logger.Warn().Err(err).Str(logKeyProvider, string(provider)).Msg("embedding cache write failed")

			continue
		}

		stored++
	}

	recordCache(cacheResultStored, stored)
}

// MemoryStore is an in-process Store backed by a size-capped LRU. Entries
// leave the LRU after the store TTL; a shorter per-entry ttl given to Put is
// enforced on read.
type MemoryStore struct {
	lru *expirable.LRU[string, memoryEntry]
	now func() time.Time
}

type memoryEntry struct {
	vector    []float32
	provider  string
	expiresAt time.Time
}

// NewMemoryStore creates a store holding at most maxEntries vectors (unbounded
// when <= 0) for at most ttl (no store-wide expiry when <= 0).
func NewMemoryStore(maxEntries int, ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		lru: expirable.NewLRU[string, memoryEntry](max(maxEntries, 0), nil, ttl),
		now: time.Now,
	}
}

// Get returns a copy of the cached vector.
func (s *MemoryStore) Get(_ context.Context, key string) ([]float32, error) {
	e, ok := s.lru.Get(key)
	if !ok {
		return nil, graderrors.ErrCacheNotFound
	}

	if s.expired(e) {
		s.lru.Remove(key)
		return nil, graderrors.ErrCacheExpired
	}

	out := make([]float32, len(e.vector))
	copy(out, e.vector)

	return out, nil
}

// Put stores a copy of vector. A non-positive ttl leaves only the store TTL in
// effect. When the store is full the least recently used entry is evicted.
func (s *MemoryStore) Put(_ context.Context, key, provider string, vector []float32, ttl time.Duration) error {
	var expiresAt time.Time
	if ttl > 0 {
		expiresAt = s.now().Add(ttl)
	}

	stored := make([]float32, len(vector))
	copy(stored, vector)

	s.lru.Add(key, memoryEntry{vector: stored, provider: provider, expiresAt: expiresAt})

	return nil
}

// Sweep removes entries past their per-entry expiry and returns how many were
// dropped. Store-wide expiry is handled by the LRU itself.
func (s *MemoryStore) Sweep() int {
	removed := 0

	for _, key := range s.lru.Keys() {
		if e, ok := s.lru.Peek(key); ok && s.expired(e) {
			if s.lru.Remove(key) {
				removed++
			}
		}
	}

	return removed
}

// Len returns the number of stored entries.
func (s *MemoryStore) Len() int {
	return s.lru.Len()
}

func (s *MemoryStore) expired(e memoryEntry) bool {
	return !e.expiresAt.IsZero() && !s.now().Before(e.expiresAt)
}
