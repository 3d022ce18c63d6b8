package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/pgvector/pgvector-go"

	graderrors "github.com/lueurxax/answer-grader/internal/core/errors"
)

// EmbeddingCache stores embedding vectors in the embedding_cache table.
type EmbeddingCache struct {
	db *DB
}

// NewEmbeddingCache returns a cache backed by db.
func NewEmbeddingCache(db *DB) *EmbeddingCache {
	return &EmbeddingCache{db: db}
}

// Get returns the vector for key, or ErrCacheNotFound / ErrCacheExpired.
func (c *EmbeddingCache) Get(ctx context.Context, key string) ([]float32, error) {
	row := c.db.Pool.QueryRow(ctx, `
		SELECT embedding, expires_at
		FROM embedding_cache
		WHERE cache_key = $1
	`, key)

	var (
		vec     pgvector.Vector
		expires pgtype.Timestamptz
	)

	if err := row.Scan(&vec, &expires); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, graderrors.ErrCacheNotFound
		}

		return nil, fmt.Errorf("get embedding cache: %w", err)
	}

	if expires.Valid && !time.Now().Before(expires.Time) {
		return nil, graderrors.ErrCacheExpired
	}

	return vec.Slice(), nil
}

// Put upserts a vector. A non-positive ttl stores it without expiry.
func (c *EmbeddingCache) Put(ctx context.Context, key, provider string, vector []float32, ttl time.Duration) error {
	expires := pgtype.Timestamptz{}
	if ttl > 0 {
		expires = pgtype.Timestamptz{Time: time.Now().Add(ttl), Valid: true}
	}

	_, err := c.db.Pool.Exec(ctx, `
		INSERT INTO embedding_cache (cache_key, provider, embedding, expires_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (cache_key) DO UPDATE
		SET provider = EXCLUDED.provider,
		    embedding = EXCLUDED.embedding,
		    expires_at = EXCLUDED.expires_at,
		    created_at = now()
	`, key, provider, pgvector.NewVector(vector), expires)
	if err != nil {
		return fmt.Errorf("put embedding cache: %w", err)
	}

	return nil
}

// DeleteExpired removes expired rows and returns how many were deleted.
func (c *EmbeddingCache) DeleteExpired(ctx context.Context) (int64, error) {
	tag, err := c.db.Pool.Exec(ctx, `
		DELETE FROM embedding_cache
		WHERE expires_at IS NOT NULL AND expires_at <= now()
	`)
	if err != nil {
		return 0, fmt.Errorf("delete expired embeddings: %w", err)
	}

	return tag.RowsAffected(), nil
}
