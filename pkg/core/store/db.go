// Package store persists extraction runs to Postgres. Persistence is
// optional: a Store built from an empty connection string is disabled and
// every call becomes a no-op, so the extractor works without a database.
package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Store wraps a pgx connection pool. A nil pool means persistence is
// disabled.
type Store struct {
	pool *pgxpool.Pool
}

// New connects to Postgres at dbURL. An empty dbURL returns a disabled
// store rather than an error.
func New(ctx context.Context, dbURL string) (*Store, error) {
	if dbURL == "" {
		return &Store{}, nil
	}
	config, err := pgxpool.ParseConfig(dbURL)
	if err != nil {
		return nil, fmt.Errorf("parsing database config: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}
	return &Store{pool: pool}, nil
}

// NewWithPool wraps an existing pool. Used by tests and callers that manage
// pool lifecycle themselves.
func NewWithPool(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Enabled reports whether the store is backed by a live connection.
func (s *Store) Enabled() bool {
	return s.pool != nil
}

// Close releases the connection pool.
func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}
