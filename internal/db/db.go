// Package db provides PostgreSQL persistence for portfolios.
package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/singleflight"
)

// DB wraps a PostgreSQL connection pool.
type DB struct {
	pool *pgxpool.Pool

	// slugChecks collapses concurrent availability queries for the same
	// candidate into one round trip.
	slugChecks singleflight.Group
}

// Connect establishes a connection pool to the database.
func Connect(ctx context.Context, databaseURL string) (*DB, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{pool: pool}, nil
}

// Close closes the connection pool.
func (db *DB) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
}

// EnsureSchema creates the portfolios table if it does not exist.
func (db *DB) EnsureSchema(ctx context.Context) error {
	_, err := db.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS portfolios (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			user_id UUID NOT NULL UNIQUE,
			slug TEXT NOT NULL UNIQUE,
			custom_domain TEXT UNIQUE,
			document JSONB NOT NULL DEFAULT '{}',
			template_id TEXT NOT NULL DEFAULT 'standard',
			theme_id TEXT NOT NULL DEFAULT 'minimal',
			color_mode TEXT NOT NULL DEFAULT 'light',
			primary_color TEXT NOT NULL DEFAULT '#6366f1',
			hidden_sections TEXT NOT NULL DEFAULT '',
			is_published BOOLEAN NOT NULL DEFAULT false,
			view_count INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS idx_portfolios_slug ON portfolios (slug);
		CREATE INDEX IF NOT EXISTS idx_portfolios_user_id ON portfolios (user_id);
	`)
	if err != nil {
		return fmt.Errorf("failed to ensure schema: %w", err)
	}
	return nil
}
