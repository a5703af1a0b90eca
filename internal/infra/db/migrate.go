package db

import (
	"context"
	"database/sql"
	"fmt"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS news (
    id              BIGSERIAL PRIMARY KEY,
    title           TEXT NOT NULL,
    slug            TEXT NOT NULL UNIQUE,
    excerpt         TEXT,
    content         TEXT,
    cover_image_url TEXT,
    gallery         JSONB NOT NULL DEFAULT '[]'::jsonb,
    published       BOOLEAN NOT NULL DEFAULT FALSE,
    published_at    TIMESTAMPTZ,
    created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at      TIMESTAMPTZ NOT NULL DEFAULT now()
)`,
	`CREATE TABLE IF NOT EXISTS partnerships (
    id            BIGSERIAL PRIMARY KEY,
    name          TEXT NOT NULL,
    slug          TEXT NOT NULL UNIQUE,
    description   TEXT,
    logo_url      TEXT,
    website_url   TEXT,
    category      TEXT,
    display_order INTEGER NOT NULL DEFAULT 0,
    active        BOOLEAN NOT NULL DEFAULT TRUE,
    created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at    TIMESTAMPTZ NOT NULL DEFAULT now()
)`,
	// admin list ordering
	`CREATE INDEX IF NOT EXISTS idx_news_created_at ON news(created_at DESC)`,
	// public listing
	`CREATE INDEX IF NOT EXISTS idx_news_published_at ON news(published_at DESC) WHERE published = TRUE`,
	`CREATE INDEX IF NOT EXISTS idx_partnerships_display_order ON partnerships(display_order, id)`,
}

// MigrateUp creates the content tables and indexes if they do not exist.
func MigrateUp(ctx context.Context, db *sql.DB) error {
	for i, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate step %d: %w", i+1, err)
		}
	}
	return nil
}
