package db

import (
	"context"
	"database/sql"
	"fmt"
)

var schemas = map[string][]string{
	DriverPostgres: {
		`CREATE TABLE IF NOT EXISTS articles (
    id             BIGSERIAL PRIMARY KEY,
    article_number INTEGER NOT NULL UNIQUE CHECK (article_number > 0),
    brand          TEXT NOT NULL,
    is_bulky       BOOLEAN NOT NULL DEFAULT FALSE,
    is_approved    BOOLEAN NOT NULL DEFAULT FALSE,
    last_changed   TIMESTAMPTZ NOT NULL,
    version        BIGINT NOT NULL DEFAULT 1
)`,
		`CREATE TABLE IF NOT EXISTS article_attributes (
    id          BIGSERIAL PRIMARY KEY,
    article_id  BIGINT NOT NULL REFERENCES articles(id) ON DELETE CASCADE,
    country     VARCHAR(2) NOT NULL,
    title       TEXT NOT NULL,
    description TEXT NOT NULL,
    color       TEXT NOT NULL,
    last_change TIMESTAMPTZ NOT NULL,
    UNIQUE (article_id, country)
)`,
		`CREATE INDEX IF NOT EXISTS idx_articles_last_changed ON articles(last_changed)`,
	},
	DriverSQLite: {
		`CREATE TABLE IF NOT EXISTS articles (
    id             INTEGER PRIMARY KEY AUTOINCREMENT,
    article_number INTEGER NOT NULL UNIQUE CHECK (article_number > 0),
    brand          TEXT NOT NULL,
    is_bulky       BOOLEAN NOT NULL DEFAULT 0,
    is_approved    BOOLEAN NOT NULL DEFAULT 0,
    last_changed   TIMESTAMP NOT NULL,
    version        INTEGER NOT NULL DEFAULT 1
)`,
		`CREATE TABLE IF NOT EXISTS article_attributes (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    article_id  INTEGER NOT NULL REFERENCES articles(id) ON DELETE CASCADE,
    country     TEXT NOT NULL,
    title       TEXT NOT NULL,
    description TEXT NOT NULL,
    color       TEXT NOT NULL,
    last_change TIMESTAMP NOT NULL,
    UNIQUE (article_id, country)
)`,
		`CREATE INDEX IF NOT EXISTS idx_articles_last_changed ON articles(last_changed)`,
	},
}

// MigrateUp creates the article tables and indexes if they do not exist.
func MigrateUp(ctx context.Context, db *sql.DB, driver string) error {
	stmts, ok := schemas[driver]
	if !ok {
		return fmt.Errorf("unsupported database driver %q", driver)
	}
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate %s: %w", driver, err)
		}
	}
	return nil
}
