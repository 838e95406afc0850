package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func OpenDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

// EnsureSchema creates the engine tables idempotently. The keyword
// weight uniqueness index is created only after the dedup pass, so a
// table inherited from before the constraint existed converges cleanly.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Serialize bootstrap DDL across concurrent worker startups.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026083001)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const ddl = `
CREATE TABLE IF NOT EXISTS categories (
	id TEXT PRIMARY KEY,
	tenant_id TEXT NOT NULL DEFAULT '',
	key TEXT NOT NULL,
	name TEXT NOT NULL,
	active BOOLEAN NOT NULL DEFAULT TRUE,
	created_at TIMESTAMPTZ NOT NULL,
	UNIQUE (tenant_id, key)
);

CREATE INDEX IF NOT EXISTS idx_categories_tenant_active ON categories(tenant_id, active);

CREATE TABLE IF NOT EXISTS keyword_weights (
	category_id TEXT NOT NULL REFERENCES categories(id) ON DELETE CASCADE,
	term TEXT NOT NULL,
	language TEXT NOT NULL,
	weight DOUBLE PRECISION NOT NULL,
	match_count INTEGER NOT NULL DEFAULT 0,
	learned BOOLEAN NOT NULL DEFAULT FALSE,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS stop_words (
	word TEXT NOT NULL,
	language TEXT NOT NULL,
	PRIMARY KEY (word, language)
);

CREATE TABLE IF NOT EXISTS classification_settings (
	key TEXT PRIMARY KEY,
	value TEXT NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS batch_jobs (
	id TEXT PRIMARY KEY,
	tenant_id TEXT NOT NULL,
	status TEXT NOT NULL,
	total INTEGER NOT NULL,
	processed INTEGER NOT NULL DEFAULT 0,
	succeeded INTEGER NOT NULL DEFAULT 0,
	failed INTEGER NOT NULL DEFAULT 0,
	current_item TEXT,
	error_message TEXT,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS batch_items (
	job_id TEXT NOT NULL REFERENCES batch_jobs(id) ON DELETE CASCADE,
	document_id TEXT NOT NULL,
	storage_key TEXT NOT NULL,
	filename TEXT NOT NULL DEFAULT '',
	status TEXT NOT NULL,
	category_id TEXT,
	score DOUBLE PRECISION NOT NULL DEFAULT 0,
	outcome TEXT,
	error_message TEXT,
	PRIMARY KEY (job_id, document_id)
);

CREATE INDEX IF NOT EXISTS idx_batch_jobs_status ON batch_jobs(status);
`
	if _, err := tx.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if _, err := tx.ExecContext(ctx, dedupeWeightsQuery); err != nil {
		return fmt.Errorf("dedupe keyword weights: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `
CREATE UNIQUE INDEX IF NOT EXISTS uq_keyword_weights
ON keyword_weights(category_id, term, language)
`); err != nil {
		return fmt.Errorf("ensure keyword weight uniqueness: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}
