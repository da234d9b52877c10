package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/phuslu/log"
)

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS companies (
		id BIGSERIAL PRIMARY KEY,
		ticker TEXT NOT NULL UNIQUE,
		cik TEXT NOT NULL,
		name TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS periods (
		id BIGSERIAL PRIMARY KEY,
		company_id BIGINT NOT NULL REFERENCES companies(id),
		fy INT,
		fp TEXT,
		period_end TEXT,
		source_filing_url TEXT,
		source_exhibit_url TEXT,
		transcript_url TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS guidance (
		id BIGSERIAL PRIMARY KEY,
		period_id BIGINT NOT NULL REFERENCES periods(id),
		metric TEXT NOT NULL,
		min_value DOUBLE PRECISION,
		max_value DOUBLE PRECISION,
		units TEXT,
		basis TEXT,
		extracted_text TEXT,
		segment TEXT,
		source_url TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS actuals (
		id BIGSERIAL PRIMARY KEY,
		period_id BIGINT NOT NULL REFERENCES periods(id),
		metric TEXT NOT NULL,
		actual_value DOUBLE PRECISION,
		units TEXT,
		source_tag TEXT,
		source_api_url TEXT,
		UNIQUE (period_id, metric)
	)`,
	`CREATE TABLE IF NOT EXISTS exhibits (
		id BIGSERIAL PRIMARY KEY,
		period_id BIGINT NOT NULL REFERENCES periods(id),
		exhibit_no TEXT,
		url TEXT,
		content_type TEXT,
		file_name TEXT,
		text_cache_path TEXT,
		deferred_guidance BOOLEAN DEFAULT FALSE,
		created_at TIMESTAMPTZ DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS language_metrics (
		id BIGSERIAL PRIMARY KEY,
		period_id BIGINT NOT NULL REFERENCES periods(id),
		words_total INT,
		hedges_per_k DOUBLE PRECISION,
		negations_per_k DOUBLE PRECISION,
		uncertainty_per_k DOUBLE PRECISION,
		vague_per_k DOUBLE PRECISION,
		source_section TEXT,
		created_at TIMESTAMPTZ DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS scores (
		id BIGSERIAL PRIMARY KEY,
		period_id BIGINT NOT NULL UNIQUE REFERENCES periods(id),
		tra DOUBLE PRECISION,
		cvp DOUBLE PRECISION,
		lr DOUBLE PRECISION,
		gci DOUBLE PRECISION,
		badge TEXT,
		rationale TEXT,
		updated_at TIMESTAMPTZ DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_periods_company ON periods(company_id)`,
	`CREATE INDEX IF NOT EXISTS idx_guidance_period ON guidance(period_id)`,
	`CREATE INDEX IF NOT EXISTS idx_exhibits_period ON exhibits(period_id)`,
}

// Columns added after the initial schema shipped. Plain ALTERs so the
// statements stay portable; "already exists" failures are ignored.
var columnBackfills = []string{
	`ALTER TABLE exhibits ADD COLUMN deferred_guidance BOOLEAN DEFAULT FALSE`,
	`ALTER TABLE guidance ADD COLUMN segment TEXT`,
	`ALTER TABLE guidance ADD COLUMN source_url TEXT`,
}

// Migrate applies the idempotent schema statements. Failures on the CREATE
// statements are fatal; backfill ALTERs ignore duplicates.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range migrations {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	for _, stmt := range columnBackfills {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			if strings.Contains(err.Error(), "already exists") {
				continue
			}
			log.Warn().Err(err).Msg("column backfill failed")
		}
	}
	return nil
}
