package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PeriodRepo handles the periods table.
type PeriodRepo struct {
	pool *pgxpool.Pool
}

// NewPeriodRepo creates a period repository over the pool.
func NewPeriodRepo(pool *pgxpool.Pool) *PeriodRepo {
	return &PeriodRepo{pool: pool}
}

// Ensure resolves a period by its NULL-safe identity key, creating it on
// first observation. On a hit, URL fields that were previously empty are
// backfilled from urls; populated fields are never overwritten. Identity
// fields are immutable. Repeated calls with the same key never create a
// second row.
func (r *PeriodRepo) Ensure(ctx context.Context, key PeriodKey, urls PeriodURLs) (int64, error) {
	lookup := `
		SELECT id FROM periods
		WHERE company_id = $1
		  AND fy IS NOT DISTINCT FROM $2
		  AND fp IS NOT DISTINCT FROM $3
		  AND period_end IS NOT DISTINCT FROM $4
		LIMIT 1
	`
	var id int64
	err := r.pool.QueryRow(ctx, lookup, key.CompanyID, key.FY, key.FP, key.PeriodEnd).Scan(&id)
	if err == nil {
		backfill := `
			UPDATE periods SET
				source_filing_url = COALESCE(source_filing_url, $2),
				source_exhibit_url = COALESCE(source_exhibit_url, $3),
				transcript_url = COALESCE(transcript_url, $4)
			WHERE id = $1
		`
		if _, err := r.pool.Exec(ctx, backfill, id, urls.SourceFilingURL, urls.SourceExhibitURL, urls.TranscriptURL); err != nil {
			return 0, fmt.Errorf("failed to backfill period %d: %w", id, err)
		}
		return id, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, fmt.Errorf("failed to look up period: %w", err)
	}

	insert := `
		INSERT INTO periods (company_id, fy, fp, period_end, source_filing_url, source_exhibit_url, transcript_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`
	err = r.pool.QueryRow(ctx, insert,
		key.CompanyID, key.FY, key.FP, key.PeriodEnd,
		urls.SourceFilingURL, urls.SourceExhibitURL, urls.TranscriptURL,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to insert period: %w", err)
	}
	return id, nil
}
