package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ExhibitRepo handles the append-only exhibits audit trail.
type ExhibitRepo struct {
	pool *pgxpool.Pool
}

// NewExhibitRepo creates an exhibit repository over the pool.
func NewExhibitRepo(pool *pgxpool.Pool) *ExhibitRepo {
	return &ExhibitRepo{pool: pool}
}

// Insert records one processed exhibit document.
func (r *ExhibitRepo) Insert(ctx context.Context, e ExhibitRow) error {
	query := `
		INSERT INTO exhibits (period_id, exhibit_no, url, content_type, file_name, text_cache_path, deferred_guidance)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.pool.Exec(ctx, query,
		e.PeriodID, e.ExhibitNo, e.URL, e.ContentType, e.FileName, e.TextCachePath, e.DeferredGuidance,
	)
	if err != nil {
		return fmt.Errorf("failed to insert exhibit: %w", err)
	}
	return nil
}
