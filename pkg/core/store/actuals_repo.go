package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ActualsRepo handles the actuals table.
type ActualsRepo struct {
	pool *pgxpool.Pool
}

// NewActualsRepo creates an actuals repository over the pool.
func NewActualsRepo(pool *pgxpool.Pool) *ActualsRepo {
	return &ActualsRepo{pool: pool}
}

// Upsert stores the reported value for a (period, metric). A re-fetch
// replaces the prior row atomically on the natural key, so concurrent
// readers never observe an empty state.
func (r *ActualsRepo) Upsert(ctx context.Context, a ActualRow) error {
	query := `
		INSERT INTO actuals (period_id, metric, actual_value, units, source_tag, source_api_url)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (period_id, metric)
		DO UPDATE SET
			actual_value = EXCLUDED.actual_value,
			units = EXCLUDED.units,
			source_tag = EXCLUDED.source_tag,
			source_api_url = EXCLUDED.source_api_url
	`
	_, err := r.pool.Exec(ctx, query,
		a.PeriodID, a.Metric, a.ActualValue, a.Units, a.SourceTag, a.SourceAPIURL,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert actual: %w", err)
	}
	return nil
}
