package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// GuidanceRepo handles the append-only guidance table.
type GuidanceRepo struct {
	pool *pgxpool.Pool
}

// NewGuidanceRepo creates a guidance repository over the pool.
func NewGuidanceRepo(pool *pgxpool.Pool) *GuidanceRepo {
	return &GuidanceRepo{pool: pool}
}

// Insert appends one guidance statement. Multiple rows per period are
// expected (distinct metrics and segments).
func (r *GuidanceRepo) Insert(ctx context.Context, g GuidanceRow) error {
	query := `
		INSERT INTO guidance (period_id, metric, min_value, max_value, units, basis, extracted_text, segment, source_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.pool.Exec(ctx, query,
		g.PeriodID, g.Metric, g.MinValue, g.MaxValue, g.Units, g.Basis,
		g.ExtractedText, g.Segment, g.SourceURL,
	)
	if err != nil {
		return fmt.Errorf("failed to insert guidance: %w", err)
	}
	return nil
}

// GuidedMetrics returns the distinct (period, metric) combinations a
// company has guidance for, newest period first.
func (r *GuidanceRepo) GuidedMetrics(ctx context.Context, companyID int64) ([]GuidedMetric, error) {
	query := `
		SELECT DISTINCT g.period_id, p.fy, p.fp, g.metric
		FROM guidance g
		JOIN periods p ON p.id = g.period_id
		WHERE p.company_id = $1
		ORDER BY p.fy DESC NULLS LAST, p.fp DESC NULLS LAST, g.period_id DESC
	`
	rows, err := r.pool.Query(ctx, query, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to query guided metrics: %w", err)
	}
	defer rows.Close()

	out := make([]GuidedMetric, 0)
	for rows.Next() {
		var m GuidedMetric
		if err := rows.Scan(&m.PeriodID, &m.FY, &m.FP, &m.Metric); err != nil {
			return nil, fmt.Errorf("failed to scan guided metric: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// PairsForCompany joins guidance statements with their stored actuals,
// most recent period first. The ordering is explicit so the scoring
// engine's "last four periods" slice is deterministic.
func (r *GuidanceRepo) PairsForCompany(ctx context.Context, companyID int64) ([]Pair, error) {
	query := `
		SELECT g.period_id, p.fy, p.fp, g.metric,
		       (g.min_value + g.max_value) / 2.0 AS guided_mid,
		       a.actual_value
		FROM guidance g
		JOIN periods p ON p.id = g.period_id
		JOIN actuals a ON a.period_id = g.period_id AND a.metric = g.metric
		WHERE p.company_id = $1
		ORDER BY p.fy DESC NULLS LAST, p.fp DESC NULLS LAST, g.id DESC
	`
	rows, err := r.pool.Query(ctx, query, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to query guidance pairs: %w", err)
	}
	defer rows.Close()

	out := make([]Pair, 0)
	for rows.Next() {
		var p Pair
		if err := rows.Scan(&p.PeriodID, &p.FY, &p.FP, &p.Metric, &p.GuidedMid, &p.ActualValue); err != nil {
			return nil, fmt.Errorf("failed to scan pair: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
