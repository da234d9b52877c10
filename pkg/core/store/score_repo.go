package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ScoreRepo handles the scores table.
type ScoreRepo struct {
	pool *pgxpool.Pool
}

// NewScoreRepo creates a score repository over the pool.
func NewScoreRepo(pool *pgxpool.Pool) *ScoreRepo {
	return &ScoreRepo{pool: pool}
}

// Upsert replaces the current score for a period atomically on the
// period_id natural key.
func (r *ScoreRepo) Upsert(ctx context.Context, s ScoreRow) error {
	query := `
		INSERT INTO scores (period_id, tra, cvp, lr, gci, badge, rationale, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
		ON CONFLICT (period_id)
		DO UPDATE SET
			tra = EXCLUDED.tra,
			cvp = EXCLUDED.cvp,
			lr = EXCLUDED.lr,
			gci = EXCLUDED.gci,
			badge = EXCLUDED.badge,
			rationale = EXCLUDED.rationale,
			updated_at = NOW()
	`
	_, err := r.pool.Exec(ctx, query, s.PeriodID, s.TRA, s.CVP, s.LR, s.GCI, s.Badge, s.Rationale)
	if err != nil {
		return fmt.Errorf("failed to upsert score: %w", err)
	}
	return nil
}

// CurrentScore is one row of the all-current-scores listing.
type CurrentScore struct {
	Ticker string
	FY     *int
	FP     *string
	ScoreRow
}

// ListCurrent returns every period's current score with its company ticker.
func (r *ScoreRepo) ListCurrent(ctx context.Context) ([]CurrentScore, error) {
	query := `
		SELECT c.ticker, p.fy, p.fp, s.period_id, s.tra, s.cvp, s.lr, s.gci, s.badge, s.rationale
		FROM scores s
		JOIN periods p ON p.id = s.period_id
		JOIN companies c ON c.id = p.company_id
		ORDER BY c.ticker, p.fy DESC NULLS LAST, p.fp DESC NULLS LAST
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list scores: %w", err)
	}
	defer rows.Close()

	out := make([]CurrentScore, 0)
	for rows.Next() {
		var s CurrentScore
		if err := rows.Scan(&s.Ticker, &s.FY, &s.FP, &s.PeriodID, &s.TRA, &s.CVP, &s.LR, &s.GCI, &s.Badge, &s.Rationale); err != nil {
			return nil, fmt.Errorf("failed to scan score: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// TableCounts returns per-table row counts for the diagnostic endpoint.
func (r *ScoreRepo) TableCounts(ctx context.Context) (map[string]int64, error) {
	tables := []string{"companies", "periods", "guidance", "actuals", "exhibits", "language_metrics", "scores"}
	counts := make(map[string]int64, len(tables))
	for _, t := range tables {
		var n int64
		if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM "+t).Scan(&n); err != nil {
			return nil, fmt.Errorf("failed to count %s: %w", t, err)
		}
		counts[t] = n
	}
	return counts, nil
}
