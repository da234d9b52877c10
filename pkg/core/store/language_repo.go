package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// LanguageRepo handles the language_metrics table.
type LanguageRepo struct {
	pool *pgxpool.Pool
}

// NewLanguageRepo creates a language-metrics repository over the pool.
func NewLanguageRepo(pool *pgxpool.Pool) *LanguageRepo {
	return &LanguageRepo{pool: pool}
}

// Insert appends one analysis run.
func (r *LanguageRepo) Insert(ctx context.Context, m LanguageRow) error {
	query := `
		INSERT INTO language_metrics (period_id, words_total, hedges_per_k, negations_per_k, uncertainty_per_k, vague_per_k, source_section)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.pool.Exec(ctx, query,
		m.PeriodID, m.WordsTotal, m.HedgesPerK, m.NegationsPerK, m.UncertainPerK, m.VaguePerK, m.SourceSection,
	)
	if err != nil {
		return fmt.Errorf("failed to insert language metrics: %w", err)
	}
	return nil
}

// LatestForCompany returns the company's most recently stored metrics, or
// nil when none exist yet.
func (r *LanguageRepo) LatestForCompany(ctx context.Context, companyID int64) (*LanguageRow, error) {
	query := `
		SELECT m.period_id, m.words_total, m.hedges_per_k, m.negations_per_k, m.uncertainty_per_k, m.vague_per_k, m.source_section
		FROM language_metrics m
		JOIN periods p ON p.id = m.period_id
		WHERE p.company_id = $1
		ORDER BY m.id DESC
		LIMIT 1
	`
	var m LanguageRow
	err := r.pool.QueryRow(ctx, query, companyID).Scan(
		&m.PeriodID, &m.WordsTotal, &m.HedgesPerK, &m.NegationsPerK, &m.UncertainPerK, &m.VaguePerK, &m.SourceSection,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load language metrics: %w", err)
	}
	return &m, nil
}
