package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrCompanyNotFound is returned when a ticker has no company row.
var ErrCompanyNotFound = errors.New("store: company not found")

// CompanyRepo handles the companies table.
type CompanyRepo struct {
	pool *pgxpool.Pool
}

// NewCompanyRepo creates a company repository over the pool.
func NewCompanyRepo(pool *pgxpool.Pool) *CompanyRepo {
	return &CompanyRepo{pool: pool}
}

// Ensure creates the company on first sight of the ticker and refreshes the
// display name on conflict. The CIK is part of company identity and is not
// updated once set.
func (r *CompanyRepo) Ensure(ctx context.Context, ticker, cik, name string) (*Company, error) {
	query := `
		INSERT INTO companies (ticker, cik, name)
		VALUES ($1, $2, $3)
		ON CONFLICT (ticker)
		DO UPDATE SET name = EXCLUDED.name
		RETURNING id, ticker, cik, name
	`
	var c Company
	err := r.pool.QueryRow(ctx, query, strings.ToUpper(ticker), cik, name).
		Scan(&c.ID, &c.Ticker, &c.CIK, &c.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to ensure company %s: %w", ticker, err)
	}
	return &c, nil
}

// GetByTicker looks a company up by its ticker.
func (r *CompanyRepo) GetByTicker(ctx context.Context, ticker string) (*Company, error) {
	query := `SELECT id, ticker, cik, name FROM companies WHERE ticker = $1`
	var c Company
	err := r.pool.QueryRow(ctx, query, strings.ToUpper(ticker)).
		Scan(&c.ID, &c.Ticker, &c.CIK, &c.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrCompanyNotFound, ticker)
		}
		return nil, fmt.Errorf("failed to load company %s: %w", ticker, err)
	}
	return &c, nil
}

// List returns all companies ordered by ticker.
func (r *CompanyRepo) List(ctx context.Context) ([]Company, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, ticker, cik, name FROM companies ORDER BY ticker ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list companies: %w", err)
	}
	defer rows.Close()

	out := make([]Company, 0)
	for rows.Next() {
		var c Company
		if err := rows.Scan(&c.ID, &c.Ticker, &c.CIK, &c.Name); err != nil {
			return nil, fmt.Errorf("failed to scan company: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// ListWithPairs returns companies having at least one guidance statement
// with a stored actual for the same period and metric.
func (r *CompanyRepo) ListWithPairs(ctx context.Context) ([]Company, error) {
	query := `
		SELECT DISTINCT c.id, c.ticker, c.cik, c.name
		FROM companies c
		JOIN periods p ON p.company_id = c.id
		JOIN guidance g ON g.period_id = p.id
		JOIN actuals a ON a.period_id = g.period_id AND a.metric = g.metric
		ORDER BY c.ticker
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list companies with pairs: %w", err)
	}
	defer rows.Close()

	out := make([]Company, 0)
	for rows.Next() {
		var c Company
		if err := rows.Scan(&c.ID, &c.Ticker, &c.CIK, &c.Name); err != nil {
			return nil, fmt.Errorf("failed to scan company: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
