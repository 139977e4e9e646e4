// Package store reads tenants and holdings from PostgreSQL. It is the only
// place that talks to the relational schema; the pipeline sees interfaces.
package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/avidela/folio/internal/contracts"
)

// Repository reads tenant portfolios from the database. Read-only: the
// batch never writes back to the relational schema.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new holdings repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ListTenants returns every user id with at least one portfolio. Read
// fresh at the start of each batch run, never cached.
func (r *Repository) ListTenants(ctx context.Context) ([]string, error) {
	query := `
		SELECT DISTINCT u.user_id
		FROM users u
		JOIN portfolios p ON p.user_id = u.user_id
		ORDER BY u.user_id
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list tenants: %w", err)
	}
	defer rows.Close()

	var tenants []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan tenant id: %w", err)
		}
		tenants = append(tenants, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("tenant iteration failed: %w", err)
	}

	return tenants, nil
}

// GetHoldings returns all asset positions across a tenant's portfolios.
// Zero-quantity rows are excluded at the query level.
func (r *Repository) GetHoldings(ctx context.Context, tenantID string) ([]contracts.Holding, error) {
	query := `
		SELECT a.asset_symbol, a.quantity::text
		FROM portfolios p
		JOIN assets a ON a.portfolio_id = p.portfolio_id
		WHERE p.user_id = $1
		  AND a.quantity > 0
		ORDER BY a.asset_symbol
	`

	rows, err := r.pool.Query(ctx, query, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to query holdings for tenant %s: %w", tenantID, err)
	}
	defer rows.Close()

	var holdings []contracts.Holding
	for rows.Next() {
		var symbol, quantity string
		if err := rows.Scan(&symbol, &quantity); err != nil {
			return nil, fmt.Errorf("failed to scan holding: %w", err)
		}

		qty, err := decimal.NewFromString(quantity)
		if err != nil {
			return nil, fmt.Errorf("malformed quantity %q for tenant %s: %w", quantity, tenantID, err)
		}

		holdings = append(holdings, contracts.Holding{
			TenantID:  tenantID,
			RawSymbol: symbol,
			Quantity:  qty,
		})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("holding iteration failed for tenant %s: %w", tenantID, err)
	}

	return holdings, nil
}
