package repository

import (
	"context"
	"fmt"

	"cashier/database"
	"cashier/models"
	"github.com/jackc/pgx/v5"
)

// CurrencyRepository implements the CurrencyRepository interface
type CurrencyRepository struct {
	q queryable
}

// NewCurrencyRepository creates a new currency repository
func NewCurrencyRepository(db *database.DB) *CurrencyRepository {
	return &CurrencyRepository{q: db.Pool}
}

// newCurrencyRepositoryWithTx creates a new currency repository with a transaction
func newCurrencyRepositoryWithTx(tx queryable) *CurrencyRepository {
	return &CurrencyRepository{q: tx}
}

// GetByCode retrieves a currency by its code, nil if not registered
func (r *CurrencyRepository) GetByCode(ctx context.Context, code string) (*models.Currency, error) {
	query := `
		SELECT code, precision, paused, created_at
		FROM currencies
		WHERE code = $1
	`

	var currency models.Currency
	err := r.q.QueryRow(ctx, query, code).Scan(
		&currency.Code,
		&currency.Precision,
		&currency.Paused,
		&currency.CreatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get currency %s: %w", code, err)
	}

	return &currency, nil
}

// Create registers a new currency
func (r *CurrencyRepository) Create(ctx context.Context, currency *models.Currency) error {
	query := `
		INSERT INTO currencies (code, precision, paused)
		VALUES ($1, $2, $3)
		RETURNING created_at
	`

	err := r.q.QueryRow(ctx, query, currency.Code, currency.Precision, currency.Paused).
		Scan(&currency.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create currency %s: %w", currency.Code, err)
	}

	return nil
}

// Delete removes a currency from the registry
func (r *CurrencyRepository) Delete(ctx context.Context, code string) error {
	result, err := r.q.Exec(ctx, `DELETE FROM currencies WHERE code = $1`, code)
	if err != nil {
		return fmt.Errorf("failed to delete currency %s: %w", code, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("currency %s not found", code)
	}
	return nil
}

// SetPaused sets the pause flag on a currency
func (r *CurrencyRepository) SetPaused(ctx context.Context, code string, paused bool) error {
	result, err := r.q.Exec(ctx, `UPDATE currencies SET paused = $1 WHERE code = $2`, paused, code)
	if err != nil {
		return fmt.Errorf("failed to set pause flag on currency %s: %w", code, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("currency %s not found", code)
	}
	return nil
}

// List returns all registered currencies
func (r *CurrencyRepository) List(ctx context.Context) ([]*models.Currency, error) {
	query := `
		SELECT code, precision, paused, created_at
		FROM currencies
		ORDER BY code
	`

	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list currencies: %w", err)
	}
	defer rows.Close()

	var currencies []*models.Currency
	for rows.Next() {
		var currency models.Currency
		err := rows.Scan(
			&currency.Code,
			&currency.Precision,
			&currency.Paused,
			&currency.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan currency: %w", err)
		}
		currencies = append(currencies, &currency)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate currencies: %w", err)
	}

	return currencies, nil
}
