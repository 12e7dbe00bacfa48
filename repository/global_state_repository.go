package repository

import (
	"context"
	"fmt"
	"time"

	"cashier/database"
	"cashier/models"
	"github.com/jackc/pgx/v5"
)

// GlobalStateRepository implements the GlobalStateRepository interface.
// The singleton row follows the load-mutate-commit pattern: it is created
// on first use inside a unit of work and every mutation lands in the same
// transaction as the per-game rows it aggregates.
type GlobalStateRepository struct {
	q queryable
}

// NewGlobalStateRepository creates a new global state repository
func NewGlobalStateRepository(db *database.DB) *GlobalStateRepository {
	return &GlobalStateRepository{q: db.Pool}
}

// newGlobalStateRepositoryWithTx creates a new global state repository with a transaction
func newGlobalStateRepositoryWithTx(tx queryable) *GlobalStateRepository {
	return &GlobalStateRepository{q: tx}
}

// GetOrInit loads the singleton row, creating it with the given
// principals on first use
func (r *GlobalStateRepository) GetOrInit(ctx context.Context, owner, platform models.Principal) (*models.GlobalState, error) {
	query := `
		INSERT INTO global_state (id, owner, platform)
		VALUES (1, $1, $2)
		ON CONFLICT (id) DO UPDATE SET id = global_state.id
		RETURNING owner, platform, active_sessions_count
	`

	var state models.GlobalState
	err := r.q.QueryRow(ctx, query, owner.String(), platform.String()).Scan(
		&state.Owner,
		&state.Platform,
		&state.ActiveSessionsCount,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get or init global state: %w", err)
	}

	return &state, nil
}

// SetOwner transfers platform ownership
func (r *GlobalStateRepository) SetOwner(ctx context.Context, owner models.Principal) error {
	result, err := r.q.Exec(ctx, `UPDATE global_state SET owner = $1 WHERE id = 1`, owner.String())
	if err != nil {
		return fmt.Errorf("failed to set owner: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("global state not initialized")
	}
	return nil
}

// SetPlatform changes the platform principal
func (r *GlobalStateRepository) SetPlatform(ctx context.Context, platform models.Principal) error {
	result, err := r.q.Exec(ctx, `UPDATE global_state SET platform = $1 WHERE id = 1`, platform.String())
	if err != nil {
		return fmt.Errorf("failed to set platform: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("global state not initialized")
	}
	return nil
}

// GetBalance returns the per-currency aggregate; a missing row reads as
// zero
func (r *GlobalStateRepository) GetBalance(ctx context.Context, currency string) (*models.GlobalBalance, error) {
	query := `
		SELECT currency, active_sessions_sum, operator_profit_sum, last_withdraw_time
		FROM global_balances
		WHERE currency = $1
	`

	var balance models.GlobalBalance
	err := r.q.QueryRow(ctx, query, currency).Scan(
		&balance.Currency,
		&balance.ActiveSessionsSum,
		&balance.OperatorProfitSum,
		&balance.LastWithdrawTime,
	)

	if err == pgx.ErrNoRows {
		return &models.GlobalBalance{Currency: currency}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get global balance in %s: %w", currency, err)
	}

	return &balance, nil
}

// AddSessionSum adds a signed delta to the global session exposure
func (r *GlobalStateRepository) AddSessionSum(ctx context.Context, currency string, delta int64) error {
	query := `
		INSERT INTO global_balances (currency, active_sessions_sum)
		VALUES ($1, $2)
		ON CONFLICT (currency)
		DO UPDATE SET active_sessions_sum = global_balances.active_sessions_sum + $2
	`

	if _, err := r.q.Exec(ctx, query, currency, delta); err != nil {
		return fmt.Errorf("failed to add global session sum in %s: %w", currency, err)
	}
	return nil
}

// AddProfitSum adds a signed delta to the global operator profit
func (r *GlobalStateRepository) AddProfitSum(ctx context.Context, currency string, delta int64) error {
	query := `
		INSERT INTO global_balances (currency, operator_profit_sum)
		VALUES ($1, $2)
		ON CONFLICT (currency)
		DO UPDATE SET operator_profit_sum = global_balances.operator_profit_sum + $2
	`

	if _, err := r.q.Exec(ctx, query, currency, delta); err != nil {
		return fmt.Errorf("failed to add global profit sum in %s: %w", currency, err)
	}
	return nil
}

// AdjustSessionCount adds a signed delta to the global session count
func (r *GlobalStateRepository) AdjustSessionCount(ctx context.Context, delta int64) error {
	query := `
		UPDATE global_state
		SET active_sessions_count = active_sessions_count + $1
		WHERE id = 1
	`

	result, err := r.q.Exec(ctx, query, delta)
	if err != nil {
		return fmt.Errorf("failed to adjust global session count: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("global state not initialized")
	}
	return nil
}

// SetLastWithdrawTime records a constrained withdrawal
func (r *GlobalStateRepository) SetLastWithdrawTime(ctx context.Context, currency string, t time.Time) error {
	query := `
		INSERT INTO global_balances (currency, last_withdraw_time)
		VALUES ($1, $2)
		ON CONFLICT (currency)
		DO UPDATE SET last_withdraw_time = $2
	`

	if _, err := r.q.Exec(ctx, query, currency, t); err != nil {
		return fmt.Errorf("failed to set last withdraw time in %s: %w", currency, err)
	}
	return nil
}

// DeleteBalance removes the aggregate row for a purged currency
func (r *GlobalStateRepository) DeleteBalance(ctx context.Context, currency string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM global_balances WHERE currency = $1`, currency); err != nil {
		return fmt.Errorf("failed to delete global balance in %s: %w", currency, err)
	}
	return nil
}
