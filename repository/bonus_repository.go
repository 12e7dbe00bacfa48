package repository

import (
	"context"
	"fmt"

	"cashier/database"
	"cashier/models"
	"github.com/jackc/pgx/v5"
)

// BonusRepository implements the BonusRepository interface
type BonusRepository struct {
	q queryable
}

// NewBonusRepository creates a new bonus repository
func NewBonusRepository(db *database.DB) *BonusRepository {
	return &BonusRepository{q: db.Pool}
}

// newBonusRepositoryWithTx creates a new bonus repository with a transaction
func newBonusRepositoryWithTx(tx queryable) *BonusRepository {
	return &BonusRepository{q: tx}
}

// GetOrInitPool loads the singleton pool row, creating it with the given
// admin on first use
func (r *BonusRepository) GetOrInitPool(ctx context.Context, admin models.Principal) (*models.BonusPool, error) {
	query := `
		INSERT INTO bonus_pool (id, admin)
		VALUES (1, $1)
		ON CONFLICT (id) DO UPDATE SET id = bonus_pool.id
		RETURNING admin
	`

	var pool models.BonusPool
	if err := r.q.QueryRow(ctx, query, admin.String()).Scan(&pool.Admin); err != nil {
		return nil, fmt.Errorf("failed to get or init bonus pool: %w", err)
	}

	return &pool, nil
}

// SetAdmin changes the pool administrator
func (r *BonusRepository) SetAdmin(ctx context.Context, admin models.Principal) error {
	result, err := r.q.Exec(ctx, `UPDATE bonus_pool SET admin = $1 WHERE id = 1`, admin.String())
	if err != nil {
		return fmt.Errorf("failed to set bonus admin: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("bonus pool not initialized")
	}
	return nil
}

// GetPoolBalance returns the per-currency pool slice; a missing row reads
// as zero
func (r *BonusRepository) GetPoolBalance(ctx context.Context, currency string) (*models.BonusPoolBalance, error) {
	query := `
		SELECT currency, total_allocated, greeting_bonus
		FROM bonus_pool_balances
		WHERE currency = $1
	`

	var balance models.BonusPoolBalance
	err := r.q.QueryRow(ctx, query, currency).Scan(
		&balance.Currency,
		&balance.TotalAllocated,
		&balance.GreetingBonus,
	)

	if err == pgx.ErrNoRows {
		return &models.BonusPoolBalance{Currency: currency}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get bonus pool balance in %s: %w", currency, err)
	}

	return &balance, nil
}

// AddAllocated adds a signed delta to the total allocation. The schema
// rejects a resulting negative total.
func (r *BonusRepository) AddAllocated(ctx context.Context, currency string, delta int64) error {
	query := `
		INSERT INTO bonus_pool_balances (currency, total_allocated)
		VALUES ($1, $2)
		ON CONFLICT (currency)
		DO UPDATE SET total_allocated = bonus_pool_balances.total_allocated + $2
	`

	if _, err := r.q.Exec(ctx, query, currency, delta); err != nil {
		return fmt.Errorf("failed to add bonus allocation in %s: %w", currency, err)
	}
	return nil
}

// SetGreetingBonus sets the greeting amount for a currency
func (r *BonusRepository) SetGreetingBonus(ctx context.Context, currency string, amount int64) error {
	query := `
		INSERT INTO bonus_pool_balances (currency, greeting_bonus)
		VALUES ($1, $2)
		ON CONFLICT (currency)
		DO UPDATE SET greeting_bonus = $2
	`

	if _, err := r.q.Exec(ctx, query, currency, amount); err != nil {
		return fmt.Errorf("failed to set greeting bonus in %s: %w", currency, err)
	}
	return nil
}

// ListGreetingBonuses returns pool slices with a configured greeting
func (r *BonusRepository) ListGreetingBonuses(ctx context.Context) ([]*models.BonusPoolBalance, error) {
	query := `
		SELECT currency, total_allocated, greeting_bonus
		FROM bonus_pool_balances
		WHERE greeting_bonus > 0
		ORDER BY currency
	`

	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list greeting bonuses: %w", err)
	}
	defer rows.Close()

	var balances []*models.BonusPoolBalance
	for rows.Next() {
		var balance models.BonusPoolBalance
		if err := rows.Scan(&balance.Currency, &balance.TotalAllocated, &balance.GreetingBonus); err != nil {
			return nil, fmt.Errorf("failed to scan bonus pool balance: %w", err)
		}
		balances = append(balances, &balance)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate bonus pool balances: %w", err)
	}

	return balances, nil
}

// GetPlayerBalance returns a player's bonus balance, zero if absent
func (r *BonusRepository) GetPlayerBalance(ctx context.Context, player models.Principal, currency string) (int64, error) {
	query := `
		SELECT balance
		FROM player_bonus_balances
		WHERE player = $1 AND currency = $2
	`

	var balance int64
	err := r.q.QueryRow(ctx, query, player.String(), currency).Scan(&balance)
	if err == pgx.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get bonus balance for player %s in %s: %w", player, currency, err)
	}

	return balance, nil
}

// AddPlayerBalance applies a signed delta to a player's bonus balance.
// The row is created on first credit and deleted when it reaches exactly
// zero; the schema rejects a negative result.
func (r *BonusRepository) AddPlayerBalance(ctx context.Context, player models.Principal, currency string, delta int64) error {
	query := `
		INSERT INTO player_bonus_balances (player, currency, balance)
		VALUES ($1, $2, $3)
		ON CONFLICT (player, currency)
		DO UPDATE SET balance = player_bonus_balances.balance + $3
	`

	if _, err := r.q.Exec(ctx, query, player.String(), currency, delta); err != nil {
		return fmt.Errorf("failed to add bonus balance for player %s in %s: %w", player, currency, err)
	}

	cleanup := `DELETE FROM player_bonus_balances WHERE player = $1 AND currency = $2 AND balance = 0`
	if _, err := r.q.Exec(ctx, cleanup, player.String(), currency); err != nil {
		return fmt.Errorf("failed to clean up zero bonus balance for player %s: %w", player, err)
	}

	return nil
}

// SumPlayerBalances returns the sum of all player bonus balances in one
// currency
func (r *BonusRepository) SumPlayerBalances(ctx context.Context, currency string) (int64, error) {
	query := `
		SELECT COALESCE(SUM(balance), 0)
		FROM player_bonus_balances
		WHERE currency = $1
	`

	var sum int64
	if err := r.q.QueryRow(ctx, query, currency).Scan(&sum); err != nil {
		return 0, fmt.Errorf("failed to sum bonus balances in %s: %w", currency, err)
	}

	return sum, nil
}

// HasPlayerBalances reports whether the player holds any bonus
func (r *BonusRepository) HasPlayerBalances(ctx context.Context, player models.Principal) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM player_bonus_balances WHERE player = $1)`

	var exists bool
	if err := r.q.QueryRow(ctx, query, player.String()).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check bonus balances for player %s: %w", player, err)
	}

	return exists, nil
}

// PurgeCurrency removes the pool and player rows for a currency
func (r *BonusRepository) PurgeCurrency(ctx context.Context, currency string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM bonus_pool_balances WHERE currency = $1`, currency); err != nil {
		return fmt.Errorf("failed to purge bonus pool balance in %s: %w", currency, err)
	}
	if _, err := r.q.Exec(ctx, `DELETE FROM player_bonus_balances WHERE currency = $1`, currency); err != nil {
		return fmt.Errorf("failed to purge player bonus balances in %s: %w", currency, err)
	}
	return nil
}
