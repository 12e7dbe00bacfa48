package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"cashier/database"
	"cashier/models"
	"github.com/jackc/pgx/v5"
)

// GameRepository implements the GameRepository interface
type GameRepository struct {
	q queryable
}

// NewGameRepository creates a new game repository
func NewGameRepository(db *database.DB) *GameRepository {
	return &GameRepository{q: db.Pool}
}

// newGameRepositoryWithTx creates a new game repository with a transaction
func newGameRepositoryWithTx(tx queryable) *GameRepository {
	return &GameRepository{q: tx}
}

// GetByID retrieves a game row, nil if absent
func (r *GameRepository) GetByID(ctx context.Context, id uint64) (*models.Game, error) {
	query := `
		SELECT id, session_params, paused, active_sessions_count, last_claim_time, created_at
		FROM games
		WHERE id = $1
	`

	var game models.Game
	var params []byte
	err := r.q.QueryRow(ctx, query, int64(id)).Scan(
		&game.ID,
		&params,
		&game.Paused,
		&game.ActiveSessionsCount,
		&game.LastClaimTime,
		&game.CreatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get game %d: %w", id, err)
	}

	if err := json.Unmarshal(params, &game.Params); err != nil {
		return nil, fmt.Errorf("failed to decode params for game %d: %w", id, err)
	}

	return &game, nil
}

// Create inserts a game row. The ledger balances start empty: absence of
// a game_balances row reads as zero.
func (r *GameRepository) Create(ctx context.Context, game *models.Game) error {
	params := game.Params
	if params == nil {
		params = models.GameParams{}
	}
	encoded, err := json.Marshal(params)
	if err != nil {
		return fmt.Errorf("failed to encode params for game %d: %w", game.ID, err)
	}

	query := `
		INSERT INTO games (id, session_params, paused)
		VALUES ($1, $2, $3)
		RETURNING created_at
	`

	err = r.q.QueryRow(ctx, query, int64(game.ID), encoded, game.Paused).Scan(&game.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create game %d: %w", game.ID, err)
	}

	return nil
}

// Delete removes a game row; its balance rows cascade
func (r *GameRepository) Delete(ctx context.Context, id uint64) error {
	result, err := r.q.Exec(ctx, `DELETE FROM games WHERE id = $1`, int64(id))
	if err != nil {
		return fmt.Errorf("failed to delete game %d: %w", id, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("game %d not found", id)
	}
	return nil
}

// SetPaused sets the local pause flag
func (r *GameRepository) SetPaused(ctx context.Context, id uint64, paused bool) error {
	result, err := r.q.Exec(ctx, `UPDATE games SET paused = $1 WHERE id = $2`, paused, int64(id))
	if err != nil {
		return fmt.Errorf("failed to set pause flag on game %d: %w", id, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("game %d not found", id)
	}
	return nil
}

// GetBalance returns the per-currency ledger row. A missing row reads as
// zero, never as an error.
func (r *GameRepository) GetBalance(ctx context.Context, id uint64, currency string) (*models.GameBalance, error) {
	query := `
		SELECT game_id, currency, balance, active_sessions_sum
		FROM game_balances
		WHERE game_id = $1 AND currency = $2
	`

	var balance models.GameBalance
	err := r.q.QueryRow(ctx, query, int64(id), currency).Scan(
		&balance.GameID,
		&balance.Currency,
		&balance.Balance,
		&balance.ActiveSessionsSum,
	)

	if err == pgx.ErrNoRows {
		return &models.GameBalance{GameID: id, Currency: currency}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get balance for game %d in %s: %w", id, currency, err)
	}

	return &balance, nil
}

// ListBalances returns all per-currency rows for a game
func (r *GameRepository) ListBalances(ctx context.Context, id uint64) ([]*models.GameBalance, error) {
	query := `
		SELECT game_id, currency, balance, active_sessions_sum
		FROM game_balances
		WHERE game_id = $1
		ORDER BY currency
	`

	rows, err := r.q.Query(ctx, query, int64(id))
	if err != nil {
		return nil, fmt.Errorf("failed to list balances for game %d: %w", id, err)
	}
	defer rows.Close()

	var balances []*models.GameBalance
	for rows.Next() {
		var balance models.GameBalance
		err := rows.Scan(
			&balance.GameID,
			&balance.Currency,
			&balance.Balance,
			&balance.ActiveSessionsSum,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan game balance: %w", err)
		}
		balances = append(balances, &balance)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate game balances: %w", err)
	}

	return balances, nil
}

// AddBalance adds a signed delta to the owed-to-operator balance,
// creating the row on first touch
func (r *GameRepository) AddBalance(ctx context.Context, id uint64, currency string, delta int64) error {
	query := `
		INSERT INTO game_balances (game_id, currency, balance)
		VALUES ($1, $2, $3)
		ON CONFLICT (game_id, currency)
		DO UPDATE SET balance = game_balances.balance + $3
	`

	if _, err := r.q.Exec(ctx, query, int64(id), currency, delta); err != nil {
		return fmt.Errorf("failed to add balance for game %d in %s: %w", id, currency, err)
	}
	return nil
}

// ZeroBalance resets the owed balance for one currency
func (r *GameRepository) ZeroBalance(ctx context.Context, id uint64, currency string) error {
	query := `
		UPDATE game_balances
		SET balance = 0
		WHERE game_id = $1 AND currency = $2
	`

	if _, err := r.q.Exec(ctx, query, int64(id), currency); err != nil {
		return fmt.Errorf("failed to zero balance for game %d in %s: %w", id, currency, err)
	}
	return nil
}

// AddSessionSum adds a signed delta to the active-session exposure. The
// schema rejects a resulting negative sum.
func (r *GameRepository) AddSessionSum(ctx context.Context, id uint64, currency string, delta int64) error {
	query := `
		INSERT INTO game_balances (game_id, currency, active_sessions_sum)
		VALUES ($1, $2, $3)
		ON CONFLICT (game_id, currency)
		DO UPDATE SET active_sessions_sum = game_balances.active_sessions_sum + $3
	`

	if _, err := r.q.Exec(ctx, query, int64(id), currency, delta); err != nil {
		return fmt.Errorf("failed to add session sum for game %d in %s: %w", id, currency, err)
	}
	return nil
}

// AdjustSessionCount adds a signed delta to the session count
func (r *GameRepository) AdjustSessionCount(ctx context.Context, id uint64, delta int64) error {
	query := `
		UPDATE games
		SET active_sessions_count = active_sessions_count + $1
		WHERE id = $2
	`

	result, err := r.q.Exec(ctx, query, delta, int64(id))
	if err != nil {
		return fmt.Errorf("failed to adjust session count for game %d: %w", id, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("game %d not found", id)
	}
	return nil
}

// SetLastClaimTime records a successful profit claim
func (r *GameRepository) SetLastClaimTime(ctx context.Context, id uint64, t time.Time) error {
	result, err := r.q.Exec(ctx, `UPDATE games SET last_claim_time = $1 WHERE id = $2`, t, int64(id))
	if err != nil {
		return fmt.Errorf("failed to set last claim time for game %d: %w", id, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("game %d not found", id)
	}
	return nil
}

// HasCurrencyExposure reports whether any game still carries a nonzero
// owed balance or active-session sum in a currency.
func (r *GameRepository) HasCurrencyExposure(ctx context.Context, code string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1
			FROM game_balances
			WHERE currency = $1 AND (balance <> 0 OR active_sessions_sum <> 0)
		)
	`

	var exposed bool
	if err := r.q.QueryRow(ctx, query, code).Scan(&exposed); err != nil {
		return false, fmt.Errorf("failed to check %s exposure: %w", code, err)
	}
	return exposed, nil
}

// PurgeCurrency removes a currency key from every game's parameter map
// and deletes its balance rows. Bounded by the current game count;
// acceptable because currency removal is rare.
func (r *GameRepository) PurgeCurrency(ctx context.Context, code string) error {
	if _, err := r.q.Exec(ctx, `UPDATE games SET session_params = session_params - $1`, code); err != nil {
		return fmt.Errorf("failed to purge currency %s from game params: %w", code, err)
	}
	if _, err := r.q.Exec(ctx, `DELETE FROM game_balances WHERE currency = $1`, code); err != nil {
		return fmt.Errorf("failed to purge %s game balances: %w", code, err)
	}
	return nil
}
