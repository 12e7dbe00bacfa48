package repository

import (
	"context"
	"fmt"

	"cashier/database"
	"cashier/models"
	"github.com/jackc/pgx/v5"
)

// PlayerStatsRepository implements the PlayerStatsRepository interface
type PlayerStatsRepository struct {
	q queryable
}

// NewPlayerStatsRepository creates a new player stats repository
func NewPlayerStatsRepository(db *database.DB) *PlayerStatsRepository {
	return &PlayerStatsRepository{q: db.Pool}
}

// newPlayerStatsRepositoryWithTx creates a new player stats repository with a transaction
func newPlayerStatsRepositoryWithTx(tx queryable) *PlayerStatsRepository {
	return &PlayerStatsRepository{q: tx}
}

// IncrementSessions bumps the session counter, creating the row lazily
func (r *PlayerStatsRepository) IncrementSessions(ctx context.Context, player models.Principal) error {
	query := `
		INSERT INTO player_stats (player, sessions_created)
		VALUES ($1, 1)
		ON CONFLICT (player)
		DO UPDATE SET sessions_created = player_stats.sessions_created + 1
	`

	if _, err := r.q.Exec(ctx, query, player.String()); err != nil {
		return fmt.Errorf("failed to increment sessions for player %s: %w", player, err)
	}
	return nil
}

// AddAmounts accumulates signed deltas into the per-currency stats row,
// creating it lazily. The head row is ensured first so a pure
// amount-update also materializes the player.
func (r *PlayerStatsRepository) AddAmounts(ctx context.Context, player models.Principal, currency string, volumeReal, volumeBonus, profitReal, profitBonus int64) error {
	head := `
		INSERT INTO player_stats (player)
		VALUES ($1)
		ON CONFLICT (player) DO NOTHING
	`
	if _, err := r.q.Exec(ctx, head, player.String()); err != nil {
		return fmt.Errorf("failed to ensure stats row for player %s: %w", player, err)
	}

	query := `
		INSERT INTO player_stat_amounts (player, currency, volume_real, volume_bonus, profit_real, profit_bonus)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (player, currency)
		DO UPDATE SET
			volume_real  = player_stat_amounts.volume_real + $3,
			volume_bonus = player_stat_amounts.volume_bonus + $4,
			profit_real  = player_stat_amounts.profit_real + $5,
			profit_bonus = player_stat_amounts.profit_bonus + $6
	`

	if _, err := r.q.Exec(ctx, query, player.String(), currency, volumeReal, volumeBonus, profitReal, profitBonus); err != nil {
		return fmt.Errorf("failed to add stat amounts for player %s in %s: %w", player, currency, err)
	}
	return nil
}

// GetStats returns the player's stats with all per-currency amounts, nil
// if the player has none
func (r *PlayerStatsRepository) GetStats(ctx context.Context, player models.Principal) (*models.PlayerStats, error) {
	var stats models.PlayerStats
	err := r.q.QueryRow(ctx, `SELECT player, sessions_created FROM player_stats WHERE player = $1`, player.String()).
		Scan(&stats.Player, &stats.SessionsCreated)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get stats for player %s: %w", player, err)
	}

	query := `
		SELECT player, currency, volume_real, volume_bonus, profit_real, profit_bonus
		FROM player_stat_amounts
		WHERE player = $1
		ORDER BY currency
	`

	rows, err := r.q.Query(ctx, query, player.String())
	if err != nil {
		return nil, fmt.Errorf("failed to get stat amounts for player %s: %w", player, err)
	}
	defer rows.Close()

	for rows.Next() {
		var amounts models.PlayerStatAmounts
		err := rows.Scan(
			&amounts.Player,
			&amounts.Currency,
			&amounts.VolumeReal,
			&amounts.VolumeBonus,
			&amounts.ProfitReal,
			&amounts.ProfitBonus,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan stat amounts: %w", err)
		}
		stats.Amounts = append(stats.Amounts, &amounts)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate stat amounts: %w", err)
	}

	return &stats, nil
}

// PurgeCurrency removes the per-currency amounts for a currency
func (r *PlayerStatsRepository) PurgeCurrency(ctx context.Context, currency string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM player_stat_amounts WHERE currency = $1`, currency); err != nil {
		return fmt.Errorf("failed to purge stat amounts in %s: %w", currency, err)
	}
	return nil
}
