package repository

import (
	"context"
	"fmt"

	"cashier/database"
	"cashier/models"
)

// RestrictionRepository implements the RestrictionRepository interface:
// the no-bonus game set and the player ban list.
type RestrictionRepository struct {
	q queryable
}

// NewRestrictionRepository creates a new restriction repository
func NewRestrictionRepository(db *database.DB) *RestrictionRepository {
	return &RestrictionRepository{q: db.Pool}
}

// newRestrictionRepositoryWithTx creates a new restriction repository with a transaction
func newRestrictionRepositoryWithTx(tx queryable) *RestrictionRepository {
	return &RestrictionRepository{q: tx}
}

// AddNoBonusGame excludes a game from bonus play
func (r *RestrictionRepository) AddNoBonusGame(ctx context.Context, gameID uint64) error {
	result, err := r.q.Exec(ctx, `INSERT INTO no_bonus_games (game_id) VALUES ($1) ON CONFLICT DO NOTHING`, int64(gameID))
	if err != nil {
		return fmt.Errorf("failed to restrict game %d: %w", gameID, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("game %d already restricted", gameID)
	}
	return nil
}

// RemoveNoBonusGame re-admits a game to bonus play
func (r *RestrictionRepository) RemoveNoBonusGame(ctx context.Context, gameID uint64) error {
	result, err := r.q.Exec(ctx, `DELETE FROM no_bonus_games WHERE game_id = $1`, int64(gameID))
	if err != nil {
		return fmt.Errorf("failed to unrestrict game %d: %w", gameID, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("game %d not restricted", gameID)
	}
	return nil
}

// IsNoBonusGame reports whether a game is excluded from bonus play
func (r *RestrictionRepository) IsNoBonusGame(ctx context.Context, gameID uint64) (bool, error) {
	var exists bool
	err := r.q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM no_bonus_games WHERE game_id = $1)`, int64(gameID)).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check bonus restriction for game %d: %w", gameID, err)
	}
	return exists, nil
}

// BanPlayer adds a player to the ban list
func (r *RestrictionRepository) BanPlayer(ctx context.Context, player models.Principal) error {
	if _, err := r.q.Exec(ctx, `INSERT INTO banned_players (player) VALUES ($1) ON CONFLICT DO NOTHING`, player.String()); err != nil {
		return fmt.Errorf("failed to ban player %s: %w", player, err)
	}
	return nil
}

// UnbanPlayer removes a player from the ban list
func (r *RestrictionRepository) UnbanPlayer(ctx context.Context, player models.Principal) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM banned_players WHERE player = $1`, player.String()); err != nil {
		return fmt.Errorf("failed to unban player %s: %w", player, err)
	}
	return nil
}

// IsBanned reports whether a player is on the ban list
func (r *RestrictionRepository) IsBanned(ctx context.Context, player models.Principal) (bool, error) {
	var banned bool
	err := r.q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM banned_players WHERE player = $1)`, player.String()).Scan(&banned)
	if err != nil {
		return false, fmt.Errorf("failed to check ban for player %s: %w", player, err)
	}
	return banned, nil
}
