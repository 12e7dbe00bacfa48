package models

import "time"

// SessionParam is one game tuning parameter (type tag and value) as
// assigned by the upstream registry.
type SessionParam struct {
	Type  uint16 `json:"type"`
	Value uint32 `json:"value"`
}

// GameParams maps currency code to the parameter list the game runs with
// in that denomination. Removing a currency from the registry purges its
// key from every game's map.
type GameParams map[string][]SessionParam

// Game is a tenant operator registered to run betting logic against the
// ledger. The id is assigned by the upstream registry, not by this core.
// The local Paused flag is independent of the registry's own active flag;
// both must be clear for the game to accept sessions.
type Game struct {
	ID                  uint64     `db:"id"`
	Params              GameParams `db:"session_params"`
	Paused              bool       `db:"paused"`
	ActiveSessionsCount uint64     `db:"active_sessions_count"`
	LastClaimTime       time.Time  `db:"last_claim_time"`
	CreatedAt           time.Time  `db:"created_at"`
}

// GameBalance is the per-game, per-currency ledger row: how much is owed
// to the operator and how much is locked in open sessions. Absence of a
// row reads as zero for both.
type GameBalance struct {
	GameID            uint64 `db:"game_id"`
	Currency          string `db:"currency"`
	Balance           int64  `db:"balance"`
	ActiveSessionsSum int64  `db:"active_sessions_sum"`
}
