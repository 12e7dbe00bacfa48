package models

import "time"

// GlobalState is the singleton administrative row: the owning principal,
// the platform principal and the global active-session count. Initialized
// once on first use and never deleted.
type GlobalState struct {
	Owner               Principal `db:"owner"`
	Platform            Principal `db:"platform"`
	ActiveSessionsCount uint64    `db:"active_sessions_count"`
}

// GlobalBalance is the per-currency aggregate across all games. It is a
// maintained invariant, not recomputed on read: after every committed
// operation ActiveSessionsSum equals the sum of the per-game session
// sums, and OperatorProfitSum equals the sum of the per-game balances.
type GlobalBalance struct {
	Currency          string    `db:"currency"`
	ActiveSessionsSum int64     `db:"active_sessions_sum"`
	OperatorProfitSum int64     `db:"operator_profit_sum"`
	LastWithdrawTime  time.Time `db:"last_withdraw_time"`
}
