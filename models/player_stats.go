package models

// PlayerStatAmounts is the per-currency slice of a player's statistics,
// split between real-money and bonus flows. Volumes only grow; profits
// are signed (pessimistic accounting: a stake counts as loss until a win
// pays it back).
type PlayerStatAmounts struct {
	Player      Principal `db:"player"`
	Currency    string    `db:"currency"`
	VolumeReal  int64     `db:"volume_real"`
	VolumeBonus int64     `db:"volume_bonus"`
	ProfitReal  int64     `db:"profit_real"`
	ProfitBonus int64     `db:"profit_bonus"`
}

// PlayerStats is the accumulated record for one player: the session count
// plus the per-currency amounts. Rows persist indefinitely once created
// and are only ever mutated as a side effect of settlement operations.
type PlayerStats struct {
	Player          Principal `db:"player"`
	SessionsCreated uint64    `db:"sessions_created"`
	Amounts         []*PlayerStatAmounts
}
