package models

// BonusPool is the singleton promotional-funds record. TotalAllocated per
// currency never drops below the sum of all player bonus balances in that
// currency.
type BonusPool struct {
	Admin Principal `db:"admin"`
}

// BonusPoolBalance is the per-currency slice of the bonus pool: total
// promotional allocation and the greeting bonus granted to new players.
type BonusPoolBalance struct {
	Currency       string `db:"currency"`
	TotalAllocated int64  `db:"total_allocated"`
	GreetingBonus  int64  `db:"greeting_bonus"`
}

// PlayerBonusBalance is a player's promotional balance in one currency.
// Rows are created lazily on first credit and self-delete when they reach
// exactly zero; they are never negative.
type PlayerBonusBalance struct {
	Player   Principal `db:"player"`
	Currency string    `db:"currency"`
	Balance  int64     `db:"balance"`
}
