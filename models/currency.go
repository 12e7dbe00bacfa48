package models

import "time"

// Currency is a registered token denomination. Amounts in this currency
// are stored as int64 scaled by 10^Precision. Currencies are created by
// the platform owner, never auto-created.
type Currency struct {
	Code      string    `db:"code"`
	Precision int       `db:"precision"`
	Paused    bool      `db:"paused"`
	CreatedAt time.Time `db:"created_at"`
}
