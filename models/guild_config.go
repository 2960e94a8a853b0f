package models

import (
	"time"
)

// MaxCurrencyNameLength is the cap applied when admins rename the guild currency
const MaxCurrencyNameLength = 24

// GuildConfig holds per-guild economy settings and the communal treasury,
// which is kept separate from member account balances.
type GuildConfig struct {
	GuildID      int64     `db:"guild_id"`
	CurrencyName string    `db:"currency_name"`
	Treasury     int64     `db:"treasury"`
	Debt         int64     `db:"debt"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}
