package models

import (
	"time"
)

// Well-known cooldown names
const (
	CooldownDaily       = "daily"
	CooldownRandomMoney = "random_money"
	CooldownGamble      = "gamble"
)

// Cooldown tracks the next time a named action becomes eligible for a user.
// A missing row means the action has never been used and is eligible now.
type Cooldown struct {
	GuildID  int64     `db:"guild_id"`
	UserID   int64     `db:"user_id"`
	Name     string    `db:"name"`
	NextTime time.Time `db:"next_time"`
}
