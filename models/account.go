package models

import (
	"time"
)

// BadgeBlackjackNatural is awarded the first time a player is dealt a natural 21
const BadgeBlackjackNatural = "blackjack_natural"

// Account represents a member's balance within a guild.
// Accounts are created lazily on first reference and never deleted.
type Account struct {
	GuildID   int64      `db:"guild_id"`
	UserID    int64      `db:"user_id"`
	Balance   int64      `db:"balance"`
	Badges    []string   `db:"badges"`
	LastDaily *time.Time `db:"last_daily"`
	CreatedAt time.Time  `db:"created_at"`
	UpdatedAt time.Time  `db:"updated_at"`
}

// HasBadge reports whether the account holds the given badge
func (a *Account) HasBadge(badge string) bool {
	for _, b := range a.Badges {
		if b == badge {
			return true
		}
	}
	return false
}
