package repository

import (
	"context"
	"fmt"
	"time"

	"bloop/database"
	"bloop/models"

	"github.com/jackc/pgx/v5"
)

// CooldownRepository implements the CooldownRepository interface
type CooldownRepository struct {
	q queryable
}

// NewCooldownRepository creates a new cooldown repository
func NewCooldownRepository(db *database.DB) *CooldownRepository {
	return &CooldownRepository{q: db.Pool}
}

// newCooldownRepositoryWithTx creates a new cooldown repository with a transaction
func newCooldownRepositoryWithTx(tx queryable) *CooldownRepository {
	return &CooldownRepository{q: tx}
}

// Get retrieves a cooldown record, returning nil if it has never been set
func (r *CooldownRepository) Get(ctx context.Context, guildID, userID int64, name string) (*models.Cooldown, error) {
	query := `
		SELECT guild_id, user_id, name, next_time
		FROM cooldowns
		WHERE guild_id = $1 AND user_id = $2 AND name = $3
	`

	var cooldown models.Cooldown
	err := r.q.QueryRow(ctx, query, guildID, userID, name).Scan(
		&cooldown.GuildID,
		&cooldown.UserID,
		&cooldown.Name,
		&cooldown.NextTime,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get cooldown %s for %d/%d: %w", name, guildID, userID, err)
	}

	return &cooldown, nil
}

// Upsert sets the next eligible time for a named action
func (r *CooldownRepository) Upsert(ctx context.Context, guildID, userID int64, name string, nextTime time.Time) error {
	query := `
		INSERT INTO cooldowns (guild_id, user_id, name, next_time)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (guild_id, user_id, name) DO UPDATE SET next_time = EXCLUDED.next_time
	`

	if _, err := r.q.Exec(ctx, query, guildID, userID, name, nextTime); err != nil {
		return fmt.Errorf("failed to upsert cooldown %s for %d/%d: %w", name, guildID, userID, err)
	}

	return nil
}
