package repository

import (
	"context"
	"fmt"

	"bloop/database"
	"bloop/models"
)

// GuildConfigRepository implements the GuildConfigRepository interface
type GuildConfigRepository struct {
	q queryable
}

// NewGuildConfigRepository creates a new guild config repository
func NewGuildConfigRepository(db *database.DB) *GuildConfigRepository {
	return &GuildConfigRepository{q: db.Pool}
}

// newGuildConfigRepositoryWithTx creates a new guild config repository with a transaction
func newGuildConfigRepositoryWithTx(tx queryable) *GuildConfigRepository {
	return &GuildConfigRepository{q: tx}
}

// GetOrCreate retrieves a guild config, creating it with defaults if absent
func (r *GuildConfigRepository) GetOrCreate(ctx context.Context, guildID int64) (*models.GuildConfig, error) {
	query := `
		INSERT INTO guild_configs (guild_id)
		VALUES ($1)
		ON CONFLICT (guild_id) DO UPDATE SET updated_at = guild_configs.updated_at
		RETURNING guild_id, currency_name, treasury, debt, created_at, updated_at
	`

	var config models.GuildConfig
	err := r.q.QueryRow(ctx, query, guildID).Scan(
		&config.GuildID,
		&config.CurrencyName,
		&config.Treasury,
		&config.Debt,
		&config.CreatedAt,
		&config.UpdatedAt,
	)

	if err != nil {
		return nil, fmt.Errorf("failed to get or create guild config %d: %w", guildID, err)
	}

	return &config, nil
}

// UpdateCurrencyName sets the guild's currency label
func (r *GuildConfigRepository) UpdateCurrencyName(ctx context.Context, guildID int64, name string) error {
	query := `
		UPDATE guild_configs
		SET currency_name = $1, updated_at = NOW()
		WHERE guild_id = $2
	`

	result, err := r.q.Exec(ctx, query, name, guildID)
	if err != nil {
		return fmt.Errorf("failed to update currency name for guild %d: %w", guildID, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("guild config %d not found", guildID)
	}

	return nil
}

// AddTreasury adds to a guild's treasury atomically
func (r *GuildConfigRepository) AddTreasury(ctx context.Context, guildID int64, amount int64) error {
	if amount <= 0 {
		return fmt.Errorf("amount must be positive")
	}

	query := `
		UPDATE guild_configs
		SET treasury = treasury + $1, updated_at = NOW()
		WHERE guild_id = $2
	`

	result, err := r.q.Exec(ctx, query, amount, guildID)
	if err != nil {
		return fmt.Errorf("failed to add treasury for guild %d: %w", guildID, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("guild config %d not found", guildID)
	}

	return nil
}

// DeductTreasury deducts from a guild's treasury atomically, failing if
// the treasury does not cover the amount
func (r *GuildConfigRepository) DeductTreasury(ctx context.Context, guildID int64, amount int64) error {
	if amount <= 0 {
		return fmt.Errorf("amount must be positive")
	}

	query := `
		UPDATE guild_configs
		SET treasury = treasury - $1, updated_at = NOW()
		WHERE guild_id = $2 AND treasury >= $1
	`

	result, err := r.q.Exec(ctx, query, amount, guildID)
	if err != nil {
		return fmt.Errorf("failed to deduct treasury for guild %d: %w", guildID, err)
	}

	if result.RowsAffected() == 0 {
		config, err := r.GetOrCreate(ctx, guildID)
		if err != nil {
			return fmt.Errorf("failed to check guild config: %w", err)
		}
		return fmt.Errorf("insufficient treasury: have %d, need %d", config.Treasury, amount)
	}

	return nil
}
