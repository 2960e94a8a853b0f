package service

import (
	"context"
	"fmt"
	"strings"

	"bloop/config"
	"bloop/models"
)

type guildSettingsService struct {
	uowFactory UnitOfWorkFactory
}

// NewGuildSettingsService creates a new guild settings service
func NewGuildSettingsService(uowFactory UnitOfWorkFactory) GuildSettingsService {
	return &guildSettingsService{
		uowFactory: uowFactory,
	}
}

func (s *guildSettingsService) Config(ctx context.Context, guildID int64) (*models.GuildConfig, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	guildConfig, err := uow.GuildConfigRepository().GetOrCreate(ctx, guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to get guild config: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return guildConfig, nil
}

func (s *guildSettingsService) SetCurrencyName(ctx context.Context, guildID int64, name string) (string, error) {
	// An empty name resets to the default; long names are truncated
	name = strings.TrimSpace(name)
	if name == "" {
		name = config.Get().DefaultCurrencyName
	}
	if runes := []rune(name); len(runes) > models.MaxCurrencyNameLength {
		name = string(runes[:models.MaxCurrencyNameLength])
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	if _, err := uow.GuildConfigRepository().GetOrCreate(ctx, guildID); err != nil {
		return "", fmt.Errorf("failed to get guild config: %w", err)
	}

	if err := uow.GuildConfigRepository().UpdateCurrencyName(ctx, guildID, name); err != nil {
		return "", fmt.Errorf("failed to update currency name: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit transaction: %w", err)
	}

	return name, nil
}

func (s *guildSettingsService) TransferTreasury(ctx context.Context, sourceGuildID, targetGuildID int64, amount int64) error {
	if amount <= 0 {
		return fmt.Errorf("transfer amount must be positive")
	}
	if sourceGuildID == targetGuildID {
		return fmt.Errorf("source and target guilds must differ")
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	if _, err := uow.GuildConfigRepository().GetOrCreate(ctx, sourceGuildID); err != nil {
		return fmt.Errorf("failed to get source guild config: %w", err)
	}
	if _, err := uow.GuildConfigRepository().GetOrCreate(ctx, targetGuildID); err != nil {
		return fmt.Errorf("failed to get target guild config: %w", err)
	}

	// Conditional deduct keeps both treasuries consistent; nothing moves if
	// the source cannot cover the amount
	if err := uow.GuildConfigRepository().DeductTreasury(ctx, sourceGuildID, amount); err != nil {
		return err
	}
	if err := uow.GuildConfigRepository().AddTreasury(ctx, targetGuildID, amount); err != nil {
		return fmt.Errorf("failed to credit target treasury: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}
