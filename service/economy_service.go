package service

import (
	"context"
	"fmt"
	"time"

	"bloop/config"
	"bloop/events"
	"bloop/models"
)

type economyService struct {
	uowFactory UnitOfWorkFactory
	rng        Rand
}

// NewEconomyService creates a new economy service
func NewEconomyService(uowFactory UnitOfWorkFactory, rng Rand) EconomyService {
	return &economyService{
		uowFactory: uowFactory,
		rng:        rng,
	}
}

func (s *economyService) Balance(ctx context.Context, guildID, userID int64) (*models.Account, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	account, err := uow.AccountRepository().GetOrCreate(ctx, guildID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return account, nil
}

func (s *economyService) ClaimDaily(ctx context.Context, guildID, userID int64) (*models.DailyResult, error) {
	cfg := config.Get()
	now := time.Now()

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	if err := checkCooldown(ctx, uow, guildID, userID, models.CooldownDaily, now); err != nil {
		return nil, err
	}

	account, err := uow.AccountRepository().GetOrCreate(ctx, guildID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	if err := uow.AccountRepository().AddBalance(ctx, guildID, userID, cfg.DailyAmount); err != nil {
		return nil, fmt.Errorf("failed to credit daily amount: %w", err)
	}

	if err := uow.AccountRepository().SetLastDaily(ctx, guildID, userID, now); err != nil {
		return nil, fmt.Errorf("failed to record daily claim: %w", err)
	}

	if err := uow.CooldownRepository().Upsert(ctx, guildID, userID, models.CooldownDaily, now.Add(cfg.DailyCooldown)); err != nil {
		return nil, fmt.Errorf("failed to set daily cooldown: %w", err)
	}

	uow.EventBus().Publish(events.BalanceChangeEvent{
		GuildID:      guildID,
		UserID:       userID,
		ChangeAmount: cfg.DailyAmount,
		Reason:       "daily claim",
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return &models.DailyResult{
		Amount:     cfg.DailyAmount,
		NewBalance: account.Balance + cfg.DailyAmount,
	}, nil
}

func (s *economyService) RandomMoney(ctx context.Context, guildID, userID int64) (*models.RandomMoneyResult, error) {
	cfg := config.Get()
	now := time.Now()

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	if err := checkCooldown(ctx, uow, guildID, userID, models.CooldownRandomMoney, now); err != nil {
		return nil, err
	}

	account, err := uow.AccountRepository().GetOrCreate(ctx, guildID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	// Uniform over 0..RandomMoneyMax inclusive; a zero find still burns the cooldown
	amount := int64(s.rng.Intn(int(cfg.RandomMoneyMax) + 1))

	if amount > 0 {
		if err := uow.AccountRepository().AddBalance(ctx, guildID, userID, amount); err != nil {
			return nil, fmt.Errorf("failed to credit random money: %w", err)
		}
	}

	if err := uow.CooldownRepository().Upsert(ctx, guildID, userID, models.CooldownRandomMoney, now.Add(cfg.RandomMoneyCooldown)); err != nil {
		return nil, fmt.Errorf("failed to set random money cooldown: %w", err)
	}

	if amount > 0 {
		uow.EventBus().Publish(events.BalanceChangeEvent{
			GuildID:      guildID,
			UserID:       userID,
			ChangeAmount: amount,
			Reason:       "random money",
		})
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return &models.RandomMoneyResult{
		Amount:     amount,
		NewBalance: account.Balance + amount,
	}, nil
}

func (s *economyService) Gift(ctx context.Context, guildID, fromUserID, toUserID int64, amount int64) (*models.GiftResult, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("gift amount must be positive")
	}
	if fromUserID == toUserID {
		return nil, fmt.Errorf("cannot gift to yourself")
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	sender, err := uow.AccountRepository().GetOrCreate(ctx, guildID, fromUserID)
	if err != nil {
		return nil, fmt.Errorf("failed to get sender account: %w", err)
	}

	if _, err := uow.AccountRepository().GetOrCreate(ctx, guildID, toUserID); err != nil {
		return nil, fmt.Errorf("failed to get recipient account: %w", err)
	}

	if err := uow.AccountRepository().DeductBalance(ctx, guildID, fromUserID, amount); err != nil {
		return nil, err
	}

	if err := uow.AccountRepository().AddBalance(ctx, guildID, toUserID, amount); err != nil {
		return nil, fmt.Errorf("failed to credit recipient: %w", err)
	}

	uow.EventBus().Publish(events.BalanceChangeEvent{
		GuildID:      guildID,
		UserID:       fromUserID,
		ChangeAmount: -amount,
		Reason:       "gift sent",
	})
	uow.EventBus().Publish(events.BalanceChangeEvent{
		GuildID:      guildID,
		UserID:       toUserID,
		ChangeAmount: amount,
		Reason:       "gift received",
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return &models.GiftResult{
		Amount:     amount,
		ToUserID:   toUserID,
		NewBalance: sender.Balance - amount,
	}, nil
}

func (s *economyService) Leaderboard(ctx context.Context, guildID int64, limit int) ([]*models.Account, error) {
	if limit <= 0 {
		limit = 10
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	accounts, err := uow.AccountRepository().Top(ctx, guildID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get leaderboard: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return accounts, nil
}

// checkCooldown returns a CooldownError when the named action is still throttled
func checkCooldown(ctx context.Context, uow UnitOfWork, guildID, userID int64, name string, now time.Time) error {
	cd, err := uow.CooldownRepository().Get(ctx, guildID, userID, name)
	if err != nil {
		return fmt.Errorf("failed to check %s cooldown: %w", name, err)
	}
	if cd != nil && cd.NextTime.After(now) {
		return &CooldownError{Name: name, Remaining: cd.NextTime.Sub(now)}
	}
	return nil
}
