package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"bloop/config"
	"bloop/events"
	"bloop/models"
)

// wheelSegment maps a cumulative probability bound to a payout multiplier.
// A draw in [0,1) selects the first segment whose bound exceeds the draw;
// a draw landing exactly on a bound falls into the next segment.
type wheelSegment struct {
	Bound      float64
	Multiplier float64
}

// wheelTable is ordered by ascending bound and must end at 1.00
var wheelTable = []wheelSegment{
	{Bound: 0.20, Multiplier: 0},
	{Bound: 0.50, Multiplier: 0.5},
	{Bound: 0.75, Multiplier: 1},
	{Bound: 0.90, Multiplier: 2},
	{Bound: 0.98, Multiplier: 5},
	{Bound: 1.00, Multiplier: 10},
}

type wagerService struct {
	uowFactory UnitOfWorkFactory
	rng        Rand
}

// NewWagerService creates a new wager service
func NewWagerService(uowFactory UnitOfWorkFactory, rng Rand) WagerService {
	return &wagerService{
		uowFactory: uowFactory,
		rng:        rng,
	}
}

func (s *wagerService) FlipCoin(ctx context.Context, guildID, userID int64, stake int64, pick models.CoinFace) (*models.CoinFlipResult, error) {
	if stake <= 0 {
		return nil, fmt.Errorf("stake must be positive")
	}
	if pick != models.CoinHeads && pick != models.CoinTails {
		return nil, fmt.Errorf("pick must be heads or tails")
	}

	cfg := config.Get()
	now := time.Now()

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	if err := checkCooldown(ctx, uow, guildID, userID, models.CooldownGamble, now); err != nil {
		return nil, err
	}

	account, err := uow.AccountRepository().GetOrCreate(ctx, guildID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	// Stake is debited before the flip resolves
	if err := uow.AccountRepository().DeductBalance(ctx, guildID, userID, stake); err != nil {
		return nil, err
	}

	landed := models.CoinHeads
	if s.rng.Intn(2) == 1 {
		landed = models.CoinTails
	}

	won := landed == pick
	var payout int64
	if won {
		payout = stake * 2
		if err := uow.AccountRepository().AddBalance(ctx, guildID, userID, payout); err != nil {
			return nil, fmt.Errorf("failed to credit winnings: %w", err)
		}
	}

	if err := uow.CooldownRepository().Upsert(ctx, guildID, userID, models.CooldownGamble, now.Add(cfg.GambleCooldown)); err != nil {
		return nil, fmt.Errorf("failed to set gamble cooldown: %w", err)
	}

	uow.EventBus().Publish(events.BalanceChangeEvent{
		GuildID:      guildID,
		UserID:       userID,
		ChangeAmount: payout - stake,
		Reason:       "coin flip",
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return &models.CoinFlipResult{
		Pick:       pick,
		Landed:     landed,
		Won:        won,
		Stake:      stake,
		Payout:     payout,
		NewBalance: account.Balance - stake + payout,
	}, nil
}

func (s *wagerService) SpinWheel(ctx context.Context, guildID, userID int64, stake int64) (*models.WheelResult, error) {
	if stake <= 0 {
		return nil, fmt.Errorf("stake must be positive")
	}

	// The wheel carries no cooldown; only coin flip and blackjack share the
	// gamble throttle.
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	account, err := uow.AccountRepository().GetOrCreate(ctx, guildID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	if err := uow.AccountRepository().DeductBalance(ctx, guildID, userID, stake); err != nil {
		return nil, err
	}

	multiplier := spinMultiplier(s.rng.Float64())
	payout := int64(math.Floor(float64(stake) * multiplier))

	if payout > 0 {
		if err := uow.AccountRepository().AddBalance(ctx, guildID, userID, payout); err != nil {
			return nil, fmt.Errorf("failed to credit winnings: %w", err)
		}
	}

	uow.EventBus().Publish(events.BalanceChangeEvent{
		GuildID:      guildID,
		UserID:       userID,
		ChangeAmount: payout - stake,
		Reason:       "wheel spin",
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return &models.WheelResult{
		Multiplier: multiplier,
		Stake:      stake,
		Payout:     payout,
		NewBalance: account.Balance - stake + payout,
	}, nil
}

// spinMultiplier selects the first segment whose bound exceeds the draw
func spinMultiplier(draw float64) float64 {
	for _, seg := range wheelTable {
		if draw < seg.Bound {
			return seg.Multiplier
		}
	}
	return wheelTable[len(wheelTable)-1].Multiplier
}
