package service

import (
	"context"
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"time"

	log "github.com/sirupsen/logrus"

	"bloop/config"
	"bloop/events"
	"bloop/models"
)

type blackjackService struct {
	uowFactory UnitOfWorkFactory
	rng        Rand

	mu     sync.Mutex
	games  map[string]*BlackjackGame
	byUser map[int64]string // guild-scoped key is unnecessary; one game per user
	nextID atomic.Int64
}

// NewBlackjackService creates a new blackjack service
func NewBlackjackService(uowFactory UnitOfWorkFactory, rng Rand) BlackjackService {
	return &blackjackService{
		uowFactory: uowFactory,
		rng:        rng,
		games:      make(map[string]*BlackjackGame),
		byUser:     make(map[int64]string),
	}
}

func (s *blackjackService) Start(ctx context.Context, guildID, channelID, userID int64, stake int64) (*BlackjackGame, error) {
	if stake <= 0 {
		return nil, fmt.Errorf("stake must be positive")
	}

	cfg := config.Get()
	now := time.Now()

	// Reserve the user's slot before the debit so a concurrent Start cannot
	// slip past the check while the lock is released
	s.mu.Lock()
	s.sweepLocked(now)
	if _, ok := s.byUser[userID]; ok {
		s.mu.Unlock()
		return nil, fmt.Errorf("you already have a blackjack game in progress")
	}
	gameID := fmt.Sprintf("bj-%d-%d", userID, s.nextID.Add(1))
	s.byUser[userID] = gameID
	s.mu.Unlock()

	// Release the reservation unless an open game ends up holding it
	gameOpen := false
	defer func() {
		if gameOpen {
			return
		}
		s.mu.Lock()
		if s.byUser[userID] == gameID {
			delete(s.byUser, userID)
		}
		s.mu.Unlock()
	}()

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	if err := checkCooldown(ctx, uow, guildID, userID, models.CooldownGamble, now); err != nil {
		return nil, err
	}

	// Stake is debited up front; it is only returned on a push
	if err := uow.AccountRepository().DeductBalance(ctx, guildID, userID, stake); err != nil {
		return nil, err
	}

	if err := uow.CooldownRepository().Upsert(ctx, guildID, userID, models.CooldownGamble, now.Add(cfg.GambleCooldown)); err != nil {
		return nil, fmt.Errorf("failed to set gamble cooldown: %w", err)
	}

	game := &BlackjackGame{
		ID:         gameID,
		GuildID:    guildID,
		ChannelID:  channelID,
		UserID:     userID,
		Stake:      stake,
		Outcome:    OutcomePlaying,
		LastAction: now,
		deck:       newDeck(s.rng),
	}
	game.PlayerHand = []Card{game.draw(), game.draw()}
	game.DealerHand = []Card{game.draw(), game.draw()}

	// Naturals settle immediately
	playerNatural := game.PlayerValue() == 21
	dealerNatural := game.DealerValue() == 21

	switch {
	case playerNatural && dealerNatural:
		game.Outcome = OutcomePush
		game.Payout = stake
	case playerNatural:
		game.Outcome = OutcomeNaturalWin
		game.Payout = int64(math.Floor(float64(stake) * 2.5))
	}

	if game.Finished() && game.Payout > 0 {
		if err := uow.AccountRepository().AddBalance(ctx, guildID, userID, game.Payout); err != nil {
			return nil, fmt.Errorf("failed to credit payout: %w", err)
		}
	}

	if game.Outcome == OutcomeNaturalWin {
		if err := uow.AccountRepository().AddBadge(ctx, guildID, userID, models.BadgeBlackjackNatural); err != nil {
			return nil, fmt.Errorf("failed to award badge: %w", err)
		}
	}

	if game.Finished() {
		uow.EventBus().Publish(events.BalanceChangeEvent{
			GuildID:      guildID,
			UserID:       userID,
			ChangeAmount: game.Payout - stake,
			Reason:       "blackjack",
		})
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	if !game.Finished() {
		s.mu.Lock()
		s.games[game.ID] = game
		s.mu.Unlock()
		gameOpen = true
	}

	return game, nil
}

func (s *blackjackService) Hit(ctx context.Context, gameID string, userID int64) (*BlackjackGame, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweepLocked(time.Now())

	game, err := s.lookupLocked(gameID, userID)
	if err != nil {
		return nil, err
	}

	game.PlayerHand = append(game.PlayerHand, game.draw())
	game.LastAction = time.Now()

	if game.PlayerValue() > 21 {
		game.Outcome = OutcomeLoss
		game.Payout = 0
		if err := s.settleLocked(ctx, game); err != nil {
			return nil, err
		}
	}

	return game, nil
}

func (s *blackjackService) Stand(ctx context.Context, gameID string, userID int64) (*BlackjackGame, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweepLocked(time.Now())

	game, err := s.lookupLocked(gameID, userID)
	if err != nil {
		return nil, err
	}

	game.playDealer()
	game.LastAction = time.Now()

	playerValue := game.PlayerValue()
	dealerValue := game.DealerValue()

	switch {
	case dealerValue > 21 || playerValue > dealerValue:
		game.Outcome = OutcomeWin
		game.Payout = game.Stake * 2
	case playerValue == dealerValue:
		game.Outcome = OutcomePush
		game.Payout = game.Stake
	default:
		game.Outcome = OutcomeLoss
		game.Payout = 0
	}

	if err := s.settleLocked(ctx, game); err != nil {
		return nil, err
	}

	return game, nil
}

func (s *blackjackService) Game(gameID string) *BlackjackGame {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweepLocked(time.Now())
	return s.games[gameID]
}

// lookupLocked resolves a game by ID and enforces ownership. Callers hold s.mu.
func (s *blackjackService) lookupLocked(gameID string, userID int64) (*BlackjackGame, error) {
	game, ok := s.games[gameID]
	if !ok {
		return nil, ErrGameNotFound
	}
	if game.UserID != userID {
		return nil, ErrNotYourGame
	}
	if game.Finished() {
		return nil, ErrGameFinished
	}
	return game, nil
}

// settleLocked credits any payout and removes the game from the registry.
// Callers hold s.mu.
func (s *blackjackService) settleLocked(ctx context.Context, game *BlackjackGame) error {
	delete(s.games, game.ID)
	delete(s.byUser, game.UserID)

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	if game.Payout > 0 {
		if err := uow.AccountRepository().AddBalance(ctx, game.GuildID, game.UserID, game.Payout); err != nil {
			return fmt.Errorf("failed to credit payout: %w", err)
		}
	}

	uow.EventBus().Publish(events.BalanceChangeEvent{
		GuildID:      game.GuildID,
		UserID:       game.UserID,
		ChangeAmount: game.Payout - game.Stake,
		Reason:       "blackjack",
	})

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// sweepLocked drops games idle past the expiry window; the stake stays with
// the house. Callers hold s.mu.
func (s *blackjackService) sweepLocked(now time.Time) {
	expiry := config.Get().BlackjackExpiry
	for id, game := range s.games {
		if now.Sub(game.LastAction) > expiry {
			log.WithFields(log.Fields{
				"gameID": id,
				"userID": game.UserID,
			}).Info("Expiring idle blackjack game")
			delete(s.games, id)
			delete(s.byUser, game.UserID)
		}
	}
}
