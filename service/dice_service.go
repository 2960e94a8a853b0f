package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"bloop/config"
	"bloop/events"
	"bloop/models"
)

// DiceSession is a pending multiplayer pot in a single channel. Participants
// buy in at the starter's stake during the join window; when it closes every
// participant rolls a d6 and the highest roll takes the pot.
type DiceSession struct {
	GuildID      int64
	ChannelID    int64
	StarterID    int64
	Stake        int64
	Participants []int64
	ClosesAt     time.Time

	closed bool
}

// Pot returns the current total stake across all participants
func (d *DiceSession) Pot() int64 {
	return d.Stake * int64(len(d.Participants))
}

// HasParticipant reports whether the user already bought in
func (d *DiceSession) HasParticipant(userID int64) bool {
	for _, id := range d.Participants {
		if id == userID {
			return true
		}
	}
	return false
}

type diceService struct {
	uowFactory UnitOfWorkFactory
	rng        Rand
	eventBus   EventPublisher

	mu       sync.Mutex
	sessions map[int64]*DiceSession // keyed by channel ID
}

// NewDiceService creates a new dice pot service
func NewDiceService(uowFactory UnitOfWorkFactory, rng Rand, eventBus EventPublisher) DiceService {
	return &diceService{
		uowFactory: uowFactory,
		rng:        rng,
		eventBus:   eventBus,
		sessions:   make(map[int64]*DiceSession),
	}
}

func (s *diceService) Start(ctx context.Context, guildID, channelID, starterID int64, stake int64) (*DiceSession, error) {
	if stake <= 0 {
		return nil, fmt.Errorf("stake must be positive")
	}

	cfg := config.Get()

	s.mu.Lock()
	if _, ok := s.sessions[channelID]; ok {
		s.mu.Unlock()
		return nil, ErrSessionActive
	}
	// Reserve the channel before touching the database so a concurrent Start
	// cannot open a second session while we debit
	session := &DiceSession{
		GuildID:      guildID,
		ChannelID:    channelID,
		StarterID:    starterID,
		Stake:        stake,
		Participants: []int64{starterID},
		ClosesAt:     time.Now().Add(cfg.JoinWindow),
	}
	s.sessions[channelID] = session
	s.mu.Unlock()

	if err := s.debitStake(ctx, guildID, starterID, stake); err != nil {
		s.mu.Lock()
		delete(s.sessions, channelID)
		s.mu.Unlock()
		return nil, err
	}

	time.AfterFunc(cfg.JoinWindow, func() {
		s.settle(channelID)
	})

	return session, nil
}

func (s *diceService) Join(ctx context.Context, channelID, userID int64) (*DiceSession, error) {
	s.mu.Lock()
	session, ok := s.sessions[channelID]
	if !ok {
		s.mu.Unlock()
		return nil, ErrSessionNotFound
	}
	if session.closed {
		s.mu.Unlock()
		return nil, ErrSessionClosed
	}
	if session.HasParticipant(userID) {
		s.mu.Unlock()
		return nil, ErrAlreadyJoined
	}
	guildID := session.GuildID
	stake := session.Stake
	s.mu.Unlock()

	if err := s.debitStake(ctx, guildID, userID, stake); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Re-check under the lock: the window may have closed while we debited
	session, ok = s.sessions[channelID]
	if !ok || session.closed {
		if err := s.creditStake(ctx, guildID, userID, stake, "dice pot refund"); err != nil {
			log.WithError(err).WithField("userID", userID).Error("Failed to refund late dice join")
		}
		return nil, ErrSessionClosed
	}
	if session.HasParticipant(userID) {
		if err := s.creditStake(ctx, guildID, userID, stake, "dice pot refund"); err != nil {
			log.WithError(err).WithField("userID", userID).Error("Failed to refund duplicate dice join")
		}
		return nil, ErrAlreadyJoined
	}

	session.Participants = append(session.Participants, userID)
	return session, nil
}

// settle closes the join window, rolls for every participant and pays the
// pot out. It always removes the session from the channel.
func (s *diceService) settle(channelID int64) {
	ctx := context.Background()

	s.mu.Lock()
	session, ok := s.sessions[channelID]
	if !ok {
		s.mu.Unlock()
		return
	}
	session.closed = true
	delete(s.sessions, channelID)
	participants := append([]int64(nil), session.Participants...)
	s.mu.Unlock()

	result := &models.PotResult{
		GuildID:   session.GuildID,
		ChannelID: session.ChannelID,
		Stake:     session.Stake,
		Pot:       session.Stake * int64(len(participants)),
	}

	if len(participants) < 2 {
		// Nobody else showed up; return the starter's stake
		result.Refunded = true
		result.Pot = 0
		if err := s.creditStake(ctx, session.GuildID, session.StarterID, session.Stake, "dice pot refund"); err != nil {
			log.WithError(err).WithField("channelID", channelID).Error("Failed to refund dice pot")
			return
		}
		s.eventBus.Publish(events.PotSettledEvent{Result: result})
		return
	}

	best := 0
	for _, userID := range participants {
		value := s.rng.Intn(6) + 1
		result.Rolls = append(result.Rolls, models.Roll{UserID: userID, Value: value})
		if value > best {
			best = value
		}
	}
	for _, roll := range result.Rolls {
		if roll.Value == best {
			result.Winners = append(result.Winners, roll.UserID)
		}
	}

	// Integer split; any remainder is forfeited to keep payouts whole
	result.PrizeEach = result.Pot / int64(len(result.Winners))

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		log.WithError(err).WithField("channelID", channelID).Error("Failed to begin dice settlement")
		return
	}
	defer uow.Rollback() // No-op if already committed

	for _, winnerID := range result.Winners {
		if err := uow.AccountRepository().AddBalance(ctx, session.GuildID, winnerID, result.PrizeEach); err != nil {
			log.WithError(err).WithField("winnerID", winnerID).Error("Failed to pay dice pot winner")
			return
		}
		uow.EventBus().Publish(events.BalanceChangeEvent{
			GuildID:      session.GuildID,
			UserID:       winnerID,
			ChangeAmount: result.PrizeEach,
			Reason:       "dice pot win",
		})
	}

	if err := uow.Commit(); err != nil {
		log.WithError(err).WithField("channelID", channelID).Error("Failed to commit dice settlement")
		return
	}

	s.eventBus.Publish(events.PotSettledEvent{Result: result})
}

// debitStake takes a participant's buy-in in its own transaction
func (s *diceService) debitStake(ctx context.Context, guildID, userID int64, stake int64) error {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	if _, err := uow.AccountRepository().GetOrCreate(ctx, guildID, userID); err != nil {
		return fmt.Errorf("failed to get account: %w", err)
	}
	if err := uow.AccountRepository().DeductBalance(ctx, guildID, userID, stake); err != nil {
		return err
	}

	uow.EventBus().Publish(events.BalanceChangeEvent{
		GuildID:      guildID,
		UserID:       userID,
		ChangeAmount: -stake,
		Reason:       "dice pot buy-in",
	})

	return uow.Commit()
}

// creditStake returns a stake, used for refunds
func (s *diceService) creditStake(ctx context.Context, guildID, userID int64, stake int64, reason string) error {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	if err := uow.AccountRepository().AddBalance(ctx, guildID, userID, stake); err != nil {
		return err
	}

	uow.EventBus().Publish(events.BalanceChangeEvent{
		GuildID:      guildID,
		UserID:       userID,
		ChangeAmount: stake,
		Reason:       reason,
	})

	return uow.Commit()
}
