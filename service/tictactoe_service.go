package service

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	log "github.com/sirupsen/logrus"

	"bloop/config"
	"bloop/events"
)

// Cell marks on a tic-tac-toe board
const (
	MarkEmpty byte = 0
	MarkX     byte = 'X'
	MarkO     byte = 'O'
)

// winLines are the eight index triples that decide a board
var winLines = [8][3]int{
	{0, 1, 2}, {3, 4, 5}, {6, 7, 8}, // rows
	{0, 3, 6}, {1, 4, 7}, {2, 5, 8}, // columns
	{0, 4, 8}, {2, 4, 6}, // diagonals
}

// Match is a two-player tic-tac-toe game. The challenger plays X and moves
// first. Fields are owned by the service's registry lock.
type Match struct {
	ID         string
	GuildID    int64
	ChannelID  int64
	PlayerX    int64
	PlayerO    int64
	Board      [9]byte
	NextPlayer int64
	Finished   bool
	WinnerID   int64 // zero on a draw
	Draw       bool
	LastAction time.Time
}

// markOf returns the mark the given player places, or MarkEmpty for outsiders
func (m *Match) markOf(userID int64) byte {
	switch userID {
	case m.PlayerX:
		return MarkX
	case m.PlayerO:
		return MarkO
	}
	return MarkEmpty
}

// full reports whether every cell is marked
func (m *Match) full() bool {
	for _, c := range m.Board {
		if c == MarkEmpty {
			return false
		}
	}
	return true
}

// winningMark returns the mark that completed a line, or MarkEmpty
func (m *Match) winningMark() byte {
	for _, line := range winLines {
		a, b, c := m.Board[line[0]], m.Board[line[1]], m.Board[line[2]]
		if a != MarkEmpty && a == b && b == c {
			return a
		}
	}
	return MarkEmpty
}

type ticTacToeService struct {
	uowFactory UnitOfWorkFactory

	mu      sync.Mutex
	matches map[string]*Match
	nextID  atomic.Int64
}

// NewTicTacToeService creates a new tic-tac-toe service
func NewTicTacToeService(uowFactory UnitOfWorkFactory) TicTacToeService {
	return &ticTacToeService{
		uowFactory: uowFactory,
		matches:    make(map[string]*Match),
	}
}

func (s *ticTacToeService) Challenge(guildID, channelID, playerX, playerO int64) (*Match, error) {
	if playerX == playerO {
		return nil, fmt.Errorf("cannot challenge yourself")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweepLocked(time.Now())

	match := &Match{
		ID:         fmt.Sprintf("ttt-%d", s.nextID.Add(1)),
		GuildID:    guildID,
		ChannelID:  channelID,
		PlayerX:    playerX,
		PlayerO:    playerO,
		NextPlayer: playerX,
		LastAction: time.Now(),
	}
	s.matches[match.ID] = match
	return match, nil
}

func (s *ticTacToeService) ApplyMove(ctx context.Context, matchID string, userID int64, cell int) (*Match, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweepLocked(time.Now())

	match, ok := s.matches[matchID]
	if !ok {
		return nil, ErrMatchNotFound
	}
	if match.Finished {
		return nil, ErrGameFinished
	}

	mark := match.markOf(userID)
	if mark == MarkEmpty {
		return nil, ErrNotInMatch
	}
	if match.NextPlayer != userID {
		return nil, ErrNotYourTurn
	}
	if cell < 0 || cell > 8 {
		return nil, ErrCellOutOfRange
	}
	if match.Board[cell] != MarkEmpty {
		return nil, ErrCellTaken
	}

	match.Board[cell] = mark
	match.LastAction = time.Now()

	if winner := match.winningMark(); winner != MarkEmpty {
		match.Finished = true
		if winner == MarkX {
			match.WinnerID = match.PlayerX
		} else {
			match.WinnerID = match.PlayerO
		}
	} else if match.full() {
		match.Finished = true
		match.Draw = true
	} else {
		if userID == match.PlayerX {
			match.NextPlayer = match.PlayerO
		} else {
			match.NextPlayer = match.PlayerX
		}
	}

	if match.Finished {
		delete(s.matches, matchID)
		if err := s.reward(ctx, match); err != nil {
			return nil, err
		}
	}

	return match, nil
}

func (s *ticTacToeService) Match(matchID string) *Match {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweepLocked(time.Now())
	return s.matches[matchID]
}

// reward pays the winner once; draws pay nothing
func (s *ticTacToeService) reward(ctx context.Context, match *Match) error {
	cfg := config.Get()

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	var reward int64
	if match.WinnerID != 0 {
		reward = cfg.TicTacToeReward
		if _, err := uow.AccountRepository().GetOrCreate(ctx, match.GuildID, match.WinnerID); err != nil {
			return fmt.Errorf("failed to get winner account: %w", err)
		}
		if err := uow.AccountRepository().AddBalance(ctx, match.GuildID, match.WinnerID, reward); err != nil {
			return fmt.Errorf("failed to credit winner: %w", err)
		}
		uow.EventBus().Publish(events.BalanceChangeEvent{
			GuildID:      match.GuildID,
			UserID:       match.WinnerID,
			ChangeAmount: reward,
			Reason:       "tic-tac-toe win",
		})
	}

	uow.EventBus().Publish(events.MatchFinishedEvent{
		MatchID:  match.ID,
		GuildID:  match.GuildID,
		WinnerID: match.WinnerID,
		Reward:   reward,
	})

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// sweepLocked abandons matches idle past the expiry window. Callers hold s.mu.
func (s *ticTacToeService) sweepLocked(now time.Time) {
	expiry := config.Get().MatchExpiry
	for id, match := range s.matches {
		if now.Sub(match.LastAction) > expiry {
			log.WithField("matchID", id).Info("Expiring idle tic-tac-toe match")
			delete(s.matches, id)
		}
	}
}
