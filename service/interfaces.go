package service

import (
	"context"
	"time"

	"bloop/events"
	"bloop/models"
)

// AccountRepository defines the interface for account data access
type AccountRepository interface {
	// GetOrCreate retrieves an account, creating it with a zero balance if absent
	GetOrCreate(ctx context.Context, guildID, userID int64) (*models.Account, error)

	// AddBalance adds to an account's balance atomically
	AddBalance(ctx context.Context, guildID, userID int64, amount int64) error

	// DeductBalance deducts from an account's balance atomically, failing if insufficient funds
	DeductBalance(ctx context.Context, guildID, userID int64, amount int64) error

	// SetLastDaily records the timestamp of the latest daily claim
	SetLastDaily(ctx context.Context, guildID, userID int64, claimedAt time.Time) error

	// AddBadge appends a badge to the account if it does not already hold it
	AddBadge(ctx context.Context, guildID, userID int64, badge string) error

	// Top returns the richest accounts in a guild ordered by balance
	Top(ctx context.Context, guildID int64, limit int) ([]*models.Account, error)
}

// GuildConfigRepository defines the interface for guild config data access
type GuildConfigRepository interface {
	// GetOrCreate retrieves a guild config, creating it with defaults if absent
	GetOrCreate(ctx context.Context, guildID int64) (*models.GuildConfig, error)

	// UpdateCurrencyName sets the guild's currency label
	UpdateCurrencyName(ctx context.Context, guildID int64, name string) error

	// AddTreasury adds to a guild's treasury atomically
	AddTreasury(ctx context.Context, guildID int64, amount int64) error

	// DeductTreasury deducts from a guild's treasury atomically, failing if insufficient
	DeductTreasury(ctx context.Context, guildID int64, amount int64) error
}

// CooldownRepository defines the interface for cooldown tracking
type CooldownRepository interface {
	// Get retrieves a cooldown record, returning nil if it has never been set
	Get(ctx context.Context, guildID, userID int64, name string) (*models.Cooldown, error)

	// Upsert sets the next eligible time for a named action
	Upsert(ctx context.Context, guildID, userID int64, name string, nextTime time.Time) error
}

// LoanRepository defines the interface for loan records
type LoanRepository interface {
	// Create inserts a pending loan record
	Create(ctx context.Context, loan *models.Loan) error

	// GetByID retrieves a loan by its identifier, returning nil if absent
	GetByID(ctx context.Context, id int64) (*models.Loan, error)

	// Resolve transitions a pending loan to a terminal status exactly once,
	// returning false when the loan was already resolved
	Resolve(ctx context.Context, id int64, status models.LoanStatus) (bool, error)
}

// EventPublisher defines the interface for publishing events
type EventPublisher interface {
	Publish(event events.Event)
}

// UnitOfWork provides transactional access to repositories
type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	AccountRepository() AccountRepository
	GuildConfigRepository() GuildConfigRepository
	CooldownRepository() CooldownRepository
	LoanRepository() LoanRepository
	EventBus() EventPublisher
}

// UnitOfWorkFactory creates units of work
type UnitOfWorkFactory interface {
	Create() UnitOfWork
}

// EconomyService handles balances, daily claims and gifts
type EconomyService interface {
	// Balance returns the account for a guild member, creating it lazily
	Balance(ctx context.Context, guildID, userID int64) (*models.Account, error)

	// ClaimDaily credits the daily amount, subject to a 24h cooldown
	ClaimDaily(ctx context.Context, guildID, userID int64) (*models.DailyResult, error)

	// RandomMoney credits a uniform random amount, subject to its own cooldown
	RandomMoney(ctx context.Context, guildID, userID int64) (*models.RandomMoneyResult, error)

	// Gift transfers an amount between two members of the same guild
	Gift(ctx context.Context, guildID, fromUserID, toUserID int64, amount int64) (*models.GiftResult, error)

	// Leaderboard returns the richest accounts in a guild
	Leaderboard(ctx context.Context, guildID int64, limit int) ([]*models.Account, error)
}

// WagerService handles single-shot wager games
type WagerService interface {
	// FlipCoin stakes an amount on heads or tails; a match pays double the stake
	FlipCoin(ctx context.Context, guildID, userID int64, stake int64, pick models.CoinFace) (*models.CoinFlipResult, error)

	// SpinWheel stakes an amount on the multiplier wheel
	SpinWheel(ctx context.Context, guildID, userID int64, stake int64) (*models.WheelResult, error)
}

// BlackjackService runs interactive dealer games, one per invoking player
type BlackjackService interface {
	// Start debits the stake, deals the opening hands and checks for naturals
	Start(ctx context.Context, guildID, channelID, userID int64, stake int64) (*BlackjackGame, error)

	// Hit draws one card for the player, settling on bust
	Hit(ctx context.Context, gameID string, userID int64) (*BlackjackGame, error)

	// Stand ends the player's turn, plays the dealer hand and settles
	Stand(ctx context.Context, gameID string, userID int64) (*BlackjackGame, error)

	// Game returns the active game with the given ID, or nil
	Game(gameID string) *BlackjackGame
}

// DiceService coordinates the multiplayer dice pot sessions
type DiceService interface {
	// Start opens a join window in a channel and debits the starter's stake
	Start(ctx context.Context, guildID, channelID, starterID int64, stake int64) (*DiceSession, error)

	// Join adds a participant at the same stake while the window is open
	Join(ctx context.Context, channelID, userID int64) (*DiceSession, error)
}

// TicTacToeService runs two-player marking matches
type TicTacToeService interface {
	// Challenge creates a match between two players; X moves first
	Challenge(guildID, channelID, playerX, playerO int64) (*Match, error)

	// ApplyMove marks a cell for the given player and evaluates the board
	ApplyMove(ctx context.Context, matchID string, userID int64, cell int) (*Match, error)

	// Match returns the active match with the given ID, or nil
	Match(matchID string) *Match
}

// GuildSettingsService manages per-guild economy configuration
type GuildSettingsService interface {
	// Config returns the guild config, creating it lazily
	Config(ctx context.Context, guildID int64) (*models.GuildConfig, error)

	// SetCurrencyName sets the guild's currency label, truncating long names
	SetCurrencyName(ctx context.Context, guildID int64, name string) (string, error)

	// TransferTreasury moves funds between two guild treasuries atomically
	TransferTreasury(ctx context.Context, sourceGuildID, targetGuildID int64, amount int64) error
}

// LoanService manages peer-to-peer loan negotiation
type LoanService interface {
	// Propose records a pending loan request; no funds move
	Propose(ctx context.Context, guildID, lenderID, borrowerID int64, amount int64) (*models.Loan, error)

	// Resolve accepts or rejects a pending loan; only the lender may resolve,
	// and accepting moves the amount from lender to borrower
	Resolve(ctx context.Context, loanID, actingUserID int64, accept bool) (*models.Loan, error)
}
