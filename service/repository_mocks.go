package service

import (
	"context"
	"time"

	"bloop/events"
	"bloop/models"

	"github.com/stretchr/testify/mock"
)

// MockAccountRepository is a mock implementation of AccountRepository
type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) GetOrCreate(ctx context.Context, guildID, userID int64) (*models.Account, error) {
	args := m.Called(ctx, guildID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
}

func (m *MockAccountRepository) AddBalance(ctx context.Context, guildID, userID int64, amount int64) error {
	args := m.Called(ctx, guildID, userID, amount)
	return args.Error(0)
}

func (m *MockAccountRepository) DeductBalance(ctx context.Context, guildID, userID int64, amount int64) error {
	args := m.Called(ctx, guildID, userID, amount)
	return args.Error(0)
}

func (m *MockAccountRepository) SetLastDaily(ctx context.Context, guildID, userID int64, claimedAt time.Time) error {
	args := m.Called(ctx, guildID, userID, claimedAt)
	return args.Error(0)
}

func (m *MockAccountRepository) AddBadge(ctx context.Context, guildID, userID int64, badge string) error {
	args := m.Called(ctx, guildID, userID, badge)
	return args.Error(0)
}

func (m *MockAccountRepository) Top(ctx context.Context, guildID int64, limit int) ([]*models.Account, error) {
	args := m.Called(ctx, guildID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Account), args.Error(1)
}

// MockGuildConfigRepository is a mock implementation of GuildConfigRepository
type MockGuildConfigRepository struct {
	mock.Mock
}

func (m *MockGuildConfigRepository) GetOrCreate(ctx context.Context, guildID int64) (*models.GuildConfig, error) {
	args := m.Called(ctx, guildID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.GuildConfig), args.Error(1)
}

func (m *MockGuildConfigRepository) UpdateCurrencyName(ctx context.Context, guildID int64, name string) error {
	args := m.Called(ctx, guildID, name)
	return args.Error(0)
}

func (m *MockGuildConfigRepository) AddTreasury(ctx context.Context, guildID int64, amount int64) error {
	args := m.Called(ctx, guildID, amount)
	return args.Error(0)
}

func (m *MockGuildConfigRepository) DeductTreasury(ctx context.Context, guildID int64, amount int64) error {
	args := m.Called(ctx, guildID, amount)
	return args.Error(0)
}

// MockCooldownRepository is a mock implementation of CooldownRepository
type MockCooldownRepository struct {
	mock.Mock
}

func (m *MockCooldownRepository) Get(ctx context.Context, guildID, userID int64, name string) (*models.Cooldown, error) {
	args := m.Called(ctx, guildID, userID, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Cooldown), args.Error(1)
}

func (m *MockCooldownRepository) Upsert(ctx context.Context, guildID, userID int64, name string, nextTime time.Time) error {
	args := m.Called(ctx, guildID, userID, name, nextTime)
	return args.Error(0)
}

// MockLoanRepository is a mock implementation of LoanRepository
type MockLoanRepository struct {
	mock.Mock
}

func (m *MockLoanRepository) Create(ctx context.Context, loan *models.Loan) error {
	args := m.Called(ctx, loan)
	return args.Error(0)
}

func (m *MockLoanRepository) GetByID(ctx context.Context, id int64) (*models.Loan, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Loan), args.Error(1)
}

func (m *MockLoanRepository) Resolve(ctx context.Context, id int64, status models.LoanStatus) (bool, error) {
	args := m.Called(ctx, id, status)
	return args.Bool(0), args.Error(1)
}

// MockEventPublisher is a mock implementation of EventPublisher for testing
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(event events.Event) {
	m.Called(event)
}

// noopPublisher swallows events for tests that don't assert on them
type noopPublisher struct{}

func (noopPublisher) Publish(events.Event) {}

// MockUnitOfWork is a mock implementation of UnitOfWork. Repositories are
// injected with SetRepositories rather than mocked per call.
type MockUnitOfWork struct {
	mock.Mock

	accountRepo     AccountRepository
	guildConfigRepo GuildConfigRepository
	cooldownRepo    CooldownRepository
	loanRepo        LoanRepository
	eventBus        EventPublisher
}

// SetRepositories wires the repositories the unit of work hands out
func (m *MockUnitOfWork) SetRepositories(
	accountRepo AccountRepository,
	guildConfigRepo GuildConfigRepository,
	cooldownRepo CooldownRepository,
	loanRepo LoanRepository,
) {
	m.accountRepo = accountRepo
	m.guildConfigRepo = guildConfigRepo
	m.cooldownRepo = cooldownRepo
	m.loanRepo = loanRepo
}

// SetEventPublisher wires the publisher returned by EventBus
func (m *MockUnitOfWork) SetEventPublisher(bus EventPublisher) {
	m.eventBus = bus
}

func (m *MockUnitOfWork) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUnitOfWork) Commit() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) Rollback() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) AccountRepository() AccountRepository {
	return m.accountRepo
}

func (m *MockUnitOfWork) GuildConfigRepository() GuildConfigRepository {
	return m.guildConfigRepo
}

func (m *MockUnitOfWork) CooldownRepository() CooldownRepository {
	return m.cooldownRepo
}

func (m *MockUnitOfWork) LoanRepository() LoanRepository {
	return m.loanRepo
}

func (m *MockUnitOfWork) EventBus() EventPublisher {
	if m.eventBus == nil {
		return noopPublisher{}
	}
	return m.eventBus
}

// MockUnitOfWorkFactory is a mock implementation of UnitOfWorkFactory
type MockUnitOfWorkFactory struct {
	mock.Mock
}

func (m *MockUnitOfWorkFactory) Create() UnitOfWork {
	args := m.Called()
	return args.Get(0).(UnitOfWork)
}
