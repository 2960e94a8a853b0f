package service

import (
	"context"
	"testing"
	"time"

	"bloop/config"
	"bloop/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func setupEconomyMocks() (*MockUnitOfWorkFactory, *MockAccountRepository, *MockCooldownRepository) {
	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockAccountRepo := new(MockAccountRepository)
	mockCooldownRepo := new(MockCooldownRepository)

	mockUoW.SetRepositories(mockAccountRepo, nil, mockCooldownRepo, nil)

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", mock.Anything).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	return mockFactory, mockAccountRepo, mockCooldownRepo
}

func TestEconomyService_Balance(t *testing.T) {
	ctx := context.Background()
	mockFactory, mockAccountRepo, _ := setupEconomyMocks()

	account := &models.Account{GuildID: 1, UserID: 42, Balance: 250}
	mockAccountRepo.On("GetOrCreate", ctx, int64(1), int64(42)).Return(account, nil)

	service := NewEconomyService(mockFactory, &scriptRand{})

	got, err := service.Balance(ctx, 1, 42)

	assert.NoError(t, err)
	assert.Equal(t, int64(250), got.Balance)
}

func TestEconomyService_ClaimDaily(t *testing.T) {
	ctx := context.Background()
	mockFactory, mockAccountRepo, mockCooldownRepo := setupEconomyMocks()

	cfg := config.Get()
	account := &models.Account{GuildID: 1, UserID: 42, Balance: 50}

	mockCooldownRepo.On("Get", ctx, int64(1), int64(42), models.CooldownDaily).Return(nil, nil)
	mockAccountRepo.On("GetOrCreate", ctx, int64(1), int64(42)).Return(account, nil)
	mockAccountRepo.On("AddBalance", ctx, int64(1), int64(42), cfg.DailyAmount).Return(nil)
	mockAccountRepo.On("SetLastDaily", ctx, int64(1), int64(42), mock.AnythingOfType("time.Time")).Return(nil)
	mockCooldownRepo.On("Upsert", ctx, int64(1), int64(42), models.CooldownDaily, mock.MatchedBy(func(next time.Time) bool {
		return next.After(time.Now().Add(23 * time.Hour))
	})).Return(nil)

	service := NewEconomyService(mockFactory, &scriptRand{})

	result, err := service.ClaimDaily(ctx, 1, 42)

	assert.NoError(t, err)
	assert.Equal(t, cfg.DailyAmount, result.Amount)
	assert.Equal(t, int64(50)+cfg.DailyAmount, result.NewBalance)

	mockAccountRepo.AssertExpectations(t)
	mockCooldownRepo.AssertExpectations(t)
}

func TestEconomyService_ClaimDaily_OnCooldown(t *testing.T) {
	ctx := context.Background()
	mockFactory, mockAccountRepo, mockCooldownRepo := setupEconomyMocks()

	cd := &models.Cooldown{GuildID: 1, UserID: 42, Name: models.CooldownDaily, NextTime: timeInFuture()}
	mockCooldownRepo.On("Get", ctx, int64(1), int64(42), models.CooldownDaily).Return(cd, nil)

	service := NewEconomyService(mockFactory, &scriptRand{})

	_, err := service.ClaimDaily(ctx, 1, 42)

	var cooldownErr *CooldownError
	assert.ErrorAs(t, err, &cooldownErr)
	assert.Equal(t, models.CooldownDaily, cooldownErr.Name)
	mockAccountRepo.AssertNotCalled(t, "AddBalance", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestEconomyService_RandomMoney(t *testing.T) {
	ctx := context.Background()
	mockFactory, mockAccountRepo, mockCooldownRepo := setupEconomyMocks()

	account := &models.Account{GuildID: 1, UserID: 42, Balance: 10}

	mockCooldownRepo.On("Get", ctx, int64(1), int64(42), models.CooldownRandomMoney).Return(nil, nil)
	mockAccountRepo.On("GetOrCreate", ctx, int64(1), int64(42)).Return(account, nil)
	mockAccountRepo.On("AddBalance", ctx, int64(1), int64(42), int64(37)).Return(nil)
	mockCooldownRepo.On("Upsert", ctx, int64(1), int64(42), models.CooldownRandomMoney, mock.AnythingOfType("time.Time")).Return(nil)

	service := NewEconomyService(mockFactory, &scriptRand{ints: []int{37}})

	result, err := service.RandomMoney(ctx, 1, 42)

	assert.NoError(t, err)
	assert.Equal(t, int64(37), result.Amount)
	assert.Equal(t, int64(47), result.NewBalance)
}

func TestEconomyService_RandomMoney_ZeroStillBurnsCooldown(t *testing.T) {
	ctx := context.Background()
	mockFactory, mockAccountRepo, mockCooldownRepo := setupEconomyMocks()

	account := &models.Account{GuildID: 1, UserID: 42, Balance: 10}

	mockCooldownRepo.On("Get", ctx, int64(1), int64(42), models.CooldownRandomMoney).Return(nil, nil)
	mockAccountRepo.On("GetOrCreate", ctx, int64(1), int64(42)).Return(account, nil)
	mockCooldownRepo.On("Upsert", ctx, int64(1), int64(42), models.CooldownRandomMoney, mock.AnythingOfType("time.Time")).Return(nil)

	service := NewEconomyService(mockFactory, &scriptRand{ints: []int{0}})

	result, err := service.RandomMoney(ctx, 1, 42)

	assert.NoError(t, err)
	assert.Equal(t, int64(0), result.Amount)

	mockAccountRepo.AssertNotCalled(t, "AddBalance", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	mockCooldownRepo.AssertExpectations(t)
}

func TestEconomyService_Gift(t *testing.T) {
	ctx := context.Background()
	mockFactory, mockAccountRepo, _ := setupEconomyMocks()

	sender := &models.Account{GuildID: 1, UserID: 42, Balance: 500}
	recipient := &models.Account{GuildID: 1, UserID: 43, Balance: 0}

	mockAccountRepo.On("GetOrCreate", ctx, int64(1), int64(42)).Return(sender, nil)
	mockAccountRepo.On("GetOrCreate", ctx, int64(1), int64(43)).Return(recipient, nil)
	mockAccountRepo.On("DeductBalance", ctx, int64(1), int64(42), int64(200)).Return(nil)
	mockAccountRepo.On("AddBalance", ctx, int64(1), int64(43), int64(200)).Return(nil)

	service := NewEconomyService(mockFactory, &scriptRand{})

	result, err := service.Gift(ctx, 1, 42, 43, 200)

	assert.NoError(t, err)
	assert.Equal(t, int64(200), result.Amount)
	assert.Equal(t, int64(300), result.NewBalance)

	mockAccountRepo.AssertExpectations(t)
}

func TestEconomyService_Gift_Insufficient(t *testing.T) {
	ctx := context.Background()
	mockFactory, mockAccountRepo, _ := setupEconomyMocks()

	sender := &models.Account{GuildID: 1, UserID: 42, Balance: 50}
	recipient := &models.Account{GuildID: 1, UserID: 43, Balance: 0}

	mockAccountRepo.On("GetOrCreate", ctx, int64(1), int64(42)).Return(sender, nil)
	mockAccountRepo.On("GetOrCreate", ctx, int64(1), int64(43)).Return(recipient, nil)
	mockAccountRepo.On("DeductBalance", ctx, int64(1), int64(42), int64(200)).Return(assert.AnError)

	service := NewEconomyService(mockFactory, &scriptRand{})

	_, err := service.Gift(ctx, 1, 42, 43, 200)

	assert.Error(t, err)
	mockAccountRepo.AssertNotCalled(t, "AddBalance", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestEconomyService_Gift_RejectsInvalidInput(t *testing.T) {
	ctx := context.Background()
	mockFactory := new(MockUnitOfWorkFactory)

	service := NewEconomyService(mockFactory, &scriptRand{})

	_, err := service.Gift(ctx, 1, 42, 43, 0)
	assert.Error(t, err)

	_, err = service.Gift(ctx, 1, 42, 42, 100)
	assert.Error(t, err)

	mockFactory.AssertNotCalled(t, "Create")
}

func TestEconomyService_Leaderboard(t *testing.T) {
	ctx := context.Background()
	mockFactory, mockAccountRepo, _ := setupEconomyMocks()

	top := []*models.Account{
		{GuildID: 1, UserID: 1, Balance: 900},
		{GuildID: 1, UserID: 2, Balance: 400},
	}
	mockAccountRepo.On("Top", ctx, int64(1), 10).Return(top, nil)

	service := NewEconomyService(mockFactory, &scriptRand{})

	// A non-positive limit falls back to the default of 10
	accounts, err := service.Leaderboard(ctx, 1, 0)

	assert.NoError(t, err)
	assert.Len(t, accounts, 2)
	assert.Equal(t, int64(900), accounts[0].Balance)
}
