package service

import (
	"context"
	"testing"

	"bloop/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func setupWagerMocks() (*MockUnitOfWorkFactory, *MockUnitOfWork, *MockAccountRepository, *MockCooldownRepository) {
	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockAccountRepo := new(MockAccountRepository)
	mockCooldownRepo := new(MockCooldownRepository)

	mockUoW.SetRepositories(mockAccountRepo, nil, mockCooldownRepo, nil)

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", mock.Anything).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	return mockFactory, mockUoW, mockAccountRepo, mockCooldownRepo
}

func TestWagerService_FlipCoin_Win(t *testing.T) {
	ctx := context.Background()
	mockFactory, mockUoW, mockAccountRepo, mockCooldownRepo := setupWagerMocks()

	account := &models.Account{GuildID: 1, UserID: 42, Balance: 1000}

	mockCooldownRepo.On("Get", ctx, int64(1), int64(42), models.CooldownGamble).Return(nil, nil)
	mockAccountRepo.On("GetOrCreate", ctx, int64(1), int64(42)).Return(account, nil)
	mockAccountRepo.On("DeductBalance", ctx, int64(1), int64(42), int64(100)).Return(nil)
	mockAccountRepo.On("AddBalance", ctx, int64(1), int64(42), int64(200)).Return(nil)
	mockCooldownRepo.On("Upsert", ctx, int64(1), int64(42), models.CooldownGamble, mock.AnythingOfType("time.Time")).Return(nil)

	// Intn(2) == 0 lands heads
	service := NewWagerService(mockFactory, &scriptRand{ints: []int{0}})

	result, err := service.FlipCoin(ctx, 1, 42, 100, models.CoinHeads)

	assert.NoError(t, err)
	assert.True(t, result.Won)
	assert.Equal(t, models.CoinHeads, result.Landed)
	assert.Equal(t, int64(200), result.Payout)
	assert.Equal(t, int64(1100), result.NewBalance)

	mockUoW.AssertExpectations(t)
	mockAccountRepo.AssertExpectations(t)
	mockCooldownRepo.AssertExpectations(t)
}

func TestWagerService_FlipCoin_Loss(t *testing.T) {
	ctx := context.Background()
	mockFactory, _, mockAccountRepo, mockCooldownRepo := setupWagerMocks()

	account := &models.Account{GuildID: 1, UserID: 42, Balance: 1000}

	mockCooldownRepo.On("Get", ctx, int64(1), int64(42), models.CooldownGamble).Return(nil, nil)
	mockAccountRepo.On("GetOrCreate", ctx, int64(1), int64(42)).Return(account, nil)
	mockAccountRepo.On("DeductBalance", ctx, int64(1), int64(42), int64(100)).Return(nil)
	mockCooldownRepo.On("Upsert", ctx, int64(1), int64(42), models.CooldownGamble, mock.AnythingOfType("time.Time")).Return(nil)

	// Intn(2) == 1 lands tails
	service := NewWagerService(mockFactory, &scriptRand{ints: []int{1}})

	result, err := service.FlipCoin(ctx, 1, 42, 100, models.CoinHeads)

	assert.NoError(t, err)
	assert.False(t, result.Won)
	assert.Equal(t, models.CoinTails, result.Landed)
	assert.Equal(t, int64(0), result.Payout)
	assert.Equal(t, int64(900), result.NewBalance)

	// No winnings credited on a loss
	mockAccountRepo.AssertNotCalled(t, "AddBalance", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestWagerService_FlipCoin_NetChangeIsAlwaysStake(t *testing.T) {
	ctx := context.Background()

	// Over many seeded flips the net change is exactly +stake or -stake and
	// the win rate sits near 50%
	rng := NewRand(1)
	wins := 0
	const trials = 1000
	for i := 0; i < trials; i++ {
		mockFactory, _, mockAccountRepo, mockCooldownRepo := setupWagerMocks()
		account := &models.Account{GuildID: 1, UserID: 42, Balance: 1000}
		mockCooldownRepo.On("Get", ctx, int64(1), int64(42), models.CooldownGamble).Return(nil, nil)
		mockAccountRepo.On("GetOrCreate", ctx, int64(1), int64(42)).Return(account, nil)
		mockAccountRepo.On("DeductBalance", ctx, int64(1), int64(42), int64(100)).Return(nil)
		mockAccountRepo.On("AddBalance", ctx, int64(1), int64(42), int64(200)).Return(nil).Maybe()
		mockCooldownRepo.On("Upsert", ctx, int64(1), int64(42), models.CooldownGamble, mock.AnythingOfType("time.Time")).Return(nil)

		service := NewWagerService(mockFactory, rng)
		result, err := service.FlipCoin(ctx, 1, 42, 100, models.CoinHeads)
		assert.NoError(t, err)

		net := result.NewBalance - account.Balance
		if result.Won {
			wins++
			assert.Equal(t, int64(100), net)
		} else {
			assert.Equal(t, int64(-100), net)
		}
	}

	assert.InDelta(t, trials/2, wins, trials/10)
}

func TestWagerService_FlipCoin_InsufficientBalance(t *testing.T) {
	ctx := context.Background()
	mockFactory, _, mockAccountRepo, mockCooldownRepo := setupWagerMocks()

	account := &models.Account{GuildID: 1, UserID: 42, Balance: 50}

	mockCooldownRepo.On("Get", ctx, int64(1), int64(42), models.CooldownGamble).Return(nil, nil)
	mockAccountRepo.On("GetOrCreate", ctx, int64(1), int64(42)).Return(account, nil)
	mockAccountRepo.On("DeductBalance", ctx, int64(1), int64(42), int64(100)).
		Return(assert.AnError)

	service := NewWagerService(mockFactory, &scriptRand{ints: []int{0}})

	result, err := service.FlipCoin(ctx, 1, 42, 100, models.CoinHeads)

	assert.Error(t, err)
	assert.Nil(t, result)
	mockAccountRepo.AssertNotCalled(t, "AddBalance", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestWagerService_FlipCoin_RejectsInvalidInput(t *testing.T) {
	ctx := context.Background()
	mockFactory := new(MockUnitOfWorkFactory)
	service := NewWagerService(mockFactory, &scriptRand{ints: []int{0}})

	_, err := service.FlipCoin(ctx, 1, 42, 0, models.CoinHeads)
	assert.Error(t, err)

	_, err = service.FlipCoin(ctx, 1, 42, -5, models.CoinTails)
	assert.Error(t, err)

	_, err = service.FlipCoin(ctx, 1, 42, 100, models.CoinFace("edge"))
	assert.Error(t, err)

	mockFactory.AssertNotCalled(t, "Create")
}

func TestSpinMultiplier_Table(t *testing.T) {
	tests := []struct {
		draw float64
		want float64
	}{
		{0.0, 0},
		{0.19, 0},
		{0.20, 0.5}, // boundary draws fall into the next segment
		{0.49, 0.5},
		{0.50, 1},
		{0.74, 1},
		{0.75, 2},
		{0.89, 2},
		{0.90, 5},
		{0.97, 5},
		{0.98, 10},
		{0.999, 10},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, spinMultiplier(tt.draw), "draw %v", tt.draw)
	}
}

func TestWheelTable_SumsToOne(t *testing.T) {
	assert.Equal(t, 1.00, wheelTable[len(wheelTable)-1].Bound)
	prev := 0.0
	for _, seg := range wheelTable {
		assert.Greater(t, seg.Bound, prev)
		prev = seg.Bound
	}
}

func TestWagerService_SpinWheel_PayoutIsFloored(t *testing.T) {
	ctx := context.Background()
	mockFactory, _, mockAccountRepo, _ := setupWagerMocks()

	account := &models.Account{GuildID: 1, UserID: 42, Balance: 1000}

	mockAccountRepo.On("GetOrCreate", ctx, int64(1), int64(42)).Return(account, nil)
	mockAccountRepo.On("DeductBalance", ctx, int64(1), int64(42), int64(101)).Return(nil)
	// floor(101 * 0.5) = 50
	mockAccountRepo.On("AddBalance", ctx, int64(1), int64(42), int64(50)).Return(nil)

	service := NewWagerService(mockFactory, &scriptRand{floats: []float64{0.20}})

	result, err := service.SpinWheel(ctx, 1, 42, 101)

	assert.NoError(t, err)
	assert.Equal(t, 0.5, result.Multiplier)
	assert.Equal(t, int64(50), result.Payout)
	assert.Equal(t, int64(949), result.NewBalance)

	mockAccountRepo.AssertExpectations(t)
}

func TestWagerService_SpinWheel_ZeroMultiplierCreditsNothing(t *testing.T) {
	ctx := context.Background()
	mockFactory, _, mockAccountRepo, _ := setupWagerMocks()

	account := &models.Account{GuildID: 1, UserID: 42, Balance: 1000}

	mockAccountRepo.On("GetOrCreate", ctx, int64(1), int64(42)).Return(account, nil)
	mockAccountRepo.On("DeductBalance", ctx, int64(1), int64(42), int64(100)).Return(nil)

	service := NewWagerService(mockFactory, &scriptRand{floats: []float64{0.05}})

	result, err := service.SpinWheel(ctx, 1, 42, 100)

	assert.NoError(t, err)
	assert.Equal(t, 0.0, result.Multiplier)
	assert.Equal(t, int64(0), result.Payout)
	assert.Equal(t, int64(900), result.NewBalance)

	mockAccountRepo.AssertNotCalled(t, "AddBalance", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestWagerService_SpinWheel_IgnoresGambleCooldown(t *testing.T) {
	ctx := context.Background()
	mockFactory, _, mockAccountRepo, mockCooldownRepo := setupWagerMocks()

	account := &models.Account{GuildID: 1, UserID: 42, Balance: 1000}
	mockAccountRepo.On("GetOrCreate", ctx, int64(1), int64(42)).Return(account, nil)
	mockAccountRepo.On("DeductBalance", ctx, int64(1), int64(42), int64(100)).Return(nil)
	mockAccountRepo.On("AddBalance", ctx, int64(1), int64(42), int64(100)).Return(nil)

	// A pending gamble cooldown throttles coin flip and blackjack only; the
	// wheel spins regardless and leaves the cooldown untouched.
	service := NewWagerService(mockFactory, &scriptRand{floats: []float64{0.60}})

	result, err := service.SpinWheel(ctx, 1, 42, 100)

	assert.NoError(t, err)
	assert.Equal(t, 1.0, result.Multiplier)
	mockCooldownRepo.AssertNotCalled(t, "Get", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	mockCooldownRepo.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestWagerService_GambleCooldownRejected(t *testing.T) {
	ctx := context.Background()
	mockFactory, _, _, mockCooldownRepo := setupWagerMocks()

	cd := &models.Cooldown{
		GuildID:  1,
		UserID:   42,
		Name:     models.CooldownGamble,
		NextTime: timeInFuture(),
	}
	mockCooldownRepo.On("Get", ctx, int64(1), int64(42), models.CooldownGamble).Return(cd, nil)

	service := NewWagerService(mockFactory, &scriptRand{ints: []int{0}})

	_, err := service.FlipCoin(ctx, 1, 42, 100, models.CoinHeads)

	var cooldownErr *CooldownError
	assert.ErrorAs(t, err, &cooldownErr)
	assert.Equal(t, models.CooldownGamble, cooldownErr.Name)
}
