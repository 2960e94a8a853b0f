package service

import (
	"context"
	"testing"

	"bloop/events"
	"bloop/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// potRecorder captures settlement events for assertions
type potRecorder struct {
	results []*models.PotResult
}

func (r *potRecorder) Publish(event events.Event) {
	if e, ok := event.(events.PotSettledEvent); ok {
		r.results = append(r.results, e.Result)
	}
}

func setupDiceMocks() (*MockUnitOfWorkFactory, *MockAccountRepository) {
	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockAccountRepo := new(MockAccountRepository)

	mockUoW.SetRepositories(mockAccountRepo, nil, nil, nil)

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", mock.Anything).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockAccountRepo.On("GetOrCreate", mock.Anything, mock.Anything, mock.Anything).
		Return(&models.Account{Balance: 10000}, nil).Maybe()

	return mockFactory, mockAccountRepo
}

func TestDiceService_StartAndJoinBuildPot(t *testing.T) {
	ctx := context.Background()
	mockFactory, mockAccountRepo := setupDiceMocks()

	mockAccountRepo.On("DeductBalance", ctx, int64(1), int64(42), int64(100)).Return(nil)
	mockAccountRepo.On("DeductBalance", ctx, int64(1), int64(43), int64(100)).Return(nil)

	service := NewDiceService(mockFactory, &scriptRand{}, &potRecorder{})

	session, err := service.Start(ctx, 1, 10, 42, 100)
	assert.NoError(t, err)
	assert.Equal(t, int64(100), session.Pot())

	session, err = service.Join(ctx, 10, 43)
	assert.NoError(t, err)
	assert.Len(t, session.Participants, 2)
	assert.Equal(t, int64(200), session.Pot())

	mockAccountRepo.AssertExpectations(t)
}

func TestDiceService_RejectsConcurrentStartAndDoubleJoin(t *testing.T) {
	ctx := context.Background()
	mockFactory, mockAccountRepo := setupDiceMocks()

	mockAccountRepo.On("DeductBalance", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	service := NewDiceService(mockFactory, &scriptRand{}, &potRecorder{})

	_, err := service.Start(ctx, 1, 10, 42, 100)
	assert.NoError(t, err)

	_, err = service.Start(ctx, 1, 10, 99, 50)
	assert.ErrorIs(t, err, ErrSessionActive)

	_, err = service.Join(ctx, 10, 42)
	assert.ErrorIs(t, err, ErrAlreadyJoined)

	_, err = service.Join(ctx, 11, 43)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestDiceService_JoinRejectedWithoutFunds(t *testing.T) {
	ctx := context.Background()
	mockFactory, mockAccountRepo := setupDiceMocks()

	mockAccountRepo.On("DeductBalance", ctx, int64(1), int64(42), int64(100)).Return(nil)
	mockAccountRepo.On("DeductBalance", ctx, int64(1), int64(43), int64(100)).Return(assert.AnError)

	service := NewDiceService(mockFactory, &scriptRand{}, &potRecorder{})

	session, err := service.Start(ctx, 1, 10, 42, 100)
	assert.NoError(t, err)

	_, err = service.Join(ctx, 10, 43)
	assert.Error(t, err)
	assert.Len(t, session.Participants, 1)
}

func TestDiceService_SoleParticipantIsRefunded(t *testing.T) {
	ctx := context.Background()
	mockFactory, mockAccountRepo := setupDiceMocks()
	recorder := &potRecorder{}

	mockAccountRepo.On("DeductBalance", ctx, int64(1), int64(42), int64(100)).Return(nil)
	mockAccountRepo.On("AddBalance", mock.Anything, int64(1), int64(42), int64(100)).Return(nil)

	service := NewDiceService(mockFactory, &scriptRand{}, recorder).(*diceService)

	_, err := service.Start(ctx, 1, 10, 42, 100)
	assert.NoError(t, err)

	service.settle(10)

	assert.Len(t, recorder.results, 1)
	result := recorder.results[0]
	assert.True(t, result.Refunded)
	assert.Empty(t, result.Rolls)

	// Channel is clear for a new session
	mockAccountRepo.On("DeductBalance", ctx, int64(1), int64(42), int64(50)).Return(nil)
	_, err = service.Start(ctx, 1, 10, 42, 50)
	assert.NoError(t, err)

	mockAccountRepo.AssertExpectations(t)
}

func TestDiceService_HighestRollTakesPot(t *testing.T) {
	ctx := context.Background()
	mockFactory, mockAccountRepo := setupDiceMocks()
	recorder := &potRecorder{}

	mockAccountRepo.On("DeductBalance", mock.Anything, mock.Anything, mock.Anything, int64(100)).Return(nil)
	// Rolls 6, 2: user 42 takes the whole pot
	mockAccountRepo.On("AddBalance", mock.Anything, int64(1), int64(42), int64(200)).Return(nil)

	rng := &scriptRand{ints: []int{5, 1}} // Intn(6)+1 gives 6 and 2
	service := NewDiceService(mockFactory, rng, recorder).(*diceService)

	_, err := service.Start(ctx, 1, 10, 42, 100)
	assert.NoError(t, err)
	_, err = service.Join(ctx, 10, 43)
	assert.NoError(t, err)

	service.settle(10)

	assert.Len(t, recorder.results, 1)
	result := recorder.results[0]
	assert.False(t, result.Refunded)
	assert.Equal(t, int64(200), result.Pot)
	assert.Equal(t, []int64{42}, result.Winners)
	assert.Equal(t, int64(200), result.PrizeEach)

	mockAccountRepo.AssertExpectations(t)
}

func TestDiceService_TieSplitsPotAndForfeitsRemainder(t *testing.T) {
	ctx := context.Background()
	mockFactory, mockAccountRepo := setupDiceMocks()
	recorder := &potRecorder{}

	mockAccountRepo.On("DeductBalance", mock.Anything, mock.Anything, mock.Anything, int64(101)).Return(nil)
	// Pot 303, two winners: floor(303/2) = 151 each, 1 unit forfeited
	mockAccountRepo.On("AddBalance", mock.Anything, int64(1), int64(42), int64(151)).Return(nil)
	mockAccountRepo.On("AddBalance", mock.Anything, int64(1), int64(44), int64(151)).Return(nil)

	rng := &scriptRand{ints: []int{5, 2, 5}} // rolls 6, 3, 6
	service := NewDiceService(mockFactory, rng, recorder).(*diceService)

	_, err := service.Start(ctx, 1, 10, 42, 101)
	assert.NoError(t, err)
	_, err = service.Join(ctx, 10, 43)
	assert.NoError(t, err)
	_, err = service.Join(ctx, 10, 44)
	assert.NoError(t, err)

	service.settle(10)

	assert.Len(t, recorder.results, 1)
	result := recorder.results[0]
	assert.Equal(t, int64(303), result.Pot)
	assert.ElementsMatch(t, []int64{42, 44}, result.Winners)
	assert.Equal(t, int64(151), result.PrizeEach)

	mockAccountRepo.AssertExpectations(t)
	// Loser gets nothing
	mockAccountRepo.AssertNotCalled(t, "AddBalance", mock.Anything, int64(1), int64(43), mock.Anything)
}

func TestDiceService_JoinAfterSettleRejected(t *testing.T) {
	ctx := context.Background()
	mockFactory, mockAccountRepo := setupDiceMocks()

	mockAccountRepo.On("DeductBalance", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	mockAccountRepo.On("AddBalance", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	service := NewDiceService(mockFactory, &scriptRand{}, &potRecorder{}).(*diceService)

	_, err := service.Start(ctx, 1, 10, 42, 100)
	assert.NoError(t, err)

	service.settle(10)

	_, err = service.Join(ctx, 10, 43)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}
