package service

import (
	"context"
	"testing"

	"bloop/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func setupLoanMocks() (*MockUnitOfWorkFactory, *MockAccountRepository, *MockLoanRepository) {
	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockAccountRepo := new(MockAccountRepository)
	mockLoanRepo := new(MockLoanRepository)

	mockUoW.SetRepositories(mockAccountRepo, nil, nil, mockLoanRepo)

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", mock.Anything).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	return mockFactory, mockAccountRepo, mockLoanRepo
}

func TestLoanService_Propose(t *testing.T) {
	ctx := context.Background()
	mockFactory, _, mockLoanRepo := setupLoanMocks()

	mockLoanRepo.On("Create", ctx, mock.MatchedBy(func(l *models.Loan) bool {
		return l.GuildID == 1 && l.LenderID == 42 && l.BorrowerID == 43 && l.Amount == 300
	})).Return(nil)

	service := NewLoanService(mockFactory)

	loan, err := service.Propose(ctx, 1, 42, 43, 300)

	assert.NoError(t, err)
	assert.Equal(t, int64(300), loan.Amount)

	mockLoanRepo.AssertExpectations(t)
}

func TestLoanService_Propose_NoBalanceCheck(t *testing.T) {
	ctx := context.Background()
	mockFactory, mockAccountRepo, mockLoanRepo := setupLoanMocks()

	// A proposal is just a pending record; the lender's balance is only
	// checked at acceptance, so a broke lender can still propose.
	mockLoanRepo.On("Create", ctx, mock.MatchedBy(func(l *models.Loan) bool {
		return l.LenderID == 42 && l.Amount == 300
	})).Return(nil)

	service := NewLoanService(mockFactory)

	loan, err := service.Propose(ctx, 1, 42, 43, 300)

	assert.NoError(t, err)
	assert.Equal(t, int64(300), loan.Amount)
	mockAccountRepo.AssertNotCalled(t, "GetOrCreate", mock.Anything, mock.Anything, mock.Anything)
	mockAccountRepo.AssertNotCalled(t, "DeductBalance", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestLoanService_Accept_MovesFunds(t *testing.T) {
	ctx := context.Background()
	mockFactory, mockAccountRepo, mockLoanRepo := setupLoanMocks()

	pending := &models.Loan{ID: 7, GuildID: 1, LenderID: 42, BorrowerID: 43, Amount: 300, Status: models.LoanStatusPending}
	borrower := &models.Account{GuildID: 1, UserID: 43, Balance: 0}

	mockLoanRepo.On("GetByID", ctx, int64(7)).Return(pending, nil)
	mockLoanRepo.On("Resolve", ctx, int64(7), models.LoanStatusAccepted).Return(true, nil)
	mockAccountRepo.On("GetOrCreate", ctx, int64(1), int64(43)).Return(borrower, nil)
	mockAccountRepo.On("DeductBalance", ctx, int64(1), int64(42), int64(300)).Return(nil)
	mockAccountRepo.On("AddBalance", ctx, int64(1), int64(43), int64(300)).Return(nil)

	service := NewLoanService(mockFactory)

	loan, err := service.Resolve(ctx, 7, 42, true)

	assert.NoError(t, err)
	assert.Equal(t, models.LoanStatusAccepted, loan.Status)

	mockAccountRepo.AssertExpectations(t)
	mockLoanRepo.AssertExpectations(t)
}

func TestLoanService_Reject_MovesNothing(t *testing.T) {
	ctx := context.Background()
	mockFactory, mockAccountRepo, mockLoanRepo := setupLoanMocks()

	pending := &models.Loan{ID: 7, GuildID: 1, LenderID: 42, BorrowerID: 43, Amount: 300, Status: models.LoanStatusPending}

	mockLoanRepo.On("GetByID", ctx, int64(7)).Return(pending, nil)
	mockLoanRepo.On("Resolve", ctx, int64(7), models.LoanStatusRejected).Return(true, nil)

	service := NewLoanService(mockFactory)

	loan, err := service.Resolve(ctx, 7, 42, false)

	assert.NoError(t, err)
	assert.Equal(t, models.LoanStatusRejected, loan.Status)

	mockAccountRepo.AssertNotCalled(t, "DeductBalance", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	mockAccountRepo.AssertNotCalled(t, "AddBalance", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestLoanService_OnlyLenderResolves(t *testing.T) {
	ctx := context.Background()
	mockFactory, _, mockLoanRepo := setupLoanMocks()

	pending := &models.Loan{ID: 7, GuildID: 1, LenderID: 42, BorrowerID: 43, Amount: 300, Status: models.LoanStatusPending}
	mockLoanRepo.On("GetByID", ctx, int64(7)).Return(pending, nil)

	service := NewLoanService(mockFactory)

	// Neither the borrower nor a bystander may resolve
	_, err := service.Resolve(ctx, 7, 43, true)
	assert.Error(t, err)
	_, err = service.Resolve(ctx, 7, 99, false)
	assert.Error(t, err)

	mockLoanRepo.AssertNotCalled(t, "Resolve", mock.Anything, mock.Anything, mock.Anything)
}

func TestLoanService_ResolvingSettledLoanRejected(t *testing.T) {
	ctx := context.Background()
	mockFactory, mockAccountRepo, mockLoanRepo := setupLoanMocks()

	accepted := &models.Loan{ID: 7, GuildID: 1, LenderID: 42, BorrowerID: 43, Amount: 300, Status: models.LoanStatusAccepted}
	mockLoanRepo.On("GetByID", ctx, int64(7)).Return(accepted, nil)

	service := NewLoanService(mockFactory)

	_, err := service.Resolve(ctx, 7, 42, false)

	assert.Error(t, err)
	mockLoanRepo.AssertNotCalled(t, "Resolve", mock.Anything, mock.Anything, mock.Anything)
	mockAccountRepo.AssertNotCalled(t, "DeductBalance", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestLoanService_ConcurrentResolveLosesRace(t *testing.T) {
	ctx := context.Background()
	mockFactory, mockAccountRepo, mockLoanRepo := setupLoanMocks()

	pending := &models.Loan{ID: 7, GuildID: 1, LenderID: 42, BorrowerID: 43, Amount: 300, Status: models.LoanStatusPending}
	mockLoanRepo.On("GetByID", ctx, int64(7)).Return(pending, nil)
	// Another transaction resolved the loan first
	mockLoanRepo.On("Resolve", ctx, int64(7), models.LoanStatusAccepted).Return(false, nil)

	service := NewLoanService(mockFactory)

	_, err := service.Resolve(ctx, 7, 42, true)

	assert.Error(t, err)
	mockAccountRepo.AssertNotCalled(t, "DeductBalance", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
