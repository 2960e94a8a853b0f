package service

import (
	"context"
	"fmt"

	"bloop/events"
	"bloop/models"
)

type loanService struct {
	uowFactory UnitOfWorkFactory
}

// NewLoanService creates a new loan service
func NewLoanService(uowFactory UnitOfWorkFactory) LoanService {
	return &loanService{
		uowFactory: uowFactory,
	}
}

func (s *loanService) Propose(ctx context.Context, guildID, lenderID, borrowerID int64, amount int64) (*models.Loan, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("loan amount must be positive")
	}
	if lenderID == borrowerID {
		return nil, fmt.Errorf("cannot loan to yourself")
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	// No funds move and no balance check happens here; the lender's balance
	// only matters at acceptance
	loan := &models.Loan{
		GuildID:    guildID,
		LenderID:   lenderID,
		BorrowerID: borrowerID,
		Amount:     amount,
	}
	if err := uow.LoanRepository().Create(ctx, loan); err != nil {
		return nil, fmt.Errorf("failed to create loan: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return loan, nil
}

func (s *loanService) Resolve(ctx context.Context, loanID, actingUserID int64, accept bool) (*models.Loan, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	loan, err := uow.LoanRepository().GetByID(ctx, loanID)
	if err != nil {
		return nil, fmt.Errorf("failed to get loan: %w", err)
	}
	if loan == nil {
		return nil, fmt.Errorf("loan not found")
	}
	if !loan.CanBeResolvedBy(actingUserID) {
		return nil, fmt.Errorf("only the lender can resolve this loan")
	}
	if !loan.IsPending() {
		return nil, fmt.Errorf("loan was already %s", loan.Status)
	}

	status := models.LoanStatusRejected
	if accept {
		status = models.LoanStatusAccepted
	}

	// The conditional update is the arbiter against a concurrent resolve
	resolved, err := uow.LoanRepository().Resolve(ctx, loanID, status)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve loan: %w", err)
	}
	if !resolved {
		return nil, fmt.Errorf("loan was already resolved")
	}
	loan.Status = status

	if accept {
		if _, err := uow.AccountRepository().GetOrCreate(ctx, loan.GuildID, loan.BorrowerID); err != nil {
			return nil, fmt.Errorf("failed to get borrower account: %w", err)
		}
		if err := uow.AccountRepository().DeductBalance(ctx, loan.GuildID, loan.LenderID, loan.Amount); err != nil {
			return nil, err
		}
		if err := uow.AccountRepository().AddBalance(ctx, loan.GuildID, loan.BorrowerID, loan.Amount); err != nil {
			return nil, fmt.Errorf("failed to credit borrower: %w", err)
		}

		uow.EventBus().Publish(events.BalanceChangeEvent{
			GuildID:      loan.GuildID,
			UserID:       loan.LenderID,
			ChangeAmount: -loan.Amount,
			Reason:       "loan accepted",
		})
		uow.EventBus().Publish(events.BalanceChangeEvent{
			GuildID:      loan.GuildID,
			UserID:       loan.BorrowerID,
			ChangeAmount: loan.Amount,
			Reason:       "loan received",
		})
	}

	uow.EventBus().Publish(events.LoanResolvedEvent{
		LoanID:     loan.ID,
		GuildID:    loan.GuildID,
		LenderID:   loan.LenderID,
		BorrowerID: loan.BorrowerID,
		Amount:     loan.Amount,
		Accepted:   accept,
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return loan, nil
}
