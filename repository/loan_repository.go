package repository

import (
	"context"
	"fmt"

	"bloop/database"
	"bloop/models"

	"github.com/jackc/pgx/v5"
)

// LoanRepository implements the LoanRepository interface
type LoanRepository struct {
	q queryable
}

// NewLoanRepository creates a new loan repository
func NewLoanRepository(db *database.DB) *LoanRepository {
	return &LoanRepository{q: db.Pool}
}

// newLoanRepositoryWithTx creates a new loan repository with a transaction
func newLoanRepositoryWithTx(tx queryable) *LoanRepository {
	return &LoanRepository{q: tx}
}

// Create inserts a pending loan record
func (r *LoanRepository) Create(ctx context.Context, loan *models.Loan) error {
	query := `
		INSERT INTO loans (guild_id, lender_id, borrower_id, amount, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`

	err := r.q.QueryRow(ctx, query,
		loan.GuildID,
		loan.LenderID,
		loan.BorrowerID,
		loan.Amount,
		models.LoanStatusPending,
	).Scan(&loan.ID, &loan.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create loan: %w", err)
	}

	loan.Status = models.LoanStatusPending
	return nil
}

// GetByID retrieves a loan by its identifier, returning nil if absent
func (r *LoanRepository) GetByID(ctx context.Context, id int64) (*models.Loan, error) {
	query := `
		SELECT id, guild_id, lender_id, borrower_id, amount, status, created_at
		FROM loans
		WHERE id = $1
	`

	var loan models.Loan
	err := r.q.QueryRow(ctx, query, id).Scan(
		&loan.ID,
		&loan.GuildID,
		&loan.LenderID,
		&loan.BorrowerID,
		&loan.Amount,
		&loan.Status,
		&loan.CreatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get loan %d: %w", id, err)
	}

	return &loan, nil
}

// Resolve transitions a pending loan to the given terminal status. It
// returns false when the loan was already resolved, so the pending to
// accepted/rejected transition happens exactly once even under races.
func (r *LoanRepository) Resolve(ctx context.Context, id int64, status models.LoanStatus) (bool, error) {
	if status != models.LoanStatusAccepted && status != models.LoanStatusRejected {
		return false, fmt.Errorf("invalid loan resolution status: %s", status)
	}

	query := `
		UPDATE loans
		SET status = $1
		WHERE id = $2 AND status = $3
	`

	result, err := r.q.Exec(ctx, query, status, id, models.LoanStatusPending)
	if err != nil {
		return false, fmt.Errorf("failed to resolve loan %d: %w", id, err)
	}

	return result.RowsAffected() > 0, nil
}
