package repository

import (
	"context"
	"testing"

	"bloop/models"
	"bloop/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoanRepository_Integration(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()

	repo := NewLoanRepository(testDB.DB)
	guildID := int64(777888999)
	lenderID := int64(100)
	borrowerID := int64(200)

	t.Run("Create assigns id and pending status", func(t *testing.T) {
		loan := testutil.CreateTestLoan(guildID, lenderID, borrowerID)
		require.NoError(t, repo.Create(ctx, loan))
		assert.NotZero(t, loan.ID)
		assert.Equal(t, models.LoanStatusPending, loan.Status)
		assert.False(t, loan.CreatedAt.IsZero())

		fetched, err := repo.GetByID(ctx, loan.ID)
		require.NoError(t, err)
		require.NotNil(t, fetched)
		assert.Equal(t, lenderID, fetched.LenderID)
		assert.Equal(t, borrowerID, fetched.BorrowerID)
		assert.Equal(t, loan.Amount, fetched.Amount)
		assert.True(t, fetched.IsPending())
	})

	t.Run("GetByID returns nil for unknown loan", func(t *testing.T) {
		loan, err := repo.GetByID(ctx, 424242)
		require.NoError(t, err)
		assert.Nil(t, loan)
	})

	t.Run("Resolve transitions exactly once", func(t *testing.T) {
		loan := testutil.CreateTestLoan(guildID, lenderID, borrowerID)
		require.NoError(t, repo.Create(ctx, loan))

		ok, err := repo.Resolve(ctx, loan.ID, models.LoanStatusAccepted)
		require.NoError(t, err)
		assert.True(t, ok)

		// Second resolution loses: the loan is no longer pending
		ok, err = repo.Resolve(ctx, loan.ID, models.LoanStatusRejected)
		require.NoError(t, err)
		assert.False(t, ok)

		fetched, err := repo.GetByID(ctx, loan.ID)
		require.NoError(t, err)
		assert.Equal(t, models.LoanStatusAccepted, fetched.Status)
	})

	t.Run("Resolve rejects non-terminal status", func(t *testing.T) {
		loan := testutil.CreateTestLoan(guildID, lenderID, borrowerID)
		require.NoError(t, repo.Create(ctx, loan))

		_, err := repo.Resolve(ctx, loan.ID, models.LoanStatusPending)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid loan resolution status")
	})
}
