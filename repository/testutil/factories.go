package testutil

import (
	"time"

	"bloop/models"
)

// CreateTestAccount creates a test account with default values
func CreateTestAccount(guildID, userID int64) *models.Account {
	now := time.Now()
	return &models.Account{
		GuildID:   guildID,
		UserID:    userID,
		Balance:   1000,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// CreateTestAccountWithBalance creates a test account with a specific balance
func CreateTestAccountWithBalance(guildID, userID, balance int64) *models.Account {
	account := CreateTestAccount(guildID, userID)
	account.Balance = balance
	return account
}

// CreateTestLoan creates a pending test loan with sensible defaults
func CreateTestLoan(guildID, lenderID, borrowerID int64) *models.Loan {
	return &models.Loan{
		GuildID:    guildID,
		LenderID:   lenderID,
		BorrowerID: borrowerID,
		Amount:     500,
		Status:     models.LoanStatusPending,
	}
}

// CreateTestCooldown creates a cooldown that expires at the given time
func CreateTestCooldown(guildID, userID int64, name string, nextTime time.Time) *models.Cooldown {
	return &models.Cooldown{
		GuildID:  guildID,
		UserID:   userID,
		Name:     name,
		NextTime: nextTime,
	}
}
