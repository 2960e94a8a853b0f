package models

import (
	"time"
)

// LoanStatus represents the state of a loan request
type LoanStatus string

const (
	LoanStatusPending  LoanStatus = "pending"
	LoanStatusAccepted LoanStatus = "accepted"
	LoanStatusRejected LoanStatus = "rejected"
)

// Loan represents a peer-to-peer loan request between two guild members.
// The status moves from pending to accepted or rejected exactly once, and
// only the lender may resolve it.
type Loan struct {
	ID         int64      `db:"id"`
	GuildID    int64      `db:"guild_id"`
	LenderID   int64      `db:"lender_id"`
	BorrowerID int64      `db:"borrower_id"`
	Amount     int64      `db:"amount"`
	Status     LoanStatus `db:"status"`
	CreatedAt  time.Time  `db:"created_at"`
}

// IsPending checks if the loan can still be resolved
func (l *Loan) IsPending() bool {
	return l.Status == LoanStatusPending
}

// CanBeResolvedBy checks if the given user is allowed to resolve the loan
func (l *Loan) CanBeResolvedBy(userID int64) bool {
	return l.LenderID == userID
}
