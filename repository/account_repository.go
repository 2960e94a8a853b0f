package repository

import (
	"context"
	"fmt"
	"time"

	"bloop/database"
	"bloop/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// queryable abstracts over a pgx pool or transaction
type queryable interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// AccountRepository implements the AccountRepository interface
type AccountRepository struct {
	q queryable
}

// NewAccountRepository creates a new account repository
func NewAccountRepository(db *database.DB) *AccountRepository {
	return &AccountRepository{q: db.Pool}
}

// newAccountRepositoryWithTx creates a new account repository with a transaction
func newAccountRepositoryWithTx(tx queryable) *AccountRepository {
	return &AccountRepository{q: tx}
}

// GetOrCreate retrieves an account, creating it with a zero balance if absent
func (r *AccountRepository) GetOrCreate(ctx context.Context, guildID, userID int64) (*models.Account, error) {
	query := `
		INSERT INTO accounts (guild_id, user_id)
		VALUES ($1, $2)
		ON CONFLICT (guild_id, user_id) DO UPDATE SET updated_at = accounts.updated_at
		RETURNING guild_id, user_id, balance, badges, last_daily, created_at, updated_at
	`

	var account models.Account
	err := r.q.QueryRow(ctx, query, guildID, userID).Scan(
		&account.GuildID,
		&account.UserID,
		&account.Balance,
		&account.Badges,
		&account.LastDaily,
		&account.CreatedAt,
		&account.UpdatedAt,
	)

	if err != nil {
		return nil, fmt.Errorf("failed to get or create account %d/%d: %w", guildID, userID, err)
	}

	return &account, nil
}

// AddBalance adds to an account's balance atomically
func (r *AccountRepository) AddBalance(ctx context.Context, guildID, userID int64, amount int64) error {
	if amount <= 0 {
		return fmt.Errorf("amount must be positive")
	}

	query := `
		UPDATE accounts
		SET balance = balance + $1, updated_at = NOW()
		WHERE guild_id = $2 AND user_id = $3
	`

	result, err := r.q.Exec(ctx, query, amount, guildID, userID)
	if err != nil {
		return fmt.Errorf("failed to add balance for account %d/%d: %w", guildID, userID, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("account %d/%d not found", guildID, userID)
	}

	return nil
}

// DeductBalance deducts from an account's balance atomically, failing if
// insufficient funds. The balance check and the write are a single
// conditional UPDATE, so concurrent deductions cannot overdraw the account.
func (r *AccountRepository) DeductBalance(ctx context.Context, guildID, userID int64, amount int64) error {
	if amount <= 0 {
		return fmt.Errorf("amount must be positive")
	}

	query := `
		UPDATE accounts
		SET balance = balance - $1, updated_at = NOW()
		WHERE guild_id = $2 AND user_id = $3 AND balance >= $1
	`

	result, err := r.q.Exec(ctx, query, amount, guildID, userID)
	if err != nil {
		return fmt.Errorf("failed to deduct balance for account %d/%d: %w", guildID, userID, err)
	}

	if result.RowsAffected() == 0 {
		account, err := r.GetOrCreate(ctx, guildID, userID)
		if err != nil {
			return fmt.Errorf("failed to check account: %w", err)
		}
		return fmt.Errorf("insufficient balance: have %d, need %d", account.Balance, amount)
	}

	return nil
}

// SetLastDaily records the timestamp of the latest daily claim
func (r *AccountRepository) SetLastDaily(ctx context.Context, guildID, userID int64, claimedAt time.Time) error {
	query := `
		UPDATE accounts
		SET last_daily = $1, updated_at = NOW()
		WHERE guild_id = $2 AND user_id = $3
	`

	result, err := r.q.Exec(ctx, query, claimedAt, guildID, userID)
	if err != nil {
		return fmt.Errorf("failed to set last daily for account %d/%d: %w", guildID, userID, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("account %d/%d not found", guildID, userID)
	}

	return nil
}

// AddBadge appends a badge to the account if it does not already hold it
func (r *AccountRepository) AddBadge(ctx context.Context, guildID, userID int64, badge string) error {
	query := `
		UPDATE accounts
		SET badges = array_append(badges, $1), updated_at = NOW()
		WHERE guild_id = $2 AND user_id = $3 AND NOT ($1 = ANY(badges))
	`

	if _, err := r.q.Exec(ctx, query, badge, guildID, userID); err != nil {
		return fmt.Errorf("failed to add badge for account %d/%d: %w", guildID, userID, err)
	}

	return nil
}

// Top returns the richest accounts in a guild ordered by balance
func (r *AccountRepository) Top(ctx context.Context, guildID int64, limit int) ([]*models.Account, error) {
	query := `
		SELECT guild_id, user_id, balance, badges, last_daily, created_at, updated_at
		FROM accounts
		WHERE guild_id = $1
		ORDER BY balance DESC
		LIMIT $2
	`

	rows, err := r.q.Query(ctx, query, guildID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get top accounts: %w", err)
	}
	defer rows.Close()

	var accounts []*models.Account
	for rows.Next() {
		var account models.Account
		err := rows.Scan(
			&account.GuildID,
			&account.UserID,
			&account.Balance,
			&account.Badges,
			&account.LastDaily,
			&account.CreatedAt,
			&account.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, &account)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate accounts: %w", err)
	}

	return accounts, nil
}
