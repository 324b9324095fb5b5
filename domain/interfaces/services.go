package interfaces

import (
	"context"
	"time"

	"coinbank/domain/entities"
)

// ClaimResult is the outcome of a successful daily reward claim.
type ClaimResult struct {
	Message    string
	NewBalance int64
}

// LedgerService defines the core ledger operations. Implementations run
// against transaction-scoped repositories; atomicity is provided by the
// enclosing unit of work.
type LedgerService interface {
	// GetBalance returns the floored balance of an account.
	GetBalance(ctx context.Context, groupID int64, holderUUID string) (int64, error)

	// Deposit credits an amount, creating the account if needed.
	Deposit(ctx context.Context, groupID int64, holderUUID string, amount int64) (int64, error)

	// Withdraw debits an amount from an existing account.
	Withdraw(ctx context.Context, groupID int64, holderUUID string, amount int64) (int64, error)

	// Pay moves an amount between two holders and returns the sender's
	// new balance. The sum of both balances is invariant.
	Pay(ctx context.Context, groupID int64, fromUUID, toUUID string, amount int64) (int64, error)

	// ClaimDailyBonus credits the daily reward once per reset window.
	ClaimDailyBonus(ctx context.Context, serverID, groupID int64, holderUUID string, now time.Time) (*ClaimResult, error)

	// Leaderboard returns the top balances among a server's players.
	Leaderboard(ctx context.Context, serverID int64, limit int) ([]*entities.LeaderboardEntry, error)
}
