package entities

import "time"

// Account holds a player's pooled balance within a server group.
// Balances are stored in minor units and are never negative at a
// committed state.
type Account struct {
	ID         int64
	GroupID    int64
	HolderUUID string
	Balance    int64
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// HasSufficientBalance checks if the account can cover an amount.
func (a *Account) HasSufficientBalance(amount int64) bool {
	return a.Balance >= amount
}

// LeaderboardEntry is a single row of a server's balance ranking.
type LeaderboardEntry struct {
	Username string
	Balance  int64
}
