package repository

import (
	"context"
	"fmt"
	"math"

	"coinbank/database"
	"coinbank/domain/entities"
	"coinbank/domain/interfaces"

	"github.com/jackc/pgx/v5"
)

// AccountRepository implements the AccountRepository interface
type AccountRepository struct {
	q Queryable
}

// NewAccountRepository creates a pool-backed account repository for
// non-transactional reads.
func NewAccountRepository(db *database.DB) *AccountRepository {
	return &AccountRepository{q: db.Pool}
}

func newAccountRepository(tx Queryable) interfaces.AccountRepository {
	return &AccountRepository{q: tx}
}

// flooredBalance truncates a stored numeric balance toward zero. Repeated
// float round-trips must never inflate a balance, so this never rounds.
func flooredBalance(raw float64) int64 {
	return int64(math.Trunc(raw))
}

func scanAccount(row pgx.Row) (*entities.Account, error) {
	var account entities.Account
	var rawBalance float64
	err := row.Scan(
		&account.ID,
		&account.GroupID,
		&account.HolderUUID,
		&rawBalance,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	account.Balance = flooredBalance(rawBalance)
	return &account, nil
}

// GetByHolder retrieves an account by holder UUID within a group
func (r *AccountRepository) GetByHolder(ctx context.Context, groupID int64, holderUUID string) (*entities.Account, error) {
	query := `
		SELECT id, group_id, holder_uuid, balance, created_at, updated_at
		FROM accounts
		WHERE group_id = $1 AND holder_uuid = $2
	`

	account, err := scanAccount(r.q.QueryRow(ctx, query, groupID, holderUUID))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account for holder %s in group %d: %w", holderUUID, groupID, err)
	}
	return account, nil
}

// GetByHolderForUpdate retrieves an account with a row lock held until the
// enclosing transaction commits or rolls back
func (r *AccountRepository) GetByHolderForUpdate(ctx context.Context, groupID int64, holderUUID string) (*entities.Account, error) {
	query := `
		SELECT id, group_id, holder_uuid, balance, created_at, updated_at
		FROM accounts
		WHERE group_id = $1 AND holder_uuid = $2
		FOR UPDATE
	`

	account, err := scanAccount(r.q.QueryRow(ctx, query, groupID, holderUUID))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock account for holder %s in group %d: %w", holderUUID, groupID, err)
	}
	return account, nil
}

// Ensure inserts the account with balance 0 if absent. An existing balance
// is never touched.
func (r *AccountRepository) Ensure(ctx context.Context, groupID int64, holderUUID string) error {
	query := `
		INSERT INTO accounts (group_id, holder_uuid, balance)
		VALUES ($1, $2, 0)
		ON CONFLICT (group_id, holder_uuid) DO NOTHING
	`

	if _, err := r.q.Exec(ctx, query, groupID, holderUUID); err != nil {
		return fmt.Errorf("failed to ensure account for holder %s in group %d: %w", holderUUID, groupID, err)
	}
	return nil
}

// GetManyForUpdate locks the requested accounts in ascending id order,
// regardless of argument order. The fixed order is what keeps concurrent
// opposite-direction transfers from deadlocking.
func (r *AccountRepository) GetManyForUpdate(ctx context.Context, groupID int64, holderUUIDs []string) ([]*entities.Account, error) {
	query := `
		SELECT id, group_id, holder_uuid, balance, created_at, updated_at
		FROM accounts
		WHERE group_id = $1 AND holder_uuid = ANY($2)
		ORDER BY id
		FOR UPDATE
	`

	rows, err := r.q.Query(ctx, query, groupID, holderUUIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to lock accounts in group %d: %w", groupID, err)
	}
	defer rows.Close()

	var accounts []*entities.Account
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan locked account: %w", err)
		}
		accounts = append(accounts, account)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read locked accounts: %w", err)
	}
	return accounts, nil
}

// ApplyDelta adds a signed delta to the balance and returns the new
// floored balance. The caller has already validated non-negativity under
// the row lock.
func (r *AccountRepository) ApplyDelta(ctx context.Context, accountID int64, delta int64) (int64, error) {
	query := `
		UPDATE accounts
		SET balance = balance + $1, updated_at = NOW()
		WHERE id = $2
		RETURNING balance
	`

	var rawBalance float64
	if err := r.q.QueryRow(ctx, query, delta, accountID).Scan(&rawBalance); err != nil {
		return 0, fmt.Errorf("failed to apply delta %d to account %d: %w", delta, accountID, err)
	}
	return flooredBalance(rawBalance), nil
}

// TopByServer returns the highest balances among a server's players
func (r *AccountRepository) TopByServer(ctx context.Context, serverID int64, limit int) ([]*entities.LeaderboardEntry, error) {
	query := `
		SELECT p.username, a.balance
		FROM players p
		JOIN servers s ON s.id = p.server_id
		JOIN accounts a ON a.group_id = s.group_id AND a.holder_uuid = p.minecraft_uuid
		WHERE p.server_id = $1
		ORDER BY a.balance DESC, a.id
		LIMIT $2
	`

	rows, err := r.q.Query(ctx, query, serverID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query top balances for server %d: %w", serverID, err)
	}
	defer rows.Close()

	var entries []*entities.LeaderboardEntry
	for rows.Next() {
		var entry entities.LeaderboardEntry
		var rawBalance float64
		if err := rows.Scan(&entry.Username, &rawBalance); err != nil {
			return nil, fmt.Errorf("failed to scan leaderboard entry: %w", err)
		}
		entry.Balance = flooredBalance(rawBalance)
		entries = append(entries, &entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read leaderboard entries: %w", err)
	}
	return entries, nil
}
