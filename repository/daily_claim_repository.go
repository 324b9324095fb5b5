package repository

import (
	"context"
	"fmt"
	"time"

	"coinbank/database"
	"coinbank/domain/entities"
	"coinbank/domain/interfaces"

	"github.com/jackc/pgx/v5"
)

// DailyClaimRepository implements the DailyClaimRepository interface
type DailyClaimRepository struct {
	q Queryable
}

// NewDailyClaimRepository creates a pool-backed daily claim repository
func NewDailyClaimRepository(db *database.DB) *DailyClaimRepository {
	return &DailyClaimRepository{q: db.Pool}
}

func newDailyClaimRepository(tx Queryable) interfaces.DailyClaimRepository {
	return &DailyClaimRepository{q: tx}
}

// GetForUpdate retrieves the claim record for an account with a row lock.
// Returns nil if the account has never claimed.
func (r *DailyClaimRepository) GetForUpdate(ctx context.Context, accountID int64) (*entities.DailyClaim, error) {
	query := `
		SELECT account_id, last_claim_at
		FROM daily_claims
		WHERE account_id = $1
		FOR UPDATE
	`

	var claim entities.DailyClaim
	err := r.q.QueryRow(ctx, query, accountID).Scan(&claim.AccountID, &claim.LastClaimAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock claim record for account %d: %w", accountID, err)
	}
	return &claim, nil
}

// Upsert records a claim on the single per-account row
func (r *DailyClaimRepository) Upsert(ctx context.Context, accountID int64, claimedAt time.Time) error {
	query := `
		INSERT INTO daily_claims (account_id, last_claim_at)
		VALUES ($1, $2)
		ON CONFLICT (account_id)
		DO UPDATE SET last_claim_at = EXCLUDED.last_claim_at
	`

	if _, err := r.q.Exec(ctx, query, accountID, claimedAt); err != nil {
		return fmt.Errorf("failed to upsert claim for account %d: %w", accountID, err)
	}
	return nil
}
