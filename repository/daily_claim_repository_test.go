package repository

import (
	"context"
	"testing"
	"time"

	"coinbank/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDailyClaimRepository_Upsert(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	repo := NewDailyClaimRepository(testDB.DB)
	ctx := context.Background()
	groupID := testutil.CreateTestGroup(t, testDB.DB, "claim-group")
	accountID := testutil.CreateTestAccount(t, testDB.DB, groupID, "uuid-claim", 0)

	first := time.Date(2024, 3, 4, 12, 0, 0, 0, time.UTC)
	second := first.AddDate(0, 0, 1)

	require.NoError(t, repo.Upsert(ctx, accountID, first))
	require.NoError(t, repo.Upsert(ctx, accountID, second))

	// A repeated claim updates the single per-account row, never adds one.
	var count int
	err := testDB.DB.QueryRow(ctx,
		`SELECT COUNT(*) FROM daily_claims WHERE account_id = $1`, accountID).Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	tx, err := testDB.DB.Begin(ctx)
	require.NoError(t, err)
	defer tx.Rollback(ctx)

	txRepo := &DailyClaimRepository{q: tx}
	claim, err := txRepo.GetForUpdate(ctx, accountID)
	require.NoError(t, err)
	require.NotNil(t, claim)
	assert.True(t, claim.LastClaimAt.Equal(second))
}

func TestDailyClaimRepository_GetForUpdate_NeverClaimed(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	ctx := context.Background()
	groupID := testutil.CreateTestGroup(t, testDB.DB, "noclaim-group")
	accountID := testutil.CreateTestAccount(t, testDB.DB, groupID, "uuid-noclaim", 0)

	tx, err := testDB.DB.Begin(ctx)
	require.NoError(t, err)
	defer tx.Rollback(ctx)

	repo := &DailyClaimRepository{q: tx}
	claim, err := repo.GetForUpdate(ctx, accountID)
	require.NoError(t, err)
	assert.Nil(t, claim)
}
