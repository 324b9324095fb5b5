package application_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"coinbank/application"
	"coinbank/database"
	"coinbank/domain/entities"
	"coinbank/domain/services"
	"coinbank/repository"
	"coinbank/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLedger(t *testing.T, db *database.DB) *application.Ledger {
	t.Helper()
	loc, err := time.LoadLocation("Europe/Berlin")
	require.NoError(t, err)

	return application.NewLedger(
		repository.NewUnitOfWorkFactory(db),
		repository.NewServerRepository(db),
		repository.NewAccountRepository(db),
		services.BonusConfig{
			RewardAmount: 50,
			ResetHour:    6,
			ResetMinute:  30,
			Location:     loc,
		},
	)
}

// Follows one account through withdraw, pay and daily claims end to end.
func TestLedgerScenario(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)
	ledger := newTestLedger(t, testDB.DB)
	ctx := context.Background()

	groupID := testutil.CreateTestGroup(t, testDB.DB, "scenario-group")
	serverID := testutil.CreateTestServer(t, testDB.DB, groupID, "scenario-server")
	testutil.CreateTestPlayer(t, testDB.DB, serverID, "uuid-a", "alice", "111222333")
	testutil.CreateTestAccount(t, testDB.DB, groupID, "uuid-a", 1000)

	// Overdraw fails and leaves the balance untouched.
	_, err := ledger.Withdraw(ctx, groupID, "uuid-a", 1200)
	assert.ErrorIs(t, err, entities.ErrInsufficientFunds)
	balance, err := ledger.GetBalance(ctx, groupID, "uuid-a")
	require.NoError(t, err)
	assert.Equal(t, int64(1000), balance)

	newBalance, err := ledger.Withdraw(ctx, groupID, "uuid-a", 200)
	require.NoError(t, err)
	assert.Equal(t, int64(800), newBalance)

	// Paying a holder with no account creates it with the amount.
	newBalance, err = ledger.Pay(ctx, groupID, "uuid-a", "uuid-b", 300)
	require.NoError(t, err)
	assert.Equal(t, int64(500), newBalance)
	assert.Equal(t, int64(300), testutil.AccountBalance(t, testDB.DB, groupID, "uuid-b"))

	loc, err := time.LoadLocation("Europe/Berlin")
	require.NoError(t, err)
	now := time.Date(2024, 3, 4, 12, 0, 0, 0, loc)

	result, err := ledger.ClaimDailyBonus(ctx, serverID, groupID, "uuid-a", now)
	require.NoError(t, err)
	assert.Equal(t, int64(550), result.NewBalance)

	// Same window, second claim refused and balance unchanged.
	_, err = ledger.ClaimDailyBonus(ctx, serverID, groupID, "uuid-a", now)
	var alreadyClaimed *entities.AlreadyClaimedError
	require.ErrorAs(t, err, &alreadyClaimed)
	assert.True(t, alreadyClaimed.NextEligibleAt.Equal(time.Date(2024, 3, 5, 6, 30, 0, 0, loc)))
	assert.Equal(t, int64(550), testutil.AccountBalance(t, testDB.DB, groupID, "uuid-a"))

	// Past the next boundary the claim succeeds again.
	result, err = ledger.ClaimDailyBonus(ctx, serverID, groupID, "uuid-a", now.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.Equal(t, int64(600), result.NewBalance)
}

func TestDepositCreatesAccount(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)
	ledger := newTestLedger(t, testDB.DB)
	ctx := context.Background()

	groupID := testutil.CreateTestGroup(t, testDB.DB, "deposit-group")

	newBalance, err := ledger.Deposit(ctx, groupID, "uuid-fresh", 400)
	require.NoError(t, err)
	assert.Equal(t, int64(400), newBalance)

	newBalance, err = ledger.Deposit(ctx, groupID, "uuid-fresh", 100)
	require.NoError(t, err)
	assert.Equal(t, int64(500), newBalance)

	_, err = ledger.Deposit(ctx, groupID, "uuid-fresh", 0)
	assert.ErrorIs(t, err, entities.ErrInvalidInput)

	_, err = ledger.Withdraw(ctx, groupID, "uuid-absent", 10)
	assert.ErrorIs(t, err, entities.ErrAccountNotFound)
}

// The sum of balances is invariant across any set of concurrent pays.
func TestPayConservationUnderConcurrency(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)
	ledger := newTestLedger(t, testDB.DB)
	ctx := context.Background()

	groupID := testutil.CreateTestGroup(t, testDB.DB, "conservation-group")
	holders := []string{"uuid-a", "uuid-b", "uuid-c"}
	for _, holder := range holders {
		testutil.CreateTestAccount(t, testDB.DB, groupID, holder, 1000)
	}

	pairs := [][2]string{
		{"uuid-a", "uuid-b"},
		{"uuid-b", "uuid-c"},
		{"uuid-c", "uuid-a"},
		{"uuid-b", "uuid-a"},
		{"uuid-c", "uuid-b"},
		{"uuid-a", "uuid-c"},
	}

	var wg sync.WaitGroup
	for i := 0; i < 30; i++ {
		pair := pairs[i%len(pairs)]
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := ledger.Pay(ctx, groupID, pair[0], pair[1], 25)
			// Only a funds shortage is an acceptable failure here.
			if err != nil {
				assert.ErrorIs(t, err, entities.ErrInsufficientFunds)
			}
		}()
	}
	wg.Wait()

	var total int64
	for _, holder := range holders {
		total += testutil.AccountBalance(t, testDB.DB, groupID, holder)
	}
	assert.Equal(t, int64(3000), total)
}

// Racing withdrawals never drive a balance negative: exactly the requests
// the balance can satisfy succeed.
func TestWithdrawNonNegativeUnderConcurrency(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)
	ledger := newTestLedger(t, testDB.DB)
	ctx := context.Background()

	groupID := testutil.CreateTestGroup(t, testDB.DB, "withdraw-group")
	testutil.CreateTestAccount(t, testDB.DB, groupID, "uuid-hot", 500)

	const workers = 10
	results := make(chan error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := ledger.Withdraw(ctx, groupID, "uuid-hot", 100)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var succeeded, refused int
	for err := range results {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, entities.ErrInsufficientFunds):
			refused++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}

	assert.Equal(t, 5, succeeded)
	assert.Equal(t, 5, refused)
	assert.Equal(t, int64(0), testutil.AccountBalance(t, testDB.DB, groupID, "uuid-hot"))
}

// Opposite-direction transfers between the same pair must both complete;
// the fixed lock order leaves no deadlock cycle.
func TestOppositePaysDoNotDeadlock(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)
	ledger := newTestLedger(t, testDB.DB)
	ctx := context.Background()

	groupID := testutil.CreateTestGroup(t, testDB.DB, "deadlock-group")
	testutil.CreateTestAccount(t, testDB.DB, groupID, "uuid-a", 1000)
	testutil.CreateTestAccount(t, testDB.DB, groupID, "uuid-b", 1000)

	for i := 0; i < 20; i++ {
		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, err := ledger.Pay(ctx, groupID, "uuid-a", "uuid-b", 10)
			assert.NoError(t, err)
		}()
		go func() {
			defer wg.Done()
			_, err := ledger.Pay(ctx, groupID, "uuid-b", "uuid-a", 10)
			assert.NoError(t, err)
		}()
		wg.Wait()
	}

	total := testutil.AccountBalance(t, testDB.DB, groupID, "uuid-a") +
		testutil.AccountBalance(t, testDB.DB, groupID, "uuid-b")
	assert.Equal(t, int64(2000), total)
}

// K concurrent claims for one account and window credit exactly one reward.
func TestDailyBonusExclusiveUnderConcurrency(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)
	ledger := newTestLedger(t, testDB.DB)
	ctx := context.Background()

	groupID := testutil.CreateTestGroup(t, testDB.DB, "bonus-group")
	serverID := testutil.CreateTestServer(t, testDB.DB, groupID, "bonus-server")
	testutil.CreateTestPlayer(t, testDB.DB, serverID, "uuid-k", "kate", "444555666")
	testutil.CreateTestAccount(t, testDB.DB, groupID, "uuid-k", 0)

	loc, err := time.LoadLocation("Europe/Berlin")
	require.NoError(t, err)
	now := time.Date(2024, 3, 4, 12, 0, 0, 0, loc)

	const claimers = 8
	results := make(chan error, claimers)
	var wg sync.WaitGroup
	for i := 0; i < claimers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := ledger.ClaimDailyBonus(ctx, serverID, groupID, "uuid-k", now)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var succeeded, refused int
	for err := range results {
		if err == nil {
			succeeded++
			continue
		}
		var alreadyClaimed *entities.AlreadyClaimedError
		require.ErrorAs(t, err, &alreadyClaimed)
		refused++
	}

	assert.Equal(t, 1, succeeded)
	assert.Equal(t, claimers-1, refused)
	assert.Equal(t, int64(50), testutil.AccountBalance(t, testDB.DB, groupID, "uuid-k"))
}

func TestClaimDailyBonusRequiresLink(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)
	ledger := newTestLedger(t, testDB.DB)
	ctx := context.Background()

	groupID := testutil.CreateTestGroup(t, testDB.DB, "link-group")
	serverID := testutil.CreateTestServer(t, testDB.DB, groupID, "link-server")
	testutil.CreateTestPlayer(t, testDB.DB, serverID, "uuid-u", "unlinked", "")
	testutil.CreateTestAccount(t, testDB.DB, groupID, "uuid-u", 0)

	_, err := ledger.ClaimDailyBonus(ctx, serverID, groupID, "uuid-u", time.Now())
	assert.ErrorIs(t, err, entities.ErrNotLinked)
	assert.Equal(t, int64(0), testutil.AccountBalance(t, testDB.DB, groupID, "uuid-u"))
}

func TestLeaderboard(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)
	ledger := newTestLedger(t, testDB.DB)
	ctx := context.Background()

	groupID := testutil.CreateTestGroup(t, testDB.DB, "board-group")
	serverID := testutil.CreateTestServer(t, testDB.DB, groupID, "board-server")
	testutil.CreateTestPlayer(t, testDB.DB, serverID, "uuid-a", "alice", "")
	testutil.CreateTestPlayer(t, testDB.DB, serverID, "uuid-b", "bob", "")
	testutil.CreateTestAccount(t, testDB.DB, groupID, "uuid-a", 700)
	testutil.CreateTestAccount(t, testDB.DB, groupID, "uuid-b", 1200)

	entries, err := ledger.Leaderboard(ctx, serverID, 0)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "bob", entries[0].Username)
	assert.Equal(t, "alice", entries[1].Username)

	_, err = ledger.Leaderboard(ctx, 999999, 10)
	assert.ErrorIs(t, err, entities.ErrServerNotFound)
}

func TestResolveGroup(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)
	ledger := newTestLedger(t, testDB.DB)
	ctx := context.Background()

	groupID := testutil.CreateTestGroup(t, testDB.DB, "resolve-app-group")
	serverID := testutil.CreateTestServer(t, testDB.DB, groupID, "resolve-app-server")

	resolved, err := ledger.ResolveGroup(ctx, serverID)
	require.NoError(t, err)
	assert.Equal(t, groupID, resolved)

	_, err = ledger.ResolveGroup(ctx, 999999)
	assert.ErrorIs(t, err, entities.ErrServerNotFound)
}
