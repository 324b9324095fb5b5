package services

import (
	"context"
	"fmt"
	"time"

	"coinbank/domain/entities"
	"coinbank/domain/interfaces"
	"coinbank/domain/utils"
)

// DefaultLeaderboardLimit is used when callers pass a non-positive limit.
const DefaultLeaderboardLimit = 10

// BonusConfig describes the daily reward and its reset window.
type BonusConfig struct {
	RewardAmount int64
	ResetHour    int
	ResetMinute  int
	Location     *time.Location
}

type ledgerService struct {
	accountRepo    interfaces.AccountRepository
	serverRepo     interfaces.ServerRepository
	playerRepo     interfaces.PlayerRepository
	dailyClaimRepo interfaces.DailyClaimRepository
	bonus          BonusConfig
}

// NewLedgerService creates a new ledger service over transaction-scoped repositories
func NewLedgerService(
	accountRepo interfaces.AccountRepository,
	serverRepo interfaces.ServerRepository,
	playerRepo interfaces.PlayerRepository,
	dailyClaimRepo interfaces.DailyClaimRepository,
	bonus BonusConfig,
) interfaces.LedgerService {
	return &ledgerService{
		accountRepo:    accountRepo,
		serverRepo:     serverRepo,
		playerRepo:     playerRepo,
		dailyClaimRepo: dailyClaimRepo,
		bonus:          bonus,
	}
}

func (s *ledgerService) GetBalance(ctx context.Context, groupID int64, holderUUID string) (int64, error) {
	account, err := s.accountRepo.GetByHolder(ctx, groupID, holderUUID)
	if err != nil {
		return 0, fmt.Errorf("failed to get account: %w", err)
	}
	if account == nil {
		return 0, entities.ErrAccountNotFound
	}
	return account.Balance, nil
}

func (s *ledgerService) Deposit(ctx context.Context, groupID int64, holderUUID string, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, fmt.Errorf("%w: amount must be positive", entities.ErrInvalidInput)
	}

	if err := s.accountRepo.Ensure(ctx, groupID, holderUUID); err != nil {
		return 0, fmt.Errorf("failed to ensure account: %w", err)
	}

	account, err := s.accountRepo.GetByHolderForUpdate(ctx, groupID, holderUUID)
	if err != nil {
		return 0, fmt.Errorf("failed to lock account: %w", err)
	}
	if account == nil {
		return 0, entities.ErrAccountNotFound
	}

	newBalance, err := s.accountRepo.ApplyDelta(ctx, account.ID, amount)
	if err != nil {
		return 0, fmt.Errorf("failed to apply deposit: %w", err)
	}
	return newBalance, nil
}

func (s *ledgerService) Withdraw(ctx context.Context, groupID int64, holderUUID string, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, fmt.Errorf("%w: amount must be positive", entities.ErrInvalidInput)
	}

	// Withdrawals never auto-create; an absent account is a failure.
	account, err := s.accountRepo.GetByHolderForUpdate(ctx, groupID, holderUUID)
	if err != nil {
		return 0, fmt.Errorf("failed to lock account: %w", err)
	}
	if account == nil {
		return 0, entities.ErrAccountNotFound
	}

	if !account.HasSufficientBalance(amount) {
		return 0, entities.ErrInsufficientFunds
	}

	newBalance, err := s.accountRepo.ApplyDelta(ctx, account.ID, -amount)
	if err != nil {
		return 0, fmt.Errorf("failed to apply withdrawal: %w", err)
	}
	return newBalance, nil
}

func (s *ledgerService) Pay(ctx context.Context, groupID int64, fromUUID, toUUID string, amount int64) (int64, error) {
	if fromUUID == toUUID {
		return 0, entities.ErrSelfPay
	}
	if amount <= 0 {
		return 0, fmt.Errorf("%w: amount must be positive", entities.ErrInvalidInput)
	}

	if err := s.accountRepo.Ensure(ctx, groupID, fromUUID); err != nil {
		return 0, fmt.Errorf("failed to ensure sender account: %w", err)
	}
	if err := s.accountRepo.Ensure(ctx, groupID, toUUID); err != nil {
		return 0, fmt.Errorf("failed to ensure recipient account: %w", err)
	}

	// Both rows are locked in ascending id order so that two opposite
	// transfers between the same pair cannot deadlock.
	accounts, err := s.accountRepo.GetManyForUpdate(ctx, groupID, []string{fromUUID, toUUID})
	if err != nil {
		return 0, fmt.Errorf("failed to lock accounts: %w", err)
	}

	var sender, recipient *entities.Account
	for _, account := range accounts {
		switch account.HolderUUID {
		case fromUUID:
			sender = account
		case toUUID:
			recipient = account
		}
	}
	if sender == nil {
		return 0, entities.ErrSenderNotFound
	}
	if recipient == nil {
		return 0, entities.ErrRecipientNotFound
	}

	// Re-check under lock; any pre-check result is stale by now.
	if !sender.HasSufficientBalance(amount) {
		return 0, entities.ErrInsufficientFunds
	}

	newSenderBalance, err := s.accountRepo.ApplyDelta(ctx, sender.ID, -amount)
	if err != nil {
		return 0, fmt.Errorf("failed to debit sender: %w", err)
	}
	if _, err := s.accountRepo.ApplyDelta(ctx, recipient.ID, amount); err != nil {
		return 0, fmt.Errorf("failed to credit recipient: %w", err)
	}

	return newSenderBalance, nil
}

func (s *ledgerService) ClaimDailyBonus(ctx context.Context, serverID, groupID int64, holderUUID string, now time.Time) (*interfaces.ClaimResult, error) {
	player, err := s.playerRepo.GetByUUID(ctx, serverID, holderUUID)
	if err != nil {
		return nil, fmt.Errorf("failed to get player: %w", err)
	}
	if player == nil || !player.IsLinked() {
		return nil, entities.ErrNotLinked
	}

	account, err := s.accountRepo.GetByHolderForUpdate(ctx, groupID, holderUUID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock account: %w", err)
	}
	if account == nil {
		return nil, entities.ErrAccountNotFound
	}

	windowStart := utils.LastResetAt(now, s.bonus.ResetHour, s.bonus.ResetMinute, s.bonus.Location)

	// The claim row is locked together with the account so two concurrent
	// claims for the same account serialize here.
	claim, err := s.dailyClaimRepo.GetForUpdate(ctx, account.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock claim record: %w", err)
	}
	if claim != nil && claim.ClaimedSince(windowStart) {
		next := utils.NextResetAt(now, s.bonus.ResetHour, s.bonus.ResetMinute, s.bonus.Location)
		return nil, &entities.AlreadyClaimedError{NextEligibleAt: next}
	}

	newBalance, err := s.accountRepo.ApplyDelta(ctx, account.ID, s.bonus.RewardAmount)
	if err != nil {
		return nil, fmt.Errorf("failed to credit reward: %w", err)
	}
	if err := s.dailyClaimRepo.Upsert(ctx, account.ID, now); err != nil {
		return nil, fmt.Errorf("failed to record claim: %w", err)
	}

	return &interfaces.ClaimResult{
		Message:    fmt.Sprintf("You claimed your daily reward of $%d! New balance: $%s", s.bonus.RewardAmount, utils.FormatAmount(newBalance)),
		NewBalance: newBalance,
	}, nil
}

func (s *ledgerService) Leaderboard(ctx context.Context, serverID int64, limit int) ([]*entities.LeaderboardEntry, error) {
	if limit <= 0 {
		limit = DefaultLeaderboardLimit
	}

	entries, err := s.accountRepo.TopByServer(ctx, serverID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query leaderboard: %w", err)
	}
	return entries, nil
}
