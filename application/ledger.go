package application

import (
	"context"
	"fmt"
	"time"

	"coinbank/domain/entities"
	"coinbank/domain/interfaces"
	"coinbank/domain/services"
)

// Ledger executes the ledger operations. Every mutating call owns exactly
// one unit of work: the transaction is committed on success and rolled
// back on every error path before the call returns. Read-only queries go
// straight to the pool.
type Ledger struct {
	uowFactory    UnitOfWorkFactory
	serverReader  interfaces.ServerRepository
	accountReader interfaces.AccountRepository
	bonus         services.BonusConfig
}

// NewLedger creates the ledger operation layer
func NewLedger(
	uowFactory UnitOfWorkFactory,
	serverReader interfaces.ServerRepository,
	accountReader interfaces.AccountRepository,
	bonus services.BonusConfig,
) *Ledger {
	return &Ledger{
		uowFactory:    uowFactory,
		serverReader:  serverReader,
		accountReader: accountReader,
		bonus:         bonus,
	}
}

// withUnitOfWork runs fn inside a fresh transaction with a ledger service
// bound to it.
func (l *Ledger) withUnitOfWork(ctx context.Context, fn func(uow UnitOfWork, svc interfaces.LedgerService) error) error {
	uow := l.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	svc := services.NewLedgerService(
		uow.AccountRepository(),
		uow.ServerRepository(),
		uow.PlayerRepository(),
		uow.DailyClaimRepository(),
		l.bonus,
	)

	if err := fn(uow, svc); err != nil {
		return err
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// ResolveGroup returns the group a server belongs to
func (l *Ledger) ResolveGroup(ctx context.Context, serverID int64) (int64, error) {
	return l.serverReader.ResolveGroup(ctx, serverID)
}

// GetBalance returns the floored balance of an account. Read-only, no lock.
func (l *Ledger) GetBalance(ctx context.Context, groupID int64, holderUUID string) (int64, error) {
	account, err := l.accountReader.GetByHolder(ctx, groupID, holderUUID)
	if err != nil {
		return 0, fmt.Errorf("failed to get account: %w", err)
	}
	if account == nil {
		return 0, entities.ErrAccountNotFound
	}
	return account.Balance, nil
}

// Deposit credits an amount, creating the account if needed
func (l *Ledger) Deposit(ctx context.Context, groupID int64, holderUUID string, amount int64) (int64, error) {
	var newBalance int64
	err := l.withUnitOfWork(ctx, func(_ UnitOfWork, svc interfaces.LedgerService) error {
		var err error
		newBalance, err = svc.Deposit(ctx, groupID, holderUUID, amount)
		return err
	})
	return newBalance, err
}

// Withdraw debits an amount from an existing account
func (l *Ledger) Withdraw(ctx context.Context, groupID int64, holderUUID string, amount int64) (int64, error) {
	var newBalance int64
	err := l.withUnitOfWork(ctx, func(_ UnitOfWork, svc interfaces.LedgerService) error {
		var err error
		newBalance, err = svc.Withdraw(ctx, groupID, holderUUID, amount)
		return err
	})
	return newBalance, err
}

// Pay moves an amount between two holders and returns the sender's new
// balance.
func (l *Ledger) Pay(ctx context.Context, groupID int64, fromUUID, toUUID string, amount int64) (int64, error) {
	if fromUUID == toUUID {
		return 0, entities.ErrSelfPay
	}
	if amount <= 0 {
		return 0, fmt.Errorf("%w: amount must be positive", entities.ErrInvalidInput)
	}

	// Advisory pre-check to fail fast without taking locks. Stale by the
	// time locks are acquired, so the engine re-validates under lock.
	sender, err := l.accountReader.GetByHolder(ctx, groupID, fromUUID)
	if err == nil {
		if sender == nil {
			return 0, entities.ErrSenderNotFound
		}
		if !sender.HasSufficientBalance(amount) {
			return 0, entities.ErrInsufficientFunds
		}
	}

	var newBalance int64
	err = l.withUnitOfWork(ctx, func(_ UnitOfWork, svc interfaces.LedgerService) error {
		var err error
		newBalance, err = svc.Pay(ctx, groupID, fromUUID, toUUID, amount)
		return err
	})
	return newBalance, err
}

// ClaimDailyBonus credits the daily reward once per reset window. The
// balance mutation and the claim timestamp commit together or not at all.
func (l *Ledger) ClaimDailyBonus(ctx context.Context, serverID, groupID int64, holderUUID string, now time.Time) (*interfaces.ClaimResult, error) {
	var result *interfaces.ClaimResult
	err := l.withUnitOfWork(ctx, func(_ UnitOfWork, svc interfaces.LedgerService) error {
		var err error
		result, err = svc.ClaimDailyBonus(ctx, serverID, groupID, holderUUID, now)
		return err
	})
	return result, err
}

// Leaderboard returns the top balances among a server's players.
// Read-only; not serialized with concurrent mutations.
func (l *Ledger) Leaderboard(ctx context.Context, serverID int64, limit int) ([]*entities.LeaderboardEntry, error) {
	if _, err := l.serverReader.ResolveGroup(ctx, serverID); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = services.DefaultLeaderboardLimit
	}
	return l.accountReader.TopByServer(ctx, serverID, limit)
}
