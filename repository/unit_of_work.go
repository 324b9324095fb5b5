package repository

import (
	"context"
	"fmt"

	"coinbank/application"
	"coinbank/database"
	"coinbank/domain/interfaces"

	"github.com/jackc/pgx/v5"
)

// unitOfWork implements the application.UnitOfWork interface
type unitOfWork struct {
	db             *database.DB
	tx             pgx.Tx
	ctx            context.Context
	accountRepo    interfaces.AccountRepository
	serverRepo     interfaces.ServerRepository
	playerRepo     interfaces.PlayerRepository
	dailyClaimRepo interfaces.DailyClaimRepository
}

type unitOfWorkFactory struct {
	db *database.DB
}

// NewUnitOfWorkFactory creates a new UnitOfWork factory
func NewUnitOfWorkFactory(db *database.DB) application.UnitOfWorkFactory {
	return &unitOfWorkFactory{db: db}
}

// Create creates a new unit of work; its transaction starts on Begin
func (f *unitOfWorkFactory) Create() application.UnitOfWork {
	return &unitOfWork{db: f.db}
}

// Begin starts a new transaction
func (u *unitOfWork) Begin(ctx context.Context) error {
	if u.tx != nil {
		return fmt.Errorf("transaction already started")
	}

	tx, err := u.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	u.tx = tx
	u.ctx = ctx

	// Create repositories bound to the transaction
	u.accountRepo = newAccountRepository(tx)
	u.serverRepo = newServerRepository(tx)
	u.playerRepo = newPlayerRepository(tx)
	u.dailyClaimRepo = newDailyClaimRepository(tx)

	return nil
}

// Commit commits the transaction
func (u *unitOfWork) Commit() error {
	if u.tx == nil {
		return fmt.Errorf("no transaction to commit")
	}

	if err := u.tx.Commit(u.ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	u.tx = nil
	return nil
}

// Rollback rolls back the transaction. Safe to defer after Commit.
func (u *unitOfWork) Rollback() error {
	if u.tx == nil {
		return nil // Nothing to rollback
	}

	err := u.tx.Rollback(u.ctx)
	if err != nil && err != pgx.ErrTxClosed {
		return fmt.Errorf("failed to rollback transaction: %w", err)
	}

	u.tx = nil
	return nil
}

// AccountRepository returns the account repository for this unit of work
func (u *unitOfWork) AccountRepository() interfaces.AccountRepository {
	if u.accountRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.accountRepo
}

// ServerRepository returns the server repository for this unit of work
func (u *unitOfWork) ServerRepository() interfaces.ServerRepository {
	if u.serverRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.serverRepo
}

// PlayerRepository returns the player repository for this unit of work
func (u *unitOfWork) PlayerRepository() interfaces.PlayerRepository {
	if u.playerRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.playerRepo
}

// DailyClaimRepository returns the daily claim repository for this unit of work
func (u *unitOfWork) DailyClaimRepository() interfaces.DailyClaimRepository {
	if u.dailyClaimRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.dailyClaimRepo
}
