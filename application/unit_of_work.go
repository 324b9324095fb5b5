package application

import (
	"context"

	"coinbank/domain/interfaces"
)

// UnitOfWork defines the interface for transactional repository operations.
// One unit of work wraps exactly one database transaction; it is always
// committed or rolled back before the enclosing operation returns.
type UnitOfWork interface {
	// Begin starts a new transaction
	Begin(ctx context.Context) error

	// Commit commits the transaction
	Commit() error

	// Rollback rolls back the transaction
	Rollback() error

	// Repository getters
	AccountRepository() interfaces.AccountRepository
	ServerRepository() interfaces.ServerRepository
	PlayerRepository() interfaces.PlayerRepository
	DailyClaimRepository() interfaces.DailyClaimRepository
}

// UnitOfWorkFactory defines the interface for creating UnitOfWork instances
type UnitOfWorkFactory interface {
	Create() UnitOfWork
}
