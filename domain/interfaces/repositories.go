package interfaces

import (
	"context"
	"time"

	"coinbank/domain/entities"
)

// AccountRepository defines the interface for account data access.
// Mutating methods are expected to run inside the enclosing unit of work's
// transaction; the ForUpdate variants hold row locks until it ends.
type AccountRepository interface {
	// GetByHolder retrieves an account by holder UUID within a group.
	// Returns nil if the account does not exist.
	GetByHolder(ctx context.Context, groupID int64, holderUUID string) (*entities.Account, error)

	// GetByHolderForUpdate retrieves an account with a row lock held for
	// the remainder of the transaction. Returns nil if absent.
	GetByHolderForUpdate(ctx context.Context, groupID int64, holderUUID string) (*entities.Account, error)

	// Ensure inserts the account with balance 0 if it does not exist.
	// Existing balances are never clobbered.
	Ensure(ctx context.Context, groupID int64, holderUUID string) error

	// GetManyForUpdate locks multiple accounts in ascending id order,
	// regardless of the order holders are passed in.
	GetManyForUpdate(ctx context.Context, groupID int64, holderUUIDs []string) ([]*entities.Account, error)

	// ApplyDelta adds a signed delta to the account balance and returns
	// the new balance. Callers validate non-negativity beforehand.
	ApplyDelta(ctx context.Context, accountID int64, delta int64) (int64, error)

	// TopByServer returns the highest balances among a server's players.
	TopByServer(ctx context.Context, serverID int64, limit int) ([]*entities.LeaderboardEntry, error)
}

// ServerRepository defines the interface for server and group registry access
type ServerRepository interface {
	// GetByID retrieves a server. Returns nil if absent.
	GetByID(ctx context.Context, serverID int64) (*entities.Server, error)

	// GetByIDForUpdate retrieves a server with a row lock held for the
	// remainder of the transaction. Returns nil if absent.
	GetByIDForUpdate(ctx context.Context, serverID int64) (*entities.Server, error)

	// ResolveGroup returns the group a server belongs to.
	// Fails with entities.ErrServerNotFound if the server is absent or
	// has no group assigned yet.
	ResolveGroup(ctx context.Context, serverID int64) (int64, error)

	// CreateGroup creates a new server group and returns its id.
	CreateGroup(ctx context.Context, name *string) (int64, error)

	// Create registers a server in a group with a hashed API key.
	Create(ctx context.Context, name *string, apiKeyHash string, groupID int64) (int64, error)

	// AssignGroup places an unassigned server into a group.
	AssignGroup(ctx context.Context, serverID, groupID int64) error
}

// PlayerRepository defines the interface for player registry access
type PlayerRepository interface {
	// GetByUUID retrieves a player by Minecraft UUID on a server.
	// Returns nil if absent.
	GetByUUID(ctx context.Context, serverID int64, minecraftUUID string) (*entities.Player, error)

	// Upsert creates the player or refreshes its username.
	Upsert(ctx context.Context, serverID int64, minecraftUUID, username string) (*entities.Player, error)
}

// DailyClaimRepository defines the interface for daily reward claim state
type DailyClaimRepository interface {
	// GetForUpdate retrieves the claim record for an account with a row
	// lock. Returns nil if the account has never claimed.
	GetForUpdate(ctx context.Context, accountID int64) (*entities.DailyClaim, error)

	// Upsert records a claim, inserting or updating the single
	// per-account row.
	Upsert(ctx context.Context, accountID int64, claimedAt time.Time) error
}
