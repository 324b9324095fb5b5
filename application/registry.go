package application

import (
	"context"
	"fmt"

	"coinbank/domain/entities"
	"coinbank/domain/interfaces"
)

// Registry handles tenant onboarding: server registration and per-player
// session establishment at login.
type Registry struct {
	uowFactory   UnitOfWorkFactory
	serverReader interfaces.ServerRepository
}

// NewRegistry creates the registry operation layer
func NewRegistry(uowFactory UnitOfWorkFactory, serverReader interfaces.ServerRepository) *Registry {
	return &Registry{
		uowFactory:   uowFactory,
		serverReader: serverReader,
	}
}

// RegisteredServer is the result of a successful registration.
type RegisteredServer struct {
	ServerID int64
	GroupID  int64
}

// Session describes the identifiers a logged-in player operates under.
type Session struct {
	GroupID   int64
	PlayerID  int64
	AccountID int64
}

// GetServer fetches a server for credential verification. Returns nil if
// the server does not exist.
func (r *Registry) GetServer(ctx context.Context, serverID int64) (*entities.Server, error) {
	return r.serverReader.GetByID(ctx, serverID)
}

// RegisterServer creates a fresh group and a server inside it. A duplicate
// server name fails with entities.ErrNameTaken and nothing is persisted.
func (r *Registry) RegisterServer(ctx context.Context, name *string, apiKeyHash string) (*RegisteredServer, error) {
	uow := r.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	groupID, err := uow.ServerRepository().CreateGroup(ctx, name)
	if err != nil {
		return nil, err
	}

	serverID, err := uow.ServerRepository().Create(ctx, name, apiKeyHash, groupID)
	if err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return &RegisteredServer{ServerID: serverID, GroupID: groupID}, nil
}

// EstablishSession upserts the player and its account at login. Servers
// registered before group assignment existed get a group lazily here.
func (r *Registry) EstablishSession(ctx context.Context, serverID int64, minecraftUUID, username string) (*Session, error) {
	uow := r.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	// The row lock serializes concurrent first logins, so exactly one of
	// them creates and assigns the lazy group and the rest observe it.
	server, err := uow.ServerRepository().GetByIDForUpdate(ctx, serverID)
	if err != nil {
		return nil, err
	}
	if server == nil {
		return nil, entities.ErrServerNotFound
	}

	var groupID int64
	if server.Assigned() {
		groupID = *server.GroupID
	} else {
		groupID, err = uow.ServerRepository().CreateGroup(ctx, nil)
		if err != nil {
			return nil, err
		}
		if err := uow.ServerRepository().AssignGroup(ctx, serverID, groupID); err != nil {
			return nil, err
		}
	}

	player, err := uow.PlayerRepository().Upsert(ctx, serverID, minecraftUUID, username)
	if err != nil {
		return nil, err
	}

	if err := uow.AccountRepository().Ensure(ctx, groupID, minecraftUUID); err != nil {
		return nil, err
	}
	account, err := uow.AccountRepository().GetByHolder(ctx, groupID, minecraftUUID)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, entities.ErrAccountNotFound
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return &Session{GroupID: groupID, PlayerID: player.ID, AccountID: account.ID}, nil
}
