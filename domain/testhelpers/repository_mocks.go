package testhelpers

import (
	"context"
	"time"

	"coinbank/domain/entities"

	"github.com/stretchr/testify/mock"
)

// MockAccountRepository is a mock implementation of AccountRepository
type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) GetByHolder(ctx context.Context, groupID int64, holderUUID string) (*entities.Account, error) {
	args := m.Called(ctx, groupID, holderUUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Account), args.Error(1)
}

func (m *MockAccountRepository) GetByHolderForUpdate(ctx context.Context, groupID int64, holderUUID string) (*entities.Account, error) {
	args := m.Called(ctx, groupID, holderUUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Account), args.Error(1)
}

func (m *MockAccountRepository) Ensure(ctx context.Context, groupID int64, holderUUID string) error {
	args := m.Called(ctx, groupID, holderUUID)
	return args.Error(0)
}

func (m *MockAccountRepository) GetManyForUpdate(ctx context.Context, groupID int64, holderUUIDs []string) ([]*entities.Account, error) {
	args := m.Called(ctx, groupID, holderUUIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Account), args.Error(1)
}

func (m *MockAccountRepository) ApplyDelta(ctx context.Context, accountID int64, delta int64) (int64, error) {
	args := m.Called(ctx, accountID, delta)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockAccountRepository) TopByServer(ctx context.Context, serverID int64, limit int) ([]*entities.LeaderboardEntry, error) {
	args := m.Called(ctx, serverID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.LeaderboardEntry), args.Error(1)
}

// MockServerRepository is a mock implementation of ServerRepository
type MockServerRepository struct {
	mock.Mock
}

func (m *MockServerRepository) GetByID(ctx context.Context, serverID int64) (*entities.Server, error) {
	args := m.Called(ctx, serverID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Server), args.Error(1)
}

func (m *MockServerRepository) GetByIDForUpdate(ctx context.Context, serverID int64) (*entities.Server, error) {
	args := m.Called(ctx, serverID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Server), args.Error(1)
}

func (m *MockServerRepository) ResolveGroup(ctx context.Context, serverID int64) (int64, error) {
	args := m.Called(ctx, serverID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockServerRepository) CreateGroup(ctx context.Context, name *string) (int64, error) {
	args := m.Called(ctx, name)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockServerRepository) Create(ctx context.Context, name *string, apiKeyHash string, groupID int64) (int64, error) {
	args := m.Called(ctx, name, apiKeyHash, groupID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockServerRepository) AssignGroup(ctx context.Context, serverID, groupID int64) error {
	args := m.Called(ctx, serverID, groupID)
	return args.Error(0)
}

// MockPlayerRepository is a mock implementation of PlayerRepository
type MockPlayerRepository struct {
	mock.Mock
}

func (m *MockPlayerRepository) GetByUUID(ctx context.Context, serverID int64, minecraftUUID string) (*entities.Player, error) {
	args := m.Called(ctx, serverID, minecraftUUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Player), args.Error(1)
}

func (m *MockPlayerRepository) Upsert(ctx context.Context, serverID int64, minecraftUUID, username string) (*entities.Player, error) {
	args := m.Called(ctx, serverID, minecraftUUID, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Player), args.Error(1)
}

// MockDailyClaimRepository is a mock implementation of DailyClaimRepository
type MockDailyClaimRepository struct {
	mock.Mock
}

func (m *MockDailyClaimRepository) GetForUpdate(ctx context.Context, accountID int64) (*entities.DailyClaim, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.DailyClaim), args.Error(1)
}

func (m *MockDailyClaimRepository) Upsert(ctx context.Context, accountID int64, claimedAt time.Time) error {
	args := m.Called(ctx, accountID, claimedAt)
	return args.Error(0)
}
