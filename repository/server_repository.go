package repository

import (
	"context"
	"errors"
	"fmt"

	"coinbank/database"
	"coinbank/domain/entities"
	"coinbank/domain/interfaces"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

// ServerRepository implements the ServerRepository interface
type ServerRepository struct {
	q Queryable
}

// NewServerRepository creates a pool-backed server repository for
// non-transactional registry lookups.
func NewServerRepository(db *database.DB) *ServerRepository {
	return &ServerRepository{q: db.Pool}
}

func newServerRepository(tx Queryable) interfaces.ServerRepository {
	return &ServerRepository{q: tx}
}

// GetByID retrieves a server. Returns nil if absent.
func (r *ServerRepository) GetByID(ctx context.Context, serverID int64) (*entities.Server, error) {
	query := `
		SELECT id, name, api_key_hash, group_id, created_at
		FROM servers
		WHERE id = $1
	`

	var server entities.Server
	err := r.q.QueryRow(ctx, query, serverID).Scan(
		&server.ID,
		&server.Name,
		&server.APIKeyHash,
		&server.GroupID,
		&server.CreatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get server %d: %w", serverID, err)
	}
	return &server, nil
}

// GetByIDForUpdate retrieves a server with a row lock held until the
// enclosing transaction commits or rolls back. Returns nil if absent.
func (r *ServerRepository) GetByIDForUpdate(ctx context.Context, serverID int64) (*entities.Server, error) {
	query := `
		SELECT id, name, api_key_hash, group_id, created_at
		FROM servers
		WHERE id = $1
		FOR UPDATE
	`

	var server entities.Server
	err := r.q.QueryRow(ctx, query, serverID).Scan(
		&server.ID,
		&server.Name,
		&server.APIKeyHash,
		&server.GroupID,
		&server.CreatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock server %d: %w", serverID, err)
	}
	return &server, nil
}

// ResolveGroup returns the group of a server, failing with
// entities.ErrServerNotFound when the server is absent or unassigned.
func (r *ServerRepository) ResolveGroup(ctx context.Context, serverID int64) (int64, error) {
	query := `SELECT group_id FROM servers WHERE id = $1`

	var groupID *int64
	err := r.q.QueryRow(ctx, query, serverID).Scan(&groupID)
	if err == pgx.ErrNoRows {
		return 0, entities.ErrServerNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("failed to resolve group for server %d: %w", serverID, err)
	}
	if groupID == nil {
		return 0, entities.ErrServerNotFound
	}
	return *groupID, nil
}

// CreateGroup creates a new server group
func (r *ServerRepository) CreateGroup(ctx context.Context, name *string) (int64, error) {
	query := `INSERT INTO server_groups (name) VALUES ($1) RETURNING id`

	var groupID int64
	if err := r.q.QueryRow(ctx, query, name).Scan(&groupID); err != nil {
		if isUniqueViolation(err) {
			return 0, entities.ErrNameTaken
		}
		return 0, fmt.Errorf("failed to create server group: %w", err)
	}
	return groupID, nil
}

// Create registers a server in a group with a hashed API key
func (r *ServerRepository) Create(ctx context.Context, name *string, apiKeyHash string, groupID int64) (int64, error) {
	query := `
		INSERT INTO servers (name, api_key_hash, group_id)
		VALUES ($1, $2, $3)
		RETURNING id
	`

	var serverID int64
	if err := r.q.QueryRow(ctx, query, name, apiKeyHash, groupID).Scan(&serverID); err != nil {
		if isUniqueViolation(err) {
			return 0, entities.ErrNameTaken
		}
		return 0, fmt.Errorf("failed to create server: %w", err)
	}
	return serverID, nil
}

// AssignGroup places an unassigned server into a group
func (r *ServerRepository) AssignGroup(ctx context.Context, serverID, groupID int64) error {
	query := `UPDATE servers SET group_id = $1 WHERE id = $2`

	tag, err := r.q.Exec(ctx, query, groupID, serverID)
	if err != nil {
		return fmt.Errorf("failed to assign server %d to group %d: %w", serverID, groupID, err)
	}
	if tag.RowsAffected() == 0 {
		return entities.ErrServerNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
