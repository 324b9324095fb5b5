package repository

import (
	"context"
	"fmt"

	"coinbank/database"
	"coinbank/domain/entities"
	"coinbank/domain/interfaces"

	"github.com/jackc/pgx/v5"
)

// PlayerRepository implements the PlayerRepository interface
type PlayerRepository struct {
	q Queryable
}

// NewPlayerRepository creates a pool-backed player repository
func NewPlayerRepository(db *database.DB) *PlayerRepository {
	return &PlayerRepository{q: db.Pool}
}

func newPlayerRepository(tx Queryable) interfaces.PlayerRepository {
	return &PlayerRepository{q: tx}
}

// GetByUUID retrieves a player by Minecraft UUID on a server. Returns nil
// if absent.
func (r *PlayerRepository) GetByUUID(ctx context.Context, serverID int64, minecraftUUID string) (*entities.Player, error) {
	query := `
		SELECT id, server_id, minecraft_uuid, username, discord_id, created_at
		FROM players
		WHERE server_id = $1 AND minecraft_uuid = $2
	`

	var player entities.Player
	err := r.q.QueryRow(ctx, query, serverID, minecraftUUID).Scan(
		&player.ID,
		&player.ServerID,
		&player.MinecraftUUID,
		&player.Username,
		&player.DiscordID,
		&player.CreatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get player %s on server %d: %w", minecraftUUID, serverID, err)
	}
	return &player, nil
}

// Upsert creates the player or refreshes its username
func (r *PlayerRepository) Upsert(ctx context.Context, serverID int64, minecraftUUID, username string) (*entities.Player, error) {
	query := `
		INSERT INTO players (server_id, minecraft_uuid, username)
		VALUES ($1, $2, $3)
		ON CONFLICT (server_id, minecraft_uuid)
		DO UPDATE SET username = EXCLUDED.username
		RETURNING id, server_id, minecraft_uuid, username, discord_id, created_at
	`

	var player entities.Player
	err := r.q.QueryRow(ctx, query, serverID, minecraftUUID, username).Scan(
		&player.ID,
		&player.ServerID,
		&player.MinecraftUUID,
		&player.Username,
		&player.DiscordID,
		&player.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert player %s on server %d: %w", minecraftUUID, serverID, err)
	}
	return &player, nil
}
