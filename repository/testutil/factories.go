package testutil

import (
	"context"
	"testing"

	"coinbank/database"

	"github.com/stretchr/testify/require"
)

// CreateTestGroup inserts a server group and returns its id
func CreateTestGroup(t *testing.T, db *database.DB, name string) int64 {
	t.Helper()

	var groupID int64
	err := db.QueryRow(context.Background(),
		`INSERT INTO server_groups (name) VALUES ($1) RETURNING id`, name).Scan(&groupID)
	require.NoError(t, err)
	return groupID
}

// CreateTestServer inserts a server into a group and returns its id
func CreateTestServer(t *testing.T, db *database.DB, groupID int64, name string) int64 {
	t.Helper()

	var serverID int64
	err := db.QueryRow(context.Background(),
		`INSERT INTO servers (name, api_key_hash, group_id) VALUES ($1, 'test-hash', $2) RETURNING id`,
		name, groupID).Scan(&serverID)
	require.NoError(t, err)
	return serverID
}

// CreateTestPlayer inserts a player; discordID may be empty for an
// unlinked player.
func CreateTestPlayer(t *testing.T, db *database.DB, serverID int64, uuid, username, discordID string) int64 {
	t.Helper()

	var playerID int64
	var link *string
	if discordID != "" {
		link = &discordID
	}
	err := db.QueryRow(context.Background(),
		`INSERT INTO players (server_id, minecraft_uuid, username, discord_id) VALUES ($1, $2, $3, $4) RETURNING id`,
		serverID, uuid, username, link).Scan(&playerID)
	require.NoError(t, err)
	return playerID
}

// CreateTestAccount inserts an account with a balance and returns its id
func CreateTestAccount(t *testing.T, db *database.DB, groupID int64, holderUUID string, balance int64) int64 {
	t.Helper()

	var accountID int64
	err := db.QueryRow(context.Background(),
		`INSERT INTO accounts (group_id, holder_uuid, balance) VALUES ($1, $2, $3) RETURNING id`,
		groupID, holderUUID, balance).Scan(&accountID)
	require.NoError(t, err)
	return accountID
}

// AccountBalance reads a balance directly, bypassing the repositories
func AccountBalance(t *testing.T, db *database.DB, groupID int64, holderUUID string) int64 {
	t.Helper()

	var balance int64
	err := db.QueryRow(context.Background(),
		`SELECT balance FROM accounts WHERE group_id = $1 AND holder_uuid = $2`,
		groupID, holderUUID).Scan(&balance)
	require.NoError(t, err)
	return balance
}
