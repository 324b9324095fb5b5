package entities

import "time"

// Player maps a server-scoped Minecraft UUID to its account space and,
// optionally, a linked Discord identity.
type Player struct {
	ID            int64
	ServerID      int64
	MinecraftUUID string
	Username      string
	DiscordID     *string
	CreatedAt     time.Time
}

// IsLinked reports whether the player has a linked Discord identity.
func (p *Player) IsLinked() bool {
	return p.DiscordID != nil && *p.DiscordID != ""
}
