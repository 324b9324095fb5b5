package entities

import "time"

// ServerGroup is a pooled economy shared by one or more servers.
type ServerGroup struct {
	ID        int64
	Name      *string
	CreatedAt time.Time
}

// Server is a registered game server. Servers authenticate with an API
// key and belong to exactly one group once assigned.
type Server struct {
	ID         int64
	Name       *string
	APIKeyHash string
	GroupID    *int64
	CreatedAt  time.Time
}

// Assigned reports whether the server has been placed in a group.
func (s *Server) Assigned() bool {
	return s.GroupID != nil
}
