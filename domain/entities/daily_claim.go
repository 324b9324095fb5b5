package entities

import "time"

// DailyClaim records the last daily reward claim for an account.
// At most one row exists per account; claims upsert the timestamp.
type DailyClaim struct {
	AccountID   int64
	LastClaimAt time.Time
}

// ClaimedSince reports whether the claim falls at or after windowStart,
// meaning the current reward window has already been consumed.
func (c *DailyClaim) ClaimedSince(windowStart time.Time) bool {
	return !c.LastClaimAt.Before(windowStart)
}
