package utils

import "time"

// LastResetAt returns the most recent daily reset boundary at or before now.
// The boundary is the given time of day in loc; when now falls before today's
// boundary, yesterday's boundary is returned. The result is the start of the
// current reward window.
func LastResetAt(now time.Time, hour, minute int, loc *time.Location) time.Time {
	local := now.In(loc)
	reset := time.Date(local.Year(), local.Month(), local.Day(), hour, minute, 0, 0, loc)
	if local.Before(reset) {
		reset = reset.AddDate(0, 0, -1)
	}
	return reset
}

// NextResetAt returns the first reset boundary strictly after now.
func NextResetAt(now time.Time, hour, minute int, loc *time.Location) time.Time {
	return LastResetAt(now, hour, minute, loc).AddDate(0, 0, 1)
}
