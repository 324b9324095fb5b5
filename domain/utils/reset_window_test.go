package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLastResetAt(t *testing.T) {
	berlin, err := time.LoadLocation("Europe/Berlin")
	require.NoError(t, err)

	tests := []struct {
		name     string
		now      time.Time
		expected time.Time
	}{
		{
			name:     "after today's boundary",
			now:      time.Date(2024, 3, 4, 12, 0, 0, 0, berlin),
			expected: time.Date(2024, 3, 4, 6, 30, 0, 0, berlin),
		},
		{
			name:     "before today's boundary",
			now:      time.Date(2024, 3, 4, 5, 0, 0, 0, berlin),
			expected: time.Date(2024, 3, 3, 6, 30, 0, 0, berlin),
		},
		{
			name:     "exactly at the boundary",
			now:      time.Date(2024, 3, 4, 6, 30, 0, 0, berlin),
			expected: time.Date(2024, 3, 4, 6, 30, 0, 0, berlin),
		},
		{
			name:     "one second before the boundary",
			now:      time.Date(2024, 3, 4, 6, 29, 59, 0, berlin),
			expected: time.Date(2024, 3, 3, 6, 30, 0, 0, berlin),
		},
		{
			name:     "utc instant converted into the zone",
			now:      time.Date(2024, 3, 4, 4, 0, 0, 0, time.UTC), // 05:00 Berlin
			expected: time.Date(2024, 3, 3, 6, 30, 0, 0, berlin),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := LastResetAt(tt.now, 6, 30, berlin)
			assert.True(t, got.Equal(tt.expected), "got %s, want %s", got, tt.expected)
		})
	}
}

func TestNextResetAt(t *testing.T) {
	berlin, err := time.LoadLocation("Europe/Berlin")
	require.NoError(t, err)

	now := time.Date(2024, 3, 4, 12, 0, 0, 0, berlin)
	next := NextResetAt(now, 6, 30, berlin)
	assert.True(t, next.Equal(time.Date(2024, 3, 5, 6, 30, 0, 0, berlin)))
	assert.True(t, next.After(now))
}

func TestLastResetAtSpansDSTTransition(t *testing.T) {
	berlin, err := time.LoadLocation("Europe/Berlin")
	require.NoError(t, err)

	// Clocks move forward on 2024-03-31 in Europe/Berlin.
	now := time.Date(2024, 3, 31, 8, 0, 0, 0, berlin)
	got := LastResetAt(now, 6, 30, berlin)
	assert.Equal(t, 6, got.Hour())
	assert.Equal(t, 30, got.Minute())
	assert.True(t, got.Before(now))
}
