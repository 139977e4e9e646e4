package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func nyTime(t *testing.T, weekday time.Weekday, hour, minute int) time.Time {
	t.Helper()
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	// 2026-03-02 is a Monday
	base := time.Date(2026, 3, 2, hour, minute, 0, 0, loc)
	return base.AddDate(0, 0, int(weekday-time.Monday))
}

func TestSessionWindow_Open(t *testing.T) {
	w := NewYorkSession()

	tests := []struct {
		name string
		at   time.Time
		want bool
	}{
		{"monday mid-session", nyTime(t, time.Monday, 12, 0), true},
		{"monday at open", nyTime(t, time.Monday, 9, 30), true},
		{"monday at close", nyTime(t, time.Monday, 16, 0), true},
		{"monday before open", nyTime(t, time.Monday, 9, 29), false},
		{"monday after close", nyTime(t, time.Monday, 16, 1), false},
		{"friday mid-session", nyTime(t, time.Friday, 14, 45), true},
		{"saturday", nyTime(t, time.Saturday, 12, 0), false},
		{"sunday", nyTime(t, time.Sunday, 12, 0), false},
		{"monday midnight", nyTime(t, time.Monday, 0, 0), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, w.Open(tt.at))
		})
	}
}

func TestSessionWindow_TimezoneConversion(t *testing.T) {
	w := NewYorkSession()

	// 18:00 UTC on a Monday in March is 13:00 in New York (EST, UTC-5):
	// inside the session even though the UTC hour is past close.
	utc := time.Date(2026, 3, 2, 18, 0, 0, 0, time.UTC)
	assert.True(t, w.Open(utc))

	// 02:00 UTC Tuesday is Monday 21:00 in New York: closed.
	utc = time.Date(2026, 3, 3, 2, 0, 0, 0, time.UTC)
	assert.False(t, w.Open(utc))
}
