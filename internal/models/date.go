package models

import "time"

// DateOnly truncates t to midnight UTC. Prices, summaries, and rollups are
// keyed by calendar date; every date column must pass through here before it
// is compared or persisted.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Today returns the current calendar date at midnight UTC.
func Today() time.Time {
	return DateOnly(time.Now().UTC())
}
