package domain

import (
	"fmt"
	"time"
)

// Window is the aggregation period of a query: all-time, or the last N days.
// The zero value is all-time.
type Window struct {
	Days int `json:"days"`
}

// AllTime returns the all-time window
func AllTime() Window {
	return Window{}
}

// LastDays returns a rolling window of n days
func LastDays(n int) Window {
	return Window{Days: n}
}

// IsAllTime reports whether the window reads cumulative counters
func (w Window) IsAllTime() bool {
	return w.Days == 0
}

// Validate checks the rolling window bounds
func (w Window) Validate() error {
	if w.IsAllTime() {
		return nil
	}
	if w.Days < MinWindowDays || w.Days > MaxWindowDays {
		return fmt.Errorf("%w: %d days (must be %d-%d)", ErrInvalidWindow, w.Days, MinWindowDays, MaxWindowDays)
	}
	return nil
}

// Since returns the first day included in the window relative to now.
// The window covers day >= today - N days, both ends inclusive.
func (w Window) Since(now time.Time) time.Time {
	return DayKey(now).AddDate(0, 0, -w.Days)
}

func (w Window) String() string {
	if w.IsAllTime() {
		return "all-time"
	}
	return fmt.Sprintf("%dd", w.Days)
}
