package domain

import (
	"fmt"
	"strings"
	"time"
)

// Metric names one of the two tracked quantities
type Metric string

const (
	MetricPoints Metric = "points"
	MetricWins   Metric = "wins"
)

// Metrics lists every metric in ladder order
var Metrics = []Metric{MetricPoints, MetricWins}

// ParseMetric normalizes and validates a metric name
func ParseMetric(s string) (Metric, error) {
	switch Metric(strings.ToLower(strings.TrimSpace(s))) {
	case MetricPoints:
		return MetricPoints, nil
	case MetricWins:
		return MetricWins, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidMetric, s)
	}
}

// Valid reports whether m is a known metric
func (m Metric) Valid() bool {
	return m == MetricPoints || m == MetricWins
}

// Counter holds a points/wins pair. Stored counters are never negative.
type Counter struct {
	Points int64 `json:"points"`
	Wins   int64 `json:"wins"`
}

// Get returns the value of the given metric
func (c Counter) Get(m Metric) int64 {
	if m == MetricWins {
		return c.Wins
	}
	return c.Points
}

// Sub returns c - d field by field
func (c Counter) Sub(d Delta) Counter {
	return Counter{Points: c.Points - d.Points, Wins: c.Wins - d.Wins}
}

// Delta is a signed change applied to a counter
type Delta struct {
	Points int64 `json:"points"`
	Wins   int64 `json:"wins"`
}

// IsZero reports whether the delta changes nothing
func (d Delta) IsZero() bool {
	return d.Points == 0 && d.Wins == 0
}

// Get returns the delta of the given metric
func (d Delta) Get(m Metric) int64 {
	if m == MetricWins {
		return d.Wins
	}
	return d.Points
}

// DailyCounter is the counter of a single UTC calendar day
type DailyCounter struct {
	Day time.Time `json:"day"`
	Counter
}

// DayKey returns the UTC calendar date of t at midnight
func DayKey(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// LeaderboardEntry is one row of a leaderboard page
type LeaderboardEntry struct {
	Rank     int    `json:"rank"`
	MemberID string `json:"member_id"`
	Value    int64  `json:"value"`
}
