package domain

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMetric(t *testing.T) {
	tests := []struct {
		in      string
		want    Metric
		wantErr bool
	}{
		{"points", MetricPoints, false},
		{" Wins ", MetricWins, false},
		{"POINTS", MetricPoints, false},
		{"xp", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		got, err := ParseMetric(tt.in)
		if tt.wantErr {
			assert.ErrorIs(t, err, ErrInvalidMetric, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}
}

func TestWindow(t *testing.T) {
	assert.True(t, AllTime().IsAllTime())
	assert.NoError(t, AllTime().Validate())
	assert.Equal(t, "all-time", AllTime().String())
	assert.Equal(t, "7d", LastDays(7).String())

	assert.NoError(t, LastDays(MinWindowDays).Validate())
	assert.NoError(t, LastDays(MaxWindowDays).Validate())
	assert.ErrorIs(t, LastDays(MaxWindowDays+1).Validate(), ErrInvalidWindow)
	assert.ErrorIs(t, LastDays(-1).Validate(), ErrInvalidWindow)
}

func TestWindow_SinceIsInclusiveUTCDay(t *testing.T) {
	now := time.Date(2026, 5, 10, 23, 30, 0, 0, time.FixedZone("UTC-3", -3*3600))

	since := LastDays(7).Since(now)

	// 23:30 at UTC-3 is already May 11 in UTC
	assert.Equal(t, time.Date(2026, 5, 4, 0, 0, 0, 0, time.UTC), since)
}

func TestCounterAndDelta(t *testing.T) {
	c := Counter{Points: 10, Wins: 2}
	d := Delta{Points: 4, Wins: 1}

	assert.Equal(t, int64(10), c.Get(MetricPoints))
	assert.Equal(t, int64(2), c.Get(MetricWins))
	assert.Equal(t, Counter{Points: 6, Wins: 1}, c.Sub(d))
	assert.Equal(t, int64(1), d.Get(MetricWins))
	assert.True(t, Delta{}.IsZero())
	assert.False(t, d.IsZero())
}

func TestHundredthsFromAmount(t *testing.T) {
	tests := []struct {
		amount float64
		want   int
		ok     bool
	}{
		{1, 100, true},
		{2.256, 226, true},
		{5, 500, true},
		{0.99, 0, false},
		{5.01, 0, false},
	}

	for _, tt := range tests {
		got, ok := HundredthsFromAmount(tt.amount)
		assert.Equal(t, tt.ok, ok, "%v", tt.amount)
		assert.Equal(t, tt.want, got, "%v", tt.amount)
	}
}

func TestMultiplier_Expired(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Second)
	future := now.Add(time.Hour)

	assert.False(t, Multiplier{Hundredths: 200}.Expired(now), "no expiry never expires")
	assert.True(t, Multiplier{Hundredths: 200, ExpiresAt: &past}.Expired(now))
	assert.True(t, Multiplier{Hundredths: 200, ExpiresAt: &now}.Expired(now), "expiry is inclusive")
	assert.False(t, Multiplier{Hundredths: 200, ExpiresAt: &future}.Expired(now))
	assert.InDelta(t, 2.0, Multiplier{Hundredths: 200}.Amount(), 1e-9)
}

func TestStorageError(t *testing.T) {
	cause := errors.New("connection reset")

	err := fmt.Errorf("ledger: %w", NewStorageError("upsert", cause))

	assert.True(t, IsStorageError(err))
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "upsert")
	assert.Nil(t, NewStorageError("noop", nil))
	assert.False(t, IsStorageError(cause))
}
