package repository

import (
	"context"
	"time"

	"github.com/osse101/WinLedger_Go/internal/domain"
)

// Counters defines the interface for the counter store. Every mutation must be
// atomic per (guild, member) key: clamping happens against the value stored at
// commit time, never against an earlier read.
type Counters interface {
	// GetCumulative returns {0,0} for members without a row
	GetCumulative(ctx context.Context, guildID, memberID string) (domain.Counter, error)

	// UpsertCumulative inserts the row if absent and clamp-adds the delta,
	// returning the new totals
	UpsertCumulative(ctx context.Context, guildID, memberID string, delta domain.Delta) (domain.Counter, error)

	// UpsertDaily is the daily-row variant of UpsertCumulative
	UpsertDaily(ctx context.Context, guildID, memberID string, day time.Time, delta domain.Delta) (domain.Counter, error)

	// ApplyDelta updates the cumulative row and then the daily row of day as one
	// unit and returns the new cumulative totals
	ApplyDelta(ctx context.Context, guildID, memberID string, day time.Time, delta domain.Delta) (domain.Counter, error)

	GetDailyAggregate(ctx context.Context, guildID, memberID string, since time.Time) (domain.Counter, error)
	GetDailyHistory(ctx context.Context, guildID, memberID string, since time.Time) ([]domain.DailyCounter, error)
	GetGuildTotals(ctx context.Context, guildID string) (domain.Counter, error)

	DeleteMember(ctx context.Context, guildID, memberID string) error
	DeleteGuild(ctx context.Context, guildID string) error
}

// Rankings defines the read side used by leaderboards. A zero since reads the
// cumulative counters, otherwise daily rows with day >= since are summed.
type Rankings interface {
	CountGreater(ctx context.Context, guildID, memberID string, metric domain.Metric, since time.Time) (int, error)
	GetLeaderboard(ctx context.Context, guildID string, metric domain.Metric, since time.Time, limit, offset int) ([]domain.LeaderboardEntry, error)
	CountEntries(ctx context.Context, guildID string, since time.Time) (int, error)
}
