package leaderboard

import (
	"context"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osse101/WinLedger_Go/internal/database/memory"
	"github.com/osse101/WinLedger_Go/internal/domain"
	"github.com/osse101/WinLedger_Go/internal/repository"
)

// slowRankings blocks every query until the context gives up
type slowRankings struct {
	repository.Rankings
}

func (slowRankings) CountGreater(ctx context.Context, _, _ string, _ domain.Metric, _ time.Time) (int, error) {
	<-ctx.Done()
	return 0, domain.NewStorageError("count_greater", ctx.Err())
}

func (slowRankings) CountEntries(ctx context.Context, _ string, _ time.Time) (int, error) {
	<-ctx.Done()
	return 0, domain.NewStorageError("count_entries", ctx.Err())
}

func seed(t *testing.T, store *memory.Store, day time.Time, points map[string]int64) {
	t.Helper()
	for member, p := range points {
		_, err := store.ApplyDelta(context.Background(), "g1", member, day, domain.Delta{Points: p, Wins: 1})
		require.NoError(t, err)
	}
}

func TestTotalPagesAndClampPage(t *testing.T) {
	assert.Equal(t, 0, TotalPages(0, 10))
	assert.Equal(t, 1, TotalPages(10, 10))
	assert.Equal(t, 2, TotalPages(11, 10))
	assert.Equal(t, 3, TotalPages(21, 0), "default page size")

	assert.Equal(t, 1, ClampPage(0, 3))
	assert.Equal(t, 3, ClampPage(9, 3))
	assert.Equal(t, 2, ClampPage(2, 3))
	assert.Equal(t, 1, ClampPage(5, 0))
}

func TestGetRank(t *testing.T) {
	store := memory.NewStore()
	seed(t, store, domain.DayKey(time.Now()), map[string]int64{"a": 50, "b": 30, "c": 30, "d": 10})
	svc := NewService(store, time.Second)
	ctx := context.Background()

	tests := []struct {
		member string
		want   int
	}{
		{"a", 1},
		{"b", 2},
		{"c", 2},
		{"d", 4},
		{"nobody", 5},
	}
	for _, tt := range tests {
		got, err := svc.GetRank(ctx, "g1", tt.member, domain.MetricPoints, domain.AllTime())
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, tt.member)
	}

	_, err := svc.GetRank(ctx, "g1", "a", domain.Metric("xp"), domain.AllTime())
	assert.ErrorIs(t, err, domain.ErrInvalidMetric)
	_, err = svc.GetRank(ctx, "g1", "a", domain.MetricPoints, domain.LastDays(45))
	assert.ErrorIs(t, err, domain.ErrInvalidWindow)
}

func TestGetRank_Monotonic(t *testing.T) {
	store := memory.NewStore()
	values := map[string]int64{"a": 9, "b": 1, "c": 5, "d": 5, "e": 12, "f": 3}
	seed(t, store, domain.DayKey(time.Now()), values)
	svc := NewService(store, time.Second)
	ctx := context.Background()

	ranks := make(map[string]int, len(values))
	for m := range values {
		r, err := svc.GetRank(ctx, "g1", m, domain.MetricPoints, domain.AllTime())
		require.NoError(t, err)
		ranks[m] = r
	}
	for m1, v1 := range values {
		for m2, v2 := range values {
			if v1 > v2 {
				assert.Less(t, ranks[m1], ranks[m2], "%s(%d) vs %s(%d)", m1, v1, m2, v2)
			}
			if v1 == v2 {
				assert.Equal(t, ranks[m1], ranks[m2])
			}
		}
	}
}

func TestGetLeaderboardPage_Completeness(t *testing.T) {
	store := memory.NewStore()
	values := make(map[string]int64)
	for i := 0; i < 23; i++ {
		values[fmt.Sprintf("m%02d", i)] = int64(1 + i%7)
	}
	seed(t, store, domain.DayKey(time.Now()), values)
	svc := NewService(store, time.Second)
	ctx := context.Background()

	count, err := svc.GetEntryCount(ctx, "g1", domain.AllTime())
	require.NoError(t, err)
	require.Equal(t, 23, count)
	pages := TotalPages(count, 10)
	require.Equal(t, 3, pages)

	seen := make(map[string]bool)
	var all []domain.LeaderboardEntry
	for p := 1; p <= pages; p++ {
		entries, err := svc.GetLeaderboardPage(ctx, "g1", domain.MetricPoints, domain.AllTime(), p, 10)
		require.NoError(t, err)
		for _, e := range entries {
			assert.False(t, seen[e.MemberID], "duplicate %s", e.MemberID)
			seen[e.MemberID] = true
		}
		all = append(all, entries...)
	}
	assert.Len(t, all, 23)

	for i := 1; i < len(all); i++ {
		prev, cur := all[i-1], all[i]
		assert.GreaterOrEqual(t, prev.Value, cur.Value)
		if prev.Value == cur.Value {
			assert.Less(t, prev.MemberID, cur.MemberID, "ties ordered by member id")
			assert.Equal(t, prev.Rank, cur.Rank, "ties share a rank")
		}
	}
}

func TestGetLeaderboardPage_OutOfRange(t *testing.T) {
	store := memory.NewStore()
	seed(t, store, domain.DayKey(time.Now()), map[string]int64{"a": 1, "b": 2})
	svc := NewService(store, time.Second)
	ctx := context.Background()

	for _, page := range []int{0, -3, 2, 100, math.MaxInt, math.MaxInt/10 + 1} {
		entries, err := svc.GetLeaderboardPage(ctx, "g1", domain.MetricPoints, domain.AllTime(), page, 10)
		require.NoError(t, err)
		assert.NotNil(t, entries)
		assert.Empty(t, entries, "page %d", page)
	}

	entries, err := svc.GetLeaderboardPage(ctx, "g1", domain.MetricPoints, domain.AllTime(), 1, 0)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "b", entries[0].MemberID)
	assert.Equal(t, 1, entries[0].Rank)
}

func TestWindowedQueries(t *testing.T) {
	store := memory.NewStore()
	today := domain.DayKey(time.Now())
	seed(t, store, today.AddDate(0, 0, -20), map[string]int64{"old": 100})
	seed(t, store, today.AddDate(0, 0, -1), map[string]int64{"recent": 5, "old": 1})
	seed(t, store, today, map[string]int64{"recent": 5})
	svc := NewService(store, time.Second)
	ctx := context.Background()

	week, err := svc.GetLeaderboardPage(ctx, "g1", domain.MetricPoints, domain.LastDays(7), 1, 10)
	require.NoError(t, err)
	require.Len(t, week, 2)
	assert.Equal(t, domain.LeaderboardEntry{Rank: 1, MemberID: "recent", Value: 10}, week[0])
	assert.Equal(t, domain.LeaderboardEntry{Rank: 2, MemberID: "old", Value: 1}, week[1])

	rank, err := svc.GetRank(ctx, "g1", "old", domain.MetricPoints, domain.AllTime())
	require.NoError(t, err)
	assert.Equal(t, 1, rank)

	count, err := svc.GetEntryCount(ctx, "g1", domain.LastDays(7))
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	count, err = svc.GetEntryCount(ctx, "g1", domain.LastDays(1))
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestGetPage(t *testing.T) {
	store := memory.NewStore()
	values := make(map[string]int64)
	for i := 0; i < 12; i++ {
		values[fmt.Sprintf("m%02d", i)] = int64(i + 1)
	}
	seed(t, store, domain.DayKey(time.Now()), values)
	svc := NewService(store, time.Second)

	page, err := svc.GetPage(context.Background(), "g1", domain.MetricPoints, domain.AllTime(), 99, 5)

	require.NoError(t, err)
	assert.Equal(t, 3, page.Page, "clamped to the last page")
	assert.Equal(t, 3, page.TotalPages)
	assert.Equal(t, 12, page.EntryCount)
	assert.Len(t, page.Entries, 2)
}

func TestQueryTimeout(t *testing.T) {
	svc := NewService(slowRankings{}, 20*time.Millisecond)
	ctx := context.Background()

	_, err := svc.GetRank(ctx, "g1", "m1", domain.MetricPoints, domain.AllTime())
	assert.ErrorIs(t, err, domain.ErrQueryTimeout)

	_, err = svc.GetEntryCount(ctx, "g1", domain.AllTime())
	assert.ErrorIs(t, err, domain.ErrQueryTimeout)
}
