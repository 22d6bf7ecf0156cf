// Package memory implements the repository interfaces in process memory.
// It backs tests and single-process deployments without PostgreSQL.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/osse101/WinLedger_Go/internal/concurrency"
	"github.com/osse101/WinLedger_Go/internal/domain"
	"github.com/osse101/WinLedger_Go/internal/repository"
)

type memberKey struct {
	guild  string
	member string
}

type dailyKey struct {
	guild  string
	member string
	day    string
}

// Store is an in-memory counter store. Mutations on the same (guild, member)
// serialize on a per-key mutex; the map lock guards each read and each write.
type Store struct {
	locks *concurrency.LockManager

	mu         sync.RWMutex
	cumulative map[memberKey]domain.Counter
	daily      map[dailyKey]domain.Counter
	guilds     map[string]domain.GuildConfig
	audit      []domain.AuditEntry
	nextAudit  int64

	now func() time.Time
}

var (
	_ repository.Counters     = (*Store)(nil)
	_ repository.Rankings     = (*Store)(nil)
	_ repository.GuildConfigs = (*Store)(nil)
	_ repository.Multipliers  = (*Store)(nil)
	_ repository.AuditLog     = (*Store)(nil)
)

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{
		locks:      concurrency.NewLockManager(),
		cumulative: make(map[memberKey]domain.Counter),
		daily:      make(map[dailyKey]domain.Counter),
		guilds:     make(map[string]domain.GuildConfig),
		now:        time.Now,
	}
}

func clampAdd(v, d int64) int64 {
	if v+d < 0 {
		return 0
	}
	return v + d
}

func applyClamped(c domain.Counter, d domain.Delta) domain.Counter {
	return domain.Counter{Points: clampAdd(c.Points, d.Points), Wins: clampAdd(c.Wins, d.Wins)}
}

func dayString(day time.Time) string {
	return domain.DayKey(day).Format(domain.DayLayout)
}

// GetCumulative returns the all-time totals of a member, {0,0} if never seen
func (s *Store) GetCumulative(ctx context.Context, guildID, memberID string) (domain.Counter, error) {
	if err := ctx.Err(); err != nil {
		return domain.Counter{}, domain.NewStorageError("get cumulative", err)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cumulative[memberKey{guildID, memberID}], nil
}

func (s *Store) upsertCumulativeLocked(guildID, memberID string, delta domain.Delta) domain.Counter {
	k := memberKey{guildID, memberID}
	c := applyClamped(s.cumulative[k], delta)
	s.cumulative[k] = c
	return c
}

func (s *Store) upsertDailyLocked(guildID, memberID string, day time.Time, delta domain.Delta) domain.Counter {
	k := dailyKey{guildID, memberID, dayString(day)}
	c := applyClamped(s.daily[k], delta)
	s.daily[k] = c
	return c
}

// UpsertCumulative clamp-adds delta to the cumulative counter
func (s *Store) UpsertCumulative(ctx context.Context, guildID, memberID string, delta domain.Delta) (domain.Counter, error) {
	if err := ctx.Err(); err != nil {
		return domain.Counter{}, domain.NewStorageError("upsert cumulative", err)
	}
	mu := s.locks.GetLock(concurrency.Key(guildID, memberID))
	mu.Lock()
	defer mu.Unlock()
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.upsertCumulativeLocked(guildID, memberID, delta), nil
}

// UpsertDaily clamp-adds delta to the counter of day
func (s *Store) UpsertDaily(ctx context.Context, guildID, memberID string, day time.Time, delta domain.Delta) (domain.Counter, error) {
	if err := ctx.Err(); err != nil {
		return domain.Counter{}, domain.NewStorageError("upsert daily", err)
	}
	mu := s.locks.GetLock(concurrency.Key(guildID, memberID))
	mu.Lock()
	defer mu.Unlock()
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.upsertDailyLocked(guildID, memberID, day, delta), nil
}

// ApplyDelta updates the cumulative and daily counters of a member while holding its key lock
func (s *Store) ApplyDelta(ctx context.Context, guildID, memberID string, day time.Time, delta domain.Delta) (domain.Counter, error) {
	if err := ctx.Err(); err != nil {
		return domain.Counter{}, domain.NewStorageError("apply delta", err)
	}
	var after domain.Counter
	err := s.locks.WithLock(concurrency.Key(guildID, memberID), func() error {
		// Both rows change under one map lock so a concurrent DeleteGuild sees both or neither.
		s.mu.Lock()
		defer s.mu.Unlock()
		after = s.upsertCumulativeLocked(guildID, memberID, delta)
		s.upsertDailyLocked(guildID, memberID, day, delta)
		return nil
	})
	return after, err
}

// GetDailyAggregate sums the daily counters of a member with day >= since
func (s *Store) GetDailyAggregate(ctx context.Context, guildID, memberID string, since time.Time) (domain.Counter, error) {
	if err := ctx.Err(); err != nil {
		return domain.Counter{}, domain.NewStorageError("daily aggregate", err)
	}
	from := dayString(since)
	s.mu.RLock()
	defer s.mu.RUnlock()

	var total domain.Counter
	for k, c := range s.daily {
		if k.guild == guildID && k.member == memberID && k.day >= from {
			total.Points += c.Points
			total.Wins += c.Wins
		}
	}
	return total, nil
}

// GetDailyHistory returns the stored daily counters with day >= since, oldest first
func (s *Store) GetDailyHistory(ctx context.Context, guildID, memberID string, since time.Time) ([]domain.DailyCounter, error) {
	if err := ctx.Err(); err != nil {
		return nil, domain.NewStorageError("daily history", err)
	}
	from := dayString(since)
	s.mu.RLock()
	var history []domain.DailyCounter
	for k, c := range s.daily {
		if k.guild != guildID || k.member != memberID || k.day < from {
			continue
		}
		day, err := time.Parse(domain.DayLayout, k.day)
		if err != nil {
			s.mu.RUnlock()
			return nil, domain.NewStorageError("daily history", err)
		}
		history = append(history, domain.DailyCounter{Day: day, Counter: c})
	}
	s.mu.RUnlock()

	sort.Slice(history, func(i, j int) bool { return history[i].Day.Before(history[j].Day) })
	return history, nil
}

// GetGuildTotals sums the cumulative counters of a guild
func (s *Store) GetGuildTotals(ctx context.Context, guildID string) (domain.Counter, error) {
	if err := ctx.Err(); err != nil {
		return domain.Counter{}, domain.NewStorageError("guild totals", err)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	var total domain.Counter
	for k, c := range s.cumulative {
		if k.guild == guildID {
			total.Points += c.Points
			total.Wins += c.Wins
		}
	}
	return total, nil
}

// DeleteMember removes every counter of a member
func (s *Store) DeleteMember(ctx context.Context, guildID, memberID string) error {
	key := concurrency.Key(guildID, memberID)
	err := s.locks.WithLock(key, func() error {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.cumulative, memberKey{guildID, memberID})
		for k := range s.daily {
			if k.guild == guildID && k.member == memberID {
				delete(s.daily, k)
			}
		}
		return nil
	})
	return err
}

// DeleteGuild removes every counter of a guild
func (s *Store) DeleteGuild(ctx context.Context, guildID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleteGuildCountersLocked(guildID)
	return nil
}

func (s *Store) deleteGuildCountersLocked(guildID string) {
	for k := range s.cumulative {
		if k.guild == guildID {
			delete(s.cumulative, k)
		}
	}
	for k := range s.daily {
		if k.guild == guildID {
			delete(s.daily, k)
		}
	}
}

// totals returns member -> value for the metric over the window starting at since
func (s *Store) totals(guildID string, metric domain.Metric, since time.Time) (map[string]int64, error) {
	if !metric.Valid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidMetric, metric)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]int64)
	if since.IsZero() {
		for k, c := range s.cumulative {
			if k.guild == guildID {
				out[k.member] = c.Get(metric)
			}
		}
		return out, nil
	}

	from := dayString(since)
	for k, c := range s.daily {
		if k.guild == guildID && k.day >= from {
			out[k.member] += c.Get(metric)
		}
	}
	return out, nil
}

// CountGreater counts members with a strictly greater value than memberID
func (s *Store) CountGreater(ctx context.Context, guildID, memberID string, metric domain.Metric, since time.Time) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, domain.NewStorageError("count greater", err)
	}
	totals, err := s.totals(guildID, metric, since)
	if err != nil {
		return 0, err
	}
	mine := totals[memberID]
	count := 0
	for _, v := range totals {
		if v > mine {
			count++
		}
	}
	return count, nil
}

// GetLeaderboard returns one page ordered by value descending then member id
func (s *Store) GetLeaderboard(ctx context.Context, guildID string, metric domain.Metric, since time.Time, limit, offset int) ([]domain.LeaderboardEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, domain.NewStorageError("leaderboard", err)
	}
	totals, err := s.totals(guildID, metric, since)
	if err != nil {
		return nil, err
	}

	all := make([]domain.LeaderboardEntry, 0, len(totals))
	for member, v := range totals {
		all = append(all, domain.LeaderboardEntry{MemberID: member, Value: v})
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].Value != all[j].Value {
			return all[i].Value > all[j].Value
		}
		return all[i].MemberID < all[j].MemberID
	})
	for i := range all {
		if i > 0 && all[i].Value == all[i-1].Value {
			all[i].Rank = all[i-1].Rank
		} else {
			all[i].Rank = i + 1
		}
	}

	if offset < 0 || offset >= len(all) || limit <= 0 {
		return []domain.LeaderboardEntry{}, nil
	}
	end := len(all)
	if limit < end-offset {
		end = offset + limit
	}
	return all[offset:end], nil
}

// CountEntries counts the members present in the window
func (s *Store) CountEntries(ctx context.Context, guildID string, since time.Time) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, domain.NewStorageError("count entries", err)
	}
	totals, err := s.totals(guildID, domain.MetricPoints, since)
	if err != nil {
		return 0, err
	}
	return len(totals), nil
}
