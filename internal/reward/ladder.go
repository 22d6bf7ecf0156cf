package reward

import (
	"sort"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/osse101/WinLedger_Go/internal/domain"
	"github.com/osse101/WinLedger_Go/internal/metrics"
)

// Ladder is the reward configuration of one guild, split per metric and
// sorted by ascending threshold. A Ladder is immutable once built.
type Ladder struct {
	GuildID string
	Mode    domain.HierarchyMode

	tiers  map[domain.Metric][]domain.RewardDefinition
	byRole map[string]domain.RewardDefinition
}

// NewLadder builds a ladder from unordered reward definitions
func NewLadder(guildID string, mode domain.HierarchyMode, defs []domain.RewardDefinition) *Ladder {
	l := &Ladder{
		GuildID: guildID,
		Mode:    mode,
		tiers:   make(map[domain.Metric][]domain.RewardDefinition, len(domain.Metrics)),
		byRole:  make(map[string]domain.RewardDefinition, len(defs)),
	}
	for _, d := range defs {
		l.tiers[d.Metric] = append(l.tiers[d.Metric], d)
		l.byRole[d.RoleID] = d
	}
	for m := range l.tiers {
		tiers := l.tiers[m]
		sort.SliceStable(tiers, func(i, j int) bool {
			if tiers[i].Threshold != tiers[j].Threshold {
				return tiers[i].Threshold < tiers[j].Threshold
			}
			return tiers[i].RoleID < tiers[j].RoleID
		})
	}
	return l
}

// Tiers returns the definitions of metric m in ascending threshold order.
// The returned slice must not be modified.
func (l *Ladder) Tiers(m domain.Metric) []domain.RewardDefinition {
	return l.tiers[m]
}

// Lookup returns the definition granting roleID
func (l *Ladder) Lookup(roleID string) (domain.RewardDefinition, bool) {
	d, ok := l.byRole[roleID]
	return d, ok
}

// Empty reports whether the guild has no reward definitions
func (l *Ladder) Empty() bool {
	return len(l.byRole) == 0
}

// KeepHighest reports whether the guild collapses to the highest tier
func (l *Ladder) KeepHighest() bool {
	return l.Mode == domain.HierarchyKeepHighest
}

// Validate checks that every transition references a role of the ladder
func (l *Ladder) Validate(changes []domain.Transition) error {
	for _, c := range changes {
		if _, ok := l.byRole[c.RoleID]; !ok {
			return &domain.HierarchyInconsistencyError{GuildID: l.GuildID, RoleID: c.RoleID}
		}
	}
	return nil
}

// Known returns the transitions whose role the ladder knows, refreshed with
// the current metric and threshold of that role
func (l *Ladder) Known(changes []domain.Transition) (known, unknown []domain.Transition) {
	for _, c := range changes {
		d, ok := l.byRole[c.RoleID]
		if !ok {
			unknown = append(unknown, c)
			continue
		}
		c.Metric = d.Metric
		c.Threshold = d.Threshold
		known = append(known, c)
	}
	return known, unknown
}

type cachedLadder struct {
	Version string
	Ladder  *Ladder
}

// ladderCache holds recently used ladders per guild with time-based expiration.
// Every Invalidate bumps the guild's generation; a ladder loaded under an older
// generation is not stored.
type ladderCache struct {
	lru *expirable.LRU[string, *cachedLadder]

	mu   sync.Mutex
	gens map[string]uint64
}

func newLadderCache(size int, ttl time.Duration) *ladderCache {
	if size <= 0 {
		size = DefaultLadderCacheLen
	}
	if ttl <= 0 {
		ttl = DefaultLadderCacheTTL
	}
	return &ladderCache{
		lru:  expirable.NewLRU[string, *cachedLadder](size, nil, ttl),
		gens: make(map[string]uint64),
	}
}

func (c *ladderCache) Get(guildID string) (*Ladder, bool) {
	entry, found := c.lru.Get(guildID)
	if !found || entry.Version != LadderCacheVersion {
		if found {
			c.lru.Remove(guildID)
		}
		metrics.LadderCacheLookups.WithLabelValues(metrics.ResultMiss).Inc()
		return nil, false
	}
	metrics.LadderCacheLookups.WithLabelValues(metrics.ResultHit).Inc()
	return entry.Ladder, true
}

// Generation is read before loading a ladder and handed back to SetIfCurrent
func (c *ladderCache) Generation(guildID string) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gens[guildID]
}

// SetIfCurrent stores l unless its guild was invalidated since gen was read
func (c *ladderCache) SetIfCurrent(l *Ladder, gen uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gens[l.GuildID] != gen {
		return false
	}
	c.lru.Add(l.GuildID, &cachedLadder{Version: LadderCacheVersion, Ladder: l})
	return true
}

func (c *ladderCache) Invalidate(guildID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gens[guildID]++
	c.lru.Remove(guildID)
}

func (c *ladderCache) Len() int {
	return c.lru.Len()
}
