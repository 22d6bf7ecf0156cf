package postgres

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osse101/WinLedger_Go/internal/domain"
)

func TestGuildRepository_Config(t *testing.T) {
	pool := setupTestDB(t)
	repo := NewGuildRepository(pool)
	ctx := context.Background()

	_, err := repo.GetGuildConfig(ctx, "g")
	assert.ErrorIs(t, err, domain.ErrGuildNotFound)

	rewards := []domain.RewardDefinition{
		{RoleID: "bronze", Metric: domain.MetricPoints, Threshold: 100},
		{RoleID: "champ", Metric: domain.MetricWins, Threshold: 10},
	}
	require.NoError(t, repo.SetRewards(ctx, "g", rewards))
	require.NoError(t, repo.SetHierarchyMode(ctx, "g", domain.HierarchyKeepHighest))
	require.NoError(t, repo.SetAutoPoints(ctx, "g", true))

	cfg, err := repo.GetGuildConfig(ctx, "g")
	require.NoError(t, err)
	assert.Equal(t, rewards, cfg.Rewards)
	assert.Equal(t, domain.HierarchyKeepHighest, cfg.HierarchyMode)
	assert.True(t, cfg.AutoPoints)
	assert.Nil(t, cfg.Multiplier)

	counters := NewCounterRepository(pool)
	_, err = counters.ApplyDelta(ctx, "g", "m", mustDay(t, "2024-05-10"), domain.Delta{Points: 1})
	require.NoError(t, err)

	require.NoError(t, repo.DeleteGuildConfig(ctx, "g"))
	_, err = repo.GetGuildConfig(ctx, "g")
	assert.ErrorIs(t, err, domain.ErrGuildNotFound)
	c, err := counters.GetCumulative(ctx, "g", "m")
	require.NoError(t, err)
	assert.Equal(t, domain.Counter{}, c, "guild removal cascades to counters")
}

func TestGuildRepository_Multiplier(t *testing.T) {
	pool := setupTestDB(t)
	repo := NewGuildRepository(pool)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)
	expires := now.Add(time.Hour)

	ok, err := repo.SetMultiplierIfNone(ctx, "g", domain.Multiplier{Hundredths: 150, ExpiresAt: &expires, Description: "weekend"}, now)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.SetMultiplierIfNone(ctx, "g", domain.Multiplier{Hundredths: 200}, now)
	require.NoError(t, err)
	assert.False(t, ok)

	m, err := repo.GetMultiplier(ctx, "g")
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.Equal(t, 150, m.Hundredths)
	assert.Equal(t, "weekend", m.Description)
	require.NotNil(t, m.ExpiresAt)
	assert.True(t, m.ExpiresAt.Equal(expires))

	cleared, err := repo.ClearMultiplierIfExpired(ctx, "g", now)
	require.NoError(t, err)
	assert.False(t, cleared, "not yet expired")

	cleared, err = repo.ClearMultiplierIfExpired(ctx, "g", expires)
	require.NoError(t, err)
	assert.True(t, cleared, "expiry at now counts as expired")

	ok, err = repo.SetMultiplierExpiry(ctx, "g", nil)
	require.NoError(t, err)
	assert.False(t, ok, "no multiplier left to extend")
}

func TestGuildRepository_ConcurrentMultiplierSet(t *testing.T) {
	pool := setupTestDB(t)
	repo := NewGuildRepository(pool)
	ctx := context.Background()
	now := time.Now().UTC()

	var wins int32
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(h int) {
			defer wg.Done()
			ok, err := repo.SetMultiplierIfNone(ctx, "g", domain.Multiplier{Hundredths: 100 + h}, now)
			assert.NoError(t, err)
			if ok {
				atomic.AddInt32(&wins, 1)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&wins), "exactly one admin may set the multiplier")
}

func TestAuditRepository(t *testing.T) {
	pool := setupTestDB(t)
	repo := NewAuditRepository(pool)
	ctx := context.Background()

	first := &domain.AuditEntry{GuildID: "g", ActorID: "admin", Message: "set multiplier", Severity: domain.SeverityChange}
	require.NoError(t, repo.InsertAuditEntry(ctx, first))
	assert.NotZero(t, first.ID)
	require.NoError(t, repo.InsertAuditEntry(ctx, &domain.AuditEntry{GuildID: "g", Message: "second", Severity: domain.SeverityInfo}))

	entries, err := repo.GetAuditEntries(ctx, "g", 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "second", entries[0].Message)

	deleted, err := repo.DeleteAuditEntriesBefore(ctx, time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)
}
