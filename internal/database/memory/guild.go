package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/osse101/WinLedger_Go/internal/domain"
)

func copyConfig(cfg domain.GuildConfig) *domain.GuildConfig {
	out := cfg
	out.Rewards = append([]domain.RewardDefinition{}, cfg.Rewards...)
	if cfg.Multiplier != nil {
		m := *cfg.Multiplier
		if m.ExpiresAt != nil {
			at := *m.ExpiresAt
			m.ExpiresAt = &at
		}
		out.Multiplier = &m
	}
	return &out
}

// guildLocked returns the stored config of guildID, creating a default one. s.mu must be held.
func (s *Store) guildLocked(guildID string) domain.GuildConfig {
	cfg, ok := s.guilds[guildID]
	if !ok {
		now := s.now()
		cfg = domain.GuildConfig{
			GuildID:       guildID,
			Rewards:       []domain.RewardDefinition{},
			HierarchyMode: domain.HierarchyKeepAll,
			CreatedAt:     now,
		}
	}
	cfg.UpdatedAt = s.now()
	return cfg
}

// GetGuildConfig returns a copy of the stored configuration
func (s *Store) GetGuildConfig(ctx context.Context, guildID string) (*domain.GuildConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cfg, ok := s.guilds[guildID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrGuildNotFound, guildID)
	}
	return copyConfig(cfg), nil
}

// UpsertGuildConfig stores rewards, hierarchy mode and auto points of cfg
func (s *Store) UpsertGuildConfig(ctx context.Context, cfg *domain.GuildConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := s.guildLocked(cfg.GuildID)
	stored.Rewards = append([]domain.RewardDefinition{}, cfg.Rewards...)
	stored.HierarchyMode = cfg.HierarchyMode
	if stored.HierarchyMode == "" {
		stored.HierarchyMode = domain.HierarchyKeepAll
	}
	stored.AutoPoints = cfg.AutoPoints
	s.guilds[cfg.GuildID] = stored

	cfg.CreatedAt = stored.CreatedAt
	cfg.UpdatedAt = stored.UpdatedAt
	return nil
}

// SetRewards replaces the reward definitions of a guild
func (s *Store) SetRewards(ctx context.Context, guildID string, rewards []domain.RewardDefinition) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cfg := s.guildLocked(guildID)
	cfg.Rewards = append([]domain.RewardDefinition{}, rewards...)
	s.guilds[guildID] = cfg
	return nil
}

// SetHierarchyMode stores the hierarchy mode of a guild
func (s *Store) SetHierarchyMode(ctx context.Context, guildID string, mode domain.HierarchyMode) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cfg := s.guildLocked(guildID)
	cfg.HierarchyMode = mode
	s.guilds[guildID] = cfg
	return nil
}

// SetAutoPoints toggles automatic points of a guild
func (s *Store) SetAutoPoints(ctx context.Context, guildID string, enabled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cfg := s.guildLocked(guildID)
	cfg.AutoPoints = enabled
	s.guilds[guildID] = cfg
	return nil
}

// DeleteGuildConfig removes the configuration and all counters of a guild
func (s *Store) DeleteGuildConfig(ctx context.Context, guildID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.guilds, guildID)
	s.deleteGuildCountersLocked(guildID)
	return nil
}

// GetMultiplier returns the stored multiplier without checking expiry
func (s *Store) GetMultiplier(ctx context.Context, guildID string) (*domain.Multiplier, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cfg, ok := s.guilds[guildID]
	if !ok || cfg.Multiplier == nil {
		return nil, nil
	}
	return copyConfig(cfg).Multiplier, nil
}

// SetMultiplierIfNone stores m unless an unexpired multiplier is present at now
func (s *Store) SetMultiplierIfNone(ctx context.Context, guildID string, m domain.Multiplier, now time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cfg := s.guildLocked(guildID)
	if cfg.Multiplier != nil && !cfg.Multiplier.Expired(now) {
		return false, nil
	}
	cfg.Multiplier = copyConfig(domain.GuildConfig{Multiplier: &m}).Multiplier
	s.guilds[guildID] = cfg
	return true, nil
}

// SetMultiplierExpiry changes the expiry of the stored multiplier
func (s *Store) SetMultiplierExpiry(ctx context.Context, guildID string, expiresAt *time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cfg, ok := s.guilds[guildID]
	if !ok || cfg.Multiplier == nil {
		return false, nil
	}
	m := *cfg.Multiplier
	if expiresAt != nil {
		at := *expiresAt
		m.ExpiresAt = &at
	} else {
		m.ExpiresAt = nil
	}
	cfg.Multiplier = &m
	cfg.UpdatedAt = s.now()
	s.guilds[guildID] = cfg
	return true, nil
}

// ClearMultiplierIfExpired clears the multiplier when its expiry is at or before now
func (s *Store) ClearMultiplierIfExpired(ctx context.Context, guildID string, now time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cfg, ok := s.guilds[guildID]
	if !ok || cfg.Multiplier == nil || !cfg.Multiplier.Expired(now) {
		return false, nil
	}
	cfg.Multiplier = nil
	cfg.UpdatedAt = s.now()
	s.guilds[guildID] = cfg
	return true, nil
}

// ClearMultiplier removes any multiplier of the guild
func (s *Store) ClearMultiplier(ctx context.Context, guildID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cfg, ok := s.guilds[guildID]
	if !ok {
		return nil
	}
	cfg.Multiplier = nil
	cfg.UpdatedAt = s.now()
	s.guilds[guildID] = cfg
	return nil
}
