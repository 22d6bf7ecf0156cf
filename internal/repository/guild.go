package repository

import (
	"context"
	"time"

	"github.com/osse101/WinLedger_Go/internal/domain"
)

// GuildConfigs defines the interface for per-guild configuration persistence
type GuildConfigs interface {
	// GetGuildConfig returns domain.ErrGuildNotFound for unknown guilds
	GetGuildConfig(ctx context.Context, guildID string) (*domain.GuildConfig, error)
	UpsertGuildConfig(ctx context.Context, cfg *domain.GuildConfig) error
	SetRewards(ctx context.Context, guildID string, rewards []domain.RewardDefinition) error
	SetHierarchyMode(ctx context.Context, guildID string, mode domain.HierarchyMode) error
	SetAutoPoints(ctx context.Context, guildID string, enabled bool) error
	// DeleteGuildConfig removes the configuration and every counter row of the guild
	DeleteGuildConfig(ctx context.Context, guildID string) error
}

// Multipliers defines multiplier persistence. The conditional operations are
// single statements so concurrent admins cannot stack multipliers.
type Multipliers interface {
	GetMultiplier(ctx context.Context, guildID string) (*domain.Multiplier, error)
	// SetMultiplierIfNone stores m unless an unexpired multiplier exists at now.
	// Returns false when one is active.
	SetMultiplierIfNone(ctx context.Context, guildID string, m domain.Multiplier, now time.Time) (bool, error)
	// SetMultiplierExpiry changes the expiry of the current multiplier.
	// Returns false when none is stored.
	SetMultiplierExpiry(ctx context.Context, guildID string, expiresAt *time.Time) (bool, error)
	// ClearMultiplierIfExpired removes the multiplier when its expiry is at or before now
	ClearMultiplierIfExpired(ctx context.Context, guildID string, now time.Time) (bool, error)
	ClearMultiplier(ctx context.Context, guildID string) error
}
