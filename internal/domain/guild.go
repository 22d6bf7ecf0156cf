package domain

import "time"

// GuildConfig is the per-guild configuration of the ledger
type GuildConfig struct {
	GuildID       string             `json:"guild_id" validate:"required,max=64"`
	Rewards       []RewardDefinition `json:"rewards" validate:"dive"`
	HierarchyMode HierarchyMode      `json:"hierarchy_mode" validate:"required,oneof=all highest"`
	AutoPoints    bool               `json:"auto_points"`
	Multiplier    *Multiplier        `json:"multiplier,omitempty"`
	CreatedAt     time.Time          `json:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at"`
}
