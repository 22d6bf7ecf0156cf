package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/osse101/WinLedger_Go/internal/domain"
	"github.com/osse101/WinLedger_Go/internal/repository"
)

// GuildRepository implements repository.GuildConfigs and repository.Multipliers
// over the guild_configs table
type GuildRepository struct {
	db *pgxpool.Pool
}

// NewGuildRepository creates a new GuildRepository
func NewGuildRepository(db *pgxpool.Pool) *GuildRepository {
	return &GuildRepository{db: db}
}

var (
	_ repository.GuildConfigs = (*GuildRepository)(nil)
	_ repository.Multipliers  = (*GuildRepository)(nil)
)

// GetGuildConfig loads the configuration of a guild, including any stored multiplier
func (r *GuildRepository) GetGuildConfig(ctx context.Context, guildID string) (*domain.GuildConfig, error) {
	var (
		cfg         domain.GuildConfig
		rewardsJSON []byte
		mode        string
		hundredths  pgtype.Int4
		expiresAt   pgtype.Timestamptz
		description pgtype.Text
	)
	err := r.db.QueryRow(ctx, `
		SELECT guild_id, rewards, hierarchy_mode, auto_points,
			multiplier_hundredths, multiplier_expires_at, multiplier_description,
			created_at, updated_at
		FROM guild_configs WHERE guild_id = $1
	`, guildID).Scan(
		&cfg.GuildID,
		&rewardsJSON,
		&mode,
		&cfg.AutoPoints,
		&hundredths,
		&expiresAt,
		&description,
		&cfg.CreatedAt,
		&cfg.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", domain.ErrGuildNotFound, guildID)
	}
	if err != nil {
		return nil, storageErr(OpGetGuildConfig, err)
	}

	cfg.HierarchyMode = domain.HierarchyMode(mode)
	if err := json.Unmarshal(rewardsJSON, &cfg.Rewards); err != nil {
		return nil, storageErr(OpGetGuildConfig, fmt.Errorf("%s: %w", ErrMsgFailedToUnmarshalRewards, err))
	}
	if cfg.Rewards == nil {
		cfg.Rewards = []domain.RewardDefinition{}
	}
	cfg.Multiplier = toMultiplier(hundredths, expiresAt, description)
	return &cfg, nil
}

// UpsertGuildConfig writes rewards, hierarchy mode and auto points of cfg.
// The multiplier columns are owned by the multiplier operations and left untouched.
func (r *GuildRepository) UpsertGuildConfig(ctx context.Context, cfg *domain.GuildConfig) error {
	rewardsJSON, err := marshalRewards(cfg.Rewards)
	if err != nil {
		return err
	}
	mode := cfg.HierarchyMode
	if mode == "" {
		mode = domain.HierarchyKeepAll
	}

	err = r.db.QueryRow(ctx, `
		INSERT INTO guild_configs (guild_id, rewards, hierarchy_mode, auto_points)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (guild_id) DO UPDATE SET
			rewards = EXCLUDED.rewards,
			hierarchy_mode = EXCLUDED.hierarchy_mode,
			auto_points = EXCLUDED.auto_points,
			updated_at = NOW()
		RETURNING created_at, updated_at
	`, cfg.GuildID, rewardsJSON, string(mode), cfg.AutoPoints).Scan(&cfg.CreatedAt, &cfg.UpdatedAt)
	if err != nil {
		return storageErr(OpUpsertGuildConfig, err)
	}
	return nil
}

// SetRewards replaces the reward definitions, creating the guild row if needed
func (r *GuildRepository) SetRewards(ctx context.Context, guildID string, rewards []domain.RewardDefinition) error {
	rewardsJSON, err := marshalRewards(rewards)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `
		INSERT INTO guild_configs (guild_id, rewards) VALUES ($1, $2)
		ON CONFLICT (guild_id) DO UPDATE SET rewards = EXCLUDED.rewards, updated_at = NOW()
	`, guildID, rewardsJSON)
	return storageErr(OpSetRewards, err)
}

// SetHierarchyMode stores the hierarchy mode, creating the guild row if needed
func (r *GuildRepository) SetHierarchyMode(ctx context.Context, guildID string, mode domain.HierarchyMode) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO guild_configs (guild_id, hierarchy_mode) VALUES ($1, $2)
		ON CONFLICT (guild_id) DO UPDATE SET hierarchy_mode = EXCLUDED.hierarchy_mode, updated_at = NOW()
	`, guildID, string(mode))
	return storageErr(OpSetHierarchyMode, err)
}

// SetAutoPoints toggles automatic points from game results
func (r *GuildRepository) SetAutoPoints(ctx context.Context, guildID string, enabled bool) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO guild_configs (guild_id, auto_points) VALUES ($1, $2)
		ON CONFLICT (guild_id) DO UPDATE SET auto_points = EXCLUDED.auto_points, updated_at = NOW()
	`, guildID, enabled)
	return storageErr(OpSetAutoPoints, err)
}

// DeleteGuildConfig removes the guild configuration together with all counters of the guild
func (r *GuildRepository) DeleteGuildConfig(ctx context.Context, guildID string) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return storageErr(OpDeleteGuildConfig, fmt.Errorf("%s: %w", ErrMsgFailedToBeginTransaction, err))
	}
	defer SafeRollback(ctx, tx)

	if _, err := tx.Exec(ctx, `DELETE FROM guild_configs WHERE guild_id = $1`, guildID); err != nil {
		return storageErr(OpDeleteGuildConfig, err)
	}
	if err := deleteGuildCounters(ctx, tx, guildID); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return storageErr(OpDeleteGuildConfig, fmt.Errorf("%s: %w", ErrMsgFailedToCommitTransaction, err))
	}
	return nil
}

func marshalRewards(rewards []domain.RewardDefinition) ([]byte, error) {
	if rewards == nil {
		rewards = []domain.RewardDefinition{}
	}
	b, err := json.Marshal(rewards)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToMarshalRewards, err)
	}
	return b, nil
}

func toMultiplier(hundredths pgtype.Int4, expiresAt pgtype.Timestamptz, description pgtype.Text) *domain.Multiplier {
	if !hundredths.Valid {
		return nil
	}
	return &domain.Multiplier{
		Hundredths:  int(hundredths.Int32),
		ExpiresAt:   ptrTime(expiresAt),
		Description: description.String,
	}
}
