// Package guild manages per-guild reward ladders, hierarchy mode and flags.
package guild

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/osse101/WinLedger_Go/internal/concurrency"
	"github.com/osse101/WinLedger_Go/internal/domain"
	"github.com/osse101/WinLedger_Go/internal/event"
	"github.com/osse101/WinLedger_Go/internal/logger"
	"github.com/osse101/WinLedger_Go/internal/repository"
	"github.com/osse101/WinLedger_Go/internal/validation"
)

//go:embed guilds.schema.json
var seedSchema []byte

// LadderInvalidator drops cached reward ladders of a guild
type LadderInvalidator interface {
	Invalidate(guildID string)
}

// SeedFile is the JSON document accepted by Import
type SeedFile struct {
	Guilds []domain.GuildConfig `json:"guilds"`
}

// Service defines the interface for guild configuration
type Service interface {
	// GetConfig returns the stored configuration, or the defaults for unknown guilds
	GetConfig(ctx context.Context, guildID string) (*domain.GuildConfig, error)
	SetRewards(ctx context.Context, guildID, actorID string, rewards []domain.RewardDefinition) error
	AddReward(ctx context.Context, guildID, actorID string, def domain.RewardDefinition) error
	RemoveReward(ctx context.Context, guildID, actorID, roleID string) error
	SetHierarchyMode(ctx context.Context, guildID, actorID string, mode domain.HierarchyMode) error
	SetAutoPoints(ctx context.Context, guildID, actorID string, enabled bool) error
	// RemoveGuild deletes the configuration and every counter of the guild
	RemoveGuild(ctx context.Context, guildID, actorID string) error
	// Import loads guild configurations from a JSON seed file
	Import(ctx context.Context, path string) (int, error)
}

type service struct {
	repo      repository.GuildConfigs
	ladders   LadderInvalidator
	publisher event.Publisher
	validate  *validator.Validate
	schemas   validation.SchemaValidator
	title     cases.Caser
	// locks serializes reward edits of one guild within this process
	locks *concurrency.LockManager
}

// NewService creates a new guild service
func NewService(repo repository.GuildConfigs, ladders LadderInvalidator, publisher event.Publisher) (Service, error) {
	if publisher == nil {
		publisher = event.NopPublisher{}
	}
	schemas := validation.NewSchemaValidator()
	if err := schemas.RegisterSchema(SchemaName, seedSchema); err != nil {
		return nil, err
	}
	return &service{
		repo:      repo,
		ladders:   ladders,
		publisher: publisher,
		validate:  validator.New(),
		schemas:   schemas,
		title:     cases.Title(language.English),
		locks:     concurrency.NewLockManager(),
	}, nil
}

// ValidateRewards checks field constraints of every definition, that no role
// appears twice and that no two rewards of a metric share a threshold
func ValidateRewards(v *validator.Validate, rewards []domain.RewardDefinition) error {
	roles := make(map[string]bool, len(rewards))
	thresholds := make(map[domain.Metric]map[int64]bool, len(domain.Metrics))
	for _, r := range rewards {
		if err := v.Struct(r); err != nil {
			return fmt.Errorf("%w: %s", domain.ErrInvalidRewardDefinition, describe(err))
		}
		if roles[r.RoleID] {
			return fmt.Errorf("%w: "+ErrMsgDuplicateRole, domain.ErrInvalidRewardDefinition, r.RoleID)
		}
		roles[r.RoleID] = true

		if thresholds[r.Metric] == nil {
			thresholds[r.Metric] = make(map[int64]bool)
		}
		if thresholds[r.Metric][r.Threshold] {
			return fmt.Errorf("%w: "+ErrMsgDuplicateThreshold, domain.ErrInvalidRewardDefinition, r.Metric, r.Threshold)
		}
		thresholds[r.Metric][r.Threshold] = true
	}
	return nil
}

func describe(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, fmt.Sprintf(ErrMsgFieldInvalid, strings.ToLower(fe.Field()), fe.Tag()))
	}
	return strings.Join(parts, ", ")
}

func (s *service) GetConfig(ctx context.Context, guildID string) (*domain.GuildConfig, error) {
	if guildID == "" {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidInput, ErrMsgGuildRequired)
	}
	cfg, err := s.repo.GetGuildConfig(ctx, guildID)
	if errors.Is(err, domain.ErrGuildNotFound) {
		return &domain.GuildConfig{
			GuildID:       guildID,
			Rewards:       []domain.RewardDefinition{},
			HierarchyMode: domain.HierarchyKeepAll,
		}, nil
	}
	if err != nil {
		return nil, fmt.Errorf(ErrMsgLoadConfigFailed, err)
	}
	return cfg, nil
}

func (s *service) SetRewards(ctx context.Context, guildID, actorID string, rewards []domain.RewardDefinition) error {
	if guildID == "" {
		return fmt.Errorf("%w: %s", domain.ErrInvalidInput, ErrMsgGuildRequired)
	}
	if err := ValidateRewards(s.validate, rewards); err != nil {
		return err
	}
	err := s.locks.WithLock(guildID, func() error {
		return s.repo.SetRewards(ctx, guildID, rewards)
	})
	if err != nil {
		return err
	}
	s.changed(ctx, guildID, actorID, LogMsgRewardsUpdated, fmt.Sprintf(MsgRewardsReplaced, len(rewards)))
	return nil
}

func (s *service) AddReward(ctx context.Context, guildID, actorID string, def domain.RewardDefinition) error {
	err := s.editRewards(ctx, guildID, func(current []domain.RewardDefinition) ([]domain.RewardDefinition, error) {
		rewards := append(append([]domain.RewardDefinition{}, current...), def)
		return rewards, ValidateRewards(s.validate, rewards)
	})
	if err != nil {
		return err
	}
	msg := fmt.Sprintf(MsgRewardAdded, def.RoleID, def.Threshold, s.title.String(string(def.Metric)))
	s.changed(ctx, guildID, actorID, LogMsgRewardsUpdated, msg)
	return nil
}

func (s *service) RemoveReward(ctx context.Context, guildID, actorID, roleID string) error {
	err := s.editRewards(ctx, guildID, func(current []domain.RewardDefinition) ([]domain.RewardDefinition, error) {
		rewards := make([]domain.RewardDefinition, 0, len(current))
		for _, r := range current {
			if r.RoleID != roleID {
				rewards = append(rewards, r)
			}
		}
		if len(rewards) == len(current) {
			return nil, fmt.Errorf("%w: "+ErrMsgRoleNotConfigured, domain.ErrInvalidRewardDefinition, roleID)
		}
		return rewards, nil
	})
	if err != nil {
		return err
	}
	s.changed(ctx, guildID, actorID, LogMsgRewardsUpdated, fmt.Sprintf(MsgRewardRemoved, roleID))
	return nil
}

// editRewards reads, changes and writes the rewards of a guild under the guild's lock
func (s *service) editRewards(ctx context.Context, guildID string, edit func([]domain.RewardDefinition) ([]domain.RewardDefinition, error)) error {
	return s.locks.WithLock(guildID, func() error {
		cfg, err := s.GetConfig(ctx, guildID)
		if err != nil {
			return err
		}
		rewards, err := edit(cfg.Rewards)
		if err != nil {
			return err
		}
		return s.repo.SetRewards(ctx, guildID, rewards)
	})
}

func (s *service) SetHierarchyMode(ctx context.Context, guildID, actorID string, mode domain.HierarchyMode) error {
	if guildID == "" {
		return fmt.Errorf("%w: %s", domain.ErrInvalidInput, ErrMsgGuildRequired)
	}
	if !mode.Valid() {
		return fmt.Errorf("%w: %q", domain.ErrInvalidHierarchyMode, mode)
	}
	if err := s.repo.SetHierarchyMode(ctx, guildID, mode); err != nil {
		return err
	}
	s.changed(ctx, guildID, actorID, LogMsgHierarchyUpdated, fmt.Sprintf(MsgHierarchyChanged, mode))
	return nil
}

func (s *service) SetAutoPoints(ctx context.Context, guildID, actorID string, enabled bool) error {
	if guildID == "" {
		return fmt.Errorf("%w: %s", domain.ErrInvalidInput, ErrMsgGuildRequired)
	}
	if err := s.repo.SetAutoPoints(ctx, guildID, enabled); err != nil {
		return err
	}
	msg := MsgAutoPointsOff
	if enabled {
		msg = MsgAutoPointsEnabled
	}
	s.changed(ctx, guildID, actorID, LogMsgAutoPointsUpdated, msg)
	return nil
}

func (s *service) RemoveGuild(ctx context.Context, guildID, actorID string) error {
	if guildID == "" {
		return fmt.Errorf("%w: %s", domain.ErrInvalidInput, ErrMsgGuildRequired)
	}
	if err := s.repo.DeleteGuildConfig(ctx, guildID); err != nil {
		return err
	}
	s.invalidate(guildID)
	logger.FromContext(ctx).Info(LogMsgGuildRemoved, "guild_id", guildID, "actor_id", actorID)
	s.publish(ctx, event.NewAdminActionEvent(event.GuildRemoved, guildID, actorID, MsgGuildRemoved))
	return nil
}

func (s *service) Import(ctx context.Context, path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf(ErrMsgReadSeedFailed, err)
	}
	if err := s.schemas.ValidateBytes(data, SchemaName); err != nil {
		return 0, fmt.Errorf(ErrMsgSeedSchemaFailed, path, err)
	}
	var seed SeedFile
	if err := json.Unmarshal(data, &seed); err != nil {
		return 0, fmt.Errorf(ErrMsgParseSeedFailed, err)
	}

	// Validate everything before the first write
	for i := range seed.Guilds {
		cfg := &seed.Guilds[i]
		if cfg.HierarchyMode == "" {
			cfg.HierarchyMode = domain.HierarchyKeepAll
		}
		if err := ValidateRewards(s.validate, cfg.Rewards); err != nil {
			return 0, fmt.Errorf("guild %s: %w", cfg.GuildID, err)
		}
	}
	for i := range seed.Guilds {
		cfg := &seed.Guilds[i]
		if err := s.repo.UpsertGuildConfig(ctx, cfg); err != nil {
			return i, err
		}
		s.invalidate(cfg.GuildID)
		s.publish(ctx, event.NewAdminActionEvent(event.GuildConfigChanged, cfg.GuildID, "", fmt.Sprintf(MsgImported, path)))
	}
	logger.FromContext(ctx).Info(LogMsgGuildsImported, "path", path, "count", len(seed.Guilds))
	return len(seed.Guilds), nil
}

// changed runs after a successful configuration write
func (s *service) changed(ctx context.Context, guildID, actorID, logMsg, auditMsg string) {
	s.invalidate(guildID)
	logger.FromContext(ctx).Info(logMsg, "guild_id", guildID, "actor_id", actorID)
	s.publish(ctx, event.NewAdminActionEvent(event.GuildConfigChanged, guildID, actorID, auditMsg))
}

func (s *service) invalidate(guildID string) {
	if s.ladders != nil {
		s.ladders.Invalidate(guildID)
	}
}

func (s *service) publish(ctx context.Context, e event.Event) {
	if err := s.publisher.Publish(ctx, e); err != nil {
		logger.FromContext(ctx).Warn(LogMsgPublishFailed, "error", err, "event_type", e.Type)
	}
}
