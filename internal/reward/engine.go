// Package reward detects reward threshold crossings and keeps the reward
// roles of members in line with their cumulative counters.
package reward

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/osse101/WinLedger_Go/internal/domain"
	"github.com/osse101/WinLedger_Go/internal/event"
	"github.com/osse101/WinLedger_Go/internal/guild"
	"github.com/osse101/WinLedger_Go/internal/logger"
	"github.com/osse101/WinLedger_Go/internal/metrics"
	"github.com/osse101/WinLedger_Go/internal/repository"
	"github.com/osse101/WinLedger_Go/internal/worker"
)

// RoleApplier changes roles of members on the chat platform
type RoleApplier interface {
	GrantRole(ctx context.Context, guildID, memberID, roleID, reason string) error
	RevokeRole(ctx context.Context, guildID, memberID, roleID, reason string) error
}

// Config tunes the engine
type Config struct {
	CollapseDelay time.Duration
	CacheSize     int
	CacheTTL      time.Duration
}

// Engine evaluates reward ladders against counter changes
type Engine struct {
	guilds    repository.GuildConfigs
	counters  repository.Counters
	applier   RoleApplier
	pool      *worker.Pool
	roles     *roleQueues
	publisher event.Publisher

	cache     *ladderCache
	debouncer *Debouncer
	validate  *validator.Validate
}

// NewEngine creates a reward engine. Role operations run on pool; a nil pool
// applies them inline. A nil applier only logs the operations.
func NewEngine(guilds repository.GuildConfigs, counters repository.Counters, applier RoleApplier, pool *worker.Pool, publisher event.Publisher, cfg Config) *Engine {
	if publisher == nil {
		publisher = event.NopPublisher{}
	}
	e := &Engine{
		guilds:    guilds,
		counters:  counters,
		applier:   applier,
		pool:      pool,
		roles:     newRoleQueues(),
		publisher: publisher,
		cache:     newLadderCache(cfg.CacheSize, cfg.CacheTTL),
		validate:  validator.New(),
	}
	e.debouncer = NewDebouncer(cfg.CollapseDelay, e.collapse)
	return e
}

// Ladder returns the cached reward ladder of a guild, loading it on a miss.
// Unconfigured guilds get an empty ladder. Stored definitions that fail
// validation are rejected with domain.ErrInvalidRewardDefinition.
func (e *Engine) Ladder(ctx context.Context, guildID string) (*Ladder, error) {
	if l, ok := e.cache.Get(guildID); ok {
		return l, nil
	}

	gen := e.cache.Generation(guildID)
	var l *Ladder
	cfg, err := e.guilds.GetGuildConfig(ctx, guildID)
	switch {
	case errors.Is(err, domain.ErrGuildNotFound):
		l = NewLadder(guildID, domain.HierarchyKeepAll, nil)
	case err != nil:
		return nil, fmt.Errorf(ErrMsgLoadLadderFailed, err)
	default:
		if err := guild.ValidateRewards(e.validate, cfg.Rewards); err != nil {
			logger.FromContext(ctx).Error(LogMsgInvalidStoredRewards, "guild_id", guildID, "error", err)
			return nil, err
		}
		l = NewLadder(guildID, cfg.HierarchyMode, cfg.Rewards)
	}

	if !e.cache.SetIfCurrent(l, gen) {
		logger.FromContext(ctx).Debug(LogMsgLadderLoadRaced, "guild_id", guildID)
	}
	return l, nil
}

// Invalidate drops the cached ladder of a guild
func (e *Engine) Invalidate(guildID string) {
	e.cache.Invalidate(guildID)
}

// Check detects the transitions caused by a move of the cumulative counters
// from before to after, dispatches the matching role changes and, in
// keep-highest mode, schedules a hierarchy collapse for the member.
func (e *Engine) Check(ctx context.Context, guildID, memberID string, before, after domain.Counter) ([]domain.Transition, error) {
	l, err := e.Ladder(ctx, guildID)
	if err != nil {
		return nil, err
	}
	if l.Empty() {
		return nil, nil
	}

	changes := DetectAll(l, before, after)
	if len(changes) == 0 {
		return nil, nil
	}

	log := logger.FromContext(ctx)
	log.Info(LogMsgTransitionsDetected,
		"guild_id", guildID, "member_id", memberID, "count", len(changes))

	ops := make([]domain.RoleOp, 0, len(changes))
	for _, c := range changes {
		metrics.RewardTransitions.WithLabelValues(string(c.Type), string(c.Metric)).Inc()
		if err := e.publisher.Publish(ctx, event.NewRewardTransitionEvent(guildID, memberID, c)); err != nil {
			log.Warn(LogMsgPublishFailed, "error", err, "event_type", event.RewardTransition)
		}
		ops = append(ops, opForTransition(c))
	}
	e.dispatch(ctx, guildID, memberID, ops)

	if l.KeepHighest() {
		e.debouncer.Trigger(ctx, guildID, memberID, changes)
	}
	return changes, nil
}

func opForTransition(c domain.Transition) domain.RoleOp {
	if c.Type == domain.TransitionAdded {
		return domain.RoleOp{
			Kind:   domain.RoleGrant,
			RoleID: c.RoleID,
			Reason: fmt.Sprintf(ReasonThresholdReached, c.Threshold, c.Metric),
		}
	}
	return domain.RoleOp{
		Kind:   domain.RoleRevoke,
		RoleID: c.RoleID,
		Reason: fmt.Sprintf(ReasonThresholdLost, c.Threshold, c.Metric),
	}
}

// collapse is the debounced pass. It resolves the accumulated transitions
// against the current ladder and totals of the member.
func (e *Engine) collapse(ctx context.Context, guildID, memberID string, changes []domain.Transition) {
	log := logger.FromContext(ctx).With("guild_id", guildID, "member_id", memberID)
	log.Debug(LogMsgCollapseRunning, "changes", len(changes))

	l, err := e.Ladder(ctx, guildID)
	if err != nil {
		log.Error(LogMsgCollapseFailed, "error", err)
		return
	}

	if err := l.Validate(changes); err != nil {
		var inconsistency *domain.HierarchyInconsistencyError
		if !errors.As(err, &inconsistency) {
			log.Error(LogMsgCollapseFailed, "error", err)
			return
		}
		e.Invalidate(guildID)
		if l, err = e.Ladder(ctx, guildID); err != nil {
			log.Error(LogMsgCollapseFailed, "error", err)
			return
		}
		log.Warn(LogMsgLadderReloaded, "role_id", inconsistency.RoleID)
	}

	known, unknown := l.Known(changes)
	for _, c := range unknown {
		log.Warn(LogMsgDroppedUnknownRole, "role_id", c.RoleID)
	}
	if !l.KeepHighest() || len(known) == 0 {
		log.Debug(LogMsgCollapseSkipped, "mode", l.Mode)
		return
	}

	totals, err := e.counters.GetCumulative(ctx, guildID, memberID)
	if err != nil {
		log.Error(LogMsgCollapseFailed, "error", fmt.Errorf(ErrMsgReadTotalsFailed, err))
		return
	}

	var ops []domain.RoleOp
	for _, m := range domain.Metrics {
		ops = append(ops, Collapse(l, m, totals.Get(m), known)...)
	}
	if len(ops) == 0 {
		return
	}
	e.dispatch(ctx, guildID, memberID, ops)
	if err := e.publisher.Publish(ctx, event.NewHierarchyCollapsedEvent(guildID, memberID, ops)); err != nil {
		log.Warn(LogMsgPublishFailed, "error", err, "event_type", event.HierarchyCollapsed)
	}
}

// PendingCollapses returns the number of members with a scheduled collapse
func (e *Engine) PendingCollapses() int {
	return e.debouncer.Pending()
}

// Shutdown runs every pending collapse immediately
func (e *Engine) Shutdown(ctx context.Context) error {
	return e.debouncer.Shutdown(ctx)
}

// CalculateEligibleRoles returns the reward definitions a member has reached.
// In keep-highest mode only the highest per metric is returned.
func (e *Engine) CalculateEligibleRoles(ctx context.Context, guildID, memberID string) ([]domain.RewardDefinition, error) {
	l, err := e.Ladder(ctx, guildID)
	if err != nil {
		return nil, err
	}
	totals, err := e.counters.GetCumulative(ctx, guildID, memberID)
	if err != nil {
		return nil, fmt.Errorf(ErrMsgReadTotalsFailed, err)
	}
	eligible := Eligible(l, totals)
	if l.KeepHighest() {
		eligible = FilterByHierarchy(eligible)
	}
	return eligible, nil
}

// GetProgress returns the nearest unreached reward per metric
func (e *Engine) GetProgress(ctx context.Context, guildID, memberID string) ([]domain.Progress, error) {
	l, err := e.Ladder(ctx, guildID)
	if err != nil {
		return nil, err
	}
	totals, err := e.counters.GetCumulative(ctx, guildID, memberID)
	if err != nil {
		return nil, fmt.Errorf(ErrMsgReadTotalsFailed, err)
	}
	return NextTiers(l, totals), nil
}

// RefreshRoles reconciles every reward role of a member with its totals:
// eligible roles are granted, all other reward roles revoked. Operations run
// synchronously and failed ones are left out of the result.
func (e *Engine) RefreshRoles(ctx context.Context, guildID, memberID string) ([]domain.RoleOp, error) {
	logger.FromContext(ctx).Info(LogMsgRefreshRoles, "guild_id", guildID, "member_id", memberID)

	eligible, err := e.CalculateEligibleRoles(ctx, guildID, memberID)
	if err != nil {
		return nil, err
	}
	l, err := e.Ladder(ctx, guildID)
	if err != nil {
		return nil, err
	}

	keep := make(map[string]bool, len(eligible))
	for _, d := range eligible {
		keep[d.RoleID] = true
	}

	var applied []domain.RoleOp
	for _, m := range domain.Metrics {
		for _, d := range l.Tiers(m) {
			op := domain.RoleOp{Kind: domain.RoleRevoke, RoleID: d.RoleID, Reason: ReasonRefresh}
			if keep[d.RoleID] {
				op.Kind = domain.RoleGrant
			}
			if e.apply(ctx, guildID, memberID, op) {
				applied = append(applied, op)
			}
		}
	}
	return applied, nil
}
