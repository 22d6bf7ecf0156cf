// Package ledger applies point and win changes to members and reports the
// reward thresholds each change crossed.
package ledger

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/osse101/WinLedger_Go/internal/domain"
	"github.com/osse101/WinLedger_Go/internal/event"
	"github.com/osse101/WinLedger_Go/internal/logger"
	"github.com/osse101/WinLedger_Go/internal/metrics"
	"github.com/osse101/WinLedger_Go/internal/repository"
)

// RewardChecker evaluates reward thresholds after a cumulative counter moved
type RewardChecker interface {
	Check(ctx context.Context, guildID, memberID string, before, after domain.Counter) ([]domain.Transition, error)
}

// Result is the outcome of one ledger mutation. Before is derived from the
// stored totals as After minus the requested delta.
type Result struct {
	Before      domain.Counter      `json:"before"`
	After       domain.Counter      `json:"after"`
	Transitions []domain.Transition `json:"transitions"`
}

// Service defines the interface for ledger operations
type Service interface {
	RegisterWin(ctx context.Context, guildID, memberID string, points int64) (*Result, error)
	RemoveWin(ctx context.Context, guildID, memberID string, points int64) (*Result, error)
	ModifyPoints(ctx context.Context, guildID, memberID string, delta int64) (*Result, error)
	ModifyWins(ctx context.Context, guildID, memberID string, delta int64) (*Result, error)

	GetCumulative(ctx context.Context, guildID, memberID string) (domain.Counter, error)
	GetDailyAggregate(ctx context.Context, guildID, memberID string, window domain.Window) (domain.Counter, error)
	GetDailyHistory(ctx context.Context, guildID, memberID string, window domain.Window) ([]domain.DailyCounter, error)
	GetGuildTotals(ctx context.Context, guildID string) (domain.Counter, error)
	ForgetMember(ctx context.Context, guildID, memberID string) error
}

type service struct {
	counters  repository.Counters
	rewards   RewardChecker
	publisher event.Publisher
	now       func() time.Time
}

// NewService creates a new ledger service. rewards may be nil when no reward
// evaluation is wanted.
func NewService(counters repository.Counters, rewards RewardChecker, publisher event.Publisher) Service {
	return newService(counters, rewards, publisher, time.Now)
}

func newService(counters repository.Counters, rewards RewardChecker, publisher event.Publisher, now func() time.Time) *service {
	if publisher == nil {
		publisher = event.NopPublisher{}
	}
	return &service{counters: counters, rewards: rewards, publisher: publisher, now: now}
}

// DeltaFromFloat converts a caller supplied amount to an integer delta,
// rounding half away from zero. Non-finite and out of range values are rejected.
func DeltaFromFloat(v float64) (int64, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: "+ErrMsgNotFinite, domain.ErrInvalidDelta, v)
	}
	r := math.Round(v)
	if r >= math.MaxInt64 || r < math.MinInt64 {
		return 0, fmt.Errorf("%w: "+ErrMsgOutOfRange, domain.ErrInvalidDelta, v)
	}
	return int64(r), nil
}

func (s *service) RegisterWin(ctx context.Context, guildID, memberID string, points int64) (*Result, error) {
	if points <= 0 {
		return nil, s.reject(ctx, OpRegisterWin, fmt.Errorf("%w: "+ErrMsgWinPointsPositive, domain.ErrInvalidDelta, points))
	}
	return s.modify(ctx, OpRegisterWin, guildID, memberID, domain.Delta{Points: points, Wins: 1})
}

func (s *service) RemoveWin(ctx context.Context, guildID, memberID string, points int64) (*Result, error) {
	if points <= 0 {
		return nil, s.reject(ctx, OpRemoveWin, fmt.Errorf("%w: "+ErrMsgWinPointsPositive, domain.ErrInvalidDelta, points))
	}
	return s.modify(ctx, OpRemoveWin, guildID, memberID, domain.Delta{Points: -points, Wins: -1})
}

func (s *service) ModifyPoints(ctx context.Context, guildID, memberID string, delta int64) (*Result, error) {
	return s.modify(ctx, OpModifyPoints, guildID, memberID, domain.Delta{Points: delta})
}

func (s *service) ModifyWins(ctx context.Context, guildID, memberID string, delta int64) (*Result, error) {
	return s.modify(ctx, OpModifyWins, guildID, memberID, domain.Delta{Wins: delta})
}

func validateKey(guildID, memberID string) error {
	if guildID == "" {
		return fmt.Errorf("%w: %s", domain.ErrInvalidInput, ErrMsgGuildRequired)
	}
	if memberID == "" {
		return fmt.Errorf("%w: %s", domain.ErrInvalidInput, ErrMsgMemberRequired)
	}
	return nil
}

func (s *service) reject(ctx context.Context, op string, err error) error {
	metrics.LedgerRejected.WithLabelValues(op).Inc()
	logger.FromContext(ctx).Debug(LogMsgMutationRejected, "operation", op, "error", err)
	return err
}

// modify validates delta, applies it to the cumulative and daily counters of
// today in one store call and runs the reward check on the cumulative move
func (s *service) modify(ctx context.Context, op, guildID, memberID string, delta domain.Delta) (*Result, error) {
	if err := validateKey(guildID, memberID); err != nil {
		return nil, s.reject(ctx, op, err)
	}
	if delta.IsZero() {
		return nil, s.reject(ctx, op, fmt.Errorf("%w: %s", domain.ErrInvalidDelta, ErrMsgZeroDelta))
	}

	log := logger.FromContext(ctx).With("guild_id", guildID, "member_id", memberID, "operation", op)

	after, err := s.counters.ApplyDelta(ctx, guildID, memberID, domain.DayKey(s.now()), delta)
	if err != nil {
		metrics.StorageErrors.WithLabelValues(op).Inc()
		log.Error(LogMsgMutationFailed, "error", err)
		return nil, err
	}
	before := after.Sub(delta)

	metrics.LedgerMutations.WithLabelValues(op).Inc()
	log.Info(LogMsgMutationApplied,
		"delta_points", delta.Points, "delta_wins", delta.Wins,
		"points", after.Points, "wins", after.Wins)

	result := &Result{Before: before, After: after}
	if s.rewards != nil {
		// The mutation is committed; a failed check must not surface as a failed write
		transitions, err := s.rewards.Check(ctx, guildID, memberID, before, after)
		if err != nil {
			log.Warn(LogMsgRewardCheckFailed, "error", err)
		}
		result.Transitions = transitions
	}

	if err := s.publisher.Publish(ctx, event.NewLedgerMutatedEvent(guildID, memberID, op, delta, before, after)); err != nil {
		log.Warn(LogMsgPublishFailed, "error", err)
	}
	return result, nil
}

func (s *service) GetCumulative(ctx context.Context, guildID, memberID string) (domain.Counter, error) {
	if err := validateKey(guildID, memberID); err != nil {
		return domain.Counter{}, err
	}
	return s.counters.GetCumulative(ctx, guildID, memberID)
}

func (s *service) GetDailyAggregate(ctx context.Context, guildID, memberID string, window domain.Window) (domain.Counter, error) {
	if err := validateKey(guildID, memberID); err != nil {
		return domain.Counter{}, err
	}
	if err := window.Validate(); err != nil {
		return domain.Counter{}, err
	}
	if window.IsAllTime() {
		return s.counters.GetCumulative(ctx, guildID, memberID)
	}
	return s.counters.GetDailyAggregate(ctx, guildID, memberID, window.Since(s.now()))
}

// GetDailyHistory returns one entry per UTC day of the window, oldest first.
// Days without activity are filled with zero counters.
func (s *service) GetDailyHistory(ctx context.Context, guildID, memberID string, window domain.Window) ([]domain.DailyCounter, error) {
	if err := validateKey(guildID, memberID); err != nil {
		return nil, err
	}
	if window.IsAllTime() {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidWindow, ErrMsgHistoryAllTime)
	}
	if err := window.Validate(); err != nil {
		return nil, err
	}

	now := s.now()
	since := window.Since(now)
	rows, err := s.counters.GetDailyHistory(ctx, guildID, memberID, since)
	if err != nil {
		return nil, err
	}
	return backfill(rows, since, domain.DayKey(now)), nil
}

// backfill returns a dense series from first to last inclusive
func backfill(rows []domain.DailyCounter, first, last time.Time) []domain.DailyCounter {
	byDay := make(map[string]domain.Counter, len(rows))
	for _, r := range rows {
		byDay[r.Day.UTC().Format(domain.DayLayout)] = r.Counter
	}

	var out []domain.DailyCounter
	for day := first; !day.After(last); day = day.AddDate(0, 0, 1) {
		out = append(out, domain.DailyCounter{
			Day:     day,
			Counter: byDay[day.Format(domain.DayLayout)],
		})
	}
	return out
}

func (s *service) GetGuildTotals(ctx context.Context, guildID string) (domain.Counter, error) {
	if guildID == "" {
		return domain.Counter{}, fmt.Errorf("%w: %s", domain.ErrInvalidInput, ErrMsgGuildRequired)
	}
	return s.counters.GetGuildTotals(ctx, guildID)
}

// ForgetMember removes every counter row of a member. Removing an unknown
// member succeeds.
func (s *service) ForgetMember(ctx context.Context, guildID, memberID string) error {
	if err := validateKey(guildID, memberID); err != nil {
		return err
	}
	log := logger.FromContext(ctx)
	if err := s.counters.DeleteMember(ctx, guildID, memberID); err != nil {
		metrics.StorageErrors.WithLabelValues(OpForgetMember).Inc()
		log.Error(LogMsgMutationFailed, "operation", OpForgetMember, "error", err)
		return err
	}

	log.Info(LogMsgMemberForgotten, "guild_id", guildID, "member_id", memberID)
	msg := fmt.Sprintf(MsgMemberForgotten, memberID)
	if err := s.publisher.Publish(ctx, event.NewAdminActionEvent(event.MemberForgotten, guildID, memberID, msg)); err != nil {
		log.Warn(LogMsgPublishFailed, "error", err)
	}
	return nil
}
