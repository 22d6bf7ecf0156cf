// Package multiplier manages the temporary point multiplier of a guild.
package multiplier

import (
	"context"
	"fmt"
	"time"

	"github.com/osse101/WinLedger_Go/internal/domain"
	"github.com/osse101/WinLedger_Go/internal/event"
	"github.com/osse101/WinLedger_Go/internal/logger"
	"github.com/osse101/WinLedger_Go/internal/metrics"
	"github.com/osse101/WinLedger_Go/internal/repository"
)

// Service defines the interface for multiplier operations
type Service interface {
	// Get returns the active multiplier or nil. An expired multiplier is
	// cleared from storage as part of the read.
	Get(ctx context.Context, guildID string) (*domain.Multiplier, error)
	Set(ctx context.Context, guildID string, amount float64, expiresAt *time.Time, description string) (*domain.Multiplier, error)
	Clear(ctx context.Context, guildID string) error
	SetExpiry(ctx context.Context, guildID string, expiresAt *time.Time) error
	// Resolve returns raw scaled by the active multiplier of the guild
	Resolve(ctx context.Context, guildID string, raw int64) (int64, *domain.Multiplier, error)
}

type service struct {
	repo      repository.Multipliers
	publisher event.Publisher
	now       func() time.Time
}

// NewService creates a new multiplier service
func NewService(repo repository.Multipliers, publisher event.Publisher) Service {
	return newService(repo, publisher, time.Now)
}

func newService(repo repository.Multipliers, publisher event.Publisher, now func() time.Time) *service {
	if publisher == nil {
		publisher = event.NopPublisher{}
	}
	return &service{repo: repo, publisher: publisher, now: now}
}

// Apply scales raw by m, rounding up. Arithmetic stays in integer hundredths.
// A nil multiplier leaves raw unchanged.
func Apply(raw int64, m *domain.Multiplier) int64 {
	if m == nil {
		return raw
	}
	p := raw * int64(m.Hundredths)
	if p >= 0 {
		return (p + domain.MultiplierScale - 1) / domain.MultiplierScale
	}
	return p / domain.MultiplierScale
}

func (s *service) Get(ctx context.Context, guildID string) (*domain.Multiplier, error) {
	m, err := s.repo.GetMultiplier(ctx, guildID)
	if err != nil {
		return nil, fmt.Errorf(ErrMsgGetFailed, err)
	}
	if m == nil {
		metrics.MultiplierLookups.WithLabelValues(StateNone).Inc()
		return nil, nil
	}

	now := s.now()
	if !m.Expired(now) {
		metrics.MultiplierLookups.WithLabelValues(StateActive).Inc()
		return m, nil
	}

	metrics.MultiplierLookups.WithLabelValues(StateExpired).Inc()
	cleared, err := s.repo.ClearMultiplierIfExpired(ctx, guildID, now)
	if err != nil {
		return nil, fmt.Errorf(ErrMsgClearFailed, err)
	}
	if cleared {
		logger.FromContext(ctx).Info(LogMsgMultiplierExpired, "guild_id", guildID)
		s.publish(ctx, event.MultiplierCleared, guildID, MsgExpired)
	}
	return nil, nil
}

func (s *service) Set(ctx context.Context, guildID string, amount float64, expiresAt *time.Time, description string) (*domain.Multiplier, error) {
	hundredths, ok := domain.HundredthsFromAmount(amount)
	if !ok {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidMultiplier, amount)
	}
	if len(description) > MaxDescriptionLength {
		return nil, fmt.Errorf("%w: "+ErrMsgDescriptionSize, domain.ErrInvalidInput, MaxDescriptionLength)
	}
	// An expiry already in the past is stored as given; the next Get clears it.
	m := domain.Multiplier{Hundredths: hundredths, ExpiresAt: expiresAt, Description: description}
	stored, err := s.repo.SetMultiplierIfNone(ctx, guildID, m, s.now())
	if err != nil {
		return nil, fmt.Errorf(ErrMsgSetFailed, err)
	}
	if !stored {
		return nil, domain.ErrMultiplierAlreadyActive
	}

	logger.FromContext(ctx).Info(LogMsgMultiplierSet,
		"guild_id", guildID, "hundredths", hundredths, "expires_at", expiresAt)
	msg := fmt.Sprintf(MsgSetFormat, m.Amount(), description)
	if expiresAt != nil {
		msg = fmt.Sprintf(MsgSetExpiresFormat, m.Amount(), expiresAt.UTC().Format(time.RFC3339), description)
	}
	s.publish(ctx, event.MultiplierSet, guildID, msg)
	return &m, nil
}

func (s *service) Clear(ctx context.Context, guildID string) error {
	if err := s.repo.ClearMultiplier(ctx, guildID); err != nil {
		return fmt.Errorf(ErrMsgClearFailed, err)
	}
	logger.FromContext(ctx).Info(LogMsgMultiplierCleared, "guild_id", guildID)
	s.publish(ctx, event.MultiplierCleared, guildID, MsgCleared)
	return nil
}

func (s *service) SetExpiry(ctx context.Context, guildID string, expiresAt *time.Time) error {
	current, err := s.Get(ctx, guildID)
	if err != nil {
		return err
	}
	if current == nil {
		return domain.ErrNoActiveMultiplier
	}

	changed, err := s.repo.SetMultiplierExpiry(ctx, guildID, expiresAt)
	if err != nil {
		return fmt.Errorf(ErrMsgExpiryFailed, err)
	}
	if !changed {
		return domain.ErrNoActiveMultiplier
	}

	logger.FromContext(ctx).Info(LogMsgExpiryChanged, "guild_id", guildID, "expires_at", expiresAt)
	msg := MsgNoExpiry
	if expiresAt != nil {
		msg = fmt.Sprintf(MsgExpiryFormat, expiresAt.UTC().Format(time.RFC3339))
	}
	s.publish(ctx, event.MultiplierSet, guildID, msg)
	return nil
}

func (s *service) Resolve(ctx context.Context, guildID string, raw int64) (int64, *domain.Multiplier, error) {
	m, err := s.Get(ctx, guildID)
	if err != nil {
		return 0, nil, err
	}
	return Apply(raw, m), m, nil
}

func (s *service) publish(ctx context.Context, t event.Type, guildID, msg string) {
	if err := s.publisher.Publish(ctx, event.NewAdminActionEvent(t, guildID, "", msg)); err != nil {
		logger.FromContext(ctx).Warn(LogMsgPublishFailed, "error", err, "event_type", t)
	}
}
