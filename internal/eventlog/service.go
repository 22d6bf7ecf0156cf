// Package eventlog keeps the per-guild audit trail of administrative and
// automatic actions.
package eventlog

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/osse101/WinLedger_Go/internal/domain"
	"github.com/osse101/WinLedger_Go/internal/event"
	"github.com/osse101/WinLedger_Go/internal/logger"
	"github.com/osse101/WinLedger_Go/internal/repository"
)

// Sink records a single guild action
type Sink interface {
	LogAction(ctx context.Context, guildID, actorID, message string, severity domain.Severity) error
}

// Mirror copies stored audit entries somewhere humans can read them
type Mirror interface {
	MirrorAction(ctx context.Context, entry domain.AuditEntry) error
}

// Service handles audit logging
type Service interface {
	Sink

	// Subscribe registers the audit log on every event that describes a guild action
	Subscribe(bus event.Bus)

	// GetEntries returns the newest entries of a guild first
	GetEntries(ctx context.Context, guildID string, limit int) ([]domain.AuditEntry, error)

	// CleanupOldEntries removes entries older than the retention period
	CleanupOldEntries(ctx context.Context, retentionDays int) (int64, error)
}

// severities maps audited event types to the severity of their entries
var severities = map[event.Type]domain.Severity{
	event.GuildConfigChanged:    domain.SeverityChange,
	event.MultiplierSet:         domain.SeverityChange,
	event.MultiplierCleared:     domain.SeverityChange,
	event.GuildRemoved:          domain.SeverityDanger,
	event.MemberForgotten:       domain.SeverityDanger,
	event.RoleApplicationFailed: domain.SeverityWarning,
}

type service struct {
	repo   repository.AuditLog
	mirror Mirror
	now    func() time.Time
}

// NewService creates a new audit log service. mirror may be nil.
func NewService(repo repository.AuditLog, mirror Mirror) Service {
	return &service{repo: repo, mirror: mirror, now: time.Now}
}

func (s *service) Subscribe(bus event.Bus) {
	types := make([]event.Type, 0, len(severities))
	for t := range severities {
		bus.Subscribe(t, s.handleEvent)
		types = append(types, t)
	}
	logger.Debug(LogMsgSubscribedTypes, "types", types)
}

// LogAction stores the entry, writes it to the structured log and mirrors it.
// A failing mirror does not fail the action.
func (s *service) LogAction(ctx context.Context, guildID, actorID, message string, severity domain.Severity) error {
	if guildID == "" {
		return fmt.Errorf("%w: %s", domain.ErrInvalidInput, ErrMsgGuildRequired)
	}
	if severity == "" {
		severity = domain.SeverityInfo
	}
	log := logger.FromContext(ctx)
	entry := domain.AuditEntry{
		GuildID:   guildID,
		ActorID:   actorID,
		Message:   message,
		Severity:  severity,
		CreatedAt: s.now().UTC(),
	}

	if err := s.repo.InsertAuditEntry(ctx, &entry); err != nil {
		log.Error(LogMsgFailedToLog, LogFieldError, err, LogFieldGuildID, guildID)
		return err
	}
	log.Info(LogMsgAction,
		LogFieldGuildID, guildID,
		LogFieldActorID, actorID,
		LogFieldSeverity, severity,
		LogFieldMessage, message)

	if s.mirror != nil {
		if err := s.mirror.MirrorAction(ctx, entry); err != nil {
			log.Warn(LogMsgMirrorFailed, LogFieldError, err, LogFieldGuildID, guildID)
		}
	}
	return nil
}

// handleEvent turns a published event into an audit entry
func (s *service) handleEvent(ctx context.Context, evt event.Event) error {
	severity, ok := severities[evt.Type]
	if !ok {
		return nil
	}

	if evt.Type == event.RoleApplicationFailed {
		p, err := event.DecodePayload[event.RoleApplicationFailedPayloadV1](evt.Payload)
		if err != nil {
			logger.FromContext(ctx).Debug(LogMsgUndecodable, LogFieldType, evt.Type, LogFieldError, err)
			return nil
		}
		msg := fmt.Sprintf(MsgRoleFailed, p.RoleID, strings.ToLower(p.Action), p.MemberID, p.Error)
		return s.LogAction(ctx, p.GuildID, "", msg, severity)
	}

	p, err := event.DecodePayload[event.AdminActionPayloadV1](evt.Payload)
	if err != nil {
		logger.FromContext(ctx).Debug(LogMsgUndecodable, LogFieldType, evt.Type, LogFieldError, err)
		return nil
	}
	return s.LogAction(ctx, p.GuildID, p.ActorID, p.Message, severity)
}

func (s *service) GetEntries(ctx context.Context, guildID string, limit int) ([]domain.AuditEntry, error) {
	if limit <= 0 {
		limit = DefaultEntryLimit
	}
	return s.repo.GetAuditEntries(ctx, guildID, limit)
}

func (s *service) CleanupOldEntries(ctx context.Context, retentionDays int) (int64, error) {
	if retentionDays < 1 {
		return 0, fmt.Errorf("%w: "+ErrMsgInvalidRetention, domain.ErrInvalidInput, retentionDays)
	}
	cutoff := s.now().UTC().AddDate(0, 0, -retentionDays)
	return s.repo.DeleteAuditEntriesBefore(ctx, cutoff)
}
