package repository

import (
	"context"
	"time"

	"github.com/osse101/WinLedger_Go/internal/domain"
)

// AuditLog defines persistence for the guild audit trail
type AuditLog interface {
	InsertAuditEntry(ctx context.Context, entry *domain.AuditEntry) error
	GetAuditEntries(ctx context.Context, guildID string, limit int) ([]domain.AuditEntry, error)
	DeleteAuditEntriesBefore(ctx context.Context, cutoff time.Time) (int64, error)
}
