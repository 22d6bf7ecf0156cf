package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/osse101/WinLedger_Go/internal/domain"
	"github.com/osse101/WinLedger_Go/internal/repository"
)

// AuditRepository implements repository.AuditLog for PostgreSQL
type AuditRepository struct {
	db *pgxpool.Pool
}

// NewAuditRepository creates a new AuditRepository
func NewAuditRepository(db *pgxpool.Pool) *AuditRepository {
	return &AuditRepository{db: db}
}

var _ repository.AuditLog = (*AuditRepository)(nil)

// InsertAuditEntry stores an entry and fills in its id and timestamp
func (r *AuditRepository) InsertAuditEntry(ctx context.Context, entry *domain.AuditEntry) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO audit_log (guild_id, actor_id, message, severity)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`, entry.GuildID, entry.ActorID, entry.Message, string(entry.Severity)).Scan(&entry.ID, &entry.CreatedAt)
	return storageErr(OpInsertAudit, err)
}

// GetAuditEntries returns the newest entries of a guild first
func (r *AuditRepository) GetAuditEntries(ctx context.Context, guildID string, limit int) ([]domain.AuditEntry, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, guild_id, actor_id, message, severity, created_at
		FROM audit_log
		WHERE guild_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`, guildID, limit)
	if err != nil {
		return nil, storageErr(OpGetAudit, err)
	}
	defer rows.Close()

	var entries []domain.AuditEntry
	for rows.Next() {
		var e domain.AuditEntry
		var severity string
		if err := rows.Scan(&e.ID, &e.GuildID, &e.ActorID, &e.Message, &severity, &e.CreatedAt); err != nil {
			return nil, storageErr(OpGetAudit, err)
		}
		e.Severity = domain.Severity(severity)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr(OpGetAudit, err)
	}
	return entries, nil
}

// DeleteAuditEntriesBefore removes entries older than cutoff
func (r *AuditRepository) DeleteAuditEntriesBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM audit_log WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, storageErr(OpDeleteAudit, err)
	}
	return tag.RowsAffected(), nil
}
