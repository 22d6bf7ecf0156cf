package memory

import (
	"context"
	"time"

	"github.com/osse101/WinLedger_Go/internal/domain"
)

// InsertAuditEntry appends an entry and assigns its id
func (s *Store) InsertAuditEntry(ctx context.Context, entry *domain.AuditEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextAudit++
	entry.ID = s.nextAudit
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = s.now()
	}
	s.audit = append(s.audit, *entry)
	return nil
}

// GetAuditEntries returns the newest entries of a guild first
func (s *Store) GetAuditEntries(ctx context.Context, guildID string, limit int) ([]domain.AuditEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.AuditEntry
	for i := len(s.audit) - 1; i >= 0; i-- {
		if s.audit[i].GuildID != guildID {
			continue
		}
		out = append(out, s.audit[i])
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

// DeleteAuditEntriesBefore removes entries created before cutoff
func (s *Store) DeleteAuditEntriesBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.audit[:0]
	var deleted int64
	for _, e := range s.audit {
		if e.CreatedAt.Before(cutoff) {
			deleted++
			continue
		}
		kept = append(kept, e)
	}
	s.audit = kept
	return deleted, nil
}
