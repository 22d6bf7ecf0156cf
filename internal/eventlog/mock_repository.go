package eventlog

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/osse101/WinLedger_Go/internal/domain"
	"github.com/osse101/WinLedger_Go/internal/repository"
)

var _ repository.AuditLog = (*MockRepository)(nil)

// MockRepository is a mock implementation of repository.AuditLog
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) InsertAuditEntry(ctx context.Context, entry *domain.AuditEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockRepository) GetAuditEntries(ctx context.Context, guildID string, limit int) ([]domain.AuditEntry, error) {
	args := m.Called(ctx, guildID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.AuditEntry), args.Error(1)
}

func (m *MockRepository) DeleteAuditEntriesBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

// MockMirror is a mock implementation of Mirror
type MockMirror struct {
	mock.Mock
}

func (m *MockMirror) MirrorAction(ctx context.Context, entry domain.AuditEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}
