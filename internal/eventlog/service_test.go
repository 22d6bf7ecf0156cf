package eventlog

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/osse101/WinLedger_Go/internal/database/memory"
	"github.com/osse101/WinLedger_Go/internal/domain"
	"github.com/osse101/WinLedger_Go/internal/event"
)

// MockEventBus is a mock implementation of event.Bus
type MockEventBus struct {
	mock.Mock
}

func (m *MockEventBus) Publish(ctx context.Context, evt event.Event) error {
	args := m.Called(ctx, evt)
	return args.Error(0)
}

func (m *MockEventBus) Subscribe(eventType event.Type, handler event.Handler) {
	m.Called(eventType, handler)
}

func TestService_Subscribe(t *testing.T) {
	svc := NewService(new(MockRepository), nil)
	mockBus := new(MockEventBus)

	for _, et := range []event.Type{
		event.GuildConfigChanged,
		event.GuildRemoved,
		event.MemberForgotten,
		event.MultiplierSet,
		event.MultiplierCleared,
		event.RoleApplicationFailed,
	} {
		mockBus.On("Subscribe", et, mock.Anything).Return().Once()
	}

	svc.Subscribe(mockBus)

	mockBus.AssertExpectations(t)
	mockBus.AssertNotCalled(t, "Subscribe", event.LedgerMutated, mock.Anything)
}

func TestService_LogAction(t *testing.T) {
	mockRepo := new(MockRepository)
	mockMirror := new(MockMirror)
	svc := NewService(mockRepo, mockMirror)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	NewTestHooks(svc).SetNow(now)
	ctx := context.Background()

	want := domain.AuditEntry{
		GuildID:   "g1",
		ActorID:   "admin",
		Message:   "Hierarchy mode set to highest",
		Severity:  domain.SeverityChange,
		CreatedAt: now,
	}
	mockRepo.On("InsertAuditEntry", ctx, &want).Return(nil)
	mockMirror.On("MirrorAction", ctx, want).Return(errors.New("channel gone"))

	err := svc.LogAction(ctx, "g1", "admin", "Hierarchy mode set to highest", domain.SeverityChange)

	assert.NoError(t, err, "mirror failures are not returned")
	mockRepo.AssertExpectations(t)
	mockMirror.AssertExpectations(t)
}

func TestService_LogAction_Errors(t *testing.T) {
	mockRepo := new(MockRepository)
	mockMirror := new(MockMirror)
	svc := NewService(mockRepo, mockMirror)
	ctx := context.Background()

	err := svc.LogAction(ctx, "", "admin", "x", domain.SeverityInfo)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	dbErr := errors.New("connection refused")
	mockRepo.On("InsertAuditEntry", ctx, mock.Anything).Return(dbErr)
	err = svc.LogAction(ctx, "g1", "admin", "x", "")
	assert.ErrorIs(t, err, dbErr)
	mockMirror.AssertNotCalled(t, "MirrorAction", mock.Anything, mock.Anything)
}

func TestService_HandleEvent(t *testing.T) {
	store := memory.NewStore()
	svc := NewService(store, nil)
	hooks := NewTestHooks(svc)
	ctx := context.Background()

	require.NoError(t, hooks.HandleEvent(ctx, event.NewAdminActionEvent(event.GuildRemoved, "g1", "admin", "Removed all guild data")))
	require.NoError(t, hooks.HandleEvent(ctx, event.NewRoleApplicationFailedEvent(&domain.RoleApplicationError{
		GuildID: "g1", MemberID: "m1", RoleID: "r1", Action: domain.TransitionAdded, Err: errors.New("missing permissions"),
	})))
	require.NoError(t, hooks.HandleEvent(ctx, event.Event{Type: event.MultiplierSet, Payload: "not a payload"}))
	require.NoError(t, hooks.HandleEvent(ctx, event.Event{Type: event.LedgerMutated}))

	entries, err := svc.GetEntries(ctx, "g1", 0)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, domain.SeverityWarning, entries[0].Severity)
	assert.Equal(t, "Role r1 was not added for member m1: missing permissions", entries[0].Message)
	assert.Equal(t, domain.SeverityDanger, entries[1].Severity)
	assert.Equal(t, "admin", entries[1].ActorID)
}

func TestService_HandleEvent_FromBus(t *testing.T) {
	store := memory.NewStore()
	svc := NewService(store, nil)
	bus := event.NewMemoryBus()
	svc.Subscribe(bus)
	ctx := context.Background()

	require.NoError(t, bus.Publish(ctx, event.NewAdminActionEvent(event.MemberForgotten, "g1", "m1", "Removed data of m1")))

	entries, err := svc.GetEntries(ctx, "g1", 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Removed data of m1", entries[0].Message)
}

func TestService_CleanupOldEntries(t *testing.T) {
	mockRepo := new(MockRepository)
	svc := NewService(mockRepo, nil)
	now := time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC)
	NewTestHooks(svc).SetNow(now)
	ctx := context.Background()

	mockRepo.On("DeleteAuditEntriesBefore", ctx, now.AddDate(0, 0, -10)).Return(int64(5), nil)

	count, err := svc.CleanupOldEntries(ctx, 10)
	assert.NoError(t, err)
	assert.Equal(t, int64(5), count)
	mockRepo.AssertExpectations(t)

	_, err = svc.CleanupOldEntries(ctx, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
