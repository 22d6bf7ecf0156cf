package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/osse101/WinLedger_Go/internal/database/memory"
	"github.com/osse101/WinLedger_Go/internal/domain"
	"github.com/osse101/WinLedger_Go/internal/eventlog"
	"github.com/osse101/WinLedger_Go/internal/guild"
	"github.com/osse101/WinLedger_Go/internal/ingest"
	"github.com/osse101/WinLedger_Go/internal/leaderboard"
	"github.com/osse101/WinLedger_Go/internal/ledger"
	"github.com/osse101/WinLedger_Go/internal/multiplier"
)

// services wires every service over one in-memory store
type services struct {
	store       *memory.Store
	ledger      ledger.Service
	board       leaderboard.Service
	guilds      guild.Service
	multipliers multiplier.Service
	audit       eventlog.Service
}

func newServices(t *testing.T) *services {
	t.Helper()
	store := memory.NewStore()
	guildSvc, err := guild.NewService(store, nil, nil)
	require.NoError(t, err)
	return &services{
		store:       store,
		ledger:      ledger.NewService(store, nil, nil),
		board:       leaderboard.NewService(store, 0),
		guilds:      guildSvc,
		multipliers: multiplier.NewService(store, nil),
		audit:       eventlog.NewService(store, nil),
	}
}

// serve routes a single request through a chi router so URL params resolve
func serve(h http.HandlerFunc, method, pattern, target string, body interface{}) *httptest.ResponseRecorder {
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		raw, _ := json.Marshal(b)
		reader = bytes.NewReader(raw)
	}

	r := chi.NewRouter()
	r.Method(method, pattern, h)
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set(HeaderActorID, "admin")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v))
	return v
}

type MockRewardInspector struct {
	mock.Mock
}

func (m *MockRewardInspector) GetProgress(ctx context.Context, guildID, memberID string) ([]domain.Progress, error) {
	args := m.Called(ctx, guildID, memberID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Progress), args.Error(1)
}

func (m *MockRewardInspector) RefreshRoles(ctx context.Context, guildID, memberID string) ([]domain.RoleOp, error) {
	args := m.Called(ctx, guildID, memberID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.RoleOp), args.Error(1)
}

type MockIngest struct {
	mock.Mock
}

func (m *MockIngest) Submit(ctx context.Context, guildID, token string) (*ingest.Outcome, error) {
	args := m.Called(ctx, guildID, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ingest.Outcome), args.Error(1)
}
