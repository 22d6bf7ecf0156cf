package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/osse101/WinLedger_Go/internal/domain"
)

const memberPattern = "/guilds/{guild}/members/{member}"

func TestHandleGetMember(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()
	_, err := s.ledger.RegisterWin(ctx, "g1", "m1", 10)
	require.NoError(t, err)
	_, err = s.ledger.RegisterWin(ctx, "g1", "m2", 20)
	require.NoError(t, err)

	h := HandleGetMember(s.ledger, s.board)

	t.Run("all time", func(t *testing.T) {
		w := serve(h, http.MethodGet, memberPattern, "/guilds/g1/members/m1", nil)

		require.Equal(t, http.StatusOK, w.Code)
		resp := decode[MemberResponse](t, w)
		assert.Equal(t, "all-time", resp.Window)
		assert.Equal(t, int64(10), resp.Points)
		assert.Equal(t, int64(1), resp.Wins)
		assert.Equal(t, 2, resp.PointsRank)
		assert.Equal(t, 1, resp.WinsRank)
	})

	t.Run("rolling window", func(t *testing.T) {
		w := serve(h, http.MethodGet, memberPattern, "/guilds/g1/members/m2?days=7", nil)

		require.Equal(t, http.StatusOK, w.Code)
		resp := decode[MemberResponse](t, w)
		assert.Equal(t, "7d", resp.Window)
		assert.Equal(t, int64(20), resp.Points)
		assert.Equal(t, 1, resp.PointsRank)
	})

	t.Run("unknown member is zero", func(t *testing.T) {
		w := serve(h, http.MethodGet, memberPattern, "/guilds/g1/members/m9", nil)

		require.Equal(t, http.StatusOK, w.Code)
		resp := decode[MemberResponse](t, w)
		assert.Zero(t, resp.Points)
		assert.Equal(t, 3, resp.PointsRank)
	})

	t.Run("window out of range", func(t *testing.T) {
		w := serve(h, http.MethodGet, memberPattern, "/guilds/g1/members/m1?days=45", nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, ErrMsgInvalidWindowError, decode[ErrorResponse](t, w).Error)
	})

	t.Run("days not a number", func(t *testing.T) {
		w := serve(h, http.MethodGet, memberPattern, "/guilds/g1/members/m1?days=week", nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestHandleGetMemberHistory(t *testing.T) {
	s := newServices(t)
	_, err := s.ledger.ModifyPoints(context.Background(), "g1", "m1", 4)
	require.NoError(t, err)
	h := HandleGetMemberHistory(s.ledger)
	pattern := memberPattern + "/history"

	w := serve(h, http.MethodGet, pattern, "/guilds/g1/members/m1/history", nil)
	require.Equal(t, http.StatusOK, w.Code)
	history := decode[[]domain.DailyCounter](t, w)
	require.Len(t, history, defaultHistoryDays+1)
	assert.Equal(t, int64(4), history[len(history)-1].Points)

	w = serve(h, http.MethodGet, pattern, "/guilds/g1/members/m1/history?days=0", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleAdjustMember(t *testing.T) {
	s := newServices(t)
	_, err := s.ledger.ModifyPoints(context.Background(), "g1", "m1", 10)
	require.NoError(t, err)
	h := HandleAdjustMember(s.ledger)
	pattern := memberPattern + "/adjust"
	target := "/guilds/g1/members/m1/adjust"

	tests := []struct {
		name       string
		body       interface{}
		wantStatus int
		wantAfter  domain.Counter
		wantField  string
	}{
		{
			name:       "subtract rounded points",
			body:       AdjustRequest{Metric: "points", Amount: -5.4},
			wantStatus: http.StatusOK,
			wantAfter:  domain.Counter{Points: 5},
		},
		{
			name:       "add wins",
			body:       AdjustRequest{Metric: "Wins", Amount: 2},
			wantStatus: http.StatusOK,
			wantAfter:  domain.Counter{Points: 5, Wins: 2},
		},
		{
			name:       "decrement clamps at zero",
			body:       AdjustRequest{Metric: "wins", Amount: -10},
			wantStatus: http.StatusOK,
			wantAfter:  domain.Counter{Points: 5},
		},
		{
			name:       "unknown metric",
			body:       AdjustRequest{Metric: "xp", Amount: 1},
			wantStatus: http.StatusBadRequest,
			wantField:  "metric",
		},
		{
			name:       "missing amount",
			body:       map[string]string{"metric": "points"},
			wantStatus: http.StatusBadRequest,
			wantField:  "amount",
		},
		{
			name:       "malformed body",
			body:       "{",
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(h, http.MethodPost, pattern, target, tt.body)

			require.Equal(t, tt.wantStatus, w.Code, w.Body.String())
			if tt.wantStatus == http.StatusOK {
				res := decode[struct {
					After domain.Counter `json:"after"`
				}](t, w)
				assert.Equal(t, tt.wantAfter, res.After)
			}
			if tt.wantField != "" {
				assert.Contains(t, decode[ValidationErrorResponse](t, w).Fields, tt.wantField)
			}
		})
	}
}

func TestHandleRegisterWin(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()
	_, err := s.multipliers.Set(ctx, "g1", 1.5, nil, "weekend")
	require.NoError(t, err)
	h := HandleRegisterWin(s.ledger, s.multipliers)
	pattern := memberPattern + "/wins"

	w := serve(h, http.MethodPost, pattern, "/guilds/g1/members/m1/wins", WinRequest{Points: 10, ApplyMultiplier: true})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	resp := decode[WinResponse](t, w)
	assert.Equal(t, int64(15), resp.Points)
	require.NotNil(t, resp.Multiplier)
	assert.Equal(t, 150, resp.Multiplier.Hundredths)
	assert.Equal(t, domain.Counter{Points: 15, Wins: 1}, resp.After)

	w = serve(h, http.MethodPost, pattern, "/guilds/g1/members/m1/wins", WinRequest{Points: 10})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, domain.Counter{Points: 25, Wins: 2}, decode[WinResponse](t, w).After)

	w = serve(h, http.MethodPost, pattern, "/guilds/g1/members/m1/wins", WinRequest{Points: 0})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleRemoveWin(t *testing.T) {
	s := newServices(t)
	_, err := s.ledger.RegisterWin(context.Background(), "g1", "m1", 5)
	require.NoError(t, err)
	h := HandleRemoveWin(s.ledger, s.multipliers)

	w := serve(h, http.MethodPost, memberPattern+"/wins/remove", "/guilds/g1/members/m1/wins/remove", WinRequest{Points: 8})

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decode[WinResponse](t, w)
	assert.Equal(t, domain.Counter{}, resp.After)
	assert.Nil(t, resp.Multiplier)
}

func TestHandleForgetMember(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()
	_, err := s.ledger.RegisterWin(ctx, "g1", "m1", 5)
	require.NoError(t, err)

	w := serve(HandleForgetMember(s.ledger), http.MethodDelete, memberPattern, "/guilds/g1/members/m1", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, MsgMemberForgotten, decode[SuccessResponse](t, w).Message)
	c, err := s.ledger.GetCumulative(ctx, "g1", "m1")
	require.NoError(t, err)
	assert.Equal(t, domain.Counter{}, c)
}

func TestHandleGetProgress(t *testing.T) {
	rewards := &MockRewardInspector{}
	rewards.On("GetProgress", mock.Anything, "g1", "m1").
		Return([]domain.Progress{{RoleID: "r2", Metric: domain.MetricPoints, Has: 12, Needs: 20}}, nil).Once()
	rewards.On("GetProgress", mock.Anything, "g1", "m2").Return(nil, nil).Once()
	h := HandleGetProgress(rewards)
	pattern := memberPattern + "/progress"

	w := serve(h, http.MethodGet, pattern, "/guilds/g1/members/m1/progress", nil)
	require.Equal(t, http.StatusOK, w.Code)
	progress := decode[[]domain.Progress](t, w)
	require.Len(t, progress, 1)
	assert.Equal(t, int64(20), progress[0].Needs)

	w = serve(h, http.MethodGet, pattern, "/guilds/g1/members/m2/progress", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
	rewards.AssertExpectations(t)
}

func TestHandleRefreshRoles(t *testing.T) {
	rewards := &MockRewardInspector{}
	rewards.On("RefreshRoles", mock.Anything, "g1", "m1").
		Return([]domain.RoleOp{{Kind: domain.RoleGrant, RoleID: "r1"}}, nil).Once()
	rewards.On("RefreshRoles", mock.Anything, "g1", "m2").
		Return(nil, &domain.StorageError{Op: "read", Err: errors.New("down")}).Once()
	h := HandleRefreshRoles(rewards)
	pattern := memberPattern + "/roles/refresh"

	w := serve(h, http.MethodPost, pattern, "/guilds/g1/members/m1/roles/refresh", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "r1", decode[[]domain.RoleOp](t, w)[0].RoleID)

	w = serve(h, http.MethodPost, pattern, "/guilds/g1/members/m2/roles/refresh", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, ErrMsgStorageError, decode[ErrorResponse](t, w).Error)
	rewards.AssertExpectations(t)
}
