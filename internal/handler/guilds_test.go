package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osse101/WinLedger_Go/internal/domain"
)

func TestHandleGuildConfig(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()

	w := serve(HandleGetGuildConfig(s.guilds), http.MethodGet, "/guilds/{guild}/config", "/guilds/g1/config", nil)
	require.Equal(t, http.StatusOK, w.Code)
	cfg := decode[domain.GuildConfig](t, w)
	assert.Equal(t, domain.HierarchyKeepAll, cfg.HierarchyMode)
	assert.Empty(t, cfg.Rewards)

	rewards := RewardsRequest{Rewards: []domain.RewardDefinition{
		{RoleID: "r1", Metric: domain.MetricPoints, Threshold: 10},
		{RoleID: "r2", Metric: domain.MetricWins, Threshold: 3},
	}}
	w = serve(HandleSetRewards(s.guilds), http.MethodPut, "/guilds/{guild}/rewards", "/guilds/g1/rewards", rewards)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = serve(HandleAddReward(s.guilds), http.MethodPost, "/guilds/{guild}/rewards", "/guilds/g1/rewards",
		domain.RewardDefinition{RoleID: "r3", Metric: domain.MetricPoints, Threshold: 50})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = serve(HandleRemoveReward(s.guilds), http.MethodDelete, "/guilds/{guild}/rewards/{role}", "/guilds/g1/rewards/r1", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = serve(HandleSetHierarchy(s.guilds), http.MethodPut, "/guilds/{guild}/hierarchy", "/guilds/g1/hierarchy",
		HierarchyRequest{Mode: "highest"})
	require.Equal(t, http.StatusOK, w.Code)

	w = serve(HandleSetAutoPoints(s.guilds), http.MethodPut, "/guilds/{guild}/auto-points", "/guilds/g1/auto-points",
		AutoPointsRequest{Enabled: true})
	require.Equal(t, http.StatusOK, w.Code)

	got, err := s.guilds.GetConfig(ctx, "g1")
	require.NoError(t, err)
	assert.Equal(t, []domain.RewardDefinition{
		{RoleID: "r2", Metric: domain.MetricWins, Threshold: 3},
		{RoleID: "r3", Metric: domain.MetricPoints, Threshold: 50},
	}, got.Rewards)
	assert.Equal(t, domain.HierarchyKeepHighest, got.HierarchyMode)
	assert.True(t, got.AutoPoints)
}

func TestHandleGuildConfig_Rejections(t *testing.T) {
	s := newServices(t)

	tests := []struct {
		name       string
		h          http.HandlerFunc
		method     string
		pattern    string
		target     string
		body       interface{}
		wantStatus int
		wantError  string
	}{
		{
			name:    "duplicate threshold",
			h:       HandleSetRewards(s.guilds),
			method:  http.MethodPut,
			pattern: "/guilds/{guild}/rewards",
			target:  "/guilds/g1/rewards",
			body: RewardsRequest{Rewards: []domain.RewardDefinition{
				{RoleID: "r1", Metric: domain.MetricPoints, Threshold: 10},
				{RoleID: "r2", Metric: domain.MetricPoints, Threshold: 10},
			}},
			wantStatus: http.StatusBadRequest,
			wantError:  ErrMsgRewardDefinitionError,
		},
		{
			name:       "zero threshold",
			h:          HandleAddReward(s.guilds),
			method:     http.MethodPost,
			pattern:    "/guilds/{guild}/rewards",
			target:     "/guilds/g1/rewards",
			body:       domain.RewardDefinition{RoleID: "r1", Metric: domain.MetricWins},
			wantStatus: http.StatusBadRequest,
			wantError:  ErrMsgInvalidRequestSummary,
		},
		{
			name:       "unknown role",
			h:          HandleRemoveReward(s.guilds),
			method:     http.MethodDelete,
			pattern:    "/guilds/{guild}/rewards/{role}",
			target:     "/guilds/g1/rewards/nope",
			wantStatus: http.StatusBadRequest,
			wantError:  ErrMsgRewardDefinitionError,
		},
		{
			name:       "unknown hierarchy mode",
			h:          HandleSetHierarchy(s.guilds),
			method:     http.MethodPut,
			pattern:    "/guilds/{guild}/hierarchy",
			target:     "/guilds/g1/hierarchy",
			body:       HierarchyRequest{Mode: "lowest"},
			wantStatus: http.StatusBadRequest,
			wantError:  ErrMsgInvalidRequestSummary,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(tt.h, tt.method, tt.pattern, tt.target, tt.body)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantError, decode[ErrorResponse](t, w).Error)
		})
	}
}

func TestHandleRemoveGuild(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()
	require.NoError(t, s.guilds.SetAutoPoints(ctx, "g1", "admin", true))
	_, err := s.ledger.RegisterWin(ctx, "g1", "m1", 5)
	require.NoError(t, err)

	w := serve(HandleRemoveGuild(s.guilds), http.MethodDelete, "/guilds/{guild}", "/guilds/g1", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, MsgGuildRemoved, decode[SuccessResponse](t, w).Message)
	c, err := s.ledger.GetCumulative(ctx, "g1", "m1")
	require.NoError(t, err)
	assert.Equal(t, domain.Counter{}, c)
}

func TestHandleGetAuditLog(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()
	require.NoError(t, s.audit.LogAction(ctx, "g1", "admin", "first", domain.SeverityInfo))
	require.NoError(t, s.audit.LogAction(ctx, "g1", "admin", "second", domain.SeverityChange))
	require.NoError(t, s.audit.LogAction(ctx, "g2", "admin", "elsewhere", domain.SeverityInfo))
	h := HandleGetAuditLog(s.audit)

	w := serve(h, http.MethodGet, "/guilds/{guild}/audit", "/guilds/g1/audit?limit=1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	entries := decode[[]domain.AuditEntry](t, w)
	require.Len(t, entries, 1)
	assert.Equal(t, "second", entries[0].Message)

	w = serve(h, http.MethodGet, "/guilds/{guild}/audit", "/guilds/g3/audit", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}
