package handler

import (
	"context"
	"net/http"

	"golang.org/x/sync/errgroup"

	"github.com/osse101/WinLedger_Go/internal/domain"
	"github.com/osse101/WinLedger_Go/internal/leaderboard"
	"github.com/osse101/WinLedger_Go/internal/ledger"
	"github.com/osse101/WinLedger_Go/internal/logger"
)

// defaultHistoryDays is the history window used when days is not given
const defaultHistoryDays = 7

// RewardInspector exposes the reward state of a member
type RewardInspector interface {
	GetProgress(ctx context.Context, guildID, memberID string) ([]domain.Progress, error)
	RefreshRoles(ctx context.Context, guildID, memberID string) ([]domain.RoleOp, error)
}

// Multipliers scales raw win points by the active guild multiplier
type Multipliers interface {
	Resolve(ctx context.Context, guildID string, raw int64) (int64, *domain.Multiplier, error)
}

// MemberResponse is the counters and ranks of one member over a window
type MemberResponse struct {
	GuildID    string `json:"guild_id"`
	MemberID   string `json:"member_id"`
	Window     string `json:"window"`
	Points     int64  `json:"points"`
	Wins       int64  `json:"wins"`
	PointsRank int    `json:"points_rank"`
	WinsRank   int    `json:"wins_rank"`
}

// AdjustRequest changes one metric of a member by a signed amount
type AdjustRequest struct {
	Metric string  `json:"metric" validate:"required,metric"`
	Amount float64 `json:"amount" validate:"required"`
}

// WinRequest registers or removes a win worth Points
type WinRequest struct {
	Points          float64 `json:"points" validate:"gt=0"`
	ApplyMultiplier bool    `json:"apply_multiplier"`
}

// WinResponse is a ledger result together with the multiplier that scaled it
type WinResponse struct {
	*ledger.Result
	Points     int64              `json:"points"`
	Multiplier *domain.Multiplier `json:"multiplier,omitempty"`
}

// HandleGetMember returns the counters and ranks of a member
// @Summary Get member counters
// @Tags members
// @Produce json
// @Param guild path string true "Guild ID"
// @Param member path string true "Member ID"
// @Param days query int false "Rolling window in days, all-time when omitted"
// @Success 200 {object} MemberResponse
// @Failure 400 {object} ErrorResponse
// @Router /api/v1/guilds/{guild}/members/{member} [get]
func HandleGetMember(ledgerSvc ledger.Service, board leaderboard.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		guildID, ok := pathParam(w, r, "guild")
		if !ok {
			return
		}
		memberID, ok := pathParam(w, r, "member")
		if !ok {
			return
		}
		window, ok := getWindow(w, r)
		if !ok {
			return
		}

		var (
			counter              domain.Counter
			pointsRank, winsRank int
		)
		g, ctx := errgroup.WithContext(r.Context())
		g.Go(func() (err error) {
			if window.IsAllTime() {
				counter, err = ledgerSvc.GetCumulative(ctx, guildID, memberID)
			} else {
				counter, err = ledgerSvc.GetDailyAggregate(ctx, guildID, memberID, window)
			}
			return err
		})
		g.Go(func() (err error) {
			pointsRank, err = board.GetRank(ctx, guildID, memberID, domain.MetricPoints, window)
			return err
		})
		g.Go(func() (err error) {
			winsRank, err = board.GetRank(ctx, guildID, memberID, domain.MetricWins, window)
			return err
		})
		if err := g.Wait(); err != nil {
			respondServiceError(w, r, "Get member", err)
			return
		}

		resp := MemberResponse{
			GuildID:    guildID,
			MemberID:   memberID,
			Window:     window.String(),
			Points:     counter.Points,
			Wins:       counter.Wins,
			PointsRank: pointsRank,
			WinsRank:   winsRank,
		}
		respondJSON(w, http.StatusOK, resp)
	}
}

// HandleGetMemberHistory returns one counter per day of the window, oldest first
// @Summary Get member daily history
// @Tags members
// @Produce json
// @Param guild path string true "Guild ID"
// @Param member path string true "Member ID"
// @Param days query int false "Rolling window in days" default(7)
// @Success 200 {array} domain.DailyCounter
// @Router /api/v1/guilds/{guild}/members/{member}/history [get]
func HandleGetMemberHistory(ledgerSvc ledger.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		guildID, ok := pathParam(w, r, "guild")
		if !ok {
			return
		}
		memberID, ok := pathParam(w, r, "member")
		if !ok {
			return
		}
		days, ok := getIntQueryParam(w, r, "days", defaultHistoryDays)
		if !ok {
			return
		}

		history, err := ledgerSvc.GetDailyHistory(r.Context(), guildID, memberID, domain.LastDays(days))
		if err != nil {
			respondServiceError(w, r, "Get member history", err)
			return
		}
		respondJSON(w, http.StatusOK, history)
	}
}

// HandleAdjustMember adds a signed amount to one metric of a member
// @Summary Adjust member points or wins
// @Tags members
// @Accept json
// @Produce json
// @Param request body AdjustRequest true "Adjustment"
// @Success 200 {object} ledger.Result
// @Failure 400 {object} ErrorResponse
// @Router /api/v1/guilds/{guild}/members/{member}/adjust [post]
func HandleAdjustMember(ledgerSvc ledger.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		guildID, ok := pathParam(w, r, "guild")
		if !ok {
			return
		}
		memberID, ok := pathParam(w, r, "member")
		if !ok {
			return
		}
		var req AdjustRequest
		if err := DecodeAndValidateRequest(r, w, &req, "Adjust member"); err != nil {
			return
		}

		delta, err := ledger.DeltaFromFloat(req.Amount)
		if err != nil {
			respondServiceError(w, r, "Adjust member", err)
			return
		}
		metric, _ := domain.ParseMetric(req.Metric)

		var res *ledger.Result
		if metric == domain.MetricWins {
			res, err = ledgerSvc.ModifyWins(r.Context(), guildID, memberID, delta)
		} else {
			res, err = ledgerSvc.ModifyPoints(r.Context(), guildID, memberID, delta)
		}
		if err != nil {
			respondServiceError(w, r, "Adjust member", err)
			return
		}
		logger.FromContext(r.Context()).Info(LogMsgMemberAdjusted,
			"guild_id", guildID, "member_id", memberID, "metric", metric, "delta", delta, "actor_id", actorID(r))
		respondJSON(w, http.StatusOK, res)
	}
}

// HandleRegisterWin records a win, optionally scaled by the guild multiplier
// @Summary Register a win
// @Tags members
// @Accept json
// @Produce json
// @Param request body WinRequest true "Win"
// @Success 201 {object} WinResponse
// @Failure 400 {object} ErrorResponse
// @Router /api/v1/guilds/{guild}/members/{member}/wins [post]
func HandleRegisterWin(ledgerSvc ledger.Service, multipliers Multipliers) http.HandlerFunc {
	return handleWin(multipliers, "Register win", http.StatusCreated, ledgerSvc.RegisterWin)
}

// HandleRemoveWin reverts a win. The multiplier, if requested, is resolved
// against the current guild multiplier.
// @Summary Remove a win
// @Tags members
// @Accept json
// @Produce json
// @Param request body WinRequest true "Win"
// @Success 200 {object} WinResponse
// @Failure 400 {object} ErrorResponse
// @Router /api/v1/guilds/{guild}/members/{member}/wins/remove [post]
func HandleRemoveWin(ledgerSvc ledger.Service, multipliers Multipliers) http.HandlerFunc {
	return handleWin(multipliers, "Remove win", http.StatusOK, ledgerSvc.RemoveWin)
}

func handleWin(
	multipliers Multipliers,
	opName string,
	status int,
	action func(ctx context.Context, guildID, memberID string, points int64) (*ledger.Result, error),
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		guildID, ok := pathParam(w, r, "guild")
		if !ok {
			return
		}
		memberID, ok := pathParam(w, r, "member")
		if !ok {
			return
		}
		var req WinRequest
		if err := DecodeAndValidateRequest(r, w, &req, opName); err != nil {
			return
		}

		points, err := ledger.DeltaFromFloat(req.Points)
		if err != nil {
			respondServiceError(w, r, opName, err)
			return
		}
		var m *domain.Multiplier
		if req.ApplyMultiplier && multipliers != nil {
			if points, m, err = multipliers.Resolve(r.Context(), guildID, points); err != nil {
				respondServiceError(w, r, opName, err)
				return
			}
		}

		res, err := action(r.Context(), guildID, memberID, points)
		if err != nil {
			respondServiceError(w, r, opName, err)
			return
		}
		respondJSON(w, status, WinResponse{Result: res, Points: points, Multiplier: m})
	}
}

// HandleForgetMember deletes every counter of a member
// @Summary Remove member data
// @Tags members
// @Produce json
// @Success 200 {object} SuccessResponse
// @Router /api/v1/guilds/{guild}/members/{member} [delete]
func HandleForgetMember(ledgerSvc ledger.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		guildID, ok := pathParam(w, r, "guild")
		if !ok {
			return
		}
		memberID, ok := pathParam(w, r, "member")
		if !ok {
			return
		}
		if err := ledgerSvc.ForgetMember(r.Context(), guildID, memberID); err != nil {
			respondServiceError(w, r, "Forget member", err)
			return
		}
		respondJSON(w, http.StatusOK, SuccessResponse{Message: MsgMemberForgotten})
	}
}

// HandleGetProgress returns the nearest unreached reward per metric
// @Summary Get reward progress
// @Tags members
// @Produce json
// @Success 200 {array} domain.Progress
// @Router /api/v1/guilds/{guild}/members/{member}/progress [get]
func HandleGetProgress(rewards RewardInspector) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		guildID, ok := pathParam(w, r, "guild")
		if !ok {
			return
		}
		memberID, ok := pathParam(w, r, "member")
		if !ok {
			return
		}
		progress, err := rewards.GetProgress(r.Context(), guildID, memberID)
		if err != nil {
			respondServiceError(w, r, "Get progress", err)
			return
		}
		if progress == nil {
			progress = []domain.Progress{}
		}
		respondJSON(w, http.StatusOK, progress)
	}
}

// HandleRefreshRoles reconciles the reward roles of a member with its totals
// @Summary Refresh reward roles
// @Tags members
// @Produce json
// @Success 200 {array} domain.RoleOp
// @Router /api/v1/guilds/{guild}/members/{member}/roles/refresh [post]
func HandleRefreshRoles(rewards RewardInspector) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		guildID, ok := pathParam(w, r, "guild")
		if !ok {
			return
		}
		memberID, ok := pathParam(w, r, "member")
		if !ok {
			return
		}
		ops, err := rewards.RefreshRoles(r.Context(), guildID, memberID)
		if err != nil {
			respondServiceError(w, r, "Refresh roles", err)
			return
		}
		if ops == nil {
			ops = []domain.RoleOp{}
		}
		respondJSON(w, http.StatusOK, ops)
	}
}
