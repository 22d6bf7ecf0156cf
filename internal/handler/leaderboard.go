package handler

import (
	"net/http"

	"github.com/osse101/WinLedger_Go/internal/domain"
	"github.com/osse101/WinLedger_Go/internal/leaderboard"
	"github.com/osse101/WinLedger_Go/internal/ledger"
)

// TotalsResponse is the sum of every member counter of a guild
type TotalsResponse struct {
	GuildID string `json:"guild_id"`
	domain.Counter
}

// HandleGetLeaderboard returns one page of the guild ranking
// @Summary Get leaderboard page
// @Tags leaderboard
// @Produce json
// @Param guild path string true "Guild ID"
// @Param metric query string false "points or wins" default(points)
// @Param days query int false "Rolling window in days, all-time when omitted"
// @Param page query int false "1-based page, clamped into range" default(1)
// @Param page_size query int false "Entries per page" default(10)
// @Success 200 {object} leaderboard.Page
// @Failure 400 {object} ErrorResponse
// @Failure 504 {object} ErrorResponse
// @Router /api/v1/guilds/{guild}/leaderboard [get]
func HandleGetLeaderboard(board leaderboard.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		guildID, ok := pathParam(w, r, "guild")
		if !ok {
			return
		}
		metric, ok := getMetric(w, r)
		if !ok {
			return
		}
		window, ok := getWindow(w, r)
		if !ok {
			return
		}
		page, ok := getIntQueryParam(w, r, "page", 1)
		if !ok {
			return
		}
		pageSize, ok := getIntQueryParam(w, r, "page_size", domain.DefaultPageSize)
		if !ok {
			return
		}

		result, err := board.GetPage(r.Context(), guildID, metric, window, page, pageSize)
		if err != nil {
			respondServiceError(w, r, "Get leaderboard", err)
			return
		}
		respondJSON(w, http.StatusOK, result)
	}
}

// HandleGetGuildTotals returns the guild-wide points and wins
// @Summary Get guild totals
// @Tags leaderboard
// @Produce json
// @Param guild path string true "Guild ID"
// @Success 200 {object} TotalsResponse
// @Router /api/v1/guilds/{guild}/totals [get]
func HandleGetGuildTotals(ledgerSvc ledger.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		guildID, ok := pathParam(w, r, "guild")
		if !ok {
			return
		}
		totals, err := ledgerSvc.GetGuildTotals(r.Context(), guildID)
		if err != nil {
			respondServiceError(w, r, "Get guild totals", err)
			return
		}
		respondJSON(w, http.StatusOK, TotalsResponse{GuildID: guildID, Counter: totals})
	}
}
