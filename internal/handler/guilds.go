package handler

import (
	"net/http"

	"github.com/osse101/WinLedger_Go/internal/domain"
	"github.com/osse101/WinLedger_Go/internal/eventlog"
	"github.com/osse101/WinLedger_Go/internal/guild"
)

// RewardsRequest replaces the reward ladder of a guild
type RewardsRequest struct {
	Rewards []domain.RewardDefinition `json:"rewards" validate:"dive"`
}

// HierarchyRequest sets the hierarchy mode of a guild
type HierarchyRequest struct {
	Mode string `json:"mode" validate:"required,hierarchy"`
}

// AutoPointsRequest toggles automatic points from game results
type AutoPointsRequest struct {
	Enabled bool `json:"enabled"`
}

// HandleGetGuildConfig returns the configuration of a guild
// @Summary Get guild configuration
// @Tags guilds
// @Produce json
// @Param guild path string true "Guild ID"
// @Success 200 {object} domain.GuildConfig
// @Router /api/v1/guilds/{guild}/config [get]
func HandleGetGuildConfig(svc guild.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		guildID, ok := pathParam(w, r, "guild")
		if !ok {
			return
		}
		cfg, err := svc.GetConfig(r.Context(), guildID)
		if err != nil {
			respondServiceError(w, r, "Get guild config", err)
			return
		}
		respondJSON(w, http.StatusOK, cfg)
	}
}

// HandleSetRewards replaces the reward ladder of a guild
// @Summary Replace reward ladder
// @Tags guilds
// @Accept json
// @Produce json
// @Param request body RewardsRequest true "Rewards"
// @Success 200 {object} SuccessResponse
// @Failure 400 {object} ErrorResponse
// @Router /api/v1/guilds/{guild}/rewards [put]
func HandleSetRewards(svc guild.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		guildID, ok := pathParam(w, r, "guild")
		if !ok {
			return
		}
		var req RewardsRequest
		if err := DecodeAndValidateRequest(r, w, &req, "Set rewards"); err != nil {
			return
		}
		if err := svc.SetRewards(r.Context(), guildID, actorID(r), req.Rewards); err != nil {
			respondServiceError(w, r, "Set rewards", err)
			return
		}
		respondJSON(w, http.StatusOK, SuccessResponse{Message: MsgConfigUpdated})
	}
}

// HandleAddReward appends one reward to the ladder
// @Summary Add reward
// @Tags guilds
// @Accept json
// @Produce json
// @Param request body domain.RewardDefinition true "Reward"
// @Success 201 {object} SuccessResponse
// @Failure 400 {object} ErrorResponse
// @Router /api/v1/guilds/{guild}/rewards [post]
func HandleAddReward(svc guild.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		guildID, ok := pathParam(w, r, "guild")
		if !ok {
			return
		}
		var req domain.RewardDefinition
		if err := DecodeAndValidateRequest(r, w, &req, "Add reward"); err != nil {
			return
		}
		if err := svc.AddReward(r.Context(), guildID, actorID(r), req); err != nil {
			respondServiceError(w, r, "Add reward", err)
			return
		}
		respondJSON(w, http.StatusCreated, SuccessResponse{Message: MsgConfigUpdated})
	}
}

// HandleRemoveReward drops the reward granting a role
// @Summary Remove reward
// @Tags guilds
// @Produce json
// @Param guild path string true "Guild ID"
// @Param role path string true "Role ID"
// @Success 200 {object} SuccessResponse
// @Router /api/v1/guilds/{guild}/rewards/{role} [delete]
func HandleRemoveReward(svc guild.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		guildID, ok := pathParam(w, r, "guild")
		if !ok {
			return
		}
		roleID, ok := pathParam(w, r, "role")
		if !ok {
			return
		}
		if err := svc.RemoveReward(r.Context(), guildID, actorID(r), roleID); err != nil {
			respondServiceError(w, r, "Remove reward", err)
			return
		}
		respondJSON(w, http.StatusOK, SuccessResponse{Message: MsgConfigUpdated})
	}
}

// HandleSetHierarchy sets whether members keep every reward or only the highest
// @Summary Set hierarchy mode
// @Tags guilds
// @Accept json
// @Produce json
// @Param request body HierarchyRequest true "Mode"
// @Success 200 {object} SuccessResponse
// @Router /api/v1/guilds/{guild}/hierarchy [put]
func HandleSetHierarchy(svc guild.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		guildID, ok := pathParam(w, r, "guild")
		if !ok {
			return
		}
		var req HierarchyRequest
		if err := DecodeAndValidateRequest(r, w, &req, "Set hierarchy"); err != nil {
			return
		}
		if err := svc.SetHierarchyMode(r.Context(), guildID, actorID(r), domain.HierarchyMode(req.Mode)); err != nil {
			respondServiceError(w, r, "Set hierarchy", err)
			return
		}
		respondJSON(w, http.StatusOK, SuccessResponse{Message: MsgConfigUpdated})
	}
}

// HandleSetAutoPoints toggles game result ingestion for a guild
// @Summary Set automatic points
// @Tags guilds
// @Accept json
// @Produce json
// @Param request body AutoPointsRequest true "Flag"
// @Success 200 {object} SuccessResponse
// @Router /api/v1/guilds/{guild}/auto-points [put]
func HandleSetAutoPoints(svc guild.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		guildID, ok := pathParam(w, r, "guild")
		if !ok {
			return
		}
		var req AutoPointsRequest
		if err := DecodeAndValidateRequest(r, w, &req, "Set auto points"); err != nil {
			return
		}
		if err := svc.SetAutoPoints(r.Context(), guildID, actorID(r), req.Enabled); err != nil {
			respondServiceError(w, r, "Set auto points", err)
			return
		}
		respondJSON(w, http.StatusOK, SuccessResponse{Message: MsgConfigUpdated})
	}
}

// HandleRemoveGuild deletes the guild configuration and all of its counters
// @Summary Remove guild
// @Tags guilds
// @Produce json
// @Success 200 {object} SuccessResponse
// @Router /api/v1/guilds/{guild} [delete]
func HandleRemoveGuild(svc guild.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		guildID, ok := pathParam(w, r, "guild")
		if !ok {
			return
		}
		if err := svc.RemoveGuild(r.Context(), guildID, actorID(r)); err != nil {
			respondServiceError(w, r, "Remove guild", err)
			return
		}
		respondJSON(w, http.StatusOK, SuccessResponse{Message: MsgGuildRemoved})
	}
}

// HandleGetAuditLog returns the newest audit entries of a guild
// @Summary Get audit log
// @Tags guilds
// @Produce json
// @Param guild path string true "Guild ID"
// @Param limit query int false "Maximum entries" default(50)
// @Success 200 {array} domain.AuditEntry
// @Router /api/v1/guilds/{guild}/audit [get]
func HandleGetAuditLog(svc eventlog.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		guildID, ok := pathParam(w, r, "guild")
		if !ok {
			return
		}
		limit, ok := getIntQueryParam(w, r, "limit", eventlog.DefaultEntryLimit)
		if !ok {
			return
		}
		entries, err := svc.GetEntries(r.Context(), guildID, limit)
		if err != nil {
			respondServiceError(w, r, "Get audit log", err)
			return
		}
		if entries == nil {
			entries = []domain.AuditEntry{}
		}
		respondJSON(w, http.StatusOK, entries)
	}
}
