package handler

import (
	"net/http"
	"time"

	"github.com/osse101/WinLedger_Go/internal/multiplier"
)

// MultiplierRequest starts a guild multiplier
type MultiplierRequest struct {
	Amount      float64    `json:"amount" validate:"gte=1,lte=5"`
	ExpiresAt   *time.Time `json:"expires_at"`
	Description string     `json:"description" validate:"max=200"`
}

// ExpiryRequest moves or removes the expiry of the active multiplier
type ExpiryRequest struct {
	ExpiresAt *time.Time `json:"expires_at"`
}

// MultiplierResponse describes the active multiplier, if any
type MultiplierResponse struct {
	Active      bool       `json:"active"`
	Amount      float64    `json:"amount,omitempty"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
	Description string     `json:"description,omitempty"`
}

// HandleGetMultiplier returns the active multiplier of a guild
// @Summary Get multiplier
// @Tags multiplier
// @Produce json
// @Param guild path string true "Guild ID"
// @Success 200 {object} MultiplierResponse
// @Router /api/v1/guilds/{guild}/multiplier [get]
func HandleGetMultiplier(svc multiplier.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		guildID, ok := pathParam(w, r, "guild")
		if !ok {
			return
		}
		m, err := svc.Get(r.Context(), guildID)
		if err != nil {
			respondServiceError(w, r, "Get multiplier", err)
			return
		}
		if m == nil {
			respondJSON(w, http.StatusOK, MultiplierResponse{})
			return
		}
		respondJSON(w, http.StatusOK, MultiplierResponse{
			Active:      true,
			Amount:      m.Amount(),
			ExpiresAt:   m.ExpiresAt,
			Description: m.Description,
		})
	}
}

// HandleSetMultiplier starts a multiplier. Only one may be active at a time.
// @Summary Set multiplier
// @Tags multiplier
// @Accept json
// @Produce json
// @Param request body MultiplierRequest true "Multiplier"
// @Success 201 {object} MultiplierResponse
// @Failure 409 {object} ErrorResponse
// @Router /api/v1/guilds/{guild}/multiplier [post]
func HandleSetMultiplier(svc multiplier.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		guildID, ok := pathParam(w, r, "guild")
		if !ok {
			return
		}
		var req MultiplierRequest
		if err := DecodeAndValidateRequest(r, w, &req, "Set multiplier"); err != nil {
			return
		}
		m, err := svc.Set(r.Context(), guildID, req.Amount, req.ExpiresAt, req.Description)
		if err != nil {
			respondServiceError(w, r, "Set multiplier", err)
			return
		}
		respondJSON(w, http.StatusCreated, MultiplierResponse{
			Active:      true,
			Amount:      m.Amount(),
			ExpiresAt:   m.ExpiresAt,
			Description: m.Description,
		})
	}
}

// HandleSetMultiplierExpiry changes when the active multiplier ends
// @Summary Set multiplier expiry
// @Tags multiplier
// @Accept json
// @Produce json
// @Param request body ExpiryRequest true "Expiry, null for none"
// @Success 200 {object} SuccessResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/guilds/{guild}/multiplier/expiry [put]
func HandleSetMultiplierExpiry(svc multiplier.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		guildID, ok := pathParam(w, r, "guild")
		if !ok {
			return
		}
		var req ExpiryRequest
		if err := DecodeAndValidateRequest(r, w, &req, "Set multiplier expiry"); err != nil {
			return
		}
		if err := svc.SetExpiry(r.Context(), guildID, req.ExpiresAt); err != nil {
			respondServiceError(w, r, "Set multiplier expiry", err)
			return
		}
		respondJSON(w, http.StatusOK, SuccessResponse{Message: MsgConfigUpdated})
	}
}

// HandleClearMultiplier ends the active multiplier
// @Summary Clear multiplier
// @Tags multiplier
// @Produce json
// @Success 200 {object} SuccessResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/guilds/{guild}/multiplier [delete]
func HandleClearMultiplier(svc multiplier.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		guildID, ok := pathParam(w, r, "guild")
		if !ok {
			return
		}
		if err := svc.Clear(r.Context(), guildID); err != nil {
			respondServiceError(w, r, "Clear multiplier", err)
			return
		}
		respondJSON(w, http.StatusOK, SuccessResponse{Message: MsgMultiplierCleared})
	}
}
