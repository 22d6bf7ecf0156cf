package handler

import (
	"io"
	"net/http"
	"strings"

	"github.com/osse101/WinLedger_Go/internal/ingest"
	"github.com/osse101/WinLedger_Go/internal/logger"
)

// maxTokenBytes bounds the size of a posted result token
const maxTokenBytes = 16 << 10

// HandleSubmitResult accepts a signed game result. The body is the raw token;
// a bearer Authorization header is accepted as well.
// @Summary Submit game result
// @Tags results
// @Accept plain
// @Produce json
// @Param guild path string true "Guild ID"
// @Success 201 {object} ingest.Outcome
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Router /api/v1/guilds/{guild}/results [post]
func HandleSubmitResult(svc ingest.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			respondError(w, http.StatusServiceUnavailable, ErrMsgIngestDisabled)
			return
		}
		guildID, ok := pathParam(w, r, "guild")
		if !ok {
			return
		}

		token := strings.TrimSpace(strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer "))
		if token == "" {
			body, err := io.ReadAll(io.LimitReader(r.Body, maxTokenBytes))
			if err != nil {
				respondError(w, http.StatusBadRequest, ErrMsgInvalidRequest)
				return
			}
			token = strings.TrimSpace(string(body))
		}
		if token == "" {
			respondError(w, http.StatusBadRequest, ErrMsgMissingToken)
			return
		}

		outcome, err := svc.Submit(r.Context(), guildID, token)
		if err != nil {
			respondServiceError(w, r, "Submit result", err)
			return
		}
		logger.FromContext(r.Context()).Info(LogMsgResultIngested,
			"guild_id", guildID, "points", outcome.Points, "awards", len(outcome.Awards))
		respondJSON(w, http.StatusCreated, outcome)
	}
}
