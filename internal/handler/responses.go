package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/osse101/WinLedger_Go/internal/domain"
	"github.com/osse101/WinLedger_Go/internal/ingest"
	"github.com/osse101/WinLedger_Go/internal/logger"
)

// SuccessResponse represents a simple successful operation message
type SuccessResponse struct {
	Message string `json:"message"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// DataResponse represents a response with data payload
type DataResponse struct {
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data"`
}

var bufferPool = sync.Pool{
	New: func() interface{} {
		return bytes.NewBuffer(make([]byte, 0, 512))
	},
}

// respondJSON sends a JSON response with the given status code and payload
func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	buf := bufferPool.Get().(*bytes.Buffer)
	defer func() {
		buf.Reset()
		bufferPool.Put(buf)
	}()

	// Encode before writing headers so a failure can still become a 500
	if err := json.NewEncoder(buf).Encode(payload); err != nil {
		slog.Error(LogMsgEncodeFailed, "error", err)
		http.Error(w, ErrMsgGenericServerError, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		slog.Error(LogMsgWriteFailed, "error", err)
	}
}

// respondError sends a JSON error response
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, ErrorResponse{Error: message})
}

// respondServiceError logs err and maps it to a user-facing response
func respondServiceError(w http.ResponseWriter, r *http.Request, opName string, err error) {
	status, msg := mapServiceErrorToUserMessage(err)
	log := logger.FromContext(r.Context())
	if status >= http.StatusInternalServerError {
		log.Error(fmt.Sprintf(LogMsgServiceError, opName), "error", err)
	} else {
		log.Warn(fmt.Sprintf(LogMsgServiceError, opName), "error", err, "status", status)
	}
	respondError(w, status, msg)
}

// mapServiceErrorToUserMessage converts domain errors to HTTP status codes
// and messages users can act upon
func mapServiceErrorToUserMessage(err error) (int, string) {
	if err == nil {
		return http.StatusInternalServerError, ErrMsgUnknownError
	}

	var storageErr *domain.StorageError
	switch {
	case errors.Is(err, domain.ErrInvalidDelta):
		return http.StatusBadRequest, ErrMsgInvalidAmountError
	case errors.Is(err, domain.ErrInvalidMetric):
		return http.StatusBadRequest, ErrMsgInvalidMetricError
	case errors.Is(err, domain.ErrInvalidWindow):
		return http.StatusBadRequest, ErrMsgInvalidWindowError
	case errors.Is(err, domain.ErrInvalidRewardDefinition):
		return http.StatusBadRequest, ErrMsgRewardDefinitionError
	case errors.Is(err, domain.ErrInvalidHierarchyMode):
		return http.StatusBadRequest, ErrMsgHierarchyModeError
	case errors.Is(err, domain.ErrInvalidMultiplier):
		return http.StatusBadRequest, ErrMsgInvalidMultiplierError
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest, ErrMsgInvalidInputError
	case errors.Is(err, domain.ErrMultiplierAlreadyActive):
		return http.StatusConflict, ErrMsgMultiplierActiveError
	case errors.Is(err, domain.ErrNoActiveMultiplier):
		return http.StatusNotFound, ErrMsgNoMultiplierError
	case errors.Is(err, domain.ErrGuildNotFound):
		return http.StatusNotFound, ErrMsgGuildNotFoundError
	case errors.Is(err, domain.ErrAutoPointsDisabled):
		return http.StatusForbidden, ErrMsgAutoPointsOffError
	case errors.Is(err, ingest.ErrUnauthorized):
		return http.StatusUnauthorized, ErrMsgTokenInvalidError
	case errors.Is(err, ingest.ErrClanMismatch):
		return http.StatusForbidden, ErrMsgClanMismatchError
	case errors.Is(err, ingest.ErrMalformedResult):
		return http.StatusBadRequest, ErrMsgResultMalformedError
	case errors.Is(err, domain.ErrQueryTimeout):
		return http.StatusGatewayTimeout, ErrMsgQueryTimeoutError
	case errors.As(err, &storageErr):
		return http.StatusInternalServerError, ErrMsgStorageError
	}
	return http.StatusInternalServerError, ErrMsgGenericServerError
}
