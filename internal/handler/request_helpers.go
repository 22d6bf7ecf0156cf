package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/osse101/WinLedger_Go/internal/domain"
	"github.com/osse101/WinLedger_Go/internal/logger"
)

// ValidationErrorResponse defines the response structure for validation errors
type ValidationErrorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields"`
}

// DecodeAndValidateRequest decodes a JSON request body and validates it.
// If it returns an error the response has already been written.
//
// Example usage:
//
//	var req AdjustRequest
//	if err := DecodeAndValidateRequest(r, w, &req, "Adjust counter"); err != nil {
//	    return
//	}
func DecodeAndValidateRequest(r *http.Request, w http.ResponseWriter, req interface{}, actionName string) error {
	log := logger.FromContext(r.Context())

	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		log.Error(fmt.Sprintf(LogMsgDecodeFailed, actionName), "error", err)
		respondError(w, http.StatusBadRequest, ErrMsgInvalidRequest)
		return err
	}
	log.Debug(fmt.Sprintf(LogMsgRequestDecoded, actionName))

	if err := GetValidator().ValidateStruct(req); err != nil {
		respondJSON(w, http.StatusBadRequest, ValidationErrorResponse{
			Error:  ErrMsgInvalidRequestSummary,
			Fields: FormatValidationError(err),
		})
		return err
	}
	return nil
}

// GetOptionalQueryParam returns the query parameter or defaultValue when absent
func GetOptionalQueryParam(r *http.Request, paramName string, defaultValue string) string {
	value := r.URL.Query().Get(paramName)
	if value == "" {
		return defaultValue
	}
	return value
}

// getIntQueryParam parses an optional integer query parameter. When ok is
// false the response has already been written.
func getIntQueryParam(w http.ResponseWriter, r *http.Request, paramName string, defaultValue int) (int, bool) {
	raw := r.URL.Query().Get(paramName)
	if raw == "" {
		return defaultValue, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		logger.FromContext(r.Context()).Warn(fmt.Sprintf(ErrMsgInvalidQueryParam, paramName), "value", raw)
		respondError(w, http.StatusBadRequest, fmt.Sprintf(ErrMsgInvalidQueryParam, paramName))
		return 0, false
	}
	return n, true
}

// getWindow reads the days query parameter. Absent or 0 selects all-time.
func getWindow(w http.ResponseWriter, r *http.Request) (domain.Window, bool) {
	days, ok := getIntQueryParam(w, r, "days", 0)
	if !ok {
		return domain.Window{}, false
	}
	window := domain.LastDays(days)
	if err := window.Validate(); err != nil {
		respondServiceError(w, r, "Parse window", err)
		return domain.Window{}, false
	}
	return window, true
}

// getMetric reads the metric query parameter, defaulting to points
func getMetric(w http.ResponseWriter, r *http.Request) (domain.Metric, bool) {
	m, err := domain.ParseMetric(GetOptionalQueryParam(r, "metric", string(domain.MetricPoints)))
	if err != nil {
		respondServiceError(w, r, "Parse metric", err)
		return "", false
	}
	return m, true
}

// pathParam returns a required, trimmed chi URL parameter
func pathParam(w http.ResponseWriter, r *http.Request, name string) (string, bool) {
	value := strings.TrimSpace(chi.URLParam(r, name))
	if value == "" {
		respondError(w, http.StatusBadRequest, fmt.Sprintf(ErrMsgInvalidPathParam, name))
		return "", false
	}
	return value, true
}

// actorID identifies who performed an administrative action
func actorID(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get(HeaderActorID))
}
