package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/jpsantos/boatline/backend/internal/domain"
)

// ErrorResponse is the error envelope for every non-2xx JSON response.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail carries a stable machine-readable code plus a human message.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// writeJSON serializes v with the given status. Encoding failures are logged,
// not surfaced — the status line has already been written.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response", "error", err)
	}
}

// writeError writes the standard error envelope.
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{Error: ErrorDetail{Code: code, Message: message}})
}

// respondServiceError maps a service-layer error onto the wire contract:
//
//	domain.ErrValidation → 422 validation_error
//	domain.ErrNotFound   → 404 not_found
//	domain.ErrActiveTrip → 409 active_trip_exists
//	domain.ErrConflict   → 409 state_conflict
//	domain.ErrForbidden  → 403 forbidden
//	anything else        → 500 internal (logged, message withheld)
//
// The ErrActiveTrip check precedes ErrConflict so guard rejections keep their
// specific code even though both map to 409.
func respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		writeError(w, http.StatusUnprocessableEntity, "validation_error", sentinelMessage(err, domain.ErrValidation))
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", "trip not found")
	case errors.Is(err, domain.ErrActiveTrip):
		writeError(w, http.StatusConflict, "active_trip_exists", sentinelMessage(err, domain.ErrActiveTrip))
	case errors.Is(err, domain.ErrConflict):
		writeError(w, http.StatusConflict, "state_conflict", "action not valid for the trip's current status")
	case errors.Is(err, domain.ErrForbidden):
		writeError(w, http.StatusForbidden, "forbidden", "you are not allowed to perform this action")
	default:
		slog.ErrorContext(r.Context(), "internal error", "error", err)
		writeError(w, http.StatusInternalServerError, "internal", "internal server error")
	}
}

// sentinelMessage extracts the human-readable part that follows a wrapped
// sentinel, e.g. "validation error: origin is required" → "origin is required".
// Layer prefixes ("service.TripService.Request: ") are discarded with it.
func sentinelMessage(err error, sentinel error) string {
	msg := err.Error()
	marker := sentinel.Error() + ": "
	if i := strings.LastIndex(msg, marker); i >= 0 {
		return msg[i+len(marker):]
	}
	return sentinel.Error()
}
