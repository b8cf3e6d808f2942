package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"ahab-backend/internal/catalog"
	"ahab-backend/internal/models"
	"ahab-backend/internal/service"
	"ahab-backend/internal/state"
)

// errCandidateNotFound is returned for candidate ids missing from a session
var errCandidateNotFound = errors.New("candidate not found")

// writeJSON writes a JSON response with the given status code.
// The header is already sent when encoding fails, so the error is only logged.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("failed to encode response", "status", status, "error", err)
		}
	}
}

// writeError writes an error response with the given status code.
func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, models.ErrorResponse{
		Error:   http.StatusText(status),
		Message: err.Error(),
		Code:    status,
	})
}

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, catalog.ErrUnknownModel),
		errors.Is(err, state.ErrSessionNotFound),
		errors.Is(err, errCandidateNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
