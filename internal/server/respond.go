package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/comanda-app/comanda/internal/auth"
	"github.com/comanda-app/comanda/internal/service"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		if err := json.NewEncoder(w).Encode(v); err != nil {
			slog.Error("Failed to encode response", "error", err)
		}
	}
}

// writeError maps domain errors onto HTTP status codes. Anything unmapped
// is a 500 with the detail kept out of the response body.
func writeError(w http.ResponseWriter, err error) {
	var status int
	switch {
	case errors.Is(err, service.ErrValidation), errors.Is(err, service.ErrUnavailable),
		errors.Is(err, auth.ErrWeakPassword):
		status = http.StatusBadRequest
	case errors.Is(err, service.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, service.ErrStateConflict), errors.Is(err, service.ErrAlreadySettled):
		status = http.StatusConflict
	case errors.Is(err, auth.ErrInvalidCredentials):
		status = http.StatusUnauthorized
	case errors.Is(err, auth.ErrInactiveAccount):
		status = http.StatusForbidden
	default:
		slog.Error("Unhandled error", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func decodeBody(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return service.ErrValidation
	}
	return nil
}
