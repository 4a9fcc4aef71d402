package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/jwebster45206/cell-commander/internal/session"
	"github.com/jwebster45206/cell-commander/pkg/engine"
)

// ErrorResponse is the body of every failed request. View is set when an
// intent was refused, so the client can resynchronise.
type ErrorResponse struct {
	Error string       `json:"error"`
	View  *engine.View `json:"view,omitempty"`
}

func writeJSON(w http.ResponseWriter, logger *slog.Logger, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, logger *slog.Logger, status int, msg string) {
	writeJSON(w, logger, status, ErrorResponse{Error: msg})
}

// pathParts splits a URL path into its non-empty segments.
func pathParts(path string) []string {
	var parts []string
	for _, p := range strings.Split(strings.Trim(path, "/"), "/") {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return parts
}

// parseSessionID parses a path segment as a session uuid.
func parseSessionID(s string) (uuid.UUID, bool) {
	id, err := uuid.Parse(s)
	if err != nil || id == uuid.Nil {
		return uuid.Nil, false
	}
	return id, true
}

// writeLookupError maps a failed registry lookup to its response.
func writeLookupError(w http.ResponseWriter, logger *slog.Logger, id uuid.UUID, err error) {
	switch {
	case errors.Is(err, session.ErrNotFound):
		writeError(w, logger, http.StatusNotFound, "Session not found")
	case errors.Is(err, session.ErrExpired):
		writeError(w, logger, http.StatusGone, "Session has expired")
	default:
		logger.Error("Failed to load session", "session_id", id, "error", err)
		writeError(w, logger, http.StatusInternalServerError, "Failed to load session")
	}
}
