package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/jwebster45206/cell-commander/internal/session"
	"github.com/jwebster45206/cell-commander/pkg/engine"
)

type SessionResponse struct {
	ID   string      `json:"id"`
	View engine.View `json:"view"`
}

type SessionHandler struct {
	registry *session.Registry
	logger   *slog.Logger
}

func NewSessionHandler(registry *session.Registry, logger *slog.Logger) *SessionHandler {
	return &SessionHandler{
		registry: registry,
		logger:   logger,
	}
}

// ServeHTTP handles HTTP requests for play sessions
// Routes:
// POST   /v1/sessions              - Start a session
// GET    /v1/sessions/{id}         - Current view
// DELETE /v1/sessions/{id}         - End a session
// POST   /v1/sessions/{id}/intents - Apply a player intent
func (h *SessionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	parts := pathParts(r.URL.Path)
	if len(parts) < 2 || parts[0] != "v1" || parts[1] != "sessions" || len(parts) > 4 {
		writeError(w, h.logger, http.StatusNotFound, "Not found")
		return
	}

	if len(parts) == 2 {
		if r.Method != http.MethodPost {
			h.methodNotAllowed(w, r, http.MethodPost)
			return
		}
		h.handleCreate(w, r)
		return
	}

	id, ok := parseSessionID(parts[2])
	if !ok {
		h.logger.Warn("Invalid session ID", "id", parts[2])
		writeError(w, h.logger, http.StatusBadRequest, "Invalid session ID format")
		return
	}

	if len(parts) == 4 {
		if parts[3] != "intents" {
			writeError(w, h.logger, http.StatusNotFound, "Not found")
			return
		}
		if r.Method != http.MethodPost {
			h.methodNotAllowed(w, r, http.MethodPost)
			return
		}
		h.handleIntent(w, r, id)
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.handleRead(w, r, id)
	case http.MethodDelete:
		h.handleDelete(w, r, id)
	default:
		h.methodNotAllowed(w, r, "GET, DELETE")
	}
}

func (h *SessionHandler) methodNotAllowed(w http.ResponseWriter, r *http.Request, allow string) {
	h.logger.Warn("Method not allowed for sessions endpoint", "method", r.Method, "path", r.URL.Path)
	w.Header().Set("Allow", allow)
	writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Supported methods: "+allow)
}

func (h *SessionHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	s := h.registry.Create(r.Context())
	writeJSON(w, h.logger, http.StatusCreated, SessionResponse{
		ID:   s.ID.String(),
		View: s.Engine.View(),
	})
}

func (h *SessionHandler) handleRead(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	s, ok := h.lookup(w, r, id)
	if !ok {
		return
	}
	writeJSON(w, h.logger, http.StatusOK, SessionResponse{
		ID:   s.ID.String(),
		View: s.Engine.View(),
	})
}

func (h *SessionHandler) handleDelete(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	if err := h.registry.Delete(r.Context(), id); err != nil {
		if errors.Is(err, session.ErrNotFound) {
			writeError(w, h.logger, http.StatusNotFound, "Session not found")
			return
		}
		h.logger.Error("Failed to delete session", "session_id", id, "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to delete session")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// lookup resolves a session or writes the error response.
func (h *SessionHandler) lookup(w http.ResponseWriter, r *http.Request, id uuid.UUID) (*session.Session, bool) {
	s, err := h.registry.Get(r.Context(), id)
	if err != nil {
		writeLookupError(w, h.logger, id, err)
		return nil, false
	}
	return s, true
}
