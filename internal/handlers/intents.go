package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/jwebster45206/cell-commander/pkg/engine"
)

func (h *SessionHandler) handleIntent(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	var in engine.Intent
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&in); err != nil {
		h.logger.Warn("Invalid intent body", "session_id", id, "error", err)
		writeError(w, h.logger, http.StatusBadRequest, "Invalid request body")
		return
	}

	s, ok := h.lookup(w, r, id)
	if !ok {
		return
	}

	err := s.Engine.Apply(in)
	switch {
	case err == nil:
		writeJSON(w, h.logger, http.StatusOK, SessionResponse{
			ID:   s.ID.String(),
			View: s.Engine.View(),
		})
	case errors.Is(err, engine.ErrBadIntent):
		writeError(w, h.logger, http.StatusBadRequest, err.Error())
	case errors.Is(err, engine.ErrClosed):
		writeError(w, h.logger, http.StatusGone, "Session has ended")
	default:
		h.logger.Debug("Intent refused", "session_id", id, "intent", in.Type, "error", err)
		view := s.Engine.View()
		writeJSON(w, h.logger, http.StatusConflict, ErrorResponse{
			Error: err.Error(),
			View:  &view,
		})
	}
}
