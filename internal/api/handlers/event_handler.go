package handlers

import (
	"net/http"
	"strconv"

	"github.com/rs/zerolog/log"

	"github.com/isdelr/todo-manager-be/internal/services"
)

// EventHandler handles HTTP requests for the audit trail. Routes using it
// sit behind the Admin role gate.
type EventHandler struct {
	service services.AuditServiceProvider
}

// NewEventHandler creates a new EventHandler.
func NewEventHandler(service services.AuditServiceProvider) *EventHandler {
	return &EventHandler{service: service}
}

// GetRecent returns the most recent audit entries, newest first.
func (h *EventHandler) GetRecent(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	entries, err := h.service.Recent(limit)
	if err != nil {
		log.Error().Err(err).Msg("Failed to load audit entries")
		respondFail(w, http.StatusInternalServerError, "Could not load events. Try again later.")
		return
	}

	respondOK(w, http.StatusOK, entries, "Events loaded successfully.")
}
