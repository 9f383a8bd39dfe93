// Package timeline serves the saved check-in history.
package timeline

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/dallae-labs/dallae/backend/internal/store"
	"github.com/dallae-labs/dallae/backend/pkg/utils"
)

const defaultWindowDays = 30

// Handler reads entries from the timeline store.
type Handler struct {
	timeline store.Store
}

// New creates the timeline handler.
func New(timeline store.Store) *Handler {
	return &Handler{timeline: timeline}
}

// RegisterRoutes mounts the timeline routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/timeline", h.handleList)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	days := defaultWindowDays
	if raw := r.URL.Query().Get("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			utils.RespondError(w, http.StatusBadRequest, "days must be a positive integer")
			return
		}
		days = parsed
	}

	entries, err := h.timeline.RecentEntries(r.Context(), days)
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "failed to load timeline")
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"days":    days,
		"entries": entries,
	})
}
