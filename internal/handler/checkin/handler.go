// Package checkin exposes the check-in sessions over HTTP: session creation,
// intent dispatch, snapshots, and a websocket state-event stream.
package checkin

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	service "github.com/dallae-labs/dallae/backend/internal/service/checkin"
	"github.com/dallae-labs/dallae/backend/pkg/utils"
)

// Handler owns the live sessions. Sessions are in-memory and die with the
// process; the timeline store is the only durable surface.
type Handler struct {
	registry *Registry
	upgrader websocket.Upgrader
}

// New creates the check-in handler over a session registry.
func New(registry *Registry) *Handler {
	return &Handler{
		registry: registry,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// RegisterRoutes mounts the check-in routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/checkins/day", h.handleCreateDay)
	r.Post("/checkins/night", h.handleCreateNight)
	r.Get("/checkins/{sessionID}", h.handleSnapshot)
	r.Post("/checkins/{sessionID}/events", h.handleEvent)
	r.Delete("/checkins/{sessionID}", h.handleClose)
	r.Get("/checkins/{sessionID}/stream", h.handleStream)
}

type sessionResponse struct {
	SessionID string           `json:"sessionId"`
	Kind      string           `json:"kind"`
	State     service.Snapshot `json:"state"`
}

func (h *Handler) handleCreateDay(w http.ResponseWriter, r *http.Request) {
	s := h.registry.CreateDay()
	utils.RespondJSON(w, http.StatusCreated, sessionResponse{SessionID: s.ID(), Kind: "day", State: s.State()})
}

func (h *Handler) handleCreateNight(w http.ResponseWriter, r *http.Request) {
	s := h.registry.CreateNight()
	utils.RespondJSON(w, http.StatusCreated, sessionResponse{SessionID: s.ID(), Kind: "night", State: s.State()})
}

func (h *Handler) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.registry.Find(chi.URLParam(r, "sessionID"))
	if !ok {
		utils.RespondError(w, http.StatusNotFound, "session not found")
		return
	}
	utils.RespondJSON(w, http.StatusOK, sessionResponse{SessionID: sess.ID(), Kind: sess.Kind(), State: sess.State()})
}

// eventRequest is the flattened intent payload; Type selects the intent and
// the other fields carry its arguments.
type eventRequest struct {
	Type      string   `json:"type"`
	Emotion   string   `json:"emotion,omitempty"`
	Value     int      `json:"value,omitempty"`
	Text      string   `json:"text,omitempty"`
	Tags      []string `json:"tags,omitempty"`
	Summary   string   `json:"summary,omitempty"`
	Intensity int      `json:"intensity,omitempty"`
}

func (h *Handler) handleEvent(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.registry.Find(chi.URLParam(r, "sessionID"))
	if !ok {
		utils.RespondError(w, http.StatusNotFound, "session not found")
		return
	}

	var req eventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid event payload")
		return
	}
	if req.Type == "" {
		utils.RespondError(w, http.StatusBadRequest, "event type is required")
		return
	}

	if err := sess.Apply(r.Context(), req); err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	utils.RespondJSON(w, http.StatusOK, sessionResponse{SessionID: sess.ID(), Kind: sess.Kind(), State: sess.State()})
}

func (h *Handler) handleClose(w http.ResponseWriter, r *http.Request) {
	if !h.registry.Close(chi.URLParam(r, "sessionID")) {
		utils.RespondError(w, http.StatusNotFound, "session not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
