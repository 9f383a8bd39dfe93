package checkin

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dallae-labs/dallae/backend/pkg/utils"
)

// handleStream upgrades to a websocket and forwards the session's state
// events in order. The first frame is the current snapshot so a client can
// attach mid-flow; the channel closing means the session was disposed.
func (h *Handler) handleStream(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.registry.Find(chi.URLParam(r, "sessionID"))
	if !ok {
		utils.RespondError(w, http.StatusNotFound, "session not found")
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[checkin] websocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	events, unsubscribe := sess.Subscribe()
	defer unsubscribe()

	if err := conn.WriteJSON(sessionResponse{SessionID: sess.ID(), Kind: sess.Kind(), State: sess.State()}); err != nil {
		return
	}

	// Drain the read side so client close frames are noticed.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case evt, open := <-events:
			if !open {
				return
			}
			if err := conn.WriteJSON(evt); err != nil {
				return
			}
		case <-done:
			return
		case <-r.Context().Done():
			return
		}
	}
}
