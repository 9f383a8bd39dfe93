package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	checkinHandler "github.com/dallae-labs/dallae/backend/internal/handler/checkin"
	personaHandler "github.com/dallae-labs/dallae/backend/internal/handler/persona"
	timelineHandler "github.com/dallae-labs/dallae/backend/internal/handler/timeline"
	middlewarePkg "github.com/dallae-labs/dallae/backend/internal/middleware"
	personaModel "github.com/dallae-labs/dallae/backend/internal/model/persona"
	"github.com/dallae-labs/dallae/backend/internal/store"
)

// NewRouter wires HTTP routes to core services.
func NewRouter(personas personaModel.Store, registry *checkinHandler.Registry, timeline store.Store) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	r.Route("/api", func(api chi.Router) {
		personaHandler.New(personas).RegisterRoutes(api)
		checkinHandler.New(registry).RegisterRoutes(api)
		timelineHandler.New(timeline).RegisterRoutes(api)
	})

	return r
}
