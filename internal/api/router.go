package api

import (
	"exsighting-location/internal/api/handlers"
	"exsighting-location/internal/ports"
	"exsighting-location/internal/services"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

type RouterOptions struct {
	// DefaultMaxAge is used when a request does not pass max_age.
	DefaultMaxAge time.Duration
	// CORSOrigins is a comma separated allow list. Empty allows any origin.
	CORSOrigins string
}

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// This is the API composition root (handlers stay unaware of concrete adapters).
func NewRouter(svc *services.LocationService, repo ports.PlaceRepository, o RouterOptions) http.Handler {
	if o.DefaultMaxAge < 0 {
		o.DefaultMaxAge = services.DefaultLocationMaxAge
	}

	locHandler := &handlers.LocationHandler{Service: svc, DefaultMaxAge: o.DefaultMaxAge}
	placeHandler := &handlers.PlaceHandler{Repo: repo, Location: svc, DefaultMaxAge: o.DefaultMaxAge}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(loggingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins(o.CORSOrigins),
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", handlers.Health)

	r.Get("/location", locHandler.Get)
	r.Delete("/location", locHandler.Clear)
	r.Get("/distance", locHandler.Distance)

	r.Route("/places", func(r chi.Router) {
		r.Get("/nearby", placeHandler.Nearby)
		r.Get("/{id}/distance", placeHandler.Distance)
		r.Post("/visit-order", placeHandler.VisitOrder)
	})

	return r
}

func allowedOrigins(s string) []string {
	var out []string
	for _, o := range strings.Split(s, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}
