package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/OrrSegevPersonal/OrrSegevPersonal.github.io/internal/metrics"
)

// RouterOptions configures the HTTP surface
type RouterOptions struct {
	AllowedOrigins []string
	RateLimitRPS   float64
	RateLimitBurst int
}

// NewRouter wires every route onto a chi router
func NewRouter(h *Handler, opts RouterOptions) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(RequestLogger)
	r.Use(chimiddleware.Recoverer)

	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	limiter := NewRateLimiter(opts.RateLimitRPS, opts.RateLimitBurst)

	r.Get("/health", h.HealthCheck)
	r.Handle("/metrics", metrics.Handler())

	// Websocket connections are long-lived and must not get the request timeout
	r.Get("/ws", h.HandleWebSocket)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(chimiddleware.Timeout(30 * time.Second))

		r.Get("/standings", h.GetStandings)
		r.Get("/intake", h.GetToday)
		r.Get("/intake/days/{date}", h.GetDay)

		r.Group(func(r chi.Router) {
			r.Use(limiter.Middleware)

			r.Post("/standings/refresh", h.RefreshStandings)
			r.Post("/intake/entries", h.AddEntry)
			r.Delete("/intake/entries", h.ClearToday)
			r.Delete("/intake/entries/{id}", h.RemoveEntry)
			r.Put("/intake/goal", h.SetGoal)
		})
	})

	return r
}
