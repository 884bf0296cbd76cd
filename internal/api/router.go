/**
 * @description
 * This file sets up the HTTP router for the signup service using the
 * go-chi/chi router. It defines the API routes, applies middleware for
 * correlation ids, logging, panic recovery and CORS, and maps the routes to
 * their corresponding handler functions.
 */
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new Chi router and registers the signup-service routes.
func NewRouter(h *SignupHandler) *chi.Mux {
	r := chi.NewRouter()

	// Setup middleware. RequestID runs first so every log line and outbound
	// call can see the correlation id.
	r.Use(RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Liveness and readiness probes
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Post("/signup", h.HandleSignup)
	r.Post("/signup/retry", h.HandleRetry)

	return r
}
