/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. RequestID:  Unique ID per request for tracing
  2. AccessLog:  One zerolog line per request
  3. Recoverer:  Panic recovery (500 instead of crash)
  4. CORS:       Cross-origin requests for frontends

ROUTE GROUPS:
  /api/drugs/*          Drug management and per-drug schedule queries
  /api/schedule         Drugs due on a date
  /api/import           Trusted bulk import
  /api/alerts/*         Low-supply alerts from the background monitor
  /api/fractions/*      Fraction parsing

SECURITY NOTE:
  No authentication middleware currently. All endpoints are public.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/doses/main.go: Server startup
*/
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"
)

// DefaultCORSOrigins is used when no origins are configured.
var DefaultCORSOrigins = []string{"http://localhost:5173", "http://localhost:8080"}

// NewRouter creates a new router with all routes configured. monitor may be nil,
// in which case the alerts route is not mounted.
func NewRouter(h *Handler, monitor *SupplyMonitor, corsOrigins []string) *chi.Mux {
	if len(corsOrigins) == 0 {
		corsOrigins = DefaultCORSOrigins
	}

	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(AccessLog(h.Logger))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   corsOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	// API routes
	r.Route("/api", func(r chi.Router) {
		// Drug routes
		r.Route("/drugs", func(r chi.Router) {
			r.Get("/", h.ListDrugs)
			r.Post("/", h.CreateDrug)
			r.Get("/{id}", h.GetDrug)
			r.Put("/{id}", h.UpdateDrug)
			r.Delete("/{id}", h.DeleteDrug)
			r.Get("/{id}/due", h.GetDue)
			r.Get("/{id}/supply", h.GetSupply)
		})

		r.Get("/schedule", h.GetSchedule)
		r.Post("/import", h.Import)

		if monitor != nil {
			r.Method(http.MethodGet, "/alerts/low-supply", monitor)
		}

		// Fraction routes
		r.Route("/fractions", func(r chi.Router) {
			r.Post("/parse", h.ParseFraction)
		})
	})

	return r
}

// AccessLog writes one structured log line per request.
func AccessLog(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}

			evt := logger.Info()
			if status >= http.StatusInternalServerError {
				evt = logger.Error()
			}

			evt.
				Str("request_id", middleware.GetReqID(r.Context())).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", status).
				Int("bytes", ww.BytesWritten()).
				Dur("latency", time.Since(start)).
				Str("remote_ip", r.RemoteAddr).
				Msg("request")
		})
	}
}
