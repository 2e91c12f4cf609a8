/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for frontend

ROUTE GROUPS:
  /api/search          Global cross-kind search
  /api/employees/*     Directory, drilldown, CSV export
  /api/leaderboard/*   Visa and ticket leaderboards
  /api/countries       Country grouping
  /api/visas           Deduped visa records
  /api/bookings/*      Document writes
  /api/stats           Dashboard summary

SECURITY NOTE:
  No authentication middleware currently. All endpoints are public.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, origins []string) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Get("/search", h.GlobalSearch)

		r.Route("/employees", func(r chi.Router) {
			r.Get("/", h.ListEmployees)
			r.Get("/{email}/records", h.EmployeeRecords)
			r.Get("/{email}/export", h.ExportEmployeeRecords)
		})

		r.Route("/leaderboard", func(r chi.Router) {
			r.Get("/visas", h.VisaLeaderboard)
			r.Get("/tickets", h.TicketLeaderboard)
		})

		r.Get("/countries", h.Countries)
		r.Get("/visas", h.VisaRecords)

		r.Route("/bookings", func(r chi.Router) {
			r.Post("/{collection}", h.CreateBooking)
			r.Put("/{collection}/{id}", h.UpdateBooking)
			r.Delete("/{collection}/{id}", h.DeleteBooking)
		})

		r.Get("/stats", h.Stats)
	})

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`<!DOCTYPE html>
<html>
<head><title>Agency Record Engine</title></head>
<body style="font-family: system-ui; max-width: 800px; margin: 50px auto; padding: 20px;">
<h1>Agency Record Engine API</h1>
<h2>API Endpoints</h2>
<ul>
<li><a href="/api/employees">/api/employees</a> - Employee directory</li>
<li><a href="/api/leaderboard/visas">/api/leaderboard/visas</a> - Visa leaderboard</li>
<li><a href="/api/stats">/api/stats</a> - Dashboard summary</li>
</ul>
</body>
</html>`))
	})

	return r
}
