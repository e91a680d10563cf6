/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

ROUTER: chi
  Chi was chosen for:
  - Lightweight and fast
  - Context-based
  - Middleware support
  - RESTful route patterns

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for frontend

ROUTE GROUPS:
  /api/groups/*       Group, participant, and payment management
  /api/payments/*     Payment verification
  /api/dashboard/*    Rankings, notifications, summaries
  /api/public/*       Share-link views (no auth, capability URL)
  /api/reminders/*    Scheduler run history
  /api/scenarios/*    Demo scenarios

SECURITY NOTE:
  No authentication middleware currently. All endpoints are public;
  share links rely on unguessable public IDs.

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
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	// API routes
	r.Route("/api", func(r chi.Router) {
		// Group routes
		r.Route("/groups", func(r chi.Router) {
			r.Get("/", h.ListGroups)
			r.Post("/", h.CreateGroup)
			r.Get("/{id}", h.GetGroup)
			r.Get("/{id}/stats", h.GetGroupStats)
			r.Post("/{id}/reassign", h.ReassignPayer)

			r.Get("/{id}/participants", h.ListParticipants)
			r.Post("/{id}/participants", h.AddParticipant)
			r.Delete("/{id}/participants/{participantID}", h.DeactivateParticipant)

			r.Get("/{id}/payments", h.ListPayments)
			r.Post("/{id}/payments", h.RecordPayment)
		})

		// Payment routes
		r.Route("/payments", func(r chi.Router) {
			r.Post("/{id}/verify", h.VerifyPayment)
		})

		// Dashboard routes
		r.Route("/dashboard", func(r chi.Router) {
			r.Get("/next-payers", h.GetNextPayers)
			r.Get("/last-payers", h.GetLastPayers)
			r.Get("/overdue-participants", h.GetOverdueParticipants)
			r.Get("/notifications", h.GetNotifications)
			r.Get("/payment-summary", h.GetPaymentSummary)
		})

		// Public share routes
		r.Route("/public", func(r chi.Router) {
			r.Get("/overdue/{publicID}", h.GetPublicOverdue)
		})

		// Reminder routes
		r.Route("/reminders", func(r chi.Router) {
			r.Get("/runs", h.ListReminderRuns)
		})

		// Scenario routes
		r.Route("/scenarios", func(r chi.Router) {
			r.Get("/", h.ListScenarios)
			r.Get("/current", h.GetCurrentScenario)
			r.Post("/load", h.LoadScenario)
		})
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	return r
}
