package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/zxiaoiegw/pill-reminder/internal/handlers"
	"github.com/zxiaoiegw/pill-reminder/internal/middleware"
	"github.com/zxiaoiegw/pill-reminder/internal/websocket"
)

func New(
	jwtAuth *middleware.JWTAuth,
	authHandler *handlers.AuthHandler,
	medicationHandler *handlers.MedicationHandler,
	intakeLogHandler *handlers.IntakeLogHandler,
	dashboardHandler *handlers.DashboardHandler,
	assistantHandler *handlers.AssistantHandler,
	suggestionHandler *handlers.SuggestionHandler,
	wsHub *websocket.Hub,
	frontendURL string,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.CORS(frontendURL))

	// Auth rate limiter (10 req/min per IP)
	authLimiter := middleware.NewRateLimiter(10, time.Minute)

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/v1", func(r chi.Router) {

		// ──── Auth Routes (public) ────
		r.Route("/auth", func(r chi.Router) {
			r.Use(authLimiter.Middleware)
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
			r.Post("/refresh", authHandler.Refresh)

			// Logout requires auth
			r.Group(func(r chi.Router) {
				r.Use(jwtAuth.Middleware)
				r.Post("/logout", authHandler.Logout)
			})
		})

		// ──── Medication Routes ────
		r.Route("/medications", func(r chi.Router) {
			r.Use(jwtAuth.Middleware)
			r.Post("/", medicationHandler.Create)
			r.Get("/", medicationHandler.List)
			r.Get("/{id}", medicationHandler.Get)
			r.Put("/{id}", medicationHandler.Update)
			r.Delete("/{id}", medicationHandler.Delete)
			r.Post("/{id}/suggest-schedule", suggestionHandler.Enqueue)
		})

		// ──── Intake Log Routes ────
		r.Route("/logs", func(r chi.Router) {
			r.Use(jwtAuth.Middleware)
			r.Post("/", intakeLogHandler.Create)
			r.Get("/", intakeLogHandler.List)
			r.Get("/today", intakeLogHandler.Today)
			r.Delete("/{id}", intakeLogHandler.Delete)
		})

		// ──── Dashboard Routes ────
		r.Route("/dashboard", func(r chi.Router) {
			r.Use(jwtAuth.Middleware)
			r.Get("/stats", dashboardHandler.Stats)
			r.Get("/today", dashboardHandler.Today)
		})

		// ──── Report Routes ────
		r.Route("/reports", func(r chi.Router) {
			r.Use(jwtAuth.Middleware)
			r.Get("/adherence", dashboardHandler.Adherence)
		})

		// ──── Assistant Routes ────
		r.Route("/assistant", func(r chi.Router) {
			r.Use(jwtAuth.Middleware)
			r.Post("/message", assistantHandler.Message)
			r.Post("/reset", assistantHandler.Reset)
			r.Get("/transcript", assistantHandler.Transcript)
			r.Get("/suggestions", assistantHandler.Suggestions)
		})

		// ──── Job Routes ────
		r.Route("/jobs", func(r chi.Router) {
			r.Use(jwtAuth.Middleware)
			r.Get("/{id}", suggestionHandler.GetJob)
		})

		// ──── WebSocket ────
		r.Get("/ws", wsHub.HandleWebSocket)
	})

	return r
}
