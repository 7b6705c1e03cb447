package router

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	httpmiddleware "github.com/launchpadhq/intake-platform/internal/http/middleware"
	"github.com/launchpadhq/intake-platform/internal/leads"
	"github.com/launchpadhq/intake-platform/internal/webchat"
	"github.com/launchpadhq/intake-platform/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger         *logging.Logger
	WebchatHandler *webchat.Handler
	LeadsHandler   *leads.Handler
	MetricsHandler http.Handler

	// Dashboard API access control
	AdminAuthSecret    string
	DashboardSubdomain string
	CORSAllowedOrigins []string

	// Chat endpoint rate limiting (requests/sec per IP); 0 disables.
	ChatRateLimit float64
	ChatRateBurst int
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	// Public endpoints (widget, chat, health checks)
	r.Group(func(public chi.Router) {
		public.Get("/health", handleHealth)
		if cfg.MetricsHandler != nil {
			public.Handle("/metrics", cfg.MetricsHandler)
		}

		if cfg.WebchatHandler != nil {
			public.Get("/widget.js", cfg.WebchatHandler.HandleWidgetJS)
			public.Route("/chat", func(chat chi.Router) {
				if cfg.ChatRateLimit > 0 {
					chat.Use(httpmiddleware.RateLimit(cfg.ChatRateLimit, cfg.ChatRateBurst))
				}
				chat.Get("/ws", cfg.WebchatHandler.HandleWebSocket)
				chat.Post("/start", cfg.WebchatHandler.HandleStart)
				chat.Post("/message", cfg.WebchatHandler.HandleMessage)
				chat.Get("/history", cfg.WebchatHandler.HandleHistory)
			})
		}
	})

	// Dashboard API (protected by JWT, scoped to a business, and only
	// served on the dashboard host when one is configured)
	if cfg.LeadsHandler != nil && cfg.AdminAuthSecret != "" {
		r.Route("/api/v1", func(api chi.Router) {
			api.Use(requireDashboardHost(cfg.DashboardSubdomain))
			api.Use(httpmiddleware.AdminJWT(cfg.AdminAuthSecret))
			api.Use(httpmiddleware.Tenant())

			api.Route("/leads", func(r chi.Router) {
				r.Get("/", cfg.LeadsHandler.ListLeads)
				r.Route("/{leadID}", func(r chi.Router) {
					r.Get("/", cfg.LeadsHandler.GetLead)
					r.Patch("/notes", cfg.LeadsHandler.UpdateNotes)
					r.Post("/rescore", cfg.LeadsHandler.Rescore)
				})
			})
			api.Get("/stats", cfg.LeadsHandler.GetStats)
		})
	}

	return r
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
