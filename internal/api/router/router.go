package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/wolfman30/ambutrack-notify/internal/http/handlers"
	httpmiddleware "github.com/wolfman30/ambutrack-notify/internal/http/middleware"
	"github.com/wolfman30/ambutrack-notify/pkg/logging"
)

// NotifyPath is where the notification endpoint is mounted.
const NotifyPath = "/api/notify"

// Config holds router configuration
type Config struct {
	Logger             *logging.Logger
	NotifyHandler      *handlers.NotifyHandler
	MetricsHandler     http.Handler
	CORSAllowedOrigins []string
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	r.Get("/health", handlers.HealthCheck)
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	// The notify endpoint answers every method itself (405 for anything but
	// POST and OPTIONS) and always carries CORS headers.
	r.With(httpmiddleware.CORS(cfg.CORSAllowedOrigins)).Handle(NotifyPath, cfg.NotifyHandler)

	return r
}
