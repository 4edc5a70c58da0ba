package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/AchilleasB/membership-console/internal/adapters/middleware"
)

// RouterConfig collects the handlers and settings the console router mounts.
type RouterConfig struct {
	Console        *ConsoleHandler
	Health         *HealthHandler
	Notifications  http.Handler
	AllowedOrigins []string
	// ActionsPerMinute limits POST /api/console/actions per client IP.
	ActionsPerMinute int
	Logger           *slog.Logger
}

func NewRouter(cfg RouterConfig) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.RequestLogger(logger.With("component", "http")))
	r.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))

	// Health endpoints (OpenShift compatible)
	r.Get("/health", cfg.Health.Health)
	r.Get("/health/ready", cfg.Health.Ready)
	r.Get("/health/live", cfg.Health.Live)
	r.Handle("/metrics", promhttp.Handler())

	r.Get("/api/console", cfg.Console.Console)
	r.With(middleware.RateLimit(cfg.ActionsPerMinute, time.Minute, logger)).
		Post("/api/console/actions", cfg.Console.Dispatch)

	if cfg.Notifications != nil {
		r.Get("/ws", cfg.Notifications.ServeHTTP)
	}

	return r
}
