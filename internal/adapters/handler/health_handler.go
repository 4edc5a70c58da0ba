package handler

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker"
)

// BreakerReporter exposes the circuit breaker state of the membership API
// client.
type BreakerReporter interface {
	BreakerState() gobreaker.State
}

type HealthHandler struct {
	db          *sql.DB
	redisClient *redis.Client
	api         BreakerReporter
	startTime   time.Time
	version     string
	logger      *slog.Logger
}

// NewHealthHandler builds the health endpoints. db and redisClient are nil
// when the activity outbox or the record cache are disabled; their checks
// are then left out.
func NewHealthHandler(db *sql.DB, redisClient *redis.Client, api BreakerReporter) *HealthHandler {
	version := os.Getenv("APP_VERSION")
	if version == "" {
		version = "unknown"
	}
	return &HealthHandler{
		db:          db,
		redisClient: redisClient,
		api:         api,
		startTime:   time.Now(),
		version:     version,
		logger:      slog.Default().With("component", "health"),
	}
}

// HealthResponse follows Kubernetes/OpenShift health check conventions
type HealthResponse struct {
	Status    string           `json:"status"`
	Timestamp string           `json:"timestamp,omitempty"`
	Uptime    string           `json:"uptime,omitempty"`
	Version   string           `json:"version,omitempty"`
	Checks    map[string]Check `json:"checks"`
}

type Check struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// Health is a simple liveness check - just confirms the Go process is running
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	h.respond(w, http.StatusOK, HealthResponse{
		Status:    "UP",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
		Version:   h.version,
		Checks:    map[string]Check{"process": {Status: "UP"}},
	})
}

// Live is an alias for Health - simple liveness check
func (h *HealthHandler) Live(w http.ResponseWriter, r *http.Request) {
	h.Health(w, r)
}

// Ready checks if the console can serve actions (readiness probe). An open
// API breaker means every action would fail fast.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	checks := map[string]Check{"membership_api": h.checkAPI()}
	if h.db != nil {
		checks["database"] = h.checkDatabase(r.Context())
	}
	if h.redisClient != nil {
		checks["redis"] = h.checkRedis(r.Context())
	}

	status, httpStatus := "UP", http.StatusOK
	for _, c := range checks {
		if c.Status != "UP" {
			status, httpStatus = "DOWN", http.StatusServiceUnavailable
			break
		}
	}

	h.respond(w, httpStatus, HealthResponse{Status: status, Checks: checks})
}

func (h *HealthHandler) respond(w http.ResponseWriter, status int, body HealthResponse) {
	if err := writeJSON(w, status, body); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

func (h *HealthHandler) checkAPI() Check {
	if h.api == nil {
		return Check{Status: "DOWN", Message: "Membership API client is not initialized"}
	}
	if state := h.api.BreakerState(); state == gobreaker.StateOpen {
		return Check{Status: "DOWN", Message: "Membership API circuit breaker is " + state.String()}
	}
	return Check{Status: "UP"}
}

func (h *HealthHandler) checkDatabase(ctx context.Context) Check {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := h.db.PingContext(ctx); err != nil {
		return Check{Status: "DOWN", Message: "Cannot connect to database"}
	}
	return Check{Status: "UP"}
}

func (h *HealthHandler) checkRedis(ctx context.Context) Check {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := h.redisClient.Ping(ctx).Err(); err != nil {
		return Check{Status: "DOWN", Message: "Cannot connect to Redis"}
	}
	return Check{Status: "UP"}
}
