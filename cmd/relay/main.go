package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"github.com/AchilleasB/membership-console/internal/adapters/messaging"
	"github.com/AchilleasB/membership-console/internal/adapters/outbox"
	"github.com/AchilleasB/membership-console/internal/config"
	"github.com/AchilleasB/membership-console/internal/logging"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.LoadRelayConfig()
	if err != nil {
		logging.Setup("info", "json").Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	logger := logging.Setup(cfg.LogLevel, cfg.LogFormat).With("component", "relay")
	logger.Info("starting outbox relay service")

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	logger.Info("database connection initialized - circuit breaker will validate on first operation")

	broker, err := messaging.NewRabbitMQBroker(cfg.RabbitMQURL, cfg.ActivityQueueName)
	if err != nil {
		logger.Error("failed to connect to RabbitMQ", "error", err)
		os.Exit(1)
	}
	defer broker.Close()
	logger.Info("connected to RabbitMQ", "queue", cfg.ActivityQueueName)

	relayWorker := outbox.NewRelay(db, cfg.DatabaseURL, broker, logger)

	healthMux := http.NewServeMux()
	healthMux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		writeStatus(w, relayWorker.IsHealthy())
	})
	healthMux.HandleFunc("GET /health/ready", func(w http.ResponseWriter, r *http.Request) {
		writeStatus(w, relayWorker.IsReady() && broker.IsReady())
	})

	healthServer := &http.Server{
		Addr:              ":" + cfg.HealthPort,
		Handler:           healthMux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("starting health check server", "addr", healthServer.Addr)
		if err := healthServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("health server error", "error", err)
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Channel to capture fatal errors from relay worker
	errChan := make(chan error, 1)

	go func() {
		logger.Info("starting event processing worker")
		if err := relayWorker.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			errChan <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Info("received signal, initiating shutdown", "signal", sig.String())
	case err := <-errChan:
		logger.Error("fatal worker error, shutting down", "error", err)
	}
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := healthServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("error shutting down health server", "error", err)
	}

	logger.Info("shutdown complete")
}

func writeStatus(w http.ResponseWriter, up bool) {
	status, httpStatus := "UP", http.StatusOK
	if !up {
		status, httpStatus = "DOWN", http.StatusServiceUnavailable
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpStatus)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"status":    status,
		"component": "outbox-relay",
	})
}
