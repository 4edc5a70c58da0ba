package main

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	"github.com/AchilleasB/membership-console/internal/adapters/apiclient"
	"github.com/AchilleasB/membership-console/internal/adapters/cache"
	"github.com/AchilleasB/membership-console/internal/adapters/handler"
	"github.com/AchilleasB/membership-console/internal/adapters/notify"
	"github.com/AchilleasB/membership-console/internal/adapters/repository"
	"github.com/AchilleasB/membership-console/internal/config"
	"github.com/AchilleasB/membership-console/internal/core/ports"
	"github.com/AchilleasB/membership-console/internal/core/services"
	"github.com/AchilleasB/membership-console/internal/core/viewstate"
	"github.com/AchilleasB/membership-console/internal/logging"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	logger := logging.Setup(cfg.LogLevel, cfg.LogFormat)

	ctx := context.Background()

	var signer *apiclient.TokenSigner
	if cfg.APISigningKey != nil {
		signer = apiclient.NewTokenSigner(cfg.APISigningKey, cfg.APITokenIssuer)
		logger.Info("membership API requests will be signed", "issuer", cfg.APITokenIssuer)
	}
	client := apiclient.NewClient(apiclient.Config{
		BaseURL: cfg.APIBaseURL,
		Timeout: cfg.APITimeout,
		Signer:  signer,
		Logger:  logger,
	})

	var api ports.MembershipAPI = client
	var redisClient *redis.Client
	if cfg.UseCache {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       0,
		})
		defer redisClient.Close()

		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Warn("redis unreachable, record cache will fall through to the API", "addr", cfg.RedisAddr, "error", err)
		} else {
			logger.Info("connected to redis", "addr", cfg.RedisAddr)
		}
		recordCache := cache.NewRedisRecordCache(redisClient, cfg.CacheKeyPrefix, cfg.CacheDefaultTTL, logger)
		api = cache.NewCachedAPI(client, recordCache, logger)
	}

	hub := notify.NewHub(logger)
	opts := []services.Option{
		services.WithLogger(logger),
		services.WithNotifier(hub),
	}

	var db *sql.DB
	if cfg.HasActivityOutbox() {
		db, err = sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			logger.Error("failed to open database", "error", err)
			os.Exit(1)
		}
		defer db.Close()

		activity := repository.NewActivityRepository(db)
		if err := activity.EnsureSchema(ctx); err != nil {
			logger.Error("failed to prepare activity outbox", "error", err)
			os.Exit(1)
		}
		opts = append(opts, services.WithActivityRecorder(activity))
		logger.Info("activity outbox enabled")
	}

	console := services.NewConsoleService(api, cfg.Location, opts...)

	// The first load happens at startup; a failure is shown on the home screen.
	if _, err := console.Dispatch(ctx, viewstate.RefreshData{}); err != nil {
		logger.Warn("initial data load failed", "error", err)
	}

	router := handler.NewRouter(handler.RouterConfig{
		Console:          handler.NewConsoleHandler(console, logger),
		Health:           handler.NewHealthHandler(db, redisClient, client),
		Notifications:    notify.Handler(hub, cfg.CORSAllowedOrigins),
		AllowedOrigins:   cfg.CORSAllowedOrigins,
		ActionsPerMinute: cfg.ActionRateLimit,
		Logger:           logger,
	})

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("starting server", "addr", server.Addr, "api", cfg.APIBaseURL, "timezone", cfg.Location.String())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	logger.Info("server stopped")
}
