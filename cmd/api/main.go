// Package main is the entrypoint for the MapMe API server.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strings"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/mapme/mapme/internal/config"
	"github.com/mapme/mapme/internal/handler"
	"github.com/mapme/mapme/internal/metrics"
	"github.com/mapme/mapme/internal/middleware"
	"github.com/mapme/mapme/internal/provision"
	"github.com/mapme/mapme/internal/server"
	"github.com/mapme/mapme/internal/store"
)

func main() {
	ctx := context.Background()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Initialize logger
	logger := initLogger(cfg)

	// Initialize record store
	recordStore, err := newStore(ctx, cfg)
	if err != nil {
		logger.Error(
			"failed to connect to record store",
			slog.String("backend", cfg.StoreBackend),
			slog.String("error", sanitizeError(err, cfg.RedisURL, cfg.DatabaseURL)),
		)
		os.Exit(1)
	}
	defer recordStore.Close()
	logger.Info("connected to record store", "backend", cfg.StoreBackend)

	// Initialize metrics
	metricsRecorder := metrics.NewNoop()

	// Initialize handlers
	h := handler.New()
	healthHandler := handler.NewHealthHandler(recordStore)
	profileHandler := handler.NewProfileHandler(recordStore, logger, metricsRecorder)
	searchHandler := handler.NewSearchHandler(recordStore, logger, metricsRecorder, cfg.SearchHistoryLimit)
	provisioner := provision.New(recordStore, logger, metricsRecorder)
	provisionHandler := handler.NewProvisionHandler(provisioner, logger)

	// Setup router
	r := setupRouter(h, healthHandler, profileHandler, searchHandler, provisionHandler, logger, metricsRecorder)

	// Create and run server
	srv := server.New(
		r,
		cfg.AppPort,
		cfg.ReadTimeout,
		cfg.WriteTimeout,
		cfg.ShutdownTimeout,
		logger,
	)

	logger.Info("starting server",
		"port", cfg.AppPort,
		"env", cfg.AppEnv,
		"store_backend", cfg.StoreBackend,
	)

	if err := srv.Run(); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

// newStore builds the configured record store backend.
func newStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	switch cfg.StoreBackend {
	case config.BackendRedis:
		return store.NewRedis(ctx, cfg.RedisURL)
	case config.BackendPostgres:
		return store.NewPostgres(ctx, cfg.DatabaseURL)
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}

// initLogger initializes the slog logger based on configuration.
func initLogger(cfg *config.Config) *slog.Logger {
	var h slog.Handler

	opts := &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	}

	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(h)
	slog.SetDefault(logger)

	return logger
}

// parseLogLevel converts string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// setupRouter configures the chi router with all routes and middleware.
func setupRouter(
	h *handler.Handler,
	healthHandler *handler.HealthHandler,
	profileHandler *handler.ProfileHandler,
	searchHandler *handler.SearchHandler,
	provisionHandler *handler.ProvisionHandler,
	logger *slog.Logger,
	rec metrics.Recorder,
) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger, rec))
	r.Use(middleware.Recoverer(logger))

	// Health endpoints (no identity required)
	r.Get("/healthz", healthHandler.Healthz)
	r.Get("/readyz", healthHandler.Readyz)

	// Root info endpoint
	r.Get("/", h.Hello)

	// API v1 routes: identity is extracted from trusted gateway
	// headers; each handler applies its own authentication gate.
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.CORS())
		r.Use(middleware.Identity())

		r.Route("/profile", func(r chi.Router) {
			r.MethodNotAllowed(profileHandler.MethodNotAllowed)
			r.Get("/", profileHandler.Get)
			r.Put("/", profileHandler.Put)
		})

		r.Route("/searches", func(r chi.Router) {
			r.MethodNotAllowed(searchHandler.MethodNotAllowed)
			r.Get("/", searchHandler.List)
			r.Post("/", searchHandler.Create)
		})
	})

	// Identity-provider callback; reachable only from the private
	// network, never routed through the public gateway.
	r.Post("/internal/hooks/account-confirmed", provisionHandler.AccountConfirmed)

	// 404 handler
	r.NotFound(h.NotFound)

	return r
}

// sanitizeError strips connection secrets from error text before logging.
func sanitizeError(err error, secrets ...string) string {
	if err == nil {
		return ""
	}

	msg := err.Error()
	for _, secret := range secrets {
		if secret == "" {
			continue
		}
		redacted := redactURL(secret)
		if redacted == "" {
			redacted = "[redacted]"
		}
		msg = strings.ReplaceAll(msg, secret, redacted)
	}

	return msg
}

func redactURL(raw string) string {
	if raw == "" {
		return ""
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "[redacted]"
	}

	if parsed.User != nil {
		username := parsed.User.Username()
		if username == "" {
			parsed.User = url.User("redacted")
		} else {
			parsed.User = url.User(username)
		}
	}

	return parsed.String()
}
