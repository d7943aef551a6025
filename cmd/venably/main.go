package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"

	vhttp "github.com/venably/venably/internal/adapter/http"
	vnats "github.com/venably/venably/internal/adapter/nats"
	votel "github.com/venably/venably/internal/adapter/otel"
	"github.com/venably/venably/internal/adapter/postgres"
	"github.com/venably/venably/internal/adapter/ristretto"
	"github.com/venably/venably/internal/config"
	"github.com/venably/venably/internal/logger"
	"github.com/venably/venably/internal/middleware"
	"github.com/venably/venably/internal/port/messagequeue"
	"github.com/venably/venably/internal/service"
)

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})))

	if err := run(); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	log, logCloser := logger.New(cfg.Logging)
	slog.SetDefault(log)
	defer logCloser.Close()

	slog.Info("config loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Logging.Level,
		"pg_max_conns", cfg.Postgres.MaxConns,
	)

	ctx := context.Background()

	// --- Telemetry ---
	otelShutdown, err := votel.Setup(ctx, cfg.Logging.Service, cfg.Otel.Endpoint)
	if err != nil {
		return fmt.Errorf("otel: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = otelShutdown(shutdownCtx)
	}()

	metrics, err := votel.NewMetrics()
	if err != nil {
		return fmt.Errorf("metrics: %w", err)
	}

	// --- Infrastructure ---

	// PostgreSQL
	pool, err := postgres.NewPool(ctx, cfg.Postgres)
	if err != nil {
		return fmt.Errorf("postgres: %w", err)
	}
	defer pool.Close()
	slog.Info("postgres connected")

	if err := postgres.RunMigrations(ctx, cfg.Postgres.DSN); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}
	slog.Info("migrations applied")

	// NATS is optional: without it the core still books, it just emits no
	// lifecycle events.
	var queue messagequeue.Queue
	if cfg.NATS.URL != "" {
		q, err := vnats.Connect(ctx, cfg.NATS.URL)
		if err != nil {
			slog.Warn("nats unavailable, events disabled", "error", err)
		} else {
			queue = q
			defer func() { _ = q.Close() }()
		}
	}

	// Reference-data cache
	cache, err := ristretto.New(cfg.Cache.MaxSizeMB << 20)
	if err != nil {
		return fmt.Errorf("cache: %w", err)
	}
	defer cache.Close()

	// --- Services ---
	store := postgres.NewStore(pool)
	retry := service.RetryPolicy{MaxTries: cfg.Retry.MaxTries, InitialInterval: cfg.Retry.InitialInterval}

	tenantSvc := service.NewTenantService(store, cache)
	handlers := &vhttp.Handlers{
		Tenants:      tenantSvc,
		Customers:    service.NewCustomerService(store, cache),
		Venues:       service.NewVenueService(store, cache),
		Availability: service.NewAvailabilityService(store),
		Bookings:     service.NewBookingService(store, tenantSvc, queue, metrics, retry),
		Contracts:    service.NewContractService(store, tenantSvc, queue, metrics, retry),
	}

	// --- HTTP ---
	r := chi.NewRouter()
	r.Use(votel.HTTPMiddleware(cfg.Logging.Service))
	r.Use(middleware.RequestID)
	r.Use(vhttp.Logger)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(cfg.Server.RequestTimeout))

	r.Get("/health", healthHandler(pool, queue))

	vhttp.MountRoutes(r, handlers)

	addr := ":" + cfg.Server.Port

	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// Graceful shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		slog.Info("starting server", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed", "error", err)
		}
	}()

	<-done
	slog.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}

// healthHandler reports service health, pinging the database on each call.
func healthHandler(pool *pgxpool.Pool, queue messagequeue.Queue) http.HandlerFunc {
	type healthStatus struct {
		Status   string `json:"status"`
		Postgres string `json:"postgres"`
		Events   string `json:"events"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		status := healthStatus{Status: "ok", Postgres: "ok", Events: "ok"}
		code := http.StatusOK

		pingCtx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := pool.Ping(pingCtx); err != nil {
			status.Status = "degraded"
			status.Postgres = "unreachable"
			code = http.StatusServiceUnavailable
		}
		if queue == nil {
			status.Events = "disabled"
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		_ = json.NewEncoder(w).Encode(status)
	}
}
