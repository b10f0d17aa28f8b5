// Package main is the entry point for the trainline API server.
// Its sole responsibility is wiring dependencies together and starting the server.
// No business logic belongs here.
package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/klauspost/compress/gzhttp"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pkordes/trainline/internal/config"
	"github.com/pkordes/trainline/internal/handler"
	"github.com/pkordes/trainline/internal/metrics"
	"github.com/pkordes/trainline/internal/middleware"
	"github.com/pkordes/trainline/internal/repo"
	"github.com/pkordes/trainline/internal/seed"
	"github.com/pkordes/trainline/internal/service"
)

func main() {
	// --- Config -----------------------------------------------------------
	cfg, err := config.Load()
	if err != nil {
		// Use plain stderr before the logger is configured.
		slog.Error("configuration error", "error", err)
		os.Exit(1)
	}

	// --- Logger -----------------------------------------------------------
	var logLevel slog.Level
	if err := logLevel.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		logLevel = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	m := metrics.NewWithLogger(logger)
	defer m.Shutdown()

	// --- Store ------------------------------------------------------------
	ctx := context.Background()
	store, closeStore, err := openStore(ctx, cfg, logger, m)
	if err != nil {
		slog.Error("failed to open train store", "driver", cfg.StoreDriver, "error", err)
		os.Exit(1)
	}
	defer closeStore()

	// --- Registry ---------------------------------------------------------
	opts := []service.Option{service.WithLogger(logger), service.WithMetrics(m)}
	if cfg.SeedFile != "" {
		seeds, err := seed.LoadFile(cfg.SeedFile)
		if err != nil {
			slog.Error("failed to read seed file", "path", cfg.SeedFile, "error", err)
			os.Exit(1)
		}
		opts = append(opts, service.WithSeeds(seeds))
	}
	registry := service.NewTrainRegistry(store, opts...)

	// A failed load leaves the registry empty; the API still starts so the
	// collection can be rebuilt or reloaded once the store is fixed.
	if err := registry.Load(ctx); err != nil {
		slog.Error("starting with an empty registry", "error", err)
	}

	routes := service.NewRouteService(registry, cfg.RouteCacheSize, m, logger)
	limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, m)

	api := handler.NewServer(registry, routes,
		handler.WithLogger(logger),
		handler.WithRouteLimiter(limiter.Handler),
	)

	// --- Router -----------------------------------------------------------
	// Middleware is applied in order: RequestID → RealIP → Logger → Metrics →
	// Recoverer → CORS → body limit.
	// RequestID generates a unique trace ID per request.
	// RealIP sets r.RemoteAddr from X-Forwarded-For / X-Real-IP, which the
	// rate limiter keys on.
	// Recoverer catches panics and returns HTTP 500 instead of crashing.
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewSlogLogger(logger))
	r.Use(middleware.NewMetricsHandler(m))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.NewCORSHandler(cfg.CORSOrigins))
	r.Use(middleware.NewMaxBodySizeHandler(cfg.MaxBodyBytes))

	r.Handle("/metrics", promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{}))
	r.Mount("/", api.Handler())

	// --- HTTP Server ------------------------------------------------------
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      gzhttp.GzipHandler(r),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown: wait for OS signal, then give in-flight requests
	// up to 15 seconds to complete before forcefully closing.
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "addr", srv.Addr, "store", cfg.StoreDriver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-stop
	slog.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

// openStore builds the TrainStore selected by cfg.StoreDriver. The returned
// func releases whatever the store holds open.
func openStore(ctx context.Context, cfg config.Config, logger *slog.Logger, m *metrics.Metrics) (repo.TrainStore, func(), error) {
	switch cfg.StoreDriver {
	case config.DriverPostgres:
		// pgxpool.New does not open connections immediately; the ping does.
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("create database pool: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("connect to database: %w", err)
		}

		// goose needs database/sql; share the pool rather than open a second one.
		sqlDB := stdlib.OpenDBFromPool(pool)
		if err := repo.Migrate(ctx, sqlDB, repo.DialectPostgres); err != nil {
			_ = sqlDB.Close()
			pool.Close()
			return nil, nil, err
		}
		m.StartDBStatsCollector(sqlDB, 15*time.Second)
		slog.Info("database connection established")

		return repo.NewPostgresStore(pool, logger), func() {
			_ = sqlDB.Close()
			pool.Close()
		}, nil

	case config.DriverSQLite:
		db, err := repo.OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		m.StartDBStatsCollector(db, 15*time.Second)
		return repo.NewSQLiteStore(db, logger), closer(db), nil

	default:
		return repo.NewFileStore(cfg.TrainsFile, logger), func() {}, nil
	}
}

func closer(db *sql.DB) func() {
	return func() { _ = db.Close() }
}
