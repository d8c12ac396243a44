package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/JonMunkholm/typesniff/internal/config"
	"github.com/JonMunkholm/typesniff/internal/core"
	"github.com/JonMunkholm/typesniff/internal/logging"
	"github.com/JonMunkholm/typesniff/internal/web"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"database", cfg.Database.Enabled(),
		"analysis_max_concurrent", cfg.Analysis.MaxConcurrent,
		"rate_limit_enabled", cfg.Rate.Enabled,
	)

	ctx := context.Background()

	var pool *pgxpool.Pool
	if cfg.Database.Enabled() {
		pool, err = connect(ctx, cfg.Database)
		if err != nil {
			slog.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer pool.Close()
	} else {
		slog.Warn("no database configured, ingest and profiles are disabled")
	}

	limiter := core.NewAnalysisLimiter(cfg.Analysis.MaxConcurrent, cfg.Analysis.MaxWaitTime)
	service := core.NewService(pool, limiter, core.Options{
		MaxDocumentSize:   cfg.Analysis.MaxDocumentSize,
		Workers:           cfg.Analysis.Workers,
		ParallelThreshold: cfg.Analysis.ParallelThreshold,
		MaxInteger:        cfg.Analysis.MaxInteger,
		MaxJSONDepth:      cfg.Analysis.MaxJSONDepth,
		Timeout:           cfg.Analysis.Timeout,
	})

	if pool != nil {
		if err := service.EnsureSchema(ctx); err != nil {
			slog.Error("failed to prepare profile table", "error", err)
			os.Exit(1)
		}
	}

	server := web.NewServer(service, cfg)

	jobCtx, cancelJobs := context.WithCancel(context.Background())
	if pool != nil {
		go service.StartProfilePruner(jobCtx, core.RetentionConfig{
			ProfileDays:   cfg.Retention.ProfileDays,
			CheckInterval: cfg.Retention.CheckInterval,
		})
	}

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")
		cancelJobs()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if status := limiter.Status(); status.Active > 0 {
			slog.Info("waiting for analyses to complete", "active", status.Active)
			if err := limiter.WaitForDrain(shutdownCtx); err != nil {
				slog.Warn("analyses did not complete in time", "error", err)
			}
		}

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

// connect opens and verifies the connection pool.
func connect(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, err
	}
	poolConfig.MaxConns = int32(cfg.MaxConns)
	poolConfig.MinConns = int32(cfg.MinConns)
	poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.MaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	if u, err := url.Parse(cfg.URL); err == nil {
		slog.Info("connected to database", "name", strings.TrimPrefix(u.Path, "/"))
	} else {
		slog.Info("connected to database")
	}
	return pool, nil
}
