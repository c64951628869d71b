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

	"github.com/joho/godotenv"

	"github.com/JonMunkholm/doccompare/internal/config"
	"github.com/JonMunkholm/doccompare/internal/core"
	"github.com/JonMunkholm/doccompare/internal/logging"
	"github.com/JonMunkholm/doccompare/internal/store"
	"github.com/JonMunkholm/doccompare/internal/web"
	"github.com/JonMunkholm/doccompare/internal/workspace"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	// Load and validate configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Setup structured logging based on config
	logging.Setup(cfg.Logging.Enabled, cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"workspace", cfg.Workspace.Root,
		"compare_max_concurrent", cfg.Compare.MaxConcurrent,
		"rate_limit_enabled", cfg.Rate.Enabled,
		"api_key_required", cfg.Security.RequireAPIKey,
	)

	ctx := context.Background()
	history, err := openStore(ctx, cfg.Store)
	if err != nil {
		slog.Error("failed to open history store", "error", err)
		os.Exit(1)
	}
	defer history.Close()

	ws, err := workspace.New(cfg.Workspace.Root)
	if err != nil {
		slog.Error("failed to prepare workspace", "root", cfg.Workspace.Root, "error", err)
		os.Exit(1)
	}

	service := core.NewService(cfg, ws, history)
	server := web.NewServer(service, cfg)

	// Create cancellable context for background jobs
	jobCtx, cancelJobs := context.WithCancel(context.Background())

	// Expired session folders are swept in the background
	sweeper := workspace.NewSweeper(ws, cfg.Workspace.SessionTTL, cfg.Workspace.SweepInterval,
		slog.Default().With("component", "sweeper"))
	go sweeper.Run(jobCtx)

	// Graceful shutdown
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")

		// Stop background jobs
		cancelJobs()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		// Wait for running comparisons to complete (with timeout)
		status := service.Limiter().Status()
		if status.Active > 0 {
			slog.Info("waiting for comparisons to complete", "active", status.Active)
			if err := service.Limiter().WaitForDrain(shutdownCtx); err != nil {
				slog.Warn("comparisons did not complete in time", "error", err)
			} else {
				slog.Info("all comparisons completed")
			}
		}

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	if err := server.Start(cfg.Server.Addr()); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server stopped", "error", err)
		cancelJobs()
		history.Close()
		os.Exit(1)
	}
	<-stopped
	slog.Info("server stopped")
}

// openStore picks PostgreSQL when a database URL is configured and the
// embedded Badger store otherwise.
func openStore(ctx context.Context, cfg config.StoreConfig) (store.Store, error) {
	if cfg.DatabaseURL == "" {
		slog.Info("using embedded history store", "path", cfg.BadgerPath)
		return store.OpenBadger(cfg.BadgerPath)
	}

	st, err := store.OpenPostgres(ctx, store.PostgresConfig{
		URL:      cfg.DatabaseURL,
		MaxConns: cfg.MaxConns,
	})
	if err != nil {
		return nil, err
	}

	// Log which database we connected to
	if u, err := url.Parse(cfg.DatabaseURL); err == nil {
		slog.Info("connected to database", "name", strings.TrimPrefix(u.Path, "/"))
	} else {
		slog.Info("connected to database")
	}
	return st, nil
}
