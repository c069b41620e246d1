package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/tendhq/tend/internal/badge"
	"github.com/tendhq/tend/internal/concurrency"
	"github.com/tendhq/tend/internal/config"
	"github.com/tendhq/tend/internal/credibility"
	"github.com/tendhq/tend/internal/database"
	"github.com/tendhq/tend/internal/database/postgres"
	"github.com/tendhq/tend/internal/event"
	"github.com/tendhq/tend/internal/ledger"
	"github.com/tendhq/tend/internal/scheduler"
	"github.com/tendhq/tend/internal/server"
	"github.com/tendhq/tend/internal/task"
	"github.com/tendhq/tend/internal/user"
	"github.com/tendhq/tend/internal/worker"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Configuration failed", "error", err)
		os.Exit(1)
	}

	warnings, err := config.ValidateEnvWithWarnings()
	if err != nil {
		slog.Error("Environment validation failed", "error", err)
		os.Exit(1)
	}
	for _, warning := range warnings {
		slog.Warn(warning)
	}

	initLogger(cfg)
	slog.Info("Starting tend",
		"environment", cfg.Environment,
		"version", cfg.Version,
		"port", cfg.Port)

	if err := run(cfg); err != nil {
		slog.Error("Application failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Database
	pool, err := database.NewPool(cfg.GetDBConnString(),
		database.DefaultMaxConnections,
		database.DefaultMaxConnIdleTime,
		database.DefaultMaxConnLifetime)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := database.Migrate(pool); err != nil {
		return err
	}

	// Event system
	if err := os.MkdirAll(filepath.Dir(cfg.EventDeadLetterPath), 0755); err != nil {
		return err
	}
	bus := event.NewMemoryBus()
	publisher := event.NewResilientPublisher(bus, event.DefaultResilientConfig(cfg.EventDeadLetterPath))

	// Repositories
	userRepo := postgres.NewUserRepository(pool)
	taskRepo := postgres.NewTaskRepository(pool)
	ledgerRepo := postgres.NewLedgerRepository(pool)
	credibilityRepo := postgres.NewCredibilityRepository(pool)

	// Services
	locks := concurrency.NewLockManager()
	statsLoc := cfg.StatsLocation()

	credibilityService := credibility.NewService(credibilityRepo, locks, publisher)
	ledgerService := ledger.NewService(ledgerRepo, locks, publisher, statsLoc)
	taskService := task.NewService(taskRepo, userRepo, credibilityService, ledgerService, publisher)
	userService := user.NewService(userRepo)
	badgeService := badge.NewService(statsLoc)
	badge.NewEventHandler(badgeService).Register(bus)

	// Background expiry sweep
	workerPool := worker.NewPool(1, 10)
	workerPool.Start()
	sched := scheduler.New(workerPool)
	sched.Schedule(cfg.TaskExpiryInterval, worker.NewExpiryJob(taskService))

	srv := server.NewServer(cfg.Port, cfg.APIKey, cfg.TrustedProxies, pool, userService, taskService, ledgerService, credibilityService, badgeService)

	serverErr := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
	}

	slog.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	// Stop accepting requests first, then the sweep, then flush events
	if err := srv.Stop(shutdownCtx); err != nil {
		slog.Error("Server forced shutdown", "error", err)
	}
	sched.Stop()
	workerPool.Stop()
	publisher.Wait()

	slog.Info("Server stopped")
	return nil
}
