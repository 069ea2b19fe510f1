package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"langpack-manager/internal/api"
	"langpack-manager/internal/catalog"
	"langpack-manager/internal/cleanup"
	"langpack-manager/internal/config"
	"langpack-manager/internal/downloader"
	"langpack-manager/internal/engine"
	"langpack-manager/internal/extractor"
	"langpack-manager/internal/mirror"
	"langpack-manager/internal/notify"
	"langpack-manager/internal/progress"
	"langpack-manager/internal/scheduler"
	"langpack-manager/internal/state"
	"langpack-manager/internal/storage"
)

func main() {
	if err := run(); err != nil {
		slog.Error("Application failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Setup structured logging
	setupLogging(cfg.LogLevel)

	slog.Info("Starting Language Pack Manager", "version", "1.0.0")

	// Initialize the resume-record store
	states, err := state.New(cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to initialize state store: %w", err)
	}
	defer func() {
		if err := states.Close(); err != nil {
			slog.Error("Failed to close state store", "error", err)
		}
	}()

	cat := catalog.New(cfg.PackBaseURL)
	stor := storage.NewService(cfg.ModelsPath)
	bus := progress.NewBus()
	defer bus.Close()

	// Reconcile disk state with the record store before anything starts
	sweeper := cleanup.NewService(states, stor)
	if _, err := sweeper.Sweep(); err != nil {
		slog.Error("Startup cleanup sweep failed", "error", err)
	}

	sched := scheduler.New(states, scheduler.NewSystemConditions(cfg.ModelsPath),
		scheduler.WithScanInterval(cfg.ScanInterval),
		scheduler.WithConstraints(scheduler.Constraints{
			RequireUnmetered: cfg.RequireUnmetered,
			MinFreeBytes:     storage.SpaceBuffer,
		}))

	manager := downloader.New(cat, stor, states, extractor.NewService(), mirror.New(), bus,
		downloader.WithScheduler(sched),
		downloader.WithIdleTimeout(cfg.IdleTimeout))
	sched.Attach(manager)

	// Restore paused downloads persisted by a previous run
	if err := manager.Rehydrate(); err != nil {
		slog.Error("Failed to rehydrate paused downloads", "error", err)
	}

	eng := engine.NewStub()
	defer eng.Close()

	handlers := api.NewHandlers(cat, manager, stor, eng, bus)
	server := api.NewServer(cfg.ServerPort, handlers)

	presenter := notify.NewPresenter(cat, notify.NewLogSink())

	return runServer(server, sched, presenter, bus)
}

func runServer(server *api.Server, sched *scheduler.Scheduler, presenter *notify.Presenter, bus *progress.Bus) error {
	// Create main context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Background scan for interrupted downloads
	go func() {
		if err := sched.Run(ctx); err != nil && ctx.Err() == nil {
			slog.Error("Scheduler stopped", "error", err)
		}
	}()

	// Notification rendering off the progress bus
	events, unsubscribe := bus.Subscribe()
	defer unsubscribe()
	go presenter.Run(ctx, events)

	// Start server in goroutine
	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.Start()
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		return fmt.Errorf("server failed to start: %w", err)
	case sig := <-sigChan:
		slog.Info("Received shutdown signal", "signal", sig.String())
	}

	// Cancel context to stop the scheduler and presenter
	cancel()

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shutdown server gracefully: %w", err)
	}

	slog.Info("Server shutdown complete")
	return nil
}

// setupLogging configures structured logging based on the log level
func setupLogging(level string) {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: logLevel,
	}

	handler := slog.NewTextHandler(os.Stdout, opts)
	logger := slog.New(handler)
	slog.SetDefault(logger)
}
