package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fornitori/internal/backend"
	"fornitori/internal/cli"
	"fornitori/internal/mirror"
	"fornitori/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()

	logger.Info("Starting fornitori-worker")

	cfg := cli.LoadAndValidateConfig(logger)
	logger = cli.ApplyLogLevel(cfg.LogLevel)

	// The worker reads through the same gateway the server writes to. It
	// only ever exports, so sharing the SQLite file is safe.
	factory := backend.NewFactory(logger)
	result, err := factory.CreateBackend(context.Background(), backend.FromAppConfig(cfg))
	if err != nil {
		logger.Error("Failed to initialize backend", "error", err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	defer func() {
		if result.Cleanup != nil {
			if err := result.Cleanup(); err != nil {
				logger.Error("Backend cleanup failed", "error", err)
			}
		}
	}()

	// Mirror targets: the snapshot directory is always on, the
	// spreadsheet only when configured.
	var targets []mirror.Target

	dirTarget, err := mirror.NewDirTarget(cfg.SnapshotDir, cfg.SnapshotKeep)
	if err != nil {
		logger.Error("Failed to initialize snapshot directory", "error", err, "dir", cfg.SnapshotDir)
		os.Exit(1)
	}
	targets = append(targets, dirTarget)

	if cfg.GoogleSpreadsheetID != "" {
		sheetsTarget, err := mirror.NewSheetsFromEnv(context.Background())
		if err != nil {
			logger.Error("Failed to initialize Google Sheets mirror", "error", err)
			os.Exit(1)
		}
		targets = append(targets, sheetsTarget)
		logger.Info("Google Sheets mirror initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	} else {
		logger.Info("Google Sheets mirror disabled - no GOOGLE_SPREADSHEET_ID provided")
	}

	// Setup graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	snapshotWorker := worker.NewSnapshotWorker(result.Gateway, targets, worker.Config{
		Debounce: cfg.SnapshotDebounce,
		Interval: cfg.SnapshotInterval,
	})
	if err := snapshotWorker.Start(ctx); err != nil {
		logger.Error("Failed to start snapshot worker", "error", err)
		os.Exit(1)
	}

	// Consume change notifications when a broker is available. Without
	// one the periodic snapshot still keeps the mirrors fresh.
	if result.Events != nil {
		go func() {
			if err := result.Events.ConsumeChanges(ctx, snapshotWorker.HandleChange); err != nil {
				if err != context.Canceled {
					logger.Error("Message consumption failed", "error", err)
				}
				cancel()
			}
		}()
	} else {
		logger.Info("Change notifications disabled - relying on periodic snapshots")
	}

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Info("Shutdown signal received", "signal", sig.String())
	case <-ctx.Done():
		logger.Info("Context cancelled")
	}

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	logger.Info("Shutting down worker...")
	cancel()

	if err := snapshotWorker.Stop(shutdownCtx); err != nil {
		logger.Warn("Snapshot worker did not stop cleanly", "error", err)
	}
	logger.Info("Worker shutdown complete")
}
