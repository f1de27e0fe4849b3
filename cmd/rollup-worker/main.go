package main

import (
	"context"
	"errors"
	"time"

	"nutritrack/internal/cli"
	"nutritrack/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()

	logger.Info("Starting rollup-worker")

	cfg := cli.LoadAndValidateConfig(logger)

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	rollupWorker := worker.NewRollupWorker(repo, cfg.RollupInterval)

	logger.Info("Rollup worker configured",
		"interval", cfg.RollupInterval,
		"sqlite_db", cfg.SQLiteDBPath)

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, nil)

	if err := rollupWorker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Rollup worker stopped", "error", err)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Rollup worker stopped gracefully")
}
