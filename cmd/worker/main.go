package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"

	"github.com/milanv/jobhub/internal/shared/config"
	"github.com/milanv/jobhub/internal/shared/logging"
	"github.com/milanv/jobhub/internal/worker/service"
	"github.com/milanv/jobhub/pkg/client"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg, err := config.LoadWorker(*configPath)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.Logging.Level, cfg.Logging.Format)
	workerID := uuid.New()

	account := cfg.Account
	if account == "" {
		account = fmt.Sprintf("worker-%s", workerID)
	}

	orchestrator := client.New(cfg.Orchestrator.Addr, account, client.WithTimeout(cfg.Orchestrator.Timeout))
	executor := service.NewHashChainExecutor()
	worker := service.NewWorkerService(orchestrator, executor, account, cfg.PollInterval, cfg.MaxBatch, logger)

	ctx, cancel := context.WithCancel(context.Background())
	go worker.Run(ctx)

	logger.Info("Worker started",
		"worker_id", workerID.String(),
		"account", account,
		"orchestrator", cfg.Orchestrator.Addr,
		"poll_interval", cfg.PollInterval.String(),
	)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	cancel()
	logger.Info("Shutting down worker", "worker_id", workerID.String())
}
