package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/milanv/jobhub/internal/orchestrator/api/rest"
	"github.com/milanv/jobhub/internal/orchestrator/core"
	"github.com/milanv/jobhub/internal/orchestrator/journal"
	"github.com/milanv/jobhub/internal/orchestrator/rules"
	"github.com/milanv/jobhub/internal/orchestrator/service"
	"github.com/milanv/jobhub/internal/shared/config"
	"github.com/milanv/jobhub/internal/shared/logging"
)

// systemAccount is the identity the ticker processes pending events as.
const systemAccount = "system"

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg, err := config.LoadOrchestrator(*configPath)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.Logging.Level, cfg.Logging.Format)

	var jnl *journal.Journal
	if cfg.Journal.Path != "" {
		jnl, err = journal.Open(cfg.Journal.Path)
		if err != nil {
			logger.Fatal("Failed to open journal", "path", cfg.Journal.Path, "error", err)
		}
		defer jnl.Close()
	}

	svc, err := service.New(cfg.Limits.CoreLimits(), jnl, logger)
	if err != nil {
		logger.Fatal("Failed to restore state", "error", err)
	}

	if len(cfg.Rules.Patterns) > 0 && freshDeployment(jnl, logger) {
		files, err := rules.Load(cfg.Rules.Patterns)
		if err != nil {
			logger.Fatal("Failed to load rule files", "error", err)
		}
		if err := rules.ApplyAll(files, svc); err != nil {
			logger.Fatal("Failed to apply rule files", "error", err)
		}
		logger.Info("Rule files applied", "files", len(files))
	}

	server := rest.NewServer(cfg.REST, svc, cfg.Auth.AdminToken, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go runTicker(ctx, svc, cfg.Ticker, logger)

	go func() {
		logger.Info("Starting orchestrator API server", "addr", cfg.REST.Addr, "height", uint64(svc.Height()))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("Server forced to shutdown", "error", err)
	}
	logger.Info("Server stopped", "height", uint64(svc.Height()))
}

// freshDeployment reports whether rule bootstrap files should be applied.
// Seeded events land in the journal, so a restart over a non-empty journal
// already has them and applying again would duplicate them.
func freshDeployment(jnl *journal.Journal, logger logging.Logger) bool {
	if jnl == nil {
		return true
	}
	n, err := jnl.Len()
	if err != nil {
		logger.Fatal("Failed to inspect journal", "error", err)
	}
	return n == 0
}

// runTicker advances the logical height and drains a batch of pending
// events on every interval.
func runTicker(ctx context.Context, svc *service.Service, cfg config.TickerConfig, logger logging.Logger) {
	ticker := time.NewTicker(cfg.HeightInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			height := svc.AdvanceHeight()
			processed := svc.AutoProcessPending(core.AccountID(systemAccount), cfg.AutoProcessBatch)
			if len(processed) > 0 {
				logger.Debug("Tick", "height", uint64(height), "events_processed", len(processed))
			}
		}
	}
}
