// The finances-worker consumes launch lifecycle events and writes an audit
// trail to the log. When a launch settles it also reports the owner's fresh
// balance.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"finances/internal/amqp"
	"finances/internal/config"
	"finances/internal/core"
	"finances/internal/services"
	"finances/internal/storage"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	logger.Info("starting finances-worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("configuration validation failed", "error", err)
		os.Exit(1)
	}
	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the worker")
		os.Exit(1)
	}

	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("failed to initialize sqlite repository", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	launches := services.NewLaunchService(repo, nil)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return amqpClient.ConsumeLaunchEvents(ctx, func(msg *amqp.LaunchEventMessage) error {
			return handleEvent(ctx, launches, msg)
		})
	})

	g.Go(func() error {
		ticker := time.NewTicker(cfg.SummaryInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-ticker.C:
				counts, err := repo.LaunchCountsByStatus(ctx)
				if err != nil {
					slog.ErrorContext(ctx, "failed to count launches", "error", err)
					continue
				}
				slog.InfoContext(ctx, "launch status summary",
					"pending", counts[core.Pending],
					"settled", counts[core.Settled],
					"cancelled", counts[core.Cancelled])
			}
		}
	})

	if err := g.Wait(); err != nil && err != context.Canceled {
		logger.Error("worker stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Info("worker stopped gracefully")
}

// handleEvent logs one audit line per event. Settlements additionally report
// the owner's balance so the audit trail shows the financial effect.
func handleEvent(ctx context.Context, launches *services.LaunchService, msg *amqp.LaunchEventMessage) error {
	slog.InfoContext(ctx, "launch event",
		"event", msg.Event,
		"launch_id", msg.LaunchID,
		"user_id", msg.UserID,
		"status", msg.Status,
		"occurred_at", msg.Timestamp)

	if core.LaunchStatus(msg.Status) != core.Settled {
		return nil
	}

	balance, err := launches.BalanceByUser(ctx, msg.UserID)
	if err != nil {
		return err
	}
	slog.InfoContext(ctx, "balance after settlement",
		"user_id", msg.UserID,
		"balance", balance.Decimal())
	return nil
}
