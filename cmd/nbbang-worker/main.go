package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"nbbang/internal/amqp"
	"nbbang/internal/config"
	"nbbang/internal/log"
	"nbbang/internal/report"
	gsheet "nbbang/internal/report/google"
	mem "nbbang/internal/report/memory"
	"nbbang/internal/storage"
	"nbbang/internal/worker"
)

func main() {
	_ = godotenv.Load()

	logger := log.Setup().WithComponent(log.ComponentWorker)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}

	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository",
			log.FieldError, err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var writer report.SettlementWriter
	switch cfg.ReportBackend {
	case "sheets":
		client, err := gsheet.New(ctx, cfg)
		if err != nil {
			logger.Error("Failed to initialize Google Sheets client", log.FieldError, err)
			os.Exit(1)
		}
		writer = client
		logger.Info("Initialized sheets report backend", "sheet", cfg.GoogleReportSheet)
	default:
		writer = mem.New()
		logger.Info("Initialized memory report backend")
	}

	reportWorker := worker.NewReportWorker(repo, writer)

	g, ctx := errgroup.WithContext(ctx)

	// Consume until shutdown, reconnecting after broker outages.
	g.Go(func() error {
		for {
			if err := consumeOnce(ctx, cfg, reportWorker); err != nil {
				if errors.Is(err, context.Canceled) {
					return nil
				}
				logger.Error("Consumer stopped, retrying",
					log.FieldError, err, "retry_in", cfg.RetryInterval)
			}
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(cfg.RetryInterval):
			}
		}
	})

	logger.Info("Starting nbbang-worker",
		"queue", cfg.AMQPQueue, "backend", cfg.ReportBackend)

	if err := g.Wait(); err != nil {
		logger.Error("Worker failed", log.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Worker stopped gracefully")
}

// consumeOnce dials the broker and consumes until the connection drops or the
// context is cancelled.
func consumeOnce(ctx context.Context, cfg *config.Config, w *worker.ReportWorker) error {
	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		return err
	}
	defer client.Close()

	return client.ConsumeMeetingSaved(ctx, w.HandleMeetingSaved)
}
