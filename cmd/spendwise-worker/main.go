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

	"spendwise/internal/amqp"
	"spendwise/internal/config"
	applog "spendwise/internal/log"
	gsheet "spendwise/internal/sheets/google"
	"spendwise/internal/storage"
	"spendwise/internal/worker"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	// Setup structured logging
	logger := applog.New(applog.Config{Component: applog.ComponentWorker})
	applog.SetDefault(logger)

	logger.Info("Starting spendwise-worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	// SQLite repository to read pending transactions
	sqliteRepo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer sqliteRepo.Close()

	// Google Sheets client for the report export
	if cfg.GoogleSpreadsheetID == "" {
		logger.Error("GOOGLE_SPREADSHEET_ID is required for the export worker")
		os.Exit(1)
	}
	sheetsClient, err := gsheet.NewFromEnv(context.Background())
	if err != nil {
		logger.Error("Failed to initialize Google Sheets client", "error", err)
		os.Exit(1)
	}
	logger.Info("Google Sheets client initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)

	// AMQP client for consuming sync messages
	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	syncWorker := worker.NewSyncWorker(sqliteRepo, sheetsClient, cfg.SyncBatchSize)

	// On startup, process any pending transactions that might have been missed
	logger.Info("Performing startup sync check...")
	if err := syncWorker.StartupSyncCheck(ctx); err != nil {
		logger.Error("Failed startup sync check", "error", err)
		// Don't exit - continue with normal operation
	}

	g, gctx := errgroup.WithContext(ctx)

	// AMQP consumer loop
	g.Go(func() error {
		err := amqpClient.ConsumeTransactionSync(gctx, func(msg *amqp.TransactionSyncMessage) error {
			return syncWorker.HandleSyncMessage(gctx, msg)
		})
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})

	// Periodic sweep for transactions the messages missed
	g.Go(func() error {
		ticker := time.NewTicker(cfg.SyncInterval)
		defer ticker.Stop()

		for {
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
				if err := syncWorker.ProcessPendingTransactions(gctx); err != nil {
					logger.Error("Periodic sync failed", "error", err)
				}
			}
		}
	})

	if err := g.Wait(); err != nil {
		logger.Error("Worker stopped with error", "error", err)
		os.Exit(1)
	}

	logger.Info("Worker shutdown complete")
}
