// Package worker exports stored transactions to the Google Sheets
// report spreadsheet. It consumes AMQP sync messages and sweeps for rows
// the messages missed.
package worker

import (
	"context"
	"fmt"
	"log/slog"

	"spendwise/internal/amqp"
	"spendwise/internal/analyser"
	"spendwise/internal/core"
	"spendwise/internal/sheets"
	"spendwise/internal/storage"
)

// SyncWorker exports transactions from SQLite to the report spreadsheet.
type SyncWorker struct {
	storage   *storage.SQLiteRepository
	exporter  sheets.TransactionExporter
	batchSize int
}

func NewSyncWorker(storage *storage.SQLiteRepository, exporter sheets.TransactionExporter, batchSize int) *SyncWorker {
	return &SyncWorker{
		storage:   storage,
		exporter:  exporter,
		batchSize: batchSize,
	}
}

// HandleSyncMessage processes a single transaction sync message from AMQP
func (w *SyncWorker) HandleSyncMessage(ctx context.Context, msg *amqp.TransactionSyncMessage) error {
	slog.InfoContext(ctx, "Processing sync message",
		"id", msg.ID,
		"version", msg.Version)

	txn, err := w.storage.GetTransaction(ctx, msg.ID)
	if err != nil {
		return fmt.Errorf("get transaction from storage: %w", err)
	}

	if err := w.exportTransaction(ctx, msg.ID, txn); err != nil {
		return fmt.Errorf("export transaction: %w", err)
	}

	return nil
}

// ProcessPendingTransactions exports any transactions that haven't been
// synced yet. This is a backup mechanism in case AMQP messages are lost.
func (w *SyncWorker) ProcessPendingTransactions(ctx context.Context) error {
	pending, err := w.storage.GetPendingSync(ctx, w.batchSize)
	if err != nil {
		return fmt.Errorf("get pending transactions: %w", err)
	}

	if len(pending) == 0 {
		return nil
	}

	slog.InfoContext(ctx, "Processing pending transactions", "count", len(pending))

	for _, p := range pending {
		txn, err := w.storage.GetTransaction(ctx, p.ID)
		if err != nil {
			slog.ErrorContext(ctx, "Failed to get transaction", "id", p.ID, "error", err)
			if err := w.storage.MarkSyncError(ctx, p.ID); err != nil {
				slog.ErrorContext(ctx, "Failed to mark sync error", "id", p.ID, "error", err)
			}
			continue
		}

		if err := w.exportTransaction(ctx, p.ID, txn); err != nil {
			slog.ErrorContext(ctx, "Failed to export transaction", "id", p.ID, "error", err)
			continue
		}
	}

	return nil
}

// StartupSyncCheck exports any pending transactions at worker startup.
// This recovers from missed AMQP messages or worker downtime.
func (w *SyncWorker) StartupSyncCheck(ctx context.Context) error {
	// Larger batch for the startup pass
	pending, err := w.storage.GetPendingSync(ctx, w.batchSize*5)
	if err != nil {
		return fmt.Errorf("get pending transactions for startup check: %w", err)
	}

	if len(pending) == 0 {
		slog.InfoContext(ctx, "No pending transactions found on startup")
		return nil
	}

	slog.InfoContext(ctx, "Found pending transactions on startup, processing...",
		"count", len(pending))

	successCount := 0
	errorCount := 0

	for _, p := range pending {
		txn, err := w.storage.GetTransaction(ctx, p.ID)
		if err != nil {
			slog.ErrorContext(ctx, "Failed to get transaction for startup sync",
				"id", p.ID, "error", err)
			if err := w.storage.MarkSyncError(ctx, p.ID); err != nil {
				slog.ErrorContext(ctx, "Failed to mark sync error", "id", p.ID, "error", err)
			}
			errorCount++
			continue
		}

		if err := w.exportTransaction(ctx, p.ID, txn); err != nil {
			slog.ErrorContext(ctx, "Failed to export transaction during startup",
				"id", p.ID, "error", err)
			errorCount++
			continue
		}

		successCount++
	}

	slog.InfoContext(ctx, "Startup sync completed",
		"total", len(pending),
		"synced", successCount,
		"errors", errorCount)

	return nil
}

func (w *SyncWorker) exportTransaction(ctx context.Context, id int64, txn core.Transaction) error {
	// The spreadsheet carries the derived columns, so enrich before export.
	enriched := analyser.Enrich([]core.Transaction{txn})[0]

	ref, err := w.exporter.Append(ctx, enriched)
	if err != nil {
		if markErr := w.storage.MarkSyncError(ctx, id); markErr != nil {
			slog.ErrorContext(ctx, "Failed to mark sync error", "id", id, "error", markErr)
		}
		return fmt.Errorf("append to sheets: %w", err)
	}

	if err := w.storage.MarkSynced(ctx, id); err != nil {
		slog.ErrorContext(ctx, "Failed to mark as synced", "id", id, "error", err)
		// The export itself worked, so don't fail the message
	}

	slog.InfoContext(ctx, "Successfully exported transaction",
		"id", id,
		"sheets_ref", ref,
		"description", enriched.Description,
		"category", enriched.Category)

	return nil
}
