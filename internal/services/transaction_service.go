package services

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"spendwise/internal/amqp"
	"spendwise/internal/core"
	"spendwise/internal/storage"
)

// TransactionService orchestrates transaction writes across SQLite and
// the AMQP export queue.
type TransactionService struct {
	storage    *storage.SQLiteRepository
	amqpClient *amqp.Client
}

func NewTransactionService(storage *storage.SQLiteRepository, amqpClient *amqp.Client) *TransactionService {
	return &TransactionService{
		storage:    storage,
		amqpClient: amqpClient,
	}
}

// CreateTransaction saves a transaction locally and publishes a sync
// message. A publish failure never fails the request; the worker's
// requeue loop picks the row up later.
func (s *TransactionService) CreateTransaction(ctx context.Context, t core.Transaction) (string, error) {
	ref, err := s.storage.AppendTransaction(ctx, t)
	if err != nil {
		return "", fmt.Errorf("save transaction: %w", err)
	}

	id, err := strconv.ParseInt(ref, 10, 64)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to parse transaction ID", "ref", ref, "error", err)
		return ref, nil
	}

	if err := s.publishSyncMessage(ctx, id, 1); err != nil {
		slog.ErrorContext(ctx, "Failed to publish sync message",
			"id", id, "error", err)
	}

	return ref, nil
}

// ImportStatement replaces the working transaction set with a freshly
// parsed statement. Rows enter unsynced; the worker's requeue loop
// schedules their export.
func (s *TransactionService) ImportStatement(ctx context.Context, txns []core.Transaction) error {
	if err := s.storage.ReplaceTransactions(ctx, txns); err != nil {
		return fmt.Errorf("import statement: %w", err)
	}
	slog.InfoContext(ctx, "Statement imported", "count", len(txns))
	return nil
}

func (s *TransactionService) publishSyncMessage(ctx context.Context, id, version int64) error {
	if s.amqpClient == nil {
		slog.WarnContext(ctx, "AMQP client not available, skipping sync message")
		return nil
	}
	return s.amqpClient.PublishTransactionSync(ctx, id, version)
}

// Close closes both storage and AMQP connections.
func (s *TransactionService) Close() error {
	var errs []error

	if s.storage != nil {
		if err := s.storage.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}

	if s.amqpClient != nil {
		if err := s.amqpClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close transaction service: %v", errs)
	}
	return nil
}
