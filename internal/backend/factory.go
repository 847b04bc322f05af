package backend

import (
	"context"
	"fmt"
	"log/slog"

	"spendwise/internal/adapters"
	"spendwise/internal/amqp"
	"spendwise/internal/ledger/memory"
	"spendwise/internal/services"
	"spendwise/internal/storage"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *slog.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{
		logger: logger,
	}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*Result, error) {
	if !config.Type.IsValid() {
		return nil, fmt.Errorf("invalid backend type: %s", config.Type)
	}

	switch config.Type {
	case SQLiteBackend:
		return f.createSQLiteBackend(config)
	case MemoryBackend:
		return f.createMemoryBackend()
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *DefaultFactory) createSQLiteBackend(config Config) (*Result, error) {
	sqliteRepo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}

	// AMQP is optional; without it transactions are still stored and the
	// worker's pending sweep picks them up.
	var amqpClient *amqp.Client
	if config.AMQPURL != "" {
		amqpClient, err = amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue)
		if err != nil {
			f.logger.Warn("Failed to initialize AMQP client, continuing without sync", "error", err)
		} else {
			f.logger.Info("Initialized AMQP client",
				"exchange", config.AMQPExchange,
				"queue", config.AMQPQueue)
		}
	}

	service := services.NewTransactionService(sqliteRepo, amqpClient)
	adapter := adapters.NewSQLiteAdapter(sqliteRepo, service)

	f.logger.Info("Initialized SQLite backend",
		"db_path", config.SQLiteDBPath,
		"amqp_enabled", amqpClient != nil)

	return &Result{
		Store:   adapter,
		Cleanup: service.Close,
	}, nil
}

func (f *DefaultFactory) createMemoryBackend() (*Result, error) {
	store := memory.New()

	f.logger.Info("Initialized memory backend")

	return &Result{
		Store:   store,
		Cleanup: nil,
	}, nil
}
