// Package backend selects and assembles the ledger store the server
// runs on: volatile in-memory or durable SQLite with optional AMQP sync.
package backend

import (
	"context"

	"spendwise/internal/ledger"
)

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// Result contains the assembled store and optional cleanup function
type Result struct {
	Store   ledger.Store
	Cleanup CleanupFunc
}

// Factory creates ledger stores based on configuration
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*Result, error)
}

// Config holds configuration for backend creation
type Config struct {
	Type BackendType

	// SQLite specific
	SQLiteDBPath string
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string
}

// BackendType represents the type of backend
type BackendType string

const (
	SQLiteBackend BackendType = "sqlite"
	MemoryBackend BackendType = "memory"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case SQLiteBackend, MemoryBackend:
		return true
	default:
		return false
	}
}
