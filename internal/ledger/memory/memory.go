// Package memory is the in-memory ledger backend, a mutex-guarded table
// suitable for development and tests. Durable storage lives in
// internal/storage.
package memory

import (
	"context"
	"fmt"
	"sync"

	"spendwise/internal/core"
	"spendwise/internal/ledger"
)

type Store struct {
	mu        sync.Mutex
	txns      []core.Transaction
	debts     []core.Debt
	reminders []core.Reminder
	revision  int64
}

var _ ledger.Store = (*Store)(nil)

func New() *Store {
	return &Store{}
}

// Append stores the transaction and returns a synthetic row reference.
func (s *Store) AppendTransaction(_ context.Context, t core.Transaction) (string, error) {
	if err := t.Validate(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.txns = append(s.txns, t)
	s.revision++
	return fmt.Sprintf("mem:%d", len(s.txns)), nil
}

func (s *Store) ReplaceTransactions(_ context.Context, txns []core.Transaction) error {
	for _, t := range txns {
		if err := t.Validate(); err != nil {
			return fmt.Errorf("reject batch: %w", err)
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.txns = append([]core.Transaction(nil), txns...)
	s.revision++
	return nil
}

// ListTransactions returns a copy; callers get a consistent snapshot the
// pure analyser functions can safely run over.
func (s *Store) ListTransactions(_ context.Context) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Transaction(nil), s.txns...), nil
}

func (s *Store) Revision(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.revision, nil
}

func (s *Store) AppendDebt(_ context.Context, d core.Debt) error {
	if err := d.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.debts = append(s.debts, d)
	s.revision++
	return nil
}

func (s *Store) ListDebts(_ context.Context) ([]core.Debt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Debt(nil), s.debts...), nil
}

func (s *Store) AppendReminder(_ context.Context, r core.Reminder) error {
	if err := r.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reminders = append(s.reminders, r)
	s.revision++
	return nil
}

func (s *Store) ListReminders(_ context.Context) ([]core.Reminder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Reminder(nil), s.reminders...), nil
}
