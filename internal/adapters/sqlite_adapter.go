package adapters

import (
	"context"

	"spendwise/internal/core"
	"spendwise/internal/ledger"
	"spendwise/internal/services"
	"spendwise/internal/storage"
)

// SQLiteAdapter exposes the SQLite repository as a ledger.Store while
// routing transaction writes through TransactionService so each stored
// row also gets a sync message published.
type SQLiteAdapter struct {
	storage *storage.SQLiteRepository
	service *services.TransactionService
}

var _ ledger.Store = (*SQLiteAdapter)(nil)

func NewSQLiteAdapter(storage *storage.SQLiteRepository, service *services.TransactionService) *SQLiteAdapter {
	return &SQLiteAdapter{
		storage: storage,
		service: service,
	}
}

func (a *SQLiteAdapter) AppendTransaction(ctx context.Context, t core.Transaction) (string, error) {
	return a.service.CreateTransaction(ctx, t)
}

func (a *SQLiteAdapter) ReplaceTransactions(ctx context.Context, txns []core.Transaction) error {
	return a.service.ImportStatement(ctx, txns)
}

func (a *SQLiteAdapter) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	return a.storage.ListTransactions(ctx)
}

func (a *SQLiteAdapter) Revision(ctx context.Context) (int64, error) {
	return a.storage.Revision(ctx)
}

func (a *SQLiteAdapter) AppendDebt(ctx context.Context, d core.Debt) error {
	return a.storage.AppendDebt(ctx, d)
}

func (a *SQLiteAdapter) ListDebts(ctx context.Context) ([]core.Debt, error) {
	return a.storage.ListDebts(ctx)
}

func (a *SQLiteAdapter) AppendReminder(ctx context.Context, r core.Reminder) error {
	return a.storage.AppendReminder(ctx, r)
}

func (a *SQLiteAdapter) ListReminders(ctx context.Context) ([]core.Reminder, error) {
	return a.storage.ListReminders(ctx)
}
