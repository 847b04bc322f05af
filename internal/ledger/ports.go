// Package ledger defines the ports for the shared transaction table and
// the auxiliary debt/reminder records. The analyser core is pure; every
// handler takes a consistent snapshot through these interfaces before
// computing summaries, so the core never touches shared mutable state.
package ledger

import (
	"context"

	"spendwise/internal/core"
)

type (
	// TransactionStore is the shared transaction table. Revision bumps
	// on every mutation and is the cache key for derived summaries.
	TransactionStore interface {
		AppendTransaction(ctx context.Context, t core.Transaction) (ref string, err error)
		// ReplaceTransactions swaps in a freshly imported statement,
		// discarding the previous working set.
		ReplaceTransactions(ctx context.Context, txns []core.Transaction) error
		ListTransactions(ctx context.Context) ([]core.Transaction, error)
		Revision(ctx context.Context) (int64, error)
	}

	DebtStore interface {
		AppendDebt(ctx context.Context, d core.Debt) error
		ListDebts(ctx context.Context) ([]core.Debt, error)
	}

	ReminderStore interface {
		AppendReminder(ctx context.Context, r core.Reminder) error
		ListReminders(ctx context.Context) ([]core.Reminder, error)
	}

	// Store is the full ledger surface the HTTP layer depends on.
	Store interface {
		TransactionStore
		DebtStore
		ReminderStore
	}
)
