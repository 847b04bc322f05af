package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"spendwise/internal/core"
	"spendwise/internal/ledger"

	_ "modernc.org/sqlite"
)

// SQLiteRepository is the durable ledger backend. It also tracks a
// per-row sync state consumed by the sheets export worker.
type SQLiteRepository struct {
	db *sql.DB
}

var _ ledger.Store = (*SQLiteRepository)(nil)

// PendingTransaction is the minimal data carried in sync queue messages.
type PendingTransaction struct {
	ID        int64
	Version   int64
	CreatedAt time.Time
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// AppendTransaction implements ledger.TransactionStore.
func (r *SQLiteRepository) AppendTransaction(ctx context.Context, t core.Transaction) (string, error) {
	if err := t.Validate(); err != nil {
		return "", err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO transactions (date, description, amount, merchant, payment_method)
		 VALUES (?, ?, ?, ?, ?)`,
		t.Date.UTC().Format(time.RFC3339), t.Description, t.Amount, t.Merchant, t.PaymentMethod)
	if err != nil {
		return "", fmt.Errorf("insert transaction: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return "", fmt.Errorf("last insert id: %w", err)
	}
	if err := bumpRevision(ctx, tx); err != nil {
		return "", err
	}
	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}

	slog.InfoContext(ctx, "Transaction saved to SQLite",
		"id", id,
		"description", t.Description,
		"amount", t.Amount)

	return strconv.FormatInt(id, 10), nil
}

// ReplaceTransactions implements ledger.TransactionStore. The whole
// batch is validated up front; a malformed row rejects the import.
func (r *SQLiteRepository) ReplaceTransactions(ctx context.Context, txns []core.Transaction) error {
	for _, t := range txns {
		if err := t.Validate(); err != nil {
			return fmt.Errorf("reject batch: %w", err)
		}
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM transactions`); err != nil {
		return fmt.Errorf("clear transactions: %w", err)
	}
	for _, t := range txns {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO transactions (date, description, amount, merchant, payment_method)
			 VALUES (?, ?, ?, ?, ?)`,
			t.Date.UTC().Format(time.RFC3339), t.Description, t.Amount, t.Merchant, t.PaymentMethod)
		if err != nil {
			return fmt.Errorf("insert transaction: %w", err)
		}
	}
	if err := bumpRevision(ctx, tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	slog.InfoContext(ctx, "Transaction set replaced", "count", len(txns))
	return nil
}

// ListTransactions implements ledger.TransactionStore, ordered by date
// then insertion order.
func (r *SQLiteRepository) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT date, description, amount, merchant, payment_method
		 FROM transactions ORDER BY date, id`)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// Revision implements ledger.TransactionStore.
func (r *SQLiteRepository) Revision(ctx context.Context) (int64, error) {
	var rev int64
	err := r.db.QueryRowContext(ctx, `SELECT revision FROM ledger_meta WHERE id = 1`).Scan(&rev)
	if err != nil {
		return 0, fmt.Errorf("read revision: %w", err)
	}
	return rev, nil
}

func (r *SQLiteRepository) AppendDebt(ctx context.Context, d core.Debt) error {
	if err := d.Validate(); err != nil {
		return err
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()
	_, err = tx.ExecContext(ctx,
		`INSERT INTO debts (person, amount, type, due_date, notes) VALUES (?, ?, ?, ?, ?)`,
		d.Person, d.Amount, string(d.Type), d.DueDate, d.Notes)
	if err != nil {
		return fmt.Errorf("insert debt: %w", err)
	}
	if err := bumpRevision(ctx, tx); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *SQLiteRepository) ListDebts(ctx context.Context) ([]core.Debt, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT person, amount, type, due_date, notes FROM debts ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list debts: %w", err)
	}
	defer rows.Close()

	var out []core.Debt
	for rows.Next() {
		var d core.Debt
		var typ string
		if err := rows.Scan(&d.Person, &d.Amount, &typ, &d.DueDate, &d.Notes); err != nil {
			return nil, fmt.Errorf("scan debt: %w", err)
		}
		d.Type = core.DebtType(typ)
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) AppendReminder(ctx context.Context, rem core.Reminder) error {
	if err := rem.Validate(); err != nil {
		return err
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()
	_, err = tx.ExecContext(ctx,
		`INSERT INTO reminders (title, date, time, amount, notes) VALUES (?, ?, ?, ?, ?)`,
		rem.Title, rem.Date, rem.Time, rem.Amount, rem.Notes)
	if err != nil {
		return fmt.Errorf("insert reminder: %w", err)
	}
	if err := bumpRevision(ctx, tx); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *SQLiteRepository) ListReminders(ctx context.Context) ([]core.Reminder, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT title, date, time, amount, notes FROM reminders ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list reminders: %w", err)
	}
	defer rows.Close()

	var out []core.Reminder
	for rows.Next() {
		var rem core.Reminder
		if err := rows.Scan(&rem.Title, &rem.Date, &rem.Time, &rem.Amount, &rem.Notes); err != nil {
			return nil, fmt.Errorf("scan reminder: %w", err)
		}
		out = append(out, rem)
	}
	return out, rows.Err()
}

// GetTransaction loads one row by id for the export worker.
func (r *SQLiteRepository) GetTransaction(ctx context.Context, id int64) (core.Transaction, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT date, description, amount, merchant, payment_method
		 FROM transactions WHERE id = ?`, id)
	t, err := scanTransaction(row)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction %d: %w", id, err)
	}
	return t, nil
}

// GetPendingSync lists transactions not yet exported to the spreadsheet.
func (r *SQLiteRepository) GetPendingSync(ctx context.Context, limit int) ([]PendingTransaction, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, version, created_at FROM transactions
		 WHERE synced = 0 AND sync_error = 0 ORDER BY id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("get pending sync: %w", err)
	}
	defer rows.Close()

	var out []PendingTransaction
	for rows.Next() {
		var p PendingTransaction
		if err := rows.Scan(&p.ID, &p.Version, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan pending: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// MarkSynced flags a transaction as exported.
func (r *SQLiteRepository) MarkSynced(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx,
		`UPDATE transactions SET synced = 1, sync_error = 0 WHERE id = ?`, id); err != nil {
		return fmt.Errorf("mark synced: %w", err)
	}
	slog.InfoContext(ctx, "Transaction marked as synced", "id", id)
	return nil
}

// MarkSyncError flags a transaction whose export failed so the requeue
// loop stops retrying it.
func (r *SQLiteRepository) MarkSyncError(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx,
		`UPDATE transactions SET sync_error = 1 WHERE id = ?`, id); err != nil {
		return fmt.Errorf("mark sync error: %w", err)
	}
	slog.WarnContext(ctx, "Transaction marked with sync error", "id", id)
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (core.Transaction, error) {
	var (
		t       core.Transaction
		dateStr string
	)
	if err := row.Scan(&dateStr, &t.Description, &t.Amount, &t.Merchant, &t.PaymentMethod); err != nil {
		return core.Transaction{}, fmt.Errorf("scan transaction: %w", err)
	}
	date, err := time.Parse(time.RFC3339, dateStr)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("parse stored date %q: %w", dateStr, err)
	}
	t.Date = date.UTC()
	return t, nil
}

func bumpRevision(ctx context.Context, tx *sql.Tx) error {
	if _, err := tx.ExecContext(ctx,
		`UPDATE ledger_meta SET revision = revision + 1 WHERE id = 1`); err != nil {
		return fmt.Errorf("bump revision: %w", err)
	}
	return nil
}
