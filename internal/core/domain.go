package core

import (
	"errors"
	"math"
	"strings"
	"time"
)

const (
	Credit TxnType = "Credit"
	Debit  TxnType = "Debit"
)

const (
	DebtOwe  DebtType = "owe"  // money the user owes someone
	DebtOwed DebtType = "owed" // money someone owes the user
)

type (
	// TxnType marks a transaction as Credit (amount >= 0) or Debit.
	TxnType string

	// DebtType distinguishes the direction of a debt record.
	DebtType string

	// Transaction is a raw bank-statement row. Amount is signed:
	// positive for credits, negative for debits. Merchant and
	// PaymentMethod are optional and only present on statement imports
	// that carry them.
	Transaction struct {
		Date          time.Time `json:"date"`
		Description   string    `json:"description"`
		Amount        float64   `json:"amount"`
		Merchant      string    `json:"merchant,omitempty"`
		PaymentMethod string    `json:"payment_method,omitempty"`
	}

	// EnrichedTransaction is a Transaction with derived fields attached.
	EnrichedTransaction struct {
		Transaction
		Category  string    `json:"category"`
		Type      TxnType   `json:"type"`
		AbsAmount float64   `json:"abs_amount"`
		Month     time.Time `json:"month"`
	}

	// Debt is a personal debt or loan record.
	Debt struct {
		Person  string   `json:"person"`
		Amount  float64  `json:"amount"`
		Type    DebtType `json:"type"`
		DueDate string   `json:"due_date"`
		Notes   string   `json:"notes,omitempty"`
	}

	// Reminder is a dated payment reminder.
	Reminder struct {
		Title  string  `json:"title"`
		Date   string  `json:"date"`
		Time   string  `json:"time,omitempty"`
		Amount float64 `json:"amount"`
		Notes  string  `json:"notes,omitempty"`
	}
)

var (
	ErrInvalidDate      = errors.New("invalid date")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrEmptyDescription = errors.New("empty description")
	ErrEmptyPerson      = errors.New("empty person")
	ErrInvalidDebtType  = errors.New("invalid debt type")
	ErrEmptyTitle       = errors.New("empty title")
)

// Validate reports whether the transaction is well formed. Rows failing
// validation must be filtered out before enrichment; the analyser core
// assumes valid input and never coerces.
func (t Transaction) Validate() error {
	if t.Date.IsZero() {
		return ErrInvalidDate
	}
	if math.IsNaN(t.Amount) || math.IsInf(t.Amount, 0) {
		return ErrInvalidAmount
	}
	if len(t.Description) > 500 {
		return errors.New("description too long (max 500 characters)")
	}
	return nil
}

func (d Debt) Validate() error {
	if strings.TrimSpace(d.Person) == "" {
		return ErrEmptyPerson
	}
	if math.IsNaN(d.Amount) || math.IsInf(d.Amount, 0) || d.Amount <= 0 {
		return ErrInvalidAmount
	}
	switch d.Type {
	case DebtOwe, DebtOwed:
	default:
		return ErrInvalidDebtType
	}
	if _, err := time.Parse("2006-01-02", d.DueDate); err != nil {
		return ErrInvalidDate
	}
	return nil
}

func (r Reminder) Validate() error {
	if strings.TrimSpace(r.Title) == "" {
		return ErrEmptyTitle
	}
	if _, err := time.Parse("2006-01-02", r.Date); err != nil {
		return ErrInvalidDate
	}
	if math.IsNaN(r.Amount) || math.IsInf(r.Amount, 0) || r.Amount < 0 {
		return ErrInvalidAmount
	}
	return nil
}

// MonthStart truncates a date to the first day of its calendar month (UTC).
func MonthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}
