package chat

import (
	"fmt"
	"strconv"

	"spendwise/internal/core"
)

// BuildKnowledgeBase flattens the current ledger into retrievable
// sentences. Every data mutation invalidates the knowledge base; callers
// rebuild it from a fresh snapshot.
func BuildKnowledgeBase(txns []core.EnrichedTransaction, debts []core.Debt, reminders []core.Reminder) []string {
	kb := make([]string, 0, len(txns)+len(debts)+len(reminders))

	for _, t := range txns {
		if t.Type != core.Debit {
			continue
		}
		kb = append(kb, fmt.Sprintf("Expense: Spent %s on %s (%s) on %s",
			formatAmount(t.AbsAmount), t.Description, t.Category, t.Date.Format("2006-01-02")))
	}

	for _, d := range debts {
		if d.Type == core.DebtOwe {
			kb = append(kb, fmt.Sprintf("Debt: I owe %s to %s due on %s",
				formatAmount(d.Amount), d.Person, d.DueDate))
		} else {
			kb = append(kb, fmt.Sprintf("Debt: %s owes me %s due on %s",
				d.Person, formatAmount(d.Amount), d.DueDate))
		}
	}

	for _, r := range reminders {
		kb = append(kb, fmt.Sprintf("Reminder: %s of %s on %s at %s",
			r.Title, formatAmount(r.Amount), r.Date, r.Time))
	}

	return kb
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
