package chat

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"spendwise/internal/analyser"
	"spendwise/internal/core"
	"spendwise/internal/ledger"
)

const defaultTopK = 2

// Bot answers finance questions over the current ledger. Simple
// aggregate questions are answered locally from the stored records;
// everything else goes through retrieval plus the configured Answerer.
type Bot struct {
	store     ledger.Store
	retriever *KeywordRetriever
	answerer  Answerer
	topK      int

	mu      sync.Mutex
	lastRev int64
	indexed bool
}

func NewBot(store ledger.Store, answerer Answerer) *Bot {
	if answerer == nil {
		answerer = &StaticAnswerer{}
	}
	return &Bot{
		store:     store,
		retriever: NewKeywordRetriever(),
		answerer:  answerer,
		topK:      defaultTopK,
	}
}

// Answer resolves a single user message. The knowledge base is rebuilt
// lazily whenever the ledger revision has moved since the last call.
func (b *Bot) Answer(ctx context.Context, message string) (string, error) {
	txns, err := b.store.ListTransactions(ctx)
	if err != nil {
		return "", fmt.Errorf("listing transactions: %w", err)
	}
	debts, err := b.store.ListDebts(ctx)
	if err != nil {
		return "", fmt.Errorf("listing debts: %w", err)
	}
	reminders, err := b.store.ListReminders(ctx)
	if err != nil {
		return "", fmt.Errorf("listing reminders: %w", err)
	}

	enriched := analyser.Enrich(txns)

	if answer, ok := localAnswer(message, enriched, debts, reminders); ok {
		return answer, nil
	}

	if err := b.refreshIndex(ctx, enriched, debts, reminders); err != nil {
		return "", err
	}

	docs, err := b.retriever.RetrieveContext(ctx, message, b.topK)
	if err != nil {
		return "", fmt.Errorf("retrieving context: %w", err)
	}
	answer, err := b.answerer.Answer(ctx, message, docs)
	if err != nil {
		return "", fmt.Errorf("answering: %w", err)
	}
	return answer, nil
}

func (b *Bot) refreshIndex(ctx context.Context, txns []core.EnrichedTransaction, debts []core.Debt, reminders []core.Reminder) error {
	rev, err := b.store.Revision(ctx)
	if err != nil {
		return fmt.Errorf("reading ledger revision: %w", err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.indexed && rev == b.lastRev {
		return nil
	}
	b.retriever.Rebuild(BuildKnowledgeBase(txns, debts, reminders))
	b.lastRev = rev
	b.indexed = true
	return nil
}

// localAnswer handles the handful of aggregate questions that never need
// retrieval. It reports whether the message matched one of them.
func localAnswer(message string, txns []core.EnrichedTransaction, debts []core.Debt, reminders []core.Reminder) (string, bool) {
	lower := strings.ToLower(message)

	switch {
	case strings.Contains(lower, "total spending") || strings.Contains(lower, "total expense"):
		overall := analyser.SummarizeOverall(txns)
		return fmt.Sprintf("Your total spending is %s.", formatAmount(overall.TotalExpense)), true

	case strings.Contains(lower, "total debt") || strings.Contains(lower, "how much do i owe"):
		var total float64
		for _, d := range debts {
			if d.Type == core.DebtOwe {
				total += d.Amount
			}
		}
		return fmt.Sprintf("Your total debt is %s.", formatAmount(total)), true

	case strings.Contains(lower, "reminder") || strings.Contains(lower, "due"):
		if len(reminders) == 0 {
			return "You have no reminders.", true
		}
		lines := make([]string, len(reminders))
		for i, r := range reminders {
			lines[i] = fmt.Sprintf("%s: %s on %s at %s", r.Title, formatAmount(r.Amount), r.Date, r.Time)
		}
		return "Here are your reminders:\n- " + strings.Join(lines, "\n- "), true
	}

	return "", false
}
