package analyser

import (
	"math"

	"spendwise/internal/core"
)

// Enrich derives category, merchant, credit/debit type, absolute amount
// and month bucket for every row in the batch. Output order matches input
// order and no row is dropped; filtering malformed rows is the loader's
// job, not this pipeline's.
func Enrich(batch []core.Transaction) []core.EnrichedTransaction {
	out := make([]core.EnrichedTransaction, len(batch))
	for i, t := range batch {
		merchant := t.Merchant
		if merchant == "" {
			merchant = ExtractMerchant(t.Description)
		}

		typ := core.Debit
		if t.Amount >= 0 {
			typ = core.Credit
		}

		e := core.EnrichedTransaction{
			Transaction: t,
			Category:    Categorize(t.Description, t.Amount),
			Type:        typ,
			AbsAmount:   math.Abs(t.Amount),
			Month:       core.MonthStart(t.Date),
		}
		e.Merchant = merchant
		out[i] = e
	}
	return out
}
