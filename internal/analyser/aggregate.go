package analyser

import (
	"math"
	"sort"
	"time"

	"spendwise/internal/core"
)

func timeFromUnix(sec int64) time.Time {
	return time.Unix(sec, 0).UTC()
}

// SummarizeOverall computes batch-wide totals. An empty batch yields the
// zero summary.
func SummarizeOverall(txns []core.EnrichedTransaction) core.OverallSummary {
	var s core.OverallSummary
	for _, t := range txns {
		switch t.Type {
		case core.Credit:
			s.TotalIncome += t.Amount
		case core.Debit:
			s.TotalExpense += t.AbsAmount
		}
		s.NetSavings += t.Amount
	}
	s.Transactions = len(txns)
	return s
}

// SummarizeByCategory groups absolute amounts per category, sorted by
// descending total. Ties break by category label ascending so the order
// is deterministic.
func SummarizeByCategory(txns []core.EnrichedTransaction) []core.CategoryTotal {
	sums := make(map[string]float64)
	for _, t := range txns {
		sums[t.Category] += t.AbsAmount
	}
	out := make([]core.CategoryTotal, 0, len(sums))
	for cat, total := range sums {
		out = append(out, core.CategoryTotal{Category: cat, Total: total})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Total != out[j].Total {
			return out[i].Total > out[j].Total
		}
		return out[i].Category < out[j].Category
	})
	return out
}

// SummarizeMonthlyTrends groups absolute amounts per calendar month,
// ordered ascending by month.
func SummarizeMonthlyTrends(txns []core.EnrichedTransaction) []core.MonthlyTotal {
	sums := make(map[int64]float64)
	for _, t := range txns {
		sums[t.Month.Unix()] += t.AbsAmount
	}
	out := make([]core.MonthlyTotal, 0, len(sums))
	for unix, total := range sums {
		out = append(out, core.MonthlyTotal{Month: timeFromUnix(unix), Total: total})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month.Before(out[j].Month) })
	return out
}

// TopMerchants returns the n merchants with the largest absolute-amount
// totals, ties broken by merchant label ascending. When n exceeds the
// number of distinct merchants, all are returned.
func TopMerchants(txns []core.EnrichedTransaction, n int) []core.MerchantTotal {
	if n <= 0 {
		return nil
	}
	sums := make(map[string]float64)
	for _, t := range txns {
		sums[t.Merchant] += t.AbsAmount
	}
	out := make([]core.MerchantTotal, 0, len(sums))
	for m, total := range sums {
		out = append(out, core.MerchantTotal{Merchant: m, Total: total})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Total != out[j].Total {
			return out[i].Total > out[j].Total
		}
		return out[i].Merchant < out[j].Merchant
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}

// DetectAnomalies flags rows whose absolute amount exceeds
// mean + 2×stddev of the batch, preserving input order. Sample standard
// deviation (n-1 divisor); with fewer than two rows sigma is defined as
// zero, so the threshold degenerates to the mean.
func DetectAnomalies(txns []core.EnrichedTransaction) []core.EnrichedTransaction {
	if len(txns) == 0 {
		return nil
	}

	var sum float64
	for _, t := range txns {
		sum += t.AbsAmount
	}
	mean := sum / float64(len(txns))

	var sigma float64
	if len(txns) >= 2 {
		var ss float64
		for _, t := range txns {
			d := t.AbsAmount - mean
			ss += d * d
		}
		sigma = math.Sqrt(ss / float64(len(txns)-1))
	}

	threshold := mean + 2*sigma
	var out []core.EnrichedTransaction
	for _, t := range txns {
		if t.AbsAmount > threshold {
			out = append(out, t)
		}
	}
	return out
}

// SummarizeDebts nets the two debt directions against each other.
func SummarizeDebts(debts []core.Debt) core.DebtSummary {
	var s core.DebtSummary
	for _, d := range debts {
		switch d.Type {
		case core.DebtOwe:
			s.TotalOwe += d.Amount
		case core.DebtOwed:
			s.TotalOwed += d.Amount
		}
	}
	s.NetBalance = s.TotalOwed - s.TotalOwe
	return s
}

// Analyse runs every summary over the batch. TopMerchants uses topN, the
// caller's configured limit.
func Analyse(txns []core.EnrichedTransaction, topN int) core.Analysis {
	return core.Analysis{
		Overall:       SummarizeOverall(txns),
		ByCategory:    SummarizeByCategory(txns),
		MonthlyTrends: SummarizeMonthlyTrends(txns),
		TopMerchants:  TopMerchants(txns, topN),
		Anomalies:     DetectAnomalies(txns),
	}
}
