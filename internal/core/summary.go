package core

import "time"

// OverallSummary holds batch-wide totals. All fields are derived from the
// current transaction set and recomputed on demand.
type OverallSummary struct {
	TotalIncome  float64 `json:"total_income"`
	TotalExpense float64 `json:"total_expense"`
	NetSavings   float64 `json:"net_savings"`
	Transactions int     `json:"transactions"`
}

// CategoryTotal is an absolute-amount total for one category.
type CategoryTotal struct {
	Category string  `json:"category"`
	Total    float64 `json:"total"`
}

// MonthlyTotal is an absolute-amount total for one calendar month.
// Month is the first day of the month.
type MonthlyTotal struct {
	Month time.Time `json:"month"`
	Total float64   `json:"total"`
}

// MerchantTotal is an absolute-amount total for one merchant.
type MerchantTotal struct {
	Merchant string  `json:"merchant"`
	Total    float64 `json:"total"`
}

// Analysis bundles every summary for the /analyse endpoint.
type Analysis struct {
	Overall       OverallSummary        `json:"overall"`
	ByCategory    []CategoryTotal       `json:"by_category"`
	MonthlyTrends []MonthlyTotal        `json:"monthly_trends"`
	TopMerchants  []MerchantTotal       `json:"top_merchants"`
	Anomalies     []EnrichedTransaction `json:"anomalies"`
}

// DebtSummary holds aggregate debt positions for the dashboard metrics.
type DebtSummary struct {
	TotalOwe   float64 `json:"total_owe"`
	TotalOwed  float64 `json:"total_owed"`
	NetBalance float64 `json:"net_balance"`
}
