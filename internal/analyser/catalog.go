// Package analyser implements the transaction enrichment and
// categorization pipeline: a rule-based classifier that turns raw
// statement descriptions into category/merchant/type records, plus the
// summary functions computed over enriched batches.
package analyser

import "regexp"

type rule struct {
	pattern  *regexp.Regexp
	category string
}

type fallback struct {
	category string
	keywords []string
}

// categoryRules are consulted in declaration order; the first match wins.
// Order is part of the contract: specific patterns (rent, insurance,
// subscriptions) must run before the generic fallback keywords below,
// otherwise a "rent paid to landlord store" style description would land
// in Shopping.
var categoryRules = []rule{
	{regexp.MustCompile(`\b(uber|ola|rapido|in-drive|indrive|auto)\b`), "Transport"},
	{regexp.MustCompile(`\b(swiggy|zomato|domino'?s|kfc|mcdonald|pizza hut|eatfit|chai point|movie)\b`), "Food & Dining"},
	{regexp.MustCompile(`\b(amazon|flipkart|myntra|ajio|tata cliq|meesho|grocery)\b`), "Shopping"},
	{regexp.MustCompile(`\b(bharat pe|phonepe|google pay|gpay|paytm)\b`), "Payments"},
	{regexp.MustCompile(`\b(airtel|jio|vi|vodafone|bsnl)\b.*\b(recharge|prepaid|postpaid|bill)\b`), "Mobile & Internet"},
	{regexp.MustCompile(`\b(electricity|power|b(es)?com|tneb|tsspdcl|mseb)\b`), "Utilities"},
	{regexp.MustCompile(`\b(rent|landlord|lease)\b`), "Rent"},
	{regexp.MustCompile(`\b(uber pass|membership|subscription|netflix|prime|spotify|yt premium|youtube premium)\b`), "Subscriptions"},
	{regexp.MustCompile(`\b(insurance|premium|policy|phone emi)\b`), "Insurance"},
	{regexp.MustCompile(`\b(medical|pharmacy|apollo|1mg|practo|pharmeasy|hospital|clinic)\b`), "Health"},
	{regexp.MustCompile(`\b(petrol|fuel|hpcl|bpcl|ioc|iocl|shell)\b`), "Fuel"},
	{regexp.MustCompile(`\b(salary|payout|credit|refund|reversal|cashback)\b`), "Income"},
	{regexp.MustCompile(`\b(atm|cash withdrawal|concert)\b`), "Cash"},
}

// keywordFallbacks catch plain substrings when no regex rule matched.
// Also scanned in declaration order.
var keywordFallbacks = []fallback{
	{"Food & Dining", []string{"cafe", "restaurant", "hotel", "eat", "coffee", "tea"}},
	{"Shopping", []string{"store", "mart", "bazaar", "traders", "garments"}},
	{"Transport", []string{"metro", "bus", "cab", "taxi"}},
	{"Utilities", []string{"gas", "water", "electric", "utility"}},
}

// Categories returns the distinct category labels the catalog can assign,
// in rule order, including the two sign defaults.
func Categories() []string {
	seen := make(map[string]struct{})
	var out []string
	add := func(c string) {
		if _, ok := seen[c]; ok {
			return
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	for _, r := range categoryRules {
		add(r.category)
	}
	for _, f := range keywordFallbacks {
		add(f.category)
	}
	add("Income")
	add("Other Expense")
	return out
}
