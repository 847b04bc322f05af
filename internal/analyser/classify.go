package analyser

import "strings"

// Categorize assigns a spending category to a statement description.
// It is total: every input yields a label. Matching is case-insensitive;
// when neither the regex rules nor the keyword fallbacks hit, the sign of
// the amount decides between "Income" and "Other Expense".
func Categorize(description string, amount float64) string {
	desc := strings.ToLower(description)

	for _, r := range categoryRules {
		if r.pattern.MatchString(desc) {
			return r.category
		}
	}

	for _, f := range keywordFallbacks {
		for _, kw := range f.keywords {
			if strings.Contains(desc, kw) {
				return f.category
			}
		}
	}

	if amount >= 0 {
		return "Income"
	}
	return "Other Expense"
}
