package statement

import (
	"strings"
	"time"

	"spendwise/internal/core"
)

// PDF text extraction itself is an external collaborator; this file only
// parses the already-extracted text lines of a statement page.
//
// A transaction line looks like:
//
//	Aug 31, 2025 10:42 PM DEBIT n1,250.00 UPI Swiggy Bangalore T2508311042998877
//
// month-name date, time, CREDIT/DEBIT marker, amount (currency glyph
// mangled to a leading "n" by extraction), free-text description, then a
// T-prefixed transaction id. Lines not matching the shape are skipped.

var monthPrefixes = []string{
	"Jan", "Feb", "Mar", "Apr", "May", "Jun",
	"Jul", "Aug", "Sep", "Oct", "Nov", "Dec",
}

// merchantKeywords maps statement keywords to a merchant label grouped by
// coarse statement category. Scanned in declaration order; the matched
// keyword becomes the row's merchant so the enricher keeps it verbatim.
var merchantKeywords = []struct {
	category string
	keywords []string
}{
	{"Food", []string{"Swiggy", "Zomato", "Dominos"}},
	{"Shopping", []string{"Amazon", "Flipkart", "Myntra", "Grocery Store"}},
	{"Travel", []string{"Uber", "Ola", "Redbus", "IRCTC"}},
	{"Bills", []string{"Airtel", "Jio", "TNEB", "Electricity"}},
	{"Entertainment", []string{"Netflix", "Spotify", "BookMyShow"}},
	{"Salary", []string{"Salary"}},
	{"Other", []string{"Wallet", "UPI", "Hospital", "Refund", "Cashback", "John"}},
}

// ParseLines converts extracted statement text lines into transactions.
// Returns the parsed rows (statement order) and the count of skipped
// lines that looked like transactions but failed to parse.
func ParseLines(lines []string) ([]core.Transaction, int) {
	var (
		txns    []core.Transaction
		skipped int
	)
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if !startsWithMonth(line) {
			continue
		}
		t, ok := parseLine(line)
		if !ok {
			skipped++
			continue
		}
		txns = append(txns, t)
	}
	return txns, skipped
}

func startsWithMonth(line string) bool {
	for _, m := range monthPrefixes {
		if strings.HasPrefix(line, m) {
			return true
		}
	}
	return false
}

func parseLine(line string) (core.Transaction, bool) {
	parts := strings.Fields(line)
	if len(parts) < 8 {
		return core.Transaction{}, false
	}

	// "Aug 31, 2025"
	date, err := time.Parse("Jan 2, 2006", strings.Join(parts[0:3], " "))
	if err != nil {
		return core.Transaction{}, false
	}

	// parts[3] and parts[4] are the time of day; not kept.

	txnType := parts[5]
	if txnType != "DEBIT" && txnType != "CREDIT" {
		return core.Transaction{}, false
	}

	amountStr := strings.ReplaceAll(strings.TrimPrefix(parts[6], "n"), ",", "")
	amount, err := parseAmount(amountStr)
	if err != nil {
		return core.Transaction{}, false
	}
	if txnType == "DEBIT" {
		amount = -amount
	}

	// description runs up to the T-prefixed transaction id
	tIndex := -1
	for i := 7; i < len(parts); i++ {
		if strings.HasPrefix(parts[i], "T") {
			tIndex = i
			break
		}
	}
	if tIndex < 0 {
		return core.Transaction{}, false
	}
	description := strings.TrimSpace(strings.Join(parts[7:tIndex], " "))

	return core.Transaction{
		Date:          date.UTC(),
		Description:   description,
		Amount:        amount,
		Merchant:      inferMerchant(description),
		PaymentMethod: inferPaymentMethod(description),
	}, true
}

// inferMerchant returns the first keyword found in the description, or
// "Other" when nothing matches.
func inferMerchant(description string) string {
	lower := strings.ToLower(description)
	for _, group := range merchantKeywords {
		for _, kw := range group.keywords {
			if strings.Contains(lower, strings.ToLower(kw)) {
				return kw
			}
		}
	}
	return "Other"
}

func inferPaymentMethod(description string) string {
	upper := strings.ToUpper(description)
	switch {
	case strings.Contains(upper, "UPI"):
		return "UPI"
	case strings.Contains(upper, "ATM"):
		return "ATM"
	case strings.Contains(upper, "NEFT"):
		return "NEFT"
	default:
		return "Other"
	}
}
