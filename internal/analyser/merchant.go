package analyser

import (
	"regexp"
	"strings"
)

const merchantMaxLen = 60

var (
	digitRuns  = regexp.MustCompile(`\d+`)
	noiseWords = regexp.MustCompile(`\b(txn|transaction|upi|imps|neft|ref|id|utr|amt|debited|credited|to|from)\b`)
	// keep letters, spaces, ampersand and apostrophe; drop the rest
	nonMerchant = regexp.MustCompile(`[^a-z\s&']+`)
	spaceRuns   = regexp.MustCompile(`\s+`)
)

// ExtractMerchant derives a normalized merchant key from a free-text
// statement description. Best-effort heuristic: deterministic, lossy, and
// only used when the statement did not carry a merchant column.
func ExtractMerchant(description string) string {
	s := strings.ToLower(description)
	s = digitRuns.ReplaceAllString(s, " ")
	s = noiseWords.ReplaceAllString(s, " ")
	s = nonMerchant.ReplaceAllString(s, " ")
	s = spaceRuns.ReplaceAllString(s, " ")
	s = strings.TrimSpace(s)
	if len(s) > merchantMaxLen {
		s = s[:merchantMaxLen]
	}
	if s == "" {
		return "unknown"
	}
	return s
}
