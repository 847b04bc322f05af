// Package statement loads bank-statement rows from CSV exports and from
// pre-extracted PDF text lines. It is the loading collaborator for the
// analyser pipeline: malformed rows are dropped here so the enrichment
// core only ever sees valid transactions.
package statement

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"spendwise/internal/core"
)

// CSVOptions names the columns to read. Zero values fall back to the
// conventional bank-export headers.
type CSVOptions struct {
	DateColumn   string
	DescColumn   string
	AmountColumn string
}

func (o CSVOptions) withDefaults() CSVOptions {
	if o.DateColumn == "" {
		o.DateColumn = "Date"
	}
	if o.DescColumn == "" {
		o.DescColumn = "Description"
	}
	if o.AmountColumn == "" {
		o.AmountColumn = "Amount"
	}
	return o
}

var ErrMissingColumn = errors.New("missing required column")

// dateLayouts are tried in order when parsing statement dates.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"02/01/2006",
	"02-01-2006",
	"Jan 2, 2006",
	time.RFC3339,
}

// ParseCSV reads transactions from a CSV export. Rows with unparseable
// dates or amounts are dropped (and counted), matching the loader
// contract: the analyser core never sees malformed input. The result is
// sorted by date ascending.
func ParseCSV(r io.Reader, opts CSVOptions) ([]core.Transaction, int, error) {
	opts = opts.withDefaults()

	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, 0, fmt.Errorf("read csv header: %w", err)
	}

	idx := func(name string) int {
		for i, h := range header {
			if strings.EqualFold(strings.TrimSpace(h), name) {
				return i
			}
		}
		return -1
	}
	dateIdx := idx(opts.DateColumn)
	descIdx := idx(opts.DescColumn)
	amountIdx := idx(opts.AmountColumn)
	merchantIdx := idx("Merchant")
	if dateIdx < 0 || descIdx < 0 || amountIdx < 0 {
		return nil, 0, fmt.Errorf("%w: need %q, %q, %q", ErrMissingColumn,
			opts.DateColumn, opts.DescColumn, opts.AmountColumn)
	}

	var (
		txns    []core.Transaction
		dropped int
	)
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			// ragged or quoted-wrong row: drop it, keep reading
			dropped++
			continue
		}
		maxIdx := dateIdx
		for _, i := range []int{descIdx, amountIdx} {
			if i > maxIdx {
				maxIdx = i
			}
		}
		if len(rec) <= maxIdx {
			dropped++
			continue
		}

		date, ok := parseDate(rec[dateIdx])
		if !ok {
			dropped++
			continue
		}
		amount, err := parseAmount(rec[amountIdx])
		if err != nil {
			dropped++
			continue
		}

		t := core.Transaction{
			Date:        date,
			Description: strings.TrimSpace(rec[descIdx]),
			Amount:      amount,
		}
		if merchantIdx >= 0 && merchantIdx < len(rec) {
			t.Merchant = strings.TrimSpace(rec[merchantIdx])
		}
		txns = append(txns, t)
	}

	sort.SliceStable(txns, func(i, j int) bool { return txns[i].Date.Before(txns[j].Date) })
	return txns, dropped, nil
}

func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// parseAmount accepts signed decimals with optional thousands commas and
// currency junk around the number.
func parseAmount(s string) (float64, error) {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, ",", "")
	s = strings.Trim(s, "₹$€ ")
	if s == "" {
		return 0, core.ErrInvalidAmount
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", core.ErrInvalidAmount, s)
	}
	return v, nil
}
