// Package sheets holds the outbound port for spreadsheet report export.
package sheets

import (
	"context"

	"spendwise/internal/core"
)

// TransactionExporter appends one enriched transaction to an external
// report sheet and returns a row reference.
type TransactionExporter interface {
	Append(ctx context.Context, t core.EnrichedTransaction) (rowRef string, err error)
}
