package http

import (
	"log/slog"
	"net/http"
	"time"

	"spendwise/internal/analyser"
	"spendwise/internal/core"
	applog "spendwise/internal/log"
	"spendwise/internal/statement"
)

// transactionIn is the wire form of a manually entered transaction.
// Merchant is optional; when absent it is derived from the description.
type transactionIn struct {
	Date          string  `json:"date"`
	Description   string  `json:"description"`
	Amount        float64 `json:"amount"`
	Merchant      string  `json:"merchant"`
	PaymentMethod string  `json:"payment_method"`
}

var txnDateLayouts = []string{"2006-01-02", time.RFC3339}

func (in transactionIn) toTransaction() (core.Transaction, error) {
	var parsed time.Time
	var err error
	for _, layout := range txnDateLayouts {
		parsed, err = time.Parse(layout, in.Date)
		if err == nil {
			break
		}
	}
	if err != nil {
		return core.Transaction{}, core.ErrInvalidDate
	}

	t := core.Transaction{
		Date:          parsed,
		Description:   sanitizeInput(in.Description),
		Amount:        in.Amount,
		Merchant:      sanitizeInput(in.Merchant),
		PaymentMethod: sanitizeInput(in.PaymentMethod),
	}
	if t.Description == "" {
		return core.Transaction{}, core.ErrEmptyDescription
	}
	return t, t.Validate()
}

func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handleListTransactions(w, r)
	case http.MethodPost:
		s.handleCreateTransaction(w, r)
	default:
		methodNotAllowed(w, "GET, POST")
	}
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	txns, err := s.store.ListTransactions(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Transaction list error", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list transactions")
		return
	}
	if txns == nil {
		txns = []core.Transaction{}
	}
	writeJSON(w, http.StatusOK, txns)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var in transactionIn
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	txn, err := in.toTransaction()
	if err != nil {
		writeError(w, validationStatus(err), err.Error())
		return
	}

	ref, err := s.store.AppendTransaction(r.Context(), txn)
	if err != nil {
		slog.ErrorContext(r.Context(), "Transaction append error", "error", err,
			"description", txn.Description, "amount", txn.Amount)
		writeError(w, http.StatusInternalServerError, "failed to store transaction")
		return
	}

	// Echo the enriched row back, as the caller sees it in summaries.
	enriched := analyser.Enrich([]core.Transaction{txn})
	s.structured.LogTransactionStored(r.Context(), enriched[0].Description,
		enriched[0].AbsAmount, enriched[0].Category, enriched[0].Merchant, ref)
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "success",
		"row":    enriched[0],
	})
}

func (s *Server) handleUploadCSV(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, "POST")
		return
	}

	if err := r.ParseMultipartForm(8 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing file field")
		return
	}
	defer file.Close()

	opts := statement.CSVOptions{
		DateColumn:   sanitizeInput(r.FormValue("date_column")),
		DescColumn:   sanitizeInput(r.FormValue("description_column")),
		AmountColumn: sanitizeInput(r.FormValue("amount_column")),
	}

	txns, dropped, err := statement.ParseCSV(file, opts)
	if err != nil {
		slog.WarnContext(r.Context(), "CSV parse error", "error", err)
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	if err := s.store.ReplaceTransactions(r.Context(), txns); err != nil {
		s.structured.LogError(r.Context(), "Statement import failed", err,
			applog.ComponentStatement, applog.OpReplace, applog.NewFields())
		writeError(w, http.StatusInternalServerError, "failed to import statement")
		return
	}

	slog.InfoContext(r.Context(), "Statement imported", "rows", len(txns), "dropped", dropped)
	writeJSON(w, http.StatusOK, map[string]any{
		"status":           "success",
		"num_transactions": len(txns),
		"dropped_rows":     dropped,
	})
}

// linesIn carries pre-extracted statement text, one line per entry.
type linesIn struct {
	Lines []string `json:"lines"`
}

func (s *Server) handleUploadLines(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, "POST")
		return
	}

	var in linesIn
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(in.Lines) == 0 {
		writeError(w, http.StatusBadRequest, "no lines provided")
		return
	}

	txns, skipped := statement.ParseLines(in.Lines)
	if err := s.store.ReplaceTransactions(r.Context(), txns); err != nil {
		slog.ErrorContext(r.Context(), "Statement import error", "error", err, "rows", len(txns))
		writeError(w, http.StatusInternalServerError, "failed to import statement")
		return
	}

	slog.InfoContext(r.Context(), "Statement imported", "rows", len(txns), "skipped", skipped)
	writeJSON(w, http.StatusOK, map[string]any{
		"status":           "success",
		"num_transactions": len(txns),
		"skipped_lines":    skipped,
	})
}
