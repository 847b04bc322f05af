package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"spendwise/internal/analyser"
	"spendwise/internal/core"
)

const maxBodyBytes = 1 << 20 // 1 MiB request bodies

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Response encoding failed", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"status": "error", "message": msg})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("decoding request body: %w", err)
	}
	return nil
}

func methodNotAllowed(w http.ResponseWriter, allowed string) {
	w.Header().Set("Allow", allowed)
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}

// sanitizeInput removes potentially dangerous characters and trims whitespace
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	// Remove control characters except tab, newline, carriage return
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

// getAnalysis computes the full analysis for the current ledger state,
// serving from cache when the revision has not moved.
func (s *Server) getAnalysis(ctx context.Context, topN int) (core.Analysis, error) {
	rev, err := s.store.Revision(ctx)
	if err != nil {
		return core.Analysis{}, fmt.Errorf("reading ledger revision: %w", err)
	}

	key := strconv.FormatInt(rev, 10) + ":" + strconv.Itoa(topN)
	if a, found := s.analysisCache.Get(key); found {
		slog.DebugContext(ctx, "Analysis cache hit", "revision", rev)
		return a, nil
	}

	txns, err := s.store.ListTransactions(ctx)
	if err != nil {
		return core.Analysis{}, fmt.Errorf("listing transactions: %w", err)
	}

	a := analyser.Analyse(analyser.Enrich(txns), topN)
	s.analysisCache.Set(key, a)
	slog.DebugContext(ctx, "Analysis cached", "revision", rev, "transactions", a.Overall.Transactions)
	return a, nil
}

// validationStatus maps validation failures to 422 and everything else to 400.
func validationStatus(err error) int {
	switch {
	case errors.Is(err, core.ErrInvalidDate),
		errors.Is(err, core.ErrInvalidAmount),
		errors.Is(err, core.ErrEmptyDescription),
		errors.Is(err, core.ErrEmptyPerson),
		errors.Is(err, core.ErrInvalidDebtType),
		errors.Is(err, core.ErrEmptyTitle):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusBadRequest
	}
}
