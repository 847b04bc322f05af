package http

import (
	"log/slog"
	"net/http"

	"spendwise/internal/analyser"
	"spendwise/internal/core"
)

func (s *Server) handleDebts(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handleListDebts(w, r)
	case http.MethodPost:
		s.handleAddDebt(w, r)
	default:
		methodNotAllowed(w, "GET, POST")
	}
}

func (s *Server) handleListDebts(w http.ResponseWriter, r *http.Request) {
	debts, err := s.store.ListDebts(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Debt list error", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list debts")
		return
	}
	if debts == nil {
		debts = []core.Debt{}
	}
	writeJSON(w, http.StatusOK, debts)
}

func (s *Server) handleAddDebt(w http.ResponseWriter, r *http.Request) {
	var d core.Debt
	if err := decodeJSON(w, r, &d); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	d.Person = sanitizeInput(d.Person)
	d.Notes = sanitizeInput(d.Notes)

	if err := d.Validate(); err != nil {
		writeError(w, validationStatus(err), err.Error())
		return
	}

	if err := s.store.AppendDebt(r.Context(), d); err != nil {
		slog.ErrorContext(r.Context(), "Debt append error", "error", err, "person", d.Person)
		writeError(w, http.StatusInternalServerError, "failed to store debt")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Debt added successfully!"})
}

func (s *Server) handleDebtSummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "GET")
		return
	}
	debts, err := s.store.ListDebts(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Debt summary error", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to summarize debts")
		return
	}
	writeJSON(w, http.StatusOK, analyser.SummarizeDebts(debts))
}
