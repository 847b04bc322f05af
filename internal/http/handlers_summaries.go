package http

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"spendwise/internal/core"
)

func (s *Server) handleOverall(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "GET")
		return
	}
	a, err := s.getAnalysis(r.Context(), s.topMerchants)
	if err != nil {
		slog.ErrorContext(r.Context(), "Overall summary error", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to compute summary")
		return
	}
	writeJSON(w, http.StatusOK, a.Overall)
}

func (s *Server) handleByCategory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "GET")
		return
	}
	a, err := s.getAnalysis(r.Context(), s.topMerchants)
	if err != nil {
		slog.ErrorContext(r.Context(), "Category summary error", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to compute summary")
		return
	}
	if a.ByCategory == nil {
		a.ByCategory = []core.CategoryTotal{}
	}
	writeJSON(w, http.StatusOK, a.ByCategory)
}

func (s *Server) handleMonthlyTrends(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "GET")
		return
	}
	a, err := s.getAnalysis(r.Context(), s.topMerchants)
	if err != nil {
		slog.ErrorContext(r.Context(), "Monthly trends error", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to compute summary")
		return
	}
	if a.MonthlyTrends == nil {
		a.MonthlyTrends = []core.MonthlyTotal{}
	}
	writeJSON(w, http.StatusOK, a.MonthlyTrends)
}

func (s *Server) handleTopMerchants(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "GET")
		return
	}

	topN := s.topMerchants
	if v := strings.TrimSpace(r.URL.Query().Get("n")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "invalid n parameter")
			return
		}
		topN = n
	}

	a, err := s.getAnalysis(r.Context(), topN)
	if err != nil {
		slog.ErrorContext(r.Context(), "Top merchants error", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to compute summary")
		return
	}
	if a.TopMerchants == nil {
		a.TopMerchants = []core.MerchantTotal{}
	}
	writeJSON(w, http.StatusOK, a.TopMerchants)
}

func (s *Server) handleAnomalies(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "GET")
		return
	}
	a, err := s.getAnalysis(r.Context(), s.topMerchants)
	if err != nil {
		slog.ErrorContext(r.Context(), "Anomaly detection error", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to compute summary")
		return
	}
	if a.Anomalies == nil {
		a.Anomalies = []core.EnrichedTransaction{}
	}
	writeJSON(w, http.StatusOK, a.Anomalies)
}

func (s *Server) handleAnalyse(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "GET")
		return
	}
	a, err := s.getAnalysis(r.Context(), s.topMerchants)
	if err != nil {
		slog.ErrorContext(r.Context(), "Analysis error", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to compute summary")
		return
	}
	if a.ByCategory == nil {
		a.ByCategory = []core.CategoryTotal{}
	}
	if a.MonthlyTrends == nil {
		a.MonthlyTrends = []core.MonthlyTotal{}
	}
	if a.TopMerchants == nil {
		a.TopMerchants = []core.MerchantTotal{}
	}
	if a.Anomalies == nil {
		a.Anomalies = []core.EnrichedTransaction{}
	}
	writeJSON(w, http.StatusOK, a)
}
