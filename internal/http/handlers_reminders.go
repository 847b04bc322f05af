package http

import (
	"log/slog"
	"net/http"

	"spendwise/internal/core"
)

func (s *Server) handleReminders(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handleListReminders(w, r)
	case http.MethodPost:
		s.handleAddReminder(w, r)
	default:
		methodNotAllowed(w, "GET, POST")
	}
}

func (s *Server) handleListReminders(w http.ResponseWriter, r *http.Request) {
	reminders, err := s.store.ListReminders(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Reminder list error", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list reminders")
		return
	}
	if reminders == nil {
		reminders = []core.Reminder{}
	}
	writeJSON(w, http.StatusOK, reminders)
}

func (s *Server) handleAddReminder(w http.ResponseWriter, r *http.Request) {
	var rem core.Reminder
	if err := decodeJSON(w, r, &rem); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	rem.Title = sanitizeInput(rem.Title)
	rem.Notes = sanitizeInput(rem.Notes)

	if err := rem.Validate(); err != nil {
		writeError(w, validationStatus(err), err.Error())
		return
	}

	if err := s.store.AppendReminder(r.Context(), rem); err != nil {
		slog.ErrorContext(r.Context(), "Reminder append error", "error", err, "title", rem.Title)
		writeError(w, http.StatusInternalServerError, "failed to store reminder")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"status": "success", "reminder": rem})
}
