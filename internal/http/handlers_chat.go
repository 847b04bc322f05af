package http

import (
	"net/http"
	"strings"

	applog "spendwise/internal/log"
)

type chatRequest struct {
	Message string `json:"message"`
}

func (s *Server) handleChatbot(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, "POST")
		return
	}
	if s.bot == nil {
		writeError(w, http.StatusServiceUnavailable, "chatbot not configured")
		return
	}

	var req chatRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	message := strings.TrimSpace(req.Message)
	if message == "" {
		writeError(w, http.StatusBadRequest, "empty message")
		return
	}

	answer, err := s.bot.Answer(r.Context(), message)
	if err != nil {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Chatbot error",
			applog.FieldError, err.Error())
		writeError(w, http.StatusInternalServerError, "failed to answer")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"response": answer})
}

func (s *Server) handleGreet(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "GET")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"response": "Hey hi! how can I help you"})
}
