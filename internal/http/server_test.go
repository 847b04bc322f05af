package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"spendwise/internal/chat"
	"spendwise/internal/core"
	"spendwise/internal/ledger/memory"
)

func newTestServer(t *testing.T) (*Server, *memory.Store) {
	t.Helper()
	store := memory.New()
	bot := chat.NewBot(store, nil)
	return NewServer(":0", store, bot, 5), store
}

func doJSON(t *testing.T, s *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request: %v", err)
		}
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Server.Handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return v
}

func TestHealthAndReady(t *testing.T) {
	s, _ := newTestServer(t)
	defer s.Shutdown(context.Background())

	for _, path := range []string{"/healthz", "/readyz"} {
		rec := doJSON(t, s, http.MethodGet, path, nil)
		if rec.Code != http.StatusOK {
			t.Errorf("GET %s = %d, want 200", path, rec.Code)
		}
	}
}

func TestHome(t *testing.T) {
	s, _ := newTestServer(t)
	defer s.Shutdown(context.Background())

	rec := doJSON(t, s, http.MethodGet, "/", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET / = %d, want 200", rec.Code)
	}
	body := decodeBody[map[string]string](t, rec)
	if body["message"] == "" {
		t.Error("expected welcome message")
	}

	rec = doJSON(t, s, http.MethodGet, "/nope", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("GET /nope = %d, want 404", rec.Code)
	}
}

func TestCreateTransaction(t *testing.T) {
	s, _ := newTestServer(t)
	defer s.Shutdown(context.Background())

	rec := doJSON(t, s, http.MethodPost, "/transactions", map[string]any{
		"date":        "2025-08-01",
		"description": "UPI-UBER RIDE",
		"amount":      -1250.0,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("POST /transactions = %d, body %s", rec.Code, rec.Body.String())
	}

	body := decodeBody[struct {
		Status string                   `json:"status"`
		Row    core.EnrichedTransaction `json:"row"`
	}](t, rec)
	if body.Status != "success" {
		t.Errorf("status = %q", body.Status)
	}
	if body.Row.Category != "Transport" {
		t.Errorf("category = %q, want Transport", body.Row.Category)
	}
	if body.Row.Type != core.Debit {
		t.Errorf("type = %q, want Debit", body.Row.Type)
	}
	if body.Row.AbsAmount != 1250 {
		t.Errorf("abs_amount = %v, want 1250", body.Row.AbsAmount)
	}

	list := doJSON(t, s, http.MethodGet, "/transactions", nil)
	if list.Code != http.StatusOK {
		t.Fatalf("GET /transactions = %d", list.Code)
	}
	txns := decodeBody[[]core.Transaction](t, list)
	if len(txns) != 1 {
		t.Fatalf("stored transactions = %d, want 1", len(txns))
	}
}

func TestCreateTransactionValidation(t *testing.T) {
	s, _ := newTestServer(t)
	defer s.Shutdown(context.Background())

	tests := []struct {
		name string
		body map[string]any
		want int
	}{
		{
			name: "bad date",
			body: map[string]any{"date": "not-a-date", "description": "x", "amount": 1.0},
			want: http.StatusUnprocessableEntity,
		},
		{
			name: "empty description",
			body: map[string]any{"date": "2025-08-01", "description": "  ", "amount": 1.0},
			want: http.StatusUnprocessableEntity,
		},
		{
			name: "unknown field",
			body: map[string]any{"date": "2025-08-01", "description": "x", "amount": 1.0, "bogus": true},
			want: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, s, http.MethodPost, "/transactions", tt.body)
			if rec.Code != tt.want {
				t.Errorf("POST /transactions = %d, want %d (body %s)", rec.Code, tt.want, rec.Body.String())
			}
		})
	}
}

func seedSampleBatch(t *testing.T, s *Server) {
	t.Helper()
	rows := []map[string]any{
		{"date": "2025-08-01", "description": "UPI-UBER RIDE", "amount": -1250.0},
		{"date": "2025-08-05", "description": "SALARY AUG", "amount": 50000.0},
		{"date": "2025-08-07", "description": "NETFLIX SUBSCRIPTION", "amount": -750.0},
	}
	for _, row := range rows {
		rec := doJSON(t, s, http.MethodPost, "/transactions", row)
		if rec.Code != http.StatusOK {
			t.Fatalf("seed POST /transactions = %d, body %s", rec.Code, rec.Body.String())
		}
	}
}

func TestSummaryEndpoints(t *testing.T) {
	s, _ := newTestServer(t)
	defer s.Shutdown(context.Background())
	seedSampleBatch(t, s)

	t.Run("overall", func(t *testing.T) {
		rec := doJSON(t, s, http.MethodGet, "/overall", nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("GET /overall = %d", rec.Code)
		}
		got := decodeBody[core.OverallSummary](t, rec)
		if got.TotalIncome != 50000 {
			t.Errorf("total_income = %v, want 50000", got.TotalIncome)
		}
		if got.TotalExpense != 2000 {
			t.Errorf("total_expense = %v, want 2000", got.TotalExpense)
		}
		if got.NetSavings != 48000 {
			t.Errorf("net_savings = %v, want 48000", got.NetSavings)
		}
		if got.Transactions != 3 {
			t.Errorf("transactions = %d, want 3", got.Transactions)
		}
	})

	t.Run("by_category", func(t *testing.T) {
		rec := doJSON(t, s, http.MethodGet, "/by_category", nil)
		got := decodeBody[[]core.CategoryTotal](t, rec)
		if len(got) != 3 {
			t.Fatalf("groups = %d, want 3", len(got))
		}
		if got[0].Category != "Income" || got[0].Total != 50000 {
			t.Errorf("top group = %+v, want Income 50000", got[0])
		}
	})

	t.Run("monthly_trends", func(t *testing.T) {
		rec := doJSON(t, s, http.MethodGet, "/monthly_trends", nil)
		got := decodeBody[[]core.MonthlyTotal](t, rec)
		if len(got) != 1 {
			t.Fatalf("months = %d, want 1", len(got))
		}
		if got[0].Total != 52000 {
			t.Errorf("month total = %v, want 52000", got[0].Total)
		}
	})

	t.Run("top_merchants with n", func(t *testing.T) {
		rec := doJSON(t, s, http.MethodGet, "/top_merchants?n=1", nil)
		got := decodeBody[[]core.MerchantTotal](t, rec)
		if len(got) != 1 {
			t.Fatalf("merchants = %d, want 1", len(got))
		}
	})

	t.Run("top_merchants invalid n", func(t *testing.T) {
		rec := doJSON(t, s, http.MethodGet, "/top_merchants?n=zero", nil)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("GET /top_merchants?n=zero = %d, want 400", rec.Code)
		}
	})

	t.Run("anomalies empty set is json array", func(t *testing.T) {
		rec := doJSON(t, s, http.MethodGet, "/anomalies", nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("GET /anomalies = %d", rec.Code)
		}
		if !strings.HasPrefix(strings.TrimSpace(rec.Body.String()), "[") {
			t.Errorf("anomalies body = %s, want a JSON array", rec.Body.String())
		}
	})

	t.Run("analyse bundles all summaries", func(t *testing.T) {
		rec := doJSON(t, s, http.MethodGet, "/analyse", nil)
		got := decodeBody[core.Analysis](t, rec)
		if got.Overall.Transactions != 3 {
			t.Errorf("overall.transactions = %d, want 3", got.Overall.Transactions)
		}
		if len(got.ByCategory) != 3 {
			t.Errorf("by_category = %d groups, want 3", len(got.ByCategory))
		}
	})
}

func TestSummariesReflectMutations(t *testing.T) {
	s, _ := newTestServer(t)
	defer s.Shutdown(context.Background())
	seedSampleBatch(t, s)

	before := decodeBody[core.OverallSummary](t, doJSON(t, s, http.MethodGet, "/overall", nil))
	if before.Transactions != 3 {
		t.Fatalf("transactions = %d, want 3", before.Transactions)
	}

	rec := doJSON(t, s, http.MethodPost, "/transactions", map[string]any{
		"date": "2025-08-10", "description": "ZOMATO ORDER", "amount": -300.0,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("POST /transactions = %d", rec.Code)
	}

	after := decodeBody[core.OverallSummary](t, doJSON(t, s, http.MethodGet, "/overall", nil))
	if after.Transactions != 4 {
		t.Errorf("transactions after mutation = %d, want 4 (stale cache?)", after.Transactions)
	}
	if after.TotalExpense != 2300 {
		t.Errorf("total_expense after mutation = %v, want 2300", after.TotalExpense)
	}
}

func TestUploadCSV(t *testing.T) {
	s, _ := newTestServer(t)
	defer s.Shutdown(context.Background())

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "statement.csv")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	fmt.Fprint(fw, "Date,Description,Amount\n2025-08-01,UPI-UBER RIDE,-1250\n2025-08-05,SALARY AUG,50000\nbad,row,oops\n")
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/statements/csv", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	s.Server.Handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("POST /statements/csv = %d, body %s", rec.Code, rec.Body.String())
	}
	body := decodeBody[struct {
		Status          string `json:"status"`
		NumTransactions int    `json:"num_transactions"`
		DroppedRows     int    `json:"dropped_rows"`
	}](t, rec)
	if body.NumTransactions != 2 {
		t.Errorf("num_transactions = %d, want 2", body.NumTransactions)
	}
	if body.DroppedRows != 1 {
		t.Errorf("dropped_rows = %d, want 1", body.DroppedRows)
	}
}

func TestUploadCSVMissingFile(t *testing.T) {
	s, _ := newTestServer(t)
	defer s.Shutdown(context.Background())

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/statements/csv", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	s.Server.Handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("POST /statements/csv without file = %d, want 400", rec.Code)
	}
}

func TestUploadLines(t *testing.T) {
	s, _ := newTestServer(t)
	defer s.Shutdown(context.Background())

	rec := doJSON(t, s, http.MethodPost, "/statements/lines", map[string]any{
		"lines": []string{
			"Aug 31, 2025 10:42 PM DEBIT n1,250.00 UPI Swiggy Order T123456",
			"this line is noise",
		},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("POST /statements/lines = %d, body %s", rec.Code, rec.Body.String())
	}
	body := decodeBody[struct {
		Status          string `json:"status"`
		NumTransactions int    `json:"num_transactions"`
		SkippedLines    int    `json:"skipped_lines"`
	}](t, rec)
	if body.NumTransactions != 1 {
		t.Errorf("num_transactions = %d, want 1", body.NumTransactions)
	}
	if body.SkippedLines != 1 {
		t.Errorf("skipped_lines = %d, want 1", body.SkippedLines)
	}

	rec = doJSON(t, s, http.MethodPost, "/statements/lines", map[string]any{"lines": []string{}})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("POST /statements/lines with no lines = %d, want 400", rec.Code)
	}
}

func TestDebtEndpoints(t *testing.T) {
	s, _ := newTestServer(t)
	defer s.Shutdown(context.Background())

	rec := doJSON(t, s, http.MethodPost, "/debts", map[string]any{
		"person": "Ravi", "amount": 500.0, "type": "owe", "due_date": "2025-09-10",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("POST /debts = %d, body %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, s, http.MethodPost, "/debts", map[string]any{
		"person": "Anita", "amount": 200.0, "type": "owed", "due_date": "2025-09-12",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("POST /debts = %d", rec.Code)
	}

	rec = doJSON(t, s, http.MethodPost, "/debts", map[string]any{
		"person": "Bad", "amount": 100.0, "type": "maybe", "due_date": "2025-09-12",
	})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("POST /debts invalid type = %d, want 422", rec.Code)
	}

	list := decodeBody[[]core.Debt](t, doJSON(t, s, http.MethodGet, "/debts", nil))
	if len(list) != 2 {
		t.Fatalf("debts = %d, want 2", len(list))
	}

	summary := decodeBody[core.DebtSummary](t, doJSON(t, s, http.MethodGet, "/debts/summary", nil))
	if summary.TotalOwe != 500 || summary.TotalOwed != 200 || summary.NetBalance != -300 {
		t.Errorf("summary = %+v", summary)
	}
}

func TestReminderEndpoints(t *testing.T) {
	s, _ := newTestServer(t)
	defer s.Shutdown(context.Background())

	rec := doJSON(t, s, http.MethodPost, "/reminders", map[string]any{
		"title": "Rent", "date": "2025-09-01", "time": "10:00", "amount": 15000.0,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("POST /reminders = %d, body %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, s, http.MethodPost, "/reminders", map[string]any{
		"title": "", "date": "2025-09-01", "amount": 1.0,
	})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("POST /reminders empty title = %d, want 422", rec.Code)
	}

	list := decodeBody[[]core.Reminder](t, doJSON(t, s, http.MethodGet, "/reminders", nil))
	if len(list) != 1 {
		t.Fatalf("reminders = %d, want 1", len(list))
	}
	if list[0].Title != "Rent" {
		t.Errorf("title = %q", list[0].Title)
	}
}

func TestChatbotEndpoint(t *testing.T) {
	s, _ := newTestServer(t)
	defer s.Shutdown(context.Background())
	seedSampleBatch(t, s)

	rec := doJSON(t, s, http.MethodPost, "/chatbot", map[string]any{"message": "what is my total spending?"})
	if rec.Code != http.StatusOK {
		t.Fatalf("POST /chatbot = %d, body %s", rec.Code, rec.Body.String())
	}
	body := decodeBody[map[string]string](t, rec)
	if body["response"] != "Your total spending is 2000." {
		t.Errorf("response = %q", body["response"])
	}

	rec = doJSON(t, s, http.MethodPost, "/chatbot", map[string]any{"message": "  "})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("POST /chatbot empty message = %d, want 400", rec.Code)
	}
}

func TestGreet(t *testing.T) {
	s, _ := newTestServer(t)
	defer s.Shutdown(context.Background())

	rec := doJSON(t, s, http.MethodGet, "/greet", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /greet = %d", rec.Code)
	}
	body := decodeBody[map[string]string](t, rec)
	if body["response"] != "Hey hi! how can I help you" {
		t.Errorf("response = %q", body["response"])
	}
}

func TestMethodNotAllowed(t *testing.T) {
	s, _ := newTestServer(t)
	defer s.Shutdown(context.Background())

	tests := []struct {
		method string
		path   string
	}{
		{http.MethodDelete, "/transactions"},
		{http.MethodPost, "/overall"},
		{http.MethodGet, "/statements/csv"},
		{http.MethodGet, "/chatbot"},
		{http.MethodPost, "/greet"},
	}
	for _, tt := range tests {
		rec := doJSON(t, s, tt.method, tt.path, nil)
		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("%s %s = %d, want 405", tt.method, tt.path, rec.Code)
		}
	}
}

func TestSecurityHeaders(t *testing.T) {
	s, _ := newTestServer(t)
	defer s.Shutdown(context.Background())

	rec := doJSON(t, s, http.MethodGet, "/overall", nil)
	if got := rec.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("X-Content-Type-Options = %q", got)
	}
	if got := rec.Header().Get("X-Frame-Options"); got != "DENY" {
		t.Errorf("X-Frame-Options = %q", got)
	}
}
