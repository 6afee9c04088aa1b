package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"spendsight/internal/memory"
	"spendsight/internal/services"
)

func newTestServer(t *testing.T) (*Server, *memory.Store) {
	t.Helper()
	store := memory.New()
	s := NewServer(Options{
		Addr:        ":0",
		CacheTTL:    time.Minute,
		RewarmDelay: time.Hour, // never fires during a test
	},
		services.NewExpenseService(store, nil),
		services.NewAnalyticsService(store),
		store,
	)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = s.Shutdown(ctx)
	})
	return s, store
}

func doRequest(s *Server, method, target, body string, contentType string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	s.Handler.ServeHTTP(rec, req)
	return rec
}

func createExpense(t *testing.T, s *Server, date, description, amount, category, paymentMode string) int64 {
	t.Helper()
	body := fmt.Sprintf(`{"date":%q,"description":%q,"amount":%q,"category":%q,"payment_mode":%q}`,
		date, description, amount, category, paymentMode)
	rec := doRequest(s, http.MethodPost, "/expenses", body, "application/json")
	if rec.Code != http.StatusCreated {
		t.Fatalf("create expense: status %d, body %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		ID int64 `json:"id"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode create response: %v", err)
	}
	return resp.ID
}

func TestHealthEndpoints(t *testing.T) {
	s, _ := newTestServer(t)

	for _, path := range []string{"/healthz", "/readyz"} {
		rec := doRequest(s, http.MethodGet, path, "", "")
		if rec.Code != http.StatusOK {
			t.Errorf("%s status = %d, want 200", path, rec.Code)
		}
	}
}

func TestCreateExpenseJSON(t *testing.T) {
	s, _ := newTestServer(t)

	id := createExpense(t, s, "2024-01-05", "weekly shop", "123.45", "Groceries", "card")
	if id != 1 {
		t.Errorf("first expense id = %d, want 1", id)
	}

	rec := doRequest(s, http.MethodGet, "/expenses", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d", rec.Code)
	}
	var list struct {
		Items []expensePayload `json:"items"`
		Count int              `json:"count"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if list.Count != 1 {
		t.Fatalf("count = %d, want 1", list.Count)
	}
	got := list.Items[0]
	if got.AmountCents != 12345 || got.Category != "Groceries" || got.Date != "2024-01-05" {
		t.Errorf("unexpected payload: %+v", got)
	}
}

func TestCreateExpenseFormEncoded(t *testing.T) {
	s, _ := newTestServer(t)

	body := "date=2024-02-01&description=bus+ticket&amount=2%2C50&category=Travel&payment_mode=cash"
	rec := doRequest(s, http.MethodPost, "/expenses", body, "application/x-www-form-urlencoded")
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var resp expensePayload
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.AmountCents != 250 {
		t.Errorf("amount_cents = %d, want 250 (comma decimal)", resp.AmountCents)
	}
}

func TestCreateExpenseValidationErrors(t *testing.T) {
	s, _ := newTestServer(t)

	body := `{"date":"not-a-date","description":"","amount":"abc","category":"Mystery","payment_mode":"cheque"}`
	rec := doRequest(s, http.MethodPost, "/expenses", body, "application/json")
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}

	var resp struct {
		Fields map[string]string `json:"fields"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := map[string]string{
		"date":         "invalid_date",
		"description":  "required",
		"amount":       "invalid_amount",
		"category":     "unknown_category",
		"payment_mode": "unknown_payment_mode",
	}
	for field, kind := range want {
		if resp.Fields[field] != kind {
			t.Errorf("field %s error = %q, want %q", field, resp.Fields[field], kind)
		}
	}
}

func TestListExpensesFilters(t *testing.T) {
	s, _ := newTestServer(t)

	createExpense(t, s, "2024-01-05", "weekly shop", "100.00", "Groceries", "card")
	createExpense(t, s, "2024-02-10", "train tickets", "20.00", "Travel", "upi")

	tests := []struct {
		name   string
		query  string
		want   int
		status int
	}{
		{"no filter", "", 2, http.StatusOK},
		{"by category", "?category=Travel", 1, http.StatusOK},
		{"by payment mode", "?payment_mode=card", 1, http.StatusOK},
		{"by date range", "?from=2024-02-01", 1, http.StatusOK},
		{"by search", "?q=train", 1, http.StatusOK},
		{"unknown category", "?category=Mystery", 0, http.StatusBadRequest},
		{"bad from date", "?from=02-2024", 0, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(s, http.MethodGet, "/expenses"+tt.query, "", "")
			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d", rec.Code, tt.status)
			}
			if tt.status != http.StatusOK {
				return
			}
			var list struct {
				Count int `json:"count"`
			}
			if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if list.Count != tt.want {
				t.Errorf("count = %d, want %d", list.Count, tt.want)
			}
		})
	}
}

func TestDeleteExpense(t *testing.T) {
	s, _ := newTestServer(t)

	id := createExpense(t, s, "2024-01-05", "weekly shop", "100.00", "Groceries", "card")

	rec := doRequest(s, http.MethodDelete, fmt.Sprintf("/expenses/%d", id), "", "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d, want 204", rec.Code)
	}

	rec = doRequest(s, http.MethodDelete, fmt.Sprintf("/expenses/%d", id), "", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("second delete status = %d, want 404", rec.Code)
	}

	rec = doRequest(s, http.MethodDelete, "/expenses/abc", "", "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad id status = %d, want 400", rec.Code)
	}
}

func TestSummaryEndpoint(t *testing.T) {
	s, _ := newTestServer(t)

	createExpense(t, s, "2024-01-05", "weekly shop", "100.00", "Groceries", "card")
	createExpense(t, s, "2024-02-10", "weekly shop", "200.00", "Groceries", "card")
	createExpense(t, s, "2024-02-12", "train tickets", "50.00", "Travel", "upi")

	rec := doRequest(s, http.MethodGet, "/analytics/summary?window=all", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("summary status = %d, body %s", rec.Code, rec.Body.String())
	}

	var summary summaryPayload
	if err := json.Unmarshal(rec.Body.Bytes(), &summary); err != nil {
		t.Fatalf("decode summary: %v", err)
	}
	if summary.Stats.GrandTotalCents != 35000 {
		t.Errorf("grand total = %d, want 35000", summary.Stats.GrandTotalCents)
	}
	if summary.Stats.AverageMonthlyCents != 17500 {
		t.Errorf("average monthly = %d, want 17500", summary.Stats.AverageMonthlyCents)
	}
	if summary.Stats.TopCategory != "Groceries" {
		t.Errorf("top category = %q, want Groceries", summary.Stats.TopCategory)
	}
	if len(summary.Months) != 2 || summary.Months[0].Label != "Jan 2024" {
		t.Errorf("unexpected months: %+v", summary.Months)
	}
	if len(summary.Rankings) == 0 || summary.Rankings[0].Category != "Groceries" {
		t.Errorf("unexpected rankings: %+v", summary.Rankings)
	}
}

func TestSummaryEmptyStore(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doRequest(s, http.MethodGet, "/analytics/summary", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("summary status = %d", rec.Code)
	}
	var summary summaryPayload
	if err := json.Unmarshal(rec.Body.Bytes(), &summary); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if summary.Stats.GrandTotalCents != 0 || summary.Stats.TopCategory != "" {
		t.Errorf("empty store stats = %+v", summary.Stats)
	}
}

func TestSummaryUnknownWindow(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doRequest(s, http.MethodGet, "/analytics/summary?window=1y", "", "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestSummaryCacheInvalidation(t *testing.T) {
	s, _ := newTestServer(t)

	createExpense(t, s, "2024-01-05", "weekly shop", "100.00", "Groceries", "card")

	rec := doRequest(s, http.MethodGet, "/analytics/summary?window=all", "", "")
	if got := rec.Header().Get("X-Cache"); got != "MISS" {
		t.Errorf("first request X-Cache = %q, want MISS", got)
	}

	rec = doRequest(s, http.MethodGet, "/analytics/summary?window=all", "", "")
	if got := rec.Header().Get("X-Cache"); got != "HIT" {
		t.Errorf("second request X-Cache = %q, want HIT", got)
	}

	// A mutation purges the cache.
	createExpense(t, s, "2024-01-06", "more shopping", "10.00", "Groceries", "card")

	rec = doRequest(s, http.MethodGet, "/analytics/summary?window=all", "", "")
	if got := rec.Header().Get("X-Cache"); got != "MISS" {
		t.Errorf("post-mutation X-Cache = %q, want MISS", got)
	}
	var summary summaryPayload
	if err := json.Unmarshal(rec.Body.Bytes(), &summary); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if summary.Stats.GrandTotalCents != 11000 {
		t.Errorf("grand total after mutation = %d, want 11000", summary.Stats.GrandTotalCents)
	}
}

func TestExportEndpoint(t *testing.T) {
	s, _ := newTestServer(t)

	createExpense(t, s, "2024-01-05", "weekly shop", "100.00", "Groceries", "card")

	rec := doRequest(s, http.MethodGet, "/analytics/export?window=3m", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("export status = %d, body %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); !strings.Contains(ct, "spreadsheetml") {
		t.Errorf("content type = %q", ct)
	}
	if !strings.Contains(rec.Header().Get("Content-Disposition"), ".xlsx") {
		t.Errorf("content disposition = %q", rec.Header().Get("Content-Disposition"))
	}
	if rec.Body.Len() == 0 {
		t.Error("empty export body")
	}
}

func TestMethodNotAllowed(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doRequest(s, http.MethodPut, "/expenses", "", "")
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("PUT /expenses status = %d, want 405", rec.Code)
	}

	rec = doRequest(s, http.MethodPost, "/analytics/summary", "", "")
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("POST /analytics/summary status = %d, want 405", rec.Code)
	}
}
