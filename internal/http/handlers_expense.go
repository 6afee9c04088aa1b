package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"spendsight/internal/core"
	"spendsight/internal/forms"
	applog "spendsight/internal/log"
	"spendsight/internal/ports"
)

type expensePayload struct {
	ID          int64  `json:"id"`
	Date        string `json:"date"`
	Description string `json:"description"`
	AmountCents int64  `json:"amount_cents"`
	Category    string `json:"category"`
	PaymentMode string `json:"payment_mode"`
	Notes       string `json:"notes,omitempty"`
}

func toPayload(e core.Expense) expensePayload {
	return expensePayload{
		ID:          e.ID,
		Date:        e.Date.Format("2006-01-02"),
		Description: e.Description,
		AmountCents: e.Amount.Cents,
		Category:    string(e.Category),
		PaymentMode: string(e.PaymentMode),
		Notes:       e.Notes,
	}
}

func (s *Server) handleExpenses(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.handleCreateExpense(w, r)
	case http.MethodGet:
		s.handleListExpenses(w, r)
	default:
		requireMethod(w, r, http.MethodPost, http.MethodGet)
	}
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	parser := newBodyParser(r)
	if parser.err != nil {
		slog.ErrorContext(r.Context(), "Body parse error", applog.FieldError, parser.err)
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	// Run every field through forms validation before touching the domain,
	// so the client gets all field errors in one response.
	state := forms.NewState()
	for _, name := range []string{forms.FieldAmount, forms.FieldDate, forms.FieldDescription,
		forms.FieldCategory, forms.FieldPaymentMode, forms.FieldNotes} {
		state.Apply(name, parser.Get(name))
	}
	if !state.Valid() {
		writeFieldErrors(w, state.Errors())
		return
	}

	cents, err := core.ParseDecimalToCents(state[forms.FieldAmount].Value)
	if err != nil {
		writeFieldErrors(w, map[string]forms.ErrorKind{forms.FieldAmount: forms.ErrInvalidAmount})
		return
	}
	date, err := time.Parse("2006-01-02", state[forms.FieldDate].Value)
	if err != nil {
		writeFieldErrors(w, map[string]forms.ErrorKind{forms.FieldDate: forms.ErrInvalidDate})
		return
	}

	expense := core.Expense{
		Date:        core.Date{Time: date},
		Description: state[forms.FieldDescription].Value,
		Amount:      core.Money{Cents: cents},
		Category:    core.Category(state[forms.FieldCategory].Value),
		PaymentMode: core.PaymentMode(state[forms.FieldPaymentMode].Value),
		Notes:       state[forms.FieldNotes].Value,
	}
	if err := expense.Validate(); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	id, err := s.expenseSvc.CreateExpense(r.Context(), expense)
	if err != nil {
		slog.ErrorContext(r.Context(), "Expense create error", applog.FieldError, err)
		writeError(w, http.StatusInternalServerError, "failed to save expense")
		return
	}

	s.invalidateSummaries()

	expense.ID = id
	writeJSON(w, http.StatusCreated, toPayload(expense))
}

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	from, err := parseDateParam(query.Get("from"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid from date")
		return
	}
	to, err := parseDateParam(query.Get("to"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid to date")
		return
	}

	filter := ports.ExpenseFilter{
		From:        from,
		To:          to,
		Category:    core.Category(sanitizeInput(query.Get("category"))),
		PaymentMode: core.PaymentMode(sanitizeInput(query.Get("payment_mode"))),
		Search:      sanitizeInput(query.Get("q")),
	}
	if filter.Category != "" && !filter.Category.IsValid() {
		writeError(w, http.StatusBadRequest, "unknown category")
		return
	}
	if filter.PaymentMode != "" && !filter.PaymentMode.IsValid() {
		writeError(w, http.StatusBadRequest, "unknown payment mode")
		return
	}

	items, err := s.lister.ListExpenses(r.Context(), filter)
	if err != nil {
		slog.ErrorContext(r.Context(), "Expense list error", applog.FieldError, err)
		writeError(w, http.StatusInternalServerError, "failed to list expenses")
		return
	}

	payload := struct {
		Items []expensePayload `json:"items"`
		Count int              `json:"count"`
	}{
		Items: make([]expensePayload, 0, len(items)),
		Count: len(items),
	}
	for _, e := range items {
		payload.Items = append(payload.Items, toPayload(e))
	}
	writeJSON(w, http.StatusOK, payload)
}

func (s *Server) handleExpenseByID(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodDelete) {
		return
	}

	idStr := strings.TrimPrefix(r.URL.Path, "/expenses/")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id < 1 {
		writeError(w, http.StatusBadRequest, "invalid expense id")
		return
	}

	if err := s.expenseSvc.DeleteExpense(r.Context(), id); err != nil {
		if errors.Is(err, core.ErrExpenseNotFound) {
			writeError(w, http.StatusNotFound, "expense not found")
			return
		}
		slog.ErrorContext(r.Context(), "Expense delete error", applog.FieldExpenseID, id, applog.FieldError, err)
		writeError(w, http.StatusInternalServerError, "failed to delete expense")
		return
	}

	s.invalidateSummaries()

	w.WriteHeader(http.StatusNoContent)
}
