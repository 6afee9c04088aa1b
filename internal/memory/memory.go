// Package memory is the in-process storage backend. It backs local
// development and tests where a SQLite file would be overkill.
package memory

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"spendsight/internal/core"
	"spendsight/internal/ports"
)

type Store struct {
	mu     sync.Mutex
	nextID int64
	items  []core.Expense
}

func New() *Store {
	return &Store{nextID: 1}
}

// Append validates and stores the expense, returning its assigned ID.
func (s *Store) Append(_ context.Context, e core.Expense) (int64, error) {
	if err := e.Validate(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	e.ID = s.nextID
	s.nextID++
	s.items = append(s.items, e)
	return e.ID, nil
}

// Delete removes the expense with the given ID.
func (s *Store) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, e := range s.items {
		if e.ID == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("expense %d: %w", id, core.ErrExpenseNotFound)
}

// GetExpense returns the expense with the given ID.
func (s *Store) GetExpense(_ context.Context, id int64) (core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.items {
		if e.ID == id {
			return e, nil
		}
	}
	return core.Expense{}, fmt.Errorf("expense %d: %w", id, core.ErrExpenseNotFound)
}

// ListExpenses returns all stored expenses matching the filter.
func (s *Store) ListExpenses(_ context.Context, f ports.ExpenseFilter) ([]core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Expense, 0, len(s.items))
	for _, e := range s.items {
		if matches(e, f) {
			out = append(out, e)
		}
	}
	return out, nil
}

// MonthlyCategoryTotals folds stored expenses into per-category monthly
// sums, honoring the same filter as ListExpenses.
func (s *Store) MonthlyCategoryTotals(_ context.Context, f ports.ExpenseFilter) ([]core.MonthCategoryTotal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	type key struct {
		year, month int
		cat         core.Category
	}
	sums := make(map[key]int64)
	var order []key
	for _, e := range s.items {
		if !matches(e, f) {
			continue
		}
		k := key{e.Date.Year(), e.Date.Month(), e.Category}
		if _, seen := sums[k]; !seen {
			order = append(order, k)
		}
		sums[k] += e.Amount.Cents
	}

	out := make([]core.MonthCategoryTotal, 0, len(order))
	for _, k := range order {
		out = append(out, core.MonthCategoryTotal{
			Year:     k.year,
			Month:    k.month,
			Category: k.cat,
			Amount:   core.Money{Cents: sums[k]},
		})
	}
	return out, nil
}

func matches(e core.Expense, f ports.ExpenseFilter) bool {
	if !f.From.IsZero() && e.Date.Before(f.From.Time) {
		return false
	}
	if !f.To.IsZero() && e.Date.After(f.To.Time) {
		return false
	}
	if f.Category != "" && e.Category != f.Category {
		return false
	}
	if f.PaymentMode != "" && e.PaymentMode != f.PaymentMode {
		return false
	}
	if f.Search != "" {
		needle := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(e.Description), needle) &&
			!strings.Contains(strings.ToLower(e.Notes), needle) {
			return false
		}
	}
	return true
}
