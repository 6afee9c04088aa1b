// Package ports declares the outbound interfaces the HTTP layer and the
// analytics pipeline depend on. Storage backends implement them.
package ports

import (
	"context"

	"spendsight/internal/core"
)

// ExpenseFilter narrows queries over recorded expenses. Zero values mean
// "no constraint". Filtering is the data source's job; the analytics core
// only ever sees the already-filtered result.
type ExpenseFilter struct {
	From        core.Date
	To          core.Date
	Category    core.Category
	PaymentMode core.PaymentMode
	Search      string
}

type (
	ExpenseWriter interface {
		Append(ctx context.Context, e core.Expense) (id int64, err error)
	}

	ExpenseDeleter interface {
		Delete(ctx context.Context, id int64) error
	}

	ExpenseLister interface {
		ListExpenses(ctx context.Context, f ExpenseFilter) ([]core.Expense, error)
	}

	// AggregateReader answers "per-category monthly totals" — the raw input
	// of the analytics aggregation pipeline.
	AggregateReader interface {
		MonthlyCategoryTotals(ctx context.Context, f ExpenseFilter) ([]core.MonthCategoryTotal, error)
	}

	// ExpenseGetter fetches a single expense by ID (used by the sync worker).
	ExpenseGetter interface {
		GetExpense(ctx context.Context, id int64) (core.Expense, error)
	}
)
