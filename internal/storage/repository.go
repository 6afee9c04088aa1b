package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"spendsight/internal/core"
	"spendsight/internal/ports"

	_ "modernc.org/sqlite"
)

const dateLayout = "2006-01-02"

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Append implements ports.ExpenseWriter
func (r *SQLiteRepository) Append(ctx context.Context, e core.Expense) (int64, error) {
	if err := e.Validate(); err != nil {
		return 0, fmt.Errorf("validate expense: %w", err)
	}

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO expenses (spent_on, description, amount_cents, category, payment_mode, notes)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		e.Date.Format(dateLayout), e.Description, e.Amount.Cents,
		string(e.Category), string(e.PaymentMode), e.Notes)
	if err != nil {
		return 0, fmt.Errorf("insert expense: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}

	slog.InfoContext(ctx, "Expense saved to SQLite",
		"id", id,
		"description", e.Description,
		"amount_cents", e.Amount.Cents,
		"category", e.Category)

	return id, nil
}

// Delete implements ports.ExpenseDeleter with a soft delete so mirrored
// copies can still be reconciled by the sync worker.
func (r *SQLiteRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE expenses SET deleted_at = CURRENT_TIMESTAMP WHERE id = ? AND deleted_at IS NULL`, id)
	if err != nil {
		return fmt.Errorf("soft delete expense %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("expense %d: %w", id, core.ErrExpenseNotFound)
	}

	slog.InfoContext(ctx, "Expense soft deleted", "id", id)
	return nil
}

// GetExpense implements ports.ExpenseGetter. Soft-deleted rows are still
// returned; the worker needs them to mirror deletions.
func (r *SQLiteRepository) GetExpense(ctx context.Context, id int64) (core.Expense, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, spent_on, description, amount_cents, category, payment_mode, notes
		 FROM expenses WHERE id = ?`, id)
	e, err := scanExpense(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.Expense{}, fmt.Errorf("expense %d: %w", id, core.ErrExpenseNotFound)
		}
		return core.Expense{}, fmt.Errorf("get expense %d: %w", id, err)
	}
	return e, nil
}

// ListExpenses implements ports.ExpenseLister
func (r *SQLiteRepository) ListExpenses(ctx context.Context, f ports.ExpenseFilter) ([]core.Expense, error) {
	query := `SELECT id, spent_on, description, amount_cents, category, payment_mode, notes
	          FROM expenses WHERE deleted_at IS NULL`
	where, args := filterClauses(f)
	query += where + ` ORDER BY spent_on DESC, id DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()

	var out []core.Expense
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// MonthlyCategoryTotals implements ports.AggregateReader. The database
// answers the "per-category monthly totals" question; grouping into ordered
// buckets is the analytics package's job.
func (r *SQLiteRepository) MonthlyCategoryTotals(ctx context.Context, f ports.ExpenseFilter) ([]core.MonthCategoryTotal, error) {
	query := `SELECT CAST(strftime('%Y', spent_on) AS INTEGER),
	                 CAST(strftime('%m', spent_on) AS INTEGER),
	                 category,
	                 SUM(amount_cents)
	          FROM expenses WHERE deleted_at IS NULL`
	where, args := filterClauses(f)
	query += where + ` GROUP BY 1, 2, 3`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("monthly category totals: %w", err)
	}
	defer rows.Close()

	var out []core.MonthCategoryTotal
	for rows.Next() {
		var t core.MonthCategoryTotal
		var cat string
		var cents int64
		if err := rows.Scan(&t.Year, &t.Month, &cat, &cents); err != nil {
			return nil, fmt.Errorf("scan total: %w", err)
		}
		t.Category = core.Category(cat)
		t.Amount = core.Money{Cents: cents}
		out = append(out, t)
	}
	return out, rows.Err()
}

// filterClauses renders an ExpenseFilter into SQL conditions.
func filterClauses(f ports.ExpenseFilter) (string, []any) {
	var conds []string
	var args []any
	if !f.From.IsZero() {
		conds = append(conds, "spent_on >= ?")
		args = append(args, f.From.Format(dateLayout))
	}
	if !f.To.IsZero() {
		conds = append(conds, "spent_on <= ?")
		args = append(args, f.To.Format(dateLayout))
	}
	if f.Category != "" {
		conds = append(conds, "category = ?")
		args = append(args, string(f.Category))
	}
	if f.PaymentMode != "" {
		conds = append(conds, "payment_mode = ?")
		args = append(args, string(f.PaymentMode))
	}
	if f.Search != "" {
		conds = append(conds, "(description LIKE ? OR notes LIKE ?)")
		needle := "%" + f.Search + "%"
		args = append(args, needle, needle)
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " AND " + strings.Join(conds, " AND "), args
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanExpense(row rowScanner) (core.Expense, error) {
	var e core.Expense
	var spentOn, cat, mode string
	if err := row.Scan(&e.ID, &spentOn, &e.Description, &e.Amount.Cents, &cat, &mode, &e.Notes); err != nil {
		return core.Expense{}, err
	}
	t, err := time.Parse(dateLayout, spentOn)
	if err != nil {
		return core.Expense{}, fmt.Errorf("parse spent_on %q: %w", spentOn, err)
	}
	e.Date = core.Date{Time: t}
	e.Category = core.Category(cat)
	e.PaymentMode = core.PaymentMode(mode)
	return e, nil
}
