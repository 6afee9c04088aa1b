package services

import (
	"context"
	"fmt"
	"log/slog"

	"spendsight/internal/amqp"
	"spendsight/internal/core"
	"spendsight/internal/ports"
)

// SheetWriter mirrors expenses into an external spreadsheet.
type SheetWriter interface {
	AppendExpense(ctx context.Context, e core.Expense) error
	RemoveExpense(ctx context.Context, id int64) error
}

// SheetSyncer applies expense events to the spreadsheet mirror. The worker
// wires it as the AMQP consume handler.
type SheetSyncer struct {
	store ports.ExpenseGetter
	sheet SheetWriter
}

func NewSheetSyncer(store ports.ExpenseGetter, sheet SheetWriter) *SheetSyncer {
	return &SheetSyncer{
		store: store,
		sheet: sheet,
	}
}

// HandleEvent processes one expense event. Errors make the caller nack and
// requeue the delivery.
func (s *SheetSyncer) HandleEvent(ctx context.Context, event *amqp.ExpenseEvent) error {
	switch event.Kind {
	case amqp.EventExpenseCreated:
		expense, err := s.store.GetExpense(ctx, event.ExpenseID)
		if err != nil {
			return fmt.Errorf("get expense %d: %w", event.ExpenseID, err)
		}
		if err := s.sheet.AppendExpense(ctx, expense); err != nil {
			return fmt.Errorf("append expense %d to sheet: %w", event.ExpenseID, err)
		}
		slog.InfoContext(ctx, "Synced expense to sheet", "expense_id", event.ExpenseID)
		return nil

	case amqp.EventExpenseDeleted:
		if err := s.sheet.RemoveExpense(ctx, event.ExpenseID); err != nil {
			return fmt.Errorf("remove expense %d from sheet: %w", event.ExpenseID, err)
		}
		slog.InfoContext(ctx, "Removed expense from sheet", "expense_id", event.ExpenseID)
		return nil

	default:
		return fmt.Errorf("unknown event kind: %s", event.Kind)
	}
}
