package services

import (
	"context"
	"fmt"
	"log/slog"

	"spendsight/internal/amqp"
	"spendsight/internal/core"
	"spendsight/internal/ports"
)

// EventPublisher publishes expense mutation events for the sync worker.
type EventPublisher interface {
	PublishExpenseEvent(ctx context.Context, event *amqp.ExpenseEvent) error
}

type expenseStore interface {
	ports.ExpenseWriter
	ports.ExpenseDeleter
}

// ExpenseService orchestrates expense mutations across storage and AMQP.
// The store is the source of truth; publish failures are logged but never
// fail the request.
type ExpenseService struct {
	store     expenseStore
	publisher EventPublisher
}

func NewExpenseService(store expenseStore, publisher EventPublisher) *ExpenseService {
	return &ExpenseService{
		store:     store,
		publisher: publisher,
	}
}

// CreateExpense saves an expense and publishes a created event.
func (s *ExpenseService) CreateExpense(ctx context.Context, e core.Expense) (int64, error) {
	id, err := s.store.Append(ctx, e)
	if err != nil {
		return 0, fmt.Errorf("save expense: %w", err)
	}

	s.publish(ctx, amqp.EventExpenseCreated, id)
	return id, nil
}

// DeleteExpense removes an expense and publishes a deleted event.
func (s *ExpenseService) DeleteExpense(ctx context.Context, id int64) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}

	s.publish(ctx, amqp.EventExpenseDeleted, id)
	return nil
}

func (s *ExpenseService) publish(ctx context.Context, kind amqp.EventKind, id int64) {
	if s.publisher == nil {
		slog.DebugContext(ctx, "No event publisher configured, skipping event",
			"kind", kind, "expense_id", id)
		return
	}
	if err := s.publisher.PublishExpenseEvent(ctx, amqp.NewExpenseEvent(kind, id)); err != nil {
		slog.ErrorContext(ctx, "Failed to publish expense event",
			"kind", kind, "expense_id", id, "error", err)
	}
}
