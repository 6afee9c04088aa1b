package services

import (
	"context"
	"errors"
	"testing"

	"spendsight/internal/amqp"
	"spendsight/internal/core"
)

type fakeGetter struct {
	expenses map[int64]core.Expense
}

func (f *fakeGetter) GetExpense(ctx context.Context, id int64) (core.Expense, error) {
	e, ok := f.expenses[id]
	if !ok {
		return core.Expense{}, errors.New("expense not found")
	}
	return e, nil
}

type fakeSheet struct {
	appendErr error
	removeErr error
	appended  []core.Expense
	removed   []int64
}

func (f *fakeSheet) AppendExpense(ctx context.Context, e core.Expense) error {
	if f.appendErr != nil {
		return f.appendErr
	}
	f.appended = append(f.appended, e)
	return nil
}

func (f *fakeSheet) RemoveExpense(ctx context.Context, id int64) error {
	if f.removeErr != nil {
		return f.removeErr
	}
	f.removed = append(f.removed, id)
	return nil
}

func TestHandleEventCreated(t *testing.T) {
	expense := validExpense()
	expense.ID = 7
	getter := &fakeGetter{expenses: map[int64]core.Expense{7: expense}}
	sheet := &fakeSheet{}
	syncer := NewSheetSyncer(getter, sheet)

	err := syncer.HandleEvent(context.Background(), amqp.NewExpenseEvent(amqp.EventExpenseCreated, 7))
	if err != nil {
		t.Fatalf("HandleEvent: %v", err)
	}
	if len(sheet.appended) != 1 || sheet.appended[0].ID != 7 {
		t.Fatalf("expected expense 7 appended, got %+v", sheet.appended)
	}
}

func TestHandleEventCreatedMissingExpense(t *testing.T) {
	syncer := NewSheetSyncer(&fakeGetter{}, &fakeSheet{})

	err := syncer.HandleEvent(context.Background(), amqp.NewExpenseEvent(amqp.EventExpenseCreated, 99))
	if err == nil {
		t.Fatal("expected error for missing expense")
	}
}

func TestHandleEventDeleted(t *testing.T) {
	sheet := &fakeSheet{}
	syncer := NewSheetSyncer(&fakeGetter{}, sheet)

	err := syncer.HandleEvent(context.Background(), amqp.NewExpenseEvent(amqp.EventExpenseDeleted, 7))
	if err != nil {
		t.Fatalf("HandleEvent: %v", err)
	}
	if len(sheet.removed) != 1 || sheet.removed[0] != 7 {
		t.Fatalf("expected expense 7 removed, got %v", sheet.removed)
	}
}

func TestHandleEventSheetFailurePropagates(t *testing.T) {
	sheet := &fakeSheet{removeErr: errors.New("quota exceeded")}
	syncer := NewSheetSyncer(&fakeGetter{}, sheet)

	err := syncer.HandleEvent(context.Background(), amqp.NewExpenseEvent(amqp.EventExpenseDeleted, 7))
	if err == nil {
		t.Fatal("expected sheet error to propagate")
	}
}

func TestHandleEventUnknownKind(t *testing.T) {
	syncer := NewSheetSyncer(&fakeGetter{}, &fakeSheet{})

	event := &amqp.ExpenseEvent{EventID: "x", Kind: "expense.renamed", ExpenseID: 1}
	if err := syncer.HandleEvent(context.Background(), event); err == nil {
		t.Fatal("expected error for unknown event kind")
	}
}
