package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type EventKind string

const (
	EventExpenseCreated EventKind = "expense.created"
	EventExpenseDeleted EventKind = "expense.deleted"
)

// ExpenseEvent is the lightweight message published after a mutation.
// It carries only identifiers, the worker fetches the full expense from
// the database when it needs one.
type ExpenseEvent struct {
	EventID   string    `json:"event_id"`
	Kind      EventKind `json:"kind"`
	ExpenseID int64     `json:"expense_id"`
	Timestamp time.Time `json:"timestamp"`
}

func NewExpenseEvent(kind EventKind, expenseID int64) *ExpenseEvent {
	return &ExpenseEvent{
		EventID:   uuid.NewString(),
		Kind:      kind,
		ExpenseID: expenseID,
		Timestamp: time.Now(),
	}
}

func (e *ExpenseEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

func ExpenseEventFromJSON(data []byte) (*ExpenseEvent, error) {
	var event ExpenseEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return nil, err
	}
	switch event.Kind {
	case EventExpenseCreated, EventExpenseDeleted:
	default:
		return nil, fmt.Errorf("unknown event kind %q", event.Kind)
	}
	return &event, nil
}
