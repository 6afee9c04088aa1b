package backend

import (
	"spendsight/internal/ports"
	"spendsight/internal/services"
)

// Store is the full set of storage operations the application needs from a
// data backend.
type Store interface {
	ports.ExpenseWriter
	ports.ExpenseDeleter
	ports.ExpenseLister
	ports.AggregateReader
	ports.ExpenseGetter
}

// CleanupFunc releases backend resources on shutdown.
type CleanupFunc func() error

// Result bundles a ready-to-use store with its optional event publisher
// and cleanup hook. Publisher is nil when the backend has no AMQP wiring.
type Result struct {
	Store     Store
	Publisher services.EventPublisher
	Cleanup   CleanupFunc
}

// Type selects a storage backend implementation.
type Type string

const (
	Memory Type = "memory"
	SQLite Type = "sqlite"
)

func (t Type) String() string {
	return string(t)
}

func (t Type) IsValid() bool {
	switch t {
	case Memory, SQLite:
		return true
	default:
		return false
	}
}
