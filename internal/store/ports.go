// Package store defines the persistence boundary that owns the authoritative
// transaction collection. Ingestion and aggregation only ever see snapshots
// borrowed through this contract.
package store

import (
	"context"
	"errors"

	"finflow/internal/core"
)

// ErrNotFound reports an update against an ID the store does not hold.
var ErrNotFound = errors.New("transaction not found")

// Op labels a store mutation for change notification.
type Op string

const (
	OpInsert Op = "insert"
	OpUpdate Op = "update"
	OpDelete Op = "delete"
	OpClear  Op = "clear"
)

// Event describes one committed mutation. Observers receive it after the
// store's own state has changed.
type Event struct {
	Op    Op    `json:"op"`
	Count int   `json:"count"`
	IDs   []int64 `json:"ids,omitempty"`
}

// Observer receives change events. Callbacks run synchronously on the
// mutating goroutine and must not call back into the store.
type Observer func(Event)

// Store is the persistence contract.
type Store interface {
	// ListAll returns a snapshot of every transaction, newest first.
	// Callers must treat the snapshot as read-only.
	ListAll(ctx context.Context) ([]core.Transaction, error)

	// BulkInsert appends records, assigning fresh IDs. The returned slice
	// carries the assigned IDs in input order.
	BulkInsert(ctx context.Context, records []core.Transaction) ([]core.Transaction, error)

	// Update replaces the record with the matching ID.
	Update(ctx context.Context, record core.Transaction) error

	// BulkDelete removes records by ID. Unknown IDs are ignored.
	BulkDelete(ctx context.Context, ids []int64) error

	// Clear removes every record.
	Clear(ctx context.Context) error

	// Subscribe registers a change observer.
	Subscribe(obs Observer)
}
