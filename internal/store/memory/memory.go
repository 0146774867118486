// Package memory is the in-memory store backend. It backs tests and the
// default configuration, where persistence across restarts is not needed.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"finflow/internal/core"
	"finflow/internal/store"
)

type Store struct {
	mu        sync.Mutex
	items     []core.Transaction
	nextID    int64
	observers []store.Observer
}

var _ store.Store = (*Store)(nil)

func New() *Store {
	return &Store{nextID: 1}
}

func (s *Store) ListAll(_ context.Context) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Transaction, len(s.items))
	copy(out, s.items)
	// Newest first, stable for records sharing an instant.
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out, nil
}

func (s *Store) BulkInsert(_ context.Context, records []core.Transaction) ([]core.Transaction, error) {
	if len(records) == 0 {
		return nil, nil
	}
	// Validate the whole batch up front so a bad record never leaves a
	// partially inserted batch behind.
	for i, tx := range records {
		if err := tx.Validate(); err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
	}

	s.mu.Lock()
	inserted := make([]core.Transaction, len(records))
	ids := make([]int64, len(records))
	for i, tx := range records {
		tx.ID = s.nextID
		s.nextID++
		s.items = append(s.items, tx)
		inserted[i] = tx
		ids[i] = tx.ID
	}
	s.mu.Unlock()

	s.notify(store.Event{Op: store.OpInsert, Count: len(inserted), IDs: ids})
	return inserted, nil
}

func (s *Store) Update(_ context.Context, record core.Transaction) error {
	if err := record.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	found := false
	for i := range s.items {
		if s.items[i].ID == record.ID {
			s.items[i] = record
			found = true
			break
		}
	}
	s.mu.Unlock()
	if !found {
		return fmt.Errorf("transaction %d: %w", record.ID, store.ErrNotFound)
	}
	s.notify(store.Event{Op: store.OpUpdate, Count: 1, IDs: []int64{record.ID}})
	return nil
}

func (s *Store) BulkDelete(_ context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	toDelete := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		toDelete[id] = struct{}{}
	}
	s.mu.Lock()
	kept := s.items[:0]
	removed := 0
	for _, tx := range s.items {
		if _, del := toDelete[tx.ID]; del {
			removed++
			continue
		}
		kept = append(kept, tx)
	}
	s.items = kept
	s.mu.Unlock()

	if removed > 0 {
		s.notify(store.Event{Op: store.OpDelete, Count: removed, IDs: ids})
	}
	return nil
}

func (s *Store) Clear(_ context.Context) error {
	s.mu.Lock()
	removed := len(s.items)
	s.items = nil
	// IDs are never reused, so the counter survives Clear.
	s.mu.Unlock()

	s.notify(store.Event{Op: store.OpClear, Count: removed})
	return nil
}

func (s *Store) Subscribe(obs store.Observer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, obs)
}

func (s *Store) notify(ev store.Event) {
	s.mu.Lock()
	observers := make([]store.Observer, len(s.observers))
	copy(observers, s.observers)
	s.mu.Unlock()
	for _, obs := range observers {
		obs(ev)
	}
}
