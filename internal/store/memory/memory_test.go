package memory

import (
	"context"
	"testing"
	"time"

	"finflow/internal/core"
	"finflow/internal/store"
)

func sample(day int, cents int64) core.Transaction {
	return core.Transaction{
		Date:        time.Date(2024, 1, day, 10, 0, 0, 0, time.UTC),
		Type:        core.Expense,
		Account:     "Cash",
		Category:    "Food",
		Subcategory: "Snacks",
		Amount:      core.Money{Cents: cents},
	}
}

func TestBulkInsertAssignsIDs(t *testing.T) {
	s := New()
	ctx := context.Background()

	inserted, err := s.BulkInsert(ctx, []core.Transaction{sample(1, 100), sample(2, 200)})
	if err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	if inserted[0].ID == 0 || inserted[1].ID == 0 || inserted[0].ID == inserted[1].ID {
		t.Fatalf("bad IDs: %+v", inserted)
	}

	all, err := s.ListAll(ctx)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 records, got %d", len(all))
	}
	// newest first
	if !all[0].Date.After(all[1].Date) {
		t.Fatalf("snapshot not newest-first: %v then %v", all[0].Date, all[1].Date)
	}
}

func TestBulkInsertRejectsInvalid(t *testing.T) {
	s := New()
	bad := sample(1, 0) // zero amount
	if _, err := s.BulkInsert(context.Background(), []core.Transaction{bad}); err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestBulkInsertAllOrNothing(t *testing.T) {
	s := New()
	ctx := context.Background()
	var events []store.Event
	s.Subscribe(func(ev store.Event) { events = append(events, ev) })

	// An invalid record anywhere in the batch must commit nothing,
	// matching the transactional SQLite backend.
	batch := []core.Transaction{sample(1, 100), sample(2, 0), sample(3, 300)}
	if _, err := s.BulkInsert(ctx, batch); err == nil {
		t.Fatalf("expected validation error")
	}
	all, err := s.ListAll(ctx)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(all) != 0 {
		t.Fatalf("expected empty store after failed batch, got %d records", len(all))
	}
	if len(events) != 0 {
		t.Fatalf("expected no events after failed batch, got %+v", events)
	}
}

func TestUpdateAndDelete(t *testing.T) {
	s := New()
	ctx := context.Background()
	inserted, _ := s.BulkInsert(ctx, []core.Transaction{sample(1, 100), sample(2, 200)})

	mod := inserted[0]
	mod.Comment = "edited"
	if err := s.Update(ctx, mod); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	missing := mod
	missing.ID = 9999
	if err := s.Update(ctx, missing); err == nil {
		t.Fatalf("expected error for unknown ID")
	}

	if err := s.BulkDelete(ctx, []int64{inserted[1].ID, 424242}); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	all, _ := s.ListAll(ctx)
	if len(all) != 1 || all[0].Comment != "edited" {
		t.Fatalf("unexpected state after delete: %+v", all)
	}
}

func TestIDsNotReusedAfterClear(t *testing.T) {
	s := New()
	ctx := context.Background()
	first, _ := s.BulkInsert(ctx, []core.Transaction{sample(1, 100)})
	if err := s.Clear(ctx); err != nil {
		t.Fatalf("clear failed: %v", err)
	}
	second, _ := s.BulkInsert(ctx, []core.Transaction{sample(2, 200)})
	if second[0].ID <= first[0].ID {
		t.Fatalf("ID reused after clear: %d then %d", first[0].ID, second[0].ID)
	}
}

func TestObserverNotified(t *testing.T) {
	s := New()
	ctx := context.Background()
	var events []store.Event
	s.Subscribe(func(ev store.Event) { events = append(events, ev) })

	s.BulkInsert(ctx, []core.Transaction{sample(1, 100)})
	s.Clear(ctx)

	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d: %+v", len(events), events)
	}
	if events[0].Op != store.OpInsert || events[0].Count != 1 {
		t.Fatalf("wrong insert event: %+v", events[0])
	}
	if events[1].Op != store.OpClear {
		t.Fatalf("wrong clear event: %+v", events[1])
	}
}
