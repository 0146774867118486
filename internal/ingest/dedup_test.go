package ingest

import (
	"testing"
	"time"

	"finflow/internal/core"
)

func tx(day int, cents int64, comment string) core.Transaction {
	return core.Transaction{
		Date:        time.Date(2024, 1, day, 10, 0, 0, 0, time.UTC),
		Type:        core.Expense,
		Account:     "Cash",
		Category:    "Food",
		Subcategory: "Snacks",
		Amount:      core.Money{Cents: cents},
		Comment:     comment,
	}
}

func TestDeduplicateAgainstExisting(t *testing.T) {
	existing := []core.Transaction{tx(1, 100, "a")}
	candidates := []core.Transaction{tx(1, 100, "a"), tx(2, 100, "a")}

	accepted, dups := Deduplicate(candidates, existing)
	if dups != 1 || len(accepted) != 1 {
		t.Fatalf("expected 1 accepted / 1 duplicate, got %d/%d", len(accepted), dups)
	}
	if accepted[0].Date.Day() != 2 {
		t.Fatalf("wrong survivor: %+v", accepted[0])
	}
}

func TestDeduplicateWithinBatch(t *testing.T) {
	candidates := []core.Transaction{tx(1, 100, "a"), tx(1, 100, "a"), tx(1, 100, "a")}
	accepted, dups := Deduplicate(candidates, nil)
	if len(accepted) != 1 || dups != 2 {
		t.Fatalf("in-batch duplicates not suppressed: %d accepted, %d duplicates", len(accepted), dups)
	}
}

func TestDeduplicatePreservesOrder(t *testing.T) {
	candidates := []core.Transaction{tx(3, 300, "c"), tx(1, 100, "a"), tx(2, 200, "b")}
	accepted, dups := Deduplicate(candidates, nil)
	if dups != 0 || len(accepted) != 3 {
		t.Fatalf("unexpected result: %d accepted, %d duplicates", len(accepted), dups)
	}
	for i, want := range []int{3, 1, 2} {
		if accepted[i].Date.Day() != want {
			t.Fatalf("order not preserved at %d: %+v", i, accepted[i])
		}
	}
}

func TestDeduplicateReimportIdempotent(t *testing.T) {
	batch := []core.Transaction{tx(1, 100, "a"), tx(2, 200, "b")}

	first, _ := Deduplicate(batch, nil)
	existing := append([]core.Transaction(nil), first...)
	second, dups := Deduplicate(batch, existing)
	if len(second) != 0 || dups != len(batch) {
		t.Fatalf("re-import not idempotent: %d newly accepted", len(second))
	}
}
