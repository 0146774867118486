package services

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"finflow/internal/core"
	"finflow/internal/ingest"
	"finflow/internal/store/memory"
)

const importCSV = `Date,Type,Account,Category,Subcategory,Amount,Comment
10-01-2024 10:00,expense,Cash,Food,Snacks,4.50,coffee
11-01-2024 12:00,income,Bank,Work-Income,Salary,1000.00,salary
bad date,expense,Cash,Food,Snacks,4.50,broken
`

func newService(t *testing.T) *ImportService {
	t.Helper()
	return NewImportService(memory.New(), ingest.Options{CategoryMode: core.CategoryModeAccept})
}

func TestImportCountsAndStores(t *testing.T) {
	svc := newService(t)
	summary, rowErrs, err := svc.Import(context.Background(), strings.NewReader(importCSV))
	if err != nil {
		t.Fatalf("import failed: %v", err)
	}
	if summary.Accepted != 2 || summary.Rejected != 1 || summary.Duplicates != 0 {
		t.Fatalf("wrong summary: %+v", summary)
	}
	if len(rowErrs) != 1 || rowErrs[0].Line != 4 {
		t.Fatalf("wrong row errors: %+v", rowErrs)
	}

	all, _ := svc.store.ListAll(context.Background())
	if len(all) != 2 {
		t.Fatalf("expected 2 stored, got %d", len(all))
	}
}

func TestImportIsIdempotent(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	if _, _, err := svc.Import(ctx, strings.NewReader(importCSV)); err != nil {
		t.Fatalf("first import failed: %v", err)
	}
	summary, _, err := svc.Import(ctx, strings.NewReader(importCSV))
	if err != nil {
		t.Fatalf("second import failed: %v", err)
	}
	if summary.Accepted != 0 || summary.Duplicates != 2 {
		t.Fatalf("re-import not deduplicated: %+v", summary)
	}
}

func TestConcurrentImportsStayIdempotent(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			svc.Import(ctx, strings.NewReader(importCSV))
		}()
	}
	wg.Wait()

	all, _ := svc.store.ListAll(ctx)
	if len(all) != 2 {
		t.Fatalf("expected 2 records after concurrent imports, got %d", len(all))
	}
}

func TestImportFileErrorLeavesStoreUntouched(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	_, _, err := svc.Import(ctx, bytes.NewReader([]byte{0xff, 0xfe, 0xfd}))
	if err == nil {
		t.Fatalf("expected file error")
	}
	all, _ := svc.store.ListAll(ctx)
	if len(all) != 0 {
		t.Fatalf("store mutated on file error: %+v", all)
	}
}

func TestExportRoundTrip(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	svc.Import(ctx, strings.NewReader(importCSV))

	var buf bytes.Buffer
	n, err := svc.Export(ctx, &buf)
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 exported, got %d", n)
	}

	again := newService(t)
	summary, _, err := again.Import(ctx, &buf)
	if err != nil {
		t.Fatalf("re-import of export failed: %v", err)
	}
	if summary.Accepted != 2 || summary.Rejected != 0 {
		t.Fatalf("export not re-importable: %+v", summary)
	}
}

func TestAddAppliesDefaults(t *testing.T) {
	svc := newService(t)
	got, err := svc.Add(context.Background(), core.Transaction{
		Date:   mustDate(t, "2024-03-01T09:00:00Z"),
		Type:   core.Expense,
		Amount: core.Money{Cents: 999},
	})
	if err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if got.ID == 0 {
		t.Fatalf("no ID assigned")
	}
	if got.Account != core.DefaultAccount || got.Category != core.DefaultCategory || got.Subcategory != core.DefaultSubcategory {
		t.Fatalf("defaults not applied: %+v", got)
	}
}

func TestAddRejectsInvalid(t *testing.T) {
	svc := newService(t)
	_, err := svc.Add(context.Background(), core.Transaction{
		Date: mustDate(t, "2024-03-01T09:00:00Z"),
		Type: core.Expense,
	})
	if err == nil {
		t.Fatalf("expected validation error")
	}
}

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse(time.RFC3339, s)
	if err != nil {
		t.Fatalf("bad test date %q: %v", s, err)
	}
	return d
}
