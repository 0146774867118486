package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"finflow/internal/core"
	"finflow/internal/ingest"
	applog "finflow/internal/log"
	"finflow/internal/store"
)

// ImportService ingests CSV files into a Store. Deduplication runs at
// write time under a service-level lock so concurrent imports of
// overlapping files stay idempotent.
type ImportService struct {
	store store.Store
	opts  ingest.Options

	mu sync.Mutex
}

func NewImportService(st store.Store, opts ingest.Options) *ImportService {
	return &ImportService{store: st, opts: opts}
}

// Import parses r and inserts the non-duplicate rows. A file-level
// error aborts before the store is touched; row-level problems are
// reported per line and never fail the whole import.
func (s *ImportService) Import(ctx context.Context, r io.Reader) (ingest.Summary, []ingest.RowError, error) {
	result, err := ingest.Parse(r, s.opts)
	if err != nil {
		return ingest.Summary{}, nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.store.ListAll(ctx)
	if err != nil {
		return ingest.Summary{}, nil, fmt.Errorf("listing existing transactions: %w", err)
	}

	accepted, duplicates := ingest.Deduplicate(result.Accepted, existing)
	if len(accepted) > 0 {
		if _, err := s.store.BulkInsert(ctx, accepted); err != nil {
			return ingest.Summary{}, nil, fmt.Errorf("saving imported transactions: %w", err)
		}
	}

	summary := ingest.Summary{
		Accepted:   len(accepted),
		Rejected:   len(result.Rejected),
		Duplicates: duplicates,
	}
	slog.InfoContext(ctx, "CSV import completed",
		applog.FieldAccepted, summary.Accepted,
		applog.FieldRejected, summary.Rejected,
		applog.FieldDuplicates, summary.Duplicates,
	)
	return summary, result.Rejected, nil
}

// Export writes every stored transaction to w as CSV.
func (s *ImportService) Export(ctx context.Context, w io.Writer) (int, error) {
	records, err := s.store.ListAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("listing transactions for export: %w", err)
	}
	if err := ingest.Export(w, records); err != nil {
		return 0, err
	}
	return len(records), nil
}

// Add normalizes and stores a manually entered transaction.
func (s *ImportService) Add(ctx context.Context, record core.Transaction) (core.Transaction, error) {
	record.Category = core.NormalizeCategory(s.opts.CategoryMode, record.Type, record.Category)
	if record.Account == "" {
		record.Account = core.DefaultAccount
	}
	if record.Subcategory == "" {
		record.Subcategory = core.DefaultSubcategory
	}
	if err := record.Validate(); err != nil {
		return core.Transaction{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	inserted, err := s.store.BulkInsert(ctx, []core.Transaction{record})
	if err != nil {
		return core.Transaction{}, err
	}
	return inserted[0], nil
}
