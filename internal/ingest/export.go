package ingest

import (
	"encoding/csv"
	"fmt"
	"io"

	"finflow/internal/core"
)

// exportHeader is the fixed export column order. IDs are store-internal and
// never exported.
var exportHeader = []string{"Date", "Type", "Account", "Category", "Subcategory", "Amount", "Comment"}

// Export writes records as RFC4180 CSV: embedded quotes doubled, fields with
// commas or quotes wrapped. Dates render in the canonical day-first layout,
// so Parse(Export(records)) reproduces the records modulo ID.
func Export(w io.Writer, records []core.Transaction) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(exportHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, tx := range records {
		row := []string{
			tx.Date.UTC().Format(DateLayout),
			string(tx.Type),
			tx.Account,
			tx.Category,
			tx.Subcategory,
			core.FormatCents(tx.Amount.Cents),
			tx.Comment,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write record: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush: %w", err)
	}
	return nil
}
