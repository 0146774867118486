// Package ingest converts raw CSV exports into validated transactions and
// filters repeat imports. Row-level problems are reported and skipped; only
// a whole-file problem (unreadable or not UTF-8) fails an upload attempt.
package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"finflow/internal/core"
	applog "finflow/internal/log"
)

// DateLayout is the canonical day-first import/export date format.
// The source exports were ambiguous between day-first and month-first;
// day-first is the documented convention here. RFC3339 is also accepted
// on import so exported data round-trips through the store's form.
const DateLayout = "02-01-2006 15:04"

// positional column order for the header-less layout
const minColumns = 6

// RowError describes one malformed CSV line. Non-fatal: the row is skipped
// and ingestion continues.
type RowError struct {
	Line   int // 1-based source line number, header counts as line 1
	Reason string
}

func (e RowError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Reason)
}

// FileError means the upload attempt as a whole failed before any row was
// produced. Existing store contents are unaffected.
type FileError struct {
	Reason string
	Err    error
}

func (e *FileError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("csv file: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("csv file: %s", e.Reason)
}

func (e *FileError) Unwrap() error { return e.Err }

// Options tunes row normalization.
type Options struct {
	// CategoryMode controls what happens to categories outside the
	// reference taxonomy. Zero value accepts them as free text.
	CategoryMode core.CategoryMode
}

// Result is the outcome of one parse call: one entry per non-empty data row,
// either an accepted transaction (ID unset) or a row error.
type Result struct {
	Accepted []core.Transaction
	Rejected []RowError
}

// Summary carries the user-facing counts for one ingestion attempt.
type Summary struct {
	Accepted   int
	Rejected   int
	Duplicates int
}

func (r Result) Summary() Summary {
	return Summary{Accepted: len(r.Accepted), Rejected: len(r.Rejected)}
}

// Parse reads a whole CSV upload. The first row is always discarded as a
// header. When the header names recognizable columns the named layout is
// used; otherwise the fixed positional layout applies, with fields beyond
// the sixth rejoined into the comment to tolerate unescaped commas.
func Parse(r io.Reader, opts Options) (Result, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Result{}, &FileError{Reason: "read", Err: err}
	}
	text := strings.TrimPrefix(string(data), "\ufeff")
	if !utf8.ValidString(text) {
		return Result{}, &FileError{Reason: "not valid UTF-8"}
	}
	text = strings.ReplaceAll(text, "\r\n", "\n")

	lines := strings.Split(strings.TrimSpace(text), "\n")
	if len(lines) == 0 || (len(lines) == 1 && strings.TrimSpace(lines[0]) == "") {
		return Result{}, nil
	}
	header, rows := lines[0], lines[1:]

	var res Result
	if cols, ok := namedColumns(header); ok {
		parseNamed(rows, cols, opts, &res)
	} else {
		parsePositional(rows, opts, &res)
	}
	return res, nil
}

// namedColumns maps recognized header names to their indices. A header is
// only treated as named when both date and amount columns are identifiable;
// anything else falls back to the positional layout.
func namedColumns(header string) (map[string]int, bool) {
	cols := map[string]int{}
	for i, f := range strings.Split(header, ",") {
		name := strings.ToLower(strings.Trim(strings.TrimSpace(f), `"`))
		switch name {
		case "date", "type", "account", "category", "subcategory", "amount", "comment":
			if _, dup := cols[name]; !dup {
				cols[name] = i
			}
		}
	}
	_, hasDate := cols["date"]
	_, hasAmount := cols["amount"]
	return cols, hasDate && hasAmount
}

func parseNamed(rows []string, cols map[string]int, opts Options, res *Result) {
	cr := csv.NewReader(strings.NewReader(strings.Join(rows, "\n")))
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	for {
		record, err := cr.Read()
		if err == io.EOF {
			return
		}
		if err != nil {
			reject(res, sourceLineOf(err), "malformed record: "+err.Error())
			continue
		}
		// The reader skips blank lines and lets quoted fields span lines,
		// so the record index is not the source line. FieldPos reports the
		// physical line the record started on; +1 accounts for the header.
		line, _ := cr.FieldPos(0)
		line++
		if blankRecord(record) {
			continue
		}
		get := func(name string) string {
			idx, ok := cols[name]
			if !ok || idx >= len(record) {
				return ""
			}
			return record[idx]
		}
		tx, rerr := buildRow(opts, rawRow{
			date:        get("date"),
			typ:         get("type"),
			account:     get("account"),
			category:    get("category"),
			subcategory: get("subcategory"),
			amount:      get("amount"),
			comment:     get("comment"),
		})
		if rerr != nil {
			reject(res, line, rerr.Error())
			continue
		}
		res.Accepted = append(res.Accepted, tx)
	}
}

func parsePositional(rows []string, opts Options, res *Result) {
	for i, row := range rows {
		line := i + 2
		if strings.TrimSpace(row) == "" {
			continue // whitespace-only lines are skipped silently
		}
		fields := strings.Split(row, ",")
		if len(fields) < minColumns {
			reject(res, line, fmt.Sprintf("expected at least %d columns, got %d", minColumns, len(fields)))
			continue
		}
		// Trailing fields belong to the comment: free-text comments with
		// unescaped commas are rejoined rather than rejected.
		comment := strings.Trim(strings.TrimSpace(strings.Join(fields[6:], ",")), `"`)
		tx, rerr := buildRow(opts, rawRow{
			date:        fields[0],
			typ:         fields[1],
			account:     fields[2],
			category:    fields[3],
			subcategory: fields[4],
			amount:      fields[5],
			comment:     comment,
		})
		if rerr != nil {
			reject(res, line, rerr.Error())
			continue
		}
		res.Accepted = append(res.Accepted, tx)
	}
}

type rawRow struct {
	date, typ, account, category, subcategory, amount, comment string
}

// buildRow validates and normalizes one candidate row. Any failure drops
// the row, never the file.
func buildRow(opts Options, raw rawRow) (core.Transaction, error) {
	date, err := ParseDate(raw.date)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("invalid date %q", strings.TrimSpace(raw.date))
	}
	typ, err := core.ParseType(raw.typ)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("invalid type %q", strings.TrimSpace(raw.typ))
	}
	cents, err := core.ParseDecimalToCents(raw.amount)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("invalid amount %q", strings.TrimSpace(raw.amount))
	}

	account := strings.TrimSpace(raw.account)
	if account == "" {
		account = core.DefaultAccount
	}
	category := core.NormalizeCategory(opts.CategoryMode, typ, strings.TrimSpace(raw.category))
	subcategory := strings.TrimSpace(raw.subcategory)
	if subcategory == "" {
		subcategory = core.DefaultSubcategory
	}

	return core.Transaction{
		Date:        date,
		Type:        typ,
		Account:     account,
		Category:    category,
		Subcategory: subcategory,
		Amount:      core.Money{Cents: cents},
		Comment:     strings.TrimSpace(raw.comment),
	}, nil
}

// ParseDate accepts the canonical day-first layout or RFC3339 and returns
// the instant in UTC. Component-wise out-of-range values (month 13, Feb 31,
// hour 25) fail parsing; nothing is clamped.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, core.ErrInvalidDate
	}
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	return time.Time{}, core.ErrInvalidDate
}

// sourceLineOf maps a reader error to the physical line its record started
// on; +1 because the header line never reaches the reader.
func sourceLineOf(err error) int {
	var parseErr *csv.ParseError
	if errors.As(err, &parseErr) {
		return parseErr.StartLine + 1
	}
	return 1
}

func blankRecord(record []string) bool {
	for _, f := range record {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

func reject(res *Result, line int, reason string) {
	slog.Warn("Skipping invalid CSV row", applog.FieldLine, line, applog.FieldReason, reason)
	res.Rejected = append(res.Rejected, RowError{Line: line, Reason: reason})
}
