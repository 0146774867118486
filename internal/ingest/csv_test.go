package ingest

import (
	"strings"
	"testing"
	"time"

	"finflow/internal/core"
)

func TestParsePositional(t *testing.T) {
	csvText := "header line ignored\n" +
		"10-01-2024 10:00,Income,Bank,Work-Income,Freelance,1000,January invoice\n" +
		"15-01-2024 18:30,Expense,Cash,Food,Snacks,50,dinner, with friends\n"
	res, err := Parse(strings.NewReader(csvText), Options{})
	if err != nil {
		t.Fatalf("unexpected file error: %v", err)
	}
	if len(res.Accepted) != 2 || len(res.Rejected) != 0 {
		t.Fatalf("expected 2 accepted, 0 rejected; got %d/%d", len(res.Accepted), len(res.Rejected))
	}

	first := res.Accepted[0]
	if first.Type != core.Income || first.Amount.Cents != 100000 {
		t.Fatalf("unexpected first row: %+v", first)
	}
	want := time.Date(2024, 1, 10, 10, 0, 0, 0, time.UTC)
	if !first.Date.Equal(want) {
		t.Fatalf("expected date %v, got %v", want, first.Date)
	}

	// trailing fields rejoin into the comment
	second := res.Accepted[1]
	if second.Comment != "dinner, with friends" {
		t.Fatalf("expected rejoined comment, got %q", second.Comment)
	}
}

func TestParseNamedHeader(t *testing.T) {
	// named layout, shuffled column order and mixed case
	csvText := "Amount,Date,Type,Comment,Category\n" +
		"250.50,10-03-2024 09:15,expense,\"quoted, comment\",Travel\n"
	res, err := Parse(strings.NewReader(csvText), Options{})
	if err != nil {
		t.Fatalf("unexpected file error: %v", err)
	}
	if len(res.Accepted) != 1 {
		t.Fatalf("expected 1 accepted, got %d (rejected %v)", len(res.Accepted), res.Rejected)
	}
	tx := res.Accepted[0]
	if tx.Amount.Cents != 25050 || tx.Category != "Travel" {
		t.Fatalf("unexpected row: %+v", tx)
	}
	if tx.Comment != "quoted, comment" {
		t.Fatalf("expected quoted comment preserved, got %q", tx.Comment)
	}
	// missing optional fields fall back to defaults
	if tx.Account != core.DefaultAccount || tx.Subcategory != core.DefaultSubcategory {
		t.Fatalf("defaults not applied: %+v", tx)
	}
}

func TestParseRowAccounting(t *testing.T) {
	csvText := "h\n" +
		"10-01-2024 10:00,Income,Bank,Stipend,Unknown,1000,\n" + // ok
		"\n" + // blank, silently skipped
		"31-02-2024 10:00,Expense,Cash,Food,Snacks,50,\n" + // Feb 31 rejected
		"10-01-2024 10:00,Transfer,Bank,Misc,Unknown,10,\n" + // bad type
		"10-01-2024 10:00,Expense,Bank,Misc,Unknown,ten,\n" + // bad amount
		"only,five,fields,here,now\n" + // too few columns
		"   \n" // whitespace only, silently skipped
	res, err := Parse(strings.NewReader(csvText), Options{})
	if err != nil {
		t.Fatalf("unexpected file error: %v", err)
	}
	// accepted + rejected must account for every non-empty data row
	if got := len(res.Accepted) + len(res.Rejected); got != 5 {
		t.Fatalf("expected 5 accounted rows, got %d", got)
	}
	if len(res.Accepted) != 1 || len(res.Rejected) != 4 {
		t.Fatalf("expected 1 accepted / 4 rejected, got %d/%d", len(res.Accepted), len(res.Rejected))
	}
	// line numbers are 1-based with the header as line 1
	wantLines := []int{4, 5, 6, 7}
	for i, re := range res.Rejected {
		if re.Line != wantLines[i] {
			t.Fatalf("rejected[%d] expected line %d, got %d (%s)", i, wantLines[i], re.Line, re.Reason)
		}
	}
}

func TestParseNamedLineNumbers(t *testing.T) {
	// The named layout goes through a csv.Reader, which skips blank lines
	// and lets a quoted field span several physical lines. Reported line
	// numbers must still match the source file.
	csvText := "Date,Amount,Comment\n" +
		"10-01-2024 10:00,10,\"two\nline note\"\n" + // lines 2-3
		"\n" + // line 4, blank
		"nonsense,5,\n" // line 5, bad date
	res, err := Parse(strings.NewReader(csvText), Options{})
	if err != nil {
		t.Fatalf("unexpected file error: %v", err)
	}
	if len(res.Accepted) != 1 || len(res.Rejected) != 1 {
		t.Fatalf("expected 1 accepted / 1 rejected, got %d/%d", len(res.Accepted), len(res.Rejected))
	}
	if res.Accepted[0].Comment != "two\nline note" {
		t.Fatalf("multi-line comment mangled: %q", res.Accepted[0].Comment)
	}
	if res.Rejected[0].Line != 5 {
		t.Fatalf("expected rejection at line 5, got %d (%s)", res.Rejected[0].Line, res.Rejected[0].Reason)
	}
}

func TestParseByteOrderMark(t *testing.T) {
	csvText := "\ufeffDate,Amount,Comment\n10-01-2024 10:00,10,bom test\n"
	res, err := Parse(strings.NewReader(csvText), Options{})
	if err != nil {
		t.Fatalf("unexpected file error: %v", err)
	}
	// a leading BOM must not hide the named header
	if len(res.Accepted) != 1 || len(res.Rejected) != 0 {
		t.Fatalf("expected 1 accepted / 0 rejected, got %d/%d", len(res.Accepted), len(res.Rejected))
	}
	if res.Accepted[0].Amount.Cents != 1000 {
		t.Fatalf("unexpected amount: %+v", res.Accepted[0].Amount)
	}
}

func TestParseFebruary31Rejected(t *testing.T) {
	csvText := "h\n31-02-2024 10:00,Expense,Cash,Food,Snacks,50,\n"
	res, err := Parse(strings.NewReader(csvText), Options{})
	if err != nil {
		t.Fatalf("unexpected file error: %v", err)
	}
	if len(res.Accepted) != 0 || len(res.Rejected) != 1 {
		t.Fatalf("Feb 31 row not rejected: %+v", res)
	}
	if !strings.Contains(res.Rejected[0].Reason, "date") {
		t.Fatalf("expected a date rejection, got %q", res.Rejected[0].Reason)
	}
}

func TestParseNormalization(t *testing.T) {
	csvText := "h\n10-01-2024 10:00, EXPENSE , , , ,50,  спасибо  \n"
	res, err := Parse(strings.NewReader(csvText), Options{})
	if err != nil {
		t.Fatalf("unexpected file error: %v", err)
	}
	if len(res.Accepted) != 1 {
		t.Fatalf("expected 1 accepted, got %+v", res.Rejected)
	}
	tx := res.Accepted[0]
	if tx.Type != core.Expense {
		t.Fatalf("type not lower-cased: %q", tx.Type)
	}
	if tx.Account != core.DefaultAccount || tx.Category != core.DefaultCategory || tx.Subcategory != core.DefaultSubcategory {
		t.Fatalf("defaults not applied: %+v", tx)
	}
	if tx.Comment != "спасибо" {
		t.Fatalf("comment not trimmed: %q", tx.Comment)
	}
}

func TestParseCategoryOtherMode(t *testing.T) {
	csvText := "h\n10-01-2024 10:00,expense,Cash,Gadgets,Unknown,50,\n"
	res, err := Parse(strings.NewReader(csvText), Options{CategoryMode: core.CategoryModeOther})
	if err != nil {
		t.Fatalf("unexpected file error: %v", err)
	}
	if len(res.Accepted) != 1 || res.Accepted[0].Category != core.OtherCategory {
		t.Fatalf("unknown category not coerced: %+v", res.Accepted)
	}
}

func TestParseInvalidUTF8(t *testing.T) {
	_, err := Parse(strings.NewReader("h\n\xff\xfe\xfd\n"), Options{})
	if err == nil {
		t.Fatalf("expected file error for invalid UTF-8")
	}
	if _, ok := err.(*FileError); !ok {
		t.Fatalf("expected *FileError, got %T", err)
	}
}

func TestParseEmptyInput(t *testing.T) {
	res, err := Parse(strings.NewReader(""), Options{})
	if err != nil {
		t.Fatalf("empty input should not be a file error: %v", err)
	}
	if len(res.Accepted) != 0 || len(res.Rejected) != 0 {
		t.Fatalf("expected empty result, got %+v", res)
	}
}

func TestParseDateRFC3339(t *testing.T) {
	d, err := ParseDate("2024-01-10T10:00:00Z")
	if err != nil {
		t.Fatalf("RFC3339 not accepted: %v", err)
	}
	if !d.Equal(time.Date(2024, 1, 10, 10, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected instant: %v", d)
	}
	if _, err := ParseDate("10-13-2024 10:00"); err == nil {
		t.Fatalf("month 13 accepted")
	}
	if _, err := ParseDate("10-01-2024 25:00"); err == nil {
		t.Fatalf("hour 25 accepted")
	}
}
