package core

import (
	"testing"
	"time"
)

func TestParseType(t *testing.T) {
	cases := []struct {
		in  string
		out Type
		ok  bool
	}{
		{"income", Income, true},
		{"Expense", Expense, true},
		{" EXPENSE ", Expense, true},
		{"transfer", "", false},
		{"", "", false},
	}
	for i, tc := range cases {
		got, err := ParseType(tc.in)
		if tc.ok && (err != nil || got != tc.out) {
			t.Fatalf("case %d expected %q, got %q (err=%v)", i, tc.out, got, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestTransactionValidate(t *testing.T) {
	good := Transaction{
		Date:        time.Date(2024, 1, 10, 10, 0, 0, 0, time.UTC),
		Type:        Expense,
		Account:     "Cash",
		Category:    "Food",
		Subcategory: "Snacks",
		Amount:      Money{Cents: 5000},
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []struct {
		mutate func(*Transaction)
		want   error
	}{
		{func(tx *Transaction) { tx.Date = time.Time{} }, ErrInvalidDate},
		{func(tx *Transaction) { tx.Type = "transfer" }, ErrInvalidType},
		{func(tx *Transaction) { tx.Amount = Money{} }, ErrInvalidAmount},
		{func(tx *Transaction) { tx.Account = " " }, ErrEmptyAccount},
		{func(tx *Transaction) { tx.Category = "" }, ErrEmptyCategory},
		{func(tx *Transaction) { tx.Subcategory = "" }, ErrEmptySubcategory},
	}
	for i, tc := range bads {
		tx := good
		tc.mutate(&tx)
		if err := tx.Validate(); err != tc.want {
			t.Fatalf("case %d expected %v, got %v", i, tc.want, err)
		}
	}
}

func TestDedupKey(t *testing.T) {
	date := time.Date(2024, 1, 10, 10, 0, 0, 0, time.UTC)
	a := Transaction{Date: date, Amount: Money{Cents: 5000}, Comment: "coffee"}
	b := Transaction{Date: date, Amount: Money{Cents: 5000}, Comment: "coffee", Account: "Bank"}
	if a.DedupKey() != b.DedupKey() {
		t.Fatalf("keys differ for identical (date, amount, comment)")
	}
	if got, want := a.DedupKey(), "2024-01-10T10:00:00Z|50.00|coffee"; got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
	c := a
	c.Comment = "tea"
	if a.DedupKey() == c.DedupKey() {
		t.Fatalf("keys equal despite different comment")
	}
}

func TestNormalizeCategory(t *testing.T) {
	if got := NormalizeCategory(CategoryModeAccept, Expense, "Gadgets"); got != "Gadgets" {
		t.Fatalf("accept mode changed category: %q", got)
	}
	if got := NormalizeCategory(CategoryModeOther, Expense, "Gadgets"); got != OtherCategory {
		t.Fatalf("other mode kept unknown category: %q", got)
	}
	if got := NormalizeCategory(CategoryModeOther, Expense, "Food"); got != "Food" {
		t.Fatalf("other mode rewrote known category: %q", got)
	}
	if got := NormalizeCategory(CategoryModeAccept, Income, ""); got != DefaultCategory {
		t.Fatalf("empty category not defaulted: %q", got)
	}
}
