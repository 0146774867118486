package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Income  Type = "income"
	Expense Type = "expense"
)

type (
	// Type is the closed transaction kind enumeration. The sign of a
	// transaction is carried here, never by the amount.
	Type string

	Money struct {
		Cents int64
	}

	// Transaction is the sole persisted entity. ID is zero until the
	// store assigns one on insert.
	Transaction struct {
		ID          int64
		Date        time.Time
		Type        Type
		Account     string
		Category    string
		Subcategory string
		Amount      Money
		Comment     string
	}
)

var (
	ErrInvalidDate      = errors.New("invalid date")
	ErrInvalidType      = errors.New("invalid transaction type")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrEmptyAccount     = errors.New("empty account")
	ErrEmptyCategory    = errors.New("empty category")
	ErrEmptySubcategory = errors.New("empty subcategory")
)

// ParseType normalizes a raw type label (trimmed, case-insensitive).
func ParseType(s string) (Type, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case string(Income):
		return Income, nil
	case string(Expense):
		return Expense, nil
	default:
		return "", ErrInvalidType
	}
}

func (t Type) Validate() error {
	switch t {
	case Income, Expense:
		return nil
	default:
		return ErrInvalidType
	}
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (tx Transaction) Validate() error {
	if tx.Date.IsZero() {
		return ErrInvalidDate
	}
	if err := tx.Type.Validate(); err != nil {
		return err
	}
	if err := tx.Amount.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(tx.Account) == "" {
		return ErrEmptyAccount
	}
	if strings.TrimSpace(tx.Category) == "" {
		return ErrEmptyCategory
	}
	if strings.TrimSpace(tx.Subcategory) == "" {
		return ErrEmptySubcategory
	}
	return nil
}

// DedupKey is the (date, amount, comment) identity triplet used to detect
// repeat imports. Two distinct transactions sharing the triplet are
// indistinguishable; the later one loses.
func (tx Transaction) DedupKey() string {
	var b strings.Builder
	b.WriteString(tx.Date.UTC().Format(time.RFC3339))
	b.WriteByte('|')
	b.WriteString(FormatCents(tx.Amount.Cents))
	b.WriteByte('|')
	b.WriteString(tx.Comment)
	return b.String()
}
