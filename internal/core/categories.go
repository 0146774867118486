package core

// Reference taxonomy for categories and subcategories. Categories are open
// free-text fields; this table only drives soft validation and the optional
// "other" coercion mode. Unknown values are never a validation failure.

const (
	DefaultAccount     = "Unknown"
	DefaultCategory    = "Uncategorized"
	DefaultSubcategory = "Unknown"
	OtherCategory      = "Other"
)

// CategoryMode selects how ingestion treats categories outside the
// reference taxonomy.
type CategoryMode string

const (
	// CategoryModeAccept keeps unknown categories as free text.
	CategoryModeAccept CategoryMode = "accept"
	// CategoryModeOther coerces unknown categories into the Other bucket.
	CategoryModeOther CategoryMode = "other"
)

var expenseCategories = map[string][]string{
	"Food":          {"Groceries", "Snacks", "Restraunt", "Water", "Mess-ext", "Sweets", "Dairy"},
	"Health":        {"Medical", "Fitness"},
	"Invest":        {"Stocks", "Tax"},
	"Misc":          {"Recharge", "Home", "Hotel"},
	"Miscellaneous": {"Unknown"},
	"Shopping":      {"Other", "Clothes", "Electronics", "Home", "Services", "Cloth"},
	"Travel":        {"Auto", "Fuel", "Train", "Bus", "Rental", "Flight", "Metro", "Parking"},
}

var incomeCategories = map[string][]string{
	"Invest-Income": {"Dividend", "Interest"},
	"Work-Income":   {"Freelance"},
	"Stipend":       {"Unknown"},
	"Pocket Money":  {"Unknown"},
	"Refund":        {"Unknown"},
}

// KnownCategory reports whether category belongs to the reference taxonomy
// for the given type.
func KnownCategory(t Type, category string) bool {
	switch t {
	case Income:
		_, ok := incomeCategories[category]
		return ok
	case Expense:
		_, ok := expenseCategories[category]
		return ok
	default:
		return false
	}
}

// NormalizeCategory applies the configured category mode to an already
// trimmed category label.
func NormalizeCategory(mode CategoryMode, t Type, category string) string {
	if category == "" {
		return DefaultCategory
	}
	if mode == CategoryModeOther && !KnownCategory(t, category) {
		return OtherCategory
	}
	return category
}

// Subcategories returns the reference subcategories for a category, nil when
// the category is outside the taxonomy.
func Subcategories(t Type, category string) []string {
	var subs []string
	switch t {
	case Income:
		subs = incomeCategories[category]
	case Expense:
		subs = expenseCategories[category]
	}
	if subs == nil {
		return nil
	}
	out := make([]string, len(subs))
	copy(out, subs)
	return out
}
