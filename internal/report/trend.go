package report

import (
	"sort"
	"time"

	"finflow/internal/core"
)

// CategoryAmount is one slice of the category breakdown.
type CategoryAmount struct {
	Category string
	Amount   core.Money
}

// CategoryBreakdown sums expense records per category, sorted descending by
// amount. Ties keep first-encountered order (stable sort).
func CategoryBreakdown(records []core.Transaction) []CategoryAmount {
	totals := map[string]int64{}
	var order []string
	for _, tx := range records {
		if tx.Type != core.Expense {
			continue
		}
		if _, seen := totals[tx.Category]; !seen {
			order = append(order, tx.Category)
		}
		totals[tx.Category] += tx.Amount.Cents
	}
	out := make([]CategoryAmount, 0, len(order))
	for _, cat := range order {
		out = append(out, CategoryAmount{Category: cat, Amount: core.Money{Cents: totals[cat]}})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Amount.Cents > out[j].Amount.Cents })
	return out
}

// AccountUsage aggregates all records per account, either by transaction
// count or by summed amount; the caller selects the variant.
type AccountUsage struct {
	Account string
	Count   int
	Amount  core.Money
}

func AccountUsageByCount(records []core.Transaction) []AccountUsage {
	return accountUsage(records, func(i, j AccountUsage) bool { return i.Count > j.Count })
}

func AccountUsageByAmount(records []core.Transaction) []AccountUsage {
	return accountUsage(records, func(i, j AccountUsage) bool { return i.Amount.Cents > j.Amount.Cents })
}

func accountUsage(records []core.Transaction, less func(i, j AccountUsage) bool) []AccountUsage {
	idx := map[string]int{}
	var out []AccountUsage
	for _, tx := range records {
		i, seen := idx[tx.Account]
		if !seen {
			i = len(out)
			idx[tx.Account] = i
			out = append(out, AccountUsage{Account: tx.Account})
		}
		out[i].Count++
		out[i].Amount.Cents += tx.Amount.Cents
	}
	sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}

// DaySpend is one day-of-week expense bucket.
type DaySpend struct {
	Day    time.Weekday
	Amount core.Money
}

// DayOfWeekSpend buckets expense records into seven Monday-first slots.
// Go's Weekday is Sunday-first, so the index is remapped explicitly.
func DayOfWeekSpend(records []core.Transaction) [7]DaySpend {
	var out [7]DaySpend
	for i := range out {
		out[i].Day = time.Weekday((i + 1) % 7) // Monday..Saturday, Sunday
	}
	for _, tx := range records {
		if tx.Type != core.Expense {
			continue
		}
		idx := (int(tx.Date.UTC().Weekday()) + 6) % 7 // Sunday-first -> Monday-first
		out[idx].Amount.Cents += tx.Amount.Cents
	}
	return out
}

// WeekSplit is the weekday versus weekend expense comparison.
// Saturday and Sunday count as weekend.
type WeekSplit struct {
	Weekday core.Money
	Weekend core.Money
}

func WeekdayWeekend(records []core.Transaction) WeekSplit {
	var split WeekSplit
	for _, tx := range records {
		if tx.Type != core.Expense {
			continue
		}
		switch tx.Date.UTC().Weekday() {
		case time.Saturday, time.Sunday:
			split.Weekend.Cents += tx.Amount.Cents
		default:
			split.Weekday.Cents += tx.Amount.Cents
		}
	}
	return split
}

// NetPoint is one month's net cashflow.
type NetPoint struct {
	Month Month
	Net   core.Money
}

// NetCashflowTrend emits one point per calendar month present in the data,
// chronologically sorted.
func NetCashflowTrend(records []core.Transaction) []NetPoint {
	summary := MonthlySummary(records)
	out := make([]NetPoint, len(summary))
	for i, flow := range summary {
		out[i] = NetPoint{Month: flow.Month, Net: core.Money{Cents: flow.Income.Cents - flow.Expense.Cents}}
	}
	return out
}

// CumulativePoint extends a net point with the running sum up to and
// including its month.
type CumulativePoint struct {
	Month      Month
	Net        core.Money
	Cumulative core.Money
}

// CumulativeCashflow folds the trend left to right; the input order is the
// output order.
func CumulativeCashflow(trend []NetPoint) []CumulativePoint {
	out := make([]CumulativePoint, len(trend))
	var running int64
	for i, p := range trend {
		running += p.Net.Cents
		out[i] = CumulativePoint{Month: p.Month, Net: p.Net, Cumulative: core.Money{Cents: running}}
	}
	return out
}

// CategoryTrend is the per-month spend of the top-N expense categories.
// Months where a top category has no spend carry an explicit zero.
type CategoryTrend struct {
	Categories []string
	Points     []CategoryTrendPoint
}

type CategoryTrendPoint struct {
	Month Month
	Spend map[string]core.Money
}

// TopCategoryTrend picks the n biggest expense categories by total spend
// (stable on ties) and charts their monthly totals.
func TopCategoryTrend(records []core.Transaction, n int) CategoryTrend {
	breakdown := CategoryBreakdown(records)
	if n > len(breakdown) {
		n = len(breakdown)
	}
	if n <= 0 {
		return CategoryTrend{}
	}
	top := make([]string, n)
	topSet := make(map[string]bool, n)
	for i := 0; i < n; i++ {
		top[i] = breakdown[i].Category
		topSet[breakdown[i].Category] = true
	}

	byMonth := map[Month]map[string]int64{}
	for _, tx := range records {
		if tx.Type != core.Expense || !topSet[tx.Category] {
			continue
		}
		m := MonthOf(tx.Date)
		if byMonth[m] == nil {
			byMonth[m] = map[string]int64{}
		}
		byMonth[m][tx.Category] += tx.Amount.Cents
	}

	months := make([]Month, 0, len(byMonth))
	for m := range byMonth {
		months = append(months, m)
	}
	sort.Slice(months, func(i, j int) bool { return months[i].Before(months[j]) })

	points := make([]CategoryTrendPoint, len(months))
	for i, m := range months {
		spend := make(map[string]core.Money, n)
		for _, cat := range top {
			spend[cat] = core.Money{Cents: byMonth[m][cat]} // explicit zero when absent
		}
		points[i] = CategoryTrendPoint{Month: m, Spend: spend}
	}
	return CategoryTrend{Categories: top, Points: points}
}
