// Package report derives summary and statistical views from a transaction
// snapshot. Every function is pure: no mutation, no store access, no error
// returns. An empty snapshot yields zero-valued results, so the functions
// are safe to call on an empty store during initial load.
package report

import (
	"fmt"
	"math"
	"sort"
	"time"

	"finflow/internal/core"
)

// Month is a calendar year-month bucket key.
type Month struct {
	Year  int
	Month time.Month
}

func MonthOf(t time.Time) Month {
	return Month{Year: t.UTC().Year(), Month: t.UTC().Month()}
}

func (m Month) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}

func (m Month) Before(o Month) bool {
	if m.Year != o.Year {
		return m.Year < o.Year
	}
	return m.Month < o.Month
}

// Totals are the headline KPI scalars.
type Totals struct {
	Income      core.Money
	Expense     core.Money
	Net         core.Money
	SavingsRate float64 // percent; exactly 0 when income is 0
}

// TotalsOf sums the snapshot by type. Net is income minus expense and the
// savings rate divides net by income, guarded against a zero denominator.
func TotalsOf(records []core.Transaction) Totals {
	var t Totals
	for _, tx := range records {
		switch tx.Type {
		case core.Income:
			t.Income.Cents += tx.Amount.Cents
		case core.Expense:
			t.Expense.Cents += tx.Amount.Cents
		}
	}
	t.Net.Cents = t.Income.Cents - t.Expense.Cents
	if t.Income.Cents > 0 {
		t.SavingsRate = float64(t.Net.Cents) / float64(t.Income.Cents) * 100
	}
	return t
}

// MonthFlow is one calendar month's income and expense totals.
type MonthFlow struct {
	Month   Month
	Income  core.Money
	Expense core.Money
}

// MonthlySummary buckets the snapshot by calendar month, chronologically
// sorted. Only months present in the data appear.
func MonthlySummary(records []core.Transaction) []MonthFlow {
	byMonth := map[Month]*MonthFlow{}
	for _, tx := range records {
		m := MonthOf(tx.Date)
		flow, ok := byMonth[m]
		if !ok {
			flow = &MonthFlow{Month: m}
			byMonth[m] = flow
		}
		switch tx.Type {
		case core.Income:
			flow.Income.Cents += tx.Amount.Cents
		case core.Expense:
			flow.Expense.Cents += tx.Amount.Cents
		}
	}
	out := make([]MonthFlow, 0, len(byMonth))
	for _, flow := range byMonth {
		out = append(out, *flow)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month.Before(out[j].Month) })
	return out
}

// AverageMonthlyIncome is the mean income in cents over months with strictly
// positive income. Zero-income months do not drag the average down.
func AverageMonthlyIncome(summary []MonthFlow) float64 {
	var sum, n int64
	for _, flow := range summary {
		if flow.Income.Cents > 0 {
			sum += flow.Income.Cents
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return float64(sum) / float64(n)
}

// AverageMonthlyExpense is the expense-side counterpart of
// AverageMonthlyIncome.
func AverageMonthlyExpense(summary []MonthFlow) float64 {
	var sum, n int64
	for _, flow := range summary {
		if flow.Expense.Cents > 0 {
			sum += flow.Expense.Cents
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return float64(sum) / float64(n)
}

// Budget compares average monthly spend against a user-supplied budget.
// Variance is budget minus average expense in cents; Utilization is the
// percentage of budget consumed, 0 when no budget is set.
type Budget struct {
	Variance    float64
	Utilization float64
}

func BudgetUsage(avgMonthlyExpense float64, budget core.Money) Budget {
	b := Budget{Variance: float64(budget.Cents) - avgMonthlyExpense}
	if budget.Cents > 0 {
		b.Utilization = avgMonthlyExpense / float64(budget.Cents) * 100
	}
	return b
}

// Volatility is the sample standard deviation (n-1 denominator) of monthly
// expense cents over months with spend. Fewer than 2 qualifying months
// yields exactly 0.
func Volatility(summary []MonthFlow) float64 {
	var values []float64
	for _, flow := range summary {
		if flow.Expense.Cents > 0 {
			values = append(values, float64(flow.Expense.Cents))
		}
	}
	if len(values) < 2 {
		return 0
	}
	var mean float64
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))
	var ss float64
	for _, v := range values {
		d := v - mean
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(values)-1))
}

// LargestTransaction returns the maximum single amount for the given type,
// 0 when no transaction of that type exists.
func LargestTransaction(records []core.Transaction, typ core.Type) core.Money {
	var max core.Money
	for _, tx := range records {
		if tx.Type == typ && tx.Amount.Cents > max.Cents {
			max = tx.Amount
		}
	}
	return max
}
