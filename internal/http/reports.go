package http

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"finflow/internal/core"
	"finflow/internal/report"
)

func (s *Server) snapshot(w http.ResponseWriter, r *http.Request) ([]core.Transaction, bool) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "GET")
		return nil, false
	}
	records, err := s.store.ListAll(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "List transactions failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list transactions")
		return nil, false
	}
	return records, true
}

func (s *Server) handleSummaryReport(w http.ResponseWriter, r *http.Request) {
	records, ok := s.snapshot(w, r)
	if !ok {
		return
	}

	budget := s.budget
	if v := strings.TrimSpace(r.URL.Query().Get("budget_cents")); v != "" {
		if cents, err := strconv.ParseInt(v, 10, 64); err == nil && cents >= 0 {
			budget = core.Money{Cents: cents}
		}
	}

	totals := report.TotalsOf(records)
	summary := report.MonthlySummary(records)
	avgExpense := report.AverageMonthlyExpense(summary)
	usage := report.BudgetUsage(avgExpense, budget)

	resp := struct {
		Income            string  `json:"income"`
		Expense           string  `json:"expense"`
		Net               string  `json:"net"`
		SavingsRate       float64 `json:"savings_rate"`
		AvgMonthlyIncome  float64 `json:"avg_monthly_income_cents"`
		AvgMonthlyExpense float64 `json:"avg_monthly_expense_cents"`
		BudgetVariance    float64 `json:"budget_variance_cents"`
		BudgetUtilization float64 `json:"budget_utilization"`
		Volatility        float64 `json:"volatility_cents"`
		LargestIncome     string  `json:"largest_income"`
		LargestExpense    string  `json:"largest_expense"`
	}{
		Income:            core.FormatCents(totals.Income.Cents),
		Expense:           core.FormatCents(totals.Expense.Cents),
		Net:               core.FormatCents(totals.Net.Cents),
		SavingsRate:       totals.SavingsRate,
		AvgMonthlyIncome:  report.AverageMonthlyIncome(summary),
		AvgMonthlyExpense: avgExpense,
		BudgetVariance:    usage.Variance,
		BudgetUtilization: usage.Utilization,
		Volatility:        report.Volatility(summary),
		LargestIncome:     core.FormatCents(report.LargestTransaction(records, core.Income).Cents),
		LargestExpense:    core.FormatCents(report.LargestTransaction(records, core.Expense).Cents),
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleMonthlyReport(w http.ResponseWriter, r *http.Request) {
	records, ok := s.snapshot(w, r)
	if !ok {
		return
	}

	type monthJSON struct {
		Month   string `json:"month"`
		Income  string `json:"income"`
		Expense string `json:"expense"`
		Net     string `json:"net"`
	}
	summary := report.MonthlySummary(records)
	out := make([]monthJSON, 0, len(summary))
	for _, flow := range summary {
		out = append(out, monthJSON{
			Month:   flow.Month.String(),
			Income:  core.FormatCents(flow.Income.Cents),
			Expense: core.FormatCents(flow.Expense.Cents),
			Net:     core.FormatCents(flow.Income.Cents - flow.Expense.Cents),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCategoryReport(w http.ResponseWriter, r *http.Request) {
	records, ok := s.snapshot(w, r)
	if !ok {
		return
	}

	type categoryJSON struct {
		Category string `json:"category"`
		Amount   string `json:"amount"`
	}
	breakdown := report.CategoryBreakdown(records)
	out := make([]categoryJSON, 0, len(breakdown))
	for _, c := range breakdown {
		out = append(out, categoryJSON{Category: c.Category, Amount: core.FormatCents(c.Amount.Cents)})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleAccountReport(w http.ResponseWriter, r *http.Request) {
	records, ok := s.snapshot(w, r)
	if !ok {
		return
	}

	var usage []report.AccountUsage
	switch r.URL.Query().Get("by") {
	case "", "count":
		usage = report.AccountUsageByCount(records)
	case "amount":
		usage = report.AccountUsageByAmount(records)
	default:
		writeError(w, http.StatusBadRequest, "by must be 'count' or 'amount'")
		return
	}

	type accountJSON struct {
		Account string `json:"account"`
		Count   int    `json:"count"`
		Amount  string `json:"amount"`
	}
	out := make([]accountJSON, 0, len(usage))
	for _, u := range usage {
		out = append(out, accountJSON{Account: u.Account, Count: u.Count, Amount: core.FormatCents(u.Amount.Cents)})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleWeekdayReport(w http.ResponseWriter, r *http.Request) {
	records, ok := s.snapshot(w, r)
	if !ok {
		return
	}

	type dayJSON struct {
		Day    string `json:"day"`
		Amount string `json:"amount"`
	}
	days := report.DayOfWeekSpend(records)
	out := make([]dayJSON, 0, len(days))
	for _, d := range days {
		out = append(out, dayJSON{Day: d.Day.String(), Amount: core.FormatCents(d.Amount.Cents)})
	}

	split := report.WeekdayWeekend(records)
	resp := struct {
		Days    []dayJSON `json:"days"`
		Weekday string    `json:"weekday_total"`
		Weekend string    `json:"weekend_total"`
	}{
		Days:    out,
		Weekday: core.FormatCents(split.Weekday.Cents),
		Weekend: core.FormatCents(split.Weekend.Cents),
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleTrendReport(w http.ResponseWriter, r *http.Request) {
	records, ok := s.snapshot(w, r)
	if !ok {
		return
	}

	type pointJSON struct {
		Month      string `json:"month"`
		Net        string `json:"net"`
		Cumulative string `json:"cumulative"`
	}
	points := report.CumulativeCashflow(report.NetCashflowTrend(records))
	out := make([]pointJSON, 0, len(points))
	for _, p := range points {
		out = append(out, pointJSON{
			Month:      p.Month.String(),
			Net:        core.FormatCents(p.Net.Cents),
			Cumulative: core.FormatCents(p.Cumulative.Cents),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCategoryTrendReport(w http.ResponseWriter, r *http.Request) {
	records, ok := s.snapshot(w, r)
	if !ok {
		return
	}

	top := 3
	if v := strings.TrimSpace(r.URL.Query().Get("top")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "top must be a positive integer")
			return
		}
		top = n
	}

	trend := report.TopCategoryTrend(records, top)

	type pointJSON struct {
		Month string            `json:"month"`
		Spend map[string]string `json:"spend"`
	}
	resp := struct {
		Categories []string    `json:"categories"`
		Points     []pointJSON `json:"points"`
	}{Categories: trend.Categories}
	for _, p := range trend.Points {
		spend := make(map[string]string, len(p.Spend))
		for cat, amount := range p.Spend {
			spend[cat] = core.FormatCents(amount.Cents)
		}
		resp.Points = append(resp.Points, pointJSON{Month: p.Month.String(), Spend: spend})
	}
	writeJSON(w, http.StatusOK, resp)
}
