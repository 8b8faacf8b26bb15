// Package aggregate derives monthly statistics, category totals and trend
// windows from an unordered collection of transactions.
//
// Every function is pure: inputs are never reordered or modified, and the
// same input always yields the same output.
package aggregate

import (
	"cmp"
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"moneytracker/internal/core"
)

const (
	// DefaultTrendMonths is the window used by the monthly charts.
	DefaultTrendMonths = 6
	// DefaultRecentCount is the number of transactions on the dashboard.
	DefaultRecentCount = 5
)

// MonthlyStats groups transactions by YYYY-MM and returns one entry per month
// present in the input, ascending by month key.
func MonthlyStats(txs []core.Transaction) []core.MonthlyStat {
	byMonth := make(map[string]*core.MonthlyStat)
	for _, tx := range txs {
		key := tx.MonthKey()
		stat, ok := byMonth[key]
		if !ok {
			stat = &core.MonthlyStat{Month: key}
			byMonth[key] = stat
		}
		accumulate(stat, tx)
	}

	stats := make([]core.MonthlyStat, 0, len(byMonth))
	for _, stat := range byMonth {
		stats = append(stats, *stat)
	}
	slices.SortFunc(stats, byMonthAsc)
	return stats
}

// TrendWindow returns the last n months of stats in ascending order.
// The input is copied before sorting; fewer than n entries are returned whole.
func TrendWindow(stats []core.MonthlyStat, n int) []core.MonthlyStat {
	sorted := slices.Clone(stats)
	slices.SortStableFunc(sorted, byMonthAsc)
	if n < 0 {
		n = 0
	}
	if len(sorted) > n {
		sorted = sorted[len(sorted)-n:]
	}
	return sorted
}

// CurrentMonthSummary aggregates the transactions dated in the calendar month
// of ref. With no matching transactions the summary is zero-valued.
func CurrentMonthSummary(txs []core.Transaction, ref time.Time) core.CurrentMonthSummary {
	key := core.DateOf(ref).MonthKey()
	summary := core.CurrentMonthSummary{Month: key}
	for _, tx := range txs {
		if tx.MonthKey() == key {
			accumulate(&summary, tx)
		}
	}
	return summary
}

// CategoryTotals sums amount magnitudes per category, regardless of type.
func CategoryTotals(txs []core.Transaction) map[string]decimal.Decimal {
	totals := make(map[string]decimal.Decimal)
	for _, tx := range txs {
		totals[tx.Category] = totals[tx.Category].Add(tx.Amount.Abs())
	}
	return totals
}

// CategoryTotalList returns CategoryTotals as labelled entries sorted by key.
func CategoryTotalList(txs []core.Transaction) []core.CategoryTotal {
	totals := CategoryTotals(txs)
	list := make([]core.CategoryTotal, 0, len(totals))
	for key, amount := range totals {
		list = append(list, core.CategoryTotal{
			Category: key,
			Label:    core.LookupCategory(key).Label,
			Amount:   amount,
		})
	}
	slices.SortFunc(list, func(a, b core.CategoryTotal) int {
		return cmp.Compare(a.Category, b.Category)
	})
	return list
}

// Totals aggregates any collection into a single stat with an empty month.
func Totals(txs []core.Transaction) core.MonthlyStat {
	var total core.MonthlyStat
	for _, tx := range txs {
		accumulate(&total, tx)
	}
	return total
}

// RecentTransactions returns the first n transactions by date, newest first.
// Transactions sharing a date keep their input order.
func RecentTransactions(txs []core.Transaction, n int) []core.Transaction {
	sorted := SortByDateDesc(txs)
	if n < 0 {
		n = 0
	}
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

// SortByDateDesc returns a copy of txs ordered newest first, stable on ties.
func SortByDateDesc(txs []core.Transaction) []core.Transaction {
	sorted := slices.Clone(txs)
	slices.SortStableFunc(sorted, func(a, b core.Transaction) int {
		return b.Date.Compare(a.Date.Time)
	})
	return sorted
}

// AverageNetBalance is the mean net balance across stats, zero when empty.
func AverageNetBalance(stats []core.MonthlyStat) decimal.Decimal {
	if len(stats) == 0 {
		return decimal.Zero
	}
	sum := decimal.Zero
	for _, s := range stats {
		sum = sum.Add(s.NetBalance())
	}
	return sum.Div(decimal.NewFromInt(int64(len(stats))))
}

func accumulate(stat *core.MonthlyStat, tx core.Transaction) {
	switch tx.Type {
	case core.Income:
		stat.TotalIncome = stat.TotalIncome.Add(tx.Amount)
	case core.Expense:
		stat.TotalExpenses = stat.TotalExpenses.Add(tx.Amount)
	}
	stat.TransactionCount++
}

func byMonthAsc(a, b core.MonthlyStat) int {
	return cmp.Compare(a.Month, b.Month)
}
