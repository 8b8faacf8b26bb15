package present

import (
	"time"

	"moneytracker/internal/aggregate"
	"moneytracker/internal/core"
)

// dashboardMonths is how many backend monthly stats the dashboard lists.
const dashboardMonths = 6

// TransactionRow is a display-ready transaction.
type TransactionRow struct {
	ID            string `json:"id"`
	Date          string `json:"date"`
	Title         string `json:"title"`
	Description   string `json:"description,omitempty"`
	Type          string `json:"type"`
	TypeLabel     string `json:"type_label"`
	Category      string `json:"category"`
	CategoryLabel string `json:"category_label"`
	Amount        string `json:"amount"`
}

// NewTransactionRow formats tx for lists.
func NewTransactionRow(tx core.Transaction) TransactionRow {
	return TransactionRow{
		ID:            tx.ID,
		Date:          FormatDate(tx.Date),
		Title:         tx.Title,
		Description:   tx.Description,
		Type:          string(tx.Type),
		TypeLabel:     tx.Type.Label(),
		Category:      tx.Category,
		CategoryLabel: core.LookupCategory(tx.Category).Label,
		Amount:        FormatSignedAmount(tx),
	}
}

// MonthRow is a display-ready monthly stat.
type MonthRow struct {
	Month    string `json:"month"`
	Label    string `json:"label"`
	Income   string `json:"income"`
	Expenses string `json:"expenses"`
	Balance  string `json:"balance"`
	Count    int    `json:"count"`
	Negative bool   `json:"negative"`
}

// NewMonthRow formats s for tables and cards.
func NewMonthRow(s core.MonthlyStat) MonthRow {
	return MonthRow{
		Month:    s.Month,
		Label:    MonthLabel(s.Month),
		Income:   FormatCurrency(s.TotalIncome),
		Expenses: FormatCurrency(s.TotalExpenses),
		Balance:  FormatCurrency(s.NetBalance()),
		Count:    s.TransactionCount,
		Negative: s.NetBalance().IsNegative(),
	}
}

// Dashboard is the landing view: current month cards, the most recent
// transactions and the latest monthly stats as sent by the backend.
type Dashboard struct {
	Current MonthRow         `json:"current"`
	Recent  []TransactionRow `json:"recent"`
	Monthly []MonthRow       `json:"monthly"`
}

// BuildDashboard assembles the dashboard. stats keep the backend order.
func BuildDashboard(summary core.CurrentMonthSummary, txs []core.Transaction, stats []core.MonthlyStat) Dashboard {
	recent := aggregate.RecentTransactions(txs, aggregate.DefaultRecentCount)
	rows := make([]TransactionRow, 0, len(recent))
	for _, tx := range recent {
		rows = append(rows, NewTransactionRow(tx))
	}

	monthly := stats
	if len(monthly) > dashboardMonths {
		monthly = monthly[:dashboardMonths]
	}
	months := make([]MonthRow, 0, len(monthly))
	for _, s := range monthly {
		months = append(months, NewMonthRow(s))
	}

	return Dashboard{
		Current: NewMonthRow(summary),
		Recent:  rows,
		Monthly: months,
	}
}

// Charts is the charts view. Distribution is nil when there is nothing to
// distribute.
type Charts struct {
	Comparison        ChartData     `json:"comparison"`
	Balance           ChartData     `json:"balance"`
	Distribution      *Distribution `json:"distribution,omitempty"`
	TotalTransactions int           `json:"total_transactions"`
	MonthsWithData    int           `json:"months_with_data"`
	AverageNetBalance string        `json:"average_net_balance"`
}

// BuildCharts assembles the charts view from the stored collection and the
// backend monthly stats.
func BuildCharts(txs []core.Transaction, stats []core.MonthlyStat) Charts {
	charts := Charts{
		Comparison:        MonthlyComparison(stats),
		Balance:           BalanceTrend(stats),
		TotalTransactions: len(txs),
		MonthsWithData:    len(stats),
		AverageNetBalance: FormatCurrency(aggregate.AverageNetBalance(stats)),
	}
	if dist, ok := CategoryDistribution(aggregate.CategoryTotalList(txs)); ok {
		charts.Distribution = &dist
	}
	return charts
}

// TransactionList is the filtered list view with its totals.
type TransactionList struct {
	Rows     []TransactionRow `json:"rows"`
	Count    int              `json:"count"`
	Income   string           `json:"income"`
	Expenses string           `json:"expenses"`
	Balance  string           `json:"balance"`
}

// BuildTransactionList formats already filtered transactions, newest first.
func BuildTransactionList(txs []core.Transaction) TransactionList {
	sorted := aggregate.SortByDateDesc(txs)
	rows := make([]TransactionRow, 0, len(sorted))
	for _, tx := range sorted {
		rows = append(rows, NewTransactionRow(tx))
	}
	totals := aggregate.Totals(txs)
	return TransactionList{
		Rows:     rows,
		Count:    len(rows),
		Income:   FormatCurrency(totals.TotalIncome),
		Expenses: FormatCurrency(totals.TotalExpenses),
		Balance:  FormatCurrency(totals.NetBalance()),
	}
}

// CurrentMonthTitle is the heading of the current month card, e.g. "oct 2026".
func CurrentMonthTitle(now time.Time) string {
	return MonthLabel(core.DateOf(now).MonthKey())
}
