package present

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"moneytracker/internal/core"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func totals(pairs ...string) []core.CategoryTotal {
	out := make([]core.CategoryTotal, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, core.CategoryTotal{
			Category: pairs[i],
			Label:    core.LookupCategory(pairs[i]).Label,
			Amount:   dec(pairs[i+1]),
		})
	}
	return out
}

func TestFormatCurrency(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"0", "$ 0"},
		{"600", "$ 600"},
		{"1000", "$ 1.000"},
		{"1500000", "$ 1.500.000"},
		{"1234567.89", "$ 1.234.568"},
		{"0.5", "$ 1"},
		{"-600", "-$ 600"},
		{"-1500000.4", "-$ 1.500.000"},
	}
	for _, tt := range tests {
		if got := FormatCurrency(dec(tt.in)); got != tt.want {
			t.Errorf("FormatCurrency(%s) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatSignedAmount(t *testing.T) {
	tests := []struct {
		tx   core.Transaction
		want string
	}{
		{core.Transaction{Amount: dec("1000"), Type: core.Income}, "+$ 1.000"},
		{core.Transaction{Amount: dec("250"), Type: core.Expense}, "-$ 250"},
	}
	for _, tt := range tests {
		if got := FormatSignedAmount(tt.tx); got != tt.want {
			t.Errorf("%s %s = %q, want %q", tt.tx.Type, tt.tx.Amount, got, tt.want)
		}
	}
}

func TestMonthLabel(t *testing.T) {
	tests := map[string]string{
		"2024-01": "ene 2024",
		"2023-09": "sept 2023",
		"2024-12": "dic 2024",
		"garbage": "garbage",
	}
	for in, want := range tests {
		if got := MonthLabel(in); got != want {
			t.Errorf("MonthLabel(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestFormatDate(t *testing.T) {
	if got := FormatDate(core.NewDate(2024, 1, 5)); got != "05 ene 2024" {
		t.Errorf("got %q", got)
	}
	if got := FormatDate(core.Date{}); got != "" {
		t.Errorf("zero date = %q", got)
	}
}

func stats12() []core.MonthlyStat {
	out := make([]core.MonthlyStat, 0, 12)
	for m := 12; m >= 1; m-- {
		out = append(out, core.MonthlyStat{
			Month:         core.MonthKeyOf(2023, m),
			TotalIncome:   decimal.NewFromInt(int64(m * 100)),
			TotalExpenses: decimal.NewFromInt(50),
		})
	}
	return out
}

func TestMonthlyComparison(t *testing.T) {
	chart := MonthlyComparison(stats12())
	wantLabels := []string{"jul 2023", "ago 2023", "sept 2023", "oct 2023", "nov 2023", "dic 2023"}
	if !reflect.DeepEqual(chart.Labels, wantLabels) {
		t.Fatalf("labels = %v", chart.Labels)
	}
	if len(chart.Datasets) != 2 {
		t.Fatalf("datasets = %d", len(chart.Datasets))
	}
	if chart.Datasets[0].Label != "Ingresos" || chart.Datasets[1].Label != "Egresos" {
		t.Fatalf("dataset labels %q %q", chart.Datasets[0].Label, chart.Datasets[1].Label)
	}
	if !chart.Datasets[0].Data[0].Equal(dec("700")) || len(chart.Datasets[1].Data) != 6 {
		t.Fatalf("unexpected data %v / %v", chart.Datasets[0].Data, chart.Datasets[1].Data)
	}

	out, err := json.Marshal(chart)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	for _, want := range []string{`"data":[700,800,900,1000,1100,1200]`, `"backgroundColor":"rgba(40, 167, 69, 0.8)"`} {
		if !strings.Contains(string(out), want) {
			t.Errorf("json missing %s: %s", want, out)
		}
	}
}

func TestBalanceTrend(t *testing.T) {
	chart := BalanceTrend(stats12()[10:]) // feb, jan
	if !reflect.DeepEqual(chart.Labels, []string{"ene 2023", "feb 2023"}) {
		t.Fatalf("labels = %v", chart.Labels)
	}
	if len(chart.Datasets) != 1 {
		t.Fatalf("datasets = %d", len(chart.Datasets))
	}
	ds := chart.Datasets[0]
	if !ds.Fill || ds.Tension != 0.4 {
		t.Errorf("fill %v tension %v", ds.Fill, ds.Tension)
	}
	if !ds.Data[0].Equal(dec("50")) || !ds.Data[1].Equal(dec("150")) {
		t.Errorf("data = %v", ds.Data)
	}
}

func TestCategoryDistribution(t *testing.T) {
	type share struct {
		category string
		label    string
		color    string
		percent  string
	}
	tests := []struct {
		name   string
		totals []core.CategoryTotal
		total  string
		want   []share
	}{
		{
			name:   "even split",
			totals: totals("food", "100", "transport", "100", "salary", "100"),
			total:  "300",
			want: []share{
				{"food", "Alimentación", "#dc3545", "33.3%"},
				{"salary", "Salario", core.LookupCategory("salary").Color, "33.3%"},
				{"transport", "Transporte", core.LookupCategory("transport").Color, "33.3%"},
			},
		},
		{
			name:   "rounds to one fraction digit",
			totals: totals("food", "150", "salary", "1000"),
			total:  "1150",
			want: []share{
				{"food", "Alimentación", "#dc3545", "13.0%"},
				{"salary", "Salario", core.LookupCategory("salary").Color, "87.0%"},
			},
		},
		{
			name:   "unknown category",
			totals: totals("lottery", "2", "food", "1"),
			total:  "3",
			want: []share{
				{"food", "Alimentación", "#dc3545", "33.3%"},
				{"lottery", "lottery", core.NeutralColor, "66.7%"},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dist, ok := CategoryDistribution(tt.totals)
			if !ok {
				t.Fatal("distribution omitted")
			}
			if !dist.Total.Equal(dec(tt.total)) {
				t.Fatalf("total = %s, want %s", dist.Total, tt.total)
			}
			if len(dist.Slices) != len(tt.want) {
				t.Fatalf("slices = %d, want %d", len(dist.Slices), len(tt.want))
			}
			for i, want := range tt.want {
				got := dist.Slices[i]
				if got.Category != want.category || got.Label != want.label || got.Color != want.color || got.Percent() != want.percent {
					t.Errorf("slice %d = %s/%s/%s/%s, want %+v", i, got.Category, got.Label, got.Color, got.Percent(), want)
				}
			}
		})
	}
}

func TestCategoryDistributionChart(t *testing.T) {
	dist, ok := CategoryDistribution(totals("food", "100", "transport", "100", "salary", "100"))
	if !ok {
		t.Fatal("distribution omitted")
	}
	chart := dist.Chart()
	if !reflect.DeepEqual(chart.Labels, []string{"Alimentación", "Salario", "Transporte"}) {
		t.Fatalf("labels = %v", chart.Labels)
	}
	if n := len(chart.Datasets[0].BackgroundColor); n != 3 {
		t.Fatalf("colors = %d", n)
	}
}

func TestCategoryDistributionEmpty(t *testing.T) {
	for name, in := range map[string][]core.CategoryTotal{
		"nil":        nil,
		"zero total": totals("food", "0"),
	} {
		if _, ok := CategoryDistribution(in); ok {
			t.Errorf("%s: distribution should be omitted", name)
		}
	}
}

func TestBuildDashboard(t *testing.T) {
	txs := []core.Transaction{
		{ID: "1", Title: "a", Amount: dec("10"), Type: core.Income, Category: "salary", Date: core.NewDate(2024, 1, 1)},
		{ID: "2", Title: "b", Amount: dec("5"), Type: core.Expense, Category: "food", Date: core.NewDate(2024, 1, 3)},
	}
	summary := core.MonthlyStat{Month: "2024-01", TotalIncome: dec("10"), TotalExpenses: dec("5"), TransactionCount: 2}

	d := BuildDashboard(summary, txs, stats12())
	if d.Current.Balance != "$ 5" {
		t.Errorf("balance = %q", d.Current.Balance)
	}
	if len(d.Recent) != 2 || d.Recent[0].ID != "2" || d.Recent[0].Amount != "-$ 5" {
		t.Errorf("recent = %+v", d.Recent)
	}
	if len(d.Monthly) != 6 || d.Monthly[0].Month != "2023-12" {
		t.Errorf("monthly should keep backend order: %+v", d.Monthly)
	}
}

func TestBuildCharts(t *testing.T) {
	c := BuildCharts(nil, nil)
	if c.Distribution != nil || c.AverageNetBalance != "$ 0" || len(c.Comparison.Labels) != 0 {
		t.Fatalf("empty charts = %+v", c)
	}

	txs := []core.Transaction{
		{ID: "1", Amount: dec("1000"), Type: core.Income, Category: "salary", Date: core.NewDate(2024, 1, 1)},
		{ID: "2", Amount: dec("150"), Type: core.Expense, Category: "food", Date: core.NewDate(2024, 1, 2)},
	}
	c = BuildCharts(txs, []core.MonthlyStat{{Month: "2024-01", TotalIncome: dec("1000"), TotalExpenses: dec("150"), TransactionCount: 2}})
	if c.Distribution == nil {
		t.Fatal("distribution missing")
	}
	if c.TotalTransactions != 2 || c.MonthsWithData != 1 || c.AverageNetBalance != "$ 850" {
		t.Errorf("charts = %d %d %q", c.TotalTransactions, c.MonthsWithData, c.AverageNetBalance)
	}
	if got := c.Distribution.Slices[1].Percent(); got != "87.0%" {
		t.Errorf("salary share = %s", got)
	}
}

func TestBuildTransactionList(t *testing.T) {
	txs := []core.Transaction{
		{ID: "1", Amount: dec("1000"), Type: core.Income, Category: "salary", Date: core.NewDate(2024, 1, 1)},
		{ID: "2", Amount: dec("400"), Type: core.Expense, Category: "food", Date: core.NewDate(2024, 2, 1)},
	}
	list := BuildTransactionList(txs)
	if list.Count != 2 || list.Balance != "$ 600" {
		t.Fatalf("count %d balance %q", list.Count, list.Balance)
	}
	if list.Rows[0].ID != "2" || list.Rows[0].CategoryLabel != "Alimentación" {
		t.Fatalf("first row = %+v", list.Rows[0])
	}
}
