package present

import (
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"

	"moneytracker/internal/aggregate"
	"moneytracker/internal/core"
)

// Chart colors.
const (
	IncomeFill    = "rgba(40, 167, 69, 0.8)"
	IncomeBorder  = "rgba(40, 167, 69, 1)"
	ExpenseFill   = "rgba(220, 53, 69, 0.8)"
	ExpenseBorder = "rgba(220, 53, 69, 1)"
	BalanceFill   = "rgba(0, 123, 255, 0.1)"
	BalanceBorder = "rgba(0, 123, 255, 1)"
)

// Series is a list of chart values encoded as plain JSON numbers.
type Series []decimal.Decimal

func (s Series) MarshalJSON() ([]byte, error) {
	var b strings.Builder
	b.WriteByte('[')
	for i, v := range s {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(v.String())
	}
	b.WriteByte(']')
	return []byte(b.String()), nil
}

// Colors holds one color for the whole dataset or one per point.
type Colors []string

func (c Colors) MarshalJSON() ([]byte, error) {
	if len(c) == 1 {
		return json.Marshal(c[0])
	}
	return json.Marshal([]string(c))
}

// Dataset is one series of a chart in Chart.js shape.
type Dataset struct {
	Label           string  `json:"label"`
	Data            Series  `json:"data"`
	BackgroundColor Colors  `json:"backgroundColor"`
	BorderColor     Colors  `json:"borderColor,omitempty"`
	BorderWidth     int     `json:"borderWidth,omitempty"`
	Fill            bool    `json:"fill,omitempty"`
	Tension         float64 `json:"tension,omitempty"`
}

// ChartData is the labels plus datasets of one chart.
type ChartData struct {
	Labels   []string  `json:"labels"`
	Datasets []Dataset `json:"datasets"`
}

// MonthlyComparison is the income vs expenses bar chart over the last six
// months present in stats.
func MonthlyComparison(stats []core.MonthlyStat) ChartData {
	window := aggregate.TrendWindow(stats, aggregate.DefaultTrendMonths)
	income := make(Series, 0, len(window))
	expenses := make(Series, 0, len(window))
	for _, s := range window {
		income = append(income, s.TotalIncome)
		expenses = append(expenses, s.TotalExpenses)
	}
	return ChartData{
		Labels: monthLabels(window),
		Datasets: []Dataset{
			{
				Label:           "Ingresos",
				Data:            income,
				BackgroundColor: Colors{IncomeFill},
				BorderColor:     Colors{IncomeBorder},
				BorderWidth:     1,
			},
			{
				Label:           "Egresos",
				Data:            expenses,
				BackgroundColor: Colors{ExpenseFill},
				BorderColor:     Colors{ExpenseBorder},
				BorderWidth:     1,
			},
		},
	}
}

// BalanceTrend is the net balance line chart over the same window.
func BalanceTrend(stats []core.MonthlyStat) ChartData {
	window := aggregate.TrendWindow(stats, aggregate.DefaultTrendMonths)
	balance := make(Series, 0, len(window))
	for _, s := range window {
		balance = append(balance, s.NetBalance())
	}
	return ChartData{
		Labels: monthLabels(window),
		Datasets: []Dataset{{
			Label:           "Balance Neto",
			Data:            balance,
			BackgroundColor: Colors{BalanceFill},
			BorderColor:     Colors{BalanceBorder},
			BorderWidth:     2,
			Fill:            true,
			Tension:         0.4,
		}},
	}
}

func monthLabels(stats []core.MonthlyStat) []string {
	labels := make([]string, 0, len(stats))
	for _, s := range stats {
		labels = append(labels, MonthLabel(s.Month))
	}
	return labels
}
