package present

import (
	"cmp"
	"slices"

	"github.com/shopspring/decimal"

	"moneytracker/internal/core"
)

var hundred = decimal.NewFromInt(100)

// Slice is one category of the distribution chart.
type Slice struct {
	Category   string          `json:"category"`
	Label      string          `json:"label"`
	Color      string          `json:"color"`
	Amount     decimal.Decimal `json:"amount"`
	Percentage decimal.Decimal `json:"percentage"`
}

// Percent renders the share with one fraction digit, e.g. "33.3%".
func (s Slice) Percent() string {
	return s.Percentage.StringFixed(1) + "%"
}

// Distribution is the per-category share of a total.
type Distribution struct {
	Total  decimal.Decimal `json:"total"`
	Slices []Slice         `json:"slices"`
}

// CategoryDistribution computes each category's share of the grand total,
// ordered by category key. It returns false when the total is zero, in which
// case the distribution view must be omitted.
func CategoryDistribution(totals []core.CategoryTotal) (Distribution, bool) {
	total := decimal.Zero
	for _, ct := range totals {
		total = total.Add(ct.Amount)
	}
	if total.IsZero() {
		return Distribution{Total: total}, false
	}

	parts := make([]Slice, 0, len(totals))
	for _, ct := range totals {
		label := ct.Label
		if label == "" {
			label = core.LookupCategory(ct.Category).Label
		}
		parts = append(parts, Slice{
			Category:   ct.Category,
			Label:      label,
			Color:      core.LookupCategory(ct.Category).Color,
			Amount:     ct.Amount,
			Percentage: ct.Amount.Mul(hundred).DivRound(total, 1),
		})
	}
	slices.SortFunc(parts, func(a, b Slice) int {
		return cmp.Compare(a.Category, b.Category)
	})
	return Distribution{Total: total, Slices: parts}, true
}

// Chart renders the distribution as a doughnut chart.
func (d Distribution) Chart() ChartData {
	labels := make([]string, 0, len(d.Slices))
	data := make(Series, 0, len(d.Slices))
	colors := make(Colors, 0, len(d.Slices))
	for _, s := range d.Slices {
		labels = append(labels, s.Label)
		data = append(data, s.Amount)
		colors = append(colors, s.Color)
	}
	return ChartData{
		Labels: labels,
		Datasets: []Dataset{{
			Label:           "Distribución por Categoría",
			Data:            data,
			BackgroundColor: colors,
			BorderWidth:     1,
		}},
	}
}
