// Package present turns aggregates into chart series, labels and display
// strings. Money is always rendered through FormatCurrency.
package present

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"

	"moneytracker/internal/core"
)

// Currency display: Colombian pesos, no fraction digits, "." grouping.
const (
	currencySymbol = "$"
	groupingFormat = "#.###,"
)

var shortMonths = [12]string{"ene", "feb", "mar", "abr", "may", "jun", "jul", "ago", "sept", "oct", "nov", "dic"}

// FormatCurrency renders d as "$ 1.500.000", rounding half away from zero.
func FormatCurrency(d decimal.Decimal) string {
	n := d.Round(0).IntPart()
	sign := ""
	if n < 0 {
		sign = "-"
		n = -n
	}
	return sign + currencySymbol + " " + humanize.FormatInteger(groupingFormat, int(n))
}

// FormatSignedAmount prefixes the amount with + for income and - for expenses.
func FormatSignedAmount(tx core.Transaction) string {
	if tx.Type == core.Expense {
		return "-" + FormatCurrency(tx.Amount.Abs())
	}
	return "+" + FormatCurrency(tx.Amount.Abs())
}

// MonthLabel renders a YYYY-MM key as "ene 2024". The label is built from the
// key itself so no time zone can shift it. Malformed keys are returned as is.
func MonthLabel(key string) string {
	year, month, err := core.ParseMonthKey(key)
	if err != nil {
		return key
	}
	return fmt.Sprintf("%s %d", shortMonths[month-1], year)
}

// FormatDate renders a date as "05 ene 2024".
func FormatDate(d core.Date) string {
	if d.IsZero() {
		return ""
	}
	return fmt.Sprintf("%02d %s %d", d.Day(), shortMonths[d.Month()-1], d.Year())
}
