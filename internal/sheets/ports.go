// Package sheets exports derived statistics to spreadsheets.
package sheets

import (
	"context"
	"strconv"

	"moneytracker/internal/core"
	"moneytracker/internal/present"
)

// StatsExporter writes the monthly stats table somewhere a human reads it.
type StatsExporter interface {
	// ExportMonthlyStats replaces the table and returns a reference to the
	// written range.
	ExportMonthlyStats(ctx context.Context, stats []core.MonthlyStat) (ref string, err error)
}

// Header is the first row of the exported table.
var Header = []string{"Mes", "Clave", "Ingresos", "Egresos", "Balance Neto", "Transacciones"}

// StatsRows renders stats as table rows, header first, in the order given.
// Amounts keep two fraction digits so spreadsheets parse them as numbers.
func StatsRows(stats []core.MonthlyStat) [][]string {
	rows := make([][]string, 0, len(stats)+1)
	rows = append(rows, append([]string(nil), Header...))
	for _, s := range stats {
		rows = append(rows, []string{
			present.MonthLabel(s.Month),
			s.Month,
			s.TotalIncome.StringFixed(core.AmountScale),
			s.TotalExpenses.StringFixed(core.AmountScale),
			s.NetBalance().StringFixed(core.AmountScale),
			strconv.Itoa(s.TransactionCount),
		})
	}
	return rows
}
