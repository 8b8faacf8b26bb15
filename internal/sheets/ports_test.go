package sheets

import (
	"testing"

	"github.com/shopspring/decimal"

	"moneytracker/internal/core"
)

func TestStatsRows(t *testing.T) {
	rows := StatsRows([]core.MonthlyStat{
		{Month: "2024-02", TotalIncome: decimal.Zero, TotalExpenses: decimal.RequireFromString("99.5"), TransactionCount: 1},
		{Month: "2024-01", TotalIncome: decimal.NewFromInt(10), TotalExpenses: decimal.Zero, TransactionCount: 2},
	})

	if len(rows) != 3 {
		t.Fatalf("len(rows) = %d, want 3", len(rows))
	}
	if rows[0][0] != "Mes" {
		t.Errorf("header = %v", rows[0])
	}
	if got := rows[1]; got[0] != "feb 2024" || got[4] != "-99.50" {
		t.Errorf("rows[1] = %v", got)
	}
	if got := rows[2]; got[1] != "2024-01" || got[5] != "2" {
		t.Errorf("rows[2] = %v", got)
	}

	rows[0][0] = "x"
	if Header[0] != "Mes" {
		t.Error("StatsRows must not alias Header")
	}
}

func TestStatsRowsEmpty(t *testing.T) {
	rows := StatsRows(nil)
	if len(rows) != 1 {
		t.Fatalf("expected only the header, got %v", rows)
	}
}
