package core

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// MonthlyStat aggregates the transactions of one calendar month.
type MonthlyStat struct {
	Month            string          `json:"month"`
	TotalIncome      decimal.Decimal `json:"total_income"`
	TotalExpenses    decimal.Decimal `json:"total_expenses"`
	TransactionCount int             `json:"transaction_count"`
}

// CurrentMonthSummary has the same shape as MonthlyStat, scoped to the
// month containing a reference date.
type CurrentMonthSummary = MonthlyStat

// NetBalance is always derived from income and expenses.
func (m MonthlyStat) NetBalance() decimal.Decimal {
	return m.TotalIncome.Sub(m.TotalExpenses)
}

type monthlyStatWire struct {
	Month            string          `json:"month"`
	TotalIncome      decimal.Decimal `json:"total_income"`
	TotalExpenses    decimal.Decimal `json:"total_expenses"`
	NetBalance       decimal.Decimal `json:"net_balance"`
	TransactionCount int             `json:"transaction_count"`
}

func (m MonthlyStat) MarshalJSON() ([]byte, error) {
	return json.Marshal(monthlyStatWire{
		Month:            m.Month,
		TotalIncome:      m.TotalIncome,
		TotalExpenses:    m.TotalExpenses,
		NetBalance:       m.NetBalance(),
		TransactionCount: m.TransactionCount,
	})
}

// UnmarshalJSON ignores any net_balance sent by the peer.
func (m *MonthlyStat) UnmarshalJSON(data []byte) error {
	var w monthlyStatWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*m = MonthlyStat{
		Month:            w.Month,
		TotalIncome:      w.TotalIncome,
		TotalExpenses:    w.TotalExpenses,
		TransactionCount: w.TransactionCount,
	}
	return nil
}

// CategoryTotal is the summed magnitude of every transaction in a category.
type CategoryTotal struct {
	Category string          `json:"category"`
	Label    string          `json:"label"`
	Amount   decimal.Decimal `json:"amount"`
}
