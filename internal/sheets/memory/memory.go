package memory

import (
	"context"
	"fmt"
	"sync"

	"moneytracker/internal/core"
	"moneytracker/internal/sheets"
)

var _ sheets.StatsExporter = (*Exporter)(nil)

// Exporter keeps the last exported table in memory.
type Exporter struct {
	mu      sync.Mutex
	rows    [][]string
	exports int
}

func New() *Exporter {
	return &Exporter{}
}

// ExportMonthlyStats replaces the stored table.
func (e *Exporter) ExportMonthlyStats(_ context.Context, stats []core.MonthlyStat) (string, error) {
	rows := sheets.StatsRows(stats)

	e.mu.Lock()
	defer e.mu.Unlock()
	e.rows = rows
	e.exports++
	return fmt.Sprintf("mem!A1:F%d", len(rows)), nil
}

// Rows returns a copy of the last exported table.
func (e *Exporter) Rows() [][]string {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([][]string, len(e.rows))
	for i, r := range e.rows {
		out[i] = append([]string(nil), r...)
	}
	return out
}

// Exports counts the calls to ExportMonthlyStats.
func (e *Exporter) Exports() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.exports
}
