// Package worker keeps the Google Sheets summary in step with the backend.
package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"moneytracker/internal/amqp"
	"moneytracker/internal/core"
	applog "moneytracker/internal/log"
	"moneytracker/internal/sheets"
)

// StatsSource provides the monthly stats to export.
type StatsSource interface {
	MonthlyStats(ctx context.Context) ([]core.MonthlyStat, error)
}

// EventConsumer delivers transaction events until its context is done.
type EventConsumer interface {
	ConsumeTransactionEvents(ctx context.Context, handler func(context.Context, *amqp.TransactionEvent) error) error
}

// ExportWorker rewrites the monthly stats sheet after every mutation event
// and on a fixed interval, the latter covering lost events.
type ExportWorker struct {
	source   StatsSource
	exporter sheets.StatsExporter
	logger   *applog.Logger

	mu         sync.Mutex
	lastExport time.Time
	exports    int
}

func NewExportWorker(source StatsSource, exporter sheets.StatsExporter, logger *applog.Logger) *ExportWorker {
	if logger == nil {
		logger = applog.Discard()
	}
	return &ExportWorker{
		source:   source,
		exporter: exporter,
		logger:   logger.WithComponent(applog.ComponentSheets),
	}
}

// HandleEvent processes a single transaction event from AMQP.
func (w *ExportWorker) HandleEvent(ctx context.Context, event *amqp.TransactionEvent) error {
	w.logger.InfoContext(ctx, "Processing transaction event",
		applog.FieldTransactionID, event.ID,
		"kind", string(event.Kind),
		applog.FieldMonth, event.Month)
	return w.Export(ctx)
}

// Export fetches the current monthly stats and writes them to the sheet.
func (w *ExportWorker) Export(ctx context.Context) error {
	stats, err := w.source.MonthlyStats(ctx)
	if err != nil {
		return fmt.Errorf("fetch monthly stats: %w", err)
	}
	ref, err := w.exporter.ExportMonthlyStats(ctx, stats)
	if err != nil {
		return fmt.Errorf("export monthly stats: %w", err)
	}

	w.mu.Lock()
	w.lastExport = time.Now()
	w.exports++
	w.mu.Unlock()

	w.logger.InfoContext(ctx, "Successfully exported monthly stats",
		applog.FieldOperation, applog.OpExport,
		applog.FieldCount, len(stats),
		"sheets_ref", ref)
	return nil
}

// Run exports once, then consumes events and re-exports every interval until
// ctx is done. A zero interval disables the periodic export.
func (w *ExportWorker) Run(ctx context.Context, events EventConsumer, interval time.Duration) error {
	if err := w.Export(ctx); err != nil {
		w.logger.ErrorContext(ctx, "Startup export failed", applog.FieldError, err.Error())
	}

	if interval > 0 {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		go func() {
			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					if err := w.Export(ctx); err != nil {
						w.logger.ErrorContext(ctx, "Periodic export failed", applog.FieldError, err.Error())
					}
				}
			}
		}()
	}

	err := events.ConsumeTransactionEvents(ctx, w.HandleEvent)
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("consume events: %w", err)
	}
	return nil
}

// Stats reports how many exports succeeded and when the last one did.
func (w *ExportWorker) Stats() (exports int, last time.Time) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.exports, w.lastExport
}
