package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"sync"
	"time"

	"moneytracker/internal/aggregate"
	"moneytracker/internal/amqp"
	"moneytracker/internal/cache"
	"moneytracker/internal/core"
	applog "moneytracker/internal/log"
	"moneytracker/internal/ports"
)

const (
	monthlyStatsKey = "monthly_stats"
	publishTimeout  = 15 * time.Second
)

// EventPublisher announces mutations. *amqp.Client implements it.
type EventPublisher interface {
	PublishTransactionEvent(ctx context.Context, event *amqp.TransactionEvent) error
}

// TransactionService orchestrates transaction operations across storage and
// AMQP. Storage is the source of truth: a failed publish never fails a request.
type TransactionService struct {
	repo      ports.TransactionRepository
	publisher EventPublisher
	stats     cache.Cache[[]core.MonthlyStat]
	logger    *applog.Logger
	now       func() time.Time

	// statsGen counts invalidations; a fill only lands in the cache when no
	// mutation committed while it was reading.
	statsMu  sync.Mutex
	statsGen uint64

	publishing sync.WaitGroup
}

// NewTransactionService wires repo with an optional publisher and cache.
func NewTransactionService(repo ports.TransactionRepository, publisher EventPublisher, stats cache.Cache[[]core.MonthlyStat], logger *applog.Logger) *TransactionService {
	if logger == nil {
		logger = applog.Discard()
	}
	return &TransactionService{
		repo:      repo,
		publisher: publisher,
		stats:     stats,
		logger:    logger.WithComponent(applog.ComponentService),
		now:       time.Now,
	}
}

func (s *TransactionService) List(ctx context.Context, filter ports.ListFilter) ([]core.Transaction, error) {
	return s.repo.List(ctx, filter)
}

func (s *TransactionService) Get(ctx context.Context, id string) (core.Transaction, error) {
	return s.repo.Get(ctx, id)
}

// Create saves draft and publishes a created event.
func (s *TransactionService) Create(ctx context.Context, draft core.TransactionDraft) (core.Transaction, error) {
	tx, err := s.repo.Create(ctx, draft)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("save transaction: %w", err)
	}
	s.logger.InfoContext(ctx, "Transaction created", applog.NewFields().
		WithTransaction(tx.ID, tx.Title, tx.Amount.String(), tx.Type.String(), tx.Category).
		ToSlice()...)
	s.invalidate()
	s.publish(ctx, tx.ID, amqp.EventCreated, tx.MonthKey())
	return tx, nil
}

// Update replaces the editable fields of id with draft.
func (s *TransactionService) Update(ctx context.Context, id string, draft core.TransactionDraft) (core.Transaction, error) {
	tx, err := s.repo.Update(ctx, id, draft)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("update transaction: %w", err)
	}
	s.invalidate()
	s.publish(ctx, tx.ID, amqp.EventUpdated, tx.MonthKey())
	return tx, nil
}

func (s *TransactionService) Delete(ctx context.Context, id string) error {
	tx, err := s.repo.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	s.logger.InfoContext(ctx, "Transaction deleted", applog.FieldTransactionID, id)
	s.invalidate()
	s.publish(ctx, id, amqp.EventDeleted, tx.MonthKey())
	return nil
}

// MonthlyStats returns per-month totals over every stored transaction,
// newest month first.
func (s *TransactionService) MonthlyStats(ctx context.Context) ([]core.MonthlyStat, error) {
	if s.stats != nil {
		if stats, ok := s.stats.Get(monthlyStatsKey); ok {
			return slices.Clone(stats), nil
		}
	}
	gen := s.generation()
	txs, err := s.repo.List(ctx, ports.ListFilter{})
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	stats := aggregate.MonthlyStats(txs)
	slices.Reverse(stats)
	if s.stats != nil {
		s.statsMu.Lock()
		if s.statsGen == gen {
			s.stats.Set(monthlyStatsKey, slices.Clone(stats))
		}
		s.statsMu.Unlock()
	}
	return stats, nil
}

// CurrentMonthSummary returns the totals of the calendar month containing now.
func (s *TransactionService) CurrentMonthSummary(ctx context.Context) (core.CurrentMonthSummary, error) {
	now := s.now()
	txs, err := s.repo.List(ctx, ports.ListFilter{Year: now.Year(), Month: int(now.Month())})
	if err != nil {
		return core.CurrentMonthSummary{}, fmt.Errorf("list transactions: %w", err)
	}
	return aggregate.CurrentMonthSummary(txs, now), nil
}

func (s *TransactionService) generation() uint64 {
	s.statsMu.Lock()
	defer s.statsMu.Unlock()
	return s.statsGen
}

func (s *TransactionService) invalidate() {
	s.statsMu.Lock()
	defer s.statsMu.Unlock()
	s.statsGen++
	if s.stats != nil {
		s.stats.Purge()
	}
}

// publish sends the event in the background; Close waits for it.
func (s *TransactionService) publish(ctx context.Context, id string, kind amqp.EventKind, month string) {
	if s.publisher == nil {
		s.logger.DebugContext(ctx, "AMQP publisher not available, skipping event", "kind", kind)
		return
	}
	event := amqp.NewTransactionEvent(id, kind, month)
	s.publishing.Add(1)
	go func() {
		defer s.publishing.Done()
		pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
		defer cancel()
		if err := s.publisher.PublishTransactionEvent(pctx, event); err != nil {
			s.logger.ErrorContext(pctx, "Failed to publish transaction event",
				applog.FieldTransactionID, id,
				applog.FieldOperation, applog.OpPublish,
				applog.FieldError, err.Error())
		}
	}()
}

// Close waits for pending publishes, then closes the repository and the
// publisher when they implement io.Closer.
func (s *TransactionService) Close() error {
	s.publishing.Wait()

	var errs []error
	if c, ok := s.repo.(io.Closer); ok {
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}
	if c, ok := s.publisher.(io.Closer); ok {
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("close transaction service: %w", errors.Join(errs...))
	}
	return nil
}
