// Package refresh keeps the client store in sync with the backend: a full
// reload on start and after every successful mutation.
package refresh

import (
	"context"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"moneytracker/internal/core"
	applog "moneytracker/internal/log"
	"moneytracker/internal/state"
	"moneytracker/internal/store"
)

const summaryTimeout = 10 * time.Second

const (
	slotTransactions = "transactions"
	slotMonthlyStats = "monthly_stats"
	slotSummary      = "current_month_summary"
)

// Backend is the subset of the backend client the coordinator needs.
type Backend interface {
	ListTransactions(ctx context.Context, query url.Values) ([]core.Transaction, error)
	MonthlyStats(ctx context.Context) ([]core.MonthlyStat, error)
	CurrentMonthSummary(ctx context.Context) (core.CurrentMonthSummary, error)
	CreateTransaction(ctx context.Context, draft core.TransactionDraft) (core.Transaction, error)
	DeleteTransaction(ctx context.Context, id string) error
}

// Report is the outcome of one reload. Values are the fetched item counts.
type Report struct {
	Generation   uint64
	Transactions Result[int]
	MonthlyStats Result[int]
}

// Coordinator is the only writer of the store. Concurrent reloads are
// neither deduplicated nor ordered: whichever response lands last wins.
// Overwrites of newer data by older responses are logged.
type Coordinator struct {
	backend Backend
	store   *store.TransactionStore
	state   *state.AppState
	logger  *applog.Logger

	generation atomic.Uint64
	pending    sync.WaitGroup

	mu      sync.Mutex
	applied map[string]uint64
	stale   atomic.Uint64
}

func NewCoordinator(backend Backend, st *store.TransactionStore, app *state.AppState, logger *applog.Logger) *Coordinator {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	return &Coordinator{
		backend: backend,
		store:   st,
		state:   app,
		logger:  logger.WithComponent(applog.ComponentRefresh),
		applied: make(map[string]uint64),
	}
}

// Reload fetches the transaction list and monthly stats concurrently, then
// moves the state to Loaded even if one of them failed. The current month
// summary is fetched afterwards in the background; see Wait.
func (c *Coordinator) Reload(ctx context.Context) Report {
	gen := c.generation.Add(1)
	report := Report{Generation: gen}
	c.state.BeginLoad()

	var g errgroup.Group
	g.Go(func() error {
		txs, err := c.backend.ListTransactions(ctx, nil)
		if err != nil {
			c.logFetchFailure(ctx, slotTransactions, gen, err)
			report.Transactions = Failure[int](FetchFailure, err)
			txs = []core.Transaction{}
		} else {
			report.Transactions = Success(len(txs))
		}
		c.apply(ctx, slotTransactions, gen, func() { c.store.ReplaceTransactions(txs) })
		return nil
	})
	g.Go(func() error {
		stats, err := c.backend.MonthlyStats(ctx)
		if err != nil {
			c.logFetchFailure(ctx, slotMonthlyStats, gen, err)
			report.MonthlyStats = Failure[int](FetchFailure, err)
			stats = []core.MonthlyStat{}
		} else {
			report.MonthlyStats = Success(len(stats))
		}
		c.apply(ctx, slotMonthlyStats, gen, func() { c.store.ReplaceMonthlyStats(stats) })
		return nil
	})
	_ = g.Wait()

	c.state.FinishLoad()
	c.logger.InfoContext(ctx, "Reload completed",
		applog.FieldOperation, applog.OpReload,
		"generation", gen,
		"transactions_ok", report.Transactions.OK(),
		"monthly_stats_ok", report.MonthlyStats.OK())

	c.refreshSummary(ctx, gen)
	return report
}

// refreshSummary fetches the current month summary without blocking the
// caller. It outlives the caller's cancellation but not summaryTimeout.
func (c *Coordinator) refreshSummary(ctx context.Context, gen uint64) {
	c.pending.Add(1)
	go func() {
		defer c.pending.Done()
		sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), summaryTimeout)
		defer cancel()

		summary, err := c.backend.CurrentMonthSummary(sctx)
		if err != nil {
			c.logFetchFailure(sctx, slotSummary, gen, err)
			summary = core.CurrentMonthSummary{}
		}
		c.apply(sctx, slotSummary, gen, func() { c.store.SetSummary(summary) })
	}()
}

// Wait blocks until every background summary fetch has been applied.
func (c *Coordinator) Wait() {
	c.pending.Wait()
}

// Create validates and submits draft. On success the whole store is reloaded;
// on failure the reason is returned for display and nothing is reloaded.
func (c *Coordinator) Create(ctx context.Context, draft core.TransactionDraft) Result[core.Transaction] {
	if err := draft.Validate(); err != nil {
		return Failure[core.Transaction](MutationFailure, err)
	}
	tx, err := c.backend.CreateTransaction(ctx, draft)
	if err != nil {
		c.logger.WarnContext(ctx, "Create transaction failed",
			applog.FieldError, err.Error(),
			applog.FieldErrorType, string(MutationFailure),
			applog.FieldTitle, draft.Title)
		return Failure[core.Transaction](MutationFailure, err)
	}
	c.logger.InfoContext(ctx, "Transaction created",
		applog.FieldTransactionID, tx.ID,
		applog.FieldAmount, tx.Amount.String(),
		applog.FieldCategory, tx.Category)
	c.Reload(ctx)
	return Success(tx)
}

// Delete removes id. Failures are only logged; the caller may ignore the result.
func (c *Coordinator) Delete(ctx context.Context, id string) Result[struct{}] {
	if err := c.backend.DeleteTransaction(ctx, id); err != nil {
		c.logger.ErrorContext(ctx, "Delete transaction failed",
			applog.FieldError, err.Error(),
			applog.FieldErrorType, string(DeleteFailure),
			applog.FieldTransactionID, id)
		return Failure[struct{}](DeleteFailure, err)
	}
	c.logger.InfoContext(ctx, "Transaction deleted", applog.FieldTransactionID, id)
	c.Reload(ctx)
	return Success(struct{}{})
}

// StaleOverwrites counts responses applied after a newer one for the same slot.
func (c *Coordinator) StaleOverwrites() uint64 {
	return c.stale.Load()
}

func (c *Coordinator) apply(ctx context.Context, slot string, gen uint64, write func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if last := c.applied[slot]; gen < last {
		c.stale.Add(1)
		c.logger.WarnContext(ctx, "Older response overwrote newer data",
			"slot", slot,
			"generation", gen,
			"newer_generation", last)
	} else {
		c.applied[slot] = gen
	}
	write()
}

func (c *Coordinator) logFetchFailure(ctx context.Context, slot string, gen uint64, err error) {
	c.logger.ErrorContext(ctx, "Fetch failed, falling back to empty value",
		"slot", slot,
		"generation", gen,
		applog.FieldError, err.Error(),
		applog.FieldErrorType, string(FetchFailure))
}
