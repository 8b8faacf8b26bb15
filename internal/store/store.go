// Package store holds the client's current view of the transaction
// collection and the aggregates fetched from the backend.
package store

import (
	"slices"
	"sync"

	"moneytracker/internal/core"
)

// Snapshot is a consistent copy of the store contents.
type Snapshot struct {
	Transactions []core.Transaction
	MonthlyStats []core.MonthlyStat
	Summary      core.CurrentMonthSummary
}

// TransactionStore is safe for concurrent use. Readers always receive copies.
type TransactionStore struct {
	mu           sync.RWMutex
	transactions []core.Transaction
	monthlyStats []core.MonthlyStat
	summary      core.CurrentMonthSummary
}

func New() *TransactionStore {
	return &TransactionStore{}
}

// ReplaceTransactions swaps the whole collection.
func (s *TransactionStore) ReplaceTransactions(txs []core.Transaction) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transactions = slices.Clone(txs)
}

// ReplaceMonthlyStats swaps the backend monthly stats, keeping their order.
func (s *TransactionStore) ReplaceMonthlyStats(stats []core.MonthlyStat) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.monthlyStats = slices.Clone(stats)
}

func (s *TransactionStore) SetSummary(summary core.CurrentMonthSummary) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.summary = summary
}

func (s *TransactionStore) Transactions() []core.Transaction {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.transactions)
}

func (s *TransactionStore) MonthlyStats() []core.MonthlyStat {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.monthlyStats)
}

func (s *TransactionStore) Summary() core.CurrentMonthSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.summary
}

func (s *TransactionStore) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		Transactions: slices.Clone(s.transactions),
		MonthlyStats: slices.Clone(s.monthlyStats),
		Summary:      s.summary,
	}
}

// Len returns the number of stored transactions.
func (s *TransactionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.transactions)
}
