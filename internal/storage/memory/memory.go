// Package memory is a process-local TransactionRepository, used by default
// and in tests.
package memory

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"moneytracker/internal/core"
	"moneytracker/internal/ports"
)

type Store struct {
	mu    sync.RWMutex
	items map[string]core.Transaction
	now   func() time.Time
}

func New() *Store {
	return &Store{
		items: make(map[string]core.Transaction),
		now:   time.Now,
	}
}

func (s *Store) Create(_ context.Context, draft core.TransactionDraft) (core.Transaction, error) {
	if err := draft.Validate(); err != nil {
		return core.Transaction{}, err
	}
	now := s.now().UTC()
	tx := core.Transaction{
		ID:          uuid.New().String(),
		Title:       draft.Title,
		Description: draft.Description,
		Amount:      draft.Amount.Round(core.AmountScale),
		Type:        draft.Type,
		Category:    draft.Category,
		Date:        draft.Date,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[tx.ID] = tx
	return tx, nil
}

func (s *Store) Get(_ context.Context, id string) (core.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	tx, ok := s.items[id]
	if !ok {
		return core.Transaction{}, fmt.Errorf("%w: %s", core.ErrNotFound, id)
	}
	return tx, nil
}

func (s *Store) Update(_ context.Context, id string, draft core.TransactionDraft) (core.Transaction, error) {
	if err := draft.Validate(); err != nil {
		return core.Transaction{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	tx, ok := s.items[id]
	if !ok {
		return core.Transaction{}, fmt.Errorf("%w: %s", core.ErrNotFound, id)
	}
	tx.Title = draft.Title
	tx.Description = draft.Description
	tx.Amount = draft.Amount.Round(core.AmountScale)
	tx.Type = draft.Type
	tx.Category = draft.Category
	tx.Date = draft.Date
	tx.UpdatedAt = s.now().UTC()
	s.items[id] = tx
	return tx, nil
}

func (s *Store) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[id]; !ok {
		return fmt.Errorf("%w: %s", core.ErrNotFound, id)
	}
	delete(s.items, id)
	return nil
}

func (s *Store) List(_ context.Context, filter ports.ListFilter) ([]core.Transaction, error) {
	s.mu.RLock()
	out := make([]core.Transaction, 0, len(s.items))
	for _, tx := range s.items {
		if filter.Match(tx) {
			out = append(out, tx)
		}
	}
	s.mu.RUnlock()

	slices.SortFunc(out, ports.CompareListOrder)
	return out, nil
}

// Len returns the number of stored transactions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}
