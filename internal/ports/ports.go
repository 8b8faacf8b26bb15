// Package ports declares the storage contract shared by every backend.
package ports

import (
	"cmp"
	"context"

	"moneytracker/internal/core"
)

// ListFilter narrows a listing. Zero fields match everything.
type ListFilter struct {
	Type     core.TransactionType
	Category string
	Year     int
	Month    int
}

// Match reports whether tx satisfies f.
func (f ListFilter) Match(tx core.Transaction) bool {
	if f.Type != "" && tx.Type != f.Type {
		return false
	}
	if f.Category != "" && tx.Category != f.Category {
		return false
	}
	if f.Year != 0 && tx.Date.Year() != f.Year {
		return false
	}
	if f.Month != 0 && int(tx.Date.Month()) != f.Month {
		return false
	}
	return true
}

// TransactionRepository persists transactions. List returns newest first:
// date descending, then creation time descending.
type TransactionRepository interface {
	Create(ctx context.Context, draft core.TransactionDraft) (core.Transaction, error)
	Get(ctx context.Context, id string) (core.Transaction, error)
	Update(ctx context.Context, id string, draft core.TransactionDraft) (core.Transaction, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter ListFilter) ([]core.Transaction, error)
}

// CompareListOrder orders transactions the way List returns them.
func CompareListOrder(a, b core.Transaction) int {
	if c := b.Date.Compare(a.Date.Time); c != 0 {
		return c
	}
	if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
		return c
	}
	return cmp.Compare(b.ID, a.ID)
}
