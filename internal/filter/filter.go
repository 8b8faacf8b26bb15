// Package filter narrows a transaction collection by type, month and category.
package filter

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"

	"moneytracker/internal/core"
)

// All disables the type or category predicate.
const All = "all"

var (
	ErrIncompatible    = errors.New("filters select disjoint values")
	ErrInvalidType     = errors.New("invalid type filter")
	ErrInvalidMonth    = errors.New("invalid month filter")
	ErrInvalidCategory = errors.New("invalid category filter")
)

// State is the active list filter. The zero value is not the default;
// use Default.
type State struct {
	Type     string `json:"type"`
	Month    string `json:"month,omitempty"`
	Category string `json:"category"`
}

// Default returns the identity filter.
func Default() State {
	return State{Type: All, Category: All}
}

// Clear resets s to the default state.
func (s *State) Clear() {
	*s = Default()
}

// IsDefault reports whether s selects everything.
func (s State) IsDefault() bool {
	return s.typ() == All && s.Month == "" && s.category() == All
}

func (s State) Validate() error {
	switch s.typ() {
	case All, string(core.Income), string(core.Expense):
	default:
		return fmt.Errorf("%w: %q", ErrInvalidType, s.Type)
	}
	if s.Month != "" {
		if _, _, err := core.ParseMonthKey(s.Month); err != nil {
			return fmt.Errorf("%w: %q", ErrInvalidMonth, s.Month)
		}
	}
	if c := s.category(); c != All && !core.IsKnownCategory(c) {
		return fmt.Errorf("%w: %q", ErrInvalidCategory, s.Category)
	}
	return nil
}

// Match reports whether tx satisfies every predicate of s.
func (s State) Match(tx core.Transaction) bool {
	if t := s.typ(); t != All && string(tx.Type) != t {
		return false
	}
	if s.Month != "" && tx.MonthKey() != s.Month {
		return false
	}
	if c := s.category(); c != All && tx.Category != c {
		return false
	}
	return true
}

// Apply returns the transactions matching s in their input order.
func Apply(txs []core.Transaction, s State) []core.Transaction {
	out := make([]core.Transaction, 0, len(txs))
	for _, tx := range txs {
		if s.Match(tx) {
			out = append(out, tx)
		}
	}
	return out
}

// And combines two states into one whose Apply equals applying a then b.
// It returns ErrIncompatible when a and b pin different values of the same
// predicate.
func And(a, b State) (State, error) {
	typ, err := combine(a.typ(), b.typ(), All)
	if err != nil {
		return State{}, fmt.Errorf("type: %w", err)
	}
	month, err := combine(a.Month, b.Month, "")
	if err != nil {
		return State{}, fmt.Errorf("month: %w", err)
	}
	category, err := combine(a.category(), b.category(), All)
	if err != nil {
		return State{}, fmt.Errorf("category: %w", err)
	}
	return State{Type: typ, Month: month, Category: category}, nil
}

// Query renders s as the backend list query: type, category, month and year.
func (s State) Query() url.Values {
	q := url.Values{}
	if t := s.typ(); t != All {
		q.Set("type", t)
	}
	if c := s.category(); c != All {
		q.Set("category", c)
	}
	if s.Month != "" {
		if year, month, err := core.ParseMonthKey(s.Month); err == nil {
			q.Set("year", strconv.Itoa(year))
			q.Set("month", strconv.Itoa(month))
		}
	}
	return q
}

func (s State) typ() string {
	if s.Type == "" {
		return All
	}
	return s.Type
}

func (s State) category() string {
	if s.Category == "" {
		return All
	}
	return s.Category
}

func combine(a, b, wildcard string) (string, error) {
	switch {
	case a == wildcard:
		return b, nil
	case b == wildcard || a == b:
		return a, nil
	default:
		return "", fmt.Errorf("%w: %q and %q", ErrIncompatible, a, b)
	}
}
