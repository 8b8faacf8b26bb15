// Package state holds the explicit application state: load phase, active view
// and active list filter.
package state

import (
	"fmt"
	"sync"

	"moneytracker/internal/filter"
)

type Phase int

const (
	Idle Phase = iota
	Loading
	Loaded
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Loaded:
		return "loaded"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

type View string

const (
	ViewDashboard    View = "dashboard"
	ViewTransactions View = "transactions"
	ViewCharts       View = "charts"
)

func (v View) IsValid() bool {
	switch v {
	case ViewDashboard, ViewTransactions, ViewCharts:
		return true
	default:
		return false
	}
}

// AppState is safe for concurrent use.
type AppState struct {
	mu     sync.RWMutex
	phase  Phase
	view   View
	filter filter.State
}

// New returns the initial state: idle, on the dashboard, no filter.
func New() *AppState {
	return &AppState{
		phase:  Idle,
		view:   ViewDashboard,
		filter: filter.Default(),
	}
}

func (s *AppState) Phase() Phase {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.phase
}

// BeginLoad moves to Loading from any phase.
func (s *AppState) BeginLoad() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.phase = Loading
}

// FinishLoad moves to Loaded. It is also used after a partial failure.
func (s *AppState) FinishLoad() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.phase = Loaded
}

func (s *AppState) View() View {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.view
}

func (s *AppState) SetView(v View) error {
	if !v.IsValid() {
		return fmt.Errorf("unknown view %q", v)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view = v
	return nil
}

func (s *AppState) Filter() filter.State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filter
}

// SetFilter validates and installs f as the active filter.
func (s *AppState) SetFilter(f filter.State) error {
	if err := f.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filter = f
	return nil
}

func (s *AppState) ClearFilter() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filter.Clear()
}
