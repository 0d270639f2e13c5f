package planner

import (
	"context"
	"log"
	"sync"
)

// Session tracks one user's current window across navigations. Loads
// are not cancelled when the user navigates away; instead every
// navigation bumps a generation counter and a load result carrying a
// superseded generation is discarded on arrival. The latest intent
// wins, late responses never overwrite a newer window.
type Session struct {
	svc *Service

	mu     sync.Mutex
	gen    uint64
	window Window
	state  *PlanState
}

func NewSession(svc *Service, w Window) *Session {
	return &Session{svc: svc, window: w}
}

// Window returns the window the session currently points at.
func (s *Session) Window() Window {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.window
}

// State returns the last accepted plan state, nil before the first
// completed load.
func (s *Session) State() *PlanState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Load (re)loads the session's current window.
func (s *Session) Load(ctx context.Context) (*PlanState, error) {
	s.mu.Lock()
	w := s.window
	s.mu.Unlock()
	return s.loadAs(ctx, w)
}

// Navigate shifts the window and loads it. If another navigation
// happens while this load is in flight, the stale result is dropped
// and the session keeps the newer state.
func (s *Session) Navigate(ctx context.Context, dir Direction) (*PlanState, error) {
	s.mu.Lock()
	w := Shift(s.window, dir)
	s.mu.Unlock()
	return s.loadAs(ctx, w)
}

func (s *Session) loadAs(ctx context.Context, w Window) (*PlanState, error) {
	s.mu.Lock()
	s.gen++
	gen := s.gen
	s.window = w
	s.mu.Unlock()

	state, err := s.svc.LoadWindow(ctx, w)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		log.Printf("INFO planner: discarding stale load for window %s", w.StartDate())
		return s.state, nil
	}
	s.state = state
	return state, nil
}

// Save persists the session's current state. A save that finishes
// after a newer navigation still writes to the store (saves are never
// cancelled) but its outcome no longer belongs to the visible window.
func (s *Session) Save(ctx context.Context) (*SaveReport, error) {
	s.mu.Lock()
	state := s.state
	s.mu.Unlock()
	if state == nil {
		return nil, ErrInvalidRequest
	}
	return s.svc.SaveWindow(ctx, state)
}
