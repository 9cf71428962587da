// Package fetch tracks the loading, error and data state of a single-shot
// request-response action, so a view can render whatever state the latest
// call left behind.
package fetch

import (
	"context"
	"sync"
)

// State is the lifecycle position of a Tracker.
type State int

const (
	NotStarted State = iota
	InFlight
	Settled
)

func (s State) String() string {
	switch s {
	case NotStarted:
		return "not_started"
	case InFlight:
		return "in_flight"
	case Settled:
		return "settled"
	default:
		return "unknown"
	}
}

// Action is the call a Tracker wraps.
type Action[A, T any] func(ctx context.Context, arg A) (T, error)

// Snapshot is a copy of a Tracker's state at one instant.
type Snapshot[T any] struct {
	State State
	Data  T
	Err   error
}

// Tracker wraps an Action. Calls may overlap; there is no cancellation or
// queueing, and whichever call settles last decides the final state.
type Tracker[A, T any] struct {
	action Action[A, T]

	mu    sync.Mutex
	state State
	data  T
	err   error
}

// New returns a NotStarted tracker around action.
func New[A, T any](action Action[A, T]) *Tracker[A, T] {
	return &Tracker[A, T]{action: action}
}

// Call marks the tracker in flight, runs the action and records its result.
// The result is also returned to the caller.
func (t *Tracker[A, T]) Call(ctx context.Context, arg A) (T, error) {
	t.mu.Lock()
	t.state = InFlight
	t.err = nil
	t.mu.Unlock()

	data, err := t.action(ctx, arg)

	t.mu.Lock()
	defer t.mu.Unlock()
	t.state = Settled
	if err != nil {
		t.err = err
		return data, err
	}
	t.data = data
	return data, nil
}

// Snapshot returns the current state, data and error together.
func (t *Tracker[A, T]) Snapshot() Snapshot[T] {
	t.mu.Lock()
	defer t.mu.Unlock()
	return Snapshot[T]{State: t.state, Data: t.data, Err: t.err}
}

// Loading reports whether a call is in flight.
func (t *Tracker[A, T]) Loading() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state == InFlight
}

// SetData replaces the tracked data without touching state or error.
func (t *Tracker[A, T]) SetData(data T) {
	t.mu.Lock()
	t.data = data
	t.mu.Unlock()
}
