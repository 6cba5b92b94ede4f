// Package store is the single source of truth for the client. It caches what the
// remote API returned, coordinates the mutations the user triggers, and publishes an
// immutable State snapshot to subscribers after every change.
package store

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/sells-group/health-cli/pkg/healthapi"
)

// Listener receives the state after a change. Listeners run on the goroutine that
// made the change, outside the store lock, and must not block.
type Listener func(State)

// Options tune intent behavior.
type Options struct {
	// RollbackOutreach reverts an optimistic approve or reject when the server
	// rejects it. By default the optimistic status is kept and the failure logged.
	RollbackOutreach bool
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the store logger. Defaults to zap.L().
func WithLogger(l *zap.Logger) Option {
	return func(s *Store) {
		s.log = l
	}
}

// WithOptions sets intent options.
func WithOptions(o Options) Option {
	return func(s *Store) {
		s.opts = o
	}
}

// Store owns the client state.
type Store struct {
	client healthapi.Client
	log    *zap.Logger
	opts   Options

	mu           sync.Mutex
	state        State
	listeners    map[int]Listener
	nextListener int
	cancelSelect context.CancelFunc
}

// New creates a store over client. The initial state is loading with no data.
func New(client healthapi.Client, opts ...Option) *Store {
	s := &Store{
		client:    client,
		state:     initialState(),
		listeners: make(map[int]Listener),
	}
	for _, o := range opts {
		o(s)
	}
	if s.log == nil {
		s.log = zap.L().Named("store")
	}
	return s
}

// Snapshot returns the current state.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Subscribe registers fn to be called after every change. The returned function
// removes the subscription; calling it more than once is a no-op.
func (s *Store) Subscribe(fn Listener) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextListener
	s.nextListener++
	s.listeners[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.listeners, id)
			s.mu.Unlock()
		})
	}
}

// Dispatch applies actions as one change and publishes it once.
func (s *Store) Dispatch(actions ...Action) (State, bool) {
	return s.transition(func(State) []Action { return actions })
}

// Close cancels any in-flight detail fetch.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancelSelect != nil {
		s.cancelSelect()
		s.cancelSelect = nil
	}
}

// transition computes actions from the current state and applies them atomically.
// Subscribers are notified after the lock is released.
func (s *Store) transition(plan func(State) []Action) (State, bool) {
	s.mu.Lock()
	next, changed := s.applyLocked(plan(s.state))
	listeners := s.listenersLocked(changed)
	s.mu.Unlock()

	notify(listeners, next)
	return next, changed
}

func (s *Store) applyLocked(actions []Action) (State, bool) {
	next, changed := reduceAll(s.state, actions)
	if !changed {
		return s.state, false
	}
	next.Version = s.state.Version + 1
	s.state = next
	return next, true
}

func (s *Store) listenersLocked(changed bool) []Listener {
	if !changed || len(s.listeners) == 0 {
		return nil
	}
	out := make([]Listener, 0, len(s.listeners))
	for _, l := range s.listeners {
		out = append(out, l)
	}
	return out
}

func notify(listeners []Listener, st State) {
	for _, l := range listeners {
		l(st)
	}
}
