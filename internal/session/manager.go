package session

import (
	"errors"
	"sync"

	"github.com/rs/zerolog"
)

// ErrStale is returned by DispatchAt when a login or logout happened after
// the caller read the generation.
var ErrStale = errors.New("stale result: session changed")

// Manager owns the current state. All changes go through Dispatch, which
// serializes them, so the last dispatched action wins.
type Manager struct {
	mu          sync.Mutex
	state       State
	generation  uint64
	subscribers map[int]func(State)
	nextSub     int
	logger      zerolog.Logger
}

func NewManager(logger zerolog.Logger) *Manager {
	return &Manager{
		subscribers: make(map[int]func(State)),
		logger:      logger.With().Str("component", "session").Logger(),
	}
}

// Snapshot returns a copy of the current state.
func (m *Manager) Snapshot() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.Clone()
}

// Generation identifies the current session; it changes on login and logout.
func (m *Manager) Generation() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.generation
}

// Dispatch applies the action and returns the resulting state.
func (m *Manager) Dispatch(a Action) (State, error) {
	m.mu.Lock()
	next, err := m.apply(a)
	subs := m.subscriberList()
	m.mu.Unlock()

	if err != nil {
		return next, err
	}
	m.notify(subs, next)
	return next, nil
}

// DispatchAt applies the action only if the session generation still equals
// gen. Results of requests started under an earlier session are discarded.
func (m *Manager) DispatchAt(gen uint64, a Action) (State, error) {
	m.mu.Lock()
	if m.generation != gen {
		current := m.state.Clone()
		m.mu.Unlock()
		m.logger.Debug().Uint64("want", gen).Msgf("discarding %T", a)
		return current, ErrStale
	}
	next, err := m.apply(a)
	subs := m.subscriberList()
	m.mu.Unlock()

	if err != nil {
		return next, err
	}
	m.notify(subs, next)
	return next, nil
}

// Subscribe registers fn to receive every new state after a successful
// dispatch. The returned function unsubscribes.
func (m *Manager) Subscribe(fn func(State)) func() {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.nextSub
	m.nextSub++
	m.subscribers[id] = fn

	return func() {
		m.mu.Lock()
		delete(m.subscribers, id)
		m.mu.Unlock()
	}
}

// must hold m.mu
func (m *Manager) apply(a Action) (State, error) {
	next, err := Reduce(m.state, a)
	if err != nil {
		m.logger.Error().Err(err).Msg("dispatch rejected")
		return m.state.Clone(), err
	}

	switch a.(type) {
	case Login, Logout:
		m.generation++
	}
	m.state = next
	m.logger.Debug().Uint64("generation", m.generation).Msgf("dispatched %T", a)
	return next.Clone(), nil
}

// must hold m.mu
func (m *Manager) subscriberList() []func(State) {
	subs := make([]func(State), 0, len(m.subscribers))
	for _, fn := range m.subscribers {
		subs = append(subs, fn)
	}
	return subs
}

func (m *Manager) notify(subs []func(State), s State) {
	for _, fn := range subs {
		fn(s.Clone())
	}
}
