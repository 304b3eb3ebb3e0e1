package readiness

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

type State int

const (
	StateInit State = iota
	StateResolving
	StateWaiting
	StateSatisfied
	StateDone
	StateFailed
)

var allStates = []State{StateInit, StateResolving, StateWaiting, StateSatisfied, StateDone, StateFailed}

func (s State) String() string {
	switch s {
	case StateInit:
		return "init"
	case StateResolving:
		return "resolving"
	case StateWaiting:
		return "waiting"
	case StateSatisfied:
		return "satisfied"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

func (s State) Terminal() bool {
	return s == StateDone || s == StateFailed
}

func (s State) CanTransitionTo(target State) bool {
	switch s {
	case StateInit:
		return target == StateResolving || target == StateFailed
	case StateResolving:
		return target == StateWaiting || target == StateFailed
	case StateWaiting:
		return target == StateSatisfied || target == StateFailed
	case StateSatisfied:
		return target == StateDone
	default:
		return false
	}
}

var ErrInvalidStateTransition = errors.New("invalid state transition")

type StateTransitionError struct {
	From    State
	To      State
	Message string
}

func (e *StateTransitionError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("invalid state transition from %s to %s: %s", e.From, e.To, e.Message)
	}
	return fmt.Sprintf("invalid state transition from %s to %s", e.From, e.To)
}

func (e *StateTransitionError) Is(target error) bool {
	return target == ErrInvalidStateTransition
}

type Transition struct {
	From   State
	To     State
	Reason string
	At     time.Time
}

type TransitionCallback func(from, to State, reason string)

// Manager tracks the barrier lifecycle. Every state is entered at most once,
// so waiting on a state is a close-once channel per state.
type Manager struct {
	mu           sync.RWMutex
	state        State
	err          error
	history      []Transition
	reached      map[State]chan struct{}
	onTransition []TransitionCallback
}

func NewManager() *Manager {
	m := &Manager{
		state:   StateInit,
		reached: make(map[State]chan struct{}, len(allStates)),
	}
	for _, s := range allStates {
		m.reached[s] = make(chan struct{})
	}
	close(m.reached[StateInit])
	return m
}

// OnTransition registers cb to run after every successful transition.
func (m *Manager) OnTransition(cb TransitionCallback) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onTransition = append(m.onTransition, cb)
}

func (m *Manager) TransitionTo(target State, reason string) error {
	return m.transition(target, reason, nil)
}

// Fail moves the manager to StateFailed and records err as the cause.
func (m *Manager) Fail(err error) error {
	reason := ""
	if err != nil {
		reason = err.Error()
	}
	return m.transition(StateFailed, reason, err)
}

func (m *Manager) transition(target State, reason string, cause error) error {
	m.mu.Lock()
	from := m.state
	if !from.CanTransitionTo(target) {
		m.mu.Unlock()
		return &StateTransitionError{From: from, To: target, Message: reason}
	}

	m.state = target
	if cause != nil {
		m.err = cause
	}
	m.history = append(m.history, Transition{From: from, To: target, Reason: reason, At: time.Now()})
	close(m.reached[target])
	callbacks := append([]TransitionCallback(nil), m.onTransition...)
	m.mu.Unlock()

	for _, cb := range callbacks {
		cb(from, target, reason)
	}
	return nil
}

func (m *Manager) GetState() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

func (m *Manager) Err() error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.err
}

func (m *Manager) History() []Transition {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]Transition(nil), m.history...)
}

func (m *Manager) IsReady() bool {
	s := m.GetState()
	return s == StateSatisfied || s == StateDone
}

// WaitFor blocks until target is reached. If the barrier fails first the
// failure cause is returned.
func (m *Manager) WaitFor(ctx context.Context, target State) error {
	select {
	case <-m.reached[target]:
		return nil
	default:
	}

	failed := m.reached[StateFailed]
	if target == StateFailed {
		failed = nil
	}

	select {
	case <-m.reached[target]:
		return nil
	case <-failed:
		if err := m.Err(); err != nil {
			return err
		}
		return fmt.Errorf("barrier failed before reaching %s", target)
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *Manager) WaitUntilReady(ctx context.Context) error {
	return m.WaitFor(ctx, StateSatisfied)
}

func (m *Manager) WaitUntilReadyTimeout(timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return m.WaitUntilReady(ctx)
}
