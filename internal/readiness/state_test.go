package readiness

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestManagerHappyPath(t *testing.T) {
	mgr := NewManager()

	steps := []State{StateResolving, StateWaiting, StateSatisfied, StateDone}
	for _, s := range steps {
		if err := mgr.TransitionTo(s, ""); err != nil {
			t.Fatalf("TransitionTo(%s): %v", s, err)
		}
	}

	if state := mgr.GetState(); state != StateDone {
		t.Fatalf("GetState() = %s, want %s", state, StateDone)
	}
	if got := len(mgr.History()); got != len(steps) {
		t.Fatalf("len(History()) = %d, want %d", got, len(steps))
	}
	if !mgr.IsReady() {
		t.Fatalf("expected IsReady after done")
	}
}

func TestManagerRejectsInvalidTransition(t *testing.T) {
	mgr := NewManager()

	err := mgr.TransitionTo(StateSatisfied, "skipping ahead")
	if err == nil {
		t.Fatalf("expected error for init -> satisfied")
	}
	if !errors.Is(err, ErrInvalidStateTransition) {
		t.Fatalf("expected ErrInvalidStateTransition, got %v", err)
	}
	if state := mgr.GetState(); state != StateInit {
		t.Fatalf("state changed on rejected transition: %s", state)
	}
}

func TestStateCanTransitionTo(t *testing.T) {
	tests := []struct {
		from, to State
		want     bool
	}{
		{StateInit, StateResolving, true},
		{StateInit, StateFailed, true},
		{StateResolving, StateWaiting, true},
		{StateResolving, StateFailed, true},
		{StateWaiting, StateSatisfied, true},
		{StateWaiting, StateFailed, true},
		{StateSatisfied, StateDone, true},
		{StateSatisfied, StateFailed, false},
		{StateDone, StateFailed, false},
		{StateFailed, StateResolving, false},
		{StateWaiting, StateResolving, false},
	}

	for _, tt := range tests {
		if got := tt.from.CanTransitionTo(tt.to); got != tt.want {
			t.Errorf("%s -> %s = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestManagerWaitUntilReady(t *testing.T) {
	mgr := NewManager()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- mgr.WaitUntilReady(ctx)
	}()

	select {
	case <-time.After(20 * time.Millisecond):
	case err := <-done:
		t.Fatalf("expected wait to block, got %v", err)
	}

	_ = mgr.TransitionTo(StateResolving, "")
	_ = mgr.TransitionTo(StateWaiting, "")
	_ = mgr.TransitionTo(StateSatisfied, "quorum")

	if err := <-done; err != nil {
		t.Fatalf("expected wait to succeed after quorum, got %v", err)
	}

	if err := mgr.WaitUntilReady(context.Background()); err != nil {
		t.Fatalf("expected immediate success once satisfied, got %v", err)
	}
}

func TestManagerWaitReturnsFailureCause(t *testing.T) {
	mgr := NewManager()
	cause := errors.New("bind failed")

	done := make(chan error, 1)
	go func() {
		done <- mgr.WaitUntilReady(context.Background())
	}()

	_ = mgr.TransitionTo(StateResolving, "")
	if err := mgr.Fail(cause); err != nil {
		t.Fatalf("Fail: %v", err)
	}

	if err := <-done; !errors.Is(err, cause) {
		t.Fatalf("expected failure cause, got %v", err)
	}
	if !errors.Is(mgr.Err(), cause) {
		t.Fatalf("Err() = %v, want %v", mgr.Err(), cause)
	}
	if err := mgr.WaitFor(context.Background(), StateFailed); err != nil {
		t.Fatalf("WaitFor(failed) = %v", err)
	}
}

func TestManagerWaitUntilReadyTimeout(t *testing.T) {
	mgr := NewManager()

	start := time.Now()
	err := mgr.WaitUntilReadyTimeout(30 * time.Millisecond)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
	if time.Since(start) < 20*time.Millisecond {
		t.Fatalf("wait returned too quickly")
	}
}

func TestManagerCallbacks(t *testing.T) {
	mgr := NewManager()

	var seen []Transition
	mgr.OnTransition(func(from, to State, reason string) {
		seen = append(seen, Transition{From: from, To: to, Reason: reason})
	})

	_ = mgr.TransitionTo(StateResolving, "start")
	_ = mgr.Fail(errors.New("no peers"))

	if len(seen) != 2 {
		t.Fatalf("callbacks = %d, want 2", len(seen))
	}
	if seen[1].From != StateResolving || seen[1].To != StateFailed || seen[1].Reason != "no peers" {
		t.Fatalf("unexpected transition %+v", seen[1])
	}
}
