package domain

import (
	"context"
	"sort"
	"sync"
)

type AddOutcome int

const (
	AddedNew AddOutcome = iota
	AlreadyPresent
	NotExpected
)

func (o AddOutcome) String() string {
	switch o {
	case AddedNew:
		return "added"
	case AlreadyPresent:
		return "duplicate"
	case NotExpected:
		return "unexpected"
	default:
		return "unknown"
	}
}

// QuorumSet accumulates the peers observed as ready. Insertion and the
// completion check happen under one lock, and Done is closed exactly once
// when every expected peer has been seen.
type QuorumSet struct {
	mu       sync.Mutex
	expected PeerSet
	ready    map[PeerID]struct{}
	done     chan struct{}
}

func NewQuorumSet(expected PeerSet) *QuorumSet {
	q := &QuorumSet{
		expected: expected,
		ready:    make(map[PeerID]struct{}, expected.Len()),
		done:     make(chan struct{}),
	}
	if expected.Len() == 0 {
		close(q.done)
	}
	return q
}

// Add records id as ready and returns the outcome with the size after the
// insert. Ids outside the expected set are not admitted.
func (q *QuorumSet) Add(id PeerID) (AddOutcome, int) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if !q.expected.Contains(id) {
		return NotExpected, len(q.ready)
	}
	if _, ok := q.ready[id]; ok {
		return AlreadyPresent, len(q.ready)
	}

	q.ready[id] = struct{}{}
	if len(q.ready) == q.expected.Len() {
		close(q.done)
	}
	return AddedNew, len(q.ready)
}

func (q *QuorumSet) Size() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.ready)
}

func (q *QuorumSet) Expected() int {
	return q.expected.Len()
}

func (q *QuorumSet) Complete() bool {
	select {
	case <-q.done:
		return true
	default:
		return false
	}
}

func (q *QuorumSet) Done() <-chan struct{} {
	return q.done
}

func (q *QuorumSet) Wait(ctx context.Context) error {
	select {
	case <-q.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (q *QuorumSet) Members() []PeerID {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := make([]PeerID, 0, len(q.ready))
	for id := range q.ready {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Missing lists the expected peers that have not announced yet.
func (q *QuorumSet) Missing() []PeerID {
	q.mu.Lock()
	defer q.mu.Unlock()

	var out []PeerID
	for _, id := range q.expected.Members() {
		if _, ok := q.ready[id]; !ok {
			out = append(out, id)
		}
	}
	return out
}
