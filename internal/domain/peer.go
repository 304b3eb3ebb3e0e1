package domain

import "sort"

// PeerID is the hostname a peer announces itself with. Comparison is exact.
type PeerID string

// PeerSet is the immutable set of remote peers a barrier waits for.
type PeerSet struct {
	members map[PeerID]struct{}
}

func NewPeerSet(ids ...PeerID) PeerSet {
	members := make(map[PeerID]struct{}, len(ids))
	for _, id := range ids {
		members[id] = struct{}{}
	}
	return PeerSet{members: members}
}

func (s PeerSet) Len() int {
	return len(s.members)
}

func (s PeerSet) Contains(id PeerID) bool {
	_, ok := s.members[id]
	return ok
}

// Members returns the peers in lexical order.
func (s PeerSet) Members() []PeerID {
	out := make([]PeerID, 0, len(s.members))
	for id := range s.members {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (s PeerSet) Strings() []string {
	members := s.Members()
	out := make([]string, len(members))
	for i, id := range members {
		out[i] = string(id)
	}
	return out
}

// ReadinessMessage is the only message of the rendezvous protocol.
type ReadinessMessage struct {
	SenderID PeerID
}
