package ports

import (
	"context"
	"net/netip"

	"github.com/eleven-am/barrier/internal/domain"
)

// MembershipSource yields the raw membership entries, one per line of the
// underlying source.
type MembershipSource interface {
	Entries() ([]string, error)
	Name() string
}

// AddressResolver maps a peer id onto the datagram address its listener is
// bound to.
type AddressResolver interface {
	ResolvePeer(ctx context.Context, peer domain.PeerID) (netip.AddrPort, error)
}
