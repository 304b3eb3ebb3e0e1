package transport

import (
	"context"
	"fmt"
	"net"
	"net/netip"

	"github.com/eleven-am/barrier/internal/domain"
	"github.com/eleven-am/barrier/internal/ports"
)

// DNSResolver resolves a peer's hostname on every call, so a peer whose
// record appears late in boot is picked up on a later round.
type DNSResolver struct {
	resolver *net.Resolver
	network  string
	port     uint16
}

func NewDNSResolver(cfg domain.BarrierConfig) *DNSResolver {
	return &DNSResolver{
		resolver: net.DefaultResolver,
		network:  cfg.IPNetwork(),
		port:     uint16(cfg.Port),
	}
}

func (r *DNSResolver) ResolvePeer(ctx context.Context, peer domain.PeerID) (netip.AddrPort, error) {
	addrs, err := r.resolver.LookupNetIP(ctx, r.network, string(peer))
	if err != nil {
		return netip.AddrPort{}, domain.NewResolutionError(peer, err)
	}
	if len(addrs) == 0 {
		return netip.AddrPort{}, domain.NewResolutionError(peer, fmt.Errorf("no %s addresses found", r.network))
	}
	return netip.AddrPortFrom(addrs[0].Unmap(), r.port), nil
}

// StaticResolver answers from a fixed table of peer addresses.
type StaticResolver struct {
	addrs map[domain.PeerID]netip.AddrPort
}

func NewStaticResolver(addrs map[domain.PeerID]netip.AddrPort) *StaticResolver {
	copied := make(map[domain.PeerID]netip.AddrPort, len(addrs))
	for id, addr := range addrs {
		copied[id] = addr
	}
	return &StaticResolver{addrs: copied}
}

// ParseStaticResolver builds a StaticResolver from "ip:port" strings.
func ParseStaticResolver(overrides map[string]string) (*StaticResolver, error) {
	addrs := make(map[domain.PeerID]netip.AddrPort, len(overrides))
	for id, raw := range overrides {
		addr, err := netip.ParseAddrPort(raw)
		if err != nil {
			return nil, domain.NewConfigError("parse address override",
				fmt.Errorf("peer %q: %w", id, err))
		}
		addrs[domain.PeerID(id)] = addr
	}
	return &StaticResolver{addrs: addrs}, nil
}

func (r *StaticResolver) Has(peer domain.PeerID) bool {
	_, ok := r.addrs[peer]
	return ok
}

func (r *StaticResolver) ResolvePeer(_ context.Context, peer domain.PeerID) (netip.AddrPort, error) {
	addr, ok := r.addrs[peer]
	if !ok {
		return netip.AddrPort{}, domain.NewResolutionError(peer, fmt.Errorf("no static address"))
	}
	return addr, nil
}

// OverrideResolver consults the static table first and falls back to the
// next resolver for peers it does not know.
type OverrideResolver struct {
	overrides *StaticResolver
	fallback  ports.AddressResolver
}

func NewOverrideResolver(overrides *StaticResolver, fallback ports.AddressResolver) *OverrideResolver {
	return &OverrideResolver{overrides: overrides, fallback: fallback}
}

func (r *OverrideResolver) ResolvePeer(ctx context.Context, peer domain.PeerID) (netip.AddrPort, error) {
	if r.overrides != nil && r.overrides.Has(peer) {
		return r.overrides.ResolvePeer(ctx, peer)
	}
	return r.fallback.ResolvePeer(ctx, peer)
}
