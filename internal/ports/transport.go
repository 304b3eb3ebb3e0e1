package ports

import (
	"context"
	"net"
	"net/netip"
)

// PacketSender sends single datagrams over a connectionless channel.
type PacketSender interface {
	Send(ctx context.Context, addr netip.AddrPort, payload []byte) error
	Close() error
}

// PacketConn is the receiving endpoint of the rendezvous.
type PacketConn interface {
	ReadFrom(buf []byte) (int, net.Addr, error)
	LocalAddr() net.Addr
	Close() error
}

// Transport opens the two endpoints a barrier needs.
type Transport interface {
	Listen(ctx context.Context) (PacketConn, error)
	NewSender(ctx context.Context) (PacketSender, error)
}
