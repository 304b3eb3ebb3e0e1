package rendezvous

import (
	"context"
	"errors"
	"net"
	"net/netip"
	"sync"

	"github.com/eleven-am/barrier/internal/domain"
	"github.com/eleven-am/barrier/internal/ports"
)

type sentPacket struct {
	To      netip.AddrPort
	Payload string
}

type fakeSender struct {
	mu     sync.Mutex
	sent   []sentPacket
	failTo map[netip.AddrPort]error
	closed bool
}

func (s *fakeSender) Send(ctx context.Context, addr netip.AddrPort, payload []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, sentPacket{To: addr, Payload: string(payload)})
	if err := s.failTo[addr]; err != nil {
		return err
	}
	return nil
}

func (s *fakeSender) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *fakeSender) packets() []sentPacket {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]sentPacket(nil), s.sent...)
}

type fakeResolver struct {
	addrs map[domain.PeerID]netip.AddrPort
}

func (r *fakeResolver) ResolvePeer(_ context.Context, peer domain.PeerID) (netip.AddrPort, error) {
	addr, ok := r.addrs[peer]
	if !ok {
		return netip.AddrPort{}, domain.NewResolutionError(peer, errors.New("no such host"))
	}
	return addr, nil
}

type datagram struct {
	payload []byte
	err     error
}

// fakeConn delivers queued datagrams until closed.
type fakeConn struct {
	datagrams chan datagram
	closed    chan struct{}
	once      sync.Once
}

func newFakeConn() *fakeConn {
	return &fakeConn{
		datagrams: make(chan datagram, 16),
		closed:    make(chan struct{}),
	}
}

func (c *fakeConn) deliver(payload string) {
	c.datagrams <- datagram{payload: []byte(payload)}
}

func (c *fakeConn) ReadFrom(buf []byte) (int, net.Addr, error) {
	select {
	case d := <-c.datagrams:
		if d.err != nil {
			return 0, nil, d.err
		}
		n := copy(buf, d.payload)
		return n, &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 5000}, nil
	case <-c.closed:
		return 0, nil, net.ErrClosed
	}
}

func (c *fakeConn) LocalAddr() net.Addr {
	return &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 5000}
}

func (c *fakeConn) Close() error {
	c.once.Do(func() { close(c.closed) })
	return nil
}

func (c *fakeConn) isClosed() bool {
	select {
	case <-c.closed:
		return true
	default:
		return false
	}
}

type fakeTransport struct {
	conn      *fakeConn
	sender    *fakeSender
	listenErr error
}

func (t *fakeTransport) Listen(context.Context) (ports.PacketConn, error) {
	if t.listenErr != nil {
		return nil, t.listenErr
	}
	return t.conn, nil
}

func (t *fakeTransport) NewSender(context.Context) (ports.PacketSender, error) {
	return t.sender, nil
}
