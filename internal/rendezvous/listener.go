package rendezvous

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"sync/atomic"
	"time"

	"github.com/eleven-am/barrier/internal/adapters/transport"
	"github.com/eleven-am/barrier/internal/domain"
	"github.com/eleven-am/barrier/internal/ports"
)

const receiveErrorBackoff = 10 * time.Millisecond

type ListenerStats struct {
	Received      int64 `json:"received"`
	Malformed     int64 `json:"malformed"`
	Duplicates    int64 `json:"duplicates"`
	Unexpected    int64 `json:"unexpected"`
	ReceiveErrors int64 `json:"receive_errors"`
}

type ListenerDeps struct {
	Conn       ports.PacketConn
	Quorum     *domain.QuorumSet
	BufferSize int
	Logger     *slog.Logger
	// OnPeerReady, when set, is called after each new peer is admitted.
	OnPeerReady func(peer domain.PeerID, size, expected int)
}

// Listener owns the receiving socket. A worker goroutine decodes datagrams
// and hands messages to Run, which is the only writer of the quorum set.
type Listener struct {
	conn        ports.PacketConn
	quorum      *domain.QuorumSet
	bufferSize  int
	logger      *slog.Logger
	onPeerReady func(peer domain.PeerID, size, expected int)

	received      atomic.Int64
	malformed     atomic.Int64
	duplicates    atomic.Int64
	unexpected    atomic.Int64
	receiveErrors atomic.Int64
}

type inbound struct {
	msg  domain.ReadinessMessage
	from net.Addr
}

func NewListener(deps ListenerDeps) *Listener {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	bufferSize := deps.BufferSize
	if bufferSize <= 0 {
		bufferSize = domain.DefaultBufferSize
	}

	return &Listener{
		conn:        deps.Conn,
		quorum:      deps.Quorum,
		bufferSize:  bufferSize,
		logger:      logger.With("component", "listener"),
		onPeerReady: deps.OnPeerReady,
	}
}

// Run blocks until every expected peer has announced, ctx is done, or the
// socket dies. The socket is closed when Run returns.
func (l *Listener) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	defer l.conn.Close()

	if l.quorum.Complete() {
		return nil
	}

	messages := make(chan inbound, 64)
	go l.receive(ctx, messages)
	go func() {
		<-ctx.Done()
		_ = l.conn.Close()
	}()

	for {
		select {
		case in, ok := <-messages:
			if !ok {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				return domain.NewSocketError("receive loop", net.ErrClosed)
			}
			if l.admit(in) {
				return nil
			}
		case <-ctx.Done():
			if l.quorum.Complete() {
				return nil
			}
			return ctx.Err()
		}
	}
}

func (l *Listener) admit(in inbound) bool {
	outcome, size := l.quorum.Add(in.msg.SenderID)
	expected := l.quorum.Expected()

	switch outcome {
	case domain.AddedNew:
		l.logger.Info("peer ready",
			ports.FieldPeerID, string(in.msg.SenderID),
			"from", addrString(in.from),
			"ready", size,
			"expected", expected)
		if l.onPeerReady != nil {
			l.onPeerReady(in.msg.SenderID, size, expected)
		}
	case domain.AlreadyPresent:
		l.duplicates.Add(1)
		l.logger.Debug("duplicate announcement",
			ports.FieldPeerID, string(in.msg.SenderID),
			"ready", size)
	case domain.NotExpected:
		l.unexpected.Add(1)
		l.logger.Warn("announcement from peer outside membership ignored",
			ports.FieldPeerID, string(in.msg.SenderID),
			"from", addrString(in.from))
	}

	return size == expected
}

func (l *Listener) receive(ctx context.Context, messages chan<- inbound) {
	defer close(messages)
	buf := make([]byte, l.bufferSize)

	for {
		n, from, err := l.conn.ReadFrom(buf)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return
			}
			l.receiveErrors.Add(1)
			l.logger.Warn("receive failed", "error", domain.NewReceiveError(err))
			if sleepContext(ctx, receiveErrorBackoff) != nil {
				return
			}
			continue
		}

		l.received.Add(1)
		msg, err := transport.Decode(buf[:n])
		if err != nil {
			l.malformed.Add(1)
			l.logger.Debug("discarding datagram",
				"from", addrString(from),
				"bytes", n)
			continue
		}

		select {
		case messages <- inbound{msg: msg, from: from}:
		case <-ctx.Done():
			return
		}
	}
}

func (l *Listener) Stats() ListenerStats {
	return ListenerStats{
		Received:      l.received.Load(),
		Malformed:     l.malformed.Load(),
		Duplicates:    l.duplicates.Load(),
		Unexpected:    l.unexpected.Load(),
		ReceiveErrors: l.receiveErrors.Load(),
	}
}

func addrString(addr net.Addr) string {
	if addr == nil {
		return ""
	}
	return addr.String()
}
