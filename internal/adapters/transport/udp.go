package transport

import (
	"context"
	"io"
	"log/slog"
	"net"
	"net/netip"

	"github.com/eleven-am/barrier/internal/domain"
	"github.com/eleven-am/barrier/internal/helpers/netutil"
	"github.com/eleven-am/barrier/internal/ports"
)

type UDPTransport struct {
	network  string
	bindAddr string
	port     int
	logger   *slog.Logger
}

func NewUDPTransport(cfg domain.BarrierConfig, logger *slog.Logger) *UDPTransport {
	if logger == nil {
		logger = slog.Default()
	}
	return &UDPTransport{
		network:  cfg.Network,
		bindAddr: cfg.BindAddr,
		port:     cfg.Port,
		logger:   logger.With("component", "transport", "adapter", "udp"),
	}
}

func (t *UDPTransport) Listen(ctx context.Context) (ports.PacketConn, error) {
	conn, port, err := netutil.ListenUDP(t.network, t.bindAddr, t.port)
	if err != nil {
		return nil, err
	}
	t.logger.Info("listening for readiness datagrams",
		"network", t.network,
		"address", conn.LocalAddr().String(),
		"port", port)
	return conn, nil
}

func (t *UDPTransport) NewSender(ctx context.Context) (ports.PacketSender, error) {
	conn, err := netutil.OpenUDPSender(t.network)
	if err != nil {
		return nil, err
	}
	return &UDPSender{conn: conn}, nil
}

type UDPSender struct {
	conn *net.UDPConn
}

func (s *UDPSender) Send(ctx context.Context, addr netip.AddrPort, payload []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	n, err := s.conn.WriteToUDPAddrPort(payload, addr)
	if err != nil {
		return err
	}
	if n != len(payload) {
		return io.ErrShortWrite
	}
	return nil
}

func (s *UDPSender) Close() error {
	return s.conn.Close()
}
