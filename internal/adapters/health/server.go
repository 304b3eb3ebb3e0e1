package health

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"sync"

	"github.com/eleven-am/barrier/internal/domain"
	"github.com/eleven-am/barrier/internal/readiness"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
)

// Server exposes the barrier state through the standard gRPC health
// protocol. The named service and the empty service report the same status.
type Server struct {
	addr    string
	service string
	logger  *slog.Logger

	mu       sync.Mutex
	health   *health.Server
	server   *grpc.Server
	listener net.Listener
	started  bool
}

func NewServer(addr, service string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if service == "" {
		service = domain.DefaultHealthService
	}

	hs := health.NewServer()
	hs.SetServingStatus("", grpc_health_v1.HealthCheckResponse_NOT_SERVING)
	hs.SetServingStatus(service, grpc_health_v1.HealthCheckResponse_NOT_SERVING)

	return &Server{
		addr:    addr,
		service: service,
		logger:  logger.With("component", "health-server"),
		health:  hs,
	}
}

func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return errors.New("health server already started")
	}

	var lc net.ListenConfig
	listener, err := lc.Listen(ctx, "tcp", s.addr)
	if err != nil {
		s.logger.Error("failed to listen", "error", err, "address", s.addr)
		return domain.NewSocketError("health listen", err)
	}
	s.listener = listener

	s.server = grpc.NewServer()
	grpc_health_v1.RegisterHealthServer(s.server, s.health)
	s.started = true

	go func() {
		s.logger.Info("health server starting", "address", listener.Addr().String())
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			s.logger.Error("health server failed", "error", err)
		}
	}()

	return nil
}

func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.addr
}

func (s *Server) SetServing(serving bool) {
	status := grpc_health_v1.HealthCheckResponse_NOT_SERVING
	if serving {
		status = grpc_health_v1.HealthCheckResponse_SERVING
	}
	s.health.SetServingStatus("", status)
	s.health.SetServingStatus(s.service, status)
	s.logger.Debug("service status updated", "service", s.service, "status", status.String())
}

// Track mirrors the barrier lifecycle: serving once satisfied, not serving
// before that or after a failure.
func (s *Server) Track(state *readiness.Manager) {
	s.SetServing(state.IsReady())
	state.OnTransition(func(_, to readiness.State, _ string) {
		s.SetServing(to == readiness.StateSatisfied || to == readiness.StateDone)
	})
}

func (s *Server) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	s.health.Shutdown()
	s.server.GracefulStop()
	s.started = false
	s.logger.Info("health server stopped")
}
