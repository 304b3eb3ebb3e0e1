package rendezvous

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/eleven-am/barrier/internal/adapters/membership"
	"github.com/eleven-am/barrier/internal/domain"
	"github.com/eleven-am/barrier/internal/ports"
	"github.com/eleven-am/barrier/internal/readiness"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

type Result struct {
	RunID    string          `json:"run_id"`
	Self     domain.PeerID   `json:"self"`
	Peers    []domain.PeerID `json:"peers"`
	Ready    []domain.PeerID `json:"ready"`
	Announce AnnounceReport  `json:"announce"`
	Listen   ListenerStats   `json:"listen"`
	Elapsed  time.Duration   `json:"elapsed_ns"`
}

type ControllerDeps struct {
	Self       domain.PeerID
	Source     ports.MembershipSource
	Resolver   ports.AddressResolver
	Transport  ports.Transport
	Barrier    domain.BarrierConfig
	Membership domain.MembershipPolicy
	State      *readiness.Manager
	Logger     *slog.Logger
	Version    string
}

// Controller drives one barrier from INIT to DONE or FAILED. It is single
// use; a second Run fails with an invalid state transition.
type Controller struct {
	self       domain.PeerID
	source     ports.MembershipSource
	resolver   ports.AddressResolver
	transport  ports.Transport
	barrier    domain.BarrierConfig
	membership domain.MembershipPolicy
	state      *readiness.Manager
	logger     *slog.Logger
	log        *ports.StructuredLogger
}

func NewController(deps ControllerDeps) (*Controller, error) {
	if deps.Self == "" {
		return nil, domain.NewConfigError("new controller", errors.New("local identity is required"))
	}
	if deps.Source == nil {
		return nil, domain.NewConfigError("new controller", errors.New("membership source is required"))
	}
	if deps.Resolver == nil {
		return nil, domain.NewConfigError("new controller", errors.New("address resolver is required"))
	}
	if deps.Transport == nil {
		return nil, domain.NewConfigError("new controller", errors.New("transport is required"))
	}
	if err := deps.Barrier.Validate(); err != nil {
		return nil, domain.NewConfigError("new controller", err)
	}

	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	state := deps.State
	if state == nil {
		state = readiness.NewManager()
	}

	return &Controller{
		self:       deps.Self,
		source:     deps.Source,
		resolver:   deps.Resolver,
		transport:  deps.Transport,
		barrier:    deps.Barrier,
		membership: deps.Membership,
		state:      state,
		logger:     logger,
		log:        ports.NewStructuredLogger(logger, "barrier", deps.Version, string(deps.Self)),
	}, nil
}

func (c *Controller) State() *readiness.Manager {
	return c.state
}

// Run resolves the peer set, then listens and announces concurrently until
// every peer has been heard from and the announcer has finished its rounds.
func (c *Controller) Run(ctx context.Context) (*Result, error) {
	started := time.Now()
	op := c.log.WithOperation("rendezvous", uuid.NewString())

	if c.barrier.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.barrier.Timeout)
		defer cancel()
	}

	if err := c.state.TransitionTo(readiness.StateResolving, "resolving peer set"); err != nil {
		return nil, err
	}

	peers, err := membership.NewResolver(c.membership, c.logger).Resolve(c.source, c.self)
	if err != nil {
		return nil, c.fail(op, "peer set resolution failed", err)
	}

	conn, err := c.transport.Listen(ctx)
	if err != nil {
		return nil, c.fail(op, "listener setup failed", err)
	}
	sender, err := c.transport.NewSender(ctx)
	if err != nil {
		_ = conn.Close()
		return nil, c.fail(op, "sender setup failed", err)
	}
	defer sender.Close()

	quorum := domain.NewQuorumSet(peers)
	listener := NewListener(ListenerDeps{
		Conn:       conn,
		Quorum:     quorum,
		BufferSize: c.barrier.BufferSize,
		Logger:     c.logger,
	})
	announcer := NewAnnouncer(AnnouncerDeps{
		Self:     c.self,
		Peers:    peers,
		Resolver: c.resolver,
		Sender:   sender,
		Config:   c.barrier,
		Quorum:   quorum,
		Logger:   c.logger,
	})

	if err := c.state.TransitionTo(readiness.StateWaiting, fmt.Sprintf("waiting for %d peers", peers.Len())); err != nil {
		_ = conn.Close()
		return nil, err
	}
	op.Info("waiting for peers",
		"peers", peers.Strings(),
		"port", c.barrier.Port,
		"max_attempts", c.barrier.MaxAttempts,
		"retry_interval", c.barrier.RetryInterval,
		"timeout", c.barrier.Timeout)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := listener.Run(gctx); err != nil {
			return err
		}
		if err := c.state.TransitionTo(readiness.StateSatisfied, "all peers ready"); err != nil {
			return err
		}
		op.Info("quorum reached", "ready", quorum.Size())
		return nil
	})

	report, announceErr := announcer.Run(gctx)
	listenErr := g.Wait()

	if listenErr != nil {
		if errors.Is(listenErr, context.DeadlineExceeded) {
			listenErr = domain.NewTimeoutError("wait for quorum",
				fmt.Errorf("%d of %d peers ready after %s, missing %v",
					quorum.Size(), quorum.Expected(), c.barrier.Timeout, quorum.Missing()))
		}
		return nil, c.fail(op, "barrier not satisfied", listenErr)
	}
	if announceErr != nil {
		op.Warn("announcer stopped before its last round",
			"rounds", report.Rounds,
			"error", announceErr)
	}

	if err := c.state.TransitionTo(readiness.StateDone, "barrier complete"); err != nil {
		return nil, err
	}

	result := &Result{
		RunID:    op.RequestID(),
		Self:     c.self,
		Peers:    peers.Members(),
		Ready:    quorum.Members(),
		Announce: report,
		Listen:   listener.Stats(),
		Elapsed:  time.Since(started),
	}
	op.Complete("barrier complete",
		"ready", len(result.Ready),
		"rounds", report.Rounds,
		"attempts", report.Attempts)

	return result, nil
}

func (c *Controller) fail(op *ports.OperationLogger, msg string, err error) error {
	op.Fail(msg, err, ports.FieldState, c.state.GetState().String())
	if stateErr := c.state.Fail(err); stateErr != nil {
		c.logger.Debug("state already terminal", "error", stateErr)
	}
	return err
}
