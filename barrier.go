// Package barrier provides a one-shot startup barrier for a fixed group of
// hosts.
//
// Each participant announces "<host> READY" over UDP to every other host named
// in a shared membership list, and listens for the same announcement from all
// of them. Run returns once every peer has been heard from and the local
// announce rounds have finished, so a later peer that started late still
// receives this host's announcement.
//
// Basic usage:
//
//	cfg, err := barrier.NewConfigBuilder("node-a").
//	    WithMembershipFile("/etc/cluster/hosts").
//	    WithTimeout(time.Minute).
//	    Build()
//	if err != nil {
//	    return err
//	}
//	b, err := barrier.New(cfg)
//	if err != nil {
//	    return err
//	}
//	if _, err := b.Run(ctx); err != nil {
//	    return err
//	}
package barrier

import (
	"context"
	"log/slog"

	"github.com/eleven-am/barrier/internal/adapters/health"
	"github.com/eleven-am/barrier/internal/adapters/membership"
	"github.com/eleven-am/barrier/internal/adapters/transport"
	"github.com/eleven-am/barrier/internal/domain"
	"github.com/eleven-am/barrier/internal/helpers/metadata"
	"github.com/eleven-am/barrier/internal/ports"
	"github.com/eleven-am/barrier/internal/readiness"
	"github.com/eleven-am/barrier/internal/rendezvous"
)

const Version = "0.1.0"

// PeerID names one participant exactly as it appears in the membership list.
type PeerID = domain.PeerID

// Result describes a completed barrier: who was expected, who was heard from,
// and what the announcer and listener did along the way.
type Result = rendezvous.Result

// AnnounceReport counts the rounds and sends made by the announcer.
type AnnounceReport = rendezvous.AnnounceReport

// ListenerStats counts the datagrams seen by the listener.
type ListenerStats = rendezvous.ListenerStats

// State is the lifecycle position of a barrier.
type State = readiness.State

const (
	StateInit      State = readiness.StateInit
	StateResolving State = readiness.StateResolving
	StateWaiting   State = readiness.StateWaiting
	StateSatisfied State = readiness.StateSatisfied
	StateDone      State = readiness.StateDone
	StateFailed    State = readiness.StateFailed
)

// ErrorKind classifies barrier failures.
type ErrorKind = domain.ErrorKind

// Error is the concrete error type returned by Run.
type Error = domain.BarrierError

var (
	ErrConfig       = domain.ErrConfig
	ErrEmptyPeerSet = domain.ErrEmptyPeerSet
	ErrResolution   = domain.ErrResolution
	ErrSocket       = domain.ErrSocket
	ErrSend         = domain.ErrSend
	ErrReceive      = domain.ErrReceive
	ErrTimeout      = domain.ErrTimeout
)

// KindOf reports the ErrorKind carried by err, if any.
func KindOf(err error) (ErrorKind, bool) {
	return domain.KindOf(err)
}

// Barrier is a single rendezvous. Run may be called once.
type Barrier struct {
	config     *Config
	logger     *slog.Logger
	state      *readiness.Manager
	controller *rendezvous.Controller
	health     *health.Server
}

// New validates cfg and wires the membership source, address resolver and
// UDP transport. No socket is opened until Run.
func New(cfg *Config) (*Barrier, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, domain.NewConfigError("new barrier", err)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(metadata.GetProvider().LogArgs()...)

	resolver, err := newAddressResolver(cfg)
	if err != nil {
		return nil, err
	}

	state := readiness.NewManager()
	controller, err := rendezvous.NewController(rendezvous.ControllerDeps{
		Self:       domain.PeerID(cfg.NodeID),
		Source:     newMembershipSource(cfg),
		Resolver:   resolver,
		Transport:  transport.NewUDPTransport(cfg.Barrier, logger),
		Barrier:    cfg.Barrier,
		Membership: cfg.Membership,
		State:      state,
		Logger:     logger,
		Version:    Version,
	})
	if err != nil {
		return nil, err
	}

	b := &Barrier{
		config:     cfg,
		logger:     logger,
		state:      state,
		controller: controller,
	}

	if cfg.Health.Addr != "" {
		b.health = health.NewServer(cfg.Health.Addr, cfg.Health.Service, logger)
		b.health.Track(state)
	}

	return b, nil
}

// Run blocks until the barrier completes or fails. Cancelling ctx aborts the
// barrier and closes its sockets.
func (b *Barrier) Run(ctx context.Context) (*Result, error) {
	if b.health != nil {
		if err := b.health.Start(ctx); err != nil {
			if failErr := b.state.Fail(err); failErr != nil {
				b.logger.Debug("state already terminal", "error", failErr)
			}
			return nil, err
		}
		defer b.health.Stop()
	}

	return b.controller.Run(ctx)
}

// WaitUntilReady blocks until every peer has been heard from, the barrier
// fails, or ctx is done. It may be called from any goroutine while Run is in
// progress.
func (b *Barrier) WaitUntilReady(ctx context.Context) error {
	return b.state.WaitUntilReady(ctx)
}

func (b *Barrier) State() State {
	return b.state.GetState()
}

// Err returns the failure cause once the barrier is in StateFailed.
func (b *Barrier) Err() error {
	return b.state.Err()
}

func (b *Barrier) OnStateChange(cb func(from, to State, reason string)) {
	b.state.OnTransition(cb)
}

// HealthAddr returns the bound health endpoint, or "" when none is configured.
func (b *Barrier) HealthAddr() string {
	if b.health == nil {
		return ""
	}
	return b.health.Addr()
}

func newMembershipSource(cfg *Config) ports.MembershipSource {
	if cfg.MembershipFile != "" {
		return membership.NewFileSource(cfg.MembershipFile)
	}
	return membership.NewStaticSource(cfg.Peers)
}

func newAddressResolver(cfg *Config) (ports.AddressResolver, error) {
	dns := transport.NewDNSResolver(cfg.Barrier)
	if len(cfg.AddressOverrides) == 0 {
		return dns, nil
	}

	overrides, err := transport.ParseStaticResolver(cfg.AddressOverrides)
	if err != nil {
		return nil, err
	}
	return transport.NewOverrideResolver(overrides, dns), nil
}
