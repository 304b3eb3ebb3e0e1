package rendezvous

import (
	"context"
	"log/slog"
	"time"

	"github.com/eleven-am/barrier/internal/adapters/transport"
	"github.com/eleven-am/barrier/internal/domain"
	"github.com/eleven-am/barrier/internal/ports"
	"golang.org/x/time/rate"
)

type AnnounceReport struct {
	Rounds          int  `json:"rounds"`
	Attempts        int  `json:"attempts"`
	Sent            int  `json:"sent"`
	ResolveFailures int  `json:"resolve_failures"`
	SendFailures    int  `json:"send_failures"`
	StoppedEarly    bool `json:"stopped_early"`
}

type AnnouncerDeps struct {
	Self     domain.PeerID
	Peers    domain.PeerSet
	Resolver ports.AddressResolver
	Sender   ports.PacketSender
	Config   domain.BarrierConfig
	// Quorum is only consulted when Config.StopOnQuorum is set.
	Quorum *domain.QuorumSet
	Logger *slog.Logger
}

// Announcer floods a readiness message to every peer for a fixed number of
// rounds. Per-peer failures never abort a round.
type Announcer struct {
	self     domain.PeerID
	peers    []domain.PeerID
	resolver ports.AddressResolver
	sender   ports.PacketSender
	config   domain.BarrierConfig
	quorum   *domain.QuorumSet
	limiter  *rate.Limiter
	logger   *slog.Logger
}

func NewAnnouncer(deps AnnouncerDeps) *Announcer {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var limiter *rate.Limiter
	if deps.Config.SendRate > 0 {
		burst := int(deps.Config.SendRate)
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(deps.Config.SendRate), burst)
	}

	return &Announcer{
		self:     deps.Self,
		peers:    deps.Peers.Members(),
		resolver: deps.Resolver,
		sender:   deps.Sender,
		config:   deps.Config,
		quorum:   deps.Quorum,
		limiter:  limiter,
		logger:   logger.With("component", "announcer"),
	}
}

// Run performs Config.MaxAttempts rounds and returns what it did. Errors
// only come from ctx (or the send limiter running into ctx's deadline).
func (a *Announcer) Run(ctx context.Context) (AnnounceReport, error) {
	var report AnnounceReport
	payload := transport.Encode(domain.ReadinessMessage{SenderID: a.self})

	for round := 1; round <= a.config.MaxAttempts; round++ {
		if err := a.announceRound(ctx, round, payload, &report); err != nil {
			return report, err
		}
		report.Rounds++

		a.logger.Debug("announce round complete",
			ports.FieldRound, round,
			"attempts", report.Attempts,
			"resolve_failures", report.ResolveFailures,
			"send_failures", report.SendFailures)

		if a.config.StopOnQuorum && a.quorum != nil && a.quorum.Complete() {
			report.StoppedEarly = round < a.config.MaxAttempts
			if report.StoppedEarly {
				a.logger.Info("quorum observed, no further announce rounds", "round", round)
			}
			return report, nil
		}

		if round < a.config.MaxAttempts {
			if err := sleepContext(ctx, a.config.RetryInterval); err != nil {
				return report, err
			}
		}
	}

	return report, nil
}

func (a *Announcer) announceRound(ctx context.Context, round int, payload []byte, report *AnnounceReport) error {
	for _, peer := range a.peers {
		if err := ctx.Err(); err != nil {
			return err
		}

		addr, err := a.resolver.ResolvePeer(ctx, peer)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			report.ResolveFailures++
			a.logger.Warn("peer address not resolvable, retrying next round",
				ports.FieldPeerID, string(peer),
				ports.FieldRound, round,
				"error", err)
			continue
		}

		if a.limiter != nil {
			if err := a.limiter.Wait(ctx); err != nil {
				return err
			}
		}

		report.Attempts++
		if err := a.sender.Send(ctx, addr, payload); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			report.SendFailures++
			a.logger.Warn("readiness send failed",
				ports.FieldPeerID, string(peer),
				"address", addr.String(),
				ports.FieldRound, round,
				"error", domain.NewSendError(peer, err))
			continue
		}
		report.Sent++
	}
	return nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
