package membership

import (
	"fmt"
	"log/slog"

	"github.com/eleven-am/barrier/internal/domain"
	"github.com/eleven-am/barrier/internal/ports"
)

type IssueKind string

const (
	IssueBlank     IssueKind = "blank"
	IssueDuplicate IssueKind = "duplicate"
)

// Issue is a membership entry that is admitted by default but most likely a
// mistake in the source.
type Issue struct {
	Line  int
	Entry string
	Kind  IssueKind
}

func (i Issue) String() string {
	return fmt.Sprintf("line %d: %s entry %q", i.Line, i.Kind, i.Entry)
}

type Resolver struct {
	policy domain.MembershipPolicy
	logger *slog.Logger
}

func NewResolver(policy domain.MembershipPolicy, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{
		policy: policy,
		logger: logger.With("component", "membership"),
	}
}

// Resolve reads src and returns every entry other than self.
func (r *Resolver) Resolve(src ports.MembershipSource, self domain.PeerID) (domain.PeerSet, error) {
	entries, err := src.Entries()
	if err != nil {
		if domain.IsConfig(err) {
			return domain.PeerSet{}, err
		}
		return domain.PeerSet{}, domain.NewConfigError("read membership", err)
	}

	peers, issues := ResolveEntries(entries, self)
	for _, issue := range issues {
		if r.policy.Strict {
			return domain.PeerSet{}, domain.NewConfigError("validate membership",
				fmt.Errorf("%s: %s", src.Name(), issue))
		}
		r.logger.Warn("suspicious membership entry admitted",
			"source", src.Name(),
			"line", issue.Line,
			"entry", issue.Entry,
			"issue", string(issue.Kind))
	}

	if peers.Len() == 0 {
		return domain.PeerSet{}, domain.NewEmptyPeerSetError("resolve membership")
	}

	r.logger.Info("resolved peer set",
		"source", src.Name(),
		"self", string(self),
		"entries", len(entries),
		"peers", peers.Len())

	return peers, nil
}

// ResolveEntries excludes self by exact match and reports blank and
// duplicate lines. It performs no other validation.
func ResolveEntries(entries []string, self domain.PeerID) (domain.PeerSet, []Issue) {
	seen := make(map[string]struct{}, len(entries))
	ids := make([]domain.PeerID, 0, len(entries))
	var issues []Issue

	for i, entry := range entries {
		line := i + 1
		if entry == "" {
			issues = append(issues, Issue{Line: line, Entry: entry, Kind: IssueBlank})
		}
		if _, dup := seen[entry]; dup {
			issues = append(issues, Issue{Line: line, Entry: entry, Kind: IssueDuplicate})
			continue
		}
		seen[entry] = struct{}{}

		if domain.PeerID(entry) == self {
			continue
		}
		ids = append(ids, domain.PeerID(entry))
	}

	return domain.NewPeerSet(ids...), issues
}
