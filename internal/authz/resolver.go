package authz

import (
	"context"
	"log/slog"

	"github.com/pscheid92/ticketdash/internal/domain"
)

// Observer receives every verdict and the final decision. Used for metrics.
type Observer interface {
	ObserveVerdict(source string, verdict domain.Verdict)
	ObserveDecision(authorized bool, reason string)
}

// Decision reasons reported to the Observer.
const (
	ReasonNoSession = "no_session"
	ReasonGranted   = "granted"
	ReasonFailOpen  = "fail_open"
	ReasonRejected  = "rejected"
)

type Resolver struct {
	sources  []domain.AuthoritySource
	failOpen bool
	observer Observer
}

var _ domain.Authorizer = (*Resolver)(nil)

// NewResolver puts the owner check first, followed by fallbacks in the given
// order. Fail-open is derived from the owner source alone: it applies only
// when no owner id is configured, regardless of the other sources.
func NewResolver(owner *OwnerSource, fallbacks []domain.AuthoritySource, observer Observer) *Resolver {
	sources := make([]domain.AuthoritySource, 0, len(fallbacks)+1)
	sources = append(sources, owner)
	sources = append(sources, fallbacks...)

	if observer == nil {
		observer = noopObserver{}
	}

	return &Resolver{
		sources:  sources,
		failOpen: !owner.Configured(),
		observer: observer,
	}
}

// IsAuthorized never caches; every call consults the sources again.
func (r *Resolver) IsAuthorized(ctx context.Context, session *domain.Session) bool {
	if session == nil {
		r.observer.ObserveDecision(false, ReasonNoSession)
		return false
	}

	identityID := session.Identity.ID
	for _, source := range r.sources {
		verdict := source.Check(ctx, identityID)
		r.observer.ObserveVerdict(source.Name(), verdict)

		if verdict == domain.Affirmative {
			slog.DebugContext(ctx, "Dashboard access granted", "source", source.Name(), "identity_id", identityID)
			r.observer.ObserveDecision(true, ReasonGranted)
			return true
		}
	}

	if r.failOpen {
		slog.WarnContext(ctx, "Dashboard access granted by default, DASHBOARD_OWNER_ID is not configured", "identity_id", identityID)
		r.observer.ObserveDecision(true, ReasonFailOpen)
		return true
	}

	slog.InfoContext(ctx, "Dashboard access denied", "identity_id", identityID)
	r.observer.ObserveDecision(false, ReasonRejected)
	return false
}

// Sources returns the evaluation order, owner first.
func (r *Resolver) Sources() []string {
	names := make([]string, len(r.sources))
	for i, s := range r.sources {
		names[i] = s.Name()
	}
	return names
}

type noopObserver struct{}

func (noopObserver) ObserveVerdict(string, domain.Verdict) {}
func (noopObserver) ObserveDecision(bool, string) {}
