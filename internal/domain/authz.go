package domain

import "context"

// Verdict is the answer of one authority source about one identity.
type Verdict int

const (
	// Inconclusive means the source could not answer (unconfigured, unreachable, unreadable).
	Inconclusive Verdict = iota
	// Denied means the source answered and did not grant access.
	Denied
	// Affirmative grants access and ends the evaluation.
	Affirmative
)

func (v Verdict) String() string {
	switch v {
	case Affirmative:
		return "affirmative"
	case Denied:
		return "denied"
	default:
		return "inconclusive"
	}
}

// AuthoritySource is one link of the ordered authorization chain.
// Implementations swallow their own I/O errors and report Inconclusive.
type AuthoritySource interface {
	Name() string
	Check(ctx context.Context, identityID string) Verdict
}

// Authorizer decides dashboard access for a session.
type Authorizer interface {
	IsAuthorized(ctx context.Context, session *Session) bool
}
