package domain

import "time"

// TokenPair is the provider grant held by a session.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
}

// Expired reports whether the access token has passed its expiry at now.
// A zero ExpiresAt is treated as never expiring.
func (t TokenPair) Expired(now time.Time) bool {
	return !t.ExpiresAt.IsZero() && !now.Before(t.ExpiresAt)
}

// Session is the authenticated user as carried in the session cookie.
// There is no server-side record; equality is by identity id.
type Session struct {
	Identity Identity
	Tokens   TokenPair
}

func NewSession(identity Identity, tokens TokenPair) *Session {
	// Millisecond precision in UTC, which is what the cookie format carries.
	if !tokens.ExpiresAt.IsZero() {
		tokens.ExpiresAt = time.UnixMilli(tokens.ExpiresAt.UnixMilli()).UTC()
	}
	return &Session{Identity: identity, Tokens: tokens}
}

func (s *Session) UserID() string {
	if s == nil {
		return ""
	}
	return s.Identity.ID
}

func (s *Session) SameUser(other *Session) bool {
	return s != nil && other != nil && s.Identity.ID == other.Identity.ID
}
