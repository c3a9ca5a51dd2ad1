package session

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/pscheid92/ticketdash/internal/domain"
	"github.com/pscheid92/ticketdash/internal/platform/crypto"
)

type wireUser struct {
	ID            string  `json:"id"`
	Username      string  `json:"username"`
	Discriminator string  `json:"discriminator"`
	Avatar        *string `json:"avatar"`
	GlobalName    *string `json:"global_name"`
}

type wireSession struct {
	User         *wireUser `json:"user"`
	AccessToken  string    `json:"accessToken"`
	RefreshToken string    `json:"refreshToken"`
	// Unix milliseconds. Decoded as float64 because legacy cookies were
	// written by a JavaScript runtime.
	ExpiresAt float64 `json:"expiresAt"`
}

type Codec struct {
	sealer crypto.Sealer
}

func NewCodec(sealer crypto.Sealer) *Codec {
	if sealer == nil {
		sealer = crypto.NoopSealer{}
	}
	return &Codec{sealer: sealer}
}

// Encode serializes the full session into a cookie-safe string.
func (c *Codec) Encode(s *domain.Session) (string, error) {
	if s == nil {
		return "", fmt.Errorf("encode session: %w", domain.ErrMissingUserID)
	}

	payload, err := json.Marshal(toWire(s))
	if err != nil {
		return "", fmt.Errorf("failed to marshal session: %w", err)
	}

	value, err := c.sealer.Seal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to seal session: %w", err)
	}
	return value, nil
}

// Decode is the inverse of Encode. It returns nil for empty, malformed,
// tampered or identity-less values. Expired tokens decode normally.
func (c *Codec) Decode(value string) *domain.Session {
	if value == "" {
		return nil
	}

	payload, err := c.sealer.Open(value)
	if err != nil {
		slog.Debug("Discarding unreadable session cookie", "error", err)
		return nil
	}

	var w wireSession
	if err := json.Unmarshal(payload, &w); err != nil {
		slog.Debug("Discarding malformed session payload", "error", err)
		return nil
	}
	if w.User == nil || w.User.ID == "" {
		return nil
	}

	return fromWire(w)
}

func toWire(s *domain.Session) wireSession {
	var expiresAt float64
	if !s.Tokens.ExpiresAt.IsZero() {
		expiresAt = float64(s.Tokens.ExpiresAt.UnixMilli())
	}

	return wireSession{
		User: &wireUser{
			ID:            s.Identity.ID,
			Username:      s.Identity.Username,
			Discriminator: s.Identity.Discriminator,
			Avatar:        optional(s.Identity.Avatar),
			GlobalName:    optional(s.Identity.GlobalName),
		},
		AccessToken:  s.Tokens.AccessToken,
		RefreshToken: s.Tokens.RefreshToken,
		ExpiresAt:    expiresAt,
	}
}

func fromWire(w wireSession) *domain.Session {
	var expiresAt time.Time
	if w.ExpiresAt != 0 && !math.IsNaN(w.ExpiresAt) && !math.IsInf(w.ExpiresAt, 0) {
		expiresAt = time.UnixMilli(int64(w.ExpiresAt)).UTC()
	}

	return &domain.Session{
		Identity: domain.Identity{
			ID:            w.User.ID,
			Username:      w.User.Username,
			Discriminator: w.User.Discriminator,
			Avatar:        deref(w.User.Avatar),
			GlobalName:    deref(w.User.GlobalName),
		},
		Tokens: domain.TokenPair{
			AccessToken:  w.AccessToken,
			RefreshToken: w.RefreshToken,
			ExpiresAt:    expiresAt,
		},
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
