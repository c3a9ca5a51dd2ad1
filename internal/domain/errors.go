package domain

import "errors"

var (
	ErrTokenExchange  = errors.New("token exchange failed")
	ErrTokenRefresh   = errors.New("token refresh failed")
	ErrIdentityFetch  = errors.New("identity fetch failed")
	ErrMissingUserID  = errors.New("user id is required")
	ErrNotProvisioned = errors.New("oauth client is not configured")
)
