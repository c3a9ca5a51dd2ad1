package session

import (
	"net/http"
	"time"
)

const CookieName = "session"

// CookieOptions controls how the session cookie is issued.
type CookieOptions struct {
	MaxAge time.Duration
	Secure bool
}

// NewCookie builds the session cookie carrying an encoded value. Path is
// always "/", the cookie is http-only and SameSite=Lax. Its lifetime is
// independent of the token expiry inside the value.
func NewCookie(value string, opts CookieOptions) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   int(opts.MaxAge.Seconds()),
		HttpOnly: true,
		Secure:   opts.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// ClearCookie builds a cookie that deletes the session on the client.
func ClearCookie(opts CookieOptions) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   opts.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}
