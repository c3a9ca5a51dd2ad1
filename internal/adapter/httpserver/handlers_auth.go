package httpserver

import (
	"context"
	"crypto/subtle"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/pscheid92/ticketdash/internal/domain"
	"github.com/pscheid92/ticketdash/internal/platform/correlation"
	apperrors "github.com/pscheid92/ticketdash/internal/platform/errors"
	sessioncookie "github.com/pscheid92/ticketdash/internal/session"
)

const (
	loginPath         = "/login"
	sessionCookieName = sessioncookie.CookieName

	stateCookieName  = "oauth_state"
	stateKey         = "state"
	oauthStateMaxAge = 10 * time.Minute
	oauthTimeout     = 10 * time.Second
)

// Reason codes appended to the login page URL as ?error=.
const (
	loginErrAccessDenied = "access_denied"
	loginErrUnauthorized = "unauthorized"
	loginErrAuthFailed   = "auth_failed"
)

func (s *Server) registerAuthRoutes(rateLimiter echo.MiddlewareFunc) {
	g := s.echo.Group("/api/auth", rateLimiter)
	g.GET("/login", s.handleLogin)
	g.GET("/callback", s.handleCallback)
	g.GET("/logout", s.handleLogoutRedirect)
	g.POST("/logout", s.handleLogoutJSON)
	g.GET("/me", s.handleMe)
}

func (s *Server) cookieOptions() sessioncookie.CookieOptions {
	return sessioncookie.CookieOptions{
		MaxAge: s.config.SessionMaxAge,
		Secure: s.config.IsProduction(),
	}
}

func (s *Server) handleLogin(c echo.Context) error {
	if !s.oauth.Configured() {
		return apperrors.InternalError("Discord OAuth not configured", domain.ErrNotProvisioned)
	}

	state := uuid.NewString()

	// A fresh state cookie replaces any pending login from this browser.
	pending, err := s.stateStore.New(c.Request(), stateCookieName)
	if err != nil {
		slog.DebugContext(c.Request().Context(), "Discarding unreadable OAuth state cookie", "error", err)
	}
	pending.Values[stateKey] = state
	if err := pending.Save(c.Request(), c.Response().Writer); err != nil {
		return apperrors.InternalError("failed to save OAuth state", err)
	}

	if err := c.Redirect(http.StatusFound, s.oauth.AuthCodeURL(state)); err != nil {
		return fmt.Errorf("failed to redirect: %w", err)
	}
	return nil
}

func (s *Server) handleCallback(c echo.Context) error {
	code := c.QueryParam("code")
	if c.QueryParam("error") != "" || code == "" {
		return s.failLogin(c, loginErrAccessDenied)
	}

	if !s.consumeState(c) {
		slog.WarnContext(c.Request().Context(), "OAuth state mismatch")
		return s.failLogin(c, loginErrAuthFailed)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), oauthTimeout)
	defer cancel()

	tokens, err := s.oauth.Exchange(ctx, code)
	if err != nil {
		slog.WarnContext(ctx, "OAuth code exchange failed", "error", err)
		return s.failLogin(c, loginErrAuthFailed)
	}

	identity, err := s.oauth.FetchIdentity(ctx, tokens.AccessToken)
	if err != nil {
		slog.WarnContext(ctx, "Identity lookup failed", "error", err)
		return s.failLogin(c, loginErrAuthFailed)
	}

	sess := domain.NewSession(identity, tokens)
	ctx = correlation.WithUserID(ctx, identity.ID)

	if !s.authorizer.IsAuthorized(ctx, sess) {
		return s.failLogin(c, loginErrUnauthorized)
	}

	value, err := s.codec.Encode(sess)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to encode session", "error", err)
		return s.failLogin(c, loginErrAuthFailed)
	}
	c.SetCookie(sessioncookie.NewCookie(value, s.cookieOptions()))

	slog.InfoContext(ctx, "User logged in", "username", identity.Username)
	s.observeLogin("success")

	if err := c.Redirect(http.StatusFound, "/"); err != nil {
		return fmt.Errorf("failed to redirect: %w", err)
	}
	return nil
}

// consumeState compares the state query parameter with the pending login
// and deletes the state cookie either way.
func (s *Server) consumeState(c echo.Context) bool {
	pending, err := s.stateStore.Get(c.Request(), stateCookieName)
	if err != nil {
		return false
	}
	expected, _ := pending.Values[stateKey].(string)

	pending.Options.MaxAge = -1
	if err := pending.Save(c.Request(), c.Response().Writer); err != nil {
		slog.WarnContext(c.Request().Context(), "Failed to clear OAuth state cookie", "error", err)
	}

	got := c.QueryParam("state")
	return expected != "" && subtle.ConstantTimeCompare([]byte(expected), []byte(got)) == 1
}

func (s *Server) failLogin(c echo.Context, reason string) error {
	s.observeLogin(reason)
	target := loginPath + "?error=" + url.QueryEscape(reason)
	if err := c.Redirect(http.StatusFound, target); err != nil {
		return fmt.Errorf("failed to redirect: %w", err)
	}
	return nil
}

func (s *Server) handleLogoutRedirect(c echo.Context) error {
	c.SetCookie(sessioncookie.ClearCookie(s.cookieOptions()))
	if err := c.Redirect(http.StatusFound, loginPath); err != nil {
		return fmt.Errorf("failed to redirect: %w", err)
	}
	return nil
}

func (s *Server) handleLogoutJSON(c echo.Context) error {
	c.SetCookie(sessioncookie.ClearCookie(s.cookieOptions()))
	if err := c.JSON(http.StatusOK, map[string]bool{"success": true}); err != nil {
		return fmt.Errorf("failed to write logout response: %w", err)
	}
	return nil
}

type meUser struct {
	ID         string  `json:"id"`
	Username   string  `json:"username"`
	GlobalName *string `json:"globalName"`
	Avatar     *string `json:"avatar"`
}

type meResponse struct {
	User         *meUser `json:"user"`
	Error        string  `json:"error,omitempty"`
	TokenExpired *bool   `json:"tokenExpired,omitempty"`
}

func (s *Server) handleMe(c echo.Context) error {
	sess := s.decodeSession(c)
	if sess == nil {
		return c.JSON(http.StatusUnauthorized, meResponse{})
	}

	ctx := correlation.WithUserID(c.Request().Context(), sess.UserID())
	if !s.authorizer.IsAuthorized(ctx, sess) {
		return c.JSON(http.StatusForbidden, meResponse{Error: loginErrUnauthorized})
	}

	expired := sess.Tokens.Expired(s.clock.Now())
	resp := meResponse{
		User: &meUser{
			ID:         sess.Identity.ID,
			Username:   sess.Identity.Username,
			GlobalName: nonEmpty(sess.Identity.GlobalName),
			Avatar:     nonEmpty(sess.Identity.AvatarURL()),
		},
		TokenExpired: &expired,
	}
	if err := c.JSON(http.StatusOK, resp); err != nil {
		return fmt.Errorf("failed to write me response: %w", err)
	}
	return nil
}

func nonEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
