package httpserver

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/pscheid92/ticketdash/internal/platform/correlation"
	sessioncookie "github.com/pscheid92/ticketdash/internal/session"
)

var loginErrorMessages = map[string]string{
	loginErrAccessDenied: "Sign-in was cancelled.",
	loginErrUnauthorized: "Your account does not have access to this dashboard.",
	loginErrAuthFailed:   "Sign-in failed. Please try again.",
}

func (s *Server) registerPageRoutes() {
	s.echo.GET(loginPath, s.handleLoginPage)
	s.echo.GET("/", s.handleDashboard)
}

func (s *Server) handleLoginPage(c echo.Context) error {
	code := c.QueryParam("error")
	message := ""
	if code != "" {
		var ok bool
		if message, ok = loginErrorMessages[code]; !ok {
			message = "Sign-in failed."
		}
	}

	return s.renderTemplate(c, "login.html", map[string]any{
		"LoginURL":     "/api/auth/login",
		"ErrorCode":    code,
		"ErrorMessage": message,
	})
}

// handleDashboard is only reached with a session cookie present (request
// gate). The cookie is decoded and authorization re-checked here.
func (s *Server) handleDashboard(c echo.Context) error {
	sess := s.decodeSession(c)
	if sess == nil {
		c.SetCookie(sessioncookie.ClearCookie(s.cookieOptions()))
		return redirect(c, loginPath)
	}

	ctx := correlation.WithUserID(c.Request().Context(), sess.UserID())
	if !s.authorizer.IsAuthorized(ctx, sess) {
		return redirect(c, loginPath+"?error="+loginErrUnauthorized)
	}

	return s.renderTemplate(c, "dashboard.html", map[string]any{
		"DisplayName":  sess.Identity.DisplayName(),
		"AvatarURL":    sess.Identity.AvatarURL(),
		"TokenExpired": sess.Tokens.Expired(s.clock.Now()),
	})
}

func redirect(c echo.Context, target string) error {
	if err := c.Redirect(http.StatusFound, target); err != nil {
		return fmt.Errorf("failed to redirect: %w", err)
	}
	return nil
}
