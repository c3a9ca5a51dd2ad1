package httpserver

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
	"github.com/jonboulle/clockwork"
	"github.com/labstack/echo/v4"

	"github.com/pscheid92/ticketdash/internal/domain"
	"github.com/pscheid92/ticketdash/internal/platform/config"
	"github.com/pscheid92/ticketdash/web"
)

type oauthClient interface {
	Configured() bool
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (domain.TokenPair, error)
	FetchIdentity(ctx context.Context, accessToken string) (domain.Identity, error)
}

type sessionCodec interface {
	Encode(s *domain.Session) (string, error)
	Decode(value string) *domain.Session
}

type loginObserver interface {
	ObserveLogin(outcome string)
}

// Deps are the collaborators of the HTTP server. Metrics, MetricsHandler,
// Logins and HealthChecks are optional.
type Deps struct {
	Config      *config.Config
	OAuth       oauthClient
	Codec       sessionCodec
	Authorizer  domain.Authorizer
	Permissions domain.PermissionStore
	Clock       clockwork.Clock

	HealthChecks   []HealthCheck
	Metrics        echo.MiddlewareFunc
	MetricsHandler http.Handler
	Logins         loginObserver
}

type Server struct {
	echo   *echo.Echo
	config *config.Config

	oauth       oauthClient
	codec       sessionCodec
	authorizer  domain.Authorizer
	permissions domain.PermissionStore

	templates  *template.Template
	stateStore *sessions.CookieStore

	clock          clockwork.Clock
	startTime      time.Time
	healthChecks   []HealthCheck
	metrics        echo.MiddlewareFunc
	metricsHandler http.Handler
	logins         loginObserver
}

func NewServer(deps Deps) (*Server, error) {
	templates, err := template.ParseFS(web.TemplateFiles, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	clock := deps.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	srv := &Server{
		echo:           e,
		config:         deps.Config,
		oauth:          deps.OAuth,
		codec:          deps.Codec,
		authorizer:     deps.Authorizer,
		permissions:    deps.Permissions,
		templates:      templates,
		stateStore:     newStateStore(deps.Config),
		clock:          clock,
		startTime:      clock.Now(),
		healthChecks:   deps.HealthChecks,
		metrics:        deps.Metrics,
		metricsHandler: deps.MetricsHandler,
		logins:         deps.Logins,
	}

	srv.registerRoutes()

	return srv, nil
}

func (s *Server) Start() error {
	slog.Info("Starting server", "port", s.config.Port)
	if err := s.echo.Start(":" + s.config.Port); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.echo.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}
	return nil
}

// ServeHTTP exposes the full middleware chain, mainly for tests.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.echo.ServeHTTP(w, r)
}

func (s *Server) renderTemplate(c echo.Context, name string, data any) error {
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		slog.ErrorContext(c.Request().Context(), "Template execution failed", "path", c.Request().URL.Path, "error", err)
		if err := c.String(http.StatusInternalServerError, "Failed to render page"); err != nil {
			return fmt.Errorf("failed to send error response: %w", err)
		}
		return nil
	}
	if err := c.HTMLBlob(http.StatusOK, buf.Bytes()); err != nil {
		return fmt.Errorf("failed to send HTML response: %w", err)
	}
	return nil
}

// decodeSession returns nil for a missing, unreadable or tampered cookie.
func (s *Server) decodeSession(c echo.Context) *domain.Session {
	cookie, err := c.Cookie(sessionCookieName)
	if err != nil || cookie.Value == "" {
		return nil
	}
	return s.codec.Decode(cookie.Value)
}

func (s *Server) observeLogin(outcome string) {
	if s.logins != nil {
		s.logins.ObserveLogin(outcome)
	}
}

// newStateStore signs the short-lived OAuth state cookie. Without a
// configured secret the key is random, so pending logins do not survive a
// restart.
func newStateStore(cfg *config.Config) *sessions.CookieStore {
	key := []byte(cfg.StateSecret)
	if len(key) == 0 {
		key = securecookie.GenerateRandomKey(32)
	}

	store := sessions.NewCookieStore(key)
	store.Options = &sessions.Options{
		Path:     "/api/auth",
		MaxAge:   int(oauthStateMaxAge.Seconds()),
		HttpOnly: true,
		Secure:   cfg.IsProduction(),
		SameSite: http.SameSiteLaxMode,
	}
	return store
}
