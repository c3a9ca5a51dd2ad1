package httpserver

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"

	"github.com/pscheid92/ticketdash/internal/adapter/memory"
	"github.com/pscheid92/ticketdash/internal/domain"
	"github.com/pscheid92/ticketdash/internal/platform/config"
	"github.com/pscheid92/ticketdash/internal/session"
)

// --- Mock implementations ---

type mockOAuthClient struct {
	unconfigured    bool
	exchangeFn      func(ctx context.Context, code string) (domain.TokenPair, error)
	fetchIdentityFn func(ctx context.Context, accessToken string) (domain.Identity, error)

	exchangeCalls int
}

func (m *mockOAuthClient) Configured() bool { return !m.unconfigured }

func (m *mockOAuthClient) AuthCodeURL(state string) string {
	return "https://discord.test/oauth2/authorize?state=" + url.QueryEscape(state)
}

func (m *mockOAuthClient) Exchange(ctx context.Context, code string) (domain.TokenPair, error) {
	m.exchangeCalls++
	if m.exchangeFn != nil {
		return m.exchangeFn(ctx, code)
	}
	return domain.TokenPair{}, errors.New("not implemented")
}

func (m *mockOAuthClient) FetchIdentity(ctx context.Context, accessToken string) (domain.Identity, error) {
	if m.fetchIdentityFn != nil {
		return m.fetchIdentityFn(ctx, accessToken)
	}
	return domain.Identity{}, errors.New("not implemented")
}

type mockAuthorizer struct {
	isAuthorizedFn func(ctx context.Context, s *domain.Session) bool
	calls          int
}

func (m *mockAuthorizer) IsAuthorized(ctx context.Context, s *domain.Session) bool {
	m.calls++
	if m.isAuthorizedFn != nil {
		return m.isAuthorizedFn(ctx, s)
	}
	return s != nil
}

func allowOnly(ids ...string) *mockAuthorizer {
	return &mockAuthorizer{isAuthorizedFn: func(_ context.Context, s *domain.Session) bool {
		for _, id := range ids {
			if s.UserID() == id {
				return true
			}
		}
		return false
	}}
}

type recordingLogins struct {
	outcomes []string
}

func (r *recordingLogins) ObserveLogin(outcome string) {
	r.outcomes = append(r.outcomes, outcome)
}

// --- Test helpers ---

var testEpoch = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func testConfig() *config.Config {
	return &config.Config{
		AppEnv:        "development",
		Port:          "3000",
		SessionMaxAge: 168 * time.Hour,
		StateSecret:   "test-state-secret-32-bytes-long!!",
	}
}

func newTestServer(t *testing.T, opts ...func(*Deps)) *Server {
	t.Helper()

	deps := Deps{
		Config:      testConfig(),
		OAuth:       &mockOAuthClient{},
		Codec:       session.NewCodec(nil),
		Authorizer:  &mockAuthorizer{},
		Permissions: memory.NewPermissionStore(),
		Clock:       clockwork.NewFakeClockAt(testEpoch),
	}
	for _, opt := range opts {
		opt(&deps)
	}

	srv, err := NewServer(deps)
	require.NoError(t, err)
	return srv
}

func withOAuth(oauth oauthClient) func(*Deps) {
	return func(d *Deps) { d.OAuth = oauth }
}

func withAuthorizer(a domain.Authorizer) func(*Deps) {
	return func(d *Deps) { d.Authorizer = a }
}

func withPermissions(p domain.PermissionStore) func(*Deps) {
	return func(d *Deps) { d.Permissions = p }
}

func withHealthChecks(checks ...HealthCheck) func(*Deps) {
	return func(d *Deps) { d.HealthChecks = checks }
}

func withLogins(l loginObserver) func(*Deps) {
	return func(d *Deps) { d.Logins = l }
}

func withClock(c clockwork.Clock) func(*Deps) {
	return func(d *Deps) { d.Clock = c }
}

func withProduction() func(*Deps) {
	return func(d *Deps) { d.Config.AppEnv = "production" }
}

func testSession(id string) *domain.Session {
	return domain.NewSession(
		domain.Identity{ID: id, Username: "user" + id, Discriminator: "0", GlobalName: "User " + id, Avatar: "a1b2"},
		domain.TokenPair{AccessToken: "access", RefreshToken: "refresh", ExpiresAt: testEpoch.Add(time.Hour)},
	)
}

func sessionCookie(t *testing.T, s *domain.Session) *http.Cookie {
	t.Helper()
	value, err := session.NewCodec(nil).Encode(s)
	require.NoError(t, err)
	return &http.Cookie{Name: session.CookieName, Value: value}
}

func do(srv *Server, method, target, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func findCookie(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// startLogin runs /api/auth/login and returns the state and its cookie.
func startLogin(t *testing.T, srv *Server) (string, *http.Cookie) {
	t.Helper()
	rec := do(srv, http.MethodGet, "/api/auth/login", "")
	require.Equal(t, http.StatusFound, rec.Code)

	location, err := url.Parse(rec.Header().Get("Location"))
	require.NoError(t, err)
	state := location.Query().Get("state")
	require.NotEmpty(t, state)

	cookie := findCookie(rec, stateCookieName)
	require.NotNil(t, cookie)
	return state, cookie
}

func successfulOAuth() *mockOAuthClient {
	return &mockOAuthClient{
		exchangeFn: func(_ context.Context, code string) (domain.TokenPair, error) {
			return domain.TokenPair{AccessToken: "access-" + code, RefreshToken: "refresh", ExpiresAt: testEpoch.Add(7 * 24 * time.Hour)}, nil
		},
		fetchIdentityFn: func(_ context.Context, accessToken string) (domain.Identity, error) {
			return domain.Identity{ID: "111", Username: "ann", Discriminator: "0", GlobalName: "Ann"}, nil
		},
	}
}
