package authz_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/pscheid92/ticketdash/internal/adapter/botapi"
	"github.com/pscheid92/ticketdash/internal/adapter/filestore"
	"github.com/pscheid92/ticketdash/internal/authz"
	"github.com/pscheid92/ticketdash/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func botServer(t *testing.T, body string) string {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv.URL
}

func unreachableURL(t *testing.T) string {
	t.Helper()
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()
	return url
}

func newResolver(ownerID, botURL, configPath, permissionsPath string) *authz.Resolver {
	return authz.NewResolver(authz.NewOwnerSource(ownerID), []domain.AuthoritySource{
		botapi.NewClient(botapi.Options{BaseURL: botURL, Secret: "s3cret"}),
		filestore.NewConfigOwnerSource(configPath),
		filestore.NewPermissionsFileSource(permissionsPath),
	}, nil)
}

func session(id string) *domain.Session {
	return &domain.Session{Identity: domain.Identity{ID: id, Username: "u"}}
}

func TestChain_FailOpenWithoutOwner(t *testing.T) {
	dir := t.TempDir()
	r := newResolver("", unreachableURL(t), filepath.Join(dir, "missing.json"), filepath.Join(dir, "missing.json"))

	assert.True(t, r.IsAuthorized(context.Background(), session("12345")))
}

func TestChain_RemoteGrant(t *testing.T) {
	dir := t.TempDir()
	r := newResolver("999", botServer(t, `{"isOwner":false,"dashboard":true}`), filepath.Join(dir, "none"), filepath.Join(dir, "none"))

	assert.True(t, r.IsAuthorized(context.Background(), session("111")))
}

func TestChain_LocalPermissionsAfterRemoteDenial(t *testing.T) {
	dir := t.TempDir()
	perms := writeFile(t, dir, "permissions.json", `{"111":{"dashboard":true}}`)
	r := newResolver("999", botServer(t, `{"isOwner":false,"dashboard":false}`), filepath.Join(dir, "none"), perms)

	assert.True(t, r.IsAuthorized(context.Background(), session("111")))
	assert.False(t, r.IsAuthorized(context.Background(), session("222")))
}

func TestChain_ConfigFileOwner(t *testing.T) {
	dir := t.TempDir()
	cfg := writeFile(t, dir, "config.json", `{"owner":"111","other":"ignored"}`)
	r := newResolver("999", unreachableURL(t), cfg, filepath.Join(dir, "none"))

	assert.True(t, r.IsAuthorized(context.Background(), session("111")))
	assert.False(t, r.IsAuthorized(context.Background(), session("222")))
}

func TestChain_BrokenConfigDoesNotHidePermissions(t *testing.T) {
	dir := t.TempDir()
	cfg := writeFile(t, dir, "config.json", `{not json`)
	perms := writeFile(t, dir, "permissions.json", `{"111":{"dashboard":true}}`)
	r := newResolver("999", unreachableURL(t), cfg, perms)

	assert.True(t, r.IsAuthorized(context.Background(), session("111")))
}

func TestChain_OwnerSetEverythingElseDown(t *testing.T) {
	dir := t.TempDir()
	r := newResolver("999", unreachableURL(t), filepath.Join(dir, "none"), filepath.Join(dir, "none"))

	assert.False(t, r.IsAuthorized(context.Background(), session("111")))
	assert.True(t, r.IsAuthorized(context.Background(), session("999")))
}
