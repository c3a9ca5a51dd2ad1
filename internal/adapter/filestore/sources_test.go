package filestore

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/pscheid92/ticketdash/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestConfigOwnerSource(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		content string
		userID  string
		want    domain.Verdict
	}{
		{"owner matches", `{"owner":"111","prefix":"!"}`, "111", domain.Affirmative},
		{"owner differs", `{"owner":"999"}`, "111", domain.Denied},
		{"no owner field", `{"prefix":"!"}`, "111", domain.Inconclusive},
		{"empty owner", `{"owner":""}`, "", domain.Inconclusive},
		{"malformed json", `{"owner":`, "111", domain.Inconclusive},
		{"owner of wrong type", `{"owner":111}`, "111", domain.Inconclusive},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := NewConfigOwnerSource(writeFile(t, "config.json", tt.content))
			assert.Equal(t, tt.want, src.Check(ctx, tt.userID))
		})
	}
}

func TestConfigOwnerSource_MissingFile(t *testing.T) {
	src := NewConfigOwnerSource(filepath.Join(t.TempDir(), "nope.json"))
	assert.Equal(t, domain.Inconclusive, src.Check(context.Background(), "111"))
}

func TestPermissionsFileSource(t *testing.T) {
	ctx := context.Background()
	content := `{
		"111": {"dashboard": true, "tickets": true},
		"222": {"dashboard": false},
		"333": {"dashboard": "true"},
		"444": true,
		"555": {}
	}`
	src := NewPermissionsFileSource(writeFile(t, "permissions.json", content))

	assert.Equal(t, domain.Affirmative, src.Check(ctx, "111"))
	assert.Equal(t, domain.Denied, src.Check(ctx, "222"))
	assert.Equal(t, domain.Denied, src.Check(ctx, "333"), "only a literal true grants access")
	assert.Equal(t, domain.Denied, src.Check(ctx, "444"))
	assert.Equal(t, domain.Denied, src.Check(ctx, "555"))
	assert.Equal(t, domain.Denied, src.Check(ctx, "666"))
}

func TestPermissionsFileSource_Unusable(t *testing.T) {
	ctx := context.Background()

	missing := NewPermissionsFileSource(filepath.Join(t.TempDir(), "permissions.json"))
	assert.Equal(t, domain.Inconclusive, missing.Check(ctx, "111"))

	malformed := NewPermissionsFileSource(writeFile(t, "permissions.json", `not json`))
	assert.Equal(t, domain.Inconclusive, malformed.Check(ctx, "111"))

	notAnObject := NewPermissionsFileSource(writeFile(t, "permissions.json", `["111"]`))
	assert.Equal(t, domain.Inconclusive, notAnObject.Check(ctx, "111"))
}

func TestPermissionsFileSource_RereadsOnEveryCheck(t *testing.T) {
	ctx := context.Background()
	path := writeFile(t, "permissions.json", `{"111":{"dashboard":false}}`)
	src := NewPermissionsFileSource(path)

	assert.Equal(t, domain.Denied, src.Check(ctx, "111"))

	require.NoError(t, os.WriteFile(path, []byte(`{"111":{"dashboard":true}}`), 0o600))
	assert.Equal(t, domain.Affirmative, src.Check(ctx, "111"))
}

func TestReadPermissionsFile(t *testing.T) {
	path := writeFile(t, "permissions.json", `{"111":{"dashboard":true,"panels":["a"]},"222":"yes","333":null,"444":{}}`)

	entries, skipped, err := ReadPermissionsFile(path)
	require.NoError(t, err)

	assert.Equal(t, domain.PermissionSet{"dashboard": true, "panels": []any{"a"}}, entries["111"])
	assert.Equal(t, domain.PermissionSet{}, entries["444"])
	assert.Len(t, entries, 2)
	assert.ElementsMatch(t, []string{"222", "333"}, skipped)
}

func TestReadPermissionsFile_Failures(t *testing.T) {
	_, _, err := ReadPermissionsFile(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	_, skipped, err := ReadPermissionsFile(writeFile(t, "permissions.json", `{"111":1}`))
	assert.Error(t, err)
	assert.Equal(t, []string{"111"}, skipped)
}
