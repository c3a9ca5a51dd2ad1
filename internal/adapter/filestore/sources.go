package filestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/pscheid92/ticketdash/internal/domain"
)

// ConfigOwnerSource grants access to the owner named in the bot's config file.
type ConfigOwnerSource struct {
	path string
}

func NewConfigOwnerSource(path string) *ConfigOwnerSource {
	return &ConfigOwnerSource{path: path}
}

func (s *ConfigOwnerSource) Name() string { return "config_file_owner" }

func (s *ConfigOwnerSource) Check(ctx context.Context, identityID string) domain.Verdict {
	var doc struct {
		Owner string `json:"owner"`
	}
	if err := readJSON(s.path, &doc); err != nil {
		logReadFailure(ctx, s.Name(), s.path, err)
		return domain.Inconclusive
	}

	if doc.Owner == "" {
		return domain.Inconclusive
	}
	if doc.Owner == identityID {
		return domain.Affirmative
	}
	return domain.Denied
}

// PermissionsFileSource grants access to users whose entry has dashboard=true.
type PermissionsFileSource struct {
	path string
}

func NewPermissionsFileSource(path string) *PermissionsFileSource {
	return &PermissionsFileSource{path: path}
}

func (s *PermissionsFileSource) Name() string { return "permissions_file" }

func (s *PermissionsFileSource) Check(ctx context.Context, identityID string) domain.Verdict {
	var doc map[string]json.RawMessage
	if err := readJSON(s.path, &doc); err != nil {
		logReadFailure(ctx, s.Name(), s.path, err)
		return domain.Inconclusive
	}

	raw, ok := doc[identityID]
	if !ok {
		return domain.Denied
	}

	// Only a literal true counts; other shapes of the entry are a non-match.
	var entry struct {
		Dashboard any `json:"dashboard"`
	}
	if err := json.Unmarshal(raw, &entry); err != nil {
		return domain.Denied
	}
	if granted, _ := entry.Dashboard.(bool); granted {
		return domain.Affirmative
	}
	return domain.Denied
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}

func logReadFailure(ctx context.Context, source, path string, err error) {
	if errors.Is(err, fs.ErrNotExist) {
		slog.DebugContext(ctx, "Authority file not present", "source", source, "path", path)
		return
	}
	slog.WarnContext(ctx, "Authority file unusable, skipping", "source", source, "path", path, "error", err)
}
