package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/pscheid92/ticketdash/internal/domain"
)

// DefaultKey is the hash holding one JSON-encoded PermissionSet per user id.
const DefaultKey = "ticketdash:permissions"

type PermissionStore struct {
	rdb *goredis.Client
	key string
}

var _ domain.PermissionStore = (*PermissionStore)(nil)

func NewPermissionStore(rdb *goredis.Client, key string) *PermissionStore {
	if key == "" {
		key = DefaultKey
	}
	return &PermissionStore{rdb: rdb, key: key}
}

func (s *PermissionStore) Get(ctx context.Context, userID string) (domain.PermissionSet, bool, error) {
	raw, err := s.rdb.HGet(ctx, s.key, userID).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get permissions: %w", err)
	}

	var perms domain.PermissionSet
	if err := json.Unmarshal(raw, &perms); err != nil {
		return nil, false, fmt.Errorf("failed to decode permissions for %s: %w", userID, err)
	}
	return perms, true, nil
}

func (s *PermissionStore) Set(ctx context.Context, userID string, perms domain.PermissionSet) error {
	raw, err := json.Marshal(perms)
	if err != nil {
		return fmt.Errorf("failed to encode permissions: %w", err)
	}
	if err := s.rdb.HSet(ctx, s.key, userID, raw).Err(); err != nil {
		return fmt.Errorf("failed to set permissions: %w", err)
	}
	return nil
}

func (s *PermissionStore) Delete(ctx context.Context, userID string) error {
	if err := s.rdb.HDel(ctx, s.key, userID).Err(); err != nil {
		return fmt.Errorf("failed to delete permissions: %w", err)
	}
	return nil
}

// All skips entries that no longer decode rather than failing the listing.
func (s *PermissionStore) All(ctx context.Context) (map[string]domain.PermissionSet, error) {
	entries, err := s.rdb.HGetAll(ctx, s.key).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list permissions: %w", err)
	}

	all := make(map[string]domain.PermissionSet, len(entries))
	for userID, raw := range entries {
		var perms domain.PermissionSet
		if err := json.Unmarshal([]byte(raw), &perms); err != nil {
			continue
		}
		all[userID] = perms
	}
	return all, nil
}

// Ping reports whether Redis is reachable. Used by the readiness probe.
func (s *PermissionStore) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

// Close releases the underlying connection pool.
func (s *PermissionStore) Close() error {
	return s.rdb.Close()
}
