// Package memory is the process-local permission store used when no Redis
// URL is configured. Contents are lost on restart.
package memory

import (
	"context"
	"maps"
	"sync"

	"github.com/pscheid92/ticketdash/internal/domain"
)

type PermissionStore struct {
	mu    sync.RWMutex
	perms map[string]domain.PermissionSet
}

var _ domain.PermissionStore = (*PermissionStore)(nil)

func NewPermissionStore() *PermissionStore {
	return &PermissionStore{perms: make(map[string]domain.PermissionSet)}
}

func (s *PermissionStore) Get(_ context.Context, userID string) (domain.PermissionSet, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	perms, ok := s.perms[userID]
	if !ok {
		return nil, false, nil
	}
	return maps.Clone(perms), true, nil
}

func (s *PermissionStore) Set(_ context.Context, userID string, perms domain.PermissionSet) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.perms[userID] = maps.Clone(perms)
	return nil
}

func (s *PermissionStore) Delete(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.perms, userID)
	return nil
}

func (s *PermissionStore) All(_ context.Context) (map[string]domain.PermissionSet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := make(map[string]domain.PermissionSet, len(s.perms))
	for id, perms := range s.perms {
		all[id] = maps.Clone(perms)
	}
	return all, nil
}
