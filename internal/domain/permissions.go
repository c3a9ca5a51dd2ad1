package domain

import "context"

// PermissionSet is a free-form set of per-user flags managed by the
// administrative permissions route, e.g. {"dashboard": true}.
type PermissionSet map[string]any

// Merge returns a copy of p with every key of update applied on top.
func (p PermissionSet) Merge(update PermissionSet) PermissionSet {
	merged := make(PermissionSet, len(p)+len(update))
	for k, v := range p {
		merged[k] = v
	}
	for k, v := range update {
		merged[k] = v
	}
	return merged
}

// PermissionStore holds user id → permission overrides.
type PermissionStore interface {
	Get(ctx context.Context, userID string) (PermissionSet, bool, error)
	Set(ctx context.Context, userID string, perms PermissionSet) error
	Delete(ctx context.Context, userID string) error
	All(ctx context.Context) (map[string]PermissionSet, error)
}
