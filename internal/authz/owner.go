package authz

import (
	"context"

	"github.com/pscheid92/ticketdash/internal/domain"
)

// OwnerSource compares the identity with the configured owner id.
type OwnerSource struct {
	ownerID string
}

func NewOwnerSource(ownerID string) *OwnerSource {
	return &OwnerSource{ownerID: ownerID}
}

func (o *OwnerSource) Name() string { return "owner_id" }

// Configured reports whether an owner id was set at all.
func (o *OwnerSource) Configured() bool {
	return o.ownerID != ""
}

func (o *OwnerSource) Check(_ context.Context, identityID string) domain.Verdict {
	if !o.Configured() {
		return domain.Inconclusive
	}
	if identityID == o.ownerID {
		return domain.Affirmative
	}
	return domain.Denied
}
