package actor

import "github.com/google/uuid"

// Actor is the caller identity supplied by the auth collaborator per call.
// The core trusts these values and performs no credential verification.
type Actor struct {
	ID          uuid.UUID
	OrgID       uuid.UUID
	Role        Role
	Affiliation TierAffiliation
}

func New(id, orgID uuid.UUID, role Role, affiliation TierAffiliation) Actor {
	return Actor{
		ID:          id,
		OrgID:       orgID,
		Role:        role,
		Affiliation: affiliation,
	}
}
