package actor

import "errors"

var (
	ErrInvalidRole        = errors.New("invalid role")
	ErrInvalidAffiliation = errors.New("invalid tier affiliation")
)

type Role string

const (
	RoleMember   Role = "member"
	RoleOperator Role = "operator"
	RoleAdmin    Role = "admin"
)

func (r Role) String() string {
	return string(r)
}

func (r Role) IsValid() bool {
	switch r {
	case RoleMember, RoleOperator, RoleAdmin:
		return true
	default:
		return false
	}
}

// Operators and admins may see every tier and run maintenance operations.
func (r Role) IsOperator() bool {
	return r == RoleOperator || r == RoleAdmin
}

func NewRole(s string) (Role, error) {
	role := Role(s)
	if !role.IsValid() {
		return "", ErrInvalidRole
	}
	return role, nil
}

// TierAffiliation is the consumer category of an organization. It restricts
// which freshness tiers the organization may list and claim, keeping
// different consumer classes from contending over the same lots.
type TierAffiliation string

const (
	AffiliationPrivate   TierAffiliation = "private"
	AffiliationSocial    TierAffiliation = "social"
	AffiliationRecycling TierAffiliation = "recycling"
)

func (a TierAffiliation) String() string {
	return string(a)
}

func (a TierAffiliation) IsValid() bool {
	switch a {
	case AffiliationPrivate, AffiliationSocial, AffiliationRecycling:
		return true
	default:
		return false
	}
}

func NewTierAffiliation(s string) (TierAffiliation, error) {
	aff := TierAffiliation(s)
	if !aff.IsValid() {
		return "", ErrInvalidAffiliation
	}
	return aff, nil
}
