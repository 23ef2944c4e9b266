package lot

import (
	"time"

	"foodbridge/internal/domain/actor"
)

// Tier is the freshness classification of a lot, derived from its expiry
// date and shelf buffer. It is recomputable at any time; the persisted
// cached_tier column is an optimization, never the source of truth.
type Tier string

const (
	TierFresh   Tier = "fresh"
	TierAging   Tier = "aging"
	TierExpired Tier = "expired"
)

func (t Tier) String() string {
	return string(t)
}

func (t Tier) IsValid() bool {
	switch t {
	case TierFresh, TierAging, TierExpired:
		return true
	default:
		return false
	}
}

// ComputeTier classifies a lot at day granularity:
// Expired when asOf >= expiry, Aging when expiry-buffer <= asOf < expiry,
// Fresh otherwise. Pure and total; same inputs always yield the same tier.
func ComputeTier(expiry time.Time, shelfBufferDays int, asOf time.Time) Tier {
	if shelfBufferDays < 0 {
		shelfBufferDays = 0
	}

	expiryDay := truncateToDay(expiry)
	asOfDay := truncateToDay(asOf)

	if !asOfDay.Before(expiryDay) {
		return TierExpired
	}
	agingStart := expiryDay.AddDate(0, 0, -shelfBufferDays)
	if !asOfDay.Before(agingStart) {
		return TierAging
	}
	return TierFresh
}

// VisibleTierFor maps a consumer affiliation to the single tier it may list
// and claim. Operator and admin callers bypass this partition entirely.
func VisibleTierFor(affiliation actor.TierAffiliation) Tier {
	switch affiliation {
	case actor.AffiliationSocial:
		return TierAging
	case actor.AffiliationRecycling:
		return TierExpired
	default:
		return TierFresh
	}
}

// ClaimableBy reports whether a caller may claim a lot in this tier.
func (t Tier) ClaimableBy(a actor.Actor) bool {
	if a.Role.IsOperator() {
		return true
	}
	return VisibleTierFor(a.Affiliation) == t
}

func truncateToDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
