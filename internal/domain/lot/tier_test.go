//go:build unit

package lot_test

import (
	"testing"
	"time"

	"foodbridge/internal/domain/actor"
	"foodbridge/internal/domain/lot"

	"github.com/stretchr/testify/assert"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestComputeTier(t *testing.T) {
	expiry := day(2026, 9, 10)

	cases := []struct {
		name   string
		buffer int
		asOf   time.Time
		want   lot.Tier
	}{
		{
			name:   "well before the aging window",
			buffer: 2,
			asOf:   day(2026, 9, 1),
			want:   lot.TierFresh,
		},
		{
			name:   "day before the aging window starts",
			buffer: 2,
			asOf:   day(2026, 9, 7),
			want:   lot.TierFresh,
		},
		{
			name:   "first day of the aging window",
			buffer: 2,
			asOf:   day(2026, 9, 8),
			want:   lot.TierAging,
		},
		{
			name:   "last day before expiry",
			buffer: 2,
			asOf:   day(2026, 9, 9),
			want:   lot.TierAging,
		},
		{
			name:   "expiry day itself",
			buffer: 2,
			asOf:   day(2026, 9, 10),
			want:   lot.TierExpired,
		},
		{
			name:   "after expiry",
			buffer: 2,
			asOf:   day(2026, 9, 15),
			want:   lot.TierExpired,
		},
		{
			name:   "zero buffer skips aging entirely",
			buffer: 0,
			asOf:   day(2026, 9, 9),
			want:   lot.TierFresh,
		},
		{
			name:   "zero buffer still expires on expiry day",
			buffer: 0,
			asOf:   day(2026, 9, 10),
			want:   lot.TierExpired,
		},
		{
			name:   "negative buffer treated as zero",
			buffer: -3,
			asOf:   day(2026, 9, 9),
			want:   lot.TierFresh,
		},
		{
			name:   "time of day is ignored",
			buffer: 2,
			asOf:   time.Date(2026, 9, 7, 23, 59, 59, 0, time.UTC),
			want:   lot.TierFresh,
		},
		{
			name:   "non-UTC zone normalized before comparing days",
			buffer: 2,
			asOf:   time.Date(2026, 9, 8, 1, 0, 0, 0, time.FixedZone("JST", 9*3600)),
			want:   lot.TierFresh, // 2026-09-07 in UTC
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, lot.ComputeTier(expiry, c.buffer, c.asOf))
		})
	}
}

func TestComputeTierIsDeterministic(t *testing.T) {
	expiry := day(2026, 9, 10)
	asOf := day(2026, 9, 8)

	first := lot.ComputeTier(expiry, 2, asOf)
	for range 10 {
		assert.Equal(t, first, lot.ComputeTier(expiry, 2, asOf))
	}
}

func TestVisibleTierFor(t *testing.T) {
	assert.Equal(t, lot.TierFresh, lot.VisibleTierFor(actor.AffiliationPrivate))
	assert.Equal(t, lot.TierAging, lot.VisibleTierFor(actor.AffiliationSocial))
	assert.Equal(t, lot.TierExpired, lot.VisibleTierFor(actor.AffiliationRecycling))
}

func TestTierClaimableBy(t *testing.T) {
	member := func(aff actor.TierAffiliation) actor.Actor {
		return actor.Actor{Role: actor.RoleMember, Affiliation: aff}
	}

	t.Run("members claim only their partition", func(t *testing.T) {
		assert.True(t, lot.TierFresh.ClaimableBy(member(actor.AffiliationPrivate)))
		assert.False(t, lot.TierAging.ClaimableBy(member(actor.AffiliationPrivate)))
		assert.True(t, lot.TierAging.ClaimableBy(member(actor.AffiliationSocial)))
		assert.False(t, lot.TierExpired.ClaimableBy(member(actor.AffiliationSocial)))
		assert.True(t, lot.TierExpired.ClaimableBy(member(actor.AffiliationRecycling)))
		assert.False(t, lot.TierFresh.ClaimableBy(member(actor.AffiliationRecycling)))
	})

	t.Run("operators claim any tier", func(t *testing.T) {
		op := actor.Actor{Role: actor.RoleOperator, Affiliation: actor.AffiliationPrivate}
		assert.True(t, lot.TierFresh.ClaimableBy(op))
		assert.True(t, lot.TierAging.ClaimableBy(op))
		assert.True(t, lot.TierExpired.ClaimableBy(op))
	})
}
