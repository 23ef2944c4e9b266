//go:build unit

package reservation_test

import (
	"testing"
	"time"

	"foodbridge/internal/domain/reservation"
	"foodbridge/tests/common/builder"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewReservation(t *testing.T) {
	t.Run("basic success case", func(t *testing.T) {
		actual, err := builder.NewReservationBuilder().BuildDomain()
		require.NoError(t, err)
		require.NotNil(t, actual)

		assert.NotEqual(t, uuid.Nil, actual.ID())
		assert.Equal(t, reservation.StateRequested, actual.State())
		assert.True(t, actual.IsActive())
		assert.Empty(t, actual.TransitionLog())
		assert.Nil(t, actual.ActualPickupDate())
	})

	t.Run("missing lot rejected", func(t *testing.T) {
		_, err := builder.NewReservationBuilder().
			With(func(b *builder.ReservationBuilder) { b.LotID = uuid.Nil }).
			BuildDomain()
		assert.ErrorIs(t, err, reservation.ErrMissingLot)
	})

	t.Run("missing claimant rejected", func(t *testing.T) {
		_, err := builder.NewReservationBuilder().
			With(func(b *builder.ReservationBuilder) { b.ClaimantOrgID = uuid.Nil }).
			BuildDomain()
		assert.ErrorIs(t, err, reservation.ErrMissingClaimant)
	})

	t.Run("pickup date in the past rejected", func(t *testing.T) {
		_, err := builder.NewReservationBuilder().
			With(func(b *builder.ReservationBuilder) {
				past := b.CreatedAt.AddDate(0, 0, -2)
				b.RequestedPickupDate = &past
			}).
			BuildDomain()
		assert.ErrorIs(t, err, reservation.ErrPickupInPast)
	})

	t.Run("pickup date is optional", func(t *testing.T) {
		actual, err := builder.NewReservationBuilder().
			With(func(b *builder.ReservationBuilder) { b.RequestedPickupDate = nil }).
			BuildDomain()
		require.NoError(t, err)
		assert.Nil(t, actual.RequestedPickupDate())
	})
}

func TestApplyTransition(t *testing.T) {
	allStates := []reservation.State{
		reservation.StateRequested,
		reservation.StateConfirmed,
		reservation.StateReadyForPickup,
		reservation.StateDelivered,
		reservation.StateRejected,
		reservation.StateCancelled,
	}

	legal := map[reservation.State][]reservation.State{
		reservation.StateRequested:      {reservation.StateConfirmed, reservation.StateRejected, reservation.StateCancelled},
		reservation.StateConfirmed:      {reservation.StateReadyForPickup, reservation.StateCancelled},
		reservation.StateReadyForPickup: {reservation.StateDelivered, reservation.StateCancelled},
		reservation.StateDelivered:      {},
		reservation.StateRejected:       {},
		reservation.StateCancelled:      {},
	}

	isLegal := func(from, to reservation.State) bool {
		for _, next := range legal[from] {
			if next == to {
				return true
			}
		}
		return false
	}

	now := time.Date(2026, 8, 31, 9, 0, 0, 0, time.UTC)
	actorID := uuid.New()

	t.Run("every edge of the lifecycle", func(t *testing.T) {
		for _, from := range allStates {
			for _, to := range allStates {
				entity := reconstructInState(t, from)
				err := entity.ApplyTransition(to, actorID, "", now)
				if isLegal(from, to) {
					assert.NoError(t, err, "%s -> %s should be allowed", from, to)
					assert.Equal(t, to, entity.State())
				} else {
					assert.ErrorIs(t, err, reservation.ErrIllegalTransition, "%s -> %s should be rejected", from, to)
					assert.Equal(t, from, entity.State(), "rejected edge must not change state")
				}
			}
		}
	})

	t.Run("unknown target state rejected", func(t *testing.T) {
		entity := reconstructInState(t, reservation.StateRequested)
		err := entity.ApplyTransition(reservation.State("bogus"), actorID, "", now)
		assert.ErrorIs(t, err, reservation.ErrUnknownState)
	})

	t.Run("skipping a stage is rejected", func(t *testing.T) {
		entity := reconstructInState(t, reservation.StateRequested)
		err := entity.ApplyTransition(reservation.StateDelivered, actorID, "", now)
		assert.ErrorIs(t, err, reservation.ErrIllegalTransition)
	})

	t.Run("full pickup chain appends one log entry per stage", func(t *testing.T) {
		entity, err := builder.NewReservationBuilder().BuildDomain()
		require.NoError(t, err)

		steps := []reservation.State{
			reservation.StateConfirmed,
			reservation.StateReadyForPickup,
			reservation.StateDelivered,
		}
		for i, target := range steps {
			at := now.Add(time.Duration(i) * time.Hour)
			require.NoError(t, entity.ApplyTransition(target, actorID, "step", at))
		}

		log := entity.TransitionLog()
		require.Len(t, log, 3)
		assert.Equal(t, reservation.StateRequested, log[0].From)
		assert.Equal(t, reservation.StateConfirmed, log[0].To)
		assert.Equal(t, reservation.StateConfirmed, log[1].From)
		assert.Equal(t, reservation.StateReadyForPickup, log[1].To)
		assert.Equal(t, reservation.StateReadyForPickup, log[2].From)
		assert.Equal(t, reservation.StateDelivered, log[2].To)
		for _, entry := range log {
			assert.Equal(t, actorID, entry.ActorID)
			assert.Equal(t, "step", entry.Note)
		}
	})

	t.Run("delivery records the actual pickup time", func(t *testing.T) {
		entity := reconstructInState(t, reservation.StateReadyForPickup)
		require.NoError(t, entity.ApplyTransition(reservation.StateDelivered, actorID, "", now))
		require.NotNil(t, entity.ActualPickupDate())
		assert.Equal(t, now, *entity.ActualPickupDate())
		assert.False(t, entity.IsActive())
	})

	t.Run("rejected edge appends nothing to the log", func(t *testing.T) {
		entity := reconstructInState(t, reservation.StateCancelled)
		_ = entity.ApplyTransition(reservation.StateConfirmed, actorID, "", now)
		assert.Empty(t, entity.TransitionLog())
	})

	t.Run("log accessor returns a copy", func(t *testing.T) {
		entity := reconstructInState(t, reservation.StateRequested)
		require.NoError(t, entity.ApplyTransition(reservation.StateConfirmed, actorID, "original", now))

		leaked := entity.TransitionLog()
		leaked[0].Note = "tampered"

		assert.Equal(t, "original", entity.TransitionLog()[0].Note)
	})
}

func TestStateHelpers(t *testing.T) {
	assert.True(t, reservation.StateRequested.IsActive())
	assert.True(t, reservation.StateConfirmed.IsActive())
	assert.True(t, reservation.StateReadyForPickup.IsActive())
	assert.False(t, reservation.StateDelivered.IsActive())
	assert.False(t, reservation.StateRejected.IsActive())
	assert.False(t, reservation.StateCancelled.IsActive())

	assert.True(t, reservation.StateDelivered.IsTerminal())
	assert.False(t, reservation.StateRequested.IsTerminal())
	assert.False(t, reservation.State("bogus").IsTerminal())

	_, err := reservation.NewState("confirmed")
	assert.NoError(t, err)
	_, err = reservation.NewState("unknown")
	assert.ErrorIs(t, err, reservation.ErrUnknownState)
}

func reconstructInState(t *testing.T, state reservation.State) *reservation.Reservation {
	t.Helper()
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	return reservation.ReconstructReservation(
		uuid.New(), uuid.New(), uuid.New(),
		state, nil, nil, nil, now, now,
	)
}
