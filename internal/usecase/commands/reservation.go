package commands

import (
	"context"
	"time"

	"foodbridge/internal/domain/actor"
	"foodbridge/internal/domain/event"
	"foodbridge/internal/domain/reservation"
	"foodbridge/internal/infra"
	"foodbridge/internal/pkg/clock"
	"foodbridge/internal/pkg/errs"
	"foodbridge/internal/usecase/notify"
	"foodbridge/internal/usecase/queries"
	"foodbridge/internal/usecase/shared"

	"github.com/google/uuid"
)

type ClaimParams struct {
	RequestedPickupDate *time.Time
}

type ReservationCommands interface {
	// Claim attempts to place a Requested reservation on a lot. The
	// at-most-one-active-claim invariant is decided inside one storage
	// transaction: whichever caller's insert commits first wins, every
	// other concurrent caller gets ErrAlreadyReserved.
	Claim(ctx context.Context, caller actor.Actor, lotID uuid.UUID, params ClaimParams) (*queries.ReservationView, error)
	// Transition moves a reservation along a declared edge of the state
	// machine, appending an immutable transition log entry.
	Transition(ctx context.Context, caller actor.Actor, reservationID uuid.UUID, target reservation.State, note string) (*queries.ReservationView, error)
}

type reservationCommandsImpl struct {
	uow                shared.UnitOfWork
	reservationQueries queries.ReservationQueries
	dispatcher         *notify.Dispatcher
	clock              clock.Clock
}

func NewReservationCommands(
	uow shared.UnitOfWork,
	reservationQueries queries.ReservationQueries,
	dispatcher *notify.Dispatcher,
	clk clock.Clock,
) ReservationCommands {
	return &reservationCommandsImpl{
		uow:                uow,
		reservationQueries: reservationQueries,
		dispatcher:         dispatcher,
		clock:              clk,
	}
}

func (c *reservationCommandsImpl) Claim(ctx context.Context, caller actor.Actor, lotID uuid.UUID, params ClaimParams) (*queries.ReservationView, error) {
	now := c.clock.Now()

	var (
		reservationID uuid.UUID
		ownerOrgID    uuid.UUID
	)
	err := c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		lotEntity, err := tx.Lots().FindByID(ctx, lotID)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return errs.ErrLotNotFound
			}
			return errs.Mark(err, errs.ErrDatabaseOperationFailed)
		}

		if !lotEntity.TierAt(now).ClaimableBy(caller) {
			return errs.ErrLotNotAvailable
		}

		delivered, err := tx.Reservations().HasDeliveredForLot(ctx, lotID)
		if err != nil {
			return errs.Mark(err, errs.ErrDatabaseOperationFailed)
		}
		if delivered {
			return errs.ErrLotRetired
		}

		// Re-check inside the transaction; the partial unique index on
		// active reservations is the final arbiter under concurrency.
		active, err := tx.Reservations().FindActiveByLotID(ctx, lotID)
		if err != nil && !infra.IsKind(err, infra.KindNotFound) {
			return errs.Mark(err, errs.ErrDatabaseOperationFailed)
		}
		if active != nil {
			return errs.ErrAlreadyReserved
		}

		entity, err := reservation.NewReservation(lotID, caller.OrgID, params.RequestedPickupDate, now)
		if err != nil {
			return errs.Mark(err, errs.ErrDomainValidation)
		}

		if _, err := tx.Reservations().Create(ctx, entity); err != nil {
			if infra.IsKind(err, infra.KindConflict) {
				return errs.ErrAlreadyReserved
			}
			return errs.Mark(err, errs.ErrDatabaseOperationFailed)
		}

		reservationID = entity.ID()
		ownerOrgID = lotEntity.OwnerOrgID()
		return nil
	})
	if err != nil {
		return nil, err
	}

	c.dispatcher.DispatchAsync(ctx, event.Event{
		Type:          event.ReservationRequested,
		LotID:         lotID,
		ReservationID: reservationID,
		LotOwnerOrgID: ownerOrgID,
		ClaimantOrgID: caller.OrgID,
		AfterState:    reservation.StateRequested.String(),
		ActorID:       caller.ID,
		OccurredAt:    now,
	})

	return c.reservationQueries.GetByIDSystem(ctx, reservationID)
}

func (c *reservationCommandsImpl) Transition(ctx context.Context, caller actor.Actor, reservationID uuid.UUID, target reservation.State, note string) (*queries.ReservationView, error) {
	now := c.clock.Now()

	var (
		before     reservation.State
		lotID      uuid.UUID
		ownerOrgID uuid.UUID
		claimant   uuid.UUID
	)
	err := c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		entity, err := tx.Reservations().FindByIDForUpdate(ctx, reservationID)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return errs.ErrReservationNotFound
			}
			return errs.Mark(err, errs.ErrDatabaseOperationFailed)
		}

		lotEntity, err := tx.Lots().FindByID(ctx, entity.LotID())
		if err != nil {
			return errs.Mark(err, errs.ErrDatabaseOperationFailed)
		}

		if err := authorizeTransition(caller, entity, lotEntity.OwnerOrgID(), target); err != nil {
			return err
		}

		before = entity.State()
		if err := entity.ApplyTransition(target, caller.ID, note, now); err != nil {
			return errs.Mark(err, errs.ErrInvalidStateTransition)
		}

		if err := tx.Reservations().Update(ctx, entity); err != nil {
			return errs.Mark(err, errs.ErrDatabaseOperationFailed)
		}

		lotID = entity.LotID()
		ownerOrgID = lotEntity.OwnerOrgID()
		claimant = entity.ClaimantOrgID()
		return nil
	})
	if err != nil {
		return nil, err
	}

	c.dispatcher.DispatchAsync(ctx, event.Event{
		Type:          event.ReservationStateChanged,
		LotID:         lotID,
		ReservationID: reservationID,
		LotOwnerOrgID: ownerOrgID,
		ClaimantOrgID: claimant,
		BeforeState:   before.String(),
		AfterState:    target.String(),
		ActorID:       caller.ID,
		OccurredAt:    now,
	})

	return c.reservationQueries.GetByIDSystem(ctx, reservationID)
}

// authorizeTransition: the claimant's org may cancel its own claim; the lot
// owner's org drives the pickup workflow; operators may do either.
func authorizeTransition(caller actor.Actor, res *reservation.Reservation, lotOwnerOrgID uuid.UUID, target reservation.State) error {
	if caller.Role.IsOperator() {
		return nil
	}
	if target == reservation.StateCancelled {
		if res.ClaimantOrgID() == caller.OrgID || lotOwnerOrgID == caller.OrgID {
			return nil
		}
		return errs.ErrNotAuthorized
	}
	if lotOwnerOrgID == caller.OrgID {
		return nil
	}
	return errs.ErrNotAuthorized
}
