package commands

import (
	"context"
	"time"

	"foodbridge/internal/domain/actor"
	"foodbridge/internal/domain/event"
	"foodbridge/internal/domain/lot"
	"foodbridge/internal/infra"
	"foodbridge/internal/pkg/clock"
	"foodbridge/internal/pkg/errs"
	"foodbridge/internal/usecase/notify"
	"foodbridge/internal/usecase/queries"
	"foodbridge/internal/usecase/shared"

	"github.com/google/uuid"
)

type CreateLotParams struct {
	Product         string
	Quantity        int
	Unit            string
	ExpiryDate      time.Time
	ShelfBufferDays int
}

// UpdateLotParams patches a lot; nil fields are left unchanged.
type UpdateLotParams struct {
	Quantity        *int
	Unit            *string
	ExpiryDate      *time.Time
	ShelfBufferDays *int
}

type LotCommands interface {
	Create(ctx context.Context, caller actor.Actor, params CreateLotParams) (*queries.LotView, error)
	Update(ctx context.Context, caller actor.Actor, lotID uuid.UUID, params UpdateLotParams) (*queries.LotView, error)
}

type lotCommandsImpl struct {
	uow        shared.UnitOfWork
	lotQueries queries.LotQueries
	dispatcher *notify.Dispatcher
	clock      clock.Clock
}

func NewLotCommands(
	uow shared.UnitOfWork,
	lotQueries queries.LotQueries,
	dispatcher *notify.Dispatcher,
	clk clock.Clock,
) LotCommands {
	return &lotCommandsImpl{
		uow:        uow,
		lotQueries: lotQueries,
		dispatcher: dispatcher,
		clock:      clk,
	}
}

func (c *lotCommandsImpl) Create(ctx context.Context, caller actor.Actor, params CreateLotParams) (*queries.LotView, error) {
	now := c.clock.Now()

	entity, err := lot.NewLot(
		params.Product,
		params.Quantity,
		params.Unit,
		params.ExpiryDate,
		params.ShelfBufferDays,
		caller.OrgID,
		now,
	)
	if err != nil {
		return nil, errs.Mark(err, errs.ErrDomainValidation)
	}

	err = c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		return tx.Lots().Create(ctx, entity, entity.TierAt(now))
	})
	if err != nil {
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}

	c.dispatcher.DispatchAsync(ctx, event.Event{
		Type:          event.LotCreated,
		LotID:         entity.ID(),
		LotOwnerOrgID: entity.OwnerOrgID(),
		ActorID:       caller.ID,
		OccurredAt:    now,
	})

	return c.lotQueries.GetByIDSystem(ctx, entity.ID())
}

func (c *lotCommandsImpl) Update(ctx context.Context, caller actor.Actor, lotID uuid.UUID, params UpdateLotParams) (*queries.LotView, error) {
	now := c.clock.Now()

	var ownerOrgID uuid.UUID
	err := c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		entity, err := tx.Lots().FindByIDForUpdate(ctx, lotID)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return errs.ErrLotNotFound
			}
			return errs.Mark(err, errs.ErrDatabaseOperationFailed)
		}

		if !caller.Role.IsOperator() && !entity.IsOwnedBy(caller.OrgID) {
			return errs.ErrNotAuthorized
		}

		if params.Quantity != nil || params.Unit != nil {
			quantity := entity.Quantity()
			unit := entity.Unit()
			if params.Quantity != nil {
				quantity = *params.Quantity
			}
			if params.Unit != nil {
				unit = *params.Unit
			}
			if err := entity.Restock(quantity, unit, now); err != nil {
				return errs.Mark(err, errs.ErrDomainValidation)
			}
		}

		if params.ExpiryDate != nil || params.ShelfBufferDays != nil {
			expiry := entity.ExpiryDate()
			buffer := entity.ShelfBufferDays()
			if params.ExpiryDate != nil {
				expiry = *params.ExpiryDate
			}
			if params.ShelfBufferDays != nil {
				buffer = *params.ShelfBufferDays
			}
			if err := entity.Reschedule(expiry, buffer, now); err != nil {
				return errs.Mark(err, errs.ErrDomainValidation)
			}
		}

		ownerOrgID = entity.OwnerOrgID()

		// Expiry or buffer changes invalidate the cached tier; recompute
		// from the updated window.
		if err := tx.Lots().Update(ctx, entity, entity.TierAt(now)); err != nil {
			return errs.Mark(err, errs.ErrDatabaseOperationFailed)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	c.dispatcher.DispatchAsync(ctx, event.Event{
		Type:          event.LotUpdated,
		LotID:         lotID,
		LotOwnerOrgID: ownerOrgID,
		ActorID:       caller.ID,
		OccurredAt:    now,
	})

	return c.lotQueries.GetByIDSystem(ctx, lotID)
}
