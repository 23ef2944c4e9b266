package commands

import (
	"context"
	"fmt"

	"foodbridge/internal/domain/event"
	"foodbridge/internal/domain/reservation"
	"foodbridge/internal/pkg/clock"
	"foodbridge/internal/pkg/errs"
	"foodbridge/internal/usecase/notify"
	"foodbridge/internal/usecase/shared"

	"github.com/google/uuid"
)

const dedupeAuditNote = "cancelled by duplicate-claim repair: a newer active reservation exists for this lot"

type ReconcileReport struct {
	ClearedFlags int64 `json:"cleared_flags"`
	SetFlags     int64 `json:"set_flags"`
}

type DedupeReport struct {
	LotsAffected int         `json:"lots_affected"`
	Cancelled    []uuid.UUID `json:"cancelled"`
}

// MaintenanceCommands are the repair operations. Both are idempotent and
// safe to retry arbitrarily; neither ever creates or deletes reservations,
// and the deduplicator never discards the most recently created claim.
type MaintenanceCommands interface {
	CleanupOrphans(ctx context.Context) (*ReconcileReport, error)
	DeduplicateActiveClaims(ctx context.Context) (*DedupeReport, error)
}

type maintenanceCommandsImpl struct {
	uow        shared.UnitOfWork
	dispatcher *notify.Dispatcher
	clock      clock.Clock
}

func NewMaintenanceCommands(uow shared.UnitOfWork, dispatcher *notify.Dispatcher, clk clock.Clock) MaintenanceCommands {
	return &maintenanceCommandsImpl{
		uow:        uow,
		dispatcher: dispatcher,
		clock:      clk,
	}
}

// CleanupOrphans corrects lots whose legacy claimed indicator disagrees
// with the reservation table. Each direction is a single statement, so a
// concurrent claim() either commits before the statement sees the lot or
// after; either way the indicator only moves toward consistency.
func (c *maintenanceCommandsImpl) CleanupOrphans(ctx context.Context) (*ReconcileReport, error) {
	report := &ReconcileReport{}

	err := c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		cleared, err := tx.Lots().ClearOrphanedClaimFlags(ctx)
		if err != nil {
			return errs.Mark(err, errs.ErrDatabaseOperationFailed)
		}
		set, err := tx.Lots().MarkUnflaggedClaims(ctx)
		if err != nil {
			return errs.Mark(err, errs.ErrDatabaseOperationFailed)
		}
		report.ClearedFlags = cleared
		report.SetFlags = set
		return nil
	})
	if err != nil {
		return nil, err
	}
	return report, nil
}

// DeduplicateActiveClaims is a safety net for a condition the partial
// unique index makes structurally impossible. For every lot carrying more
// than one active reservation it keeps the most recently created one and
// cancels the rest with an audit note, then re-verifies the invariant.
func (c *maintenanceCommandsImpl) DeduplicateActiveClaims(ctx context.Context) (*DedupeReport, error) {
	now := c.clock.Now()
	report := &DedupeReport{}
	var events []event.Event

	err := c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		report.LotsAffected = 0
		report.Cancelled = nil
		events = nil

		lotIDs, err := tx.Reservations().LotIDsWithMultipleActive(ctx)
		if err != nil {
			return errs.Mark(err, errs.ErrDatabaseOperationFailed)
		}

		for _, lotID := range lotIDs {
			// Ordered newest first by createdAt; the head survives.
			active, err := tx.Reservations().FindActiveByLotIDForUpdate(ctx, lotID)
			if err != nil {
				return errs.Mark(err, errs.ErrDatabaseOperationFailed)
			}
			if len(active) <= 1 {
				continue
			}

			report.LotsAffected++
			for _, res := range active[1:] {
				before := res.State()
				if err := res.ApplyTransition(reservation.StateCancelled, uuid.Nil, dedupeAuditNote, now); err != nil {
					return errs.Mark(err, errs.ErrInvalidStateTransition)
				}
				if err := tx.Reservations().Update(ctx, res); err != nil {
					return errs.Mark(err, errs.ErrDatabaseOperationFailed)
				}
				report.Cancelled = append(report.Cancelled, res.ID())
				events = append(events, event.Event{
					Type:          event.ReservationStateChanged,
					LotID:         lotID,
					ReservationID: res.ID(),
					ClaimantOrgID: res.ClaimantOrgID(),
					BeforeState:   before.String(),
					AfterState:    reservation.StateCancelled.String(),
					OccurredAt:    now,
				})
			}

			count, err := tx.Reservations().CountActiveByLotID(ctx, lotID)
			if err != nil {
				return errs.Mark(err, errs.ErrDatabaseOperationFailed)
			}
			if count > 1 {
				return errs.Mark(
					fmt.Errorf("lot %s still has %d active reservations after repair", lotID, count),
					errs.ErrDatabaseOperationFailed,
				)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, ev := range events {
		c.dispatcher.DispatchAsync(ctx, ev)
	}
	return report, nil
}
