package notify

import (
	"context"
	"encoding/json"
	"log/slog"

	"foodbridge/internal/domain/event"
	"foodbridge/internal/pkg/clock"

	"github.com/google/uuid"
)

// Dispatcher fans out state-change events to stakeholder notifications.
// It runs strictly after the triggering transaction has committed and is
// the only component allowed to swallow errors: a failed durable write or
// live push is logged and dropped, never surfaced to the caller of the
// state-changing operation.
type Dispatcher struct {
	sink     NotificationSink
	resolver RecipientResolver
	clock    clock.Clock
	logger   *slog.Logger
}

func NewDispatcher(sink NotificationSink, resolver RecipientResolver, clk clock.Clock, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		sink:     sink,
		resolver: resolver,
		clock:    clk,
		logger:   logger,
	}
}

// DispatchAsync detaches the fan-out from the caller's request lifecycle.
// The derived context survives request cancellation; the already-committed
// transition cannot be affected by anything that happens here.
func (d *Dispatcher) DispatchAsync(ctx context.Context, ev event.Event) {
	detached := context.WithoutCancel(ctx)
	go d.Dispatch(detached, ev)
}

func (d *Dispatcher) Dispatch(ctx context.Context, ev event.Event) {
	recipients, err := d.resolveRecipients(ctx, ev)
	if err != nil {
		d.logger.Warn("notification recipient resolution failed",
			"event_type", ev.Type.String(), "error", err.Error())
		return
	}
	if len(recipients) == 0 {
		return
	}

	payload, err := json.Marshal(map[string]any{
		"type":           ev.Type.String(),
		"lot_id":         nilIfZero(ev.LotID),
		"reservation_id": nilIfZero(ev.ReservationID),
		"before_state":   ev.BeforeState,
		"after_state":    ev.AfterState,
		"actor_id":       ev.ActorID,
		"occurred_at":    ev.OccurredAt,
	})
	if err != nil {
		d.logger.Error("notification payload marshal failed", "error", err.Error())
		return
	}

	for _, recipient := range recipients {
		n := Notification{
			ID:            uuid.New(),
			RecipientID:   recipient.ID,
			EventType:     ev.Type.String(),
			LotID:         ev.LotID,
			ReservationID: ev.ReservationID,
			Payload:       payload,
			CreatedAt:     d.clock.Now(),
		}

		if err := d.sink.RecordDurable(ctx, n); err != nil {
			d.logger.Error("durable notification write failed",
				"recipient_id", recipient.ID.String(),
				"event_type", ev.Type.String(),
				"error", err.Error())
			continue
		}

		if err := d.sink.TryLivePush(ctx, n); err != nil {
			d.logger.Warn("live push failed",
				"recipient_id", recipient.ID.String(),
				"event_type", ev.Type.String(),
				"error", err.Error())
		}
	}
}

// resolveRecipients builds the recipient set per event type. The acting
// user never receives a notification about their own action.
func (d *Dispatcher) resolveRecipients(ctx context.Context, ev event.Event) ([]Recipient, error) {
	seen := map[uuid.UUID]struct{}{ev.ActorID: {}}
	var out []Recipient

	appendUnique := func(rs []Recipient) {
		for _, r := range rs {
			if _, dup := seen[r.ID]; dup {
				continue
			}
			seen[r.ID] = struct{}{}
			out = append(out, r)
		}
	}

	if ev.LotOwnerOrgID != uuid.Nil {
		owners, err := d.resolver.OrgMembers(ctx, ev.LotOwnerOrgID)
		if err != nil {
			return nil, err
		}
		appendUnique(owners)
	}

	if ev.ClaimantOrgID != uuid.Nil {
		claimants, err := d.resolver.OrgMembers(ctx, ev.ClaimantOrgID)
		if err != nil {
			return nil, err
		}
		appendUnique(claimants)
	}

	if ev.Type == event.ReservationRequested {
		operators, err := d.resolver.Operators(ctx)
		if err != nil {
			return nil, err
		}
		appendUnique(operators)
	}

	return out, nil
}

func nilIfZero(id uuid.UUID) *uuid.UUID {
	if id == uuid.Nil {
		return nil
	}
	return &id
}
