package push

import (
	"context"

	"foodbridge/internal/infra"
	"foodbridge/internal/infra/db"
	"foodbridge/internal/usecase/notify"
)

// Sink is the production NotificationSink: durable rows in the
// notifications table, live delivery through the hub. It runs on its own
// connection, after and outside the state-changing transaction.
type Sink struct {
	db  db.DBTX
	hub *Hub
}

func NewSink(dbtx db.DBTX, hub *Hub) *Sink {
	return &Sink{db: dbtx, hub: hub}
}

const insertNotificationSQL = `
INSERT INTO notifications (id, recipient_id, event_type, lot_id, reservation_id, payload, created_at)
VALUES ($1, $2, $3, NULLIF($4, '00000000-0000-0000-0000-000000000000'::uuid), NULLIF($5, '00000000-0000-0000-0000-000000000000'::uuid), $6, $7)`

func (s *Sink) RecordDurable(ctx context.Context, n notify.Notification) error {
	_, err := s.db.Exec(ctx, insertNotificationSQL,
		n.ID, n.RecipientID, n.EventType, n.LotID, n.ReservationID, n.Payload, n.CreatedAt,
	)
	if err != nil {
		if db.IsForeignKeyViolation(err) {
			// Recipient vanished between resolution and write; skip silently.
			return nil
		}
		return infra.WrapRepoErr("failed to record notification", err)
	}
	return nil
}

func (s *Sink) TryLivePush(_ context.Context, n notify.Notification) error {
	return s.hub.Publish(n.RecipientID, n.Payload)
}
