package readstore

import (
	"context"
	"fmt"
	"strings"
	"time"

	"foodbridge/internal/infra"
	"foodbridge/internal/infra/db"
	"foodbridge/internal/usecase/queries"

	"github.com/google/uuid"
)

type NotificationReadStore struct {
	db db.DBTX
}

func NewNotificationReadStore(dbtx db.DBTX) *NotificationReadStore {
	return &NotificationReadStore{db: dbtx}
}

func (s *NotificationReadStore) FindByRecipient(ctx context.Context, recipientID uuid.UUID, lastCreatedAt *time.Time, lastID *uuid.UUID, limit int32) ([]*queries.NotificationView, error) {
	args := []any{recipientID}
	conds := []string{"recipient_id = $1"}

	if lastCreatedAt != nil && lastID != nil {
		args = append(args, *lastCreatedAt, *lastID)
		conds = append(conds, fmt.Sprintf("(created_at, id) < ($%d, $%d)", len(args)-1, len(args)))
	}

	args = append(args, limit)
	sql := fmt.Sprintf(`
SELECT id, recipient_id, event_type, lot_id, reservation_id, payload, read_at, created_at
FROM notifications
WHERE %s
ORDER BY created_at DESC, id DESC
LIMIT $%d`, strings.Join(conds, " AND "), len(args))

	rows, err := s.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list notifications", err)
	}
	defer rows.Close()

	var out []*queries.NotificationView
	for rows.Next() {
		var view queries.NotificationView
		if err := rows.Scan(&view.ID, &view.RecipientID, &view.EventType, &view.LotID,
			&view.ReservationID, &view.Payload, &view.ReadAt, &view.CreatedAt); err != nil {
			return nil, infra.WrapRepoErr("failed to scan notification row", err)
		}
		out = append(out, &view)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate notification rows", err)
	}
	return out, nil
}
