package queries

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type NotificationQueries interface {
	ListByRecipient(ctx context.Context, recipientID uuid.UUID, after *Cursor, limit int) ([]*NotificationView, *Cursor, error)
}

type NotificationViewRepo interface {
	FindByRecipient(ctx context.Context, recipientID uuid.UUID, lastCreatedAt *time.Time, lastID *uuid.UUID, limit int32) ([]*NotificationView, error)
}

type notificationQueriesImpl struct {
	repo NotificationViewRepo
}

func NewNotificationQueries(repo NotificationViewRepo) NotificationQueries {
	return &notificationQueriesImpl{repo: repo}
}

func (q *notificationQueriesImpl) ListByRecipient(ctx context.Context, recipientID uuid.UUID, after *Cursor, limit int) ([]*NotificationView, *Cursor, error) {
	limit = ValidateLimit(limit)

	var lastCreatedAt *time.Time
	var lastID *uuid.UUID
	if after != nil && after.After != "" {
		t, id, err := DecodeAfterCursor(after.After)
		if err != nil {
			return nil, nil, err
		}
		lastCreatedAt, lastID = &t, &id
	}

	rows, err := q.repo.FindByRecipient(ctx, recipientID, lastCreatedAt, lastID, int32(limit+1))
	if err != nil {
		return nil, nil, err
	}

	var next *Cursor
	if len(rows) > limit {
		rows = rows[:limit]
		last := rows[len(rows)-1]
		next = &Cursor{After: EncodeAfterCursor(last.CreatedAt, last.ID)}
	}
	return rows, next, nil
}
