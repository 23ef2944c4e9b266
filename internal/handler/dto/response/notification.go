package response

import (
	"encoding/json"
	"time"

	"foodbridge/internal/usecase/queries"

	"github.com/google/uuid"
)

type NotificationResponse struct {
	ID            uuid.UUID       `json:"id"`
	EventType     string          `json:"event_type"`
	LotID         *uuid.UUID      `json:"lot_id,omitempty"`
	ReservationID *uuid.UUID      `json:"reservation_id,omitempty"`
	Payload       json.RawMessage `json:"payload"`
	ReadAt        *time.Time      `json:"read_at,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

type NotificationListResponse struct {
	Items      []*NotificationResponse `json:"items"`
	NextCursor *string                 `json:"next_cursor,omitempty"`
}

func FromNotificationView(v *queries.NotificationView) *NotificationResponse {
	return &NotificationResponse{
		ID:            v.ID,
		EventType:     v.EventType,
		LotID:         v.LotID,
		ReservationID: v.ReservationID,
		Payload:       json.RawMessage(v.Payload),
		ReadAt:        v.ReadAt,
		CreatedAt:     v.CreatedAt,
	}
}

func FromNotificationViews(views []*queries.NotificationView, nextCursor *string) *NotificationListResponse {
	items := make([]*NotificationResponse, len(views))
	for i, v := range views {
		items[i] = FromNotificationView(v)
	}
	return &NotificationListResponse{Items: items, NextCursor: nextCursor}
}
