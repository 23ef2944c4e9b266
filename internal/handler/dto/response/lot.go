package response

import (
	"time"

	"foodbridge/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
)

type LotResponse struct {
	ID                     uuid.UUID `json:"id"`
	Product                string    `json:"product"`
	Quantity               int       `json:"quantity"`
	Unit                   string    `json:"unit"`
	ExpiryDate             time.Time `json:"expiry_date"`
	ShelfBufferDays        int       `json:"shelf_buffer_days"`
	Tier                   string    `json:"tier"`
	OwnerOrgID             uuid.UUID `json:"owner_org_id"`
	ActiveReservationState *string   `json:"active_reservation_state,omitempty"`
	Retired                bool      `json:"retired"`
	CreatedAt              time.Time `json:"created_at"`
	UpdatedAt              time.Time `json:"updated_at"`
}

type LotListResponse struct {
	Items      []*LotResponse `json:"items"`
	NextCursor *string        `json:"next_cursor,omitempty"`
}

func FromLotView(v *queries.LotView) *LotResponse {
	resp := &LotResponse{}
	_ = copier.Copy(resp, v)
	return resp
}

func FromLotViews(views []*queries.LotView, nextCursor *string) *LotListResponse {
	items := make([]*LotResponse, len(views))
	for i, v := range views {
		items[i] = FromLotView(v)
	}
	return &LotListResponse{Items: items, NextCursor: nextCursor}
}
