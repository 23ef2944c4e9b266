package response

import (
	"time"

	"foodbridge/internal/usecase/queries"

	"github.com/google/uuid"
)

type TransitionEntryResponse struct {
	From    string    `json:"from"`
	To      string    `json:"to"`
	At      time.Time `json:"at"`
	ActorID uuid.UUID `json:"actor_id"`
	Note    string    `json:"note,omitempty"`
}

type ReservationResponse struct {
	ID                  uuid.UUID                 `json:"id"`
	LotID               uuid.UUID                 `json:"lot_id"`
	LotProduct          string                    `json:"lot_product"`
	LotOwnerOrgID       uuid.UUID                 `json:"lot_owner_org_id"`
	ClaimantOrgID       uuid.UUID                 `json:"claimant_org_id"`
	State               string                    `json:"state"`
	TransitionLog       []TransitionEntryResponse `json:"transition_log"`
	RequestedPickupDate *time.Time                `json:"requested_pickup_date,omitempty"`
	ActualPickupDate    *time.Time                `json:"actual_pickup_date,omitempty"`
	CreatedAt           time.Time                 `json:"created_at"`
	UpdatedAt           time.Time                 `json:"updated_at"`
}

type ReservationListItemResponse struct {
	ID            uuid.UUID `json:"id"`
	LotID         uuid.UUID `json:"lot_id"`
	LotProduct    string    `json:"lot_product"`
	ClaimantOrgID uuid.UUID `json:"claimant_org_id"`
	State         string    `json:"state"`
	CreatedAt     time.Time `json:"created_at"`
}

type ReservationListResponse struct {
	Items      []*ReservationListItemResponse `json:"items"`
	NextCursor *string                        `json:"next_cursor,omitempty"`
}

func FromReservationView(v *queries.ReservationView) *ReservationResponse {
	log := make([]TransitionEntryResponse, len(v.TransitionLog))
	for i, e := range v.TransitionLog {
		log[i] = TransitionEntryResponse{
			From:    e.From,
			To:      e.To,
			At:      e.At,
			ActorID: e.ActorID,
			Note:    e.Note,
		}
	}
	return &ReservationResponse{
		ID:                  v.ID,
		LotID:               v.LotID,
		LotProduct:          v.LotProduct,
		LotOwnerOrgID:       v.LotOwnerOrgID,
		ClaimantOrgID:       v.ClaimantOrgID,
		State:               v.State,
		TransitionLog:       log,
		RequestedPickupDate: v.RequestedPickupDate,
		ActualPickupDate:    v.ActualPickupDate,
		CreatedAt:           v.CreatedAt,
		UpdatedAt:           v.UpdatedAt,
	}
}

func FromReservationList(items []*queries.ReservationListItem, nextCursor *string) *ReservationListResponse {
	res := make([]*ReservationListItemResponse, len(items))
	for i, it := range items {
		res[i] = &ReservationListItemResponse{
			ID:            it.ID,
			LotID:         it.LotID,
			LotProduct:    it.LotProduct,
			ClaimantOrgID: it.ClaimantOrgID,
			State:         it.State,
			CreatedAt:     it.CreatedAt,
		}
	}
	return &ReservationListResponse{Items: res, NextCursor: nextCursor}
}
