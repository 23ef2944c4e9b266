package queries

import (
	"time"

	"github.com/google/uuid"
)

// Read models (DTO for read side)

type LotView struct {
	ID              uuid.UUID `json:"id"`
	Product         string    `json:"product"`
	Quantity        int       `json:"quantity"`
	Unit            string    `json:"unit"`
	ExpiryDate      time.Time `json:"expiry_date"`
	ShelfBufferDays int       `json:"shelf_buffer_days"`
	Tier            string    `json:"tier"`
	OwnerOrgID      uuid.UUID `json:"owner_org_id"`
	// ActiveReservationState is populated only for operator/admin callers.
	ActiveReservationState *string   `json:"active_reservation_state,omitempty"`
	Retired                bool      `json:"retired"`
	CreatedAt              time.Time `json:"created_at"`
	UpdatedAt              time.Time `json:"updated_at"`
}

type TransitionEntry struct {
	From    string    `json:"from"`
	To      string    `json:"to"`
	At      time.Time `json:"at"`
	ActorID uuid.UUID `json:"actor_id"`
	Note    string    `json:"note,omitempty"`
}

type ReservationView struct {
	ID                  uuid.UUID         `json:"id"`
	LotID               uuid.UUID         `json:"lot_id"`
	LotProduct          string            `json:"lot_product"`
	LotOwnerOrgID       uuid.UUID         `json:"lot_owner_org_id"`
	ClaimantOrgID       uuid.UUID         `json:"claimant_org_id"`
	State               string            `json:"state"`
	TransitionLog       []TransitionEntry `json:"transition_log"`
	RequestedPickupDate *time.Time        `json:"requested_pickup_date,omitempty"`
	ActualPickupDate    *time.Time        `json:"actual_pickup_date,omitempty"`
	CreatedAt           time.Time         `json:"created_at"`
	UpdatedAt           time.Time         `json:"updated_at"`
}

type ReservationListItem struct {
	ID            uuid.UUID `json:"id"`
	LotID         uuid.UUID `json:"lot_id"`
	LotProduct    string    `json:"lot_product"`
	ClaimantOrgID uuid.UUID `json:"claimant_org_id"`
	State         string    `json:"state"`
	CreatedAt     time.Time `json:"created_at"`
}

type NotificationView struct {
	ID            uuid.UUID  `json:"id"`
	RecipientID   uuid.UUID  `json:"recipient_id"`
	EventType     string     `json:"event_type"`
	LotID         *uuid.UUID `json:"lot_id,omitempty"`
	ReservationID *uuid.UUID `json:"reservation_id,omitempty"`
	Payload       []byte     `json:"payload"`
	ReadAt        *time.Time `json:"read_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

// LotFilters narrows ListVisible; the tier partition itself comes from the
// caller affiliation, not from here.
type LotFilters struct {
	OwnerOrgID *uuid.UUID
	Product    *string
}

type ReservationFilters struct {
	LotID *uuid.UUID
	State *string
}
