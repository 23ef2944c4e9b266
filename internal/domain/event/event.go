package event

import (
	"time"

	"github.com/google/uuid"
)

// Type enumerates the state-change events emitted after a commit and
// consumed by the notification dispatcher and external reporting.
type Type string

const (
	LotCreated              Type = "lot_created"
	LotUpdated              Type = "lot_updated"
	ReservationRequested    Type = "reservation_requested"
	ReservationStateChanged Type = "reservation_state_changed"
)

func (t Type) String() string {
	return string(t)
}

// Event describes one committed state change. BeforeState/AfterState are
// empty for lot events.
type Event struct {
	Type          Type
	LotID         uuid.UUID
	ReservationID uuid.UUID
	LotOwnerOrgID uuid.UUID
	ClaimantOrgID uuid.UUID
	BeforeState   string
	AfterState    string
	ActorID       uuid.UUID
	OccurredAt    time.Time
}
