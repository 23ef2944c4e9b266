package reservation

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrUnknownState      = errors.New("unknown reservation state")
	ErrIllegalTransition = errors.New("illegal state transition")
	ErrMissingClaimant   = errors.New("claimant organization is required")
	ErrMissingLot        = errors.New("lot reference is required")
	ErrPickupInPast      = errors.New("requested pickup date cannot be in the past")
)

// Transition is one immutable entry of the reservation's audit log.
// Entries are only ever appended, never rewritten or reordered.
type Transition struct {
	From    State     `json:"from"`
	To      State     `json:"to"`
	At      time.Time `json:"at"`
	ActorID uuid.UUID `json:"actor_id"`
	Note    string    `json:"note,omitempty"`
}

// Reservation is a claim by one organization against one lot. It is created
// only by a successful claim, mutated only through declared transitions, and
// never deleted; terminal reservations remain as history.
type Reservation struct {
	id                  uuid.UUID
	lotID               uuid.UUID
	claimantOrgID       uuid.UUID
	state               State
	transitionLog       []Transition
	requestedPickupDate *time.Time
	actualPickupDate    *time.Time
	createdAt           time.Time
	updatedAt           time.Time
}

func NewReservation(
	lotID uuid.UUID,
	claimantOrgID uuid.UUID,
	requestedPickupDate *time.Time,
	now time.Time,
) (*Reservation, error) {
	if lotID == uuid.Nil {
		return nil, ErrMissingLot
	}
	if claimantOrgID == uuid.Nil {
		return nil, ErrMissingClaimant
	}
	if requestedPickupDate != nil && requestedPickupDate.Before(now.Truncate(24*time.Hour)) {
		return nil, ErrPickupInPast
	}

	return &Reservation{
		id:                  uuid.New(),
		lotID:               lotID,
		claimantOrgID:       claimantOrgID,
		state:               StateRequested,
		requestedPickupDate: requestedPickupDate,
		createdAt:           now,
		updatedAt:           now,
	}, nil
}

func ReconstructReservation(
	id, lotID, claimantOrgID uuid.UUID,
	state State,
	transitionLog []Transition,
	requestedPickupDate, actualPickupDate *time.Time,
	createdAt, updatedAt time.Time,
) *Reservation {
	return &Reservation{
		id:                  id,
		lotID:               lotID,
		claimantOrgID:       claimantOrgID,
		state:               state,
		transitionLog:       transitionLog,
		requestedPickupDate: requestedPickupDate,
		actualPickupDate:    actualPickupDate,
		createdAt:           createdAt,
		updatedAt:           updatedAt,
	}
}

// ApplyTransition moves the reservation along a declared edge and appends
// the audit entry. Rejected edges leave the reservation untouched.
func (r *Reservation) ApplyTransition(target State, actorID uuid.UUID, note string, now time.Time) error {
	if !target.IsValid() {
		return ErrUnknownState
	}
	if !CanTransition(r.state, target) {
		return ErrIllegalTransition
	}

	r.transitionLog = append(r.transitionLog, Transition{
		From:    r.state,
		To:      target,
		At:      now,
		ActorID: actorID,
		Note:    note,
	})
	r.state = target
	r.updatedAt = now

	if target == StateDelivered {
		at := now
		r.actualPickupDate = &at
	}
	return nil
}

func (r *Reservation) IsActive() bool {
	return r.state.IsActive()
}

func (r *Reservation) ID() uuid.UUID            { return r.id }
func (r *Reservation) LotID() uuid.UUID         { return r.lotID }
func (r *Reservation) ClaimantOrgID() uuid.UUID { return r.claimantOrgID }
func (r *Reservation) State() State             { return r.state }
func (r *Reservation) CreatedAt() time.Time     { return r.createdAt }
func (r *Reservation) UpdatedAt() time.Time     { return r.updatedAt }

func (r *Reservation) RequestedPickupDate() *time.Time { return r.requestedPickupDate }
func (r *Reservation) ActualPickupDate() *time.Time    { return r.actualPickupDate }

// TransitionLog returns a copy; the log itself is append-only.
func (r *Reservation) TransitionLog() []Transition {
	out := make([]Transition, len(r.transitionLog))
	copy(out, r.transitionLog)
	return out
}
