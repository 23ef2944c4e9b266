package reservation

type State string

const (
	StateRequested      State = "requested"
	StateConfirmed      State = "confirmed"
	StateReadyForPickup State = "ready_for_pickup"
	StateDelivered      State = "delivered"
	StateRejected       State = "rejected"
	StateCancelled      State = "cancelled"
)

func (s State) String() string {
	return string(s)
}

func (s State) IsValid() bool {
	switch s {
	case StateRequested, StateConfirmed, StateReadyForPickup,
		StateDelivered, StateRejected, StateCancelled:
		return true
	default:
		return false
	}
}

// IsActive reports whether the reservation still holds its lot.
// Terminal states release the lot; Delivered additionally retires it.
func (s State) IsActive() bool {
	switch s {
	case StateRequested, StateConfirmed, StateReadyForPickup:
		return true
	default:
		return false
	}
}

func (s State) IsTerminal() bool {
	return s.IsValid() && !s.IsActive()
}

// ActiveStates is the set backing the at-most-one-active-claim invariant.
// The persistence layer enforces it with a partial unique index over
// (lot_id) restricted to these states.
func ActiveStates() []State {
	return []State{StateRequested, StateConfirmed, StateReadyForPickup}
}

// transitionTable declares every legal edge of the reservation lifecycle.
// Any edge absent from this table is rejected without touching the row.
var transitionTable = map[State][]State{
	StateRequested:      {StateConfirmed, StateRejected, StateCancelled},
	StateConfirmed:      {StateReadyForPickup, StateCancelled},
	StateReadyForPickup: {StateDelivered, StateCancelled},
}

func CanTransition(from, to State) bool {
	for _, next := range transitionTable[from] {
		if next == to {
			return true
		}
	}
	return false
}

func NewState(s string) (State, error) {
	state := State(s)
	if !state.IsValid() {
		return "", ErrUnknownState
	}
	return state, nil
}
