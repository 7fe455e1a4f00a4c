package booking

import "restaurant-booking/internal/data/entity"

// FSM is the reservation status transition table.
//
//	pending        -> confirmed | payment_failed | cancelled | expired
//	payment_failed -> confirmed | cancelled
//	confirmed      -> cancelled | completed
//
// cancelled, completed and expired are terminal.
type FSM struct {
	transitions map[entity.ReservationStatus][]entity.ReservationStatus
}

// NewFSM creates the FSM with the predefined transitions.
func NewFSM() *FSM {
	return &FSM{
		transitions: map[entity.ReservationStatus][]entity.ReservationStatus{
			entity.ReservationStatusPending: {
				entity.ReservationStatusConfirmed,
				entity.ReservationStatusPaymentFailed,
				entity.ReservationStatusCancelled,
				entity.ReservationStatusExpired,
			},
			entity.ReservationStatusPaymentFailed: {
				entity.ReservationStatusConfirmed,
				entity.ReservationStatusCancelled,
			},
			entity.ReservationStatusConfirmed: {
				entity.ReservationStatusCancelled,
				entity.ReservationStatusCompleted,
			},
			entity.ReservationStatusCancelled: {},
			entity.ReservationStatusCompleted: {},
			entity.ReservationStatusExpired:   {},
		},
	}
}

// CanTransition checks if transition is allowed.
func (f *FSM) CanTransition(from, to entity.ReservationStatus) bool {
	allowed, ok := f.transitions[from]
	if !ok {
		return false
	}
	for _, s := range allowed {
		if s == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no transition leaves the given status.
func (f *FSM) IsTerminal(status entity.ReservationStatus) bool {
	allowed, ok := f.transitions[status]
	return ok && len(allowed) == 0
}
