package entity

import (
	"time"

	"github.com/google/uuid"
)

type ReservationStatus string

const (
	ReservationStatusPending       ReservationStatus = "pending"
	ReservationStatusConfirmed     ReservationStatus = "confirmed"
	ReservationStatusPaymentFailed ReservationStatus = "payment_failed"
	ReservationStatusCancelled     ReservationStatus = "cancelled"
	ReservationStatusCompleted     ReservationStatus = "completed"
	// ReservationStatusExpired is the sweeper's terminal state for pending
	// reservations that were never paid. Kept distinct from cancelled so the
	// history shows who abandoned vs who cancelled.
	ReservationStatusExpired ReservationStatus = "expired"
)

type PaymentMethod string

const (
	PaymentMethodGateway PaymentMethod = "gateway"
	PaymentMethodWallet  PaymentMethod = "wallet"
)

// Reservation is one guest's claim on TableQuantity units of a table type
// at a branch, date and time slot. Rows are never deleted; terminal states
// are kept for history.
type Reservation struct {
	Base
	OrderRef        string            `db:"order_ref"`
	UserID          uuid.UUID         `db:"user_id"`
	BranchID        uuid.UUID         `db:"branch_id"`
	TableTypeID     uuid.UUID         `db:"table_type_id"`
	ReservationDate time.Time         `db:"reservation_date"` // date-only
	TimeSlot        string            `db:"time_slot"`        // e.g. "19:00-20:00"
	PartySize       int               `db:"party_size"`
	TableQuantity   int               `db:"table_quantity"`
	Status          ReservationStatus `db:"status"`
	PaymentID       *string           `db:"payment_id"` // external gateway reference
	PaymentMethod   *PaymentMethod    `db:"payment_method"`
	CouponCode      *string           `db:"coupon_code"`
	DiscountApplied float64           `db:"discount_applied"`
	FinalAmount     float64           `db:"final_amount"`
}

// HoldsCapacity reports whether the reservation still occupies table units.
func (r *Reservation) HoldsCapacity() bool {
	return r.Status == ReservationStatusPending || r.Status == ReservationStatusConfirmed
}
