// Package booking holds the reservation lifecycle rules shared by the
// service, repository and sweeper layers.
package booking

import "errors"

// Error taxonomy for the booking engine. Handlers map these with errors.Is;
// repositories and services wrap them with fmt.Errorf("...: %w", ...).
var (
	ErrNotFound                 = errors.New("resource not found")
	ErrInvalidState             = errors.New("transition not allowed from current status")
	ErrNoAvailability           = errors.New("no table capacity left for this slot")
	ErrPartySizeExceedsCapacity = errors.New("party size exceeds table capacity")
	ErrCouponInvalid            = errors.New("coupon is invalid or not applicable")
	ErrInsufficientFunds        = errors.New("wallet balance is insufficient")
	ErrUnauthorized             = errors.New("actor does not own this resource")
	ErrExternalPayment          = errors.New("external payment gateway error")

	// ErrConflict marks a lost serialization race (deadlock, serialization
	// failure). Services retry a bounded number of times before surfacing
	// ErrNoAvailability or ErrInvalidState.
	ErrConflict = errors.New("concurrent update conflict")
)
