// Package pricing computes discounts and final amounts for bookings.
// It is pure: no store access, the clock is passed in.
package pricing

import (
	"time"

	"restaurant-booking/internal/booking"
	"restaurant-booking/internal/data/entity"
)

// Evaluate applies a coupon to a base amount.
//
// A nil coupon means no code was supplied: discount 0, final = base.
// Returns booking.ErrCouponInvalid when the coupon is inactive, expired,
// or the base amount is below the coupon's minimum order amount.
func Evaluate(coupon *entity.Coupon, baseAmount float64, now time.Time) (discount, finalAmount float64, err error) {
	if coupon == nil {
		return 0, baseAmount, nil
	}

	if !coupon.IsActive {
		return 0, 0, booking.ErrCouponInvalid
	}
	if coupon.ExpiryDate.Before(now) {
		return 0, 0, booking.ErrCouponInvalid
	}
	if baseAmount < coupon.MinOrderAmount {
		return 0, 0, booking.ErrCouponInvalid
	}

	switch coupon.DiscountType {
	case entity.DiscountTypePercentage:
		discount = baseAmount * coupon.DiscountValue / 100
		if coupon.MaxDiscountAmount != nil && discount > *coupon.MaxDiscountAmount {
			discount = *coupon.MaxDiscountAmount
		}
	case entity.DiscountTypeFixed:
		// The flat amount already bounds itself, no further clamp.
		discount = coupon.DiscountValue
	default:
		return 0, 0, booking.ErrCouponInvalid
	}

	finalAmount = baseAmount - discount
	if finalAmount < 0 {
		finalAmount = 0
	}

	return discount, finalAmount, nil
}
