package entity

import "time"

type DiscountType string

const (
	DiscountTypePercentage DiscountType = "percentage"
	DiscountTypeFixed      DiscountType = "fixed"
)

type Coupon struct {
	Base
	Code              string       `db:"code"`
	DiscountType      DiscountType `db:"discount_type"`
	DiscountValue     float64      `db:"discount_value"`
	ExpiryDate        time.Time    `db:"expiry_date"`
	MinOrderAmount    float64      `db:"min_order_amount"`
	MaxDiscountAmount *float64     `db:"max_discount_amount"` // percentage cap, nil = uncapped
	IsActive          bool         `db:"is_active"`
}
