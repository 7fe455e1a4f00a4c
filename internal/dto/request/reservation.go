package request

type CreateReservationRequest struct {
	BranchID        string  `json:"branch_id" validate:"required,uuid4"`
	TableTypeID     string  `json:"table_type_id" validate:"required,uuid4"`
	ReservationDate string  `json:"reservation_date" validate:"required,datetime=2006-01-02"`
	TimeSlot        string  `json:"time_slot" validate:"required"`
	PartySize       int     `json:"party_size" validate:"required,min=1"`
	TableQuantity   int     `json:"table_quantity" validate:"required,min=1"`
	CouponCode      *string `json:"coupon_code,omitempty"`
}

type GatewayPaymentRequest struct {
	PaymentID string `json:"payment_id" validate:"required"`
}

type BranchUpdateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=completed cancelled"`
}

type SubmitReviewRequest struct {
	Rating  int     `json:"rating" validate:"required,min=1,max=5"`
	Comment *string `json:"comment,omitempty"`
}

type AvailabilityRequest struct {
	BranchID        string `json:"branch_id" validate:"required,uuid4"`
	TableTypeID     string `json:"table_type_id" validate:"required,uuid4"`
	ReservationDate string `json:"reservation_date" validate:"required,datetime=2006-01-02"`
	TimeSlot        string `json:"time_slot" validate:"required"`
}
