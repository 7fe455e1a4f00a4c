package response

import (
	"time"

	"restaurant-booking/internal/data/entity"
)

type ReservationResponse struct {
	ID              string                   `json:"id"`
	OrderRef        string                   `json:"order_ref"`
	UserID          string                   `json:"user_id"`
	BranchID        string                   `json:"branch_id"`
	TableTypeID     string                   `json:"table_type_id"`
	TableTypeName   string                   `json:"table_type_name,omitempty"`
	ReservationDate string                   `json:"reservation_date"`
	TimeSlot        string                   `json:"time_slot"`
	PartySize       int                      `json:"party_size"`
	TableQuantity   int                      `json:"table_quantity"`
	Status          entity.ReservationStatus `json:"status"`
	PaymentID       *string                  `json:"payment_id,omitempty"`
	PaymentMethod   *entity.PaymentMethod    `json:"payment_method,omitempty"`
	CouponCode      *string                  `json:"coupon_code,omitempty"`
	DiscountApplied float64                  `json:"discount_applied"`
	FinalAmount     float64                  `json:"final_amount"`
	Currency        string                   `json:"currency"`
	Reviews         []ReviewResponse         `json:"reviews,omitempty"`
	CreatedAt       time.Time                `json:"created_at"`
}

type ReviewResponse struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Rating    int       `json:"rating"`
	Comment   *string   `json:"comment,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type TableTypeResponse struct {
	ID       string  `json:"id"`
	BranchID string  `json:"branch_id"`
	Name     string  `json:"name"`
	Capacity int     `json:"capacity"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
	Currency string  `json:"currency"`
}

type AvailabilityResponse struct {
	BranchID        string `json:"branch_id"`
	TableTypeID     string `json:"table_type_id"`
	ReservationDate string `json:"reservation_date"`
	TimeSlot        string `json:"time_slot"`
	TotalUnits      int    `json:"total_units"`
	ReservedUnits   int    `json:"reserved_units"`
	AvailableUnits  int    `json:"available_units"`
}

// Helper converters

func ReservationToResponse(reservation *entity.Reservation) ReservationResponse {
	return ReservationResponse{
		ID:              reservation.ID.String(),
		OrderRef:        reservation.OrderRef,
		UserID:          reservation.UserID.String(),
		BranchID:        reservation.BranchID.String(),
		TableTypeID:     reservation.TableTypeID.String(),
		ReservationDate: reservation.ReservationDate.Format("2006-01-02"),
		TimeSlot:        reservation.TimeSlot,
		PartySize:       reservation.PartySize,
		TableQuantity:   reservation.TableQuantity,
		Status:          reservation.Status,
		PaymentID:       reservation.PaymentID,
		PaymentMethod:   reservation.PaymentMethod,
		CouponCode:      reservation.CouponCode,
		DiscountApplied: reservation.DiscountApplied,
		FinalAmount:     reservation.FinalAmount,
		CreatedAt:       reservation.CreatedAt,
	}
}

func TableTypeToResponse(tableType *entity.TableType) TableTypeResponse {
	return TableTypeResponse{
		ID:       tableType.ID.String(),
		BranchID: tableType.BranchID.String(),
		Name:     tableType.Name,
		Capacity: tableType.Capacity,
		Quantity: tableType.Quantity,
		Price:    tableType.Price,
	}
}

func ReviewToResponse(review *entity.Review) ReviewResponse {
	return ReviewResponse{
		ID:        review.ID.String(),
		UserID:    review.UserID.String(),
		Rating:    review.Rating,
		Comment:   review.Comment,
		CreatedAt: review.CreatedAt,
	}
}
