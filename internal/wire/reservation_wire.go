package wire

import (
	"restaurant-booking/internal/adaptor"
	"restaurant-booking/pkg/middleware"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireReservation(
	r chi.Router,
	reservationHandler *adaptor.ReservationHandler,
	log *zap.Logger,
) {
	// ==================== USER ROUTES ====================
	r.Group(func(r chi.Router) {
		r.Use(middleware.UserIdentity(log))

		// POST /api/reservations - Book tables for a slot
		r.Post("/api/reservations", reservationHandler.CreateReservation)

		// GET /api/user/reservations - Reservation history (own bookings)
		r.Get("/api/user/reservations", reservationHandler.GetUserReservations)

		// GET /api/reservations/{id} - Reservation details with reviews
		r.Get("/api/reservations/{id}", reservationHandler.GetReservation)

		// POST /api/reservations/{id}/pay-with-wallet - Settle from wallet balance
		r.Post("/api/reservations/{id}/pay-with-wallet", reservationHandler.PayWithWallet)

		// PUT /api/reservations/{id}/cancel - Cancel own reservation
		r.Put("/api/reservations/{id}/cancel", reservationHandler.CancelReservation)

		// POST /api/reservations/{id}/review - Review a visit
		r.Post("/api/reservations/{id}/review", reservationHandler.SubmitReview)
	})

	// ==================== PUBLIC ROUTES ====================
	// GET /api/availability - Remaining units for a slot
	r.Get("/api/availability", reservationHandler.GetAvailability)

	// GET /api/branches/{id}/table-types - A branch's seating categories
	r.Get("/api/branches/{id}/table-types", reservationHandler.GetBranchTableTypes)

	// Gateway callbacks relayed by the payment platform
	r.Post("/api/reservations/{id}/payment/confirm", reservationHandler.ConfirmGatewayPayment)
	r.Post("/api/reservations/{id}/payment/fail", reservationHandler.FailGatewayPayment)

	// ==================== BRANCH ROUTES ====================
	r.Route("/api/branch/reservations", func(r chi.Router) {
		r.Use(middleware.BranchIdentity(log))

		// PUT /api/branch/reservations/{id}/status - Complete or cancel a visit
		r.Put("/{id}/status", reservationHandler.BranchUpdateStatus)
	})
}
