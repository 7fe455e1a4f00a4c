package adaptor

import (
	"encoding/json"
	"errors"
	"net/http"

	"restaurant-booking/internal/booking"
	"restaurant-booking/internal/dto/request"
	"restaurant-booking/internal/usecase"
	"restaurant-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type ReservationHandler struct {
	service usecase.ReservationService
	log     *zap.Logger
}

func NewReservationHandler(service usecase.ReservationService, log *zap.Logger) *ReservationHandler {
	return &ReservationHandler{
		service: service,
		log:     log.With(zap.String("handler", "reservation")),
	}
}

// CreateReservation handles POST /api/reservations (protected)
func (h *ReservationHandler) CreateReservation(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	var req request.CreateReservationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	reservation, err := h.service.CreateReservation(r.Context(), userID.String(), &req)
	if err != nil {
		h.handleServiceError(w, err, "create reservation")
		return
	}

	utils.ResponseCreated(w, "success", reservation)
}

// GetReservation handles GET /api/reservations/{id} (protected)
func (h *ReservationHandler) GetReservation(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	reservationID := chi.URLParam(r, "id")

	reservation, err := h.service.GetReservation(r.Context(), userID.String(), reservationID)
	if err != nil {
		h.handleServiceError(w, err, "get reservation")
		return
	}

	utils.ResponseSuccess(w, "success", reservation)
}

// GetUserReservations handles GET /api/user/reservations (protected)
func (h *ReservationHandler) GetUserReservations(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	query := r.URL.Query()
	req := &request.PaginatedRequest{
		Page:    utils.ParseInt(query.Get("page"), 1),
		PerPage: utils.ParseInt(query.Get("per_page"), 10),
	}

	reservations, err := h.service.GetUserReservations(r.Context(), userID.String(), req)
	if err != nil {
		h.handleServiceError(w, err, "get user reservations")
		return
	}

	utils.ResponseSuccess(w, "success", reservations)
}

// GetAvailability handles GET /api/availability
func (h *ReservationHandler) GetAvailability(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	req := &request.AvailabilityRequest{
		BranchID:        query.Get("branch_id"),
		TableTypeID:     query.Get("table_type_id"),
		ReservationDate: query.Get("reservation_date"),
		TimeSlot:        query.Get("time_slot"),
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	availability, err := h.service.GetAvailability(r.Context(), req)
	if err != nil {
		h.handleServiceError(w, err, "get availability")
		return
	}

	utils.ResponseSuccess(w, "success", availability)
}

// GetBranchTableTypes handles GET /api/branches/{id}/table-types
func (h *ReservationHandler) GetBranchTableTypes(w http.ResponseWriter, r *http.Request) {
	branchID := chi.URLParam(r, "id")

	tableTypes, err := h.service.ListTableTypes(r.Context(), branchID)
	if err != nil {
		h.handleServiceError(w, err, "list table types")
		return
	}

	utils.ResponseSuccess(w, "success", tableTypes)
}

// ConfirmGatewayPayment handles POST /api/reservations/{id}/payment/confirm
func (h *ReservationHandler) ConfirmGatewayPayment(w http.ResponseWriter, r *http.Request) {
	reservationID := chi.URLParam(r, "id")

	var req request.GatewayPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	reservation, err := h.service.ConfirmGatewayPayment(r.Context(), reservationID, req.PaymentID)
	if err != nil {
		h.handleServiceError(w, err, "confirm gateway payment")
		return
	}

	utils.ResponseSuccess(w, "success", reservation)
}

// FailGatewayPayment handles POST /api/reservations/{id}/payment/fail
func (h *ReservationHandler) FailGatewayPayment(w http.ResponseWriter, r *http.Request) {
	reservationID := chi.URLParam(r, "id")

	var req request.GatewayPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	reservation, err := h.service.FailGatewayPayment(r.Context(), reservationID, req.PaymentID)
	if err != nil {
		h.handleServiceError(w, err, "fail gateway payment")
		return
	}

	utils.ResponseSuccess(w, "success", reservation)
}

// PayWithWallet handles POST /api/reservations/{id}/pay-with-wallet (protected)
func (h *ReservationHandler) PayWithWallet(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	reservationID := chi.URLParam(r, "id")

	reservation, err := h.service.ConfirmWithWallet(r.Context(), userID.String(), reservationID)
	if err != nil {
		h.handleServiceError(w, err, "pay with wallet")
		return
	}

	utils.ResponseSuccess(w, "success", reservation)
}

// CancelReservation handles PUT /api/reservations/{id}/cancel (protected)
func (h *ReservationHandler) CancelReservation(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	reservationID := chi.URLParam(r, "id")

	reservation, err := h.service.CancelReservation(r.Context(), userID.String(), reservationID)
	if err != nil {
		h.handleServiceError(w, err, "cancel reservation")
		return
	}

	utils.ResponseSuccess(w, "success", reservation)
}

// BranchUpdateStatus handles PUT /api/branch/reservations/{id}/status (branch)
func (h *ReservationHandler) BranchUpdateStatus(w http.ResponseWriter, r *http.Request) {
	branchID, ok := utils.GetBranchIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Branch authentication required")
		return
	}

	reservationID := chi.URLParam(r, "id")

	var req request.BranchUpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	reservation, err := h.service.BranchUpdateStatus(r.Context(), branchID.String(), reservationID, &req)
	if err != nil {
		h.handleServiceError(w, err, "branch update status")
		return
	}

	utils.ResponseSuccess(w, "success", reservation)
}

// SubmitReview handles POST /api/reservations/{id}/review (protected)
func (h *ReservationHandler) SubmitReview(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	reservationID := chi.URLParam(r, "id")

	var req request.SubmitReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	reservation, err := h.service.SubmitReview(r.Context(), userID.String(), reservationID, &req)
	if err != nil {
		h.handleServiceError(w, err, "submit review")
		return
	}

	utils.ResponseCreated(w, "success", reservation)
}

func (h *ReservationHandler) handleServiceError(w http.ResponseWriter, err error, operation string) {
	switch {
	case errors.Is(err, booking.ErrNotFound):
		h.log.Warn(operation+" failed - not found", zap.Error(err))
		utils.ResponseNotFound(w, err.Error())

	case errors.Is(err, booking.ErrUnauthorized):
		h.log.Warn(operation+" failed - forbidden", zap.Error(err))
		utils.ResponseForbidden(w, err.Error())

	case errors.Is(err, booking.ErrInvalidState), errors.Is(err, booking.ErrNoAvailability):
		h.log.Warn(operation+" failed - conflict", zap.Error(err))
		utils.ResponseConflict(w, err.Error())

	case errors.Is(err, booking.ErrInsufficientFunds):
		h.log.Warn(operation+" failed - insufficient funds", zap.Error(err))
		utils.ResponsePaymentRequired(w, err.Error())

	case errors.Is(err, booking.ErrCouponInvalid),
		errors.Is(err, booking.ErrPartySizeExceedsCapacity):
		h.log.Warn(operation+" failed - rejected", zap.Error(err))
		utils.ResponseBadRequest(w, err.Error(), nil)

	default:
		h.log.Error("Failed to "+operation, zap.Error(err))
		utils.ResponseInternalError(w, "Internal server error")
	}
}
