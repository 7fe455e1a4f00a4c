package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"restaurant-booking/internal/booking"
	"restaurant-booking/internal/data/entity"
	"restaurant-booking/internal/data/repository"
	"restaurant-booking/internal/dto/request"
	"restaurant-booking/internal/dto/response"
	"restaurant-booking/internal/metrics"
	"restaurant-booking/internal/pricing"
	"restaurant-booking/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// createRetries bounds the optimistic retry loop for capacity conflicts.
const createRetries = 3

type ReservationService interface {
	// User endpoints
	CreateReservation(ctx context.Context, userID string, req *request.CreateReservationRequest) (*response.ReservationResponse, error)
	GetReservation(ctx context.Context, userID string, reservationID string) (*response.ReservationResponse, error)
	GetUserReservations(ctx context.Context, userID string, req *request.PaginatedRequest) (*response.PaginatedResponse[response.ReservationResponse], error)
	GetAvailability(ctx context.Context, req *request.AvailabilityRequest) (*response.AvailabilityResponse, error)
	ListTableTypes(ctx context.Context, branchID string) ([]response.TableTypeResponse, error)

	// Payment correlation (gateway callbacks relayed by the platform)
	ConfirmGatewayPayment(ctx context.Context, reservationID string, paymentID string) (*response.ReservationResponse, error)
	FailGatewayPayment(ctx context.Context, reservationID string, paymentID string) (*response.ReservationResponse, error)

	// Wallet settlement
	ConfirmWithWallet(ctx context.Context, userID string, reservationID string) (*response.ReservationResponse, error)

	// Lifecycle
	CancelReservation(ctx context.Context, userID string, reservationID string) (*response.ReservationResponse, error)
	BranchUpdateStatus(ctx context.Context, branchID string, reservationID string, req *request.BranchUpdateStatusRequest) (*response.ReservationResponse, error)
	SubmitReview(ctx context.Context, userID string, reservationID string, req *request.SubmitReviewRequest) (*response.ReservationResponse, error)
}

type reservationService struct {
	repo     *repository.Repository
	fsm      *booking.FSM
	currency string
	log      *zap.Logger
}

func NewReservationService(repo *repository.Repository, config *utils.Config, log *zap.Logger) ReservationService {
	return &reservationService{
		repo:     repo,
		fsm:      booking.NewFSM(),
		currency: config.Booking.Currency,
		log:      log.With(zap.String("service", "reservation")),
	}
}

// toResponse stamps the configured currency onto the DTO.
func (s *reservationService) toResponse(reservation *entity.Reservation) response.ReservationResponse {
	resp := response.ReservationToResponse(reservation)
	resp.Currency = s.currency
	return resp
}

func (s *reservationService) CreateReservation(ctx context.Context, userID string, req *request.CreateReservationRequest) (*response.ReservationResponse, error) {
	// Validate request
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Create reservation validation failed", zap.Any("errors", errs))
		return nil, fmt.Errorf("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return nil, fmt.Errorf("invalid user ID format %s: %w", userID, err)
	}

	branchID, err := uuid.Parse(req.BranchID)
	if err != nil {
		return nil, fmt.Errorf("invalid branch ID format %s: %w", req.BranchID, err)
	}

	tableTypeID, err := uuid.Parse(req.TableTypeID)
	if err != nil {
		return nil, fmt.Errorf("invalid table type ID format %s: %w", req.TableTypeID, err)
	}

	reservationDate, err := utils.ParseDate(req.ReservationDate)
	if err != nil {
		return nil, fmt.Errorf("invalid reservation date %s: %w", req.ReservationDate, err)
	}

	// Table type is read fresh on every attempt; quantity may change out of band.
	tableType, err := s.repo.TableType.FindByID(ctx, tableTypeID)
	if err != nil {
		return nil, fmt.Errorf("find table type: %w", err)
	}
	if tableType == nil || tableType.BranchID != branchID {
		return nil, fmt.Errorf("table type %s: %w", req.TableTypeID, booking.ErrNotFound)
	}

	// Party size is bounded by a single unit's seating, checked before any
	// capacity work.
	if req.PartySize > tableType.Capacity {
		return nil, fmt.Errorf("party of %d, capacity %d: %w",
			req.PartySize, tableType.Capacity, booking.ErrPartySizeExceedsCapacity)
	}

	if req.TableQuantity > tableType.Quantity {
		return nil, fmt.Errorf("requested %d of %d units: %w",
			req.TableQuantity, tableType.Quantity, booking.ErrNoAvailability)
	}

	// Coupon evaluation happens once at creation; the final amount is never
	// recomputed afterwards.
	baseAmount := tableType.Price
	var coupon *entity.Coupon
	if req.CouponCode != nil && *req.CouponCode != "" {
		coupon, err = s.repo.Coupon.FindByCode(ctx, *req.CouponCode)
		if err != nil {
			return nil, fmt.Errorf("find coupon: %w", err)
		}
		if coupon == nil {
			return nil, fmt.Errorf("coupon %s: %w", *req.CouponCode, booking.ErrCouponInvalid)
		}
	}

	discount, finalAmount, err := pricing.Evaluate(coupon, baseAmount, time.Now())
	if err != nil {
		return nil, fmt.Errorf("evaluate coupon: %w", err)
	}

	now := time.Now()
	reservation := &entity.Reservation{
		Base: entity.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		OrderRef:        utils.GenerateReservationRef(),
		UserID:          userUUID,
		BranchID:        branchID,
		TableTypeID:     tableTypeID,
		ReservationDate: reservationDate,
		TimeSlot:        req.TimeSlot,
		PartySize:       req.PartySize,
		TableQuantity:   req.TableQuantity,
		Status:          entity.ReservationStatusPending,
		CouponCode:      req.CouponCode,
		DiscountApplied: discount,
		FinalAmount:     finalAmount,
	}

	// The capacity check and insert are one atomic step inside the
	// repository; only serialization conflicts are retried here.
	for attempt := 1; ; attempt++ {
		err = s.repo.Reservation.CreateWithCapacity(ctx, reservation)
		if err == nil {
			break
		}
		if errors.Is(err, booking.ErrConflict) && attempt < createRetries {
			s.log.Warn("Capacity conflict, retrying",
				zap.Int("attempt", attempt),
				zap.String("order_ref", reservation.OrderRef),
			)
			continue
		}
		if errors.Is(err, booking.ErrConflict) {
			return nil, fmt.Errorf("capacity conflict after %d attempts: %w", createRetries, booking.ErrNoAvailability)
		}
		return nil, fmt.Errorf("create reservation: %w", err)
	}

	metrics.IncReservationCreated()
	s.log.Info("Reservation created",
		zap.String("reservation_id", reservation.ID.String()),
		zap.String("order_ref", reservation.OrderRef),
		zap.String("user_id", userID),
		zap.String("time_slot", reservation.TimeSlot),
		zap.Int("table_quantity", reservation.TableQuantity),
		zap.Float64("final_amount", finalAmount),
	)

	resp := s.toResponse(reservation)
	resp.TableTypeName = tableType.Name
	return &resp, nil
}

// findOwned loads a reservation and checks the actor owns it.
func (s *reservationService) findOwned(ctx context.Context, userID uuid.UUID, reservationID string) (*entity.Reservation, error) {
	id, err := uuid.Parse(reservationID)
	if err != nil {
		return nil, fmt.Errorf("invalid reservation ID format %s: %w", reservationID, err)
	}

	reservation, err := s.repo.Reservation.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find reservation: %w", err)
	}
	if reservation == nil {
		return nil, fmt.Errorf("reservation %s: %w", reservationID, booking.ErrNotFound)
	}
	if reservation.UserID != userID {
		return nil, fmt.Errorf("reservation %s: %w", reservationID, booking.ErrUnauthorized)
	}

	return reservation, nil
}

func (s *reservationService) GetReservation(ctx context.Context, userID string, reservationID string) (*response.ReservationResponse, error) {
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return nil, fmt.Errorf("invalid user ID format %s: %w", userID, err)
	}

	reservation, err := s.findOwned(ctx, userUUID, reservationID)
	if err != nil {
		return nil, err
	}

	resp := s.toResponse(reservation)

	reviews, err := s.repo.Review.FindByReservationID(ctx, reservation.ID)
	if err != nil {
		return nil, fmt.Errorf("find reviews: %w", err)
	}
	for _, review := range reviews {
		resp.Reviews = append(resp.Reviews, response.ReviewToResponse(review))
	}

	return &resp, nil
}

func (s *reservationService) GetUserReservations(ctx context.Context, userID string, req *request.PaginatedRequest) (*response.PaginatedResponse[response.ReservationResponse], error) {
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return nil, fmt.Errorf("invalid user ID format %s: %w", userID, err)
	}

	reservations, err := s.repo.Reservation.FindByUserID(ctx, userUUID, req.Limit(), req.Offset())
	if err != nil {
		return nil, fmt.Errorf("get user reservations: %w", err)
	}

	total, err := s.repo.Reservation.CountByUserID(ctx, userUUID)
	if err != nil {
		return nil, fmt.Errorf("count user reservations: %w", err)
	}

	reservationResponses := make([]response.ReservationResponse, len(reservations))
	for i, reservation := range reservations {
		reservationResponses[i] = s.toResponse(reservation)
	}

	return response.NewPaginatedResponse(reservationResponses, req.Page, req.PerPage, total), nil
}

func (s *reservationService) GetAvailability(ctx context.Context, req *request.AvailabilityRequest) (*response.AvailabilityResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, fmt.Errorf("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	branchID, err := uuid.Parse(req.BranchID)
	if err != nil {
		return nil, fmt.Errorf("invalid branch ID format %s: %w", req.BranchID, err)
	}

	tableTypeID, err := uuid.Parse(req.TableTypeID)
	if err != nil {
		return nil, fmt.Errorf("invalid table type ID format %s: %w", req.TableTypeID, err)
	}

	reservationDate, err := utils.ParseDate(req.ReservationDate)
	if err != nil {
		return nil, fmt.Errorf("invalid reservation date %s: %w", req.ReservationDate, err)
	}

	tableType, err := s.repo.TableType.FindByID(ctx, tableTypeID)
	if err != nil {
		return nil, fmt.Errorf("find table type: %w", err)
	}
	if tableType == nil || tableType.BranchID != branchID {
		return nil, fmt.Errorf("table type %s: %w", req.TableTypeID, booking.ErrNotFound)
	}

	reserved, err := s.repo.Reservation.ReservedUnits(ctx, branchID, tableTypeID, reservationDate, req.TimeSlot)
	if err != nil {
		return nil, fmt.Errorf("reserved units: %w", err)
	}

	available := tableType.Quantity - reserved
	if available < 0 {
		available = 0
	}

	return &response.AvailabilityResponse{
		BranchID:        req.BranchID,
		TableTypeID:     req.TableTypeID,
		ReservationDate: req.ReservationDate,
		TimeSlot:        req.TimeSlot,
		TotalUnits:      tableType.Quantity,
		ReservedUnits:   reserved,
		AvailableUnits:  available,
	}, nil
}

// ListTableTypes returns a branch's bookable seating categories with prices.
func (s *reservationService) ListTableTypes(ctx context.Context, branchID string) ([]response.TableTypeResponse, error) {
	branchUUID, err := uuid.Parse(branchID)
	if err != nil {
		return nil, fmt.Errorf("invalid branch ID format %s: %w", branchID, err)
	}

	tableTypes, err := s.repo.TableType.FindByBranchID(ctx, branchUUID)
	if err != nil {
		return nil, fmt.Errorf("list table types: %w", err)
	}

	out := make([]response.TableTypeResponse, len(tableTypes))
	for i, tableType := range tableTypes {
		out[i] = response.TableTypeToResponse(tableType)
		out[i].Currency = s.currency
	}
	return out, nil
}

func (s *reservationService) ConfirmGatewayPayment(ctx context.Context, reservationID string, paymentID string) (*response.ReservationResponse, error) {
	id, err := uuid.Parse(reservationID)
	if err != nil {
		return nil, fmt.Errorf("invalid reservation ID format %s: %w", reservationID, err)
	}

	reservation, err := s.repo.Reservation.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find reservation: %w", err)
	}
	if reservation == nil {
		return nil, fmt.Errorf("reservation %s: %w", reservationID, booking.ErrNotFound)
	}

	if !s.fsm.CanTransition(reservation.Status, entity.ReservationStatusConfirmed) {
		return nil, fmt.Errorf("reservation %s is %s: %w", reservationID, reservation.Status, booking.ErrInvalidState)
	}

	// Conditional update closes the race against the sweeper and other callers.
	if err := s.repo.Reservation.ConfirmGatewayPayment(ctx, id, paymentID); err != nil {
		return nil, fmt.Errorf("confirm gateway payment: %w", err)
	}

	metrics.IncReservationSettled(string(entity.PaymentMethodGateway))
	s.log.Info("Reservation confirmed via gateway",
		zap.String("reservation_id", reservationID),
		zap.String("payment_id", paymentID),
	)

	reservation.Status = entity.ReservationStatusConfirmed
	reservation.PaymentID = &paymentID
	method := entity.PaymentMethodGateway
	reservation.PaymentMethod = &method

	resp := s.toResponse(reservation)
	return &resp, nil
}

func (s *reservationService) FailGatewayPayment(ctx context.Context, reservationID string, paymentID string) (*response.ReservationResponse, error) {
	id, err := uuid.Parse(reservationID)
	if err != nil {
		return nil, fmt.Errorf("invalid reservation ID format %s: %w", reservationID, err)
	}

	reservation, err := s.repo.Reservation.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find reservation: %w", err)
	}
	if reservation == nil {
		return nil, fmt.Errorf("reservation %s: %w", reservationID, booking.ErrNotFound)
	}

	if !s.fsm.CanTransition(reservation.Status, entity.ReservationStatusPaymentFailed) {
		return nil, fmt.Errorf("reservation %s is %s: %w", reservationID, reservation.Status, booking.ErrInvalidState)
	}

	// The reservation stops holding capacity but stays retryable: a later
	// successful gateway callback can still confirm it.
	if err := s.repo.Reservation.FailGatewayPayment(ctx, id, paymentID); err != nil {
		return nil, fmt.Errorf("fail gateway payment: %w", err)
	}

	s.log.Info("Gateway payment failed",
		zap.String("reservation_id", reservationID),
		zap.String("payment_id", paymentID),
	)

	reservation.Status = entity.ReservationStatusPaymentFailed
	reservation.PaymentID = &paymentID

	resp := s.toResponse(reservation)
	return &resp, nil
}

func (s *reservationService) ConfirmWithWallet(ctx context.Context, userID string, reservationID string) (*response.ReservationResponse, error) {
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return nil, fmt.Errorf("invalid user ID format %s: %w", userID, err)
	}

	reservation, err := s.findOwned(ctx, userUUID, reservationID)
	if err != nil {
		return nil, err
	}

	// Wallet settlement only from pending; a failed gateway attempt has to be
	// cancelled and rebooked to switch to wallet.
	if reservation.Status != entity.ReservationStatusPending {
		return nil, fmt.Errorf("reservation %s is %s: %w", reservationID, reservation.Status, booking.ErrInvalidState)
	}

	description := fmt.Sprintf("Payment for reservation %s", reservation.OrderRef)
	err = s.repo.Settlement.ConfirmWithWallet(ctx, reservation.ID, userUUID, reservation.FinalAmount, description)
	if err != nil {
		// On ErrInsufficientFunds the settlement rolled back and the
		// reservation is still pending.
		return nil, fmt.Errorf("settle with wallet: %w", err)
	}

	metrics.IncReservationSettled(string(entity.PaymentMethodWallet))
	metrics.IncWalletTransaction(string(entity.TransactionTypeDebit))
	s.log.Info("Reservation confirmed via wallet",
		zap.String("reservation_id", reservationID),
		zap.String("user_id", userID),
		zap.Float64("amount", reservation.FinalAmount),
	)

	reservation.Status = entity.ReservationStatusConfirmed
	method := entity.PaymentMethodWallet
	reservation.PaymentMethod = &method

	resp := s.toResponse(reservation)
	return &resp, nil
}

func (s *reservationService) CancelReservation(ctx context.Context, userID string, reservationID string) (*response.ReservationResponse, error) {
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return nil, fmt.Errorf("invalid user ID format %s: %w", userID, err)
	}

	reservation, err := s.findOwned(ctx, userUUID, reservationID)
	if err != nil {
		return nil, err
	}

	if !s.fsm.CanTransition(reservation.Status, entity.ReservationStatusCancelled) {
		return nil, fmt.Errorf("reservation %s is %s: %w", reservationID, reservation.Status, booking.ErrInvalidState)
	}

	if reservation.Status == entity.ReservationStatusConfirmed {
		// Money moved: refund and cancel as one settlement unit.
		description := fmt.Sprintf("Refund for reservation %s", reservation.OrderRef)
		err = s.repo.Settlement.RefundAndTransition(ctx, reservation.ID, userUUID, reservation.FinalAmount, description)
		if err != nil {
			return nil, fmt.Errorf("refund reservation: %w", err)
		}
		metrics.IncWalletTransaction(string(entity.TransactionTypeCredit))
	} else {
		// No money moved for pending/payment_failed: plain status update.
		err = s.repo.Reservation.UpdateStatusFrom(ctx, reservation.ID, reservation.Status, entity.ReservationStatusCancelled)
		if err != nil {
			return nil, fmt.Errorf("cancel reservation: %w", err)
		}
	}

	metrics.IncReservationCancelled("user")
	s.log.Info("Reservation cancelled",
		zap.String("reservation_id", reservationID),
		zap.String("user_id", userID),
		zap.String("previous_status", string(reservation.Status)),
	)

	reservation.Status = entity.ReservationStatusCancelled
	resp := s.toResponse(reservation)
	return &resp, nil
}

func (s *reservationService) BranchUpdateStatus(ctx context.Context, branchID string, reservationID string, req *request.BranchUpdateStatusRequest) (*response.ReservationResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, fmt.Errorf("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	branchUUID, err := uuid.Parse(branchID)
	if err != nil {
		return nil, fmt.Errorf("invalid branch ID format %s: %w", branchID, err)
	}

	id, err := uuid.Parse(reservationID)
	if err != nil {
		return nil, fmt.Errorf("invalid reservation ID format %s: %w", reservationID, err)
	}

	reservation, err := s.repo.Reservation.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find reservation: %w", err)
	}
	if reservation == nil {
		return nil, fmt.Errorf("reservation %s: %w", reservationID, booking.ErrNotFound)
	}
	if reservation.BranchID != branchUUID {
		return nil, fmt.Errorf("reservation %s: %w", reservationID, booking.ErrUnauthorized)
	}

	newStatus := entity.ReservationStatus(req.Status)
	if !s.fsm.CanTransition(reservation.Status, newStatus) {
		return nil, fmt.Errorf("reservation %s is %s: %w", reservationID, reservation.Status, booking.ErrInvalidState)
	}

	if reservation.Status == entity.ReservationStatusConfirmed && newStatus == entity.ReservationStatusCancelled {
		// Branch cancellation of a paid booking refunds like a user cancel.
		description := fmt.Sprintf("Refund for reservation %s", reservation.OrderRef)
		err = s.repo.Settlement.RefundAndTransition(ctx, reservation.ID, reservation.UserID, reservation.FinalAmount, description)
		if err != nil {
			return nil, fmt.Errorf("refund reservation: %w", err)
		}
		metrics.IncWalletTransaction(string(entity.TransactionTypeCredit))
		metrics.IncReservationCancelled("branch")
	} else {
		err = s.repo.Reservation.UpdateStatusFrom(ctx, reservation.ID, reservation.Status, newStatus)
		if err != nil {
			return nil, fmt.Errorf("update reservation status: %w", err)
		}
		if newStatus == entity.ReservationStatusCancelled {
			metrics.IncReservationCancelled("branch")
		}
	}

	s.log.Info("Branch updated reservation status",
		zap.String("reservation_id", reservationID),
		zap.String("branch_id", branchID),
		zap.String("from", string(reservation.Status)),
		zap.String("to", string(newStatus)),
	)

	reservation.Status = newStatus
	resp := s.toResponse(reservation)
	return &resp, nil
}

func (s *reservationService) SubmitReview(ctx context.Context, userID string, reservationID string, req *request.SubmitReviewRequest) (*response.ReservationResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, fmt.Errorf("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return nil, fmt.Errorf("invalid user ID format %s: %w", userID, err)
	}

	reservation, err := s.findOwned(ctx, userUUID, reservationID)
	if err != nil {
		return nil, err
	}

	review := &entity.Review{
		BaseSimple: entity.BaseSimple{
			ID:        uuid.New(),
			CreatedAt: time.Now(),
		},
		ReservationID: reservation.ID,
		UserID:        userUUID,
		Rating:        req.Rating,
		Comment:       req.Comment,
	}

	if err := s.repo.Review.Create(ctx, review); err != nil {
		return nil, fmt.Errorf("create review: %w", err)
	}

	s.log.Info("Review submitted",
		zap.String("reservation_id", reservationID),
		zap.String("user_id", userID),
		zap.Int("rating", req.Rating),
	)

	return s.GetReservation(ctx, userID, reservationID)
}
