package adaptor

import (
	"encoding/json"
	"errors"
	"net/http"

	"restaurant-booking/internal/booking"
	"restaurant-booking/internal/dto/request"
	"restaurant-booking/internal/usecase"
	"restaurant-booking/pkg/utils"

	"go.uber.org/zap"
)

type WalletHandler struct {
	service usecase.WalletService
	log     *zap.Logger
}

func NewWalletHandler(service usecase.WalletService, log *zap.Logger) *WalletHandler {
	return &WalletHandler{
		service: service,
		log:     log.With(zap.String("handler", "wallet")),
	}
}

// GetWallet handles GET /api/wallet (protected)
func (h *WalletHandler) GetWallet(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	wallet, err := h.service.GetWallet(r.Context(), userID.String())
	if err != nil {
		h.handleServiceError(w, err, "get wallet")
		return
	}

	utils.ResponseSuccess(w, "success", wallet)
}

// AddMoney handles POST /api/wallet/add (protected)
func (h *WalletHandler) AddMoney(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	var req request.AddMoneyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	wallet, err := h.service.AddMoney(r.Context(), userID.String(), &req)
	if err != nil {
		h.handleServiceError(w, err, "add money")
		return
	}

	utils.ResponseSuccess(w, "success", wallet)
}

// GetHistory handles GET /api/wallet/history (protected)
func (h *WalletHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
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

	history, err := h.service.GetHistory(r.Context(), userID.String(), req)
	if err != nil {
		h.handleServiceError(w, err, "get wallet history")
		return
	}

	utils.ResponseSuccess(w, "success", history)
}

func (h *WalletHandler) handleServiceError(w http.ResponseWriter, err error, operation string) {
	switch {
	case errors.Is(err, booking.ErrNotFound):
		h.log.Warn(operation+" failed - not found", zap.Error(err))
		utils.ResponseNotFound(w, err.Error())

	case errors.Is(err, booking.ErrInsufficientFunds):
		h.log.Warn(operation+" failed - insufficient funds", zap.Error(err))
		utils.ResponsePaymentRequired(w, err.Error())

	default:
		h.log.Error("Failed to "+operation, zap.Error(err))
		utils.ResponseInternalError(w, "Internal server error")
	}
}
