package adaptor

import (
	"restaurant-booking/internal/usecase"

	"go.uber.org/zap"
)

type Handler struct {
	Reservation *ReservationHandler
	Wallet      *WalletHandler
}

func NewHandler(service *usecase.Service, log *zap.Logger) *Handler {
	return &Handler{
		Reservation: NewReservationHandler(service.Reservation, log),
		Wallet:      NewWalletHandler(service.Wallet, log),
	}
}
