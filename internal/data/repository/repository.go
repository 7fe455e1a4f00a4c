package repository

import (
	"restaurant-booking/pkg/database"

	"go.uber.org/zap"
)

type Repository struct {
	Reservation ReservationRepository
	TableType   TableTypeRepository
	Coupon      CouponRepository
	Wallet      WalletRepository
	Settlement  SettlementRepository
	Review      ReviewRepository
}

func NewRepository(db database.PgxIface, log *zap.Logger) *Repository {
	return &Repository{
		Reservation: NewReservationRepository(db, log),
		TableType:   NewTableTypeRepository(db, log),
		Coupon:      NewCouponRepository(db, log),
		Wallet:      NewWalletRepository(db, log),
		Settlement:  NewSettlementRepository(db, log),
		Review:      NewReviewRepository(db, log),
	}
}
