package repository

import (
	"context"
	"fmt"

	"restaurant-booking/internal/booking"
	"restaurant-booking/internal/data/entity"
	"restaurant-booking/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// SettlementRepository is the only place a ledger mutation and a reservation
// status transition happen together. Both run in one database transaction:
// either the wallet and the reservation both change, or neither does.
type SettlementRepository interface {
	// ConfirmWithWallet debits the owner's wallet for the reservation's final
	// amount and moves pending -> confirmed with payment_method = wallet.
	// An insufficient balance rolls everything back and the reservation stays
	// pending.
	ConfirmWithWallet(ctx context.Context, reservationID, userID uuid.UUID, amount float64, description string) error

	// RefundAndTransition credits the owner's wallet and moves
	// confirmed -> cancelled in the same transaction. Used by user
	// cancellation and branch cancellation of paid reservations.
	RefundAndTransition(ctx context.Context, reservationID, userID uuid.UUID, amount float64, description string) error
}

type settlementRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewSettlementRepository(db database.PgxIface, log *zap.Logger) SettlementRepository {
	return &settlementRepository{
		db:  db,
		log: log.With(zap.String("repository", "settlement")),
	}
}

// transitionLocked applies the conditional status write inside the settlement
// tx. Zero rows means the reservation vanished or lost a status race; either
// way the whole settlement rolls back.
func transitionLocked(ctx context.Context, tx pgx.Tx, reservationID uuid.UUID, from, to entity.ReservationStatus, method *entity.PaymentMethod) error {
	query := `UPDATE reservations SET status = $3, updated_at = NOW() WHERE id = $1 AND status = $2`
	args := []any{reservationID, from, to}
	if method != nil {
		query = `UPDATE reservations SET status = $3, payment_method = $4, updated_at = NOW() WHERE id = $1 AND status = $2`
		args = append(args, *method)
	}

	result, err := tx.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("transition reservation %s to %s: %w", reservationID.String(), string(to), err)
	}

	if result.RowsAffected() == 0 {
		var current entity.ReservationStatus
		err := tx.QueryRow(ctx, `SELECT status FROM reservations WHERE id = $1`, reservationID).Scan(&current)
		if err == pgx.ErrNoRows {
			return fmt.Errorf("reservation %s: %w", reservationID.String(), booking.ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("check reservation %s: %w", reservationID.String(), err)
		}
		return fmt.Errorf("reservation %s is %s: %w", reservationID.String(), current, booking.ErrInvalidState)
	}

	return nil
}

func (r *settlementRepository) ConfirmWithWallet(ctx context.Context, reservationID, userID uuid.UUID, amount float64, description string) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin settlement tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := debitLocked(ctx, tx, userID, amount, description); err != nil {
		return err
	}

	method := entity.PaymentMethodWallet
	if err := transitionLocked(ctx, tx, reservationID, entity.ReservationStatusPending, entity.ReservationStatusConfirmed, &method); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		// Nothing applied: the debit and the transition roll back together.
		return fmt.Errorf("commit wallet confirmation for reservation %s: %w", reservationID.String(), err)
	}

	r.log.Info("Reservation settled with wallet",
		zap.String("reservation_id", reservationID.String()),
		zap.String("user_id", userID.String()),
		zap.Float64("amount", amount),
	)
	return nil
}

func (r *settlementRepository) RefundAndTransition(ctx context.Context, reservationID, userID uuid.UUID, amount float64, description string) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin refund tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := creditLocked(ctx, tx, userID, amount, description); err != nil {
		return err
	}

	if err := transitionLocked(ctx, tx, reservationID, entity.ReservationStatusConfirmed, entity.ReservationStatusCancelled, nil); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit refund for reservation %s: %w", reservationID.String(), err)
	}

	r.log.Info("Reservation refunded and cancelled",
		zap.String("reservation_id", reservationID.String()),
		zap.String("user_id", userID.String()),
		zap.Float64("amount", amount),
	)
	return nil
}
