package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"restaurant-booking/internal/booking"
	"restaurant-booking/internal/data/entity"
	"restaurant-booking/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
)

const reservationColumns = `id, order_ref, user_id, branch_id, table_type_id, reservation_date, time_slot,
		       party_size, table_quantity, status, payment_id, payment_method, coupon_code,
		       discount_applied, final_amount, created_at, updated_at`

type ReservationRepository interface {
	// CreateWithCapacity inserts a pending reservation only if the slot key
	// still has capacity. The table_type row is locked for the duration of
	// the check so concurrent creates against one key serialize.
	CreateWithCapacity(ctx context.Context, reservation *entity.Reservation) error

	FindByID(ctx context.Context, id uuid.UUID) (*entity.Reservation, error)
	FindByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entity.Reservation, error)
	CountByUserID(ctx context.Context, userID uuid.UUID) (int64, error)

	// ReservedUnits sums table_quantity over capacity-holding reservations
	// (pending, confirmed) for one slot key.
	ReservedUnits(ctx context.Context, branchID, tableTypeID uuid.UUID, date time.Time, slot string) (int, error)

	// UpdateStatusFrom applies a transition only if the row is still in the
	// expected status. A lost race surfaces booking.ErrInvalidState.
	UpdateStatusFrom(ctx context.Context, id uuid.UUID, from, to entity.ReservationStatus) error

	// ConfirmGatewayPayment confirms from pending or payment_failed and
	// records the external payment reference.
	ConfirmGatewayPayment(ctx context.Context, id uuid.UUID, paymentID string) error

	// FailGatewayPayment marks a pending reservation payment_failed. The
	// reservation releases its units; a later successful gateway callback is
	// still honored because the money already moved.
	FailGatewayPayment(ctx context.Context, id uuid.UUID, paymentID string) error

	// FindStalePending returns pending reservations created before the cutoff.
	FindStalePending(ctx context.Context, olderThan time.Time) ([]*entity.Reservation, error)
}

type reservationRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewReservationRepository(db database.PgxIface, log *zap.Logger) ReservationRepository {
	return &reservationRepository{
		db:  db,
		log: log.With(zap.String("repository", "reservation")),
	}
}

// isSerializationFailure detects conflicts worth retrying at the service layer.
func isSerializationFailure(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "40001" || pgErr.Code == "40P01"
	}
	return false
}

func (r *reservationRepository) CreateWithCapacity(ctx context.Context, reservation *entity.Reservation) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin create reservation tx: %w", err)
	}
	defer tx.Rollback(ctx)

	// Lock the table type row. This serializes all creates for the same
	// table type and re-reads quantity, which branch admins may change.
	var quantity int
	err = tx.QueryRow(ctx,
		`SELECT quantity FROM table_types WHERE id = $1 FOR UPDATE`,
		reservation.TableTypeID,
	).Scan(&quantity)
	if err == pgx.ErrNoRows {
		return fmt.Errorf("table type %s: %w", reservation.TableTypeID.String(), booking.ErrNotFound)
	}
	if err != nil {
		if isSerializationFailure(err) {
			return booking.ErrConflict
		}
		return fmt.Errorf("lock table type %s: %w", reservation.TableTypeID.String(), err)
	}

	// Capacity is derived from the reservation set, never stored as a counter.
	var reserved int
	err = tx.QueryRow(ctx, `
		SELECT COALESCE(SUM(table_quantity), 0)
		FROM reservations
		WHERE branch_id = $1 AND table_type_id = $2 AND reservation_date = $3 AND time_slot = $4
		  AND status IN ('pending', 'confirmed')
	`,
		reservation.BranchID,
		reservation.TableTypeID,
		reservation.ReservationDate,
		reservation.TimeSlot,
	).Scan(&reserved)
	if err != nil {
		return fmt.Errorf("sum reserved units: %w", err)
	}

	if reserved+reservation.TableQuantity > quantity {
		r.log.Info("Slot capacity exhausted",
			zap.String("table_type_id", reservation.TableTypeID.String()),
			zap.String("time_slot", reservation.TimeSlot),
			zap.Int("reserved", reserved),
			zap.Int("requested", reservation.TableQuantity),
			zap.Int("quantity", quantity),
		)
		return booking.ErrNoAvailability
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO reservations (id, order_ref, user_id, branch_id, table_type_id, reservation_date,
		                          time_slot, party_size, table_quantity, status, coupon_code,
		                          discount_applied, final_amount, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`,
		reservation.ID,
		reservation.OrderRef,
		reservation.UserID,
		reservation.BranchID,
		reservation.TableTypeID,
		reservation.ReservationDate,
		reservation.TimeSlot,
		reservation.PartySize,
		reservation.TableQuantity,
		reservation.Status,
		reservation.CouponCode,
		reservation.DiscountApplied,
		reservation.FinalAmount,
		reservation.CreatedAt,
		reservation.UpdatedAt,
	)
	if err != nil {
		r.log.Error("Failed to insert reservation",
			zap.Error(err),
			zap.String("order_ref", reservation.OrderRef),
			zap.String("user_id", reservation.UserID.String()),
		)
		if isSerializationFailure(err) {
			return booking.ErrConflict
		}
		return fmt.Errorf("insert reservation %s: %w", reservation.OrderRef, err)
	}

	if err := tx.Commit(ctx); err != nil {
		if isSerializationFailure(err) {
			return booking.ErrConflict
		}
		return fmt.Errorf("commit reservation %s: %w", reservation.OrderRef, err)
	}

	return nil
}

func scanReservation(row pgx.Row) (*entity.Reservation, error) {
	var reservation entity.Reservation
	err := row.Scan(
		&reservation.ID,
		&reservation.OrderRef,
		&reservation.UserID,
		&reservation.BranchID,
		&reservation.TableTypeID,
		&reservation.ReservationDate,
		&reservation.TimeSlot,
		&reservation.PartySize,
		&reservation.TableQuantity,
		&reservation.Status,
		&reservation.PaymentID,
		&reservation.PaymentMethod,
		&reservation.CouponCode,
		&reservation.DiscountApplied,
		&reservation.FinalAmount,
		&reservation.CreatedAt,
		&reservation.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &reservation, nil
}

func (r *reservationRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations WHERE id = $1`

	reservation, err := scanReservation(r.db.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find reservation by ID",
			zap.Error(err),
			zap.String("reservation_id", id.String()),
		)
		return nil, fmt.Errorf("find reservation by ID %s: %w", id.String(), err)
	}

	return reservation, nil
}

func (r *reservationRepository) FindByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entity.Reservation, error) {
	query := `
		SELECT ` + reservationColumns + `
		FROM reservations
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.Query(ctx, query, userID, limit, offset)
	if err != nil {
		r.log.Error("Failed to find reservations by user ID",
			zap.Error(err),
			zap.String("user_id", userID.String()),
			zap.Int("limit", limit),
			zap.Int("offset", offset),
		)
		return nil, fmt.Errorf("find reservations by user ID %s: %w", userID.String(), err)
	}
	defer rows.Close()

	var reservations []*entity.Reservation
	for rows.Next() {
		reservation, err := scanReservation(rows)
		if err != nil {
			r.log.Error("Failed to scan reservation row", zap.Error(err))
			return nil, fmt.Errorf("scan reservation row: %w", err)
		}
		reservations = append(reservations, reservation)
	}

	return reservations, nil
}

func (r *reservationRepository) CountByUserID(ctx context.Context, userID uuid.UUID) (int64, error) {
	query := `SELECT COUNT(*) FROM reservations WHERE user_id = $1`

	var count int64
	err := r.db.QueryRow(ctx, query, userID).Scan(&count)
	if err != nil {
		r.log.Error("Failed to count reservations by user ID",
			zap.Error(err),
			zap.String("user_id", userID.String()),
		)
		return 0, fmt.Errorf("count reservations by user ID %s: %w", userID.String(), err)
	}

	return count, nil
}

func (r *reservationRepository) ReservedUnits(ctx context.Context, branchID, tableTypeID uuid.UUID, date time.Time, slot string) (int, error) {
	query := `
		SELECT COALESCE(SUM(table_quantity), 0)
		FROM reservations
		WHERE branch_id = $1 AND table_type_id = $2 AND reservation_date = $3 AND time_slot = $4
		  AND status IN ('pending', 'confirmed')
	`

	var reserved int
	err := r.db.QueryRow(ctx, query, branchID, tableTypeID, date, slot).Scan(&reserved)
	if err != nil {
		r.log.Error("Failed to sum reserved units",
			zap.Error(err),
			zap.String("table_type_id", tableTypeID.String()),
			zap.String("time_slot", slot),
		)
		return 0, fmt.Errorf("sum reserved units for table type %s: %w", tableTypeID.String(), err)
	}

	return reserved, nil
}

// mapZeroRows decides between not-found and lost-status-race after a
// conditional update touched no rows.
func (r *reservationRepository) mapZeroRows(ctx context.Context, id uuid.UUID) error {
	var status entity.ReservationStatus
	err := r.db.QueryRow(ctx, `SELECT status FROM reservations WHERE id = $1`, id).Scan(&status)
	if err == pgx.ErrNoRows {
		return fmt.Errorf("reservation %s: %w", id.String(), booking.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("check reservation %s: %w", id.String(), err)
	}
	return fmt.Errorf("reservation %s is %s: %w", id.String(), status, booking.ErrInvalidState)
}

func (r *reservationRepository) UpdateStatusFrom(ctx context.Context, id uuid.UUID, from, to entity.ReservationStatus) error {
	query := `UPDATE reservations SET status = $3, updated_at = NOW() WHERE id = $1 AND status = $2`

	result, err := r.db.Exec(ctx, query, id, from, to)
	if err != nil {
		r.log.Error("Failed to update reservation status",
			zap.Error(err),
			zap.String("reservation_id", id.String()),
			zap.String("from", string(from)),
			zap.String("to", string(to)),
		)
		return fmt.Errorf("update reservation %s status to %s: %w", id.String(), string(to), err)
	}

	if result.RowsAffected() == 0 {
		return r.mapZeroRows(ctx, id)
	}

	return nil
}

func (r *reservationRepository) ConfirmGatewayPayment(ctx context.Context, id uuid.UUID, paymentID string) error {
	query := `
		UPDATE reservations
		SET status = 'confirmed', payment_id = $2, payment_method = 'gateway', updated_at = NOW()
		WHERE id = $1 AND status IN ('pending', 'payment_failed')
	`

	result, err := r.db.Exec(ctx, query, id, paymentID)
	if err != nil {
		r.log.Error("Failed to confirm gateway payment",
			zap.Error(err),
			zap.String("reservation_id", id.String()),
			zap.String("payment_id", paymentID),
		)
		return fmt.Errorf("confirm gateway payment for reservation %s: %w", id.String(), err)
	}

	if result.RowsAffected() == 0 {
		return r.mapZeroRows(ctx, id)
	}

	return nil
}

func (r *reservationRepository) FailGatewayPayment(ctx context.Context, id uuid.UUID, paymentID string) error {
	query := `
		UPDATE reservations
		SET status = 'payment_failed', payment_id = $2, updated_at = NOW()
		WHERE id = $1 AND status = 'pending'
	`

	result, err := r.db.Exec(ctx, query, id, paymentID)
	if err != nil {
		r.log.Error("Failed to record gateway payment failure",
			zap.Error(err),
			zap.String("reservation_id", id.String()),
			zap.String("payment_id", paymentID),
		)
		return fmt.Errorf("fail gateway payment for reservation %s: %w", id.String(), err)
	}

	if result.RowsAffected() == 0 {
		return r.mapZeroRows(ctx, id)
	}

	return nil
}

func (r *reservationRepository) FindStalePending(ctx context.Context, olderThan time.Time) ([]*entity.Reservation, error) {
	query := `
		SELECT ` + reservationColumns + `
		FROM reservations
		WHERE status = 'pending' AND created_at < $1
		ORDER BY created_at
	`

	rows, err := r.db.Query(ctx, query, olderThan)
	if err != nil {
		r.log.Error("Failed to find stale pending reservations", zap.Error(err))
		return nil, fmt.Errorf("find stale pending reservations: %w", err)
	}
	defer rows.Close()

	var reservations []*entity.Reservation
	for rows.Next() {
		reservation, err := scanReservation(rows)
		if err != nil {
			r.log.Error("Failed to scan reservation row", zap.Error(err))
			return nil, fmt.Errorf("scan reservation row: %w", err)
		}
		reservations = append(reservations, reservation)
	}

	return reservations, nil
}
