// Package sweeper releases capacity held by abandoned pending reservations.
package sweeper

import (
	"context"
	"errors"
	"time"

	"restaurant-booking/internal/booking"
	"restaurant-booking/internal/data/entity"
	"restaurant-booking/internal/metrics"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ReservationStore is the slice of the reservation repository the sweeper needs.
type ReservationStore interface {
	FindStalePending(ctx context.Context, olderThan time.Time) ([]*entity.Reservation, error)
	UpdateStatusFrom(ctx context.Context, id uuid.UUID, from, to entity.ReservationStatus) error
}

type Sweeper struct {
	store    ReservationStore
	interval time.Duration
	timeout  time.Duration
	now      func() time.Time
	log      *zap.Logger
	stop     chan struct{}
	done     chan struct{}
}

func New(store ReservationStore, interval, timeout time.Duration, log *zap.Logger) *Sweeper {
	return &Sweeper{
		store:    store,
		interval: interval,
		timeout:  timeout,
		now:      time.Now,
		log:      log.With(zap.String("component", "sweeper")),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start blocks, sweeping on every tick until the context is cancelled or
// Stop is called. Run it in its own goroutine.
func (s *Sweeper) Start(ctx context.Context) {
	defer close(s.done)

	s.log.Info("Sweeper started",
		zap.Duration("interval", s.interval),
		zap.Duration("expiry_timeout", s.timeout),
	)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info("Sweeper stopped", zap.Error(ctx.Err()))
			return
		case <-s.stop:
			s.log.Info("Sweeper stopped")
			return
		case <-ticker.C:
			s.Sweep(ctx)
		}
	}
}

// Stop signals the loop to exit and waits for the current sweep to finish.
func (s *Sweeper) Stop() {
	close(s.stop)
	<-s.done
}

// Sweep expires every pending reservation older than the timeout. One bad
// row does not block the rest of the batch.
func (s *Sweeper) Sweep(ctx context.Context) {
	cutoff := s.now().Add(-s.timeout)

	stale, err := s.store.FindStalePending(ctx, cutoff)
	if err != nil {
		s.log.Error("Failed to list stale reservations", zap.Error(err))
		return
	}
	if len(stale) == 0 {
		return
	}

	expired := 0
	for _, reservation := range stale {
		err := s.store.UpdateStatusFrom(ctx, reservation.ID,
			entity.ReservationStatusPending, entity.ReservationStatusExpired)
		if err != nil {
			// A concurrent confirm or cancel won the race; skip quietly.
			if errors.Is(err, booking.ErrInvalidState) || errors.Is(err, booking.ErrNotFound) {
				continue
			}
			s.log.Error("Failed to expire reservation",
				zap.String("reservation_id", reservation.ID.String()),
				zap.Error(err),
			)
			continue
		}

		expired++
		metrics.IncReservationExpired()
		s.log.Info("Reservation expired",
			zap.String("reservation_id", reservation.ID.String()),
			zap.String("order_ref", reservation.OrderRef),
			zap.Time("created_at", reservation.CreatedAt),
		)
	}

	if expired > 0 {
		s.log.Info("Sweep completed",
			zap.Int("stale", len(stale)),
			zap.Int("expired", expired),
		)
	}
}
