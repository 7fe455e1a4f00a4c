package sweeper

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"restaurant-booking/internal/booking"
	"restaurant-booking/internal/data/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeStore struct {
	mu           sync.Mutex
	reservations map[uuid.UUID]*entity.Reservation

	listErr    error
	updateErrs map[uuid.UUID]error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		reservations: make(map[uuid.UUID]*entity.Reservation),
		updateErrs:   make(map[uuid.UUID]error),
	}
}

func (f *fakeStore) add(status entity.ReservationStatus, createdAt time.Time) uuid.UUID {
	f.mu.Lock()
	defer f.mu.Unlock()

	id := uuid.New()
	f.reservations[id] = &entity.Reservation{
		Base:     entity.Base{ID: id, CreatedAt: createdAt},
		OrderRef: "RESV-TEST-" + id.String()[:8],
		Status:   status,
	}
	return id
}

func (f *fakeStore) status(id uuid.UUID) entity.ReservationStatus {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.reservations[id].Status
}

func (f *fakeStore) FindStalePending(ctx context.Context, olderThan time.Time) ([]*entity.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.listErr != nil {
		return nil, f.listErr
	}

	var out []*entity.Reservation
	for _, r := range f.reservations {
		if r.Status == entity.ReservationStatusPending && r.CreatedAt.Before(olderThan) {
			clone := *r
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (f *fakeStore) UpdateStatusFrom(ctx context.Context, id uuid.UUID, from, to entity.ReservationStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err, ok := f.updateErrs[id]; ok {
		return err
	}

	r, ok := f.reservations[id]
	if !ok {
		return booking.ErrNotFound
	}
	if r.Status != from {
		return booking.ErrInvalidState
	}
	r.Status = to
	return nil
}

func newTestSweeper(store ReservationStore, now time.Time) *Sweeper {
	s := New(store, time.Minute, 15*time.Minute, zap.NewNop())
	s.now = func() time.Time { return now }
	return s
}

func TestSweep_ExpiresOnlyStalePending(t *testing.T) {
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	store := newFakeStore()

	stale := store.add(entity.ReservationStatusPending, now.Add(-30*time.Minute))
	fresh := store.add(entity.ReservationStatusPending, now.Add(-5*time.Minute))
	confirmed := store.add(entity.ReservationStatusConfirmed, now.Add(-30*time.Minute))
	cancelled := store.add(entity.ReservationStatusCancelled, now.Add(-30*time.Minute))

	newTestSweeper(store, now).Sweep(context.Background())

	assert.Equal(t, entity.ReservationStatusExpired, store.reservations[stale].Status)
	assert.Equal(t, entity.ReservationStatusPending, store.reservations[fresh].Status)
	assert.Equal(t, entity.ReservationStatusConfirmed, store.reservations[confirmed].Status)
	assert.Equal(t, entity.ReservationStatusCancelled, store.reservations[cancelled].Status)
}

func TestSweep_ExactCutoffBoundary(t *testing.T) {
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	store := newFakeStore()

	// Created exactly at the cutoff is not yet stale.
	boundary := store.add(entity.ReservationStatusPending, now.Add(-15*time.Minute))

	newTestSweeper(store, now).Sweep(context.Background())

	assert.Equal(t, entity.ReservationStatusPending, store.reservations[boundary].Status)
}

func TestSweep_LostRaceIsSkipped(t *testing.T) {
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	store := newFakeStore()

	// A concurrent confirm wins between the list and the update.
	raced := store.add(entity.ReservationStatusPending, now.Add(-30*time.Minute))
	store.updateErrs[raced] = booking.ErrInvalidState

	other := store.add(entity.ReservationStatusPending, now.Add(-30*time.Minute))

	newTestSweeper(store, now).Sweep(context.Background())

	// The rest of the batch still gets expired.
	assert.Equal(t, entity.ReservationStatusExpired, store.reservations[other].Status)
}

func TestSweep_RowErrorDoesNotAbortBatch(t *testing.T) {
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	store := newFakeStore()

	broken := store.add(entity.ReservationStatusPending, now.Add(-30*time.Minute))
	store.updateErrs[broken] = errors.New("connection reset")

	healthy := store.add(entity.ReservationStatusPending, now.Add(-30*time.Minute))

	newTestSweeper(store, now).Sweep(context.Background())

	assert.Equal(t, entity.ReservationStatusExpired, store.reservations[healthy].Status)
	assert.Equal(t, entity.ReservationStatusPending, store.reservations[broken].Status)
}

func TestSweep_ListErrorIsNonFatal(t *testing.T) {
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	store := newFakeStore()
	store.listErr = errors.New("connection refused")

	// Must not panic.
	newTestSweeper(store, now).Sweep(context.Background())
}

func TestStartStop(t *testing.T) {
	store := newFakeStore()
	stale := store.add(entity.ReservationStatusPending, time.Now().Add(-time.Hour))

	s := New(store, 5*time.Millisecond, 15*time.Minute, zap.NewNop())

	done := make(chan struct{})
	go func() {
		s.Start(context.Background())
		close(done)
	}()

	require.Eventually(t, func() bool {
		return store.status(stale) == entity.ReservationStatusExpired
	}, time.Second, 5*time.Millisecond)

	s.Stop()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop")
	}
}
