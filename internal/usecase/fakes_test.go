package usecase

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"restaurant-booking/internal/booking"
	"restaurant-booking/internal/data/entity"
	"restaurant-booking/internal/data/repository"
	"restaurant-booking/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// In-memory fakes implementing the repository interfaces. They mirror the
// SQL contracts: conditional transitions, capacity checks under a single
// lock, and all-or-nothing wallet settlement.

type fakeReservationRepo struct {
	mu sync.Mutex

	reservations map[uuid.UUID]*entity.Reservation
	tableTypes   *fakeTableTypeRepo

	// conflictsLeft forces CreateWithCapacity to fail with ErrConflict
	// this many times before behaving normally.
	conflictsLeft int
}

func newFakeReservationRepo(tableTypes *fakeTableTypeRepo) *fakeReservationRepo {
	return &fakeReservationRepo{
		reservations: make(map[uuid.UUID]*entity.Reservation),
		tableTypes:   tableTypes,
	}
}

func (f *fakeReservationRepo) slotKey(r *entity.Reservation) string {
	return fmt.Sprintf("%s|%s|%s|%s",
		r.BranchID, r.TableTypeID, r.ReservationDate.Format("2006-01-02"), r.TimeSlot)
}

func (f *fakeReservationRepo) reservedLocked(key string) int {
	reserved := 0
	for _, r := range f.reservations {
		if f.slotKey(r) == key && r.HoldsCapacity() {
			reserved += r.TableQuantity
		}
	}
	return reserved
}

func (f *fakeReservationRepo) CreateWithCapacity(ctx context.Context, reservation *entity.Reservation) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.conflictsLeft > 0 {
		f.conflictsLeft--
		return booking.ErrConflict
	}

	tableType, ok := f.tableTypes.types[reservation.TableTypeID]
	if !ok {
		return booking.ErrNotFound
	}

	if f.reservedLocked(f.slotKey(reservation))+reservation.TableQuantity > tableType.Quantity {
		return booking.ErrNoAvailability
	}

	clone := *reservation
	f.reservations[reservation.ID] = &clone
	return nil
}

func (f *fakeReservationRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	r, ok := f.reservations[id]
	if !ok {
		return nil, nil
	}
	clone := *r
	return &clone, nil
}

func (f *fakeReservationRepo) FindByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entity.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []*entity.Reservation
	for _, r := range f.reservations {
		if r.UserID == userID {
			clone := *r
			out = append(out, &clone)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })

	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeReservationRepo) CountByUserID(ctx context.Context, userID uuid.UUID) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var n int64
	for _, r := range f.reservations {
		if r.UserID == userID {
			n++
		}
	}
	return n, nil
}

func (f *fakeReservationRepo) ReservedUnits(ctx context.Context, branchID, tableTypeID uuid.UUID, date time.Time, slot string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	key := fmt.Sprintf("%s|%s|%s|%s", branchID, tableTypeID, date.Format("2006-01-02"), slot)
	return f.reservedLocked(key), nil
}

func (f *fakeReservationRepo) UpdateStatusFrom(ctx context.Context, id uuid.UUID, from, to entity.ReservationStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()

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

func (f *fakeReservationRepo) ConfirmGatewayPayment(ctx context.Context, id uuid.UUID, paymentID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	r, ok := f.reservations[id]
	if !ok {
		return booking.ErrNotFound
	}
	if r.Status != entity.ReservationStatusPending && r.Status != entity.ReservationStatusPaymentFailed {
		return booking.ErrInvalidState
	}
	method := entity.PaymentMethodGateway
	r.Status = entity.ReservationStatusConfirmed
	r.PaymentID = &paymentID
	r.PaymentMethod = &method
	return nil
}

func (f *fakeReservationRepo) FailGatewayPayment(ctx context.Context, id uuid.UUID, paymentID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	r, ok := f.reservations[id]
	if !ok {
		return booking.ErrNotFound
	}
	if r.Status != entity.ReservationStatusPending {
		return booking.ErrInvalidState
	}
	r.Status = entity.ReservationStatusPaymentFailed
	r.PaymentID = &paymentID
	return nil
}

func (f *fakeReservationRepo) FindStalePending(ctx context.Context, olderThan time.Time) ([]*entity.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []*entity.Reservation
	for _, r := range f.reservations {
		if r.Status == entity.ReservationStatusPending && r.CreatedAt.Before(olderThan) {
			clone := *r
			out = append(out, &clone)
		}
	}
	return out, nil
}

type fakeTableTypeRepo struct {
	types map[uuid.UUID]*entity.TableType
}

func newFakeTableTypeRepo() *fakeTableTypeRepo {
	return &fakeTableTypeRepo{types: make(map[uuid.UUID]*entity.TableType)}
}

func (f *fakeTableTypeRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.TableType, error) {
	t, ok := f.types[id]
	if !ok {
		return nil, nil
	}
	clone := *t
	return &clone, nil
}

func (f *fakeTableTypeRepo) FindByBranchID(ctx context.Context, branchID uuid.UUID) ([]*entity.TableType, error) {
	var out []*entity.TableType
	for _, t := range f.types {
		if t.BranchID == branchID {
			clone := *t
			out = append(out, &clone)
		}
	}
	return out, nil
}

type fakeCouponRepo struct {
	coupons map[string]*entity.Coupon
}

func newFakeCouponRepo() *fakeCouponRepo {
	return &fakeCouponRepo{coupons: make(map[string]*entity.Coupon)}
}

func (f *fakeCouponRepo) FindByCode(ctx context.Context, code string) (*entity.Coupon, error) {
	c, ok := f.coupons[code]
	if !ok {
		return nil, nil
	}
	clone := *c
	return &clone, nil
}

type fakeWalletRepo struct {
	mu       sync.Mutex
	balances map[uuid.UUID]float64
	ledger   []*entity.Transaction
}

func newFakeWalletRepo() *fakeWalletRepo {
	return &fakeWalletRepo{balances: make(map[uuid.UUID]float64)}
}

func (f *fakeWalletRepo) Balance(ctx context.Context, userID uuid.UUID) (float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	balance, ok := f.balances[userID]
	if !ok {
		return 0, booking.ErrNotFound
	}
	return balance, nil
}

func (f *fakeWalletRepo) appendLocked(userID uuid.UUID, kind entity.TransactionType, amount float64, description string) {
	f.ledger = append(f.ledger, &entity.Transaction{
		BaseSimple:  entity.BaseSimple{ID: uuid.New(), CreatedAt: time.Now()},
		UserID:      userID,
		Type:        kind,
		Amount:      amount,
		Description: description,
	})
}

func (f *fakeWalletRepo) Credit(ctx context.Context, userID uuid.UUID, amount float64, description string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.balances[userID] += amount
	f.appendLocked(userID, entity.TransactionTypeCredit, amount, description)
	return nil
}

func (f *fakeWalletRepo) Debit(ctx context.Context, userID uuid.UUID, amount float64, description string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.balances[userID] < amount {
		return booking.ErrInsufficientFunds
	}
	f.balances[userID] -= amount
	f.appendLocked(userID, entity.TransactionTypeDebit, amount, description)
	return nil
}

func (f *fakeWalletRepo) History(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entity.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []*entity.Transaction
	for i := len(f.ledger) - 1; i >= 0; i-- {
		if f.ledger[i].UserID == userID {
			clone := *f.ledger[i]
			out = append(out, &clone)
		}
	}
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeWalletRepo) CountTransactions(ctx context.Context, userID uuid.UUID) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var n int64
	for _, t := range f.ledger {
		if t.UserID == userID {
			n++
		}
	}
	return n, nil
}

// fakeSettlementRepo couples the wallet and reservation fakes the way the
// real settlement transaction does: either both sides move or neither does.
type fakeSettlementRepo struct {
	wallet       *fakeWalletRepo
	reservations *fakeReservationRepo
}

func (f *fakeSettlementRepo) ConfirmWithWallet(ctx context.Context, reservationID, userID uuid.UUID, amount float64, description string) error {
	f.reservations.mu.Lock()
	defer f.reservations.mu.Unlock()

	r, ok := f.reservations.reservations[reservationID]
	if !ok {
		return booking.ErrNotFound
	}
	if r.Status != entity.ReservationStatusPending {
		return booking.ErrInvalidState
	}

	f.wallet.mu.Lock()
	defer f.wallet.mu.Unlock()

	if f.wallet.balances[userID] < amount {
		return booking.ErrInsufficientFunds
	}

	f.wallet.balances[userID] -= amount
	f.wallet.appendLocked(userID, entity.TransactionTypeDebit, amount, description)

	method := entity.PaymentMethodWallet
	r.Status = entity.ReservationStatusConfirmed
	r.PaymentMethod = &method
	return nil
}

func (f *fakeSettlementRepo) RefundAndTransition(ctx context.Context, reservationID, userID uuid.UUID, amount float64, description string) error {
	f.reservations.mu.Lock()
	defer f.reservations.mu.Unlock()

	r, ok := f.reservations.reservations[reservationID]
	if !ok {
		return booking.ErrNotFound
	}
	if r.Status != entity.ReservationStatusConfirmed {
		return booking.ErrInvalidState
	}

	f.wallet.mu.Lock()
	defer f.wallet.mu.Unlock()

	f.wallet.balances[userID] += amount
	f.wallet.appendLocked(userID, entity.TransactionTypeCredit, amount, description)

	r.Status = entity.ReservationStatusCancelled
	return nil
}

type fakeReviewRepo struct {
	mu      sync.Mutex
	reviews []*entity.Review
}

func (f *fakeReviewRepo) Create(ctx context.Context, review *entity.Review) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	clone := *review
	f.reviews = append(f.reviews, &clone)
	return nil
}

func (f *fakeReviewRepo) FindByReservationID(ctx context.Context, reservationID uuid.UUID) ([]*entity.Review, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []*entity.Review
	for _, r := range f.reviews {
		if r.ReservationID == reservationID {
			clone := *r
			out = append(out, &clone)
		}
	}
	return out, nil
}

// testEnv bundles the fakes with the wired service for tests.
type testEnv struct {
	service      *Service
	reservations *fakeReservationRepo
	tableTypes   *fakeTableTypeRepo
	coupons      *fakeCouponRepo
	wallet       *fakeWalletRepo
	reviews      *fakeReviewRepo
}

func newTestEnv() *testEnv {
	tableTypes := newFakeTableTypeRepo()
	reservations := newFakeReservationRepo(tableTypes)
	wallet := newFakeWalletRepo()

	repo := &repository.Repository{
		Reservation: reservations,
		TableType:   tableTypes,
		Coupon:      newFakeCouponRepo(),
		Wallet:      wallet,
		Settlement:  &fakeSettlementRepo{wallet: wallet, reservations: reservations},
		Review:      &fakeReviewRepo{},
	}

	config := &utils.Config{
		Booking: utils.BookingConfig{Currency: "INR"},
	}

	env := &testEnv{
		service:      NewService(repo, config, zap.NewNop()),
		reservations: reservations,
		tableTypes:   tableTypes,
		coupons:      repo.Coupon.(*fakeCouponRepo),
		wallet:       wallet,
		reviews:      repo.Review.(*fakeReviewRepo),
	}
	return env
}

// addTableType registers a table type and returns its ID.
func (e *testEnv) addTableType(branchID uuid.UUID, capacity, quantity int, price float64) uuid.UUID {
	id := uuid.New()
	e.tableTypes.types[id] = &entity.TableType{
		Base:     entity.Base{ID: id, CreatedAt: time.Now(), UpdatedAt: time.Now()},
		BranchID: branchID,
		Name:     "Window 4-seater",
		Capacity: capacity,
		Quantity: quantity,
		Price:    price,
	}
	return id
}
