package usecase

import (
	"context"
	"testing"

	"restaurant-booking/internal/booking"
	"restaurant-booking/internal/data/entity"
	"restaurant-booking/internal/dto/request"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddMoney(t *testing.T) {
	env := newTestEnv()
	userID := uuid.New()

	wallet, err := env.service.Wallet.AddMoney(context.Background(), userID.String(),
		&request.AddMoneyRequest{Amount: 250})
	require.NoError(t, err)

	assert.Equal(t, 250.0, wallet.Balance)
	assert.Equal(t, "INR", wallet.Currency)
	require.Len(t, wallet.Transactions, 1)
	assert.Equal(t, entity.TransactionTypeCredit, wallet.Transactions[0].Type)
	assert.Equal(t, 250.0, wallet.Transactions[0].Amount)
}

func TestAddMoney_RejectsNonPositiveAmount(t *testing.T) {
	env := newTestEnv()

	_, err := env.service.Wallet.AddMoney(context.Background(), uuid.New().String(),
		&request.AddMoneyRequest{Amount: -50})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")
}

func TestGetWallet_UnknownUser(t *testing.T) {
	env := newTestEnv()

	_, err := env.service.Wallet.GetWallet(context.Background(), uuid.New().String())
	assert.ErrorIs(t, err, booking.ErrNotFound)
}

func TestWalletLedgerConservation(t *testing.T) {
	env := newTestEnv()
	userID := uuid.New()

	_, err := env.service.Wallet.AddMoney(context.Background(), userID.String(), &request.AddMoneyRequest{Amount: 300})
	require.NoError(t, err)
	_, err = env.service.Wallet.AddMoney(context.Background(), userID.String(), &request.AddMoneyRequest{Amount: 200})
	require.NoError(t, err)

	require.NoError(t, env.wallet.Debit(context.Background(), userID, 150, "Payment for reservation RESV-TEST"))

	// The signed ledger sum always equals the balance.
	history, err := env.wallet.History(context.Background(), userID, 100, 0)
	require.NoError(t, err)

	var sum float64
	for _, transaction := range history {
		assert.Greater(t, transaction.Amount, 0.0)
		sum += transaction.Signed()
	}

	balance, err := env.wallet.Balance(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, balance, sum)
	assert.Equal(t, 350.0, balance)
}

func TestWalletDebit_InsufficientFundsIsNoOp(t *testing.T) {
	env := newTestEnv()
	userID := uuid.New()

	_, err := env.service.Wallet.AddMoney(context.Background(), userID.String(), &request.AddMoneyRequest{Amount: 100})
	require.NoError(t, err)

	err = env.wallet.Debit(context.Background(), userID, 500, "Payment for reservation RESV-TEST")
	assert.ErrorIs(t, err, booking.ErrInsufficientFunds)

	// Balance and ledger untouched by the failed debit.
	balance, err := env.wallet.Balance(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, 100.0, balance)

	count, err := env.wallet.CountTransactions(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestGetHistory_Pagination(t *testing.T) {
	env := newTestEnv()
	userID := uuid.New()

	for i := 0; i < 5; i++ {
		_, err := env.service.Wallet.AddMoney(context.Background(), userID.String(), &request.AddMoneyRequest{Amount: 10})
		require.NoError(t, err)
	}

	page, err := env.service.Wallet.GetHistory(context.Background(), userID.String(),
		&request.PaginatedRequest{Page: 2, PerPage: 2})
	require.NoError(t, err)

	assert.Len(t, page.Data, 2)
	assert.Equal(t, int64(5), page.Pagination.Total)
	assert.Equal(t, 3, page.Pagination.TotalPages)
}
