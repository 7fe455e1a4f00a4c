package usecase

import (
	"context"
	"fmt"

	"restaurant-booking/internal/data/entity"
	"restaurant-booking/internal/data/repository"
	"restaurant-booking/internal/dto/request"
	"restaurant-booking/internal/dto/response"
	"restaurant-booking/internal/metrics"
	"restaurant-booking/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// recentTransactions is how many ledger entries ride along with the balance.
const recentTransactions = 10

type WalletService interface {
	GetWallet(ctx context.Context, userID string) (*response.WalletResponse, error)
	AddMoney(ctx context.Context, userID string, req *request.AddMoneyRequest) (*response.WalletResponse, error)
	GetHistory(ctx context.Context, userID string, req *request.PaginatedRequest) (*response.PaginatedResponse[response.TransactionResponse], error)
}

type walletService struct {
	repo     *repository.Repository
	currency string
	log      *zap.Logger
}

func NewWalletService(repo *repository.Repository, config *utils.Config, log *zap.Logger) WalletService {
	return &walletService{
		repo:     repo,
		currency: config.Booking.Currency,
		log:      log.With(zap.String("service", "wallet")),
	}
}

func (s *walletService) GetWallet(ctx context.Context, userID string) (*response.WalletResponse, error) {
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return nil, fmt.Errorf("invalid user ID format %s: %w", userID, err)
	}

	balance, err := s.repo.Wallet.Balance(ctx, userUUID)
	if err != nil {
		return nil, fmt.Errorf("get wallet balance: %w", err)
	}

	transactions, err := s.repo.Wallet.History(ctx, userUUID, recentTransactions, 0)
	if err != nil {
		return nil, fmt.Errorf("get wallet history: %w", err)
	}

	resp := &response.WalletResponse{
		UserID:   userID,
		Balance:  balance,
		Currency: s.currency,
	}
	for _, transaction := range transactions {
		resp.Transactions = append(resp.Transactions, response.TransactionToResponse(transaction))
	}

	return resp, nil
}

func (s *walletService) AddMoney(ctx context.Context, userID string, req *request.AddMoneyRequest) (*response.WalletResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Add money validation failed", zap.Any("errors", errs))
		return nil, fmt.Errorf("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return nil, fmt.Errorf("invalid user ID format %s: %w", userID, err)
	}

	err = s.repo.Wallet.Credit(ctx, userUUID, req.Amount, "Wallet top-up")
	if err != nil {
		return nil, fmt.Errorf("credit wallet: %w", err)
	}

	metrics.IncWalletTransaction(string(entity.TransactionTypeCredit))
	s.log.Info("Wallet credited",
		zap.String("user_id", userID),
		zap.Float64("amount", req.Amount),
	)

	return s.GetWallet(ctx, userID)
}

func (s *walletService) GetHistory(ctx context.Context, userID string, req *request.PaginatedRequest) (*response.PaginatedResponse[response.TransactionResponse], error) {
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return nil, fmt.Errorf("invalid user ID format %s: %w", userID, err)
	}

	transactions, err := s.repo.Wallet.History(ctx, userUUID, req.Limit(), req.Offset())
	if err != nil {
		return nil, fmt.Errorf("get wallet history: %w", err)
	}

	total, err := s.repo.Wallet.CountTransactions(ctx, userUUID)
	if err != nil {
		return nil, fmt.Errorf("count wallet transactions: %w", err)
	}

	transactionResponses := make([]response.TransactionResponse, len(transactions))
	for i, transaction := range transactions {
		transactionResponses[i] = response.TransactionToResponse(transaction)
	}

	return response.NewPaginatedResponse(transactionResponses, req.Page, req.PerPage, total), nil
}
