package response

import (
	"time"

	"restaurant-booking/internal/data/entity"
)

type WalletResponse struct {
	UserID       string                `json:"user_id"`
	Balance      float64               `json:"balance"`
	Currency     string                `json:"currency"`
	Transactions []TransactionResponse `json:"transactions,omitempty"`
}

type TransactionResponse struct {
	ID          string                 `json:"id"`
	Type        entity.TransactionType `json:"type"`
	Amount      float64                `json:"amount"`
	Description string                 `json:"description"`
	CreatedAt   time.Time              `json:"created_at"`
}

func TransactionToResponse(transaction *entity.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:          transaction.ID.String(),
		Type:        transaction.Type,
		Amount:      transaction.Amount,
		Description: transaction.Description,
		CreatedAt:   transaction.CreatedAt,
	}
}
