package entity

import "github.com/google/uuid"

type TransactionType string

const (
	TransactionTypeCredit TransactionType = "credit"
	TransactionTypeDebit  TransactionType = "debit"
)

// Transaction is an append-only ledger entry. Written once, never updated or
// deleted; the signed sum per user always equals the wallet balance.
type Transaction struct {
	BaseSimple
	UserID      uuid.UUID       `db:"user_id"`
	Type        TransactionType `db:"type"`
	Amount      float64         `db:"amount"` // always > 0, sign comes from Type
	Description string          `db:"description"`
}

// Signed returns the amount with the direction applied.
func (t *Transaction) Signed() float64 {
	if t.Type == TransactionTypeDebit {
		return -t.Amount
	}
	return t.Amount
}
