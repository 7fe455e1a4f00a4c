package entity

import (
	"time"

	"github.com/google/uuid"
)

// Wallet holds one non-negative balance per user. Only the wallet repository
// may mutate it; every change is paired with a Transaction row.
type Wallet struct {
	UserID    uuid.UUID `db:"user_id"`
	Balance   float64   `db:"balance"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}
