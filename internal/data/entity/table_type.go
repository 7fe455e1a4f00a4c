package entity

import "github.com/google/uuid"

// TableType is a bookable seating category owned by a branch. Quantity may
// be adjusted by branch admins at any time, so capacity checks always re-read
// it from the store.
type TableType struct {
	Base
	BranchID uuid.UUID `db:"branch_id"`
	Name     string    `db:"name"`
	Capacity int       `db:"capacity"` // max guests per unit
	Quantity int       `db:"quantity"` // total physical units
	Price    float64   `db:"price"`    // per slot
}
