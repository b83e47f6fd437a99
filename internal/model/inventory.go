package model

import "time"

// InventoryLevel is the denormalized current quantity of a product at a branch.
// It is a derived cache of the latest stock count, not authoritative.
type InventoryLevel struct {
	ProductID     string    `json:"product_id" db:"product_id"`
	BranchID      string    `json:"branch_id" db:"branch_id"`
	Quantity      int       `json:"quantity" db:"quantity"`
	LastCountedAt time.Time `json:"last_counted_at" db:"last_counted_at"`
	LastCountedBy string    `json:"last_counted_by" db:"last_counted_by"`
}
