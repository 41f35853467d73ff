package models

import (
	"time"

	"stockroom/pkg/metadata"
)

// StockTransaction is one row of the append-only stock ledger. Rows are
// inserted exactly once per successful quantity mutation and never updated
// or deleted; quantity_on_hand on the item is the running sum of deltas.
type StockTransaction struct {
	ID            int                   `json:"id" db:"id"`
	ItemID        int                   `json:"item_id" db:"item_id"`
	MovementType  metadata.MovementType `json:"movement_type" db:"movement_type"`
	QuantityDelta int                   `json:"quantity_delta" db:"quantity_delta"`
	PrevQuantity  int                   `json:"prev_quantity" db:"prev_quantity"`
	NewQuantity   int                   `json:"new_quantity" db:"new_quantity"`
	Reason        string                `json:"reason" db:"reason"`
	ReferenceID   *string               `json:"reference_id,omitempty" db:"reference_id"`
	PerformedBy   int                   `json:"performed_by" db:"performed_by"`
	CreatedAt     time.Time             `json:"created_at" db:"created_at"`
}
