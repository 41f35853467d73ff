package items

import "github.com/shopspring/decimal"

type CreateItemRequest struct {
	Name            string          `json:"name" binding:"required"`
	Unit            string          `json:"unit" binding:"required"`
	InitialQuantity int             `json:"initial_quantity" binding:"gte=0"`
	PricePerItem    decimal.Decimal `json:"price_per_item"`
	ReorderLevel    int             `json:"reorder_level" binding:"gte=0"`
}

// PatchItemRequest updates descriptive fields only. Quantity never moves
// through here; it goes through the ledger.
type PatchItemRequest struct {
	ID           int              `json:"-" uri:"id" binding:"required"`
	Name         *string          `json:"name"`
	Unit         *string          `json:"unit"`
	PricePerItem *decimal.Decimal `json:"price_per_item"`
	ReorderLevel *int             `json:"reorder_level"`
}

type AdjustmentRequest struct {
	ExpectedVersion int    `json:"expected_version"`
	Delta           int    `json:"delta" binding:"required"`
	Reason          string `json:"reason" binding:"required"`
}
