package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type InventoryItem struct {
	ID             int             `json:"id" db:"id"`
	Name           string          `json:"name" db:"name"`
	Unit           string          `json:"unit" db:"unit"`
	QuantityOnHand int             `json:"quantity_on_hand" db:"quantity_on_hand"`
	PricePerItem   decimal.Decimal `json:"price_per_item" db:"price_per_item"`
	ReorderLevel   int             `json:"reorder_level" db:"reorder_level"`
	ItemVersion    int             `json:"item_version" db:"item_version"`
	IsArchived     bool            `json:"is_archived" db:"is_archived"`
	CreatedAt      time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at" db:"updated_at"`
}

// LowStock reports whether the item has fallen to or below its reorder level.
func (i *InventoryItem) LowStock() bool {
	return i.QuantityOnHand <= i.ReorderLevel
}

func (i *InventoryItem) CreateLogView() AuditLog {
	return AuditLog{
		ResourceID:   i.ID,
		ResourceType: "inventory_item",
	}
}
