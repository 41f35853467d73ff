package models

import (
	"time"

	"stockroom/pkg/metadata"

	"github.com/shopspring/decimal"
)

// NewItemRequest proposes an item that does not exist in inventory yet.
// AddedToInventory is the idempotency marker: approval creates the item and
// seeds its initial stock exactly once.
type NewItemRequest struct {
	ID               int             `json:"id" db:"id"`
	Name             string          `json:"name" db:"name"`
	Unit             string          `json:"unit" db:"unit"`
	Quantity         int             `json:"quantity" db:"quantity"`
	PricePerItem     decimal.Decimal `json:"price_per_item" db:"price_per_item"`
	ReorderLevel     int             `json:"reorder_level" db:"reorder_level"`
	Status           metadata.Status `json:"status" db:"status"`
	RequesterID      int             `json:"requester_id" db:"requester_id"`
	ApproverID       *int            `json:"approver_id,omitempty" db:"approver_id"`
	Comment          string          `json:"comment" db:"comment"`
	AddedToInventory bool            `json:"added_to_inventory" db:"added_to_inventory"`
	CreatedAt        time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at" db:"updated_at"`
}

func (r *NewItemRequest) CreateLogView() AuditLog {
	return AuditLog{
		ResourceID:   r.ID,
		ResourceType: "new_item_request",
	}
}

type CreateNewItemRequestRequest struct {
	Name         string          `json:"name" binding:"required"`
	Unit         string          `json:"unit" binding:"required"`
	Quantity     int             `json:"quantity" binding:"required,gt=0"`
	PricePerItem decimal.Decimal `json:"price_per_item"`
	ReorderLevel int             `json:"reorder_level"`
	Comment      string          `json:"comment"`
}
