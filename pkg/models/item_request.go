package models

import (
	"time"

	"stockroom/pkg/metadata"
)

type ItemRequest struct {
	ID          int             `json:"id" db:"id"`
	ItemID      int             `json:"item_id" db:"item_id"`
	ItemName    string          `json:"item_name" db:"item_name"`
	Quantity    int             `json:"quantity" db:"quantity"`
	Status      metadata.Status `json:"status" db:"status"`
	RequesterID int             `json:"requester_id" db:"requester_id"`
	ApproverID  *int            `json:"approver_id,omitempty" db:"approver_id"`
	Comment     string          `json:"comment" db:"comment"`
	Reference   string          `json:"reference" db:"reference"`
	Fulfilled   bool            `json:"fulfilled" db:"fulfilled"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at" db:"updated_at"`
}

func (r *ItemRequest) CreateLogView() AuditLog {
	return AuditLog{
		ResourceID:   r.ID,
		ResourceType: "item_request",
	}
}

type CreateItemRequestRequest struct {
	ItemID   int    `json:"item_id" binding:"required"`
	Quantity int    `json:"quantity" binding:"required,gt=0"`
	Comment  string `json:"comment"`
}

type DecideRequestRequest struct {
	Comment string `json:"comment"`
}
