package models

import (
	"time"

	"stockroom/pkg/metadata"

	"github.com/shopspring/decimal"
)

type Reimbursement struct {
	ID            int             `json:"id" db:"id"`
	RequesterID   int             `json:"requester_id" db:"requester_id"`
	ApproverID    *int            `json:"approver_id,omitempty" db:"approver_id"`
	Amount        decimal.Decimal `json:"amount" db:"amount"`
	Description   string          `json:"description" db:"description"`
	AttachmentURL *string         `json:"attachment_url,omitempty" db:"attachment_url"`
	Status        metadata.Status `json:"status" db:"status"`
	Comment       string          `json:"comment" db:"comment"`
	CreatedAt     time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at" db:"updated_at"`
}

func (r *Reimbursement) CreateLogView() AuditLog {
	return AuditLog{
		ResourceID:   r.ID,
		ResourceType: "reimbursement",
	}
}

type CreateReimbursementRequest struct {
	Amount        decimal.Decimal `json:"amount" binding:"required"`
	Description   string          `json:"description" binding:"required"`
	AttachmentURL *string         `json:"attachment_url"`
}
