package metadata

import "fmt"

// Status tracks a request or reimbursement through its approval workflow.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusSubmitted Status = "submitted"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"
	StatusCancelled Status = "cancelled"
)

func NewStatus(value string) (Status, error) {
	status := Status(value)
	if !status.isValid() {
		return "", fmt.Errorf("invalid status: %s", value)
	}
	return status, nil
}

func (s Status) isValid() bool {
	switch s {
	case StatusDraft, StatusSubmitted, StatusApproved, StatusRejected, StatusCancelled:
		return true
	default:
		return false
	}
}

// CanTransitionTo enforces the workflow: draft -> submitted -> approved/rejected,
// with cancellation allowed before a decision is made.
func (s Status) CanTransitionTo(next Status) bool {
	switch s {
	case StatusDraft:
		return next == StatusSubmitted || next == StatusCancelled
	case StatusSubmitted:
		return next == StatusApproved || next == StatusRejected || next == StatusCancelled
	default:
		return false
	}
}

func (s Status) IsTerminal() bool {
	return s == StatusApproved || s == StatusRejected || s == StatusCancelled
}

func (s Status) String() string {
	return string(s)
}
