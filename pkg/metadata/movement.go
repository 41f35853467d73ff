package metadata

import (
	"fmt"
	"strings"
)

// MovementType classifies a stock ledger entry. The set is closed so audit
// queries can distinguish initial stock, manual corrections and archival
// write-offs from ordinary in/out flow.
type MovementType string

const (
	MovementInbound           MovementType = "inbound"
	MovementOutbound          MovementType = "outbound"
	MovementAdjustmentCreate  MovementType = "adjustment_create"
	MovementAdjustmentEdit    MovementType = "adjustment_edit"
	MovementAdjustmentArchive MovementType = "adjustment_archive"
)

func (m MovementType) IsValid() bool {
	switch m {
	case MovementInbound, MovementOutbound, MovementAdjustmentCreate, MovementAdjustmentEdit, MovementAdjustmentArchive:
		return true
	default:
		return false
	}
}

// IsAdjustment reports whether the movement is one of the adjustment kinds.
func (m MovementType) IsAdjustment() bool {
	return strings.HasPrefix(string(m), "adjustment_")
}

func NewMovementType(value string) (MovementType, error) {
	normalized := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(value)), "-", "_")
	movement := MovementType(normalized)
	if !movement.IsValid() {
		return movement, fmt.Errorf(
			"value not valid, only valid values are: %s, %s, %s, %s, %s",
			MovementInbound, MovementOutbound, MovementAdjustmentCreate, MovementAdjustmentEdit, MovementAdjustmentArchive,
		)
	}

	return movement, nil
}

func (m MovementType) String() string {
	return string(m)
}
