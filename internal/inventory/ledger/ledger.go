package ledger

import (
	"stockroom/pkg/metadata"

	"github.com/doug-martin/goqu/v9"
)

// Mutation describes a single quantity change request against an item.
// ExpectedVersion must match the item's current item_version; a mismatch
// means another writer got there first.
type Mutation struct {
	ItemID          int
	ExpectedVersion int
	Delta           int
	MovementType    metadata.MovementType
	Reason          string
	ActorID         int
	ReferenceID     *string
}

// Result is returned on a successful mutation so callers can surface a
// low-stock warning without a second read.
type Result struct {
	NewQuantity int  `json:"new_quantity"`
	NewVersion  int  `json:"new_version"`
	LowStock    bool `json:"low_stock"`
}

// Store is the persistence boundary of the stock ledger. ApplyDelta must be
// called inside a transaction obtained from WithTransaction so that the
// quantity update and the ledger insert commit atomically.
type Store interface {
	WithTransaction(fn func(tx *goqu.TxDatabase) error) error
	ApplyDelta(tx *goqu.TxDatabase, mut Mutation) (*Result, error)
}
