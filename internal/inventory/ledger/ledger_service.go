package ledger

import (
	"fmt"

	"github.com/doug-martin/goqu/v9"
)

// Service applies stock deltas through the store. There is no in-process
// locking: correctness under concurrent callers rests on the conditional
// update inside the store transaction.
type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

// ApplyStockDelta validates the mutation and applies it in one transaction.
// On success the item's version has advanced by exactly one and a single
// ledger row exists for the change.
func (s *Service) ApplyStockDelta(mut Mutation) (*Result, error) {
	if mut.Delta == 0 {
		return nil, fmt.Errorf("quantity delta must be non-zero")
	}
	if !mut.MovementType.IsValid() {
		return nil, fmt.Errorf("invalid movement type: %s", mut.MovementType)
	}
	// Manual corrections must say why; regular flow carries its own context.
	if mut.MovementType.IsAdjustment() && mut.Reason == "" {
		return nil, fmt.Errorf("adjustment movements require a reason")
	}

	var result *Result
	err := s.store.WithTransaction(func(tx *goqu.TxDatabase) error {
		r, err := s.store.ApplyDelta(tx, mut)
		if err != nil {
			return err
		}
		result = r
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}
