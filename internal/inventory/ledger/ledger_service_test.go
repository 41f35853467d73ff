package ledger

import (
	"testing"

	custom_error "stockroom/pkg/errors"
	"stockroom/pkg/metadata"
	"stockroom/pkg/models"

	"github.com/doug-martin/goqu/v9"
	"github.com/stretchr/testify/assert"
)

// fakeStore emulates the repository contract against an in-memory item:
// version check first, then the non-negativity check, one ledger row per
// successful mutation.
type fakeStore struct {
	item         *models.InventoryItem
	transactions []models.StockTransaction
}

func (f *fakeStore) WithTransaction(fn func(tx *goqu.TxDatabase) error) error {
	return fn(nil)
}

func (f *fakeStore) ApplyDelta(_ *goqu.TxDatabase, mut Mutation) (*Result, error) {
	if f.item == nil || f.item.ID != mut.ItemID || f.item.IsArchived {
		return nil, custom_error.NewNotFound("inventory item", mut.ItemID)
	}
	if f.item.ItemVersion != mut.ExpectedVersion {
		return nil, &custom_error.VersionConflictError{
			ItemID:          mut.ItemID,
			ExpectedVersion: mut.ExpectedVersion,
			CurrentVersion:  f.item.ItemVersion,
		}
	}
	if f.item.QuantityOnHand+mut.Delta < 0 {
		return nil, &custom_error.InsufficientStockError{
			ItemID:    mut.ItemID,
			Available: f.item.QuantityOnHand,
			Requested: -mut.Delta,
		}
	}

	prev := f.item.QuantityOnHand
	f.item.QuantityOnHand += mut.Delta
	f.item.ItemVersion++
	f.transactions = append(f.transactions, models.StockTransaction{
		ItemID:        mut.ItemID,
		MovementType:  mut.MovementType,
		QuantityDelta: mut.Delta,
		PrevQuantity:  prev,
		NewQuantity:   f.item.QuantityOnHand,
		PerformedBy:   mut.ActorID,
	})

	return &Result{
		NewQuantity: f.item.QuantityOnHand,
		NewVersion:  f.item.ItemVersion,
		LowStock:    f.item.QuantityOnHand <= f.item.ReorderLevel,
	}, nil
}

func newFakeStore(quantity, version, reorderLevel int) *fakeStore {
	return &fakeStore{
		item: &models.InventoryItem{
			ID:             1,
			QuantityOnHand: quantity,
			ItemVersion:    version,
			ReorderLevel:   reorderLevel,
		},
	}
}

func TestApplyStockDeltaInbound(t *testing.T) {
	store := newFakeStore(10, 0, 5)
	service := NewService(store)

	result, err := service.ApplyStockDelta(Mutation{
		ItemID:          1,
		ExpectedVersion: 0,
		Delta:           20,
		MovementType:    metadata.MovementInbound,
		Reason:          "restock",
		ActorID:         7,
	})

	assert.NoError(t, err)
	assert.Equal(t, 30, result.NewQuantity)
	assert.Equal(t, 1, result.NewVersion)
	assert.False(t, result.LowStock)

	assert.Len(t, store.transactions, 1)
	assert.Equal(t, 10, store.transactions[0].PrevQuantity)
	assert.Equal(t, 30, store.transactions[0].NewQuantity)
}

func TestApplyStockDeltaOutboundLowStock(t *testing.T) {
	store := newFakeStore(3, 2, 5)
	service := NewService(store)

	result, err := service.ApplyStockDelta(Mutation{
		ItemID:          1,
		ExpectedVersion: 2,
		Delta:           -1,
		MovementType:    metadata.MovementOutbound,
		ActorID:         7,
	})

	assert.NoError(t, err)
	assert.Equal(t, 2, result.NewQuantity)
	assert.Equal(t, 3, result.NewVersion)
	assert.True(t, result.LowStock)
}

func TestApplyStockDeltaVersionConflict(t *testing.T) {
	store := newFakeStore(5, 1, 0)
	service := NewService(store)

	_, err := service.ApplyStockDelta(Mutation{
		ItemID:          1,
		ExpectedVersion: 0, // stale
		Delta:           -1,
		MovementType:    metadata.MovementOutbound,
		ActorID:         7,
	})

	var conflictErr *custom_error.VersionConflictError
	assert.ErrorAs(t, err, &conflictErr)
	assert.Equal(t, 1, conflictErr.CurrentVersion)

	// Rejected call left the item untouched.
	assert.Equal(t, 5, store.item.QuantityOnHand)
	assert.Equal(t, 1, store.item.ItemVersion)
	assert.Empty(t, store.transactions)
}

func TestApplyStockDeltaInsufficientStock(t *testing.T) {
	store := newFakeStore(2, 0, 0)
	service := NewService(store)

	_, err := service.ApplyStockDelta(Mutation{
		ItemID:          1,
		ExpectedVersion: 0,
		Delta:           -5,
		MovementType:    metadata.MovementOutbound,
		ActorID:         7,
	})

	var stockErr *custom_error.InsufficientStockError
	assert.ErrorAs(t, err, &stockErr)
	assert.Equal(t, 2, stockErr.Available)
	assert.Equal(t, 5, stockErr.Requested)

	assert.Equal(t, 2, store.item.QuantityOnHand)
	assert.Equal(t, 0, store.item.ItemVersion)
	assert.Empty(t, store.transactions)
}

func TestApplyStockDeltaArchivedItem(t *testing.T) {
	store := newFakeStore(5, 0, 0)
	store.item.IsArchived = true
	service := NewService(store)

	_, err := service.ApplyStockDelta(Mutation{
		ItemID:          1,
		ExpectedVersion: 0,
		Delta:           1,
		MovementType:    metadata.MovementInbound,
		ActorID:         7,
	})

	var notFoundErr *custom_error.NotFoundError
	assert.ErrorAs(t, err, &notFoundErr)
}

func TestApplyStockDeltaRejectsInvalidInput(t *testing.T) {
	service := NewService(newFakeStore(5, 0, 0))

	_, err := service.ApplyStockDelta(Mutation{
		ItemID:          1,
		ExpectedVersion: 0,
		Delta:           0,
		MovementType:    metadata.MovementInbound,
	})
	assert.Error(t, err)

	_, err = service.ApplyStockDelta(Mutation{
		ItemID:          1,
		ExpectedVersion: 0,
		Delta:           1,
		MovementType:    metadata.MovementType("sideways"),
	})
	assert.Error(t, err)

	_, err = service.ApplyStockDelta(Mutation{
		ItemID:          1,
		ExpectedVersion: 0,
		Delta:           1,
		MovementType:    metadata.MovementAdjustmentEdit,
	})
	assert.Error(t, err, "adjustment without a reason must be rejected")
}

// Two writers racing with the same expected version: exactly one wins and
// the version advances by one, not two.
func TestApplyStockDeltaSameVersionRace(t *testing.T) {
	store := newFakeStore(10, 4, 0)
	service := NewService(store)

	mut := Mutation{
		ItemID:          1,
		ExpectedVersion: 4,
		Delta:           -3,
		MovementType:    metadata.MovementOutbound,
		ActorID:         7,
	}

	first, err := service.ApplyStockDelta(mut)
	assert.NoError(t, err)
	assert.Equal(t, 5, first.NewVersion)

	_, err = service.ApplyStockDelta(mut)
	var conflictErr *custom_error.VersionConflictError
	assert.ErrorAs(t, err, &conflictErr)

	assert.Equal(t, 5, store.item.ItemVersion)
	assert.Equal(t, 7, store.item.QuantityOnHand)
	assert.Len(t, store.transactions, 1)
}

// quantity_on_hand must always equal the running sum of ledger deltas.
func TestLedgerSumMatchesQuantity(t *testing.T) {
	store := newFakeStore(0, 0, 2)
	service := NewService(store)

	deltas := []int{15, -4, -3, 6, -10}
	version := 0
	for _, delta := range deltas {
		movement := metadata.MovementInbound
		if delta < 0 {
			movement = metadata.MovementOutbound
		}
		result, err := service.ApplyStockDelta(Mutation{
			ItemID:          1,
			ExpectedVersion: version,
			Delta:           delta,
			MovementType:    movement,
			ActorID:         7,
		})
		assert.NoError(t, err)
		version = result.NewVersion
	}

	sum := 0
	for _, txn := range store.transactions {
		sum += txn.QuantityDelta
	}
	assert.Equal(t, store.item.QuantityOnHand, sum)
	assert.Equal(t, len(deltas), store.item.ItemVersion)
	assert.True(t, store.item.QuantityOnHand >= 0)
}
