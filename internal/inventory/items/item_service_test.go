package items

import (
	"errors"
	"testing"

	"stockroom/internal/inventory/ledger"
	custom_error "stockroom/pkg/errors"
	"stockroom/pkg/metadata"
	"stockroom/pkg/models"

	"github.com/doug-martin/goqu/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockItemStore struct {
	mock.Mock
}

func (m *MockItemStore) WithTransaction(fn func(tx *goqu.TxDatabase) error) error {
	return fn(nil)
}

func (m *MockItemStore) PersistItem(tx *goqu.TxDatabase, req CreateItemRequest) (*models.InventoryItem, error) {
	args := m.Called(tx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.InventoryItem), args.Error(1)
}

func (m *MockItemStore) GetItem(id int) (*models.InventoryItem, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.InventoryItem), args.Error(1)
}

func (m *MockItemStore) SetArchived(tx *goqu.TxDatabase, id int) error {
	args := m.Called(tx, id)
	return args.Error(0)
}

type MockLedgerStore struct {
	mock.Mock
}

func (m *MockLedgerStore) ApplyDelta(tx *goqu.TxDatabase, mut ledger.Mutation) (*ledger.Result, error) {
	args := m.Called(tx, mut)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.Result), args.Error(1)
}

func TestCreateItemSeedsInitialStock(t *testing.T) {
	mockItems := new(MockItemStore)
	mockLedger := new(MockLedgerStore)
	service := NewItemService(mockItems, mockLedger)

	req := CreateItemRequest{Name: "Staplers", Unit: "pcs", InitialQuantity: 10, ReorderLevel: 3}

	mockItems.On("PersistItem", mock.Anything, req).Return(&models.InventoryItem{ID: 5, Name: "Staplers"}, nil)
	mockLedger.On("ApplyDelta", mock.Anything, mock.MatchedBy(func(mut ledger.Mutation) bool {
		return mut.ItemID == 5 &&
			mut.ExpectedVersion == 0 &&
			mut.Delta == 10 &&
			mut.MovementType == metadata.MovementAdjustmentCreate
	})).Return(&ledger.Result{NewQuantity: 10, NewVersion: 1}, nil)

	item, err := service.CreateItem(req, 42)

	assert.NoError(t, err)
	assert.Equal(t, 10, item.QuantityOnHand)
	assert.Equal(t, 1, item.ItemVersion)
	mockItems.AssertExpectations(t)
	mockLedger.AssertExpectations(t)
}

func TestCreateItemWithoutInitialStockSkipsLedger(t *testing.T) {
	mockItems := new(MockItemStore)
	mockLedger := new(MockLedgerStore)
	service := NewItemService(mockItems, mockLedger)

	req := CreateItemRequest{Name: "Envelopes", Unit: "box"}

	mockItems.On("PersistItem", mock.Anything, req).Return(&models.InventoryItem{ID: 6}, nil)

	_, err := service.CreateItem(req, 42)

	assert.NoError(t, err)
	mockLedger.AssertNotCalled(t, "ApplyDelta", mock.Anything, mock.Anything)
}

func TestArchiveItemWritesOffStock(t *testing.T) {
	mockItems := new(MockItemStore)
	mockLedger := new(MockLedgerStore)
	service := NewItemService(mockItems, mockLedger)

	mockItems.On("GetItem", 3).Return(&models.InventoryItem{ID: 3, QuantityOnHand: 7, ItemVersion: 4}, nil).Once()
	mockLedger.On("ApplyDelta", mock.Anything, mock.MatchedBy(func(mut ledger.Mutation) bool {
		return mut.ItemID == 3 &&
			mut.ExpectedVersion == 4 &&
			mut.Delta == -7 &&
			mut.MovementType == metadata.MovementAdjustmentArchive
	})).Return(&ledger.Result{NewQuantity: 0, NewVersion: 5, LowStock: true}, nil)
	mockItems.On("SetArchived", mock.Anything, 3).Return(nil)
	mockItems.On("GetItem", 3).Return(&models.InventoryItem{ID: 3, IsArchived: true, ItemVersion: 5}, nil).Once()

	item, err := service.ArchiveItem(3, 42)

	assert.NoError(t, err)
	assert.True(t, item.IsArchived)
	mockItems.AssertExpectations(t)
	mockLedger.AssertExpectations(t)
}

func TestArchiveItemAlreadyArchived(t *testing.T) {
	mockItems := new(MockItemStore)
	mockLedger := new(MockLedgerStore)
	service := NewItemService(mockItems, mockLedger)

	mockItems.On("GetItem", 3).Return(&models.InventoryItem{ID: 3, IsArchived: true}, nil)

	_, err := service.ArchiveItem(3, 42)

	var processedErr *custom_error.AlreadyProcessedError
	assert.ErrorAs(t, err, &processedErr)
	mockLedger.AssertNotCalled(t, "ApplyDelta", mock.Anything, mock.Anything)
}

func TestArchiveItemRetriesOnVersionConflict(t *testing.T) {
	mockItems := new(MockItemStore)
	mockLedger := new(MockLedgerStore)
	service := NewItemService(mockItems, mockLedger)

	// First attempt sees version 1, loses the race, second attempt succeeds.
	mockItems.On("GetItem", 9).Return(&models.InventoryItem{ID: 9, QuantityOnHand: 2, ItemVersion: 1}, nil).Once()
	mockLedger.On("ApplyDelta", mock.Anything, mock.MatchedBy(func(mut ledger.Mutation) bool {
		return mut.ExpectedVersion == 1
	})).Return(nil, &custom_error.VersionConflictError{ItemID: 9, ExpectedVersion: 1, CurrentVersion: 2}).Once()

	mockItems.On("GetItem", 9).Return(&models.InventoryItem{ID: 9, QuantityOnHand: 2, ItemVersion: 2}, nil).Once()
	mockLedger.On("ApplyDelta", mock.Anything, mock.MatchedBy(func(mut ledger.Mutation) bool {
		return mut.ExpectedVersion == 2
	})).Return(&ledger.Result{NewQuantity: 0, NewVersion: 3}, nil).Once()
	mockItems.On("SetArchived", mock.Anything, 9).Return(nil)
	mockItems.On("GetItem", 9).Return(&models.InventoryItem{ID: 9, IsArchived: true}, nil).Once()

	item, err := service.ArchiveItem(9, 42)

	assert.NoError(t, err)
	assert.True(t, item.IsArchived)
	mockLedger.AssertExpectations(t)
}

// An active item already holds the name; the unique violation from the
// insert must reach the caller typed, so the handler can answer 409.
func TestCreateItemDuplicateName(t *testing.T) {
	mockItems := new(MockItemStore)
	mockLedger := new(MockLedgerStore)
	service := NewItemService(mockItems, mockLedger)

	req := CreateItemRequest{Name: "Staplers", Unit: "pcs", InitialQuantity: 2}
	mockItems.On("PersistItem", mock.Anything, req).
		Return(nil, custom_error.WrapDBError("Item with same name already registered", "23505"))

	_, err := service.CreateItem(req, 42)

	var uniqueErr *custom_error.UniqueViolationError
	assert.ErrorAs(t, err, &uniqueErr)
	mockLedger.AssertNotCalled(t, "ApplyDelta", mock.Anything, mock.Anything)
}

func TestCreateItemPersistFailure(t *testing.T) {
	mockItems := new(MockItemStore)
	mockLedger := new(MockLedgerStore)
	service := NewItemService(mockItems, mockLedger)

	req := CreateItemRequest{Name: "Chairs", Unit: "pcs", InitialQuantity: 4}
	mockItems.On("PersistItem", mock.Anything, req).Return(nil, errors.New("db error"))

	_, err := service.CreateItem(req, 42)

	assert.Error(t, err)
	mockLedger.AssertNotCalled(t, "ApplyDelta", mock.Anything, mock.Anything)
}
