package newitems

import (
	"testing"

	"stockroom/internal/inventory/items"
	"stockroom/internal/inventory/ledger"
	custom_error "stockroom/pkg/errors"
	"stockroom/pkg/metadata"
	"stockroom/pkg/models"

	"github.com/doug-martin/goqu/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockNewItemRequestStore struct {
	mock.Mock
}

func (m *MockNewItemRequestStore) WithTransaction(fn func(tx *goqu.TxDatabase) error) error {
	return fn(nil)
}

func (m *MockNewItemRequestStore) PersistNewItemRequest(request *models.NewItemRequest) error {
	args := m.Called(request)
	return args.Error(0)
}

func (m *MockNewItemRequestStore) GetNewItemRequest(id int) (*models.NewItemRequest, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.NewItemRequest), args.Error(1)
}

func (m *MockNewItemRequestStore) UpdateStatus(id int, from, to metadata.Status, approverID *int, comment string) error {
	args := m.Called(id, from, to, approverID, comment)
	return args.Error(0)
}

func (m *MockNewItemRequestStore) MarkAddedToInventory(tx *goqu.TxDatabase, id int, approverID int, comment string) error {
	args := m.Called(tx, id, approverID, comment)
	return args.Error(0)
}

type MockItemCreator struct {
	mock.Mock
}

func (m *MockItemCreator) PersistItem(tx *goqu.TxDatabase, req items.CreateItemRequest) (*models.InventoryItem, error) {
	args := m.Called(tx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.InventoryItem), args.Error(1)
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

func TestApproveCreatesItemAndSeedsStock(t *testing.T) {
	requests := new(MockNewItemRequestStore)
	creator := new(MockItemCreator)
	ledgerStore := new(MockLedgerStore)
	service := NewNewItemRequestService(requests, creator, ledgerStore)

	request := &models.NewItemRequest{
		ID:          2,
		Name:        "Whiteboard markers",
		Unit:        "box",
		Quantity:    12,
		Status:      metadata.StatusSubmitted,
		RequesterID: 11,
	}

	requests.On("GetNewItemRequest", 2).Return(request, nil).Once()
	requests.On("MarkAddedToInventory", mock.Anything, 2, 50, "").Return(nil)
	creator.On("PersistItem", mock.Anything, mock.MatchedBy(func(req items.CreateItemRequest) bool {
		return req.Name == "Whiteboard markers" && req.Unit == "box"
	})).Return(&models.InventoryItem{ID: 30, Name: "Whiteboard markers"}, nil)
	ledgerStore.On("ApplyDelta", mock.Anything, mock.MatchedBy(func(mut ledger.Mutation) bool {
		return mut.ItemID == 30 &&
			mut.ExpectedVersion == 0 &&
			mut.Delta == 12 &&
			mut.MovementType == metadata.MovementAdjustmentCreate &&
			mut.ReferenceID != nil && *mut.ReferenceID == "new-item-request:2"
	})).Return(&ledger.Result{NewQuantity: 12, NewVersion: 1}, nil)
	requests.On("GetNewItemRequest", 2).Return(&models.NewItemRequest{
		ID:               2,
		Status:           metadata.StatusApproved,
		AddedToInventory: true,
	}, nil).Once()

	approved, item, err := service.Approve(2, 50, "")

	assert.NoError(t, err)
	assert.True(t, approved.AddedToInventory)
	assert.Equal(t, 12, item.QuantityOnHand)
	assert.Equal(t, 1, item.ItemVersion)
	requests.AssertExpectations(t)
	creator.AssertExpectations(t)
	ledgerStore.AssertExpectations(t)
}

// A request already flagged added_to_inventory must never reach the ledger.
func TestApproveTwiceIsRejected(t *testing.T) {
	requests := new(MockNewItemRequestStore)
	creator := new(MockItemCreator)
	ledgerStore := new(MockLedgerStore)
	service := NewNewItemRequestService(requests, creator, ledgerStore)

	requests.On("GetNewItemRequest", 2).Return(&models.NewItemRequest{
		ID:               2,
		Status:           metadata.StatusApproved,
		AddedToInventory: true,
	}, nil)

	_, _, err := service.Approve(2, 50, "")

	var processedErr *custom_error.AlreadyProcessedError
	assert.ErrorAs(t, err, &processedErr)
	creator.AssertNotCalled(t, "PersistItem", mock.Anything, mock.Anything)
	ledgerStore.AssertNotCalled(t, "ApplyDelta", mock.Anything, mock.Anything)
}

// The conditional flag update can still lose to a concurrent approval between
// the status read and the transaction; the claim failure aborts everything.
func TestApproveConcurrentClaimLoses(t *testing.T) {
	requests := new(MockNewItemRequestStore)
	creator := new(MockItemCreator)
	ledgerStore := new(MockLedgerStore)
	service := NewNewItemRequestService(requests, creator, ledgerStore)

	requests.On("GetNewItemRequest", 2).Return(&models.NewItemRequest{
		ID:       2,
		Quantity: 5,
		Status:   metadata.StatusSubmitted,
	}, nil)
	requests.On("MarkAddedToInventory", mock.Anything, 2, 50, "").
		Return(custom_error.NewAlreadyProcessed("new item request", 2))

	_, _, err := service.Approve(2, 50, "")

	var processedErr *custom_error.AlreadyProcessedError
	assert.ErrorAs(t, err, &processedErr)
	creator.AssertNotCalled(t, "PersistItem", mock.Anything, mock.Anything)
}

func TestSubmitOnlyByRequester(t *testing.T) {
	requests := new(MockNewItemRequestStore)
	service := NewNewItemRequestService(requests, new(MockItemCreator), new(MockLedgerStore))

	requests.On("GetNewItemRequest", 2).Return(&models.NewItemRequest{
		ID:          2,
		RequesterID: 11,
		Status:      metadata.StatusDraft,
	}, nil)

	_, err := service.Submit(2, 99)

	assert.Error(t, err)
	requests.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
