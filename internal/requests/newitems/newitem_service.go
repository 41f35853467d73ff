package newitems

import (
	"fmt"

	"stockroom/internal/inventory/items"
	"stockroom/internal/inventory/ledger"
	custom_error "stockroom/pkg/errors"
	"stockroom/pkg/metadata"
	"stockroom/pkg/models"

	"github.com/doug-martin/goqu/v9"
)

type newItemRequestStore interface {
	WithTransaction(fn func(tx *goqu.TxDatabase) error) error
	PersistNewItemRequest(request *models.NewItemRequest) error
	GetNewItemRequest(id int) (*models.NewItemRequest, error)
	UpdateStatus(id int, from, to metadata.Status, approverID *int, comment string) error
	MarkAddedToInventory(tx *goqu.TxDatabase, id int, approverID int, comment string) error
}

type itemCreator interface {
	PersistItem(tx *goqu.TxDatabase, req items.CreateItemRequest) (*models.InventoryItem, error)
}

type ledgerStore interface {
	ApplyDelta(tx *goqu.TxDatabase, mut ledger.Mutation) (*ledger.Result, error)
}

type NewItemRequestService struct {
	requests newItemRequestStore
	items    itemCreator
	ledger   ledgerStore
}

func NewNewItemRequestService(requests newItemRequestStore, itemsRepo itemCreator, ledgerRepo ledgerStore) *NewItemRequestService {
	return &NewItemRequestService{requests: requests, items: itemsRepo, ledger: ledgerRepo}
}

func (s *NewItemRequestService) CreateRequest(req models.CreateNewItemRequestRequest, requesterID int) (*models.NewItemRequest, error) {
	request := &models.NewItemRequest{
		Name:         req.Name,
		Unit:         req.Unit,
		Quantity:     req.Quantity,
		PricePerItem: req.PricePerItem,
		ReorderLevel: req.ReorderLevel,
		Status:       metadata.StatusDraft,
		RequesterID:  requesterID,
		Comment:      req.Comment,
	}

	if err := s.requests.PersistNewItemRequest(request); err != nil {
		return nil, err
	}

	return request, nil
}

func (s *NewItemRequestService) Submit(id int, actorID int) (*models.NewItemRequest, error) {
	request, err := s.requests.GetNewItemRequest(id)
	if err != nil {
		return nil, err
	}
	if request.RequesterID != actorID {
		return nil, fmt.Errorf("only the requester can submit a request")
	}
	if !request.Status.CanTransitionTo(metadata.StatusSubmitted) {
		return nil, custom_error.NewAlreadyProcessed("new item request", id)
	}

	if err := s.requests.UpdateStatus(id, request.Status, metadata.StatusSubmitted, nil, ""); err != nil {
		return nil, err
	}

	return s.requests.GetNewItemRequest(id)
}

func (s *NewItemRequestService) Reject(id int, approverID int, comment string) (*models.NewItemRequest, error) {
	request, err := s.requests.GetNewItemRequest(id)
	if err != nil {
		return nil, err
	}
	if !request.Status.CanTransitionTo(metadata.StatusRejected) {
		return nil, custom_error.NewAlreadyProcessed("new item request", id)
	}

	if err := s.requests.UpdateStatus(id, request.Status, metadata.StatusRejected, &approverID, comment); err != nil {
		return nil, err
	}

	return s.requests.GetNewItemRequest(id)
}

// Approve claims the request via its added_to_inventory flag, creates the
// inventory item and seeds the requested quantity through the ledger, all in
// one transaction. The fresh item starts at version zero, so there is no
// concurrent writer to conflict with; a duplicate approval is stopped by the
// flag before any row is created.
func (s *NewItemRequestService) Approve(id int, approverID int, comment string) (*models.NewItemRequest, *models.InventoryItem, error) {
	request, err := s.requests.GetNewItemRequest(id)
	if err != nil {
		return nil, nil, err
	}
	if request.Status != metadata.StatusSubmitted || request.AddedToInventory {
		return nil, nil, custom_error.NewAlreadyProcessed("new item request", id)
	}

	var item *models.InventoryItem

	err = s.requests.WithTransaction(func(tx *goqu.TxDatabase) error {
		if err := s.requests.MarkAddedToInventory(tx, id, approverID, comment); err != nil {
			return err
		}

		created, err := s.items.PersistItem(tx, items.CreateItemRequest{
			Name:         request.Name,
			Unit:         request.Unit,
			PricePerItem: request.PricePerItem,
			ReorderLevel: request.ReorderLevel,
		})
		if err != nil {
			return err
		}
		item = created

		reference := fmt.Sprintf("new-item-request:%d", id)
		result, err := s.ledger.ApplyDelta(tx, ledger.Mutation{
			ItemID:          created.ID,
			ExpectedVersion: 0,
			Delta:           request.Quantity,
			MovementType:    metadata.MovementAdjustmentCreate,
			Reason:          "new item request approved",
			ActorID:         approverID,
			ReferenceID:     &reference,
		})
		if err != nil {
			return err
		}
		item.QuantityOnHand = result.NewQuantity
		item.ItemVersion = result.NewVersion

		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	approved, err := s.requests.GetNewItemRequest(id)
	if err != nil {
		return nil, nil, err
	}

	return approved, item, nil
}
