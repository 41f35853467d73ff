package requests

import (
	"errors"
	"fmt"

	"stockroom/internal/inventory/ledger"
	custom_error "stockroom/pkg/errors"
	"stockroom/pkg/metadata"
	"stockroom/pkg/models"

	"github.com/doug-martin/goqu/v9"
	"github.com/google/uuid"
)

type requestStore interface {
	WithTransaction(fn func(tx *goqu.TxDatabase) error) error
	PersistRequest(request *models.ItemRequest) error
	GetRequest(id int) (*models.ItemRequest, error)
	UpdateStatus(id int, from, to metadata.Status, approverID *int, comment string) error
	MarkApproved(tx *goqu.TxDatabase, id int, approverID int, comment string) error
}

type itemReader interface {
	GetItem(id int) (*models.InventoryItem, error)
}

type ledgerStore interface {
	ApplyDelta(tx *goqu.TxDatabase, mut ledger.Mutation) (*ledger.Result, error)
}

type RequestService struct {
	requests requestStore
	items    itemReader
	ledger   ledgerStore
}

func NewRequestService(requests requestStore, items itemReader, ledgerRepo ledgerStore) *RequestService {
	return &RequestService{requests: requests, items: items, ledger: ledgerRepo}
}

func (s *RequestService) CreateRequest(req models.CreateItemRequestRequest, requesterID int) (*models.ItemRequest, error) {
	item, err := s.items.GetItem(req.ItemID)
	if err != nil {
		return nil, err
	}
	if item.IsArchived {
		return nil, custom_error.NewNotFound("inventory item", req.ItemID)
	}

	request := &models.ItemRequest{
		ItemID:      req.ItemID,
		ItemName:    item.Name,
		Quantity:    req.Quantity,
		Status:      metadata.StatusDraft,
		RequesterID: requesterID,
		Comment:     req.Comment,
		Reference:   uuid.NewString(),
	}

	if err := s.requests.PersistRequest(request); err != nil {
		return nil, err
	}

	return request, nil
}

func (s *RequestService) Submit(id int, actorID int) (*models.ItemRequest, error) {
	request, err := s.requests.GetRequest(id)
	if err != nil {
		return nil, err
	}
	if request.RequesterID != actorID {
		return nil, fmt.Errorf("only the requester can submit a request")
	}
	if !request.Status.CanTransitionTo(metadata.StatusSubmitted) {
		return nil, custom_error.NewAlreadyProcessed("item request", id)
	}

	if err := s.requests.UpdateStatus(id, request.Status, metadata.StatusSubmitted, nil, ""); err != nil {
		return nil, err
	}

	return s.requests.GetRequest(id)
}

func (s *RequestService) Cancel(id int, actorID int) (*models.ItemRequest, error) {
	request, err := s.requests.GetRequest(id)
	if err != nil {
		return nil, err
	}
	if request.RequesterID != actorID {
		return nil, fmt.Errorf("only the requester can cancel a request")
	}
	if !request.Status.CanTransitionTo(metadata.StatusCancelled) {
		return nil, custom_error.NewAlreadyProcessed("item request", id)
	}

	if err := s.requests.UpdateStatus(id, request.Status, metadata.StatusCancelled, nil, ""); err != nil {
		return nil, err
	}

	return s.requests.GetRequest(id)
}

func (s *RequestService) Reject(id int, approverID int, comment string) (*models.ItemRequest, error) {
	request, err := s.requests.GetRequest(id)
	if err != nil {
		return nil, err
	}
	if !request.Status.CanTransitionTo(metadata.StatusRejected) {
		return nil, custom_error.NewAlreadyProcessed("item request", id)
	}

	if err := s.requests.UpdateStatus(id, request.Status, metadata.StatusRejected, &approverID, comment); err != nil {
		return nil, err
	}

	return s.requests.GetRequest(id)
}

// Approve marks the request fulfilled and issues the outbound stock movement
// in one transaction. A second approval attempt hits the fulfilled flag and
// fails AlreadyProcessed before any stock moves. A concurrent quantity
// change on the item surfaces as VersionConflict; the service refetches the
// item and retries once.
func (s *RequestService) Approve(id int, approverID int, comment string) (*models.ItemRequest, *ledger.Result, error) {
	request, err := s.requests.GetRequest(id)
	if err != nil {
		return nil, nil, err
	}
	if request.Status != metadata.StatusSubmitted || request.Fulfilled {
		return nil, nil, custom_error.NewAlreadyProcessed("item request", id)
	}

	var result *ledger.Result

	for attempt := 0; attempt < 2; attempt++ {
		item, err := s.items.GetItem(request.ItemID)
		if err != nil {
			return nil, nil, err
		}

		err = s.requests.WithTransaction(func(tx *goqu.TxDatabase) error {
			if err := s.requests.MarkApproved(tx, id, approverID, comment); err != nil {
				return err
			}

			reference := request.Reference
			r, err := s.ledger.ApplyDelta(tx, ledger.Mutation{
				ItemID:          request.ItemID,
				ExpectedVersion: item.ItemVersion,
				Delta:           -request.Quantity,
				MovementType:    metadata.MovementOutbound,
				Reason:          "item request approved",
				ActorID:         approverID,
				ReferenceID:     &reference,
			})
			if err != nil {
				return err
			}
			result = r
			return nil
		})

		var conflictErr *custom_error.VersionConflictError
		if errors.As(err, &conflictErr) {
			continue
		}
		if err != nil {
			return nil, nil, err
		}

		approved, err := s.requests.GetRequest(id)
		if err != nil {
			return nil, nil, err
		}
		return approved, result, nil
	}

	return nil, nil, &custom_error.VersionConflictError{ItemID: request.ItemID}
}
