package newitems

import (
	"fmt"

	"stockroom/internal/repository"
	custom_error "stockroom/pkg/errors"
	"stockroom/pkg/metadata"
	"stockroom/pkg/models"

	"github.com/doug-martin/goqu/v9"
	"github.com/lib/pq"
)

type NewItemRequestRepository struct {
	repository *repository.Repository
}

func NewRepository(r *repository.Repository) *NewItemRequestRepository {
	return &NewItemRequestRepository{repository: r}
}

func (r *NewItemRequestRepository) WithTransaction(fn func(tx *goqu.TxDatabase) error) error {
	return repository.WithTransaction(r.repository.GoquDBWrapper, fn)
}

func (r *NewItemRequestRepository) PersistNewItemRequest(request *models.NewItemRequest) error {
	query := r.repository.GoquDBWrapper.Insert("new_item_requests").
		Rows(goqu.Record{
			"name":               request.Name,
			"unit":               request.Unit,
			"quantity":           request.Quantity,
			"price_per_item":     request.PricePerItem,
			"reorder_level":      request.ReorderLevel,
			"status":             request.Status.String(),
			"requester_id":       request.RequesterID,
			"comment":            request.Comment,
			"added_to_inventory": false,
		}).
		Returning("id")

	if _, err := query.Executor().ScanVal(&request.ID); err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			return custom_error.WrapDBError("New item request references missing user", string(pqErr.Code))
		}
		return fmt.Errorf("failed to insert new item request record: %w", err)
	}

	return nil
}

func (r *NewItemRequestRepository) GetNewItemRequest(id int) (*models.NewItemRequest, error) {
	var request models.NewItemRequest

	query := r.repository.GoquDBWrapper.
		Select("id", "name", "unit", "quantity", "price_per_item", "reorder_level", "status", "requester_id", "approver_id", "comment", "added_to_inventory", "created_at", "updated_at").
		From("new_item_requests").
		Where(goqu.Ex{"id": id})

	found, err := query.Executor().ScanStruct(&request)
	if err != nil {
		return nil, fmt.Errorf("unable to select new item request from database: %w", err)
	}
	if !found {
		return nil, custom_error.NewNotFound("new item request", id)
	}

	return &request, nil
}

func (r *NewItemRequestRepository) GetNewItemRequestsBy(conditions repository.QueryBuilder) ([]models.NewItemRequest, error) {
	var requests []models.NewItemRequest

	query := r.repository.GoquDBWrapper.
		Select("id", "name", "unit", "quantity", "price_per_item", "reorder_level", "status", "requester_id", "approver_id", "comment", "added_to_inventory", "created_at", "updated_at").
		From("new_item_requests").
		Where(conditions.BuildConditions(nil)).
		Order(goqu.I("id").Desc())

	if err := query.Executor().ScanStructs(&requests); err != nil {
		return nil, fmt.Errorf("unable to select new item requests from database: %w", err)
	}

	return requests, nil
}

func (r *NewItemRequestRepository) UpdateStatus(id int, from, to metadata.Status, approverID *int, comment string) error {
	record := goqu.Record{
		"status":     to.String(),
		"updated_at": goqu.L("now()"),
	}
	if approverID != nil {
		record["approver_id"] = *approverID
	}
	if comment != "" {
		record["comment"] = comment
	}

	query := r.repository.GoquDBWrapper.
		Update("new_item_requests").
		Set(record).
		Where(goqu.Ex{"id": id, "status": from.String()})

	result, err := query.Executor().Exec()
	if err != nil {
		return fmt.Errorf("failed to update new item request status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to retrieve rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return custom_error.NewAlreadyProcessed("new item request", id)
	}

	return nil
}

// MarkAddedToInventory is the idempotency gate of new-item approval: the
// conditional update claims the request exactly once, inside the same
// transaction that creates the item and seeds its stock.
func (r *NewItemRequestRepository) MarkAddedToInventory(tx *goqu.TxDatabase, id int, approverID int, comment string) error {
	record := goqu.Record{
		"status":             metadata.StatusApproved.String(),
		"approver_id":        approverID,
		"added_to_inventory": true,
		"updated_at":         goqu.L("now()"),
	}
	if comment != "" {
		record["comment"] = comment
	}

	query := tx.Update("new_item_requests").
		Set(record).
		Where(goqu.Ex{
			"id":                 id,
			"status":             metadata.StatusSubmitted.String(),
			"added_to_inventory": false,
		})

	result, err := query.Executor().Exec()
	if err != nil {
		return fmt.Errorf("failed to approve new item request: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to retrieve rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return custom_error.NewAlreadyProcessed("new item request", id)
	}

	return nil
}
