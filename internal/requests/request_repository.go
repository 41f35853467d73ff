package requests

import (
	"fmt"

	"stockroom/internal/repository"
	custom_error "stockroom/pkg/errors"
	"stockroom/pkg/metadata"
	"stockroom/pkg/models"

	"github.com/doug-martin/goqu/v9"
	"github.com/lib/pq"
)

type RequestRepository struct {
	repository *repository.Repository
}

func NewRepository(r *repository.Repository) *RequestRepository {
	return &RequestRepository{repository: r}
}

func (r *RequestRepository) WithTransaction(fn func(tx *goqu.TxDatabase) error) error {
	return repository.WithTransaction(r.repository.GoquDBWrapper, fn)
}

func (r *RequestRepository) PersistRequest(request *models.ItemRequest) error {
	query := r.repository.GoquDBWrapper.Insert("item_requests").
		Rows(goqu.Record{
			"item_id":      request.ItemID,
			"quantity":     request.Quantity,
			"status":       request.Status.String(),
			"requester_id": request.RequesterID,
			"comment":      request.Comment,
			"reference":    request.Reference,
			"fulfilled":    false,
		}).
		Returning("id")

	if _, err := query.Executor().ScanVal(&request.ID); err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			return custom_error.WrapDBError("Request references missing item or user", string(pqErr.Code))
		}
		return fmt.Errorf("failed to insert item request record: %w", err)
	}

	return nil
}

func (r *RequestRepository) GetRequest(id int) (*models.ItemRequest, error) {
	var request models.ItemRequest

	query := r.getRequestQuery().Where(goqu.Ex{"r.id": id})

	found, err := query.Executor().ScanStruct(&request)
	if err != nil {
		return nil, fmt.Errorf("unable to select item request from database: %w", err)
	}
	if !found {
		return nil, custom_error.NewNotFound("item request", id)
	}

	return &request, nil
}

func (r *RequestRepository) GetRequestsBy(conditions repository.QueryBuilder) ([]models.ItemRequest, error) {
	aliases := map[string]string{
		"status":       "r.status",
		"requester_id": "r.requester_id",
		"item_id":      "r.item_id",
	}

	var requests []models.ItemRequest

	query := r.getRequestQuery().
		Where(conditions.BuildConditions(aliases)).
		Order(goqu.I("r.id").Desc())

	if err := query.Executor().ScanStructs(&requests); err != nil {
		return nil, fmt.Errorf("unable to select item requests from database: %w", err)
	}

	return requests, nil
}

// UpdateStatus moves a request between workflow states. The WHERE on the
// current status makes concurrent state changes lose cleanly instead of
// overwriting each other.
func (r *RequestRepository) UpdateStatus(id int, from, to metadata.Status, approverID *int, comment string) error {
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
		Update("item_requests").
		Set(record).
		Where(goqu.Ex{"id": id, "status": from.String()})

	result, err := query.Executor().Exec()
	if err != nil {
		return fmt.Errorf("failed to update item request status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to retrieve rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return custom_error.NewAlreadyProcessed("item request", id)
	}

	return nil
}

// MarkApproved flips the request to approved and sets the fulfilled flag in
// the same statement. Zero rows means another approval got there first; the
// stock mutation sharing this transaction rolls back with it.
func (r *RequestRepository) MarkApproved(tx *goqu.TxDatabase, id int, approverID int, comment string) error {
	record := goqu.Record{
		"status":      metadata.StatusApproved.String(),
		"approver_id": approverID,
		"fulfilled":   true,
		"updated_at":  goqu.L("now()"),
	}
	if comment != "" {
		record["comment"] = comment
	}

	query := tx.Update("item_requests").
		Set(record).
		Where(goqu.Ex{
			"id":        id,
			"status":    metadata.StatusSubmitted.String(),
			"fulfilled": false,
		})

	result, err := query.Executor().Exec()
	if err != nil {
		return fmt.Errorf("failed to approve item request: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to retrieve rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return custom_error.NewAlreadyProcessed("item request", id)
	}

	return nil
}

func (r *RequestRepository) getRequestQuery() *goqu.SelectDataset {
	return r.repository.GoquDBWrapper.
		Select(
			goqu.I("r.id").As("id"),
			goqu.I("r.item_id").As("item_id"),
			goqu.I("i.name").As("item_name"),
			goqu.I("r.quantity").As("quantity"),
			goqu.I("r.status").As("status"),
			goqu.I("r.requester_id").As("requester_id"),
			goqu.I("r.approver_id").As("approver_id"),
			goqu.I("r.comment").As("comment"),
			goqu.I("r.reference").As("reference"),
			goqu.I("r.fulfilled").As("fulfilled"),
			goqu.I("r.created_at").As("created_at"),
			goqu.I("r.updated_at").As("updated_at"),
		).
		From(goqu.T("item_requests").As("r")).
		LeftJoin(
			goqu.T("inventory_items").As("i"),
			goqu.On(goqu.Ex{"r.item_id": goqu.I("i.id")}),
		)
}
