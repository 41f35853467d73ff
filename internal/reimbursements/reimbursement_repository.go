package reimbursements

import (
	"fmt"

	"stockroom/internal/repository"
	custom_error "stockroom/pkg/errors"
	"stockroom/pkg/metadata"
	"stockroom/pkg/models"

	"github.com/doug-martin/goqu/v9"
	"github.com/lib/pq"
)

type ReimbursementRepository struct {
	repository *repository.Repository
}

func NewRepository(r *repository.Repository) *ReimbursementRepository {
	return &ReimbursementRepository{repository: r}
}

func (r *ReimbursementRepository) PersistReimbursement(reimbursement *models.Reimbursement) error {
	query := r.repository.GoquDBWrapper.Insert("reimbursements").
		Rows(goqu.Record{
			"requester_id":   reimbursement.RequesterID,
			"amount":         reimbursement.Amount,
			"description":    reimbursement.Description,
			"attachment_url": reimbursement.AttachmentURL,
			"status":         reimbursement.Status.String(),
			"comment":        reimbursement.Comment,
		}).
		Returning("id")

	if _, err := query.Executor().ScanVal(&reimbursement.ID); err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			return custom_error.WrapDBError("Reimbursement references missing user", string(pqErr.Code))
		}
		return fmt.Errorf("failed to insert reimbursement record: %w", err)
	}

	return nil
}

func (r *ReimbursementRepository) GetReimbursement(id int) (*models.Reimbursement, error) {
	var reimbursement models.Reimbursement

	query := r.repository.GoquDBWrapper.
		Select("id", "requester_id", "approver_id", "amount", "description", "attachment_url", "status", "comment", "created_at", "updated_at").
		From("reimbursements").
		Where(goqu.Ex{"id": id})

	found, err := query.Executor().ScanStruct(&reimbursement)
	if err != nil {
		return nil, fmt.Errorf("unable to select reimbursement from database: %w", err)
	}
	if !found {
		return nil, custom_error.NewNotFound("reimbursement", id)
	}

	return &reimbursement, nil
}

func (r *ReimbursementRepository) GetReimbursementsBy(conditions repository.QueryBuilder) ([]models.Reimbursement, error) {
	var reimbursements []models.Reimbursement

	query := r.repository.GoquDBWrapper.
		Select("id", "requester_id", "approver_id", "amount", "description", "attachment_url", "status", "comment", "created_at", "updated_at").
		From("reimbursements").
		Where(conditions.BuildConditions(nil)).
		Order(goqu.I("id").Desc())

	if err := query.Executor().ScanStructs(&reimbursements); err != nil {
		return nil, fmt.Errorf("unable to select reimbursements from database: %w", err)
	}

	return reimbursements, nil
}

// UpdateStatus is conditional on the current status so two approvers deciding
// simultaneously cannot both win.
func (r *ReimbursementRepository) UpdateStatus(id int, from, to metadata.Status, approverID *int, comment string) error {
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
		Update("reimbursements").
		Set(record).
		Where(goqu.Ex{"id": id, "status": from.String()})

	result, err := query.Executor().Exec()
	if err != nil {
		return fmt.Errorf("failed to update reimbursement status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to retrieve rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return custom_error.NewAlreadyProcessed("reimbursement", id)
	}

	return nil
}
