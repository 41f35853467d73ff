package ledger

import (
	"fmt"

	"stockroom/internal/repository"
	custom_error "stockroom/pkg/errors"
	"stockroom/pkg/models"

	"github.com/doug-martin/goqu/v9"
)

type LedgerRepository struct {
	repository *repository.Repository
}

func NewRepository(r *repository.Repository) *LedgerRepository {
	return &LedgerRepository{repository: r}
}

func (r *LedgerRepository) WithTransaction(fn func(tx *goqu.TxDatabase) error) error {
	return repository.WithTransaction(r.repository.GoquDBWrapper, fn)
}

// ApplyDelta performs the version-checked quantity update and appends the
// ledger row. The WHERE clause carries the whole contract: the row must
// exist, be unarchived, hold the expected version and have enough stock for
// the delta. Zero rows updated means one of those failed; the follow-up read
// classifies which.
func (r *LedgerRepository) ApplyDelta(tx *goqu.TxDatabase, mut Mutation) (*Result, error) {
	var updated struct {
		QuantityOnHand int `db:"quantity_on_hand"`
		ItemVersion    int `db:"item_version"`
		ReorderLevel   int `db:"reorder_level"`
	}

	query := tx.Update("inventory_items").
		Set(goqu.Record{
			"quantity_on_hand": goqu.L("quantity_on_hand + ?", mut.Delta),
			"item_version":     goqu.L("item_version + 1"),
			"updated_at":       goqu.L("now()"),
		}).
		Where(
			goqu.C("id").Eq(mut.ItemID),
			goqu.C("item_version").Eq(mut.ExpectedVersion),
			goqu.C("is_archived").IsFalse(),
			goqu.L("quantity_on_hand + ?", mut.Delta).Gte(0),
		).
		Returning("quantity_on_hand", "item_version", "reorder_level")

	found, err := query.Executor().ScanStruct(&updated)
	if err != nil {
		return nil, fmt.Errorf("failed to update item quantity: %w", err)
	}
	if !found {
		return nil, r.classifyFailure(tx, mut)
	}

	prevQuantity := updated.QuantityOnHand - mut.Delta

	insert := tx.Insert("stock_transactions").
		Rows(goqu.Record{
			"item_id":        mut.ItemID,
			"movement_type":  mut.MovementType.String(),
			"quantity_delta": mut.Delta,
			"prev_quantity":  prevQuantity,
			"new_quantity":   updated.QuantityOnHand,
			"reason":         mut.Reason,
			"reference_id":   mut.ReferenceID,
			"performed_by":   mut.ActorID,
		})

	if _, err := insert.Executor().Exec(); err != nil {
		return nil, fmt.Errorf("failed to insert stock transaction record: %w", err)
	}

	return &Result{
		NewQuantity: updated.QuantityOnHand,
		NewVersion:  updated.ItemVersion,
		LowStock:    updated.QuantityOnHand <= updated.ReorderLevel,
	}, nil
}

// classifyFailure re-reads the row to decide which precondition rejected the
// conditional update. Runs inside the same transaction, so the snapshot it
// sees is consistent with the failed update.
func (r *LedgerRepository) classifyFailure(tx *goqu.TxDatabase, mut Mutation) error {
	var item struct {
		ItemVersion    int  `db:"item_version"`
		QuantityOnHand int  `db:"quantity_on_hand"`
		IsArchived     bool `db:"is_archived"`
	}

	found, err := tx.Select("item_version", "quantity_on_hand", "is_archived").
		From("inventory_items").
		Where(goqu.Ex{"id": mut.ItemID}).
		Executor().ScanStruct(&item)
	if err != nil {
		return fmt.Errorf("failed to inspect item after rejected update: %w", err)
	}

	if !found || item.IsArchived {
		return custom_error.NewNotFound("inventory item", mut.ItemID)
	}
	if item.ItemVersion != mut.ExpectedVersion {
		return &custom_error.VersionConflictError{
			ItemID:          mut.ItemID,
			ExpectedVersion: mut.ExpectedVersion,
			CurrentVersion:  item.ItemVersion,
		}
	}
	return &custom_error.InsufficientStockError{
		ItemID:    mut.ItemID,
		Available: item.QuantityOnHand,
		Requested: -mut.Delta,
	}
}

// GetTransactions returns the ledger for an item, newest first.
func (r *LedgerRepository) GetTransactions(itemID int) ([]models.StockTransaction, error) {
	var transactions []models.StockTransaction

	query := r.repository.GoquDBWrapper.
		Select("id", "item_id", "movement_type", "quantity_delta", "prev_quantity", "new_quantity", "reason", "reference_id", "performed_by", "created_at").
		From("stock_transactions").
		Where(goqu.Ex{"item_id": itemID}).
		Order(goqu.I("id").Desc())

	if err := query.Executor().ScanStructs(&transactions); err != nil {
		return nil, fmt.Errorf("unable to select stock transactions from database: %w", err)
	}

	return transactions, nil
}
