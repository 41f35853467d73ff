package items

import (
	"fmt"

	"stockroom/internal/repository"
	custom_error "stockroom/pkg/errors"
	"stockroom/pkg/models"

	"github.com/doug-martin/goqu/v9"
	"github.com/lib/pq"
)

type ItemRepository struct {
	repository *repository.Repository
}

func NewRepository(r *repository.Repository) *ItemRepository {
	return &ItemRepository{repository: r}
}

func (r *ItemRepository) WithTransaction(fn func(tx *goqu.TxDatabase) error) error {
	return repository.WithTransaction(r.repository.GoquDBWrapper, fn)
}

// PersistItem inserts the row at quantity zero and version zero. Initial
// stock is seeded afterwards through the ledger so the first transaction row
// is the adjustment_create entry.
func (r *ItemRepository) PersistItem(tx *goqu.TxDatabase, req CreateItemRequest) (*models.InventoryItem, error) {
	query := tx.Insert("inventory_items").
		Rows(goqu.Record{
			"name":             req.Name,
			"unit":             req.Unit,
			"quantity_on_hand": 0,
			"price_per_item":   req.PricePerItem,
			"reorder_level":    req.ReorderLevel,
			"item_version":     0,
			"is_archived":      false,
		}).
		Returning("id")

	item := models.InventoryItem{
		Name:         req.Name,
		Unit:         req.Unit,
		PricePerItem: req.PricePerItem,
		ReorderLevel: req.ReorderLevel,
	}

	if _, err := query.Executor().ScanVal(&item.ID); err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			return nil, custom_error.WrapDBError("Item with same name already registered", string(pqErr.Code))
		}
		return nil, fmt.Errorf("failed to insert inventory item record: %w", err)
	}

	return &item, nil
}

func (r *ItemRepository) GetItem(id int) (*models.InventoryItem, error) {
	var item models.InventoryItem

	query := r.repository.GoquDBWrapper.
		Select("id", "name", "unit", "quantity_on_hand", "price_per_item", "reorder_level", "item_version", "is_archived", "created_at", "updated_at").
		From("inventory_items").
		Where(goqu.Ex{"id": id})

	found, err := query.Executor().ScanStruct(&item)
	if err != nil {
		return nil, fmt.Errorf("unable to select inventory item from database: %w", err)
	}
	if !found {
		return nil, custom_error.NewNotFound("inventory item", id)
	}

	return &item, nil
}

func (r *ItemRepository) GetItemsBy(conditions repository.QueryBuilder) ([]models.InventoryItem, error) {
	aliases := map[string]string{
		"archived": "is_archived",
		"name":     "name",
	}

	var items []models.InventoryItem

	query := r.repository.GoquDBWrapper.
		Select("id", "name", "unit", "quantity_on_hand", "price_per_item", "reorder_level", "item_version", "is_archived", "created_at", "updated_at").
		From("inventory_items").
		Where(conditions.BuildConditions(aliases)).
		Order(goqu.I("id").Asc())

	if err := query.Executor().ScanStructs(&items); err != nil {
		return nil, fmt.Errorf("unable to select inventory items from database: %w", err)
	}

	return items, nil
}

func (r *ItemRepository) UpdateItemFields(patch *PatchItemRequest) (*models.InventoryItem, error) {
	updates, err := buildUpdateFields(patch)
	if err != nil {
		return nil, err
	}

	query := r.repository.GoquDBWrapper.
		Update("inventory_items").
		Set(updates).
		Where(goqu.Ex{"id": patch.ID, "is_archived": false})

	result, err := query.Executor().Exec()
	if err != nil {
		return nil, fmt.Errorf("failed to update inventory item: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return nil, custom_error.NewNotFound("inventory item", patch.ID)
	}

	return r.GetItem(patch.ID)
}

// SetArchived flags the item archived. The conditional WHERE makes a second
// archival attempt visible as zero rows affected.
func (r *ItemRepository) SetArchived(tx *goqu.TxDatabase, id int) error {
	query := tx.Update("inventory_items").
		Set(goqu.Record{
			"is_archived": true,
			"updated_at":  goqu.L("now()"),
		}).
		Where(goqu.Ex{"id": id, "is_archived": false})

	result, err := query.Executor().Exec()
	if err != nil {
		return fmt.Errorf("failed to archive inventory item: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to retrieve rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return custom_error.NewAlreadyProcessed("inventory item", id)
	}

	return nil
}

func buildUpdateFields(patch *PatchItemRequest) (goqu.Record, error) {
	updates := goqu.Record{}

	if patch.Name != nil {
		updates["name"] = *patch.Name
	}
	if patch.Unit != nil {
		updates["unit"] = *patch.Unit
	}
	if patch.PricePerItem != nil {
		updates["price_per_item"] = *patch.PricePerItem
	}
	if patch.ReorderLevel != nil {
		updates["reorder_level"] = *patch.ReorderLevel
	}

	if len(updates) == 0 {
		return nil, fmt.Errorf("no fields to update")
	}
	updates["updated_at"] = goqu.L("now()")

	return updates, nil
}
