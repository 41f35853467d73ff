package reports

import (
	"fmt"
	"time"

	"stockroom/internal/repository"
	"stockroom/pkg/models"

	"github.com/doug-martin/goqu/v9"
)

type ReportRepository interface {
	GetActiveItems() ([]models.InventoryItem, error)
	GetLowStockItems() ([]models.InventoryItem, error)
	GetMovements(filter MovementFilter) ([]MovementRow, error)
}

// MovementRow is a ledger entry joined with the item it belongs to,
// as rendered in the movement export.
type MovementRow struct {
	models.StockTransaction
	ItemName string `json:"item_name" db:"item_name"`
	ItemUnit string `json:"item_unit" db:"item_unit"`
}

type MovementFilter struct {
	ItemID *int
	From   *time.Time
	To     *time.Time
}

type reportRepositoryImpl struct {
	repository *repository.Repository
}

func NewRepository(r *repository.Repository) ReportRepository {
	return &reportRepositoryImpl{repository: r}
}

func (r *reportRepositoryImpl) GetActiveItems() ([]models.InventoryItem, error) {
	var items []models.InventoryItem
	query := r.repository.GoquDBWrapper.
		Select("id", "name", "unit", "quantity_on_hand", "price_per_item", "reorder_level", "item_version", "is_archived", "created_at", "updated_at").
		From("inventory_items").
		Where(goqu.Ex{"is_archived": false}).
		Order(goqu.I("name").Asc())

	if err := query.Executor().ScanStructs(&items); err != nil {
		return nil, fmt.Errorf("error executing SQL statement: %w", err)
	}

	return items, nil
}

func (r *reportRepositoryImpl) GetLowStockItems() ([]models.InventoryItem, error) {
	var items []models.InventoryItem
	query := r.repository.GoquDBWrapper.
		Select("id", "name", "unit", "quantity_on_hand", "price_per_item", "reorder_level", "item_version", "is_archived", "created_at", "updated_at").
		From("inventory_items").
		Where(
			goqu.Ex{"is_archived": false},
			goqu.I("quantity_on_hand").Lte(goqu.I("reorder_level")),
		).
		Order(goqu.I("quantity_on_hand").Asc())

	if err := query.Executor().ScanStructs(&items); err != nil {
		return nil, fmt.Errorf("error executing SQL statement: %w", err)
	}

	return items, nil
}

func (r *reportRepositoryImpl) GetMovements(filter MovementFilter) ([]MovementRow, error) {
	var rows []MovementRow
	query := r.repository.GoquDBWrapper.
		Select(
			goqu.I("t.id"),
			goqu.I("t.item_id"),
			goqu.I("t.movement_type"),
			goqu.I("t.quantity_delta"),
			goqu.I("t.prev_quantity"),
			goqu.I("t.new_quantity"),
			goqu.I("t.reason"),
			goqu.I("t.reference_id"),
			goqu.I("t.performed_by"),
			goqu.I("t.created_at"),
			goqu.I("i.name").As("item_name"),
			goqu.I("i.unit").As("item_unit"),
		).
		From(goqu.T("stock_transactions").As("t")).
		LeftJoin(
			goqu.T("inventory_items").As("i"),
			goqu.On(goqu.Ex{"i.id": goqu.I("t.item_id")}),
		).
		Order(goqu.I("t.created_at").Asc())

	if filter.ItemID != nil {
		query = query.Where(goqu.Ex{"t.item_id": *filter.ItemID})
	}
	if filter.From != nil {
		query = query.Where(goqu.I("t.created_at").Gte(*filter.From))
	}
	if filter.To != nil {
		query = query.Where(goqu.I("t.created_at").Lt(*filter.To))
	}

	if err := query.Executor().ScanStructs(&rows); err != nil {
		return nil, fmt.Errorf("error executing SQL statement: %w", err)
	}

	return rows, nil
}
