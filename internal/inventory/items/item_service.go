package items

import (
	"errors"
	"fmt"

	"stockroom/internal/inventory/ledger"
	custom_error "stockroom/pkg/errors"
	"stockroom/pkg/metadata"
	"stockroom/pkg/models"

	"github.com/doug-martin/goqu/v9"
)

type itemStore interface {
	WithTransaction(fn func(tx *goqu.TxDatabase) error) error
	PersistItem(tx *goqu.TxDatabase, req CreateItemRequest) (*models.InventoryItem, error)
	GetItem(id int) (*models.InventoryItem, error)
	SetArchived(tx *goqu.TxDatabase, id int) error
}

type ledgerStore interface {
	ApplyDelta(tx *goqu.TxDatabase, mut ledger.Mutation) (*ledger.Result, error)
}

type ItemService struct {
	items  itemStore
	ledger ledgerStore
}

func NewItemService(items itemStore, ledgerRepo ledgerStore) *ItemService {
	return &ItemService{items: items, ledger: ledgerRepo}
}

// CreateItem registers the item and seeds its initial stock in one
// transaction, so the first ledger row is the adjustment_create entry with
// prev_quantity zero.
func (s *ItemService) CreateItem(req CreateItemRequest, actorID int) (*models.InventoryItem, error) {
	var item *models.InventoryItem

	err := s.items.WithTransaction(func(tx *goqu.TxDatabase) error {
		created, err := s.items.PersistItem(tx, req)
		if err != nil {
			return err
		}
		item = created

		if req.InitialQuantity > 0 {
			result, err := s.ledger.ApplyDelta(tx, ledger.Mutation{
				ItemID:          created.ID,
				ExpectedVersion: 0,
				Delta:           req.InitialQuantity,
				MovementType:    metadata.MovementAdjustmentCreate,
				Reason:          "initial stock",
				ActorID:         actorID,
			})
			if err != nil {
				return fmt.Errorf("failed to seed initial stock: %w", err)
			}
			item.QuantityOnHand = result.NewQuantity
			item.ItemVersion = result.NewVersion
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return item, nil
}

// ArchiveItem writes off any remaining stock through the ledger and then
// flags the row archived, all in one transaction. A concurrent quantity
// change surfaces as VersionConflict; the service refetches and retries once.
func (s *ItemService) ArchiveItem(itemID int, actorID int) (*models.InventoryItem, error) {
	for attempt := 0; attempt < 2; attempt++ {
		item, err := s.items.GetItem(itemID)
		if err != nil {
			return nil, err
		}
		if item.IsArchived {
			return nil, custom_error.NewAlreadyProcessed("inventory item", itemID)
		}

		err = s.items.WithTransaction(func(tx *goqu.TxDatabase) error {
			if item.QuantityOnHand > 0 {
				if _, err := s.ledger.ApplyDelta(tx, ledger.Mutation{
					ItemID:          itemID,
					ExpectedVersion: item.ItemVersion,
					Delta:           -item.QuantityOnHand,
					MovementType:    metadata.MovementAdjustmentArchive,
					Reason:          "item archived",
					ActorID:         actorID,
				}); err != nil {
					return err
				}
			}

			return s.items.SetArchived(tx, itemID)
		})

		var conflictErr *custom_error.VersionConflictError
		if errors.As(err, &conflictErr) {
			continue
		}
		if err != nil {
			return nil, err
		}

		return s.items.GetItem(itemID)
	}

	return nil, &custom_error.VersionConflictError{ItemID: itemID}
}
