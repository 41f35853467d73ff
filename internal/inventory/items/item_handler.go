package items

import (
	"net/http"
	"strconv"

	"stockroom/internal/inventory/ledger"
	"stockroom/internal/repository"
	"stockroom/pkg/auditlog"
	custom_error "stockroom/pkg/errors"
	"stockroom/pkg/metadata"
	"stockroom/pkg/models"
	"stockroom/pkg/roles"
	"stockroom/pkg/security"

	"github.com/gin-gonic/gin"
)

type ItemHandler struct {
	ItemRepository   *ItemRepository
	ItemService      *ItemService
	LedgerService    *ledger.Service
	LedgerRepository *ledger.LedgerRepository
	AuditLog         *auditlog.Auditlog
}

func NewItemHandler(ir *ItemRepository, is *ItemService, ls *ledger.Service, lr *ledger.LedgerRepository, a *auditlog.Auditlog) *ItemHandler {
	return &ItemHandler{
		ItemRepository:   ir,
		ItemService:      is,
		LedgerService:    ls,
		LedgerRepository: lr,
		AuditLog:         a,
	}
}

func (h *ItemHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/items", security.Authorize(roles.Admin), h.CreateItem)
	router.GET("/items", security.Authorize(roles.Employee), h.GetItems)
	router.GET("/items/:id", security.Authorize(roles.Employee), h.GetItem)
	router.PATCH("/items/:id", security.Authorize(roles.Manager), h.UpdateItem)
	router.POST("/items/:id/adjustments", security.Authorize(roles.Manager), h.AdjustQuantity)
	router.POST("/items/:id/archive", security.Authorize(roles.Admin), h.ArchiveItem)
	router.GET("/items/:id/transactions", security.Authorize(roles.Employee), h.GetTransactions)
}

func (h *ItemHandler) CreateItem(c *gin.Context) {
	var req CreateItemRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload"})
		return
	}

	actorID, err := security.ActorID(c)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unable to identify user"})
		return
	}

	item, err := h.ItemService.CreateItem(req, actorID)
	if err != nil {
		switch err.(type) {
		case *custom_error.UniqueViolationError:
			c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": "Item with same name already registered"})
			return
		default:
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to create item"})
			return
		}
	}

	go h.AuditLog.Log(
		"create",
		actorID,
		map[string]interface{}{
			"quantity": item.QuantityOnHand,
			"msg":      "Register item in inventory",
		},
		item,
	)

	c.JSON(http.StatusCreated, item)
}

func (h *ItemHandler) GetItems(c *gin.Context) {
	var query struct {
		Archived *bool  `form:"archived"`
		Name     string `form:"name"`
	}

	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters"})
		return
	}

	conditions := repository.NewQueryBuilder()

	if query.Archived != nil {
		conditions.AddCondition("archived", *query.Archived)
	} else {
		conditions.AddCondition("archived", false)
	}
	if query.Name != "" {
		conditions.AddCondition("name", query.Name)
	}

	items, err := h.ItemRepository.GetItemsBy(conditions)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch inventory items"})
		return
	}

	c.JSON(http.StatusOK, items)
}

func (h *ItemHandler) GetItem(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid item ID"})
		return
	}

	item, err := h.ItemRepository.GetItem(id)
	if err != nil {
		switch err.(type) {
		case *custom_error.NotFoundError:
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "Item not found"})
			return
		default:
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch item"})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"item":      item,
		"low_stock": item.LowStock(),
	})
}

func (h *ItemHandler) UpdateItem(c *gin.Context) {
	var patch PatchItemRequest

	if err := c.ShouldBindUri(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid URI parameters", "details": err.Error()})
		return
	}
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload"})
		return
	}

	item, err := h.ItemRepository.UpdateItemFields(&patch)
	if err != nil {
		switch err.(type) {
		case *custom_error.NotFoundError:
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "Item not found"})
			return
		default:
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Unable to update item", "details": err.Error()})
			return
		}
	}

	actorID, _ := security.ActorID(c)
	go h.AuditLog.Log("update", actorID, map[string]interface{}{"msg": "Update item fields"}, item)

	c.JSON(http.StatusOK, item)
}

// AdjustQuantity applies a manual correction through the stock ledger. The
// client supplies the version it last saw; stale versions get a 409 and must
// refetch before retrying.
func (h *ItemHandler) AdjustQuantity(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid item ID"})
		return
	}

	var req AdjustmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload"})
		return
	}

	actorID, err := security.ActorID(c)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unable to identify user"})
		return
	}

	result, err := h.LedgerService.ApplyStockDelta(ledger.Mutation{
		ItemID:          id,
		ExpectedVersion: req.ExpectedVersion,
		Delta:           req.Delta,
		MovementType:    metadata.MovementAdjustmentEdit,
		Reason:          req.Reason,
		ActorID:         actorID,
	})
	if err != nil {
		respondWithLedgerError(c, err)
		return
	}

	go h.AuditLog.Log(
		"adjust",
		actorID,
		map[string]interface{}{
			"delta":        req.Delta,
			"new_quantity": result.NewQuantity,
			"reason":       req.Reason,
		},
		&models.InventoryItem{ID: id},
	)

	c.JSON(http.StatusOK, result)
}

func (h *ItemHandler) ArchiveItem(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid item ID"})
		return
	}

	actorID, err := security.ActorID(c)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unable to identify user"})
		return
	}

	item, err := h.ItemService.ArchiveItem(id, actorID)
	if err != nil {
		respondWithLedgerError(c, err)
		return
	}

	go h.AuditLog.Log("archive", actorID, map[string]interface{}{"msg": "Archive item, remaining stock written off"}, item)

	c.JSON(http.StatusOK, item)
}

func (h *ItemHandler) GetTransactions(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid item ID"})
		return
	}

	if _, err := h.ItemRepository.GetItem(id); err != nil {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "Item not found"})
		return
	}

	transactions, err := h.LedgerRepository.GetTransactions(id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch stock transactions"})
		return
	}

	c.JSON(http.StatusOK, transactions)
}

func respondWithLedgerError(c *gin.Context, err error) {
	switch e := err.(type) {
	case *custom_error.NotFoundError:
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "Item not found or archived"})
	case *custom_error.VersionConflictError:
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{
			"error":           "Item was modified by another user, refetch and retry",
			"current_version": e.CurrentVersion,
		})
	case *custom_error.InsufficientStockError:
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{
			"error":     "Insufficient stock for requested change",
			"available": e.Available,
		})
	case *custom_error.AlreadyProcessedError:
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": "Already processed"})
	default:
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to apply stock change", "details": err.Error()})
	}
}
