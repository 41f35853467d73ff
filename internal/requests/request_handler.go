package requests

import (
	"net/http"
	"strconv"

	"stockroom/internal/repository"
	"stockroom/pkg/auditlog"
	custom_error "stockroom/pkg/errors"
	"stockroom/pkg/models"
	"stockroom/pkg/roles"
	"stockroom/pkg/security"

	"github.com/gin-gonic/gin"
)

type RequestHandler struct {
	Repository *RequestRepository
	Service    *RequestService
	AuditLog   *auditlog.Auditlog
}

func NewRequestHandler(r *RequestRepository, s *RequestService, a *auditlog.Auditlog) *RequestHandler {
	return &RequestHandler{
		Repository: r,
		Service:    s,
		AuditLog:   a,
	}
}

func (h *RequestHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/requests", security.Authorize(roles.Employee), h.CreateRequest)
	router.GET("/requests", security.Authorize(roles.Employee), h.GetRequests)
	router.GET("/requests/:id", security.Authorize(roles.Employee), h.GetRequest)
	router.POST("/requests/:id/submit", security.Authorize(roles.Employee), h.SubmitRequest)
	router.POST("/requests/:id/cancel", security.Authorize(roles.Employee), h.CancelRequest)
	router.POST("/requests/:id/approve", security.Authorize(roles.Manager), h.ApproveRequest)
	router.POST("/requests/:id/reject", security.Authorize(roles.Manager), h.RejectRequest)
}

func (h *RequestHandler) CreateRequest(c *gin.Context) {
	var req models.CreateItemRequestRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload"})
		return
	}

	actorID, err := security.ActorID(c)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unable to identify user"})
		return
	}

	request, err := h.Service.CreateRequest(req, actorID)
	if err != nil {
		switch err.(type) {
		case *custom_error.NotFoundError:
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "Requested item not found or archived"})
			return
		default:
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to create request"})
			return
		}
	}

	go h.AuditLog.Log("create", actorID, map[string]interface{}{"item_id": request.ItemID, "quantity": request.Quantity}, request)

	c.JSON(http.StatusCreated, request)
}

func (h *RequestHandler) GetRequests(c *gin.Context) {
	var query struct {
		Status string `form:"status"`
		ItemID *int   `form:"item_id"`
	}

	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters"})
		return
	}

	actorID, err := security.ActorID(c)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unable to identify user"})
		return
	}

	conditions := repository.NewQueryBuilder()

	// Employees only see their own requests.
	if !roles.Role(security.ActorRole(c)).HasPermission(roles.Manager) {
		conditions.AddCondition("requester_id", actorID)
	}
	if query.Status != "" {
		conditions.AddCondition("status", query.Status)
	}
	if query.ItemID != nil {
		conditions.AddCondition("item_id", *query.ItemID)
	}

	requests, err := h.Repository.GetRequestsBy(conditions)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch requests"})
		return
	}

	c.JSON(http.StatusOK, requests)
}

func (h *RequestHandler) GetRequest(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request ID"})
		return
	}

	request, err := h.Repository.GetRequest(id)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "Request not found"})
		return
	}

	actorID, _ := security.ActorID(c)
	if request.RequesterID != actorID && !roles.Role(security.ActorRole(c)).HasPermission(roles.Manager) {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Forbidden: insufficient permissions"})
		return
	}

	c.JSON(http.StatusOK, request)
}

func (h *RequestHandler) SubmitRequest(c *gin.Context) {
	h.transition(c, func(id, actorID int, _ string) (*models.ItemRequest, error) {
		return h.Service.Submit(id, actorID)
	}, "submit")
}

func (h *RequestHandler) CancelRequest(c *gin.Context) {
	h.transition(c, func(id, actorID int, _ string) (*models.ItemRequest, error) {
		return h.Service.Cancel(id, actorID)
	}, "cancel")
}

func (h *RequestHandler) RejectRequest(c *gin.Context) {
	h.transition(c, func(id, actorID int, comment string) (*models.ItemRequest, error) {
		return h.Service.Reject(id, actorID, comment)
	}, "reject")
}

// ApproveRequest triggers the outbound stock movement; the response carries
// the new stock level so the approver sees a low-stock warning immediately.
func (h *RequestHandler) ApproveRequest(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request ID"})
		return
	}

	var req models.DecideRequestRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload"})
			return
		}
	}

	actorID, err := security.ActorID(c)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unable to identify user"})
		return
	}

	request, result, err := h.Service.Approve(id, actorID, req.Comment)
	if err != nil {
		respondWithWorkflowError(c, err)
		return
	}

	go h.AuditLog.Log("approve", actorID, map[string]interface{}{
		"quantity":     request.Quantity,
		"new_quantity": result.NewQuantity,
		"low_stock":    result.LowStock,
	}, request)

	c.JSON(http.StatusOK, gin.H{
		"request": request,
		"stock":   result,
	})
}

func (h *RequestHandler) transition(c *gin.Context, fn func(id, actorID int, comment string) (*models.ItemRequest, error), action string) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request ID"})
		return
	}

	var req models.DecideRequestRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload"})
			return
		}
	}

	actorID, err := security.ActorID(c)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unable to identify user"})
		return
	}

	request, err := fn(id, actorID, req.Comment)
	if err != nil {
		respondWithWorkflowError(c, err)
		return
	}

	go h.AuditLog.Log(action, actorID, map[string]interface{}{"status": request.Status}, request)

	c.JSON(http.StatusOK, request)
}

func respondWithWorkflowError(c *gin.Context, err error) {
	switch e := err.(type) {
	case *custom_error.NotFoundError:
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "Not found"})
	case *custom_error.AlreadyProcessedError:
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": "Request has already been processed"})
	case *custom_error.VersionConflictError:
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": "Stock changed concurrently, retry the approval"})
	case *custom_error.InsufficientStockError:
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{
			"error":     "Insufficient stock to fulfil the request",
			"available": e.Available,
		})
	default:
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to process request", "details": err.Error()})
	}
}
