package newitems

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

type NewItemRequestHandler struct {
	Repository *NewItemRequestRepository
	Service    *NewItemRequestService
	AuditLog   *auditlog.Auditlog
}

func NewHandler(r *NewItemRequestRepository, s *NewItemRequestService, a *auditlog.Auditlog) *NewItemRequestHandler {
	return &NewItemRequestHandler{
		Repository: r,
		Service:    s,
		AuditLog:   a,
	}
}

func (h *NewItemRequestHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/new-item-requests", security.Authorize(roles.Employee), h.CreateRequest)
	router.GET("/new-item-requests", security.Authorize(roles.Employee), h.GetRequests)
	router.GET("/new-item-requests/:id", security.Authorize(roles.Employee), h.GetRequest)
	router.POST("/new-item-requests/:id/submit", security.Authorize(roles.Employee), h.SubmitRequest)
	router.POST("/new-item-requests/:id/approve", security.Authorize(roles.Admin), h.ApproveRequest)
	router.POST("/new-item-requests/:id/reject", security.Authorize(roles.Manager), h.RejectRequest)
}

func (h *NewItemRequestHandler) CreateRequest(c *gin.Context) {
	var req models.CreateNewItemRequestRequest

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
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to create new item request"})
		return
	}

	go h.AuditLog.Log("create", actorID, map[string]interface{}{"name": request.Name, "quantity": request.Quantity}, request)

	c.JSON(http.StatusCreated, request)
}

func (h *NewItemRequestHandler) GetRequests(c *gin.Context) {
	var query struct {
		Status string `form:"status"`
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

	if !roles.Role(security.ActorRole(c)).HasPermission(roles.Manager) {
		conditions.AddCondition("requester_id", actorID)
	}
	if query.Status != "" {
		conditions.AddCondition("status", query.Status)
	}

	requests, err := h.Repository.GetNewItemRequestsBy(conditions)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch new item requests"})
		return
	}

	c.JSON(http.StatusOK, requests)
}

func (h *NewItemRequestHandler) GetRequest(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request ID"})
		return
	}

	request, err := h.Repository.GetNewItemRequest(id)
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

func (h *NewItemRequestHandler) SubmitRequest(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request ID"})
		return
	}

	actorID, err := security.ActorID(c)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unable to identify user"})
		return
	}

	request, err := h.Service.Submit(id, actorID)
	if err != nil {
		respondWithWorkflowError(c, err)
		return
	}

	go h.AuditLog.Log("submit", actorID, map[string]interface{}{"status": request.Status}, request)

	c.JSON(http.StatusOK, request)
}

// ApproveRequest creates the inventory item and seeds its initial stock; the
// response includes the created item so the admin can link to it directly.
func (h *NewItemRequestHandler) ApproveRequest(c *gin.Context) {
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

	request, item, err := h.Service.Approve(id, actorID, req.Comment)
	if err != nil {
		respondWithWorkflowError(c, err)
		return
	}

	go h.AuditLog.Log("approve", actorID, map[string]interface{}{
		"item_id":  item.ID,
		"quantity": item.QuantityOnHand,
	}, request)

	c.JSON(http.StatusOK, gin.H{
		"request": request,
		"item":    item,
	})
}

func (h *NewItemRequestHandler) RejectRequest(c *gin.Context) {
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

	request, err := h.Service.Reject(id, actorID, req.Comment)
	if err != nil {
		respondWithWorkflowError(c, err)
		return
	}

	go h.AuditLog.Log("reject", actorID, map[string]interface{}{"status": request.Status}, request)

	c.JSON(http.StatusOK, request)
}

func respondWithWorkflowError(c *gin.Context, err error) {
	switch err.(type) {
	case *custom_error.NotFoundError:
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "Not found"})
	case *custom_error.AlreadyProcessedError:
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": "Request has already been processed"})
	case *custom_error.UniqueViolationError:
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": "Item with same name already registered"})
	default:
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to process request", "details": err.Error()})
	}
}
