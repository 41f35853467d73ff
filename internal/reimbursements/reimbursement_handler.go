package reimbursements

import (
	"net/http"
	"strconv"

	"stockroom/internal/repository"
	"stockroom/pkg/auditlog"
	custom_error "stockroom/pkg/errors"
	"stockroom/pkg/metadata"
	"stockroom/pkg/models"
	"stockroom/pkg/roles"
	"stockroom/pkg/security"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type ReimbursementHandler struct {
	Repository ReimbursementStore
	AuditLog   *auditlog.Auditlog
}

type ReimbursementStore interface {
	PersistReimbursement(reimbursement *models.Reimbursement) error
	GetReimbursement(id int) (*models.Reimbursement, error)
	GetReimbursementsBy(conditions repository.QueryBuilder) ([]models.Reimbursement, error)
	UpdateStatus(id int, from, to metadata.Status, approverID *int, comment string) error
}

func NewHandler(r ReimbursementStore, a *auditlog.Auditlog) *ReimbursementHandler {
	return &ReimbursementHandler{
		Repository: r,
		AuditLog:   a,
	}
}

func (h *ReimbursementHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/reimbursements", security.Authorize(roles.Employee), h.CreateReimbursement)
	router.GET("/reimbursements", security.Authorize(roles.Employee), h.GetReimbursements)
	router.GET("/reimbursements/:id", security.Authorize(roles.Employee), h.GetReimbursement)
	router.POST("/reimbursements/:id/submit", security.Authorize(roles.Employee), h.SubmitReimbursement)
	router.POST("/reimbursements/:id/approve", security.Authorize(roles.Manager), h.ApproveReimbursement)
	router.POST("/reimbursements/:id/reject", security.Authorize(roles.Manager), h.RejectReimbursement)
}

func (h *ReimbursementHandler) CreateReimbursement(c *gin.Context) {
	var req models.CreateReimbursementRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload"})
		return
	}
	if req.Amount.LessThanOrEqual(decimal.Zero) {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Amount must be positive"})
		return
	}

	actorID, err := security.ActorID(c)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unable to identify user"})
		return
	}

	reimbursement := &models.Reimbursement{
		RequesterID:   actorID,
		Amount:        req.Amount,
		Description:   req.Description,
		AttachmentURL: req.AttachmentURL,
		Status:        metadata.StatusDraft,
	}

	if err := h.Repository.PersistReimbursement(reimbursement); err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to create reimbursement"})
		return
	}

	go h.AuditLog.Log("create", actorID, map[string]interface{}{"amount": reimbursement.Amount}, reimbursement)

	c.JSON(http.StatusCreated, reimbursement)
}

func (h *ReimbursementHandler) GetReimbursements(c *gin.Context) {
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

	reimbursements, err := h.Repository.GetReimbursementsBy(conditions)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch reimbursements"})
		return
	}

	c.JSON(http.StatusOK, reimbursements)
}

func (h *ReimbursementHandler) GetReimbursement(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid reimbursement ID"})
		return
	}

	reimbursement, err := h.Repository.GetReimbursement(id)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "Reimbursement not found"})
		return
	}

	actorID, _ := security.ActorID(c)
	if reimbursement.RequesterID != actorID && !roles.Role(security.ActorRole(c)).HasPermission(roles.Manager) {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Forbidden: insufficient permissions"})
		return
	}

	c.JSON(http.StatusOK, reimbursement)
}

func (h *ReimbursementHandler) SubmitReimbursement(c *gin.Context) {
	h.transition(c, metadata.StatusDraft, metadata.StatusSubmitted, "submit", true)
}

func (h *ReimbursementHandler) ApproveReimbursement(c *gin.Context) {
	h.transition(c, metadata.StatusSubmitted, metadata.StatusApproved, "approve", false)
}

func (h *ReimbursementHandler) RejectReimbursement(c *gin.Context) {
	h.transition(c, metadata.StatusSubmitted, metadata.StatusRejected, "reject", false)
}

func (h *ReimbursementHandler) transition(c *gin.Context, from, to metadata.Status, action string, requesterOnly bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid reimbursement ID"})
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

	reimbursement, err := h.Repository.GetReimbursement(id)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "Reimbursement not found"})
		return
	}

	if requesterOnly && reimbursement.RequesterID != actorID {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Forbidden: insufficient permissions"})
		return
	}
	if !reimbursement.Status.CanTransitionTo(to) {
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": "Reimbursement has already been processed"})
		return
	}

	var approverID *int
	if !requesterOnly {
		approverID = &actorID
	}

	if err := h.Repository.UpdateStatus(id, from, to, approverID, req.Comment); err != nil {
		switch err.(type) {
		case *custom_error.AlreadyProcessedError:
			c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": "Reimbursement has already been processed"})
			return
		default:
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to update reimbursement"})
			return
		}
	}

	updated, err := h.Repository.GetReimbursement(id)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch reimbursement"})
		return
	}

	go h.AuditLog.Log(action, actorID, map[string]interface{}{"status": updated.Status}, updated)

	c.JSON(http.StatusOK, updated)
}
