package reports

import (
	"fmt"
	"net/http"
	"time"

	"stockroom/pkg/roles"
	"stockroom/pkg/security"

	"github.com/gin-gonic/gin"
)

type ReportHandler struct {
	Service *ReportService
}

func NewHandler(s *ReportService) *ReportHandler {
	return &ReportHandler{Service: s}
}

func (h *ReportHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/reports/valuation", security.Authorize(roles.Manager), h.GetValuation)
	router.GET("/reports/low-stock", security.Authorize(roles.Employee), h.GetLowStock)
	router.GET("/reports/movements/export", security.Authorize(roles.Manager), h.ExportMovements)
}

func (h *ReportHandler) GetValuation(c *gin.Context) {
	report, err := h.Service.InventoryValuation()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build valuation report"})
		return
	}

	c.JSON(http.StatusOK, report)
}

func (h *ReportHandler) GetLowStock(c *gin.Context) {
	items, err := h.Service.LowStockItems()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch low stock items"})
		return
	}

	c.JSON(http.StatusOK, items)
}

func (h *ReportHandler) ExportMovements(c *gin.Context) {
	var query struct {
		ItemID *int   `form:"item_id"`
		From   string `form:"from"`
		To     string `form:"to"`
	}

	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters"})
		return
	}

	filter := MovementFilter{ItemID: query.ItemID}

	if query.From != "" {
		from, err := time.Parse("2006-01-02", query.From)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid 'from' date, expected YYYY-MM-DD"})
			return
		}
		filter.From = &from
	}
	if query.To != "" {
		to, err := time.Parse("2006-01-02", query.To)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid 'to' date, expected YYYY-MM-DD"})
			return
		}
		// Inclusive end date.
		to = to.Add(24 * time.Hour)
		filter.To = &to
	}

	workbook, err := h.Service.MovementWorkbook(filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build movement export"})
		return
	}

	filename := fmt.Sprintf("stock-movements-%s.xlsx", time.Now().Format("2006-01-02"))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", "attachment; filename="+filename)

	if err := workbook.Write(c.Writer); err != nil {
		c.Status(http.StatusInternalServerError)
	}
}
