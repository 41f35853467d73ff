package reports

import (
	"fmt"

	"stockroom/pkg/models"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

type ReportService struct {
	repository ReportRepository
}

func NewService(r ReportRepository) *ReportService {
	return &ReportService{repository: r}
}

// ValuationLine is one item's contribution to the inventory valuation.
// TotalValue is always quantity_on_hand * price_per_item.
type ValuationLine struct {
	ItemID         int             `json:"item_id"`
	Name           string          `json:"name"`
	Unit           string          `json:"unit"`
	QuantityOnHand int             `json:"quantity_on_hand"`
	PricePerItem   decimal.Decimal `json:"price_per_item"`
	TotalValue     decimal.Decimal `json:"total_value"`
	LowStock       bool            `json:"low_stock"`
}

type ValuationReport struct {
	Lines      []ValuationLine `json:"lines"`
	GrandTotal decimal.Decimal `json:"grand_total"`
}

func (s *ReportService) InventoryValuation() (*ValuationReport, error) {
	items, err := s.repository.GetActiveItems()
	if err != nil {
		return nil, err
	}

	report := &ValuationReport{
		Lines:      make([]ValuationLine, 0, len(items)),
		GrandTotal: decimal.Zero,
	}

	for _, item := range items {
		value := item.PricePerItem.Mul(decimal.NewFromInt(int64(item.QuantityOnHand)))
		report.Lines = append(report.Lines, ValuationLine{
			ItemID:         item.ID,
			Name:           item.Name,
			Unit:           item.Unit,
			QuantityOnHand: item.QuantityOnHand,
			PricePerItem:   item.PricePerItem,
			TotalValue:     value,
			LowStock:       item.LowStock(),
		})
		report.GrandTotal = report.GrandTotal.Add(value)
	}

	return report, nil
}

func (s *ReportService) LowStockItems() ([]models.InventoryItem, error) {
	return s.repository.GetLowStockItems()
}

var movementSheetHeadings = []string{
	"ID", "Item", "Unit", "Movement", "Delta", "Prev Qty", "New Qty", "Reason", "Reference", "Performed By", "Date",
}

// MovementWorkbook renders the filtered ledger as a spreadsheet.
func (s *ReportService) MovementWorkbook(filter MovementFilter) (*excelize.File, error) {
	rows, err := s.repository.GetMovements(filter)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	sheet := "Movements"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, fmt.Errorf("failed to prepare sheet: %w", err)
	}

	col := 'A'
	for _, heading := range movementSheetHeadings {
		if err := f.SetCellValue(sheet, string(col)+"1", heading); err != nil {
			return nil, fmt.Errorf("failed to write heading: %w", err)
		}
		col++
	}

	for i, row := range rows {
		reference := ""
		if row.ReferenceID != nil {
			reference = *row.ReferenceID
		}
		values := []interface{}{
			row.ID,
			row.ItemName,
			row.ItemUnit,
			row.MovementType.String(),
			row.QuantityDelta,
			row.PrevQuantity,
			row.NewQuantity,
			row.Reason,
			reference,
			row.PerformedBy,
			row.CreatedAt.Format("2006-01-02 15:04:05"),
		}

		col := 'A'
		for _, value := range values {
			cell := string(col) + fmt.Sprint(i+2)
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return nil, fmt.Errorf("failed to write cell %s: %w", cell, err)
			}
			col++
		}
	}

	return f, nil
}
