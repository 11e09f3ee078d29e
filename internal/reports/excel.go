// Package reports renders sales data into downloadable documents
package reports

import (
	"bytes"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"med-field-force/internal/models"
)

const salesSheet = "Sales"

var salesHeaders = []string{
	"Date", "Salesman", "Shop", "Bill", "Kind", "Medicine", "Qty", "Unit Price", "Value", "Profit", "Delivery",
}

// SalesWorkbook writes records to a single-sheet workbook with a totals row
func SalesWorkbook(records []models.SalesRecord) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", salesSheet); err != nil {
		return nil, err
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#ADD8E6"}, Pattern: 1},
	})
	if err != nil {
		return nil, err
	}
	moneyStyle, err := f.NewStyle(&excelize.Style{NumFmt: 4})
	if err != nil {
		return nil, err
	}

	if err := f.SetSheetRow(salesSheet, "A1", &salesHeaders); err != nil {
		return nil, err
	}
	lastCol, _ := excelize.ColumnNumberToName(len(salesHeaders))
	f.SetCellStyle(salesSheet, "A1", lastCol+"1", headerStyle)

	qty := 0
	value, profit := decimal.Zero, decimal.Zero
	for i, r := range records {
		delivery := ""
		if r.DeliveryDate != nil {
			delivery = r.DeliveryDate.Format("2006-01-02")
		}
		row := []interface{}{
			r.Timestamp.Format("2006-01-02 15:04"),
			r.SalesmanName,
			r.ShopName,
			r.BillID,
			string(r.Kind),
			r.MedicineName,
			r.Quantity,
			r.UnitValue,
			r.Value,
			r.Profit,
			delivery,
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(salesSheet, cell, &row); err != nil {
			return nil, fmt.Errorf("failed to write row %d: %w", i+2, err)
		}

		qty += r.Quantity
		value = value.Add(decimal.NewFromFloat(r.Value))
		profit = profit.Add(decimal.NewFromFloat(r.Profit))
	}

	totalRow := len(records) + 2
	totals := []interface{}{"TOTAL", "", "", "", "", "", qty, "", value.Round(2).InexactFloat64(), profit.Round(2).InexactFloat64()}
	cell, _ := excelize.CoordinatesToCellName(1, totalRow)
	if err := f.SetSheetRow(salesSheet, cell, &totals); err != nil {
		return nil, err
	}
	f.SetCellStyle(salesSheet, cell, fmt.Sprintf("%s%d", lastCol, totalRow), headerStyle)
	f.SetCellStyle(salesSheet, "H2", fmt.Sprintf("J%d", totalRow), moneyStyle)
	f.SetColWidth(salesSheet, "A", "A", 18)
	f.SetColWidth(salesSheet, "B", "F", 20)

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
