package reports

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/jung-kurt/gofpdf"

	"med-field-force/internal/models"
	"med-field-force/internal/services"
)

const (
	companyName    = "Elder Laboratories"
	companyAddress = "Field Sales Division, Mumbai, Maharashtra"
)

// ErrBillNotOrdered is returned when an invoice is requested for a draft
var ErrBillNotOrdered = errors.New("invoice is only available for ordered bills")

var invoiceColumns = []struct {
	title string
	width float64
	align string
}{
	{"#", 10, "C"},
	{"Medicine", 80, "L"},
	{"Qty", 20, "R"},
	{"Price", 25, "R"},
	{"Amount", 30, "R"},
	{"Profit", 25, "R"},
}

type invoicePdf struct {
	*gofpdf.Fpdf
}

// BillInvoicePDF renders an ordered bill as an A4 invoice
func BillInvoicePDF(view *services.BillView, salesman *models.StaffMember) ([]byte, error) {
	if view == nil || view.Status != models.BillOrdered || view.OrderedAt == nil {
		return nil, ErrBillNotOrdered
	}

	pdf := invoicePdf{gofpdf.New("P", "mm", "A4", "")}
	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont("Arial", "I", 8)
		pdf.CellFormat(0, 10, fmt.Sprintf("Page %d", pdf.PageNo()), "", 0, "R", false, 0, "")
	})
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	title := "INVOICE"
	titleWidth := pdf.GetStringWidth(title)
	pdf.SetXY(200-titleWidth, 10)
	pdf.Cell(titleWidth, 10, title)

	pdf.SetXY(10, 10)
	pdf.Cell(100, 10, companyName)
	pdf.Ln(8)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(100, 6, companyAddress)
	pdf.Ln(12)

	startY := pdf.GetY()
	pdf.SetFont("Arial", "B", 11)
	pdf.Cell(95, 8, "Bill # : "+view.ID)
	pdf.SetXY(120, startY)
	pdf.Cell(80, 8, "Ordered : "+view.OrderedAt.Format("02-01-2006 15:04"))
	pdf.Ln(7)
	pdf.SetFont("Arial", "", 10)
	if view.DeliveryDate != nil {
		pdf.SetX(120)
		pdf.Cell(80, 6, "Delivery : "+view.DeliveryDate.Format("02-01-2006"))
		pdf.Ln(8)
	}

	y := pdf.GetY()
	pdf.SetFont("Arial", "B", 11)
	pdf.Cell(95, 8, "Shop:")
	pdf.SetXY(120, y)
	pdf.Cell(80, 8, "Salesman:")
	pdf.Ln(8)
	pdf.SetFont("Arial", "", 10)
	y = pdf.GetY()
	pdf.MultiCell(95, 6, shopBlock(view.Shop), "", "L", false)
	pdf.SetXY(120, y)
	salesmanText := view.SalesmanID
	if salesman != nil {
		salesmanText = fmt.Sprintf("%s\n%s\nMobile No: %s", salesman.Name, salesman.EmployeeID, salesman.Phone)
	}
	pdf.MultiCell(80, 6, salesmanText, "", "L", false)
	pdf.Ln(10)

	pdf.tableHeader()
	_, pageHeight := pdf.GetPageSize()
	_, _, _, marginBottom := pdf.GetMargins()
	pdf.SetFont("Arial", "", 10)
	for i, line := range view.Lines {
		if pdf.GetY()+8 > pageHeight-marginBottom {
			pdf.AddPage()
			pdf.tableHeader()
			pdf.SetFont("Arial", "", 10)
		}
		cells := []string{
			fmt.Sprintf("%d", i+1),
			line.MedicineName,
			fmt.Sprintf("%d", line.Quantity),
			fmt.Sprintf("%.2f", line.Price),
			fmt.Sprintf("%.2f", line.Value),
			fmt.Sprintf("%.2f", line.Profit),
		}
		for c, col := range invoiceColumns {
			pdf.CellFormat(col.width, 8, cells[c], "1", 0, col.align, false, 0, "")
		}
		pdf.Ln(-1)
	}

	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(110, 8, fmt.Sprintf("Total (%d items)", view.Totals.Items), "1", 0, "R", false, 0, "")
	pdf.CellFormat(25, 8, "", "1", 0, "R", false, 0, "")
	pdf.CellFormat(30, 8, fmt.Sprintf("%.2f", view.Totals.Value), "1", 0, "R", false, 0, "")
	pdf.CellFormat(25, 8, fmt.Sprintf("%.2f", view.Totals.Profit), "1", 1, "R", false, 0, "")

	pdf.Ln(12)
	pdf.SetFont("Arial", "I", 8)
	pdf.CellFormat(190, 10, "Amounts include corrections recorded after ordering.", "0", 1, "C", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (pdf invoicePdf) tableHeader() {
	pdf.SetFont("Arial", "B", 10)
	pdf.SetFillColor(173, 216, 230)
	pdf.SetDrawColor(200, 200, 200)
	for _, col := range invoiceColumns {
		pdf.CellFormat(col.width, 8, col.title, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)
}

func shopBlock(shop models.Shop) string {
	text := "Shop Name: " + shop.Name
	if shop.Address != "" {
		text += "\n" + shop.Address
	}
	if shop.Mobile != "" {
		text += "\nMobile No: " + shop.Mobile
	}
	return text
}
