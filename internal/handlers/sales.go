package handlers

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"

	"med-field-force/internal/models"
	"med-field-force/internal/reports"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// visibleSales returns every record for managers and only the caller's own
// records for salesmen
func (h *Handler) visibleSales(c *fiber.Ctx) ([]models.SalesRecord, error) {
	who, err := caller(c)
	if err != nil {
		return nil, err
	}
	if who.IsManager() {
		if salesman := c.Query("salesman"); salesman != "" {
			return h.sales.FindByUser(c.UserContext(), salesman)
		}
		return h.sales.List(c.UserContext())
	}
	return h.sales.FindByUser(c.UserContext(), who.StaffID)
}

func (h *Handler) salesList(c *fiber.Ctx) error {
	records, err := h.visibleSales(c)
	if err != nil {
		return err
	}
	return c.JSON(records)
}

func (h *Handler) salesExport(c *fiber.Ctx) error {
	records, err := h.visibleSales(c)
	if err != nil {
		return err
	}
	data, err := reports.SalesWorkbook(records)
	if err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, xlsxContentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="sales-%s.xlsx"`, time.Now().Format("2006-01-02")))
	return c.Send(data)
}
