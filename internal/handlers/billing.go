package handlers

import (
	"github.com/gofiber/fiber/v2"

	"med-field-force/internal/models"
	"med-field-force/internal/reports"
)

type addItemRequest struct {
	Shop         models.Shop `json:"shop"`
	MedicineName string      `json:"medicine_name" validate:"required"`
	Quantity     int         `json:"quantity"`
}

type quantityRequest struct {
	Quantity int `json:"quantity"`
}

type commitRequest struct {
	Location *models.Location `json:"location"`
}

type correctionRequest struct {
	ItemID string `json:"item_id" validate:"required"`
	// nil when omitted, so a missing quantity cannot zero the line
	Quantity *int `json:"quantity" validate:"required,min=0"`
}

func (h *Handler) draft(c *fiber.Ctx) error {
	who, err := caller(c)
	if err != nil {
		return err
	}
	view, err := h.billing.Draft(c.UserContext(), who.StaffID)
	if err != nil {
		return err
	}
	return c.JSON(view)
}

func (h *Handler) addLineItem(c *fiber.Ctx) error {
	who, err := caller(c)
	if err != nil {
		return err
	}
	var req addItemRequest
	if err := h.parseBody(c, &req); err != nil {
		return err
	}
	view, err := h.billing.AddLineItem(c.UserContext(), who.StaffID, req.Shop, req.MedicineName, req.Quantity)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(view)
}

func (h *Handler) setItemQuantity(c *fiber.Ctx) error {
	who, err := caller(c)
	if err != nil {
		return err
	}
	var req quantityRequest
	if err := h.parseBody(c, &req); err != nil {
		return err
	}
	draft, err := h.billing.Draft(c.UserContext(), who.StaffID)
	if err != nil {
		return err
	}
	view, err := h.billing.SetItemQuantity(c.UserContext(), who.StaffID, draft.ID, c.Params("itemId"), req.Quantity)
	if err != nil {
		return err
	}
	return c.JSON(view)
}

func (h *Handler) removeLineItem(c *fiber.Ctx) error {
	who, err := caller(c)
	if err != nil {
		return err
	}
	view, err := h.billing.RemoveLineItem(c.UserContext(), who.StaffID, c.Params("itemId"))
	if err != nil {
		return err
	}
	return c.JSON(view)
}

func (h *Handler) commitBill(c *fiber.Ctx) error {
	who, err := caller(c)
	if err != nil {
		return err
	}
	var req commitRequest
	if err := h.parseBody(c, &req); err != nil {
		return err
	}
	view, err := h.billing.CommitBill(c.UserContext(), who.StaffID, req.Location)
	if err != nil {
		return err
	}
	return c.JSON(view)
}

func (h *Handler) billHistory(c *fiber.Ctx) error {
	who, err := caller(c)
	if err != nil {
		return err
	}
	salesmanID := who.StaffID
	if who.IsManager() && c.Query("salesman") != "" {
		salesmanID = c.Query("salesman")
	}
	views, err := h.billing.History(c.UserContext(), salesmanID)
	if err != nil {
		return err
	}
	return c.JSON(views)
}

func (h *Handler) bill(c *fiber.Ctx) error {
	who, err := caller(c)
	if err != nil {
		return err
	}
	view, err := h.billing.Bill(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	if !who.IsManager() && view.SalesmanID != who.StaffID {
		return fiber.NewError(fiber.StatusForbidden, "Bill belongs to another salesman")
	}
	return c.JSON(view)
}

func (h *Handler) correctBill(c *fiber.Ctx) error {
	who, err := caller(c)
	if err != nil {
		return err
	}
	var req correctionRequest
	if err := h.parseBody(c, &req); err != nil {
		return err
	}
	record, err := h.billing.CorrectOrderedItem(c.UserContext(), who.StaffID, c.Params("id"), req.ItemID, *req.Quantity)
	if err != nil {
		return err
	}
	view, err := h.billing.Bill(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"adjustment": record, "bill": view})
}

func (h *Handler) invoice(c *fiber.Ctx) error {
	who, err := caller(c)
	if err != nil {
		return err
	}
	view, err := h.billing.Bill(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	if !who.IsManager() && view.SalesmanID != who.StaffID {
		return fiber.NewError(fiber.StatusForbidden, "Bill belongs to another salesman")
	}
	salesman, _ := h.staff.Get(c.UserContext(), view.SalesmanID)

	pdf, err := reports.BillInvoicePDF(view, salesman)
	if err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `inline; filename="invoice-`+view.ID+`.pdf"`)
	return c.Send(pdf)
}
