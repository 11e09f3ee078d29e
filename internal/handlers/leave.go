package handlers

import (
	"github.com/gofiber/fiber/v2"

	"med-field-force/internal/models"
	"med-field-force/internal/services"
)

type decisionRequest struct {
	Status models.LeaveStatus `json:"status" validate:"required"`
}

func (h *Handler) leaveList(c *fiber.Ctx) error {
	who, err := caller(c)
	if err != nil {
		return err
	}
	var leaves []models.LeaveRequest
	if who.IsManager() {
		leaves, err = h.leaves.ListAll(c.UserContext())
	} else {
		leaves, err = h.leaves.ListByUser(c.UserContext(), who.StaffID)
	}
	if err != nil {
		return err
	}
	return c.JSON(leaves)
}

func (h *Handler) applyLeave(c *fiber.Ctx) error {
	who, err := caller(c)
	if err != nil {
		return err
	}
	var req services.LeaveRequestInput
	if err := h.parseBody(c, &req); err != nil {
		return err
	}
	leave, err := h.leaves.Apply(c.UserContext(), who.StaffID, req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(leave)
}

func (h *Handler) decideLeave(c *fiber.Ctx) error {
	who, err := caller(c)
	if err != nil {
		return err
	}
	var req decisionRequest
	if err := h.parseBody(c, &req); err != nil {
		return err
	}
	leave, err := h.leaves.Decide(c.UserContext(), c.Params("id"), who.StaffID, req.Status)
	if err != nil {
		return err
	}
	return c.JSON(leave)
}
