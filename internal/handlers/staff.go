package handlers

import (
	"github.com/gofiber/fiber/v2"

	"med-field-force/internal/models"
	"med-field-force/internal/services"
)

func (h *Handler) staffList(c *fiber.Ctx) error {
	staff, err := h.staff.List(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(staff)
}

// updateStaff replaces a profile. The body must carry the version it was
// read at.
func (h *Handler) updateStaff(c *fiber.Ctx) error {
	var update models.StaffMember
	if err := c.BodyParser(&update); err != nil {
		return badRequest("Invalid request body")
	}
	update.ID = c.Params("id")
	staff, err := h.staff.UpdateStaffProfile(c.UserContext(), &update)
	if err != nil {
		return err
	}
	return c.JSON(staff)
}

func (h *Handler) assignTask(c *fiber.Ctx) error {
	var req services.TaskRequest
	if err := h.parseBody(c, &req); err != nil {
		return err
	}
	task, err := h.staff.AssignTask(c.UserContext(), c.Params("id"), req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(task)
}

func (h *Handler) completeTask(c *fiber.Ctx) error {
	who, err := caller(c)
	if err != nil {
		return err
	}
	task, err := h.staff.CompleteTask(c.UserContext(), who.StaffID, c.Params("taskId"))
	if err != nil {
		return err
	}
	return c.JSON(task)
}
