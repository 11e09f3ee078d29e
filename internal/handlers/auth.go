package handlers

import (
	"github.com/gofiber/fiber/v2"

	"med-field-force/internal/services"
)

type loginRequest struct {
	Phone    string `json:"phone" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (h *Handler) register(c *fiber.Ctx) error {
	var req services.RegisterRequest
	if err := h.parseBody(c, &req); err != nil {
		return err
	}
	staff, err := h.auth.Register(c.UserContext(), req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(staff)
}

func (h *Handler) login(c *fiber.Ctx) error {
	var req loginRequest
	if err := h.parseBody(c, &req); err != nil {
		return err
	}
	result, err := h.auth.Login(c.UserContext(), req.Phone, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(result)
}
