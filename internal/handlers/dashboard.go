package handlers

import (
	"github.com/gofiber/fiber/v2"
)

func (h *Handler) dashboardView(c *fiber.Ctx) error {
	who, err := caller(c)
	if err != nil {
		return err
	}
	if who.IsManager() {
		dash, err := h.dashboard.Manager(c.UserContext())
		if err != nil {
			return err
		}
		return c.JSON(dash)
	}
	dash, err := h.dashboard.Salesman(c.UserContext(), who.StaffID)
	if err != nil {
		return err
	}
	return c.JSON(dash)
}

// insightsView returns the team summary for managers and coaching tips for
// salesmen. Generation failures come back as fallback text, never as errors.
func (h *Handler) insightsView(c *fiber.Ctx) error {
	who, err := caller(c)
	if err != nil {
		return err
	}
	if who.IsManager() {
		return c.JSON(fiber.Map{"summary": h.insights.ManagerSummary(c.UserContext())})
	}
	return c.JSON(fiber.Map{"insights": h.insights.PerformanceInsights(c.UserContext(), who.StaffID)})
}
