package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"med-field-force/internal/capture"
	"med-field-force/internal/models"
)

// attendanceRequest carries what the client captured, or the error code it
// got from the camera or geolocation instead
type attendanceRequest struct {
	Photo         string           `json:"photo"`
	PhotoError    string           `json:"photo_error"`
	Location      *models.Location `json:"location"`
	LocationError string           `json:"location_error"`
}

func (h *Handler) recordAttendance(c *fiber.Ctx) error {
	who, err := caller(c)
	if err != nil {
		return err
	}
	var req attendanceRequest
	if err := h.parseBody(c, &req); err != nil {
		return err
	}

	captured, err := capture.Resolve(c.UserContext(), h.captureTimeout,
		capture.DataURLPhoto{DataURL: req.Photo, Err: capture.ClientError(req.PhotoError)},
		capture.FixedLocation{Location: req.Location, Err: capture.ClientError(req.LocationError)},
	)
	if err != nil {
		return err
	}

	eventType := models.EventType(strings.ToUpper(c.Params("type")))
	event, err := h.attendance.RecordEvent(c.UserContext(), who.StaffID, eventType, captured)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(event)
}

func (h *Handler) attendanceStatus(c *fiber.Ctx) error {
	who, err := caller(c)
	if err != nil {
		return err
	}
	status, err := h.attendance.Status(c.UserContext(), who.StaffID)
	if err != nil {
		return err
	}
	return c.JSON(status)
}

// attendanceHistory returns the caller's events. Managers see everyone's,
// or one user's with ?user=.
func (h *Handler) attendanceHistory(c *fiber.Ctx) error {
	who, err := caller(c)
	if err != nil {
		return err
	}
	userID := who.StaffID
	if who.IsManager() {
		userID = c.Query("user")
	}
	events, err := h.attendance.History(c.UserContext(), userID)
	if err != nil {
		return err
	}
	return c.JSON(events)
}
