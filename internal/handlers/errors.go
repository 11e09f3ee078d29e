package handlers

import (
	"errors"
	"log"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"med-field-force/internal/capture"
	"med-field-force/internal/reports"
	"med-field-force/internal/repository"
	"med-field-force/internal/services"
)

// Error is the JSON body of every failed request
type Error struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	return e.Message
}

func badRequest(m string) *Error {
	return &Error{Status: fiber.StatusBadRequest, Code: "bad-request", Message: m}
}

var (
	badRequestErrors = []error{
		services.ErrMissingShopName, services.ErrUnknownMedicine, services.ErrInvalidQuantity,
		services.ErrEmptyBill, services.ErrMissingTaskTitle, services.ErrInvalidLeaveType,
		services.ErrInvalidLeaveDates, services.ErrMissingLeaveReason, services.ErrInvalidDecision,
		services.ErrInvalidPhone, services.ErrWeakPassword,
	}
	conflictErrors = []error{
		services.ErrShopMismatch, services.ErrBillOrdered, services.ErrBillNotOrdered,
		services.ErrVersionConflict, services.ErrLeaveDecided, repository.ErrAccountExists,
		reports.ErrBillNotOrdered,
	}
	notFoundErrors = []error{
		repository.ErrNotFound, services.ErrItemNotFound, services.ErrTaskNotFound,
	}
)

func matches(err error, targets []error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// toError maps a service error to its HTTP status and code
func toError(err error) *Error {
	var (
		apiErr     *Error
		fiberErr   *fiber.Error
		validation validator.ValidationErrors
		missingCap *services.MissingCaptureError
		missingLoc *services.MissingLocationError
		outside    *services.OutsideWindowError
		transition *services.InvalidTransitionError
		locked     *services.LoginLockedError
		corrupted  *repository.CorruptedStateError
	)

	switch {
	case errors.As(err, &apiErr):
		return apiErr
	case errors.As(err, &fiberErr):
		return &Error{Status: fiberErr.Code, Code: codeForStatus(fiberErr.Code), Message: fiberErr.Message}
	case errors.As(err, &validation):
		return &Error{Status: fiber.StatusBadRequest, Code: "validation-failed", Message: validation.Error()}
	case errors.As(err, &missingCap):
		return &Error{Status: fiber.StatusBadRequest, Code: "missing-photo", Message: err.Error()}
	case errors.As(err, &missingLoc):
		return &Error{Status: fiber.StatusBadRequest, Code: "missing-location", Message: err.Error()}
	case errors.Is(err, capture.ErrPermissionDenied):
		return &Error{Status: fiber.StatusForbidden, Code: "capture-permission-denied", Message: err.Error()}
	case errors.Is(err, capture.ErrTimeout):
		return &Error{Status: fiber.StatusRequestTimeout, Code: "capture-timeout", Message: err.Error()}
	case errors.Is(err, capture.ErrDeviceUnavailable):
		return &Error{Status: fiber.StatusUnprocessableEntity, Code: "capture-unavailable", Message: err.Error()}
	case errors.As(err, &outside):
		return &Error{Status: fiber.StatusConflict, Code: "outside-window", Message: err.Error()}
	case errors.As(err, &transition):
		return &Error{Status: fiber.StatusConflict, Code: "invalid-transition", Message: err.Error()}
	case errors.As(err, &locked):
		return &Error{Status: fiber.StatusTooManyRequests, Code: "login-locked", Message: err.Error()}
	case errors.Is(err, services.ErrInvalidCredentials):
		return &Error{Status: fiber.StatusUnauthorized, Code: "invalid-credentials", Message: err.Error()}
	case errors.Is(err, services.ErrNotBillOwner), errors.Is(err, services.ErrManagerNotAllowed):
		return &Error{Status: fiber.StatusForbidden, Code: "forbidden", Message: err.Error()}
	case matches(err, badRequestErrors):
		return badRequest(err.Error())
	case matches(err, notFoundErrors):
		return &Error{Status: fiber.StatusNotFound, Code: "entity-not-found", Message: err.Error()}
	case matches(err, conflictErrors):
		return &Error{Status: fiber.StatusConflict, Code: "conflict", Message: err.Error()}
	case errors.As(err, &corrupted):
		return &Error{Status: fiber.StatusInternalServerError, Code: "corrupted-state", Message: err.Error()}
	}
	return &Error{Status: fiber.StatusInternalServerError, Code: "internal-server", Message: err.Error()}
}

func codeForStatus(status int) string {
	switch status {
	case fiber.StatusBadRequest:
		return "bad-request"
	case fiber.StatusUnauthorized:
		return "unauthorized"
	case fiber.StatusForbidden:
		return "forbidden"
	case fiber.StatusNotFound:
		return "entity-not-found"
	}
	return "internal-server"
}

// ErrorHandler renders every returned error as an Error body
func ErrorHandler(c *fiber.Ctx, err error) error {
	e := toError(err)
	if e.Status >= fiber.StatusInternalServerError {
		log.Printf("❌ %s %s: %v", c.Method(), c.Path(), err)
	}
	return c.Status(e.Status).JSON(e)
}
