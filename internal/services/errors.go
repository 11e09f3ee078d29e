package services

import (
	"errors"
	"fmt"

	"med-field-force/internal/models"
)

// Validation and state errors returned by the services
var (
	ErrMissingShopName = errors.New("shop name is required")
	ErrUnknownMedicine = errors.New("medicine is not in the catalog")
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
	ErrShopMismatch    = errors.New("an open bill exists for a different shop")
	ErrItemNotFound    = errors.New("line item not found")
	ErrEmptyBill       = errors.New("bill has no items")
	ErrBillOrdered     = errors.New("bill is already ordered")
	ErrBillNotOrdered  = errors.New("bill has not been ordered")
	ErrNotBillOwner    = errors.New("bill belongs to another salesman")

	ErrMissingTaskTitle = errors.New("task title is required")
	ErrTaskNotFound     = errors.New("task not found")
	ErrVersionConflict  = errors.New("staff record was modified by someone else")

	ErrInvalidLeaveType   = errors.New("invalid leave type")
	ErrInvalidLeaveDates  = errors.New("leave dates must be YYYY-MM-DD with end on or after start")
	ErrMissingLeaveReason = errors.New("leave reason is required")
	ErrLeaveDecided       = errors.New("leave has already been decided")
	ErrInvalidDecision    = errors.New("decision must be APPROVED or REJECTED")

	ErrInvalidPhone       = errors.New("phone number must be 10 digits")
	ErrWeakPassword       = errors.New("password must be at least 4 characters")
	ErrInvalidCredentials = errors.New("invalid phone or password")
	ErrManagerNotAllowed  = errors.New("manager accounts need a manager roster entry")
)

// MissingCaptureError is returned when an attendance event has no photo
type MissingCaptureError struct {
	UserID string
}

func (e *MissingCaptureError) Error() string {
	return fmt.Sprintf("no photo captured for %s", e.UserID)
}

// MissingLocationError is returned when an operation needs a resolved position
type MissingLocationError struct {
	Operation string
}

func (e *MissingLocationError) Error() string {
	return fmt.Sprintf("%s requires a resolved location", e.Operation)
}

// OutsideWindowError is returned when attendance is recorded outside its window
type OutsideWindowError struct {
	Type   models.EventType
	Window Window
}

func (e *OutsideWindowError) Error() string {
	return fmt.Sprintf("%s is only allowed during the %s window (%s)", e.Type, e.Window.Name, e.Window)
}

// InvalidTransitionError is returned for IN after IN or OUT without IN
type InvalidTransitionError struct {
	From  DutyState
	Event models.EventType
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot record %s while %s", e.Event, e.From)
}

// LoginLockedError is returned while a phone number is locked out
type LoginLockedError struct {
	Remaining int // minutes
}

func (e *LoginLockedError) Error() string {
	return fmt.Sprintf("too many failed attempts, try again in %d minutes", e.Remaining)
}
