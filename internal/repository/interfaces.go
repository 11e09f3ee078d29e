// Package repository defines repository interfaces for data access
package repository

import (
	"context"
	"errors"

	"med-field-force/internal/models"
)

var (
	// ErrBlobNotFound is returned by a BlobStore when nothing was saved under a key
	ErrBlobNotFound = errors.New("blob not found")
	// ErrNotFound is returned when a record lookup has no match
	ErrNotFound = errors.New("record not found")
	// ErrAccountExists is returned when a phone number is already registered
	ErrAccountExists = errors.New("account already exists")
)

// BlobStore persists whole serialized collections under fixed keys
type BlobStore interface {
	// Load returns the blob saved under key, or ErrBlobNotFound
	Load(ctx context.Context, key string) ([]byte, error)
	// Save replaces the blob under key
	Save(ctx context.Context, key string, blob []byte) error
	// Delete removes the blob under key; deleting a missing key is not an error
	Delete(ctx context.Context, key string) error
}

// AttendanceStore is the append-only attendance log
type AttendanceStore interface {
	Append(ctx context.Context, event *models.AttendanceEvent) error
	// List returns every event, newest first
	List(ctx context.Context) ([]models.AttendanceEvent, error)
	// FindByUser returns a user's events, newest first
	FindByUser(ctx context.Context, userID string) ([]models.AttendanceEvent, error)
}

// SalesStore is the append-only ledger of committed sales records
type SalesStore interface {
	Append(ctx context.Context, records ...models.SalesRecord) error
	List(ctx context.Context) ([]models.SalesRecord, error)
	FindByUser(ctx context.Context, salesmanID string) ([]models.SalesRecord, error)
	FindByBill(ctx context.Context, billID string) ([]models.SalesRecord, error)
}

// LeaveStore holds leave requests
type LeaveStore interface {
	Append(ctx context.Context, leave *models.LeaveRequest) error
	List(ctx context.Context) ([]models.LeaveRequest, error)
	FindByUser(ctx context.Context, userID string) ([]models.LeaveRequest, error)
	Get(ctx context.Context, id string) (*models.LeaveRequest, error)
	Update(ctx context.Context, leave *models.LeaveRequest) error
}

// StaffStore holds the staff roster
type StaffStore interface {
	List(ctx context.Context) ([]models.StaffMember, error)
	Get(ctx context.Context, id string) (*models.StaffMember, error)
	FindByEmployeeID(ctx context.Context, employeeID string) (*models.StaffMember, error)
	FindByChatID(ctx context.Context, chatID int64) (*models.StaffMember, error)
	// Save inserts or replaces a staff member by id
	Save(ctx context.Context, staff *models.StaffMember) error
}

// BillStore holds draft and ordered bills
type BillStore interface {
	Save(ctx context.Context, bill *models.Bill) error
	Get(ctx context.Context, id string) (*models.Bill, error)
	FindByUser(ctx context.Context, salesmanID string) ([]models.Bill, error)
	// FindDraft returns the salesman's open draft, or ErrNotFound
	FindDraft(ctx context.Context, salesmanID string) (*models.Bill, error)
}

// AccountStore holds login credentials
type AccountStore interface {
	Create(ctx context.Context, account *models.Account) error
	FindByPhone(ctx context.Context, phone string) (*models.Account, error)
}

// PhotoStore keeps attendance capture photos and returns an opaque reference
type PhotoStore interface {
	Put(ctx context.Context, userID string, photo []byte, contentType string) (string, error)
	// Delete removes a photo by the reference Put returned
	Delete(ctx context.Context, ref string) error
}
