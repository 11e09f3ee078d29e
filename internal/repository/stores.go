package repository

import (
	"context"
	"fmt"

	"med-field-force/internal/models"
)

// AttendanceLog implements AttendanceStore on top of a blob collection
type AttendanceLog struct {
	*Collection[models.AttendanceEvent]
}

// NewAttendanceLog creates the attendance log
func NewAttendanceLog(blobs BlobStore) *AttendanceLog {
	return &AttendanceLog{NewCollection[models.AttendanceEvent](blobs, KeyAttendance, nil)}
}

func (l *AttendanceLog) Append(ctx context.Context, event *models.AttendanceEvent) error {
	return l.Mutate(ctx, func(items []models.AttendanceEvent) ([]models.AttendanceEvent, error) {
		return append([]models.AttendanceEvent{*event}, items...), nil
	})
}

func (l *AttendanceLog) List(ctx context.Context) ([]models.AttendanceEvent, error) {
	return l.Snapshot(), nil
}

func (l *AttendanceLog) FindByUser(ctx context.Context, userID string) ([]models.AttendanceEvent, error) {
	var out []models.AttendanceEvent
	for _, e := range l.Snapshot() {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	return out, nil
}

// SalesLedger implements SalesStore
type SalesLedger struct {
	*Collection[models.SalesRecord]
}

// NewSalesLedger creates the sales ledger
func NewSalesLedger(blobs BlobStore) *SalesLedger {
	return &SalesLedger{NewCollection[models.SalesRecord](blobs, KeySales, nil)}
}

func (l *SalesLedger) Append(ctx context.Context, records ...models.SalesRecord) error {
	if len(records) == 0 {
		return nil
	}
	return l.Mutate(ctx, func(items []models.SalesRecord) ([]models.SalesRecord, error) {
		next := make([]models.SalesRecord, 0, len(records)+len(items))
		next = append(next, records...)
		return append(next, items...), nil
	})
}

func (l *SalesLedger) List(ctx context.Context) ([]models.SalesRecord, error) {
	return l.Snapshot(), nil
}

func (l *SalesLedger) FindByUser(ctx context.Context, salesmanID string) ([]models.SalesRecord, error) {
	var out []models.SalesRecord
	for _, r := range l.Snapshot() {
		if r.SalesmanID == salesmanID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (l *SalesLedger) FindByBill(ctx context.Context, billID string) ([]models.SalesRecord, error) {
	var out []models.SalesRecord
	for _, r := range l.Snapshot() {
		if r.BillID == billID {
			out = append(out, r)
		}
	}
	return out, nil
}

// LeaveBook implements LeaveStore
type LeaveBook struct {
	*Collection[models.LeaveRequest]
}

// NewLeaveBook creates the leave collection
func NewLeaveBook(blobs BlobStore) *LeaveBook {
	return &LeaveBook{NewCollection[models.LeaveRequest](blobs, KeyLeaves, nil)}
}

func (b *LeaveBook) Append(ctx context.Context, leave *models.LeaveRequest) error {
	return b.Mutate(ctx, func(items []models.LeaveRequest) ([]models.LeaveRequest, error) {
		return append([]models.LeaveRequest{*leave}, items...), nil
	})
}

func (b *LeaveBook) List(ctx context.Context) ([]models.LeaveRequest, error) {
	return b.Snapshot(), nil
}

func (b *LeaveBook) FindByUser(ctx context.Context, userID string) ([]models.LeaveRequest, error) {
	var out []models.LeaveRequest
	for _, l := range b.Snapshot() {
		if l.UserID == userID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (b *LeaveBook) Get(ctx context.Context, id string) (*models.LeaveRequest, error) {
	for _, l := range b.Snapshot() {
		if l.ID == id {
			return &l, nil
		}
	}
	return nil, fmt.Errorf("leave %s: %w", id, ErrNotFound)
}

func (b *LeaveBook) Update(ctx context.Context, leave *models.LeaveRequest) error {
	return b.Mutate(ctx, func(items []models.LeaveRequest) ([]models.LeaveRequest, error) {
		for i := range items {
			if items[i].ID == leave.ID {
				items[i] = *leave
				return items, nil
			}
		}
		return nil, fmt.Errorf("leave %s: %w", leave.ID, ErrNotFound)
	})
}

// StaffRoster implements StaffStore
type StaffRoster struct {
	*Collection[models.StaffMember]
}

// NewStaffRoster creates the roster, seeded with the default staff
func NewStaffRoster(blobs BlobStore) *StaffRoster {
	return &StaffRoster{NewCollection(blobs, KeyStaff, models.DefaultStaff)}
}

func (r *StaffRoster) List(ctx context.Context) ([]models.StaffMember, error) {
	return r.Snapshot(), nil
}

func (r *StaffRoster) Get(ctx context.Context, id string) (*models.StaffMember, error) {
	return r.find(func(s models.StaffMember) bool { return s.ID == id }, "staff "+id)
}

func (r *StaffRoster) FindByEmployeeID(ctx context.Context, employeeID string) (*models.StaffMember, error) {
	return r.find(func(s models.StaffMember) bool { return s.EmployeeID == employeeID }, "employee "+employeeID)
}

func (r *StaffRoster) FindByChatID(ctx context.Context, chatID int64) (*models.StaffMember, error) {
	return r.find(func(s models.StaffMember) bool { return chatID != 0 && s.TelegramChatID == chatID },
		fmt.Sprintf("chat %d", chatID))
}

func (r *StaffRoster) find(match func(models.StaffMember) bool, what string) (*models.StaffMember, error) {
	for _, s := range r.Snapshot() {
		if match(s) {
			return &s, nil
		}
	}
	return nil, fmt.Errorf("%s: %w", what, ErrNotFound)
}

func (r *StaffRoster) Save(ctx context.Context, staff *models.StaffMember) error {
	return r.Mutate(ctx, func(items []models.StaffMember) ([]models.StaffMember, error) {
		for i := range items {
			if items[i].ID == staff.ID {
				items[i] = *staff
				return items, nil
			}
		}
		return append(items, *staff), nil
	})
}

// BillBook implements BillStore
type BillBook struct {
	*Collection[models.Bill]
}

// NewBillBook creates the bill collection
func NewBillBook(blobs BlobStore) *BillBook {
	return &BillBook{NewCollection[models.Bill](blobs, KeyBills, nil)}
}

func (b *BillBook) Save(ctx context.Context, bill *models.Bill) error {
	return b.Mutate(ctx, func(items []models.Bill) ([]models.Bill, error) {
		for i := range items {
			if items[i].ID == bill.ID {
				items[i] = *bill
				return items, nil
			}
		}
		return append([]models.Bill{*bill}, items...), nil
	})
}

func (b *BillBook) Get(ctx context.Context, id string) (*models.Bill, error) {
	for _, bill := range b.Snapshot() {
		if bill.ID == id {
			return &bill, nil
		}
	}
	return nil, fmt.Errorf("bill %s: %w", id, ErrNotFound)
}

func (b *BillBook) FindByUser(ctx context.Context, salesmanID string) ([]models.Bill, error) {
	var out []models.Bill
	for _, bill := range b.Snapshot() {
		if bill.SalesmanID == salesmanID {
			out = append(out, bill)
		}
	}
	return out, nil
}

func (b *BillBook) FindDraft(ctx context.Context, salesmanID string) (*models.Bill, error) {
	for _, bill := range b.Snapshot() {
		if bill.SalesmanID == salesmanID && bill.Status == models.BillDraft {
			return &bill, nil
		}
	}
	return nil, fmt.Errorf("draft for %s: %w", salesmanID, ErrNotFound)
}

// AccountBook implements AccountStore
type AccountBook struct {
	*Collection[models.Account]
}

// NewAccountBook creates the account collection
func NewAccountBook(blobs BlobStore) *AccountBook {
	return &AccountBook{NewCollection[models.Account](blobs, KeyAccounts, nil)}
}

func (b *AccountBook) Create(ctx context.Context, account *models.Account) error {
	return b.Mutate(ctx, func(items []models.Account) ([]models.Account, error) {
		for _, a := range items {
			if a.Phone == account.Phone {
				return nil, ErrAccountExists
			}
		}
		return append(items, *account), nil
	})
}

func (b *AccountBook) FindByPhone(ctx context.Context, phone string) (*models.Account, error) {
	for _, a := range b.Snapshot() {
		if a.Phone == phone {
			return &a, nil
		}
	}
	return nil, fmt.Errorf("account %s: %w", phone, ErrNotFound)
}

// Ensure the collections implement their store interfaces
var (
	_ AttendanceStore = (*AttendanceLog)(nil)
	_ SalesStore      = (*SalesLedger)(nil)
	_ LeaveStore      = (*LeaveBook)(nil)
	_ StaffStore      = (*StaffRoster)(nil)
	_ BillStore       = (*BillBook)(nil)
	_ AccountStore    = (*AccountBook)(nil)
)
