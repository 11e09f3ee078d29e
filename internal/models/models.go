// Package models contains data structures for the application
package models

import (
	"time"
)

// Role is the employment role of a staff member
type Role string

const (
	RoleSalesman Role = "SALESMAN"
	RoleManager  Role = "MANAGER"
)

// TaskStatus is the lifecycle of an assigned task
type TaskStatus string

const (
	TaskPending   TaskStatus = "PENDING"
	TaskCompleted TaskStatus = "COMPLETED"
)

// Task is a piece of field work a manager assigns to a staff member
type Task struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      TaskStatus `json:"status"`
	Deadline    string     `json:"deadline"`
}

// StaffMember represents an employee on the roster
type StaffMember struct {
	ID             string  `json:"id"`
	EmployeeID     string  `json:"employee_id"`
	Name           string  `json:"name"`
	Role           Role    `json:"role"`
	Department     string  `json:"department"`
	Salary         float64 `json:"salary"`
	PF             float64 `json:"pf"`
	JoiningDate    string  `json:"joining_date"`
	BloodGroup     string  `json:"blood_group"`
	Phone          string  `json:"phone"`
	Email          string  `json:"email"`
	Points         int     `json:"points"`
	PhotoSeed      string  `json:"photo_seed,omitempty"`
	TelegramChatID int64   `json:"telegram_chat_id,omitempty"`
	AssignedTasks  []Task  `json:"assigned_tasks"`
	// Version increases on every write and guards profile updates.
	Version int `json:"version"`
}

// Account holds login credentials for a staff member
type Account struct {
	StaffID      string    `json:"staff_id"`
	Phone        string    `json:"phone"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"password_hash"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

// Location is a latitude/longitude pair in degrees
type Location struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// EventType is the direction of an attendance event
type EventType string

const (
	EventIn  EventType = "IN"
	EventOut EventType = "OUT"
)

// AttendanceEvent is one immutable check-in or check-out
type AttendanceEvent struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	UserName  string    `json:"user_name"`
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Photo     string    `json:"photo"`
	Location  Location  `json:"location"`
	Place     string    `json:"place"`
	IsValid   bool      `json:"is_valid"`
}

// RecordKind separates real sales from compensating corrections
type RecordKind string

const (
	RecordSale       RecordKind = "SALE"
	RecordAdjustment RecordKind = "ADJUSTMENT"
)

// SalesRecord is one committed line of a shop bill
type SalesRecord struct {
	ID              string     `json:"id"`
	SalesmanID      string     `json:"salesman_id"`
	SalesmanName    string     `json:"salesman_name"`
	BillID          string     `json:"bill_id"`
	LineItemID      string     `json:"line_item_id"`
	Kind            RecordKind `json:"kind"`
	AdjustsRecordID string     `json:"adjusts_record_id,omitempty"`
	ShopName        string     `json:"shop_name"`
	ShopAddress     string     `json:"shop_address,omitempty"`
	ShopMobile      string     `json:"shop_mobile,omitempty"`
	MedicineName    string     `json:"medicine_name"`
	Quantity        int        `json:"quantity"`
	UnitValue       float64    `json:"unit_value"`
	Value           float64    `json:"value"`
	Profit          float64    `json:"profit"`
	Timestamp       time.Time  `json:"timestamp"`
	DeliveryDate    *time.Time `json:"delivery_date,omitempty"`
	Location        Location   `json:"location"`
}

// Shop identifies the pharmacy a bill is raised for
type Shop struct {
	Name    string `json:"name"`
	Address string `json:"address,omitempty"`
	Mobile  string `json:"mobile,omitempty"`
}

// LineItem is one medicine line on a bill
type LineItem struct {
	ID           string  `json:"id"`
	MedicineName string  `json:"medicine_name"`
	Quantity     int     `json:"quantity"`
	Price        float64 `json:"price"`
	Value        float64 `json:"value"`
	Profit       float64 `json:"profit"`
}

// BillStatus is the lifecycle of a bill
type BillStatus string

const (
	BillDraft   BillStatus = "draft"
	BillOrdered BillStatus = "ordered"
)

// Bill is the stored form of a shop visit bill. Draft bills are editable;
// ordered bills are frozen and only corrected through adjustment records.
type Bill struct {
	ID           string     `json:"id"`
	SalesmanID   string     `json:"salesman_id"`
	Shop         Shop       `json:"shop"`
	Items        []LineItem `json:"items"`
	Status       BillStatus `json:"status"`
	CreatedAt    time.Time  `json:"created_at"`
	OrderedAt    *time.Time `json:"ordered_at,omitempty"`
	DeliveryDate *time.Time `json:"delivery_date,omitempty"`
	RecordIDs    []string   `json:"record_ids,omitempty"`
}

// LeaveType is the kind of leave requested
type LeaveType string

const (
	LeaveSick   LeaveType = "SICK"
	LeaveCasual LeaveType = "CASUAL"
	LeaveEarned LeaveType = "EARNED"
)

// LeaveStatus is the decision state of a leave request
type LeaveStatus string

const (
	LeavePending  LeaveStatus = "PENDING"
	LeaveApproved LeaveStatus = "APPROVED"
	LeaveRejected LeaveStatus = "REJECTED"
)

// LeaveRequest is a staff member's application for leave
type LeaveRequest struct {
	ID        string      `json:"id"`
	UserID    string      `json:"user_id"`
	Type      LeaveType   `json:"type"`
	StartDate string      `json:"start_date"`
	EndDate   string      `json:"end_date"`
	Status    LeaveStatus `json:"status"`
	Reason    string      `json:"reason"`
	DecidedBy string      `json:"decided_by,omitempty"`
	DecidedAt *time.Time  `json:"decided_at,omitempty"`
}

// Medicine is a catalog entry with its list price and margin
type Medicine struct {
	Name         string  `json:"name"`
	Price        float64 `json:"price"`
	ProfitMargin float64 `json:"profit_margin"`
}
