package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"med-field-force/internal/models"
	"med-field-force/internal/repository"
)

const dateLayout = "2006-01-02"

// LeaveRequestInput is what a staff member submits
type LeaveRequestInput struct {
	Type      models.LeaveType `json:"type" validate:"required"`
	StartDate string           `json:"start_date" validate:"required"`
	EndDate   string           `json:"end_date" validate:"required"`
	Reason    string           `json:"reason" validate:"required"`
}

// LeaveService handles leave applications and decisions
type LeaveService struct {
	leaveRepo   repository.LeaveStore
	staffRepo   repository.StaffStore
	botNotifier BotNotifier
	now         func() time.Time

	mu sync.Mutex
}

// NewLeaveService creates a new leave service
func NewLeaveService(leaveRepo repository.LeaveStore, staffRepo repository.StaffStore, botNotifier BotNotifier) *LeaveService {
	return &LeaveService{
		leaveRepo:   leaveRepo,
		staffRepo:   staffRepo,
		botNotifier: botNotifier,
		now:         time.Now,
	}
}

func validLeaveType(t models.LeaveType) bool {
	switch t {
	case models.LeaveSick, models.LeaveCasual, models.LeaveEarned:
		return true
	}
	return false
}

// Apply files a PENDING leave request and notifies managers
func (s *LeaveService) Apply(ctx context.Context, userID string, in LeaveRequestInput) (*models.LeaveRequest, error) {
	if !validLeaveType(in.Type) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidLeaveType, in.Type)
	}
	start, err := time.Parse(dateLayout, strings.TrimSpace(in.StartDate))
	if err != nil {
		return nil, ErrInvalidLeaveDates
	}
	end, err := time.Parse(dateLayout, strings.TrimSpace(in.EndDate))
	if err != nil || end.Before(start) {
		return nil, ErrInvalidLeaveDates
	}
	reason := strings.TrimSpace(in.Reason)
	if reason == "" {
		return nil, ErrMissingLeaveReason
	}

	staff, err := s.staffRepo.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	leave := &models.LeaveRequest{
		ID:        "L" + newID(),
		UserID:    userID,
		Type:      in.Type,
		StartDate: start.Format(dateLayout),
		EndDate:   end.Format(dateLayout),
		Status:    models.LeavePending,
		Reason:    reason,
	}
	if err := s.leaveRepo.Append(ctx, leave); err != nil {
		return nil, fmt.Errorf("failed to save leave: %w", err)
	}

	log.Printf("🏖️ %s applied for %s leave %s to %s", staff.Name, leave.Type, leave.StartDate, leave.EndDate)
	s.botNotifier.SendNotification(fmt.Sprintf(
		"🏖️ *Leave request*\n👤 Name: `%s`\n📄 Type: %s\n📅 %s → %s\n💬 %s",
		staff.Name, leave.Type, leave.StartDate, leave.EndDate, leave.Reason))
	return leave, nil
}

// Decide approves or rejects a PENDING leave
func (s *LeaveService) Decide(ctx context.Context, leaveID, managerID string, status models.LeaveStatus) (*models.LeaveRequest, error) {
	if status != models.LeaveApproved && status != models.LeaveRejected {
		return nil, ErrInvalidDecision
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	leave, err := s.leaveRepo.Get(ctx, leaveID)
	if err != nil {
		return nil, err
	}
	if leave.Status != models.LeavePending {
		return nil, fmt.Errorf("%w: %s", ErrLeaveDecided, leave.Status)
	}

	now := s.now()
	leave.Status = status
	leave.DecidedBy = managerID
	leave.DecidedAt = &now
	if err := s.leaveRepo.Update(ctx, leave); err != nil {
		return nil, fmt.Errorf("failed to update leave: %w", err)
	}

	log.Printf("📝 Leave %s %s by %s", leave.ID, leave.Status, managerID)
	if staff, err := s.staffRepo.Get(ctx, leave.UserID); err == nil && staff.TelegramChatID != 0 {
		s.botNotifier.SendPersonalNotification(staff.TelegramChatID, fmt.Sprintf(
			"📝 Your %s leave %s → %s was *%s*", leave.Type, leave.StartDate, leave.EndDate, leave.Status))
	}
	return leave, nil
}

func (s *LeaveService) ListByUser(ctx context.Context, userID string) ([]models.LeaveRequest, error) {
	return s.leaveRepo.FindByUser(ctx, userID)
}

func (s *LeaveService) ListAll(ctx context.Context) ([]models.LeaveRequest, error) {
	return s.leaveRepo.List(ctx)
}

// coversDay reports whether the leave spans the calendar day of t
func coversDay(leave models.LeaveRequest, t time.Time) bool {
	day := t.Format(dateLayout)
	return leave.StartDate <= day && day <= leave.EndDate
}
