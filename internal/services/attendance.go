// Package services implements business logic for the application
package services

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"med-field-force/internal/capture"
	"med-field-force/internal/models"
	"med-field-force/internal/repository"
)

// BotNotifier defines the interface for bot notifications
type BotNotifier interface {
	SendNotification(message string)
	SendPersonalNotification(chatID int64, message string)
}

// DutyState is where a user stands in the attendance cycle
type DutyState string

const (
	AwayState   DutyState = "AWAY"
	OnDutyState DutyState = "ON_DUTY"
)

// Transition returns the state after recording event in state, or an
// *InvalidTransitionError when the event is not allowed
func Transition(state DutyState, event models.EventType) (DutyState, error) {
	switch {
	case state == AwayState && event == models.EventIn:
		return OnDutyState, nil
	case state == OnDutyState && event == models.EventOut:
		return AwayState, nil
	}
	return state, &InvalidTransitionError{From: state, Event: event}
}

// StateAfter derives the current state from a newest-first event list
func StateAfter(events []models.AttendanceEvent) DutyState {
	if len(events) > 0 && events[0].Type == models.EventIn {
		return OnDutyState
	}
	return AwayState
}

// AttendanceConfig holds the geofence and window settings
type AttendanceConfig struct {
	Office         models.Location
	RadiusMeters   float64
	LoginWindow    Window
	LogoutWindow   Window
	EnforceWindows bool
}

// DefaultAttendanceConfig returns the stock office and windows, with window
// enforcement on
func DefaultAttendanceConfig() AttendanceConfig {
	return AttendanceConfig{
		Office:         DefaultOffice,
		RadiusMeters:   DefaultGeofenceRadius,
		LoginWindow:    DefaultLoginWindow,
		LogoutWindow:   DefaultLogoutWindow,
		EnforceWindows: true,
	}
}

// AttendanceStatus is what a client needs to render the check-in screen
type AttendanceStatus struct {
	State       DutyState               `json:"state"`
	LastEvent   *models.AttendanceEvent `json:"last_event,omitempty"`
	LoginOpen   bool                    `json:"login_window_open"`
	LogoutOpen  bool                    `json:"logout_window_open"`
	CanCheckIn  bool                    `json:"can_check_in"`
	CanCheckOut bool                    `json:"can_check_out"`
}

// AttendanceService handles attendance business logic
type AttendanceService struct {
	attendanceRepo repository.AttendanceStore
	staffRepo      repository.StaffStore
	photoStore     repository.PhotoStore
	botNotifier    BotNotifier
	cfg            AttendanceConfig
	now            func() time.Time

	// serializes the state check and the append
	mu sync.Mutex
}

// NewAttendanceService creates a new attendance service
func NewAttendanceService(
	attendanceRepo repository.AttendanceStore,
	staffRepo repository.StaffStore,
	photoStore repository.PhotoStore,
	botNotifier BotNotifier,
	cfg AttendanceConfig,
) *AttendanceService {
	return &AttendanceService{
		attendanceRepo: attendanceRepo,
		staffRepo:      staffRepo,
		photoStore:     photoStore,
		botNotifier:    botNotifier,
		cfg:            cfg,
		now:            time.Now,
	}
}

// windowFor returns the window gating an event type
func (s *AttendanceService) windowFor(eventType models.EventType) Window {
	if eventType == models.EventOut {
		return s.cfg.LogoutWindow
	}
	return s.cfg.LoginWindow
}

// RecordEvent validates a capture and appends it to the attendance log
func (s *AttendanceService) RecordEvent(ctx context.Context, userID string, eventType models.EventType, c capture.Capture) (*models.AttendanceEvent, error) {
	if eventType != models.EventIn && eventType != models.EventOut {
		return nil, fmt.Errorf("unknown attendance type %q", eventType)
	}

	staff, err := s.staffRepo.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	if c.Photo == nil || len(c.Photo.Data) == 0 {
		return nil, &MissingCaptureError{UserID: userID}
	}
	if c.Location == nil {
		return nil, &MissingLocationError{Operation: "attendance " + string(eventType)}
	}

	now := s.now()
	if s.cfg.EnforceWindows {
		if w := s.windowFor(eventType); !IsWithinWindow(w, now) {
			return nil, &OutsideWindowError{Type: eventType, Window: w}
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	events, err := s.attendanceRepo.FindByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to read attendance: %w", err)
	}
	if _, err := Transition(StateAfter(events), eventType); err != nil {
		return nil, err
	}

	photoRef, err := s.photoStore.Put(ctx, userID, c.Photo.Data, c.Photo.ContentType)
	if err != nil {
		return nil, fmt.Errorf("failed to store photo: %w", err)
	}

	geo := EvaluateGeofence(*c.Location, s.cfg.Office, s.cfg.RadiusMeters)
	event := &models.AttendanceEvent{
		ID:        newID(),
		UserID:    staff.ID,
		UserName:  staff.Name,
		Type:      eventType,
		Timestamp: now,
		Photo:     photoRef,
		Location:  *c.Location,
		Place:     geo.Place,
		IsValid:   geo.Valid,
	}

	if err := s.attendanceRepo.Append(ctx, event); err != nil {
		if derr := s.photoStore.Delete(ctx, photoRef); derr != nil {
			log.Printf("⚠️ Orphaned photo %s for %s: %v", photoRef, userID, derr)
		}
		return nil, fmt.Errorf("failed to record attendance: %w", err)
	}

	log.Printf("✅ %s recorded %s at %s (%s, %.0fm)",
		staff.Name, eventType, now.Format("15:04:05"), geo.Place, geo.Distance)

	if !geo.Valid {
		s.sendOutsideGeofenceNotification(event, geo.Distance)
	}
	return event, nil
}

func (s *AttendanceService) sendOutsideGeofenceNotification(event *models.AttendanceEvent, distance float64) {
	message := fmt.Sprintf("⚠️ *Check-%s outside office*\n👤 Name: `%s`\n🕐 Time: `%s`\n📍 %s\n📏 %.1f km away",
		map[models.EventType]string{models.EventIn: "in", models.EventOut: "out"}[event.Type],
		event.UserName, event.Timestamp.Format("15:04:05"), event.Place, distance/1000)
	s.botNotifier.SendNotification(message)
}

// Status reports the user's current state and which actions are open now
func (s *AttendanceService) Status(ctx context.Context, userID string) (*AttendanceStatus, error) {
	events, err := s.attendanceRepo.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	status := &AttendanceStatus{
		State:      StateAfter(events),
		LoginOpen:  IsWithinWindow(s.cfg.LoginWindow, now),
		LogoutOpen: IsWithinWindow(s.cfg.LogoutWindow, now),
	}
	if len(events) > 0 {
		status.LastEvent = &events[0]
	}

	_, inErr := Transition(status.State, models.EventIn)
	_, outErr := Transition(status.State, models.EventOut)
	status.CanCheckIn = inErr == nil && (status.LoginOpen || !s.cfg.EnforceWindows)
	status.CanCheckOut = outErr == nil && (status.LogoutOpen || !s.cfg.EnforceWindows)
	return status, nil
}

// History returns a user's events, or everyone's when userID is empty
func (s *AttendanceService) History(ctx context.Context, userID string) ([]models.AttendanceEvent, error) {
	if userID == "" {
		return s.attendanceRepo.List(ctx)
	}
	return s.attendanceRepo.FindByUser(ctx, userID)
}
