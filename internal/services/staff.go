package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"

	"med-field-force/internal/models"
	"med-field-force/internal/repository"
)

// TaskRequest is what a manager fills in when assigning a task
type TaskRequest struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
	Deadline    string `json:"deadline"`
}

// StaffService manages the roster and task assignment
type StaffService struct {
	staffRepo   repository.StaffStore
	botNotifier BotNotifier

	mu sync.Mutex
}

// NewStaffService creates a new staff service
func NewStaffService(staffRepo repository.StaffStore, botNotifier BotNotifier) *StaffService {
	return &StaffService{staffRepo: staffRepo, botNotifier: botNotifier}
}

func (s *StaffService) List(ctx context.Context) ([]models.StaffMember, error) {
	return s.staffRepo.List(ctx)
}

func (s *StaffService) Get(ctx context.Context, id string) (*models.StaffMember, error) {
	return s.staffRepo.Get(ctx, id)
}

// AssignTask puts a new PENDING task at the top of the member's list and
// notifies them if they linked Telegram
func (s *StaffService) AssignTask(ctx context.Context, staffID string, req TaskRequest) (*models.Task, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, ErrMissingTaskTitle
	}
	task := models.Task{
		ID:          "T" + newID(),
		Title:       title,
		Description: strings.TrimSpace(req.Description),
		Status:      models.TaskPending,
		Deadline:    strings.TrimSpace(req.Deadline),
	}
	if task.Description == "" {
		task.Description = "Assigned by Manager"
	}
	if task.Deadline == "" {
		task.Deadline = "End of Day"
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	staff, err := s.staffRepo.Get(ctx, staffID)
	if err != nil {
		return nil, err
	}
	staff.AssignedTasks = append([]models.Task{task}, staff.AssignedTasks...)
	staff.Version++
	if err := s.staffRepo.Save(ctx, staff); err != nil {
		return nil, fmt.Errorf("failed to assign task: %w", err)
	}

	log.Printf("📋 Assigned %q to %s", task.Title, staff.Name)
	if staff.TelegramChatID != 0 {
		s.botNotifier.SendPersonalNotification(staff.TelegramChatID, fmt.Sprintf(
			"📋 *New task assigned*\n📝 %s\n%s\n⏰ Deadline: %s", task.Title, task.Description, task.Deadline))
	}
	return &task, nil
}

// CompleteTask marks a task COMPLETED. Completing it again is a no-op.
func (s *StaffService) CompleteTask(ctx context.Context, staffID, taskID string) (*models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	staff, err := s.staffRepo.Get(ctx, staffID)
	if err != nil {
		return nil, err
	}

	tasks := append([]models.Task(nil), staff.AssignedTasks...)
	for i := range tasks {
		if tasks[i].ID != taskID {
			continue
		}
		if tasks[i].Status == models.TaskCompleted {
			return &tasks[i], nil
		}
		tasks[i].Status = models.TaskCompleted
		staff.AssignedTasks = tasks
		staff.Version++
		if err := s.staffRepo.Save(ctx, staff); err != nil {
			return nil, fmt.Errorf("failed to complete task: %w", err)
		}
		log.Printf("✅ %s completed %q", staff.Name, tasks[i].Title)
		return &tasks[i], nil
	}
	return nil, ErrTaskNotFound
}

// UpdateStaffProfile replaces a staff record when its version matches the
// stored one. Tasks and the Telegram link are kept from the stored record.
func (s *StaffService) UpdateStaffProfile(ctx context.Context, update *models.StaffMember) (*models.StaffMember, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.staffRepo.Get(ctx, update.ID)
	if err != nil {
		return nil, err
	}
	if update.Version != current.Version {
		return nil, fmt.Errorf("%w: have version %d, stored %d", ErrVersionConflict, update.Version, current.Version)
	}

	next := *update
	next.AssignedTasks = current.AssignedTasks
	next.TelegramChatID = current.TelegramChatID
	next.Version = current.Version + 1
	if err := s.staffRepo.Save(ctx, &next); err != nil {
		return nil, fmt.Errorf("failed to update staff: %w", err)
	}

	log.Printf("✏️ Updated profile of %s (v%d)", next.Name, next.Version)
	return &next, nil
}

// LinkTelegram attaches a chat id to the staff member with employeeID
func (s *StaffService) LinkTelegram(ctx context.Context, employeeID string, chatID int64) (*models.StaffMember, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	staff, err := s.staffRepo.FindByEmployeeID(ctx, strings.TrimSpace(employeeID))
	if err != nil {
		return nil, err
	}
	staff.TelegramChatID = chatID
	staff.Version++
	if err := s.staffRepo.Save(ctx, staff); err != nil {
		return nil, err
	}
	log.Printf("🔗 Linked Telegram chat %d to %s", chatID, staff.Name)
	return staff, nil
}

// FindByChatID returns the staff member linked to a Telegram chat
func (s *StaffService) FindByChatID(ctx context.Context, chatID int64) (*models.StaffMember, error) {
	return s.staffRepo.FindByChatID(ctx, chatID)
}
