package services

import (
	"context"
	"errors"
	"testing"

	"med-field-force/internal/models"
)

func TestAssignTask(t *testing.T) {
	tests := []struct {
		name         string
		req          TaskRequest
		wantErr      error
		wantDesc     string
		wantDeadline string
	}{
		{
			name:         "Defaults are filled in",
			req:          TaskRequest{Title: "Visit Apollo Andheri"},
			wantDesc:     "Assigned by Manager",
			wantDeadline: "End of Day",
		},
		{
			name:         "Explicit fields are kept",
			req:          TaskRequest{Title: "Collect payment", Description: "MedPlus owes 4500", Deadline: "Friday"},
			wantDesc:     "MedPlus owes 4500",
			wantDeadline: "Friday",
		},
		{
			name:    "Title is required",
			req:     TaskRequest{Title: "   "},
			wantErr: ErrMissingTaskTitle,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewStaffService(newTestStores().staff, newMockNotifier())
			task, err := svc.AssignTask(context.Background(), "S101", tt.req)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("AssignTask() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("AssignTask() error = %v", err)
			}
			if task.Status != models.TaskPending || task.Description != tt.wantDesc || task.Deadline != tt.wantDeadline {
				t.Errorf("AssignTask() = %+v", task)
			}
		})
	}
}

func TestAssignTaskPrependsAndNotifies(t *testing.T) {
	ctx := context.Background()
	stores := newTestStores()
	notifier := newMockNotifier()
	svc := NewStaffService(stores.staff, notifier)

	if _, err := svc.LinkTelegram(ctx, "ELD-SLS-101", 4242); err != nil {
		t.Fatalf("LinkTelegram() error = %v", err)
	}

	first, _ := svc.AssignTask(ctx, "S101", TaskRequest{Title: "First"})
	second, _ := svc.AssignTask(ctx, "S101", TaskRequest{Title: "Second"})

	staff, _ := svc.Get(ctx, "S101")
	if len(staff.AssignedTasks) != 2 || staff.AssignedTasks[0].ID != second.ID || staff.AssignedTasks[1].ID != first.ID {
		t.Errorf("tasks = %+v, want newest first", staff.AssignedTasks)
	}
	if got := len(notifier.personal[4242]); got != 2 {
		t.Errorf("personal notifications = %d, want 2", got)
	}

	// S102 has no chat linked
	svc.AssignTask(ctx, "S102", TaskRequest{Title: "Quiet"})
	if len(notifier.personal) != 1 {
		t.Errorf("unexpected notification targets: %v", notifier.personal)
	}
}

func TestCompleteTaskIsIdempotent(t *testing.T) {
	ctx := context.Background()
	svc := NewStaffService(newTestStores().staff, newMockNotifier())
	task, _ := svc.AssignTask(ctx, "S101", TaskRequest{Title: "Restock"})

	for i := 0; i < 2; i++ {
		done, err := svc.CompleteTask(ctx, "S101", task.ID)
		if err != nil {
			t.Fatalf("CompleteTask() #%d error = %v", i+1, err)
		}
		if done.Status != models.TaskCompleted {
			t.Errorf("CompleteTask() #%d status = %s", i+1, done.Status)
		}
	}

	if _, err := svc.CompleteTask(ctx, "S101", "missing"); !errors.Is(err, ErrTaskNotFound) {
		t.Errorf("CompleteTask() unknown error = %v, want ErrTaskNotFound", err)
	}
}

func TestUpdateStaffProfileVersioning(t *testing.T) {
	ctx := context.Background()
	svc := NewStaffService(newTestStores().staff, newMockNotifier())
	svc.AssignTask(ctx, "S101", TaskRequest{Title: "Keep me"})

	current, _ := svc.Get(ctx, "S101")
	managerA := *current
	managerB := *current

	managerA.Phone = "9000011111"
	updated, err := svc.UpdateStaffProfile(ctx, &managerA)
	if err != nil {
		t.Fatalf("UpdateStaffProfile() error = %v", err)
	}
	if updated.Version != current.Version+1 || updated.Phone != "9000011111" {
		t.Errorf("updated = %+v", updated)
	}
	if len(updated.AssignedTasks) != 1 {
		t.Errorf("profile update dropped tasks: %+v", updated.AssignedTasks)
	}

	managerB.Salary = 99999
	if _, err := svc.UpdateStaffProfile(ctx, &managerB); !errors.Is(err, ErrVersionConflict) {
		t.Errorf("stale update error = %v, want ErrVersionConflict", err)
	}

	stored, _ := svc.Get(ctx, "S101")
	if stored.Salary == 99999 {
		t.Error("stale update was written")
	}
}
