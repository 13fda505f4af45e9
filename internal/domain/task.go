package domain

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusCancelled  TaskStatus = "cancelled"
)

// Valid reports whether s is one of the known task statuses.
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusPending, TaskStatusInProgress, TaskStatusCompleted, TaskStatusCancelled:
		return true
	default:
		return false
	}
}

// ValidTransition checks if a task state transition is allowed.
// Allowed: pending->in_progress|completed|cancelled, in_progress->pending|completed|cancelled,
// completed->in_progress (reopen), cancelled->pending (restore).
func (s TaskStatus) ValidTransition(to TaskStatus) bool {
	switch s {
	case TaskStatusPending:
		return to == TaskStatusInProgress || to == TaskStatusCompleted || to == TaskStatusCancelled
	case TaskStatusInProgress:
		return to == TaskStatusPending || to == TaskStatusCompleted || to == TaskStatusCancelled
	case TaskStatusCompleted:
		return to == TaskStatusInProgress
	case TaskStatusCancelled:
		return to == TaskStatusPending
	default:
		return false
	}
}

type Task struct {
	ID          uuid.UUID  `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	DueDate     string     `json:"due_date"`
	CreatedBy   *uuid.UUID `json:"created_by,omitempty"`
	AssignedTo  *uuid.UUID `json:"assigned_to,omitempty"`
	Status      TaskStatus `json:"status"`
	CreatorName string     `json:"creator_name,omitempty"` // resolved on read, not stored
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// ErrInvalidTransition is returned by TaskStatus.TransitionTo for a change
// the state machine does not allow.
var ErrInvalidTransition = errors.New("task: invalid state transition")

// TransitionTo checks a status change. Staying in the same status is
// allowed; anything else must pass ValidTransition.
func (s TaskStatus) TransitionTo(to TaskStatus) error {
	if s == to || s.ValidTransition(to) {
		return nil
	}
	return fmt.Errorf("%w: %s to %s", ErrInvalidTransition, s, to)
}

type TaskRepository interface {
	Create(ctx context.Context, t *Task) error
	GetByID(ctx context.Context, id uuid.UUID) (*Task, error)
	ListAssignedTo(ctx context.Context, userID uuid.UUID) ([]*Task, error)
	ListCreatedBy(ctx context.Context, userID uuid.UUID) ([]*Task, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status TaskStatus) error
	Delete(ctx context.Context, id uuid.UUID) error
}
