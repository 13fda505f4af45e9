package v1

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"

	"github.com/gosuda/planner/internal/domain"
)

// unknownCreator labels tasks whose creator no longer exists.
const unknownCreator = "Unknown"

type CreateTaskInput struct {
	Body struct {
		Title       string     `json:"title" minLength:"1" maxLength:"500" doc:"Task title"`
		Description string     `json:"description,omitempty" doc:"Task description"`
		DueDate     string     `json:"due_date,omitempty" doc:"Due date as entered by the user"`
		CreatedBy   *uuid.UUID `json:"created_by,omitempty" doc:"Creating user ID"`
		AssignedTo  *uuid.UUID `json:"assigned_to,omitempty" doc:"Assigned user ID"`
	}
}

type CreateTaskOutput struct {
	Body struct {
		Success bool      `json:"success"`
		TaskID  uuid.UUID `json:"task_id"`
	}
}

type ListTasksInput struct {
	UserID uuid.UUID `query:"user_id" required:"true" doc:"User whose tasks are listed"`
}

type ListTasksOutput struct {
	Body struct {
		Success      bool           `json:"success"`
		MyTasks      []*domain.Task `json:"my_tasks"`
		CreatedTasks []*domain.Task `json:"created_tasks"`
	}
}

type UpdateTaskStatusInput struct {
	TaskID uuid.UUID `path:"taskId" doc:"Task ID"`
	Body   struct {
		Status string `json:"status" enum:"pending,in_progress,completed,cancelled" doc:"Target status"`
	}
}

type UpdateTaskStatusOutput struct {
	Body struct {
		Success bool         `json:"success"`
		Task    *domain.Task `json:"task"`
	}
}

type DeleteTaskInput struct {
	TaskID uuid.UUID `path:"taskId" doc:"Task ID"`
}

type SuccessOutput struct {
	Body struct {
		Success bool `json:"success"`
	}
}

func RegisterTaskRoutes(api huma.API, store DataStore) {
	huma.Register(api, huma.Operation{
		OperationID: "create-task",
		Method:      http.MethodPost,
		Path:        "/create_task",
		Summary:     "Create a new task",
		Tags:        []string{"Tasks"},
	}, func(ctx context.Context, input *CreateTaskInput) (*CreateTaskOutput, error) {
		for _, ref := range []*uuid.UUID{input.Body.CreatedBy, input.Body.AssignedTo} {
			if ref == nil {
				continue
			}
			if _, err := store.Users().GetByID(ctx, *ref); err != nil {
				if errors.Is(err, domain.ErrNotFound) {
					return nil, huma.Error404NotFound("user not found: " + ref.String())
				}
				return nil, huma.Error500InternalServerError("failed to validate user", err)
			}
		}

		now := time.Now()
		t := &domain.Task{
			ID:          uuid.New(),
			Title:       input.Body.Title,
			Description: input.Body.Description,
			DueDate:     input.Body.DueDate,
			CreatedBy:   input.Body.CreatedBy,
			AssignedTo:  input.Body.AssignedTo,
			Status:      domain.TaskStatusPending,
			CreatedAt:   now,
			UpdatedAt:   now,
		}

		if err := store.Tasks().Create(ctx, t); err != nil {
			return nil, huma.Error500InternalServerError("failed to create task", err)
		}

		out := &CreateTaskOutput{}
		out.Body.Success = true
		out.Body.TaskID = t.ID
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-tasks",
		Method:      http.MethodGet,
		Path:        "/tasks",
		Summary:     "List tasks assigned to and created by a user",
		Tags:        []string{"Tasks"},
	}, func(ctx context.Context, input *ListTasksInput) (*ListTasksOutput, error) {
		mine, err := store.Tasks().ListAssignedTo(ctx, input.UserID)
		if err != nil {
			return nil, huma.Error500InternalServerError("failed to list tasks", err)
		}
		created, err := store.Tasks().ListCreatedBy(ctx, input.UserID)
		if err != nil {
			return nil, huma.Error500InternalServerError("failed to list tasks", err)
		}

		out := &ListTasksOutput{}
		out.Body.Success = true
		out.Body.MyTasks = withCreatorNames(mine)
		out.Body.CreatedTasks = withCreatorNames(created)
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-task-status",
		Method:      http.MethodPut,
		Path:        "/task/{taskId}/status",
		Summary:     "Update task status",
		Tags:        []string{"Tasks"},
	}, func(ctx context.Context, input *UpdateTaskStatusInput) (*UpdateTaskStatusOutput, error) {
		existing, err := store.Tasks().GetByID(ctx, input.TaskID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, huma.Error404NotFound("task not found")
			}
			return nil, huma.Error500InternalServerError("failed to get task", err)
		}

		target := domain.TaskStatus(input.Body.Status)
		if !target.Valid() {
			return nil, huma.Error400BadRequest("unknown task status: " + input.Body.Status)
		}

		if err := existing.Status.TransitionTo(target); err != nil {
			return nil, huma.Error400BadRequest(err.Error())
		}

		// Re-sending the current status is accepted as a no-op.
		if existing.Status != target {
			err = store.Tasks().UpdateStatus(ctx, input.TaskID, target)
			if err != nil {
				if errors.Is(err, domain.ErrNotFound) {
					return nil, huma.Error404NotFound("task not found")
				}
				return nil, huma.Error500InternalServerError("failed to update task status", err)
			}

			existing.Status = target
			existing.UpdatedAt = time.Now()
		}

		out := &UpdateTaskStatusOutput{}
		out.Body.Success = true
		out.Body.Task = existing
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "delete-task",
		Method:      http.MethodDelete,
		Path:        "/task/{taskId}",
		Summary:     "Delete a task",
		Tags:        []string{"Tasks"},
	}, func(ctx context.Context, input *DeleteTaskInput) (*SuccessOutput, error) {
		if err := store.Tasks().Delete(ctx, input.TaskID); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, huma.Error404NotFound("task not found")
			}
			return nil, huma.Error500InternalServerError("failed to delete task", err)
		}

		out := &SuccessOutput{}
		out.Body.Success = true
		return out, nil
	})
}

func withCreatorNames(tasks []*domain.Task) []*domain.Task {
	if tasks == nil {
		return []*domain.Task{}
	}
	for _, t := range tasks {
		if t.CreatorName == "" {
			t.CreatorName = unknownCreator
		}
	}
	return tasks
}
