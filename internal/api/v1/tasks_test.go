package v1_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	v1 "github.com/gosuda/planner/internal/api/v1"
	"github.com/gosuda/planner/internal/domain"
)

// ---------------------------------------------------------------------------
// TestCreateTask
// ---------------------------------------------------------------------------

func TestCreateTask(t *testing.T) {
	t.Parallel()

	creatorID := uuid.New()
	assigneeID := uuid.New()

	t.Run("happy_path", func(t *testing.T) {
		t.Parallel()

		var created *domain.Task
		_, api := humatest.New(t)
		store := &mockDataStore{
			users: &mockUserRepo{
				getByIDFunc: func(_ context.Context, id uuid.UUID) (*domain.User, error) {
					return &domain.User{ID: id, Username: "u"}, nil
				},
			},
			tasks: &mockTaskRepo{
				createFunc: func(_ context.Context, task *domain.Task) error {
					created = task
					return nil
				},
			},
		}
		v1.RegisterTaskRoutes(api, store)

		resp := api.Post("/create_task", map[string]any{
			"title":       "Count pallets",
			"description": "Aisle 7",
			"due_date":    "2026-10-20",
			"created_by":  creatorID.String(),
			"assigned_to": assigneeID.String(),
		})

		require.Equal(t, http.StatusOK, resp.Code)
		require.NotNil(t, created, "store.Tasks().Create must be invoked")
		assert.Equal(t, "Count pallets", created.Title)
		assert.Equal(t, "Aisle 7", created.Description)
		assert.Equal(t, "2026-10-20", created.DueDate)
		assert.Equal(t, domain.TaskStatusPending, created.Status)
		require.NotNil(t, created.CreatedBy)
		assert.Equal(t, creatorID, *created.CreatedBy)
		require.NotNil(t, created.AssignedTo)
		assert.Equal(t, assigneeID, *created.AssignedTo)

		var body struct {
			Success bool      `json:"success"`
			TaskID  uuid.UUID `json:"task_id"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.True(t, body.Success)
		assert.Equal(t, created.ID, body.TaskID)
	})

	t.Run("minimal_body", func(t *testing.T) {
		t.Parallel()

		var createCalled bool
		_, api := humatest.New(t)
		store := &mockDataStore{
			users: &mockUserRepo{},
			tasks: &mockTaskRepo{
				createFunc: func(_ context.Context, task *domain.Task) error {
					createCalled = true
					assert.Nil(t, task.CreatedBy)
					assert.Nil(t, task.AssignedTo)
					return nil
				},
			},
		}
		v1.RegisterTaskRoutes(api, store)

		resp := api.Post("/create_task", map[string]any{"title": "Restock"})

		require.Equal(t, http.StatusOK, resp.Code)
		assert.True(t, createCalled)
	})

	t.Run("unknown_assignee", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		store := &mockDataStore{
			users: &mockUserRepo{
				getByIDFunc: func(_ context.Context, _ uuid.UUID) (*domain.User, error) {
					return nil, domain.ErrNotFound
				},
			},
			tasks: &mockTaskRepo{},
		}
		v1.RegisterTaskRoutes(api, store)

		resp := api.Post("/create_task", map[string]any{
			"title":       "Restock",
			"assigned_to": assigneeID.String(),
		})

		assert.Equal(t, http.StatusNotFound, resp.Code)
	})

	t.Run("empty_title", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		v1.RegisterTaskRoutes(api, &mockDataStore{tasks: &mockTaskRepo{}, users: &mockUserRepo{}})

		resp := api.Post("/create_task", map[string]any{"title": ""})

		assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)
	})

	t.Run("store_error", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		store := &mockDataStore{
			users: &mockUserRepo{},
			tasks: &mockTaskRepo{
				createFunc: func(_ context.Context, _ *domain.Task) error {
					return errors.New("db down")
				},
			},
		}
		v1.RegisterTaskRoutes(api, store)

		resp := api.Post("/create_task", map[string]any{"title": "Restock"})

		assert.Equal(t, http.StatusInternalServerError, resp.Code)
	})
}

// ---------------------------------------------------------------------------
// TestListTasks
// ---------------------------------------------------------------------------

func TestListTasks(t *testing.T) {
	t.Parallel()

	userID := uuid.New()

	t.Run("happy_path", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		store := &mockDataStore{
			tasks: &mockTaskRepo{
				listAssignedToFunc: func(_ context.Context, uid uuid.UUID) ([]*domain.Task, error) {
					assert.Equal(t, userID, uid)
					return []*domain.Task{{ID: uuid.New(), Title: "mine", CreatorName: "boss"}}, nil
				},
				listCreatedByFunc: func(_ context.Context, uid uuid.UUID) ([]*domain.Task, error) {
					assert.Equal(t, userID, uid)
					return []*domain.Task{{ID: uuid.New(), Title: "orphan"}}, nil
				},
			},
		}
		v1.RegisterTaskRoutes(api, store)

		resp := api.Get("/tasks?user_id=" + userID.String())

		require.Equal(t, http.StatusOK, resp.Code)
		var body struct {
			Success      bool           `json:"success"`
			MyTasks      []*domain.Task `json:"my_tasks"`
			CreatedTasks []*domain.Task `json:"created_tasks"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.True(t, body.Success)
		require.Len(t, body.MyTasks, 1)
		assert.Equal(t, "boss", body.MyTasks[0].CreatorName)
		require.Len(t, body.CreatedTasks, 1)
		assert.Equal(t, "Unknown", body.CreatedTasks[0].CreatorName)
	})

	t.Run("empty_lists_are_arrays", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		store := &mockDataStore{
			tasks: &mockTaskRepo{
				listAssignedToFunc: func(_ context.Context, _ uuid.UUID) ([]*domain.Task, error) { return nil, nil },
				listCreatedByFunc:  func(_ context.Context, _ uuid.UUID) ([]*domain.Task, error) { return nil, nil },
			},
		}
		v1.RegisterTaskRoutes(api, store)

		resp := api.Get("/tasks?user_id=" + userID.String())

		require.Equal(t, http.StatusOK, resp.Code)
		assert.Contains(t, resp.Body.String(), `"my_tasks":[]`)
		assert.Contains(t, resp.Body.String(), `"created_tasks":[]`)
	})

	t.Run("missing_user_id", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		v1.RegisterTaskRoutes(api, &mockDataStore{tasks: &mockTaskRepo{}})

		resp := api.Get("/tasks")

		assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)
	})

	t.Run("store_error", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		store := &mockDataStore{
			tasks: &mockTaskRepo{
				listAssignedToFunc: func(_ context.Context, _ uuid.UUID) ([]*domain.Task, error) {
					return nil, errors.New("db down")
				},
			},
		}
		v1.RegisterTaskRoutes(api, store)

		resp := api.Get("/tasks?user_id=" + userID.String())

		assert.Equal(t, http.StatusInternalServerError, resp.Code)
	})
}

// ---------------------------------------------------------------------------
// TestUpdateTaskStatus
// ---------------------------------------------------------------------------

func TestUpdateTaskStatus(t *testing.T) {
	t.Parallel()

	taskID := uuid.New()
	yesterday := time.Now().Add(-24 * time.Hour)

	t.Run("happy_path", func(t *testing.T) {
		t.Parallel()

		var updated domain.TaskStatus
		_, api := humatest.New(t)
		store := &mockDataStore{
			tasks: &mockTaskRepo{
				getByIDFunc: func(_ context.Context, id uuid.UUID) (*domain.Task, error) {
					assert.Equal(t, taskID, id)
					return &domain.Task{ID: taskID, Status: domain.TaskStatusPending, UpdatedAt: yesterday}, nil
				},
				updateStatusFunc: func(_ context.Context, id uuid.UUID, status domain.TaskStatus) error {
					assert.Equal(t, taskID, id)
					updated = status
					return nil
				},
			},
		}
		v1.RegisterTaskRoutes(api, store)

		resp := api.Put("/task/"+taskID.String()+"/status", map[string]any{"status": "in_progress"})

		require.Equal(t, http.StatusOK, resp.Code)
		assert.Equal(t, domain.TaskStatusInProgress, updated)

		var body struct {
			Success bool         `json:"success"`
			Task    *domain.Task `json:"task"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.True(t, body.Success)
		require.NotNil(t, body.Task)
		assert.Equal(t, domain.TaskStatusInProgress, body.Task.Status)
		assert.True(t, body.Task.UpdatedAt.After(yesterday))
	})

	t.Run("same_status_is_noop", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		store := &mockDataStore{
			tasks: &mockTaskRepo{
				getByIDFunc: func(_ context.Context, _ uuid.UUID) (*domain.Task, error) {
					return &domain.Task{ID: taskID, Status: domain.TaskStatusCompleted}, nil
				},
			},
		}
		v1.RegisterTaskRoutes(api, store)

		resp := api.Put("/task/"+taskID.String()+"/status", map[string]any{"status": "completed"})

		assert.Equal(t, http.StatusOK, resp.Code)
	})

	t.Run("invalid_transition", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		store := &mockDataStore{
			tasks: &mockTaskRepo{
				getByIDFunc: func(_ context.Context, _ uuid.UUID) (*domain.Task, error) {
					return &domain.Task{ID: taskID, Status: domain.TaskStatusCancelled}, nil
				},
			},
		}
		v1.RegisterTaskRoutes(api, store)

		resp := api.Put("/task/"+taskID.String()+"/status", map[string]any{"status": "completed"})

		assert.Equal(t, http.StatusBadRequest, resp.Code)
		assert.Contains(t, resp.Body.String(), "invalid state transition: cancelled to completed")
	})

	t.Run("unknown_status", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		v1.RegisterTaskRoutes(api, &mockDataStore{tasks: &mockTaskRepo{}})

		resp := api.Put("/task/"+taskID.String()+"/status", map[string]any{"status": "archived"})

		assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)
	})

	t.Run("not_found", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		store := &mockDataStore{
			tasks: &mockTaskRepo{
				getByIDFunc: func(_ context.Context, _ uuid.UUID) (*domain.Task, error) {
					return nil, domain.ErrNotFound
				},
			},
		}
		v1.RegisterTaskRoutes(api, store)

		resp := api.Put("/task/"+uuid.New().String()+"/status", map[string]any{"status": "pending"})

		assert.Equal(t, http.StatusNotFound, resp.Code)
	})
}

// ---------------------------------------------------------------------------
// TestDeleteTask
// ---------------------------------------------------------------------------

func TestDeleteTask(t *testing.T) {
	t.Parallel()

	taskID := uuid.New()

	t.Run("happy_path", func(t *testing.T) {
		t.Parallel()

		var deleted uuid.UUID
		_, api := humatest.New(t)
		store := &mockDataStore{
			tasks: &mockTaskRepo{
				deleteFunc: func(_ context.Context, id uuid.UUID) error {
					deleted = id
					return nil
				},
			},
		}
		v1.RegisterTaskRoutes(api, store)

		resp := api.Delete("/task/" + taskID.String())

		require.Equal(t, http.StatusOK, resp.Code)
		assert.Equal(t, taskID, deleted)
		var body struct {
			Success bool `json:"success"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.True(t, body.Success)
	})

	t.Run("not_found", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		store := &mockDataStore{
			tasks: &mockTaskRepo{
				deleteFunc: func(_ context.Context, _ uuid.UUID) error {
					return domain.ErrNotFound
				},
			},
		}
		v1.RegisterTaskRoutes(api, store)

		resp := api.Delete("/task/" + taskID.String())

		assert.Equal(t, http.StatusNotFound, resp.Code)
	})
}
