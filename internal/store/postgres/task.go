package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gosuda/planner/internal/domain"
)

// taskColumns selects a task together with its creator's username.
const taskColumns = `SELECT t.id, t.title, t.description, t.due_date, t.created_by, t.assigned_to,
	        t.status, COALESCE(u.username, ''), t.created_at, t.updated_at
	 FROM tasks t LEFT JOIN users u ON u.id = t.created_by`

type TaskRepo struct {
	pool *pgxpool.Pool
}

func NewTaskRepo(pool *pgxpool.Pool) *TaskRepo {
	return &TaskRepo{pool: pool}
}

func (r *TaskRepo) Create(ctx context.Context, t *domain.Task) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO tasks (id, title, description, due_date, created_by, assigned_to, status, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		t.ID, t.Title, t.Description, t.DueDate, t.CreatedBy, t.AssignedTo,
		t.Status, t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("taskRepo.Create: %w", mapWriteErr(err))
	}

	return nil
}

func (r *TaskRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	var t domain.Task

	err := r.pool.QueryRow(ctx, taskColumns+` WHERE t.id = $1`, id).Scan(
		&t.ID, &t.Title, &t.Description, &t.DueDate, &t.CreatedBy, &t.AssignedTo,
		&t.Status, &t.CreatorName, &t.CreatedAt, &t.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("taskRepo.GetByID: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("taskRepo.GetByID: %w", err)
	}

	return &t, nil
}

func (r *TaskRepo) ListAssignedTo(ctx context.Context, userID uuid.UUID) ([]*domain.Task, error) {
	rows, err := r.pool.Query(ctx,
		taskColumns+` WHERE t.assigned_to = $1 ORDER BY t.created_at LIMIT 1000`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("taskRepo.ListAssignedTo: %w", err)
	}
	defer rows.Close()

	return scanTasks(rows, "taskRepo.ListAssignedTo")
}

func (r *TaskRepo) ListCreatedBy(ctx context.Context, userID uuid.UUID) ([]*domain.Task, error) {
	rows, err := r.pool.Query(ctx,
		taskColumns+` WHERE t.created_by = $1 ORDER BY t.created_at LIMIT 1000`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("taskRepo.ListCreatedBy: %w", err)
	}
	defer rows.Close()

	return scanTasks(rows, "taskRepo.ListCreatedBy")
}

func (r *TaskRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.TaskStatus) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE tasks SET status = $1, updated_at = now() WHERE id = $2`,
		status, id,
	)
	if err != nil {
		return fmt.Errorf("taskRepo.UpdateStatus: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("taskRepo.UpdateStatus: %w", domain.ErrNotFound)
	}

	return nil
}

func (r *TaskRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("taskRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("taskRepo.Delete: %w", domain.ErrNotFound)
	}

	return nil
}

func scanTasks(rows pgx.Rows, caller string) ([]*domain.Task, error) {
	var tasks []*domain.Task
	for rows.Next() {
		var t domain.Task
		if err := rows.Scan(
			&t.ID, &t.Title, &t.Description, &t.DueDate, &t.CreatedBy, &t.AssignedTo,
			&t.Status, &t.CreatorName, &t.CreatedAt, &t.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("%s: scan: %w", caller, err)
		}
		tasks = append(tasks, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows: %w", caller, err)
	}

	return tasks, nil
}
