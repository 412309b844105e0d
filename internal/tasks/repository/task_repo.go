package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/projecthub-dev/projecthub-backend/internal/tasks/domain"
)

// TaskRepository provides persistence operations for tasks
type TaskRepository struct {
	db *sql.DB
}

func NewTaskRepository(db *sql.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

const taskColumns = `id, project_id, title, description, status, priority, assigned_to, assigned_to_name,
  assigned_to_avatar, due_date, tags, created_by, created_at, updated_at`

func scanTask(row interface{ Scan(...any) error }) (*domain.Task, error) {
	var t domain.Task
	var assignedTo, assignedName, assignedAvatar sql.NullString
	var due sql.NullTime
	var tags pq.StringArray
	if err := row.Scan(&t.ID, &t.ProjectID, &t.Title, &t.Description, &t.Status, &t.Priority,
		&assignedTo, &assignedName, &assignedAvatar, &due, &tags, &t.CreatedBy, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	t.AssignedTo = assignedTo.String
	t.AssignedToName = assignedName.String
	t.AssignedToAvatar = assignedAvatar.String
	if due.Valid {
		d := due.Time
		t.DueDate = &d
	}
	t.Tags = []string(tags)
	if t.Tags == nil {
		t.Tags = []string{}
	}
	return &t, nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func (r *TaskRepository) Create(ctx context.Context, t *domain.Task) error {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}

	const q = `
INSERT INTO tasks (id, project_id, title, description, status, priority, assigned_to, assigned_to_name,
  assigned_to_avatar, due_date, tags, created_by)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
RETURNING created_at, updated_at;
`
	err := r.db.QueryRowContext(ctx, q, t.ID, t.ProjectID, t.Title, t.Description, t.Status, t.Priority,
		nullable(t.AssignedTo), nullable(t.AssignedToName), nullable(t.AssignedToAvatar), t.DueDate,
		pq.Array(t.Tags), t.CreatedBy).
		Scan(&t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert task: %w", err)
	}
	return nil
}

// GetByID returns a task within projectID.
func (r *TaskRepository) GetByID(ctx context.Context, projectID, taskID string) (*domain.Task, error) {
	q := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1 AND project_id = $2`
	t, err := scanTask(r.db.QueryRowContext(ctx, q, taskID, projectID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get task: %w", err)
	}
	return t, nil
}

// ListByProject returns the project's tasks, newest first.
func (r *TaskRepository) ListByProject(ctx context.Context, projectID string) ([]domain.Task, error) {
	q := `SELECT ` + taskColumns + ` FROM tasks WHERE project_id = $1 ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, q, projectID)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Task, 0, 32)
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *TaskRepository) Update(ctx context.Context, t *domain.Task) error {
	const q = `
UPDATE tasks
SET title = $3, description = $4, status = $5, priority = $6, assigned_to = $7, assigned_to_name = $8,
  assigned_to_avatar = $9, due_date = $10, tags = $11, updated_at = now()
WHERE id = $1 AND project_id = $2
RETURNING updated_at;
`
	err := r.db.QueryRowContext(ctx, q, t.ID, t.ProjectID, t.Title, t.Description, t.Status, t.Priority,
		nullable(t.AssignedTo), nullable(t.AssignedToName), nullable(t.AssignedToAvatar), t.DueDate,
		pq.Array(t.Tags)).
		Scan(&t.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	return nil
}

// Delete removes a task; its comments go with it.
func (r *TaskRepository) Delete(ctx context.Context, projectID, taskID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1 AND project_id = $2`, taskID, projectID)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// CountByProject returns how many tasks the project has and how many are
// completed.
func (r *TaskRepository) CountByProject(ctx context.Context, projectID string) (total, completed int, err error) {
	const q = `
SELECT count(*), count(*) FILTER (WHERE status = 'completed')
FROM tasks
WHERE project_id = $1;
`
	if err := r.db.QueryRowContext(ctx, q, projectID).Scan(&total, &completed); err != nil {
		return 0, 0, fmt.Errorf("count tasks: %w", err)
	}
	return total, completed, nil
}
