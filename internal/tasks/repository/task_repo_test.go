package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/projecthub-dev/projecthub-backend/internal/tasks/domain"
)

func setupRepo(t *testing.T) (*TaskRepository, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewTaskRepository(db), mock
}

var taskCols = []string{"id", "project_id", "title", "description", "status", "priority", "assigned_to",
	"assigned_to_name", "assigned_to_avatar", "due_date", "tags", "created_by", "created_at", "updated_at"}

func TestTaskRepository_Create(t *testing.T) {
	repo, mock := setupRepo(t)
	now := time.Now()

	task := &domain.Task{
		ProjectID:   "p1",
		Title:       "Write copy",
		Description: "Landing page copy",
		Status:      domain.StatusPending,
		Priority:    domain.PriorityHigh,
		Tags:        []string{"web", "copy"},
		CreatedBy:   "u1",
	}
	mock.ExpectQuery(`INSERT INTO tasks`).
		WithArgs(sqlmock.AnyArg(), "p1", "Write copy", "Landing page copy", "pending", "high",
			nil, nil, nil, nil, `{"web","copy"}`, "u1").
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

	require.NoError(t, repo.Create(context.Background(), task))
	assert.NotEmpty(t, task.ID)
	assert.Equal(t, now, task.CreatedAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskRepository_ListByProject(t *testing.T) {
	repo, mock := setupRepo(t)
	now := time.Now()
	due := now.Add(24 * time.Hour)

	mock.ExpectQuery(`FROM tasks WHERE project_id = \$1 ORDER BY created_at DESC`).
		WithArgs("p1").
		WillReturnRows(sqlmock.NewRows(taskCols).
			AddRow("t2", "p1", "Second", "Second task", "completed", "low", "u2", "Bob", nil, due, `{web}`, "u1", now, now).
			AddRow("t1", "p1", "First", "First task", "pending", "high", nil, nil, nil, nil, `{}`, "u1", now, now))

	items, err := repo.ListByProject(context.Background(), "p1")
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Bob", items[0].AssignedToName)
	require.NotNil(t, items[0].DueDate)
	assert.Equal(t, due, *items[0].DueDate)
	assert.Equal(t, []string{"web"}, items[0].Tags)
	assert.Nil(t, items[1].DueDate)
	assert.Empty(t, items[1].AssignedTo)
	assert.NotNil(t, items[1].Tags)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskRepository_GetUpdateDelete(t *testing.T) {
	repo, mock := setupRepo(t)
	ctx := context.Background()
	now := time.Now()

	mock.ExpectQuery(`FROM tasks WHERE id = \$1 AND project_id = \$2`).
		WithArgs("missing", "p1").
		WillReturnError(sql.ErrNoRows)
	_, err := repo.GetByID(ctx, "p1", "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	task := &domain.Task{ID: "t1", ProjectID: "p1", Title: "T", Description: "D", Status: domain.StatusCompleted, Priority: domain.PriorityLow, AssignedTo: "u2", AssignedToName: "Bob", Tags: []string{}}
	mock.ExpectQuery(`UPDATE tasks`).
		WithArgs("t1", "p1", "T", "D", "completed", "low", "u2", "Bob", nil, nil, `{}`).
		WillReturnRows(sqlmock.NewRows([]string{"updated_at"}).AddRow(now))
	require.NoError(t, repo.Update(ctx, task))
	assert.Equal(t, now, task.UpdatedAt)

	mock.ExpectExec(`DELETE FROM tasks`).WithArgs("t1", "p1").WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.Delete(ctx, "p1", "t1"))

	mock.ExpectExec(`DELETE FROM tasks`).WithArgs("t1", "p1").WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, repo.Delete(ctx, "p1", "t1"), domain.ErrNotFound)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskRepository_CountByProject(t *testing.T) {
	repo, mock := setupRepo(t)

	mock.ExpectQuery(`count\(\*\) FILTER \(WHERE status = 'completed'\)`).
		WithArgs("p1").
		WillReturnRows(sqlmock.NewRows([]string{"count", "count"}).AddRow(5, 2))

	total, completed, err := repo.CountByProject(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, 5, total)
	assert.Equal(t, 2, completed)
	require.NoError(t, mock.ExpectationsWereMet())
}
