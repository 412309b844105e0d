package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	projectdomain "github.com/projecthub-dev/projecthub-backend/internal/projects/domain"
	"github.com/projecthub-dev/projecthub-backend/internal/realtime"
	"github.com/projecthub-dev/projecthub-backend/internal/tasks/domain"
	"github.com/projecthub-dev/projecthub-backend/internal/validation"
)

type memTasks struct {
	mu    sync.Mutex
	items map[string]domain.Task
	seq   int
}

func (m *memTasks) Create(_ context.Context, t *domain.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	t.ID = fmt.Sprintf("t%d", m.seq)
	t.CreatedAt = time.Date(2025, 1, 1, 0, m.seq, 0, 0, time.UTC)
	t.UpdatedAt = t.CreatedAt
	m.items[t.ID] = *t
	return nil
}

func (m *memTasks) GetByID(_ context.Context, projectID, taskID string) (*domain.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.items[taskID]
	if !ok || t.ProjectID != projectID {
		return nil, domain.ErrNotFound
	}
	return &t, nil
}

func (m *memTasks) ListByProject(_ context.Context, projectID string) ([]domain.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Task
	for _, t := range m.items {
		if t.ProjectID == projectID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *memTasks) Update(_ context.Context, t *domain.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[t.ID]; !ok {
		return domain.ErrNotFound
	}
	m.items[t.ID] = *t
	return nil
}

func (m *memTasks) Delete(_ context.Context, projectID, taskID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t, ok := m.items[taskID]; !ok || t.ProjectID != projectID {
		return domain.ErrNotFound
	}
	delete(m.items, taskID)
	return nil
}

type projectsByID map[string]*projectdomain.Project

func (p projectsByID) GetByID(_ context.Context, id string) (*projectdomain.Project, error) {
	if pr, ok := p[id]; ok {
		return pr, nil
	}
	return nil, projectdomain.ErrNotFound
}

type recorder struct {
	mu       sync.Mutex
	events   []realtime.Event
	channels [][]string
}

func (r *recorder) Publish(_ context.Context, ev realtime.Event, channels ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	r.channels = append(r.channels, channels)
}

func newTestService() (*TaskService, *memTasks, *recorder) {
	projects := projectsByID{
		"p1": {
			ID:        "p1",
			CreatedBy: "owner",
			Members: []projectdomain.Member{
				{UserID: "owner", Email: "ana@example.com", Name: "Ana", Role: projectdomain.RoleAdmin, Avatar: "https://img/ana.png"},
				{UserID: "bob", Email: "bob@example.com", Role: projectdomain.RoleMember},
				{UserID: "vic", Email: "vic@example.com", Name: "Vic", Role: projectdomain.RoleViewer},
			},
		},
	}
	repo := &memTasks{items: map[string]domain.Task{}}
	rec := &recorder{}
	return NewTaskService(repo, projects, rec), repo, rec
}

func validForm() domain.TaskForm {
	return domain.TaskForm{
		Title:       "Write copy",
		Description: "Landing page copy",
		Status:      "pending",
		Priority:    "medium",
	}
}

func TestCreate(t *testing.T) {
	svc, _, rec := newTestService()
	ctx := context.Background()

	form := validForm()
	form.AssignedTo = "owner"
	form.DueDate = "2025-06-01"
	task, err := svc.Create(ctx, "bob", "p1", form)
	require.NoError(t, err)
	assert.Equal(t, "Ana", task.AssignedToName)
	assert.Equal(t, "https://img/ana.png", task.AssignedToAvatar)
	assert.Equal(t, "bob", task.CreatedBy)
	assert.Equal(t, []string{}, task.Tags)
	require.NotNil(t, task.DueDate)

	require.Len(t, rec.events, 1)
	assert.Equal(t, realtime.EventCreated, rec.events[0].Type)
	assert.Equal(t, realtime.EntityTask, rec.events[0].Entity)
	assert.Equal(t, []string{"pm:project:p1", "pm:task:" + task.ID}, rec.channels[0])

	t.Run("assignee without name falls back to email", func(t *testing.T) {
		form := validForm()
		form.AssignedTo = "bob"
		task, err := svc.Create(ctx, "owner", "p1", form)
		require.NoError(t, err)
		assert.Equal(t, "bob@example.com", task.AssignedToName)
	})

	t.Run("assignee must be a member", func(t *testing.T) {
		form := validForm()
		form.AssignedTo = "stranger"
		_, err := svc.Create(ctx, "owner", "p1", form)
		fields, ok := validation.AsFieldErrors(err)
		require.True(t, ok)
		assert.Contains(t, fields, "assigned_to")
	})

	t.Run("viewer cannot write", func(t *testing.T) {
		_, err := svc.Create(ctx, "vic", "p1", validForm())
		assert.ErrorIs(t, err, projectdomain.ErrForbidden)
	})

	t.Run("outsider cannot write", func(t *testing.T) {
		_, err := svc.Create(ctx, "eve", "p1", validForm())
		assert.ErrorIs(t, err, projectdomain.ErrForbidden)
	})

	t.Run("missing project", func(t *testing.T) {
		_, err := svc.Create(ctx, "owner", "nope", validForm())
		assert.ErrorIs(t, err, projectdomain.ErrNotFound)
	})

	t.Run("invalid form", func(t *testing.T) {
		form := validForm()
		form.Title = "x"
		_, err := svc.Create(ctx, "owner", "p1", form)
		_, ok := validation.AsFieldErrors(err)
		assert.True(t, ok)
	})
}

func TestUpdate(t *testing.T) {
	svc, repo, rec := newTestService()
	ctx := context.Background()

	form := validForm()
	form.AssignedTo = "bob"
	form.Tags = []string{"web"}
	task, err := svc.Create(ctx, "owner", "p1", form)
	require.NoError(t, err)

	status := "completed"
	assignee := "owner"
	updated, err := svc.Update(ctx, "bob", "p1", task.ID, domain.UpdateTaskRequest{Status: &status, AssignedTo: &assignee})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, updated.Status)
	assert.Equal(t, "Ana", updated.AssignedToName)
	assert.Equal(t, []string{"web"}, updated.Tags)
	assert.Equal(t, realtime.EventUpdated, rec.events[len(rec.events)-1].Type)

	stored, _ := repo.GetByID(ctx, "p1", task.ID)
	assert.Equal(t, domain.StatusCompleted, stored.Status)

	none := ""
	updated, err = svc.Update(ctx, "owner", "p1", task.ID, domain.UpdateTaskRequest{AssignedTo: &none})
	require.NoError(t, err)
	assert.Empty(t, updated.AssignedTo)
	assert.Empty(t, updated.AssignedToName)
	assert.Empty(t, updated.AssignedToAvatar)

	bad := "done"
	_, err = svc.Update(ctx, "owner", "p1", task.ID, domain.UpdateTaskRequest{Status: &bad})
	fields, ok := validation.AsFieldErrors(err)
	require.True(t, ok)
	assert.Contains(t, fields, "status")

	_, err = svc.Update(ctx, "vic", "p1", task.ID, domain.UpdateTaskRequest{Status: &status})
	assert.ErrorIs(t, err, projectdomain.ErrForbidden)

	_, err = svc.Update(ctx, "owner", "p1", "missing", domain.UpdateTaskRequest{Status: &status})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDelete(t *testing.T) {
	svc, _, rec := newTestService()
	ctx := context.Background()

	task, err := svc.Create(ctx, "owner", "p1", validForm())
	require.NoError(t, err)

	assert.ErrorIs(t, svc.Delete(ctx, "vic", "p1", task.ID), projectdomain.ErrForbidden)
	require.NoError(t, svc.Delete(ctx, "bob", "p1", task.ID))
	last := rec.events[len(rec.events)-1]
	assert.Equal(t, realtime.EventDeleted, last.Type)
	assert.Equal(t, task.ID, last.TaskID)

	assert.ErrorIs(t, svc.Delete(ctx, "bob", "p1", task.ID), domain.ErrNotFound)
}

func TestList(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	mine := validForm()
	mine.AssignedTo = "vic"
	mine.Priority = "low"
	_, err := svc.Create(ctx, "owner", "p1", mine)
	require.NoError(t, err)

	other := validForm()
	other.Priority = "high"
	other.Status = "completed"
	_, err = svc.Create(ctx, "owner", "p1", other)
	require.NoError(t, err)

	all, err := svc.List(ctx, "vic", "p1", ListOptions{Filter: domain.FilterAll, Sort: domain.SortCreatedAt})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "t2", all[0].ID, "newest first")

	assigned, err := svc.List(ctx, "vic", "p1", ListOptions{Filter: domain.FilterMine})
	require.NoError(t, err)
	require.Len(t, assigned, 1)
	assert.Equal(t, "vic", assigned[0].AssignedTo)

	byPriority, err := svc.List(ctx, "vic", "p1", ListOptions{Filter: domain.FilterAll, Sort: domain.SortPriority})
	require.NoError(t, err)
	assert.Equal(t, domain.PriorityHigh, byPriority[0].Priority)

	_, err = svc.List(ctx, "eve", "p1", ListOptions{})
	assert.ErrorIs(t, err, projectdomain.ErrForbidden)
}
