package service

import (
	"context"

	"github.com/projecthub-dev/projecthub-backend/internal/logging"
	projectdomain "github.com/projecthub-dev/projecthub-backend/internal/projects/domain"
	"github.com/projecthub-dev/projecthub-backend/internal/realtime"
	"github.com/projecthub-dev/projecthub-backend/internal/tasks/domain"
	"github.com/projecthub-dev/projecthub-backend/internal/validation"
)

type TaskStore interface {
	Create(ctx context.Context, t *domain.Task) error
	GetByID(ctx context.Context, projectID, taskID string) (*domain.Task, error)
	ListByProject(ctx context.Context, projectID string) ([]domain.Task, error)
	Update(ctx context.Context, t *domain.Task) error
	Delete(ctx context.Context, projectID, taskID string) error
}

// ProjectReader loads the owning project for permission checks.
type ProjectReader interface {
	GetByID(ctx context.Context, id string) (*projectdomain.Project, error)
}

// ListOptions selects and orders the task list.
type ListOptions struct {
	Filter domain.Filter
	Sort   domain.SortKey
}

// TaskService handles task business logic
type TaskService struct {
	repo     TaskStore
	projects ProjectReader
	events   realtime.Publisher
}

func NewTaskService(repo TaskStore, projects ProjectReader, events realtime.Publisher) *TaskService {
	return &TaskService{repo: repo, projects: projects, events: events}
}

// Create adds a task to a project the caller can write to.
func (s *TaskService) Create(ctx context.Context, userID, projectID string, form domain.TaskForm) (*domain.Task, error) {
	p, err := s.load(ctx, userID, projectID, projectdomain.CanWriteTasks)
	if err != nil {
		return nil, err
	}

	due, err := form.Validate()
	if err != nil {
		return nil, err
	}

	t := &domain.Task{
		ProjectID:   projectID,
		Title:       form.Title,
		Description: form.Description,
		Status:      domain.Status(form.Status),
		Priority:    domain.Priority(form.Priority),
		DueDate:     due,
		Tags:        tagsOrEmpty(form.Tags),
		CreatedBy:   userID,
	}
	if err := assign(t, p, form.AssignedTo); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, t); err != nil {
		return nil, err
	}

	logging.New(ctx).Infof("tasks.create", "task_id=%s project_id=%s user_id=%s", t.ID, projectID, userID)
	s.publish(ctx, realtime.EventCreated, t)
	return t, nil
}

// List returns the project's tasks filtered and sorted for the caller.
func (s *TaskService) List(ctx context.Context, userID, projectID string, opts ListOptions) ([]domain.Task, error) {
	if _, err := s.load(ctx, userID, projectID, projectdomain.CanView); err != nil {
		return nil, err
	}

	items, err := s.repo.ListByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	return domain.Apply(items, userID, opts.Filter, opts.Sort), nil
}

// Update applies a partial edit and re-validates the merged task.
func (s *TaskService) Update(ctx context.Context, userID, projectID, taskID string, req domain.UpdateTaskRequest) (*domain.Task, error) {
	p, err := s.load(ctx, userID, projectID, projectdomain.CanWriteTasks)
	if err != nil {
		return nil, err
	}

	t, err := s.repo.GetByID(ctx, projectID, taskID)
	if err != nil {
		return nil, err
	}

	form := req.Merge(t)
	due, err := form.Validate()
	if err != nil {
		return nil, err
	}

	t.Title = form.Title
	t.Description = form.Description
	t.Status = domain.Status(form.Status)
	t.Priority = domain.Priority(form.Priority)
	t.DueDate = due
	t.Tags = tagsOrEmpty(form.Tags)
	if err := assign(t, p, form.AssignedTo); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, t); err != nil {
		return nil, err
	}

	s.publish(ctx, realtime.EventUpdated, t)
	return t, nil
}

func (s *TaskService) Delete(ctx context.Context, userID, projectID, taskID string) error {
	if _, err := s.load(ctx, userID, projectID, projectdomain.CanWriteTasks); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, projectID, taskID); err != nil {
		return err
	}

	logging.New(ctx).Infof("tasks.delete", "task_id=%s project_id=%s user_id=%s", taskID, projectID, userID)
	s.publish(ctx, realtime.EventDeleted, &domain.Task{ID: taskID, ProjectID: projectID})
	return nil
}

func (s *TaskService) load(ctx context.Context, userID, projectID string, allowed func(*projectdomain.Project, string) bool) (*projectdomain.Project, error) {
	p, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if !allowed(p, userID) {
		return nil, projectdomain.ErrForbidden
	}
	return p, nil
}

func (s *TaskService) publish(ctx context.Context, typ realtime.EventType, t *domain.Task) {
	s.events.Publish(ctx,
		realtime.Event{Type: typ, Entity: realtime.EntityTask, ID: t.ID, ProjectID: t.ProjectID, TaskID: t.ID},
		realtime.ProjectChannel(t.ProjectID), realtime.TaskChannel(t.ID))
}

// assign sets the assignee and copies their display fields from the
// project's member list. An empty id clears the assignment.
func assign(t *domain.Task, p *projectdomain.Project, userID string) error {
	t.AssignedTo, t.AssignedToName, t.AssignedToAvatar = "", "", ""
	if userID == "" {
		return nil
	}

	m, ok := p.Member(userID)
	if !ok {
		return validation.FieldErrors{"assigned_to": "assignee must be a project member"}
	}
	t.AssignedTo = m.UserID
	t.AssignedToName = m.Name
	if t.AssignedToName == "" {
		t.AssignedToName = m.Email
	}
	t.AssignedToAvatar = m.Avatar
	return nil
}

func tagsOrEmpty(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}
