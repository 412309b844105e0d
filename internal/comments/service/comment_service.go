package service

import (
	"context"
	"errors"

	"github.com/projecthub-dev/projecthub-backend/internal/comments/domain"
	"github.com/projecthub-dev/projecthub-backend/internal/logging"
	projectdomain "github.com/projecthub-dev/projecthub-backend/internal/projects/domain"
	"github.com/projecthub-dev/projecthub-backend/internal/realtime"
	taskdomain "github.com/projecthub-dev/projecthub-backend/internal/tasks/domain"
	"github.com/projecthub-dev/projecthub-backend/internal/users"
)

type CommentStore interface {
	Create(ctx context.Context, c *domain.Comment) error
	GetByID(ctx context.Context, id string) (*domain.Comment, error)
	ListByTask(ctx context.Context, taskID string) ([]domain.Comment, error)
	UpdateContent(ctx context.Context, c *domain.Comment) error
	Delete(ctx context.Context, id string) error
}

type ProjectReader interface {
	GetByID(ctx context.Context, id string) (*projectdomain.Project, error)
}

type TaskReader interface {
	GetByID(ctx context.Context, projectID, taskID string) (*taskdomain.Task, error)
}

type UserReader interface {
	GetByID(ctx context.Context, id string) (*users.User, error)
}

// CommentService handles task comments
type CommentService struct {
	repo     CommentStore
	projects ProjectReader
	tasks    TaskReader
	users    UserReader
	events   realtime.Publisher
}

func NewCommentService(repo CommentStore, projects ProjectReader, tasks TaskReader, userReader UserReader, events realtime.Publisher) *CommentService {
	return &CommentService{
		repo:     repo,
		projects: projects,
		tasks:    tasks,
		users:    userReader,
		events:   events,
	}
}

// Create posts a comment on a task the caller can see.
func (s *CommentService) Create(ctx context.Context, userID, projectID, taskID string, form domain.CommentForm) (*domain.Comment, error) {
	p, err := s.load(ctx, userID, projectID, taskID, projectdomain.CanComment)
	if err != nil {
		return nil, err
	}
	if err := form.Validate(); err != nil {
		return nil, err
	}

	name, avatar, err := s.author(ctx, p, userID)
	if err != nil {
		return nil, err
	}

	c := &domain.Comment{
		TaskID:          taskID,
		ProjectID:       projectID,
		Content:         form.Content,
		CreatedBy:       userID,
		CreatedByName:   name,
		CreatedByAvatar: avatar,
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}

	logging.New(ctx).Infof("comments.create", "comment_id=%s task_id=%s user_id=%s", c.ID, taskID, userID)
	s.publish(ctx, realtime.EventCreated, c)
	return c, nil
}

// List returns a task's comments, oldest first.
func (s *CommentService) List(ctx context.Context, userID, projectID, taskID string) ([]domain.Comment, error) {
	if _, err := s.load(ctx, userID, projectID, taskID, projectdomain.CanView); err != nil {
		return nil, err
	}
	return s.repo.ListByTask(ctx, taskID)
}

// Update edits the caller's own comment.
func (s *CommentService) Update(ctx context.Context, userID, commentID string, form domain.CommentForm) (*domain.Comment, error) {
	c, err := s.own(ctx, userID, commentID)
	if err != nil {
		return nil, err
	}
	if err := form.Validate(); err != nil {
		return nil, err
	}

	c.Content = form.Content
	if err := s.repo.UpdateContent(ctx, c); err != nil {
		return nil, err
	}

	s.publish(ctx, realtime.EventUpdated, c)
	return c, nil
}

// Delete removes the caller's own comment.
func (s *CommentService) Delete(ctx context.Context, userID, commentID string) error {
	c, err := s.own(ctx, userID, commentID)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, commentID); err != nil {
		return err
	}

	s.publish(ctx, realtime.EventDeleted, c)
	return nil
}

// load checks project access and that the task belongs to the project.
func (s *CommentService) load(ctx context.Context, userID, projectID, taskID string, allowed func(*projectdomain.Project, string) bool) (*projectdomain.Project, error) {
	p, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if !allowed(p, userID) {
		return nil, projectdomain.ErrForbidden
	}
	if _, err := s.tasks.GetByID(ctx, projectID, taskID); err != nil {
		return nil, err
	}
	return p, nil
}

// own loads a comment the caller wrote on a project they can still reach.
// Comments of deleted projects read as missing.
func (s *CommentService) own(ctx context.Context, userID, commentID string) (*domain.Comment, error) {
	c, err := s.repo.GetByID(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if c.CreatedBy != userID {
		return nil, domain.ErrNotAuthor
	}

	p, err := s.projects.GetByID(ctx, c.ProjectID)
	if errors.Is(err, projectdomain.ErrNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if !projectdomain.CanComment(p, userID) {
		return nil, projectdomain.ErrForbidden
	}
	return c, nil
}

// author resolves the cached display name: member name, account name,
// email, then "User".
func (s *CommentService) author(ctx context.Context, p *projectdomain.Project, userID string) (name, avatar string, err error) {
	var memberName, memberEmail string
	if m, ok := p.Member(userID); ok {
		memberName, memberEmail, avatar = m.Name, m.Email, m.Avatar
	}

	var userName, userEmail string
	u, err := s.users.GetByID(ctx, userID)
	switch {
	case err == nil:
		userName, userEmail = u.Name, u.Email
		if avatar == "" && u.PhotoURL != nil {
			avatar = *u.PhotoURL
		}
	case !errors.Is(err, users.ErrUserNotFound):
		return "", "", err
	}

	email := memberEmail
	if email == "" {
		email = userEmail
	}
	return domain.AuthorName(memberName, userName, email), avatar, nil
}

// publish notifies the task channel only; project views do not show comments.
func (s *CommentService) publish(ctx context.Context, typ realtime.EventType, c *domain.Comment) {
	s.events.Publish(ctx,
		realtime.Event{Type: typ, Entity: realtime.EntityComment, ID: c.ID, ProjectID: c.ProjectID, TaskID: c.TaskID},
		realtime.TaskChannel(c.TaskID))
}
