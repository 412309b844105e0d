package service

import (
	"context"
	"errors"
	"time"

	"github.com/projecthub-dev/projecthub-backend/internal/logging"
	"github.com/projecthub-dev/projecthub-backend/internal/projects/domain"
	"github.com/projecthub-dev/projecthub-backend/internal/realtime"
	"github.com/projecthub-dev/projecthub-backend/internal/users"
	"github.com/projecthub-dev/projecthub-backend/internal/validation"
)

type ProjectStore interface {
	Create(ctx context.Context, p *domain.Project) error
	GetByID(ctx context.Context, id string) (*domain.Project, error)
	ListOwned(ctx context.Context, userID string) ([]domain.Project, error)
	ListMember(ctx context.Context, userID string) ([]domain.Project, error)
	Update(ctx context.Context, p *domain.Project) error
	SetMembers(ctx context.Context, p *domain.Project) error
	SoftDelete(ctx context.Context, id string) (bool, error)
}

type UserLookup interface {
	GetByID(ctx context.Context, id string) (*users.User, error)
	GetByEmail(ctx context.Context, email string) (*users.User, error)
}

// TaskCounter reports task totals for the details view.
type TaskCounter interface {
	CountByProject(ctx context.Context, projectID string) (total, completed int, err error)
}

// ProjectService handles project-related business logic
type ProjectService struct {
	repo   ProjectStore
	users  UserLookup
	tasks  TaskCounter
	events realtime.Publisher
	now    func() time.Time
}

// NewProjectService creates a new project service
func NewProjectService(repo ProjectStore, userLookup UserLookup, tasks TaskCounter, events realtime.Publisher) *ProjectService {
	return &ProjectService{
		repo:   repo,
		users:  userLookup,
		tasks:  tasks,
		events: events,
		now:    time.Now,
	}
}

// Create creates a new project with the caller as its first (admin) member.
func (s *ProjectService) Create(ctx context.Context, userID string, form domain.ProjectForm) (*domain.Project, error) {
	start, end, err := form.Validate()
	if err != nil {
		return nil, err
	}

	creator, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	p := &domain.Project{
		Title:       form.Title,
		Description: form.Description,
		StartDate:   start,
		EndDate:     end,
		Status:      domain.StatusPlanning,
		CreatedBy:   userID,
		Members:     []domain.Member{memberFromUser(creator, domain.RoleAdmin, s.now())},
		MemberIDs:   []string{userID},
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}

	logging.New(ctx).Infof("projects.create", "project_id=%s user_id=%s", p.ID, userID)
	s.publish(ctx, realtime.EventCreated, realtime.EntityProject, p.ID, p)
	return p, nil
}

// Get returns a project the caller may view.
func (s *ProjectService) Get(ctx context.Context, userID, projectID string) (*domain.Project, error) {
	return s.load(ctx, userID, projectID, domain.CanView)
}

// ListForUser returns the caller's dashboard: owned and member projects,
// newest activity first.
func (s *ProjectService) ListForUser(ctx context.Context, userID string) ([]domain.Project, error) {
	owned, err := s.repo.ListOwned(ctx, userID)
	if err != nil {
		return nil, err
	}
	member, err := s.repo.ListMember(ctx, userID)
	if err != nil {
		return nil, err
	}
	return domain.MergeDashboard(owned, member), nil
}

// Update applies a partial edit. Form fields are validated as a whole after
// merging; status may change on its own.
func (s *ProjectService) Update(ctx context.Context, userID, projectID string, req domain.UpdateProjectRequest) (*domain.Project, error) {
	p, err := s.load(ctx, userID, projectID, domain.CanEdit)
	if err != nil {
		return nil, err
	}

	if err := validation.Struct(&req); err != nil {
		return nil, err
	}

	if req.TouchesForm() {
		form := req.Merge(p)
		start, end, err := form.Validate()
		if err != nil {
			return nil, err
		}
		p.Title = form.Title
		p.Description = form.Description
		p.StartDate = start
		p.EndDate = end
	}
	if req.Status != nil {
		p.Status = domain.Status(*req.Status)
	}

	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}

	s.publish(ctx, realtime.EventUpdated, realtime.EntityProject, p.ID, p)
	return p, nil
}

// Delete soft-deletes a project; only its creator may do so.
func (s *ProjectService) Delete(ctx context.Context, userID, projectID string) error {
	p, err := s.load(ctx, userID, projectID, domain.CanDelete)
	if err != nil {
		return err
	}

	ok, err := s.repo.SoftDelete(ctx, projectID)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrNotFound
	}

	logging.New(ctx).Infof("projects.delete", "project_id=%s user_id=%s", projectID, userID)
	s.publish(ctx, realtime.EventDeleted, realtime.EntityProject, p.ID, p)
	return nil
}

// Details returns the project with task progress and days remaining.
func (s *ProjectService) Details(ctx context.Context, userID, projectID string) (*domain.Details, error) {
	p, err := s.load(ctx, userID, projectID, domain.CanView)
	if err != nil {
		return nil, err
	}

	total, completed, err := s.tasks.CountByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	return &domain.Details{
		Project: p,
		Stats:   domain.ComputeStats(total, completed, p.EndDate, s.now()),
	}, nil
}

// AddMember invites a registered user by email.
func (s *ProjectService) AddMember(ctx context.Context, userID, projectID string, req domain.AddMemberRequest) (*domain.Project, error) {
	if err := validation.Struct(&req); err != nil {
		return nil, err
	}

	p, err := s.load(ctx, userID, projectID, domain.CanEdit)
	if err != nil {
		return nil, err
	}

	u, err := s.users.GetByEmail(ctx, req.Email)
	if errors.Is(err, users.ErrUserNotFound) {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	if _, exists := p.Member(u.ID); exists || p.IsCreator(u.ID) {
		return nil, domain.ErrAlreadyMember
	}

	p.Members = append(p.Members, memberFromUser(u, domain.Role(req.Role), s.now()))
	if err := s.repo.SetMembers(ctx, p); err != nil {
		return nil, err
	}

	s.publish(ctx, realtime.EventCreated, realtime.EntityMember, u.ID, p)
	return p, nil
}

// RemoveMember drops a member. The creator stays.
func (s *ProjectService) RemoveMember(ctx context.Context, userID, projectID, memberID string) (*domain.Project, error) {
	p, err := s.load(ctx, userID, projectID, domain.CanEdit)
	if err != nil {
		return nil, err
	}
	if p.IsCreator(memberID) {
		return nil, domain.ErrCreatorProtected
	}
	if _, ok := p.Member(memberID); !ok {
		return nil, domain.ErrMemberNotFound
	}

	kept := make([]domain.Member, 0, len(p.Members))
	for _, m := range p.Members {
		if m.UserID != memberID {
			kept = append(kept, m)
		}
	}
	p.Members = kept
	if err := s.repo.SetMembers(ctx, p); err != nil {
		return nil, err
	}

	s.publish(ctx, realtime.EventDeleted, realtime.EntityMember, memberID, p, memberID)
	return p, nil
}

// UpdateMemberRole changes a member's role. The creator's role is fixed.
func (s *ProjectService) UpdateMemberRole(ctx context.Context, userID, projectID, memberID string, req domain.UpdateMemberRoleRequest) (*domain.Project, error) {
	if err := validation.Struct(&req); err != nil {
		return nil, err
	}

	p, err := s.load(ctx, userID, projectID, domain.CanEdit)
	if err != nil {
		return nil, err
	}
	if p.IsCreator(memberID) {
		return nil, domain.ErrCreatorProtected
	}
	m, ok := p.Member(memberID)
	if !ok {
		return nil, domain.ErrMemberNotFound
	}
	m.Role = domain.Role(req.Role)

	if err := s.repo.SetMembers(ctx, p); err != nil {
		return nil, err
	}

	s.publish(ctx, realtime.EventUpdated, realtime.EntityMember, memberID, p)
	return p, nil
}

func (s *ProjectService) load(ctx context.Context, userID, projectID string, allowed func(*domain.Project, string) bool) (*domain.Project, error) {
	p, err := s.repo.GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if !allowed(p, userID) {
		return nil, domain.ErrForbidden
	}
	return p, nil
}

// publish notifies the project channel and the dashboards of everyone on
// the project plus any extra users (e.g. a member who was just removed).
func (s *ProjectService) publish(ctx context.Context, typ realtime.EventType, entity realtime.Entity, id string, p *domain.Project, extra ...string) {
	channels := append(realtime.UserChannels(append(p.Audience(), extra...)...), realtime.ProjectChannel(p.ID))
	s.events.Publish(ctx, realtime.Event{Type: typ, Entity: entity, ID: id, ProjectID: p.ID}, channels...)
}

func memberFromUser(u *users.User, role domain.Role, now time.Time) domain.Member {
	m := domain.Member{
		UserID:  u.ID,
		Email:   u.Email,
		Name:    u.DisplayName(),
		Role:    role,
		AddedAt: now.UTC(),
	}
	if u.PhotoURL != nil {
		m.Avatar = *u.PhotoURL
	}
	return m
}
