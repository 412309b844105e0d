package http

import (
	"context"

	"github.com/projecthub-dev/projecthub-backend/internal/projects/domain"
)

// Service is implemented by service.ProjectService.
type Service interface {
	Create(ctx context.Context, userID string, form domain.ProjectForm) (*domain.Project, error)
	Get(ctx context.Context, userID, projectID string) (*domain.Project, error)
	ListForUser(ctx context.Context, userID string) ([]domain.Project, error)
	Update(ctx context.Context, userID, projectID string, req domain.UpdateProjectRequest) (*domain.Project, error)
	Delete(ctx context.Context, userID, projectID string) error
	Details(ctx context.Context, userID, projectID string) (*domain.Details, error)
	AddMember(ctx context.Context, userID, projectID string, req domain.AddMemberRequest) (*domain.Project, error)
	RemoveMember(ctx context.Context, userID, projectID, memberID string) (*domain.Project, error)
	UpdateMemberRole(ctx context.Context, userID, projectID, memberID string, req domain.UpdateMemberRoleRequest) (*domain.Project, error)
}

// Handler bundles the dependencies for projects HTTP endpoints.
type Handler struct {
	svc Service
}

func New(svc Service) *Handler {
	return &Handler{svc: svc}
}
