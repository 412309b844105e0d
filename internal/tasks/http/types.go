package http

import (
	"context"

	"github.com/projecthub-dev/projecthub-backend/internal/tasks/domain"
	"github.com/projecthub-dev/projecthub-backend/internal/tasks/service"
)

// Service is implemented by service.TaskService.
type Service interface {
	Create(ctx context.Context, userID, projectID string, form domain.TaskForm) (*domain.Task, error)
	List(ctx context.Context, userID, projectID string, opts service.ListOptions) ([]domain.Task, error)
	Update(ctx context.Context, userID, projectID, taskID string, req domain.UpdateTaskRequest) (*domain.Task, error)
	Delete(ctx context.Context, userID, projectID, taskID string) error
}

type Handler struct {
	svc Service
}

func New(svc Service) *Handler {
	return &Handler{svc: svc}
}
