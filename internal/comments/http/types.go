package http

import (
	"context"

	"github.com/projecthub-dev/projecthub-backend/internal/comments/domain"
)

// Service is implemented by service.CommentService.
type Service interface {
	Create(ctx context.Context, userID, projectID, taskID string, form domain.CommentForm) (*domain.Comment, error)
	List(ctx context.Context, userID, projectID, taskID string) ([]domain.Comment, error)
	Update(ctx context.Context, userID, commentID string, form domain.CommentForm) (*domain.Comment, error)
	Delete(ctx context.Context, userID, commentID string) error
}

type Handler struct {
	svc Service
}

func New(svc Service) *Handler {
	return &Handler{svc: svc}
}
