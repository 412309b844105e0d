package http

import (
	"context"

	"github.com/projecthub-dev/projecthub-backend/internal/auth/domain"
	"github.com/projecthub-dev/projecthub-backend/internal/users"
)

// Service is the part of service.AuthService the handlers call.
type Service interface {
	Register(ctx context.Context, req domain.RegisterRequest) (*domain.Session, error)
	Login(ctx context.Context, req domain.LoginRequest) (*domain.Session, error)
	ForgotPassword(ctx context.Context, req domain.ForgotPasswordRequest) error
	ResetPassword(ctx context.Context, req domain.ResetPasswordRequest) error
	Me(ctx context.Context, userID string) (*users.User, error)
}

type Handler struct {
	authService Service
}

func New(authService Service) *Handler {
	return &Handler{
		authService: authService,
	}
}
