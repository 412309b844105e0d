package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/projecthub-dev/projecthub-backend/internal/auth"
	"github.com/projecthub-dev/projecthub-backend/internal/auth/domain"
	"github.com/projecthub-dev/projecthub-backend/internal/auth/repository"
	"github.com/projecthub-dev/projecthub-backend/internal/logging"
	"github.com/projecthub-dev/projecthub-backend/internal/users"
	"github.com/projecthub-dev/projecthub-backend/internal/validation"
)

type UserStore interface {
	Create(ctx context.Context, u *users.User) error
	GetByID(ctx context.Context, id string) (*users.User, error)
	GetByEmail(ctx context.Context, email string) (*users.User, error)
	UpdatePassword(ctx context.Context, id, hash string) error
}

type ResetTokenStore interface {
	Create(ctx context.Context, userID string) (string, error)
	Consume(ctx context.Context, token string) (string, error)
}

type TokenIssuer interface {
	Issue(userID string) (string, time.Time, error)
}

type AuthService struct {
	users    UserStore
	resets   ResetTokenStore
	tokens   TokenIssuer
	mailer   Mailer
	resetURL string
	cost     int
}

func NewAuthService(userStore UserStore, resets ResetTokenStore, tokens TokenIssuer, mailer Mailer, resetURL string) *AuthService {
	return &AuthService{
		users:    userStore,
		resets:   resets,
		tokens:   tokens,
		mailer:   mailer,
		resetURL: resetURL,
		cost:     bcrypt.DefaultCost,
	}
}

// Register creates a password account and signs it in.
func (s *AuthService) Register(ctx context.Context, req domain.RegisterRequest) (*domain.Session, error) {
	req.Normalize()
	if err := validation.Struct(&req); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &users.User{Name: req.Name, Email: req.Email, PasswordHash: string(hash)}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, users.ErrEmailTaken) {
			return nil, auth.NewError(auth.CodeEmailAlreadyInUse, err)
		}
		return nil, err
	}

	logging.New(ctx).Infof("auth.register", "user_id=%s", u.ID)
	return s.session(u)
}

// Login checks the credentials and issues an access token.
func (s *AuthService) Login(ctx context.Context, req domain.LoginRequest) (*domain.Session, error) {
	if err := validation.Struct(&req); err != nil {
		return nil, err
	}

	u, err := s.users.GetByEmail(ctx, req.Email)
	if errors.Is(err, users.ErrUserNotFound) {
		return nil, auth.NewError(auth.CodeInvalidCredential, err)
	}
	if err != nil {
		return nil, err
	}
	if u.PasswordHash == "" {
		return nil, auth.NewError(auth.CodeInvalidCredential, errors.New("account has no password"))
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
		return nil, auth.NewError(auth.CodeInvalidCredential, err)
	}

	return s.session(u)
}

// ForgotPassword mails a reset link to a registered email.
func (s *AuthService) ForgotPassword(ctx context.Context, req domain.ForgotPasswordRequest) error {
	if err := validation.Struct(&req); err != nil {
		return err
	}

	u, err := s.users.GetByEmail(ctx, req.Email)
	if errors.Is(err, users.ErrUserNotFound) {
		return auth.NewError(auth.CodeUserNotFound, err)
	}
	if err != nil {
		return err
	}

	token, err := s.resets.Create(ctx, u.ID)
	if err != nil {
		return err
	}

	if err := s.mailer.SendPasswordReset(ctx, u.Email, s.resetLink(token)); err != nil {
		return auth.NewError(auth.CodeNetworkFailed, err)
	}
	return nil
}

// ResetPassword spends a reset token and replaces the password hash.
func (s *AuthService) ResetPassword(ctx context.Context, req domain.ResetPasswordRequest) error {
	if err := validation.Struct(&req); err != nil {
		return err
	}

	userID, err := s.resets.Consume(ctx, req.Token)
	if errors.Is(err, repository.ErrResetTokenNotFound) {
		return auth.NewError(auth.CodeInvalidActionCode, err)
	}
	if err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.users.UpdatePassword(ctx, userID, string(hash)); err != nil {
		if errors.Is(err, users.ErrUserNotFound) {
			return auth.NewError(auth.CodeInvalidActionCode, err)
		}
		return err
	}

	logging.New(ctx).Infof("auth.reset_password", "user_id=%s", userID)
	return nil
}

// Me returns the authenticated user's record.
func (s *AuthService) Me(ctx context.Context, userID string) (*users.User, error) {
	return s.users.GetByID(ctx, userID)
}

func (s *AuthService) session(u *users.User) (*domain.Session, error) {
	token, exp, err := s.tokens.Issue(u.ID)
	if err != nil {
		return nil, err
	}
	return &domain.Session{Token: token, ExpiresAt: exp, User: u}, nil
}

func (s *AuthService) resetLink(token string) string {
	base, err := url.Parse(s.resetURL)
	if err != nil || s.resetURL == "" {
		return token
	}
	q := base.Query()
	q.Set("token", token)
	base.RawQuery = q.Encode()
	return base.String()
}
