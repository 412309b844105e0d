package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/projecthub-dev/projecthub-backend/internal/api/http/middleware"
	"github.com/projecthub-dev/projecthub-backend/internal/auth"
	"github.com/projecthub-dev/projecthub-backend/internal/auth/domain"
	"github.com/projecthub-dev/projecthub-backend/internal/users"
	"github.com/projecthub-dev/projecthub-backend/internal/validation"
)

type stubService struct {
	registerErr error
	loginErr    error
	forgotErr   error
	resetErr    error
	meUser      *users.User
	meErr       error
}

func (s *stubService) Register(_ context.Context, req domain.RegisterRequest) (*domain.Session, error) {
	if s.registerErr != nil {
		return nil, s.registerErr
	}
	return &domain.Session{Token: "tok", ExpiresAt: time.Now().Add(time.Hour), User: &users.User{ID: "u1", Name: req.Name, Email: req.Email}}, nil
}

func (s *stubService) Login(_ context.Context, req domain.LoginRequest) (*domain.Session, error) {
	if s.loginErr != nil {
		return nil, s.loginErr
	}
	return &domain.Session{Token: "tok", User: &users.User{ID: "u1", Email: req.Email}}, nil
}

func (s *stubService) ForgotPassword(context.Context, domain.ForgotPasswordRequest) error {
	return s.forgotErr
}

func (s *stubService) ResetPassword(context.Context, domain.ResetPasswordRequest) error {
	return s.resetErr
}

func (s *stubService) Me(context.Context, string) (*users.User, error) {
	return s.meUser, s.meErr
}

func setupRouter(svc Service, limiter *middleware.IPRateLimiter) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	public := r.Group("/auth")
	protected := r.Group("/auth", func(c *gin.Context) {
		auth.SetIdentity(c, &auth.Identity{UserID: c.GetHeader("X-Test-User")})
	})
	New(svc).Register(public, protected, limiter)
	return r
}

func do(r *gin.Engine, method, path, body string, headers map[string]string) (*httptest.ResponseRecorder, map[string]any) {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var out map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &out)
	return w, out
}

func TestRegisterHandler(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		r := setupRouter(&stubService{}, middleware.NewIPRateLimiter(100, 100))
		w, body := do(r, http.MethodPost, "/auth/register", `{"name":"Ana Maria","email":"ana@example.com","password":"Secret#123"}`, nil)
		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, true, body["ok"])
		assert.Equal(t, "tok", body["token"])
	})

	t.Run("validation failure", func(t *testing.T) {
		r := setupRouter(&stubService{registerErr: validation.FieldErrors{"email": "invalid email"}}, middleware.NewIPRateLimiter(100, 100))
		w, body := do(r, http.MethodPost, "/auth/register", `{}`, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "validation failed", body["error"])
		assert.Equal(t, map[string]any{"email": "invalid email"}, body["fields"])
	})

	t.Run("email in use, localized", func(t *testing.T) {
		r := setupRouter(&stubService{registerErr: auth.NewError(auth.CodeEmailAlreadyInUse, users.ErrEmailTaken)}, middleware.NewIPRateLimiter(100, 100))
		w, body := do(r, http.MethodPost, "/auth/register", `{}`, map[string]string{"Accept-Language": "pt-BR"})
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, "auth/email-already-in-use", body["code"])
		assert.Equal(t, "general", body["type"])
		assert.Equal(t, "Este email já está em uso", body["message"])
	})

	t.Run("malformed json", func(t *testing.T) {
		r := setupRouter(&stubService{}, middleware.NewIPRateLimiter(100, 100))
		w, _ := do(r, http.MethodPost, "/auth/register", `{`, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestLoginHandler(t *testing.T) {
	t.Run("invalid credential", func(t *testing.T) {
		r := setupRouter(&stubService{loginErr: auth.NewError(auth.CodeInvalidCredential, nil)}, middleware.NewIPRateLimiter(100, 100))
		w, body := do(r, http.MethodPost, "/auth/login", `{"email":"a@b.co","password":"x"}`, nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "Incorrect email or password", body["message"])
	})

	t.Run("rate limited", func(t *testing.T) {
		r := setupRouter(&stubService{}, middleware.NewIPRateLimiter(1, 1))
		w, _ := do(r, http.MethodPost, "/auth/login", `{"email":"a@b.co","password":"x"}`, nil)
		require.Equal(t, http.StatusOK, w.Code)

		w, body := do(r, http.MethodPost, "/auth/login", `{"email":"a@b.co","password":"x"}`, nil)
		assert.Equal(t, http.StatusTooManyRequests, w.Code)
		assert.Equal(t, "auth/too-many-requests", body["code"])
		assert.Equal(t, "Too many attempts. Try again later.", body["message"])
	})

	t.Run("unexpected error", func(t *testing.T) {
		r := setupRouter(&stubService{loginErr: errors.New("db down")}, middleware.NewIPRateLimiter(100, 100))
		w, body := do(r, http.MethodPost, "/auth/login", `{"email":"a@b.co","password":"x"}`, nil)
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, "Could not sign in. Try again.", body["message"])
		assert.NotContains(t, body, "code")
	})
}

func TestForgotPasswordHandler(t *testing.T) {
	r := setupRouter(&stubService{forgotErr: auth.NewError(auth.CodeUserNotFound, users.ErrUserNotFound)}, middleware.NewIPRateLimiter(100, 100))
	w, body := do(r, http.MethodPost, "/auth/forgot-password", `{"email":"ghost@example.com"}`, map[string]string{"Accept-Language": "pt"})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Não encontramos uma conta criada com este email", body["message"])

	r = setupRouter(&stubService{}, middleware.NewIPRateLimiter(100, 100))
	w, body = do(r, http.MethodPost, "/auth/forgot-password", `{"email":"ana@example.com"}`, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, body["ok"])
}

func TestResetPasswordHandler(t *testing.T) {
	r := setupRouter(&stubService{resetErr: auth.NewError(auth.CodeInvalidActionCode, nil)}, middleware.NewIPRateLimiter(100, 100))
	w, body := do(r, http.MethodPost, "/auth/reset-password", `{"token":"t","password":"Secret#123"}`, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "auth/invalid-action-code", body["code"])
}

func TestMeHandler(t *testing.T) {
	r := setupRouter(&stubService{meUser: &users.User{ID: "u1", Name: "Ana", Email: "ana@example.com", PasswordHash: "secret"}}, middleware.NewIPRateLimiter(100, 100))
	w, body := do(r, http.MethodGet, "/auth/me", "", map[string]string{"X-Test-User": "u1"})
	assert.Equal(t, http.StatusOK, w.Code)
	user := body["user"].(map[string]any)
	assert.Equal(t, "Ana", user["name"])
	assert.NotContains(t, user, "password_hash")

	w, _ = do(r, http.MethodGet, "/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	r = setupRouter(&stubService{meErr: users.ErrUserNotFound}, middleware.NewIPRateLimiter(100, 100))
	w, _ = do(r, http.MethodGet, "/auth/me", "", map[string]string{"X-Test-User": "u1"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}
