package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/projecthub-dev/projecthub-backend/internal/auth"
	projectdomain "github.com/projecthub-dev/projecthub-backend/internal/projects/domain"
	"github.com/projecthub-dev/projecthub-backend/internal/tasks/domain"
	"github.com/projecthub-dev/projecthub-backend/internal/tasks/service"
	"github.com/projecthub-dev/projecthub-backend/internal/validation"
)

type stubService struct {
	err       error
	gotUser   string
	gotProj   string
	gotTask   string
	gotOpts   service.ListOptions
	gotStatus string
}

func (s *stubService) Create(_ context.Context, userID, projectID string, form domain.TaskForm) (*domain.Task, error) {
	s.gotUser, s.gotProj = userID, projectID
	if s.err != nil {
		return nil, s.err
	}
	return &domain.Task{ID: "t1", ProjectID: projectID, Title: form.Title, Tags: []string{}}, nil
}

func (s *stubService) List(_ context.Context, userID, projectID string, opts service.ListOptions) ([]domain.Task, error) {
	s.gotUser, s.gotProj, s.gotOpts = userID, projectID, opts
	return []domain.Task{{ID: "t1"}, {ID: "t2"}}, s.err
}

func (s *stubService) Update(_ context.Context, userID, projectID, taskID string, req domain.UpdateTaskRequest) (*domain.Task, error) {
	s.gotUser, s.gotProj, s.gotTask = userID, projectID, taskID
	if req.Status != nil {
		s.gotStatus = *req.Status
	}
	if s.err != nil {
		return nil, s.err
	}
	return &domain.Task{ID: taskID, ProjectID: projectID}, nil
}

func (s *stubService) Delete(_ context.Context, userID, projectID, taskID string) error {
	s.gotUser, s.gotProj, s.gotTask = userID, projectID, taskID
	return s.err
}

func setupRouter(svc Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	rg := r.Group("/projects", func(c *gin.Context) {
		auth.SetIdentity(c, &auth.Identity{UserID: "u1"})
	})
	New(svc).Register(rg)
	return r
}

func do(r *gin.Engine, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	var out map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &out)
	return w, out
}

func TestTaskRoutes(t *testing.T) {
	svc := &stubService{}
	r := setupRouter(svc)

	w, body := do(r, http.MethodGet, "/projects/p1/tasks?filter=my-tasks&sort=priority", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, body["tasks"], 2)
	assert.Equal(t, service.ListOptions{Filter: domain.FilterMine, Sort: domain.SortPriority}, svc.gotOpts)
	assert.Equal(t, "u1", svc.gotUser)

	w, body = do(r, http.MethodGet, "/projects/p1/tasks?filter=weird", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "all", body["filter"])
	assert.Equal(t, "createdAt", body["sort"])

	w, body = do(r, http.MethodPost, "/projects/p1/tasks", `{"title":"Write copy","description":"Landing copy","status":"pending","priority":"low"}`)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "Write copy", body["task"].(map[string]any)["title"])
	assert.Equal(t, "p1", svc.gotProj)

	w, _ = do(r, http.MethodPatch, "/projects/p1/tasks/t9", `{"status":"completed"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "t9", svc.gotTask)
	assert.Equal(t, "completed", svc.gotStatus)

	w, body = do(r, http.MethodDelete, "/projects/p1/tasks/t9", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, body["ok"])
}

func TestTaskErrors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"validation", validation.FieldErrors{"assigned_to": "assignee must be a project member"}, http.StatusBadRequest},
		{"task missing", domain.ErrNotFound, http.StatusNotFound},
		{"project missing", projectdomain.ErrNotFound, http.StatusNotFound},
		{"forbidden", projectdomain.ErrForbidden, http.StatusForbidden},
		{"internal", errors.New("db down"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := setupRouter(&stubService{err: tt.err})
			w, body := do(r, http.MethodPatch, "/projects/p1/tasks/t1", `{"title":"New"}`)
			require.Equal(t, tt.status, w.Code)
			assert.Equal(t, false, body["ok"])
		})
	}

	r := setupRouter(&stubService{})
	w, body := do(r, http.MethodPost, "/projects/p1/tasks", `[`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid body", body["error"])
}
