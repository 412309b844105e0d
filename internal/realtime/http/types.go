package http

import (
	"context"

	"github.com/gin-gonic/gin"

	commentdomain "github.com/projecthub-dev/projecthub-backend/internal/comments/domain"
	projectdomain "github.com/projecthub-dev/projecthub-backend/internal/projects/domain"
	"github.com/projecthub-dev/projecthub-backend/internal/realtime"
	taskdomain "github.com/projecthub-dev/projecthub-backend/internal/tasks/domain"
	taskservice "github.com/projecthub-dev/projecthub-backend/internal/tasks/service"
)

// Streamer is implemented by realtime.Broker.
type Streamer interface {
	Stream(c *gin.Context, channels []string, load realtime.Loader)
}

type ProjectService interface {
	Get(ctx context.Context, userID, projectID string) (*projectdomain.Project, error)
	ListForUser(ctx context.Context, userID string) ([]projectdomain.Project, error)
}

type TaskService interface {
	List(ctx context.Context, userID, projectID string, opts taskservice.ListOptions) ([]taskdomain.Task, error)
}

type CommentService interface {
	List(ctx context.Context, userID, projectID, taskID string) ([]commentdomain.Comment, error)
}

// Handler serves the live views: dashboard, project board and task comments.
type Handler struct {
	streams  Streamer
	projects ProjectService
	tasks    TaskService
	comments CommentService
}

func New(streams Streamer, projects ProjectService, tasks TaskService, comments CommentService) *Handler {
	return &Handler{
		streams:  streams,
		projects: projects,
		tasks:    tasks,
		comments: comments,
	}
}
