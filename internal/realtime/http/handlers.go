package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/projecthub-dev/projecthub-backend/internal/auth"
	commentdomain "github.com/projecthub-dev/projecthub-backend/internal/comments/domain"
	"github.com/projecthub-dev/projecthub-backend/internal/logging"
	projectdomain "github.com/projecthub-dev/projecthub-backend/internal/projects/domain"
	"github.com/projecthub-dev/projecthub-backend/internal/realtime"
	taskdomain "github.com/projecthub-dev/projecthub-backend/internal/tasks/domain"
	taskservice "github.com/projecthub-dev/projecthub-backend/internal/tasks/service"
)

const (
	eventInitial   = "initial"
	eventUpdate    = "update"
	eventDeleted   = "deleted"
	eventForbidden = "forbidden"
	eventError     = "error"
)

func frameName(trigger *realtime.Event) string {
	if trigger == nil {
		return eventInitial
	}
	return eventUpdate
}

// dashboard streams the caller's project list.
func (h *Handler) dashboard(c *gin.Context) {
	userID := auth.UserID(c)

	h.streams.Stream(c, []string{realtime.UserChannel(userID)}, func(ctx context.Context, trigger *realtime.Event) realtime.Frame {
		items, err := h.projects.ListForUser(ctx, userID)
		if err != nil {
			logging.New(ctx).Error("realtime.dashboard", err)
			return realtime.Frame{Event: eventError, Data: gin.H{"error": "failed to load projects"}}
		}
		return realtime.Frame{Event: frameName(trigger), Data: gin.H{"projects": items}}
	})
}

// project streams a project and its tasks. The stream closes when the
// project is deleted or the caller loses access.
func (h *Handler) project(c *gin.Context) {
	userID, projectID := auth.UserID(c), c.Param("id")
	if _, err := h.projects.Get(c.Request.Context(), userID, projectID); err != nil {
		writeError(c, "realtime.project", err)
		return
	}

	opts := taskservice.ListOptions{
		Filter: taskdomain.ParseFilter(c.Query("filter")),
		Sort:   taskdomain.ParseSort(c.Query("sort")),
	}

	h.streams.Stream(c, []string{realtime.ProjectChannel(projectID)}, func(ctx context.Context, trigger *realtime.Event) realtime.Frame {
		if trigger != nil && trigger.Entity == realtime.EntityProject && trigger.Type == realtime.EventDeleted {
			return deletedFrame(projectID, "")
		}

		p, err := h.projects.Get(ctx, userID, projectID)
		if err != nil {
			return terminalFrame(ctx, "realtime.project", err, projectID, "")
		}
		items, err := h.tasks.List(ctx, userID, projectID, opts)
		if err != nil {
			return terminalFrame(ctx, "realtime.project", err, projectID, "")
		}
		return realtime.Frame{Event: frameName(trigger), Data: gin.H{"project": p, "tasks": items}}
	})
}

// taskComments streams a task's comments. Comment events come from the
// task channel; the project channel only matters for deletion and access.
func (h *Handler) taskComments(c *gin.Context) {
	userID, projectID, taskID := auth.UserID(c), c.Param("id"), c.Param("task_id")
	if _, err := h.comments.List(c.Request.Context(), userID, projectID, taskID); err != nil {
		writeError(c, "realtime.comments", err)
		return
	}

	channels := []string{realtime.TaskChannel(taskID), realtime.ProjectChannel(projectID)}
	h.streams.Stream(c, channels, func(ctx context.Context, trigger *realtime.Event) realtime.Frame {
		if trigger != nil {
			switch {
			case trigger.Entity == realtime.EntityProject && trigger.Type == realtime.EventDeleted:
				return deletedFrame(projectID, taskID)
			case trigger.Entity == realtime.EntityTask && trigger.TaskID == taskID && trigger.Type == realtime.EventDeleted:
				return deletedFrame(projectID, taskID)
			case trigger.TaskID != "" && trigger.TaskID != taskID:
				return realtime.Frame{}
			case trigger.Entity == realtime.EntityTask:
				// task edits arrive on both channels and do not change comments
				return realtime.Frame{}
			}
		}

		items, err := h.comments.List(ctx, userID, projectID, taskID)
		if err != nil {
			return terminalFrame(ctx, "realtime.comments", err, projectID, taskID)
		}
		return realtime.Frame{Event: frameName(trigger), Data: gin.H{"comments": items}}
	})
}

func deletedFrame(projectID, taskID string) realtime.Frame {
	data := gin.H{"project_id": projectID}
	if taskID != "" {
		data["task_id"] = taskID
	}
	return realtime.Frame{Event: eventDeleted, Data: data, Last: true}
}

// terminalFrame maps a reload failure to the frame that ends the stream.
func terminalFrame(ctx context.Context, op string, err error, projectID, taskID string) realtime.Frame {
	switch {
	case isNotFound(err):
		return deletedFrame(projectID, taskID)
	case errors.Is(err, projectdomain.ErrForbidden):
		return realtime.Frame{Event: eventForbidden, Data: gin.H{"project_id": projectID}, Last: true}
	default:
		logging.New(ctx).Error(op, err)
		return realtime.Frame{Event: eventError, Data: gin.H{"error": "failed to reload"}}
	}
}

func isNotFound(err error) bool {
	return errors.Is(err, projectdomain.ErrNotFound) ||
		errors.Is(err, taskdomain.ErrNotFound) ||
		errors.Is(err, commentdomain.ErrNotFound)
}

func writeError(c *gin.Context, op string, err error) {
	switch {
	case isNotFound(err):
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "not found"})
	case errors.Is(err, projectdomain.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"ok": false, "error": "access denied"})
	default:
		logging.New(c.Request.Context()).Error(op, err)
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "internal error"})
	}
}
