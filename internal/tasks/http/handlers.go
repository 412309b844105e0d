package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/projecthub-dev/projecthub-backend/internal/auth"
	"github.com/projecthub-dev/projecthub-backend/internal/logging"
	projectdomain "github.com/projecthub-dev/projecthub-backend/internal/projects/domain"
	"github.com/projecthub-dev/projecthub-backend/internal/tasks/domain"
	"github.com/projecthub-dev/projecthub-backend/internal/tasks/service"
	"github.com/projecthub-dev/projecthub-backend/internal/validation"
)

func (h *Handler) list(c *gin.Context) {
	opts := service.ListOptions{
		Filter: domain.ParseFilter(c.Query("filter")),
		Sort:   domain.ParseSort(c.Query("sort")),
	}

	items, err := h.svc.List(c.Request.Context(), auth.UserID(c), c.Param("id"), opts)
	if err != nil {
		writeError(c, "tasks.list", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "tasks": items, "filter": opts.Filter, "sort": opts.Sort})
}

func (h *Handler) create(c *gin.Context) {
	var form domain.TaskForm
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}

	t, err := h.svc.Create(c.Request.Context(), auth.UserID(c), c.Param("id"), form)
	if err != nil {
		writeError(c, "tasks.create", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true, "task": t})
}

func (h *Handler) update(c *gin.Context) {
	var req domain.UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}

	t, err := h.svc.Update(c.Request.Context(), auth.UserID(c), c.Param("id"), c.Param("task_id"), req)
	if err != nil {
		writeError(c, "tasks.update", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "task": t})
}

func (h *Handler) delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), auth.UserID(c), c.Param("id"), c.Param("task_id")); err != nil {
		writeError(c, "tasks.delete", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func writeError(c *gin.Context, op string, err error) {
	if fields, ok := validation.AsFieldErrors(err); ok {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "validation failed", "fields": fields})
		return
	}

	switch {
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "task not found"})
	case errors.Is(err, projectdomain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "project not found"})
	case errors.Is(err, projectdomain.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"ok": false, "error": "access denied"})
	default:
		logging.New(c.Request.Context()).Error(op, err)
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "internal error"})
	}
}
