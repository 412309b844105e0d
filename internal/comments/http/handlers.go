package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/projecthub-dev/projecthub-backend/internal/auth"
	"github.com/projecthub-dev/projecthub-backend/internal/comments/domain"
	"github.com/projecthub-dev/projecthub-backend/internal/logging"
	projectdomain "github.com/projecthub-dev/projecthub-backend/internal/projects/domain"
	taskdomain "github.com/projecthub-dev/projecthub-backend/internal/tasks/domain"
	"github.com/projecthub-dev/projecthub-backend/internal/validation"
)

func (h *Handler) list(c *gin.Context) {
	items, err := h.svc.List(c.Request.Context(), auth.UserID(c), c.Param("id"), c.Param("task_id"))
	if err != nil {
		writeError(c, "comments.list", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "comments": items})
}

func (h *Handler) create(c *gin.Context) {
	var form domain.CommentForm
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}

	cm, err := h.svc.Create(c.Request.Context(), auth.UserID(c), c.Param("id"), c.Param("task_id"), form)
	if err != nil {
		writeError(c, "comments.create", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true, "comment": cm})
}

func (h *Handler) update(c *gin.Context) {
	var form domain.CommentForm
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}

	cm, err := h.svc.Update(c.Request.Context(), auth.UserID(c), c.Param("comment_id"), form)
	if err != nil {
		writeError(c, "comments.update", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "comment": cm})
}

func (h *Handler) delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), auth.UserID(c), c.Param("comment_id")); err != nil {
		writeError(c, "comments.delete", err)
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
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "comment not found"})
	case errors.Is(err, taskdomain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "task not found"})
	case errors.Is(err, projectdomain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "project not found"})
	case errors.Is(err, domain.ErrNotAuthor), errors.Is(err, projectdomain.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"ok": false, "error": "access denied"})
	default:
		logging.New(c.Request.Context()).Error(op, err)
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "internal error"})
	}
}
