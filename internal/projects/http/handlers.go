package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/projecthub-dev/projecthub-backend/internal/auth"
	"github.com/projecthub-dev/projecthub-backend/internal/logging"
	"github.com/projecthub-dev/projecthub-backend/internal/projects/domain"
	"github.com/projecthub-dev/projecthub-backend/internal/validation"
)

func (h *Handler) create(c *gin.Context) {
	var form domain.ProjectForm
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}

	p, err := h.svc.Create(c.Request.Context(), auth.UserID(c), form)
	if err != nil {
		writeError(c, "projects.create", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true, "project": p})
}

func (h *Handler) list(c *gin.Context) {
	items, err := h.svc.ListForUser(c.Request.Context(), auth.UserID(c))
	if err != nil {
		writeError(c, "projects.list", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "projects": items})
}

func (h *Handler) get(c *gin.Context) {
	p, err := h.svc.Get(c.Request.Context(), auth.UserID(c), c.Param("id"))
	if err != nil {
		writeError(c, "projects.get", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "project": p})
}

func (h *Handler) update(c *gin.Context) {
	var req domain.UpdateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}

	p, err := h.svc.Update(c.Request.Context(), auth.UserID(c), c.Param("id"), req)
	if err != nil {
		writeError(c, "projects.update", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "project": p})
}

func (h *Handler) delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), auth.UserID(c), c.Param("id")); err != nil {
		writeError(c, "projects.delete", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *Handler) details(c *gin.Context) {
	d, err := h.svc.Details(c.Request.Context(), auth.UserID(c), c.Param("id"))
	if err != nil {
		writeError(c, "projects.details", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "project": d.Project, "stats": d.Stats})
}

func (h *Handler) addMember(c *gin.Context) {
	var req domain.AddMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}

	p, err := h.svc.AddMember(c.Request.Context(), auth.UserID(c), c.Param("id"), req)
	if err != nil {
		writeError(c, "projects.add_member", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true, "project": p})
}

func (h *Handler) updateMemberRole(c *gin.Context) {
	var req domain.UpdateMemberRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}

	p, err := h.svc.UpdateMemberRole(c.Request.Context(), auth.UserID(c), c.Param("id"), c.Param("user_id"), req)
	if err != nil {
		writeError(c, "projects.update_member_role", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "project": p})
}

func (h *Handler) removeMember(c *gin.Context) {
	p, err := h.svc.RemoveMember(c.Request.Context(), auth.UserID(c), c.Param("id"), c.Param("user_id"))
	if err != nil {
		writeError(c, "projects.remove_member", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "project": p})
}

func writeError(c *gin.Context, op string, err error) {
	if fields, ok := validation.AsFieldErrors(err); ok {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "validation failed", "fields": fields})
		return
	}

	switch {
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "project not found"})
	case errors.Is(err, domain.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"ok": false, "error": "access denied"})
	case errors.Is(err, domain.ErrUserNotFound), errors.Is(err, domain.ErrAlreadyMember):
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": err.Error(), "fields": gin.H{"email": err.Error()}})
	case errors.Is(err, domain.ErrMemberNotFound):
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": err.Error()})
	case errors.Is(err, domain.ErrCreatorProtected):
		c.JSON(http.StatusForbidden, gin.H{"ok": false, "error": err.Error()})
	default:
		logging.New(c.Request.Context()).Error(op, err)
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "internal error"})
	}
}
