package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/projecthub-dev/projecthub-backend/internal/auth"
	"github.com/projecthub-dev/projecthub-backend/internal/logging"
	"github.com/projecthub-dev/projecthub-backend/internal/storage/avatars"
	"github.com/projecthub-dev/projecthub-backend/internal/users"
)

type AvatarPresigner interface {
	PresignAvatar(ctx context.Context, userID, contentType string) (*avatars.Upload, error)
}

type PhotoStore interface {
	SetPhotoURL(ctx context.Context, id, url string) error
}

type Handler struct {
	presigner AvatarPresigner
	users     PhotoStore
}

// New returns a handler; presigner may be nil when avatar storage is not
// configured.
func New(presigner AvatarPresigner, store PhotoStore) *Handler {
	return &Handler{presigner: presigner, users: store}
}

func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.PUT("/me/avatar", h.avatar)
}

type avatarRequest struct {
	ContentType string `json:"content_type" binding:"required"`
}

// avatar presigns an upload and records the resulting object URL as the
// caller's photo.
func (h *Handler) avatar(c *gin.Context) {
	if h.presigner == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"ok": false, "error": avatars.ErrNotConfigured.Error()})
		return
	}

	var req avatarRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}

	ctx := c.Request.Context()
	userID := auth.UserID(c)
	up, err := h.presigner.PresignAvatar(ctx, userID, req.ContentType)
	if errors.Is(err, avatars.ErrUnsupportedType) {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "validation failed", "fields": gin.H{"content_type": err.Error()}})
		return
	}
	if err != nil {
		logging.New(ctx).Error("users.avatar", err)
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "internal error"})
		return
	}

	if err := h.users.SetPhotoURL(ctx, userID, up.ObjectURL); err != nil {
		if errors.Is(err, users.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": err.Error()})
			return
		}
		logging.New(ctx).Error("users.avatar", err)
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "internal error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "upload": up, "photo_url": up.ObjectURL})
}
