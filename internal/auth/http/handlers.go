package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/projecthub-dev/projecthub-backend/internal/auth"
	"github.com/projecthub-dev/projecthub-backend/internal/auth/domain"
	"github.com/projecthub-dev/projecthub-backend/internal/logging"
	"github.com/projecthub-dev/projecthub-backend/internal/users"
	"github.com/projecthub-dev/projecthub-backend/internal/validation"
)

func (h *Handler) register(c *gin.Context) {
	var req domain.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}

	sess, err := h.authService.Register(c.Request.Context(), req)
	if err != nil {
		h.fail(c, auth.OpRegister, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true, "token": sess.Token, "expires_at": sess.ExpiresAt, "user": sess.User})
}

func (h *Handler) login(c *gin.Context) {
	var req domain.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}

	sess, err := h.authService.Login(c.Request.Context(), req)
	if err != nil {
		h.fail(c, auth.OpLogin, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "token": sess.Token, "expires_at": sess.ExpiresAt, "user": sess.User})
}

func (h *Handler) forgotPassword(c *gin.Context) {
	var req domain.ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}

	if err := h.authService.ForgotPassword(c.Request.Context(), req); err != nil {
		h.fail(c, auth.OpForgotPassword, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *Handler) resetPassword(c *gin.Context) {
	var req domain.ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}

	if err := h.authService.ResetPassword(c.Request.Context(), req); err != nil {
		h.fail(c, auth.OpResetPassword, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *Handler) me(c *gin.Context) {
	userID := auth.UserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"ok": false, "error": "user not authenticated"})
		return
	}

	u, err := h.authService.Me(c.Request.Context(), userID)
	if errors.Is(err, users.ErrUserNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "user not found"})
		return
	}
	if err != nil {
		logging.New(c.Request.Context()).Error("auth.me", err)
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "failed to load user"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "user": u})
}

func (h *Handler) tooManyRequests(op auth.Operation) gin.HandlerFunc {
	return func(c *gin.Context) {
		h.writeAuthError(c, http.StatusTooManyRequests, op, auth.CodeTooManyRequests)
		c.Abort()
	}
}

func (h *Handler) fail(c *gin.Context, op auth.Operation, err error) {
	if fields, ok := validation.AsFieldErrors(err); ok {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "validation failed", "fields": fields})
		return
	}

	code, ok := auth.CodeOf(err)
	if !ok {
		logging.New(c.Request.Context()).Error("auth."+string(op), err)
		h.writeAuthError(c, http.StatusInternalServerError, op, "")
		return
	}
	h.writeAuthError(c, statusFor(code), op, code)
}

func (h *Handler) writeAuthError(c *gin.Context, status int, op auth.Operation, code auth.Code) {
	msg := auth.Describe(op, code, auth.MatchLanguage(c.GetHeader("Accept-Language")))
	body := gin.H{"ok": false, "type": msg.Type, "message": msg.Message}
	if code != "" {
		body["code"] = code
	}
	if msg.Field != "" {
		body["field"] = msg.Field
	}
	c.JSON(status, body)
}

func statusFor(code auth.Code) int {
	switch code {
	case auth.CodeEmailAlreadyInUse:
		return http.StatusConflict
	case auth.CodeInvalidCredential, auth.CodeWrongPassword:
		return http.StatusUnauthorized
	case auth.CodeUserNotFound:
		return http.StatusNotFound
	case auth.CodeTooManyRequests:
		return http.StatusTooManyRequests
	case auth.CodeNetworkFailed:
		return http.StatusBadGateway
	default:
		return http.StatusBadRequest
	}
}
