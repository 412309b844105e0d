package http

import (
	"github.com/gin-gonic/gin"

	"github.com/projecthub-dev/projecthub-backend/internal/api/http/middleware"
	"github.com/projecthub-dev/projecthub-backend/internal/auth"
)

// Register mounts the public auth routes on rg and the authenticated ones on
// protected. limiter guards sign-in and password recovery.
func (h *Handler) Register(rg, protected *gin.RouterGroup, limiter *middleware.IPRateLimiter) {
	rg.POST("/register", h.register)
	rg.POST("/login", middleware.RateLimit(limiter, h.tooManyRequests(auth.OpLogin)), h.login)
	rg.POST("/forgot-password", middleware.RateLimit(limiter, h.tooManyRequests(auth.OpForgotPassword)), h.forgotPassword)
	rg.POST("/reset-password", h.resetPassword)

	protected.GET("/me", h.me)
}
