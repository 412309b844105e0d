package http

import "github.com/gin-gonic/gin"

// Register attaches task routes under a projects group.
func (h *Handler) Register(projects *gin.RouterGroup) {
	projects.GET("/:id/tasks", h.list)
	projects.POST("/:id/tasks", h.create)
	projects.PATCH("/:id/tasks/:task_id", h.update)
	projects.DELETE("/:id/tasks/:task_id", h.delete)
}
