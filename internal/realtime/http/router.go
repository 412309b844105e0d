package http

import "github.com/gin-gonic/gin"

// Register attaches the SSE endpoints under a projects group.
func (h *Handler) Register(projects *gin.RouterGroup) {
	projects.GET("/stream", h.dashboard)
	projects.GET("/:id/stream", h.project)
	projects.GET("/:id/tasks/:task_id/comments/stream", h.taskComments)
}
