package http

import "github.com/gin-gonic/gin"

// Register attaches the task-scoped routes under projects and the
// comment-id routes under comments.
func (h *Handler) Register(projects, comments *gin.RouterGroup) {
	projects.GET("/:id/tasks/:task_id/comments", h.list)
	projects.POST("/:id/tasks/:task_id/comments", h.create)

	comments.PATCH("/:comment_id", h.update)
	comments.DELETE("/:comment_id", h.delete)
}
