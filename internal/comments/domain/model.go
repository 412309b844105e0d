package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/projecthub-dev/projecthub-backend/internal/validation"
)

var (
	ErrNotFound  = errors.New("comment not found")
	ErrNotAuthor = errors.New("only the author can change this comment")
)

// Comment is a note on a task. Author name and avatar are cached at write
// time.
type Comment struct {
	ID              string    `json:"id"`
	TaskID          string    `json:"task_id"`
	ProjectID       string    `json:"project_id"`
	Content         string    `json:"content"`
	CreatedBy       string    `json:"created_by"`
	CreatedByName   string    `json:"created_by_name"`
	CreatedByAvatar string    `json:"created_by_avatar,omitempty"`
	Edited          bool      `json:"edited"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

type CommentForm struct {
	Content string `json:"content" validate:"required,max=1000"`
}

// Validate trims the content and checks its length.
func (f *CommentForm) Validate() error {
	f.Content = strings.TrimSpace(f.Content)
	return validation.Struct(f)
}

// AuthorName picks the first non-empty of the given candidates, or "User".
func AuthorName(candidates ...string) string {
	for _, c := range candidates {
		if c = strings.TrimSpace(c); c != "" {
			return c
		}
	}
	return "User"
}
