package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/projecthub-dev/projecthub-backend/internal/validation"
)

var ErrNotFound = errors.New("task not found")

type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in-progress"
	StatusCompleted  Status = "completed"
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Rank orders priorities low=1, medium=2, high=3.
func (p Priority) Rank() int {
	switch p {
	case PriorityLow:
		return 1
	case PriorityMedium:
		return 2
	case PriorityHigh:
		return 3
	}
	return 0
}

// Task belongs to a project. Assignee display fields are copied from the
// project's member list when the task is written.
type Task struct {
	ID               string     `json:"id"`
	ProjectID        string     `json:"project_id"`
	Title            string     `json:"title"`
	Description      string     `json:"description"`
	Status           Status     `json:"status"`
	Priority         Priority   `json:"priority"`
	AssignedTo       string     `json:"assigned_to,omitempty"`
	AssignedToName   string     `json:"assigned_to_name,omitempty"`
	AssignedToAvatar string     `json:"assigned_to_avatar,omitempty"`
	DueDate          *time.Time `json:"due_date,omitempty"`
	Tags             []string   `json:"tags"`
	CreatedBy        string     `json:"created_by"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// TaskForm is the create/edit form.
type TaskForm struct {
	Title       string   `json:"title" validate:"required,min=3,max=100"`
	Description string   `json:"description" validate:"required,min=5,max=1000"`
	Status      string   `json:"status" validate:"required,oneof=pending in-progress completed"`
	Priority    string   `json:"priority" validate:"required,oneof=low medium high"`
	AssignedTo  string   `json:"assigned_to"`
	DueDate     string   `json:"due_date" validate:"omitempty,isodate"`
	Tags        []string `json:"tags" validate:"omitempty,dive,tag"`
}

// Validate normalizes the form, checks field rules and returns the parsed
// due date (nil when unset).
func (f *TaskForm) Validate() (*time.Time, error) {
	f.Title = strings.TrimSpace(f.Title)
	f.Description = strings.TrimSpace(f.Description)
	f.AssignedTo = strings.TrimSpace(f.AssignedTo)
	f.DueDate = strings.TrimSpace(f.DueDate)
	for i := range f.Tags {
		f.Tags[i] = strings.TrimSpace(f.Tags[i])
	}

	if err := validation.Struct(f); err != nil {
		return nil, err
	}
	if f.DueDate == "" {
		return nil, nil
	}
	due, _ := validation.ParseDate(f.DueDate)
	return &due, nil
}

// UpdateTaskRequest is a partial edit. Nil fields are left unchanged; an
// empty assigned_to or due_date clears it.
type UpdateTaskRequest struct {
	Title       *string   `json:"title"`
	Description *string   `json:"description"`
	Status      *string   `json:"status"`
	Priority    *string   `json:"priority"`
	AssignedTo  *string   `json:"assigned_to"`
	DueDate     *string   `json:"due_date"`
	Tags        *[]string `json:"tags"`
}

// Merge overlays the request on t's current values.
func (r *UpdateTaskRequest) Merge(t *Task) TaskForm {
	f := TaskForm{
		Title:       t.Title,
		Description: t.Description,
		Status:      string(t.Status),
		Priority:    string(t.Priority),
		AssignedTo:  t.AssignedTo,
		Tags:        append([]string(nil), t.Tags...),
	}
	if t.DueDate != nil {
		f.DueDate = t.DueDate.Format(time.RFC3339)
	}
	if r.Title != nil {
		f.Title = *r.Title
	}
	if r.Description != nil {
		f.Description = *r.Description
	}
	if r.Status != nil {
		f.Status = *r.Status
	}
	if r.Priority != nil {
		f.Priority = *r.Priority
	}
	if r.AssignedTo != nil {
		f.AssignedTo = *r.AssignedTo
	}
	if r.DueDate != nil {
		f.DueDate = *r.DueDate
	}
	if r.Tags != nil {
		f.Tags = append([]string(nil), (*r.Tags)...)
	}
	return f
}
