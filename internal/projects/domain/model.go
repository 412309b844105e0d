package domain

import (
	"strings"
	"time"

	"github.com/projecthub-dev/projecthub-backend/internal/validation"
)

type Role string

const (
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
	RoleViewer Role = "viewer"
)

type Status string

const (
	StatusPlanning  Status = "planning"
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// Member is one entry of a project's embedded member list.
type Member struct {
	UserID  string    `json:"user_id"`
	Email   string    `json:"email"`
	Name    string    `json:"name"`
	Role    Role      `json:"role"`
	AddedAt time.Time `json:"added_at"`
	Avatar  string    `json:"avatar,omitempty"`
}

// Project is a time-boxed piece of work owned by its creator. MemberIDs
// mirrors Members and is what membership queries match on.
type Project struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	StartDate   time.Time `json:"start_date"`
	EndDate     time.Time `json:"end_date"`
	Status      Status    `json:"status"`
	CreatedBy   string    `json:"created_by"`
	Members     []Member  `json:"members"`
	MemberIDs   []string  `json:"member_ids"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ProjectForm is the create/edit form.
type ProjectForm struct {
	Title       string `json:"title" validate:"required,min=3,max=100"`
	Description string `json:"description" validate:"required,min=10,max=500"`
	StartDate   string `json:"start_date" validate:"required,isodate"`
	EndDate     string `json:"end_date" validate:"required,isodate"`
}

// Validate checks field rules and that the end date is strictly after the
// start date, returning the parsed dates.
func (f *ProjectForm) Validate() (start, end time.Time, err error) {
	f.Title = strings.TrimSpace(f.Title)
	f.Description = strings.TrimSpace(f.Description)

	if err := validation.Struct(f); err != nil {
		return time.Time{}, time.Time{}, err
	}

	start, _ = validation.ParseDate(f.StartDate)
	end, _ = validation.ParseDate(f.EndDate)
	if !end.After(start) {
		return time.Time{}, time.Time{}, validation.FieldErrors{"end_date": "end date must be after start date"}
	}
	return start, end, nil
}

// UpdateProjectRequest is a partial edit. Nil fields are left unchanged.
type UpdateProjectRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	StartDate   *string `json:"start_date"`
	EndDate     *string `json:"end_date"`
	Status      *string `json:"status" validate:"omitempty,oneof=planning active completed cancelled"`
}

// TouchesForm reports whether any form field is being changed.
func (r *UpdateProjectRequest) TouchesForm() bool {
	return r.Title != nil || r.Description != nil || r.StartDate != nil || r.EndDate != nil
}

// Merge overlays the request on p's current values.
func (r *UpdateProjectRequest) Merge(p *Project) ProjectForm {
	f := ProjectForm{
		Title:       p.Title,
		Description: p.Description,
		StartDate:   p.StartDate.Format(time.RFC3339),
		EndDate:     p.EndDate.Format(time.RFC3339),
	}
	if r.Title != nil {
		f.Title = *r.Title
	}
	if r.Description != nil {
		f.Description = *r.Description
	}
	if r.StartDate != nil {
		f.StartDate = *r.StartDate
	}
	if r.EndDate != nil {
		f.EndDate = *r.EndDate
	}
	return f
}

type AddMemberRequest struct {
	Email string `json:"email" validate:"required,email"`
	Role  string `json:"role" validate:"required,oneof=admin member viewer"`
}

type UpdateMemberRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=admin member viewer"`
}

// Details is a project with its task statistics.
type Details struct {
	Project *Project `json:"project"`
	Stats   Stats    `json:"stats"`
}
