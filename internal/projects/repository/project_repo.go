package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/projecthub-dev/projecthub-backend/internal/projects/domain"
)

// ProjectRepository provides persistence operations for projects
type ProjectRepository struct {
	db *sql.DB
}

// NewProjectRepository creates a new project repository
func NewProjectRepository(db *sql.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

const projectColumns = `id, title, description, start_date, end_date, status, created_by, members, member_ids, created_at, updated_at`

func scanProject(row interface{ Scan(...any) error }) (*domain.Project, error) {
	var p domain.Project
	var members []byte
	var memberIDs pq.StringArray
	if err := row.Scan(&p.ID, &p.Title, &p.Description, &p.StartDate, &p.EndDate, &p.Status,
		&p.CreatedBy, &members, &memberIDs, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	if len(members) > 0 {
		if err := json.Unmarshal(members, &p.Members); err != nil {
			return nil, fmt.Errorf("decode members: %w", err)
		}
	}
	if p.Members == nil {
		p.Members = []domain.Member{}
	}
	p.MemberIDs = []string(memberIDs)
	if p.MemberIDs == nil {
		p.MemberIDs = []string{}
	}
	return &p, nil
}

// Create inserts p, assigning an id when it has none.
func (r *ProjectRepository) Create(ctx context.Context, p *domain.Project) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	members, err := json.Marshal(p.Members)
	if err != nil {
		return fmt.Errorf("encode members: %w", err)
	}

	const q = `
INSERT INTO projects (id, title, description, start_date, end_date, status, created_by, members, member_ids)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8::jsonb, $9)
RETURNING created_at, updated_at;
`
	err = r.db.QueryRowContext(ctx, q, p.ID, p.Title, p.Description, p.StartDate, p.EndDate, p.Status,
		p.CreatedBy, string(members), pq.Array(p.MemberIDs)).
		Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert project: %w", err)
	}
	return nil
}

// GetByID returns a live (not soft-deleted) project.
func (r *ProjectRepository) GetByID(ctx context.Context, id string) (*domain.Project, error) {
	q := `SELECT ` + projectColumns + ` FROM projects WHERE id = $1 AND deleted_at IS NULL`
	p, err := scanProject(r.db.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get project: %w", err)
	}
	return p, nil
}

// ListOwned returns the projects created by userID.
func (r *ProjectRepository) ListOwned(ctx context.Context, userID string) ([]domain.Project, error) {
	q := `
SELECT ` + projectColumns + `
FROM projects
WHERE created_by = $1 AND deleted_at IS NULL
ORDER BY updated_at DESC;
`
	return r.list(ctx, q, userID)
}

// ListMember returns the projects whose member_ids contain userID.
func (r *ProjectRepository) ListMember(ctx context.Context, userID string) ([]domain.Project, error) {
	q := `
SELECT ` + projectColumns + `
FROM projects
WHERE $1 = ANY(member_ids) AND deleted_at IS NULL
ORDER BY updated_at DESC;
`
	return r.list(ctx, q, userID)
}

func (r *ProjectRepository) list(ctx context.Context, q string, args ...any) ([]domain.Project, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Project, 0, 16)
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Update writes the editable fields of p and refreshes its updated_at.
func (r *ProjectRepository) Update(ctx context.Context, p *domain.Project) error {
	const q = `
UPDATE projects
SET title = $2, description = $3, start_date = $4, end_date = $5, status = $6, updated_at = now()
WHERE id = $1 AND deleted_at IS NULL
RETURNING updated_at;
`
	err := r.db.QueryRowContext(ctx, q, p.ID, p.Title, p.Description, p.StartDate, p.EndDate, p.Status).
		Scan(&p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("update project: %w", err)
	}
	return nil
}

// SetMembers replaces the member list and its mirrored id array in one
// statement.
func (r *ProjectRepository) SetMembers(ctx context.Context, p *domain.Project) error {
	p.MemberIDs = domain.MemberIDs(p.Members)
	members, err := json.Marshal(p.Members)
	if err != nil {
		return fmt.Errorf("encode members: %w", err)
	}

	const q = `
UPDATE projects
SET members = $2::jsonb, member_ids = $3, updated_at = now()
WHERE id = $1 AND deleted_at IS NULL
RETURNING updated_at;
`
	err = r.db.QueryRowContext(ctx, q, p.ID, string(members), pq.Array(p.MemberIDs)).Scan(&p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("update members: %w", err)
	}
	return nil
}

// SoftDelete marks a project as deleted (soft delete).
func (r *ProjectRepository) SoftDelete(ctx context.Context, id string) (bool, error) {
	const q = `
UPDATE projects
SET deleted_at = now(), updated_at = now()
WHERE id = $1 AND deleted_at IS NULL;
`
	result, err := r.db.ExecContext(ctx, q, id)
	if err != nil {
		return false, fmt.Errorf("delete project: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rowsAffected > 0, nil
}

// PurgeDeleted removes projects soft-deleted before cutoff. Tasks and
// comments go with them through ON DELETE CASCADE.
func (r *ProjectRepository) PurgeDeleted(ctx context.Context, cutoff time.Time) (int64, error) {
	const q = `DELETE FROM projects WHERE deleted_at IS NOT NULL AND deleted_at < $1`
	result, err := r.db.ExecContext(ctx, q, cutoff)
	if err != nil {
		return 0, fmt.Errorf("purge projects: %w", err)
	}
	return result.RowsAffected()
}
