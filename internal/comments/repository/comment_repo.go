package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/projecthub-dev/projecthub-backend/internal/comments/domain"
)

type CommentRepository struct {
	db *sql.DB
}

func NewCommentRepository(db *sql.DB) *CommentRepository {
	return &CommentRepository{db: db}
}

const commentColumns = `id, task_id, project_id, content, created_by, created_by_name, created_by_avatar, edited, created_at, updated_at`

func scanComment(row interface{ Scan(...any) error }) (*domain.Comment, error) {
	var c domain.Comment
	var avatar sql.NullString
	if err := row.Scan(&c.ID, &c.TaskID, &c.ProjectID, &c.Content, &c.CreatedBy, &c.CreatedByName,
		&avatar, &c.Edited, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	c.CreatedByAvatar = avatar.String
	return &c, nil
}

func (r *CommentRepository) Create(ctx context.Context, c *domain.Comment) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}

	const q = `
INSERT INTO comments (id, task_id, project_id, content, created_by, created_by_name, created_by_avatar)
VALUES ($1, $2, $3, $4, $5, $6, nullif($7,''))
RETURNING edited, created_at, updated_at;
`
	err := r.db.QueryRowContext(ctx, q, c.ID, c.TaskID, c.ProjectID, c.Content, c.CreatedBy, c.CreatedByName, c.CreatedByAvatar).
		Scan(&c.Edited, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert comment: %w", err)
	}
	return nil
}

func (r *CommentRepository) GetByID(ctx context.Context, id string) (*domain.Comment, error) {
	q := `SELECT ` + commentColumns + ` FROM comments WHERE id = $1`
	c, err := scanComment(r.db.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get comment: %w", err)
	}
	return c, nil
}

// ListByTask returns a task's comments, oldest first.
func (r *CommentRepository) ListByTask(ctx context.Context, taskID string) ([]domain.Comment, error) {
	q := `SELECT ` + commentColumns + ` FROM comments WHERE task_id = $1 ORDER BY created_at ASC`
	rows, err := r.db.QueryContext(ctx, q, taskID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Comment, 0, 16)
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateContent replaces the text and marks the comment edited.
func (r *CommentRepository) UpdateContent(ctx context.Context, c *domain.Comment) error {
	const q = `
UPDATE comments
SET content = $2, edited = true, updated_at = now()
WHERE id = $1
RETURNING edited, updated_at;
`
	err := r.db.QueryRowContext(ctx, q, c.ID, c.Content).Scan(&c.Edited, &c.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("update comment: %w", err)
	}
	return nil
}

func (r *CommentRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM comments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}
