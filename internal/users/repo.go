package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/projecthub-dev/projecthub-backend/internal/storage/postgres"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrEmailTaken   = errors.New("email already registered")
)

// User is an account. The password hash never leaves the repository layer
// through JSON.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PhotoURL     *string   `json:"photo_url,omitempty"`
	FirebaseUID  *string   `json:"-"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// DisplayName falls back to the email local part, then to "User".
func (u *User) DisplayName() string {
	if n := strings.TrimSpace(u.Name); n != "" {
		return n
	}
	if i := strings.IndexByte(u.Email, '@'); i > 0 {
		return u.Email[:i]
	}
	if u.Email != "" {
		return u.Email
	}
	return "User"
}

type Repo struct {
	db *sql.DB
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{db: db}
}

const userColumns = `id, name, email, photo_url, firebase_uid, password_hash, created_at, updated_at`

func scanUser(row interface{ Scan(...any) error }) (*User, error) {
	var u User
	var photoURL, firebaseUID, hash sql.NullString
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &photoURL, &firebaseUID, &hash, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	if photoURL.Valid {
		u.PhotoURL = &photoURL.String
	}
	if firebaseUID.Valid {
		u.FirebaseUID = &firebaseUID.String
	}
	u.PasswordHash = hash.String
	return &u, nil
}

// Create inserts a new user. Emails are stored lower-cased.
func (r *Repo) Create(ctx context.Context, u *User) error {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	u.Email = normalizeEmail(u.Email)

	const q = `
INSERT INTO users (id, name, email, password_hash, photo_url)
VALUES ($1, $2, $3, nullif($4,''), $5)
RETURNING created_at, updated_at;
`
	err := r.db.QueryRowContext(ctx, q, u.ID, u.Name, u.Email, u.PasswordHash, u.PhotoURL).
		Scan(&u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			return ErrEmailTaken
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *Repo) GetByID(ctx context.Context, id string) (*User, error) {
	q := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	u, err := scanUser(r.db.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

func (r *Repo) GetByEmail(ctx context.Context, email string) (*User, error) {
	q := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	u, err := scanUser(r.db.QueryRowContext(ctx, q, normalizeEmail(email)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	return u, nil
}

func (r *Repo) UpdatePassword(ctx context.Context, id, hash string) error {
	const q = `UPDATE users SET password_hash = $2, updated_at = now() WHERE id = $1`
	res, err := r.db.ExecContext(ctx, q, id, hash)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return requireRow(res)
}

func (r *Repo) SetPhotoURL(ctx context.Context, id, url string) error {
	const q = `UPDATE users SET photo_url = $2, updated_at = now() WHERE id = $1`
	res, err := r.db.ExecContext(ctx, q, id, url)
	if err != nil {
		return fmt.Errorf("set photo url: %w", err)
	}
	return requireRow(res)
}

type UpsertUser struct {
	FirebaseUID string
	Email         string
	EmailVerified bool
	DisplayName   string
	PhotoURL      string
}

// EnsureFirebaseUser creates or refreshes the row mirroring a Firebase
// account, keyed by firebase uid.
func (r *Repo) EnsureFirebaseUser(ctx context.Context, in UpsertUser) (*User, error) {
	if in.FirebaseUID == "" {
		return nil, fmt.Errorf("firebase_uid required")
	}

	email := normalizeEmail(in.Email)
	if email == "" {
		email = in.FirebaseUID + "@firebase.local"
	}
	name := strings.TrimSpace(in.DisplayName)
	if name == "" {
		name = (&User{Email: email}).DisplayName()
	}

	q := `
INSERT INTO users (id, firebase_uid, name, email, photo_url, updated_at)
VALUES ($1, $2, $3, $4, nullif($5,''), now())
ON CONFLICT (firebase_uid) DO UPDATE
SET
  email = excluded.email,
  name = coalesce(nullif($6,''), users.name),
  photo_url = coalesce(excluded.photo_url, users.photo_url),
  updated_at = now()
RETURNING ` + userColumns + `;`

	u, err := scanUser(r.db.QueryRowContext(ctx, q,
		uuid.New().String(), in.FirebaseUID, name, email, in.PhotoURL, strings.TrimSpace(in.DisplayName)))
	if err == nil {
		return u, nil
	}
	if !postgres.IsUniqueViolation(err) {
		return nil, fmt.Errorf("ensure firebase user: %w", err)
	}
	// the email belongs to another row; only a verified email may claim it
	if !in.EmailVerified {
		return nil, ErrEmailTaken
	}
	return r.linkFirebaseUID(ctx, in.FirebaseUID, email, in.PhotoURL)
}

// linkFirebaseUID attaches a Firebase uid to the account already holding
// email, as long as that account is not linked to another uid.
func (r *Repo) linkFirebaseUID(ctx context.Context, firebaseUID, email, photoURL string) (*User, error) {
	q := `
UPDATE users
SET firebase_uid = $1, photo_url = coalesce(users.photo_url, nullif($3,'')), updated_at = now()
WHERE email = $2 AND firebase_uid IS NULL
RETURNING ` + userColumns + `;`

	u, err := scanUser(r.db.QueryRowContext(ctx, q, firebaseUID, email, photoURL))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrEmailTaken
	}
	if err != nil {
		return nil, fmt.Errorf("link firebase user: %w", err)
	}
	return u, nil
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrUserNotFound
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
