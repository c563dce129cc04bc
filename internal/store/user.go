package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nagorik/grievance-server/internal/models"
)

const userColumns = `email, name, role, photo_url, department, designation, mobile,
	suspended, password_hash, created_at, updated_at`

// UserStore handles persistence for users.
type UserStore struct {
	db *pgxpool.Pool
}

// NewUserStore creates a user repository over the given pool.
func NewUserStore(db *pgxpool.Pool) *UserStore {
	return &UserStore{db: db}
}

// Create inserts a new user. Returns ErrDuplicate when the email is taken.
func (s *UserStore) Create(ctx context.Context, u *models.User) error {
	query := `
		INSERT INTO users (` + userColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := s.db.Exec(ctx, query,
		u.Email, u.Name, u.Role, u.PhotoURL, u.Department, u.Designation, u.Mobile,
		u.Suspended, u.PasswordHash, u.CreatedAt, u.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicate
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// GetByEmail returns a single user by its natural key.
func (s *UserStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	var u models.User
	err := s.db.QueryRow(ctx, query, email).Scan(
		&u.Email, &u.Name, &u.Role, &u.PhotoURL, &u.Department, &u.Designation, &u.Mobile,
		&u.Suspended, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &u, nil
}

// List returns users, optionally filtered by role, oldest first.
func (s *UserStore) List(ctx context.Context, role models.Role) ([]models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users`
	args := []any{}
	if role != "" {
		query += ` WHERE role = $1`
		args = append(args, role)
	}
	query += ` ORDER BY created_at`

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()
	return scanUsers(rows)
}

// SetSuspended toggles the soft suspension flag on a user.
func (s *UserStore) SetSuspended(ctx context.Context, email string, suspended bool) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE users SET suspended = $1, updated_at = NOW() WHERE email = $2`,
		suspended, email,
	)
	if err != nil {
		return fmt.Errorf("update suspension: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateProfile updates the mutable profile fields (display name, photo).
// Role is deliberately not updatable: it is fixed at creation.
func (s *UserStore) UpdateProfile(ctx context.Context, email, name, photoURL string) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE users SET name = $1, photo_url = $2, updated_at = NOW() WHERE email = $3`,
		name, photoURL, email,
	)
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Departments returns the distinct departments of active employees.
func (s *UserStore) Departments(ctx context.Context) ([]string, error) {
	rows, err := s.db.Query(ctx, `
		SELECT DISTINCT department FROM users
		WHERE role = 'employee' AND NOT suspended AND department <> ''
		ORDER BY department
	`)
	if err != nil {
		return nil, fmt.Errorf("list departments: %w", err)
	}
	defer rows.Close()
	return scanStrings(rows)
}

// Designations returns the distinct designations of active employees
// within one department.
func (s *UserStore) Designations(ctx context.Context, department string) ([]string, error) {
	rows, err := s.db.Query(ctx, `
		SELECT DISTINCT designation FROM users
		WHERE role = 'employee' AND NOT suspended AND department = $1 AND designation <> ''
		ORDER BY designation
	`, department)
	if err != nil {
		return nil, fmt.Errorf("list designations: %w", err)
	}
	defer rows.Close()
	return scanStrings(rows)
}

// SearchEmployees returns active employees narrowed by department,
// designation, and a case-insensitive name/email search term. Empty
// arguments are treated as "no filter".
func (s *UserStore) SearchEmployees(ctx context.Context, department, designation, search string) ([]models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE role = 'employee' AND NOT suspended`
	args := []any{}
	if department != "" {
		args = append(args, department)
		query += fmt.Sprintf(" AND department = $%d", len(args))
	}
	if designation != "" {
		args = append(args, designation)
		query += fmt.Sprintf(" AND designation = $%d", len(args))
	}
	if search != "" {
		args = append(args, "%"+search+"%")
		query += fmt.Sprintf(" AND (name ILIKE $%d OR email ILIKE $%d)", len(args), len(args))
	}
	query += " ORDER BY name"

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("search employees: %w", err)
	}
	defer rows.Close()
	return scanUsers(rows)
}

func scanUsers(rows pgx.Rows) ([]models.User, error) {
	var users []models.User
	for rows.Next() {
		var u models.User
		if err := rows.Scan(
			&u.Email, &u.Name, &u.Role, &u.PhotoURL, &u.Department, &u.Designation, &u.Mobile,
			&u.Suspended, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt,
		); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func scanStrings(rows pgx.Rows) ([]string, error) {
	var out []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
