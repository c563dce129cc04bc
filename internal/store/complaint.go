// Package store contains the persistence layer: pgx-backed repositories
// for complaints, users, and activity logs. Services depend on these
// through small interfaces so they can be mocked in tests.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nagorik/grievance-server/internal/models"
)

const complaintColumns = `id, reference, title, category, description, ward, media_urls,
	location, submitter, name, anonymous, mobile, employee_id, status, history,
	created_at, updated_at`

// ComplaintStore handles persistence for complaints.
type ComplaintStore struct {
	db *pgxpool.Pool
}

// NewComplaintStore creates a complaint repository over the given pool.
func NewComplaintStore(db *pgxpool.Pool) *ComplaintStore {
	return &ComplaintStore{db: db}
}

// ComplaintFilter narrows List results. Zero values mean "no filter".
type ComplaintFilter struct {
	Status     models.Status
	Ward       string
	EmployeeID string
}

// Create inserts a new complaint row.
func (s *ComplaintStore) Create(ctx context.Context, c *models.Complaint) error {
	query := `
		INSERT INTO complaints (` + complaintColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
	`
	_, err := s.db.Exec(ctx, query,
		c.ID, c.Reference, c.Title, c.Category, c.Description, c.Ward, c.MediaURLs,
		c.Location, c.Submitter, c.Name, c.Anonymous, c.Mobile, c.EmployeeID,
		c.Status, c.History, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert complaint: %w", err)
	}
	return nil
}

// GetByID returns a single complaint.
func (s *ComplaintStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Complaint, error) {
	query := `SELECT ` + complaintColumns + ` FROM complaints WHERE id = $1`
	return s.scanOne(s.db.QueryRow(ctx, query, id))
}

// List returns complaints matching the filter, newest first.
func (s *ComplaintStore) List(ctx context.Context, f ComplaintFilter) ([]models.Complaint, error) {
	query := `SELECT ` + complaintColumns + ` FROM complaints WHERE 1=1`
	args := []any{}
	if f.Status != "" {
		args = append(args, f.Status)
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if f.Ward != "" {
		args = append(args, f.Ward)
		query += fmt.Sprintf(" AND ward = $%d", len(args))
	}
	if f.EmployeeID != "" {
		args = append(args, f.EmployeeID)
		query += fmt.Sprintf(" AND employee_id = $%d", len(args))
	}
	query += " ORDER BY created_at DESC"

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list complaints: %w", err)
	}
	defer rows.Close()
	return s.scanMany(rows)
}

// ListBySubmitter returns the complaints filed by one citizen, newest first.
func (s *ComplaintStore) ListBySubmitter(ctx context.Context, email string) ([]models.Complaint, error) {
	query := `SELECT ` + complaintColumns + ` FROM complaints
		WHERE submitter = $1 ORDER BY created_at DESC`
	rows, err := s.db.Query(ctx, query, email)
	if err != nil {
		return nil, fmt.Errorf("list complaints by submitter: %w", err)
	}
	defer rows.Close()
	return s.scanMany(rows)
}

// Transition loads the complaint under a row lock, runs mutate against
// the fresh copy, and persists the result in the same transaction. This
// makes the lifecycle guard authoritative: two racing transition
// attempts serialize on the lock and the loser re-validates against the
// winner's committed status. If mutate returns an error nothing is
// written.
func (s *ComplaintStore) Transition(ctx context.Context, id uuid.UUID, mutate func(*models.Complaint) error) (*models.Complaint, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transition: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `SELECT ` + complaintColumns + ` FROM complaints WHERE id = $1 FOR UPDATE`
	c, err := s.scanOne(tx.QueryRow(ctx, query, id))
	if err != nil {
		return nil, err
	}

	if err := mutate(c); err != nil {
		return nil, err
	}

	update := `
		UPDATE complaints
		SET status = $1, employee_id = $2, history = $3, updated_at = $4
		WHERE id = $5
	`
	if _, err := tx.Exec(ctx, update, c.Status, c.EmployeeID, c.History, c.UpdatedAt, c.ID); err != nil {
		return nil, fmt.Errorf("update complaint: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transition: %w", err)
	}
	return c, nil
}

// CountByStatus returns complaint counts grouped by lifecycle state.
func (s *ComplaintStore) CountByStatus(ctx context.Context) ([]models.StatusCount, error) {
	rows, err := s.db.Query(ctx, `SELECT status, COUNT(*) FROM complaints GROUP BY status ORDER BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var counts []models.StatusCount
	for rows.Next() {
		var c models.StatusCount
		if err := rows.Scan(&c.Status, &c.Count); err != nil {
			return nil, err
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}

// CountByWard returns complaint counts grouped by ward, busiest first.
func (s *ComplaintStore) CountByWard(ctx context.Context) ([]models.WardCount, error) {
	rows, err := s.db.Query(ctx, `SELECT ward, COUNT(*) FROM complaints GROUP BY ward ORDER BY COUNT(*) DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var counts []models.WardCount
	for rows.Next() {
		var c models.WardCount
		if err := rows.Scan(&c.Ward, &c.Count); err != nil {
			return nil, err
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}

// CountByCategory returns complaint counts grouped by category.
func (s *ComplaintStore) CountByCategory(ctx context.Context) ([]models.CategoryCount, error) {
	rows, err := s.db.Query(ctx, `SELECT category, COUNT(*) FROM complaints GROUP BY category ORDER BY COUNT(*) DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var counts []models.CategoryCount
	for rows.Next() {
		var c models.CategoryCount
		if err := rows.Scan(&c.Category, &c.Count); err != nil {
			return nil, err
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (s *ComplaintStore) scanOne(row rowScanner) (*models.Complaint, error) {
	var c models.Complaint
	err := row.Scan(
		&c.ID, &c.Reference, &c.Title, &c.Category, &c.Description, &c.Ward, &c.MediaURLs,
		&c.Location, &c.Submitter, &c.Name, &c.Anonymous, &c.Mobile, &c.EmployeeID,
		&c.Status, &c.History, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan complaint: %w", err)
	}
	return &c, nil
}

func (s *ComplaintStore) scanMany(rows pgx.Rows) ([]models.Complaint, error) {
	var complaints []models.Complaint
	for rows.Next() {
		c, err := s.scanOne(rows)
		if err != nil {
			return nil, err
		}
		complaints = append(complaints, *c)
	}
	return complaints, rows.Err()
}
