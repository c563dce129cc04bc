package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nagorik/grievance-server/internal/models"
)

// ActivityStore handles persistence for the audit log of authority
// actions on complaints.
type ActivityStore struct {
	db *pgxpool.Pool
}

// NewActivityStore creates an activity repository over the given pool.
func NewActivityStore(db *pgxpool.Pool) *ActivityStore {
	return &ActivityStore{db: db}
}

// Insert appends one audit record.
func (s *ActivityStore) Insert(ctx context.Context, entry *models.ActivityLog) error {
	query := `
		INSERT INTO activity_logs (complaint_id, action, actor, detail)
		VALUES ($1, $2, $3, $4)
	`
	_, err := s.db.Exec(ctx, query, entry.ComplaintID, entry.Action, entry.Actor, entry.Detail)
	if err != nil {
		return fmt.Errorf("insert activity log: %w", err)
	}
	return nil
}

// ByComplaint returns the audit records for one complaint, newest first.
func (s *ActivityStore) ByComplaint(ctx context.Context, complaintID uuid.UUID, limit int) ([]models.ActivityLog, error) {
	query := `
		SELECT id, complaint_id, action, actor, detail, created_at
		FROM activity_logs
		WHERE complaint_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`
	rows, err := s.db.Query(ctx, query, complaintID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanActivityLogs(rows)
}

// Recent returns the latest audit records across all complaints.
func (s *ActivityStore) Recent(ctx context.Context, limit int) ([]models.ActivityLog, error) {
	query := `
		SELECT id, complaint_id, action, actor, detail, created_at
		FROM activity_logs
		ORDER BY created_at DESC
		LIMIT $1
	`
	rows, err := s.db.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanActivityLogs(rows)
}

func scanActivityLogs(rows pgx.Rows) ([]models.ActivityLog, error) {
	var logs []models.ActivityLog
	for rows.Next() {
		var l models.ActivityLog
		if err := rows.Scan(&l.ID, &l.ComplaintID, &l.Action, &l.Actor, &l.Detail, &l.CreatedAt); err != nil {
			return nil, err
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}
