package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/nagorik/grievance-server/internal/models"
	"go.uber.org/zap"
)

// ActivityRepository defines persistence operations for audit records.
type ActivityRepository interface {
	Insert(ctx context.Context, entry *models.ActivityLog) error
	ByComplaint(ctx context.Context, complaintID uuid.UUID, limit int) ([]models.ActivityLog, error)
	Recent(ctx context.Context, limit int) ([]models.ActivityLog, error)
}

// ActivityService records authority actions for accountability. Writes
// are best-effort: a failed audit insert is logged but never fails the
// request that triggered it.
type ActivityService struct {
	repo   ActivityRepository
	logger *zap.SugaredLogger
}

// NewActivityService creates a new activity service.
func NewActivityService(repo ActivityRepository, logger *zap.SugaredLogger) *ActivityService {
	return &ActivityService{repo: repo, logger: logger}
}

// Record appends one audit entry.
func (s *ActivityService) Record(ctx context.Context, complaintID *uuid.UUID, action, actor, detail string) {
	err := s.repo.Insert(ctx, &models.ActivityLog{
		ComplaintID: complaintID,
		Action:      action,
		Actor:       actor,
		Detail:      detail,
	})
	if err != nil {
		s.logger.Errorw("Failed to record activity", "action", action, "error", err)
	}
}

// ByComplaint returns the audit trail of one complaint.
func (s *ActivityService) ByComplaint(ctx context.Context, complaintID uuid.UUID) ([]models.ActivityLog, error) {
	return s.repo.ByComplaint(ctx, complaintID, 50)
}

// Recent returns the latest audit records across all complaints.
func (s *ActivityService) Recent(ctx context.Context) ([]models.ActivityLog, error) {
	return s.repo.Recent(ctx, 100)
}
