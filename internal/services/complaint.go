// Package services contains business logic layers.
// Services are called by handlers and interact with the stores.
package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nagorik/grievance-server/internal/lifecycle"
	"github.com/nagorik/grievance-server/internal/models"
	"github.com/nagorik/grievance-server/internal/store"
	"go.uber.org/zap"
)

var mobilePattern = regexp.MustCompile(`^[0-9]{10,15}$`)

// ErrForbidden is returned when a caller may not read the requested record.
var ErrForbidden = errors.New("access denied")

// ValidationError reports a field-specific submission problem. No
// network or database call has been made when one is returned.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ComplaintRepository defines persistence operations for complaints.
type ComplaintRepository interface {
	Create(ctx context.Context, c *models.Complaint) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Complaint, error)
	List(ctx context.Context, f store.ComplaintFilter) ([]models.Complaint, error)
	ListBySubmitter(ctx context.Context, email string) ([]models.Complaint, error)
	Transition(ctx context.Context, id uuid.UUID, mutate func(*models.Complaint) error) (*models.Complaint, error)
}

// EmployeeDirectory is the slice of the user store the complaint
// service needs to validate assignments.
type EmployeeDirectory interface {
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}

// MediaRemover deletes an uploaded object by its public URL. Used to
// compensate when a database write fails after a successful upload, so
// no orphaned media is left behind.
type MediaRemover interface {
	RemoveByURL(ctx context.Context, url string) error
}

// ComplaintService handles complaint business logic: validated
// submission and policy-checked lifecycle transitions.
type ComplaintService struct {
	repo     ComplaintRepository
	users    EmployeeDirectory
	media    MediaRemover
	activity *ActivityService
	logger   *zap.SugaredLogger
	now      func() time.Time
}

// NewComplaintService creates a new complaint service.
func NewComplaintService(repo ComplaintRepository, users EmployeeDirectory, media MediaRemover, activity *ActivityService, logger *zap.SugaredLogger) *ComplaintService {
	return &ComplaintService{
		repo:     repo,
		users:    users,
		media:    media,
		activity: activity,
		logger:   logger,
		now:      time.Now,
	}
}

// Submit validates citizen input and creates a Pending complaint with a
// seeded history entry. Validation failures return a *ValidationError
// before anything is written. If the insert fails after media was
// uploaded, the uploaded objects are deleted.
func (s *ComplaintService) Submit(ctx context.Context, submitter *models.User, req *models.ComplaintSubmission) (*models.Complaint, error) {
	if submitter == nil || submitter.Role != models.RoleCitizen {
		return nil, lifecycle.ErrUnauthorized
	}
	if strings.TrimSpace(req.Description) == "" {
		return nil, &ValidationError{Field: "description", Message: "description is required"}
	}
	if len(req.MediaURLs) == 0 {
		return nil, &ValidationError{Field: "media_urls", Message: "at least one photo is required"}
	}
	if strings.TrimSpace(req.Ward) == "" {
		return nil, &ValidationError{Field: "ward", Message: "ward is required"}
	}
	if strings.TrimSpace(req.Category) == "" {
		return nil, &ValidationError{Field: "category", Message: "category is required"}
	}
	if !mobilePattern.MatchString(req.Mobile) {
		return nil, &ValidationError{Field: "mobile", Message: "mobile must be 10 to 15 digits"}
	}

	// The anonymous marker replaces whatever name was typed; the typed
	// name is never stored.
	name := strings.TrimSpace(req.Name)
	if req.Anonymous || name == "" {
		name = models.AnonymousName
	}

	id := uuid.New()
	now := s.now()
	complaint := &models.Complaint{
		ID:          id,
		Reference:   id.String()[:8],
		Title:       strings.TrimSpace(req.Title),
		Category:    req.Category,
		Description: strings.TrimSpace(req.Description),
		Ward:        req.Ward,
		MediaURLs:   req.MediaURLs,
		Location:    req.Location,
		Submitter:   submitter.Email,
		Name:        name,
		Anonymous:   req.Anonymous,
		Mobile:      req.Mobile,
		Status:      models.StatusPending,
		History:     lifecycle.SeedHistory(submitter.Email, now),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(ctx, complaint); err != nil {
		s.cleanupMedia(ctx, req.MediaURLs)
		return nil, fmt.Errorf("create complaint: %w", err)
	}

	s.activity.Record(ctx, &complaint.ID, "submission", "SYSTEM", "complaint received")
	s.logger.Infow("Complaint submitted",
		"id", complaint.ID,
		"ward", complaint.Ward,
		"category", complaint.Category,
		"anonymous", complaint.Anonymous,
	)
	return complaint, nil
}

// Get returns one complaint, restricted to its submitter, its assignee,
// or an administrator.
func (s *ComplaintService) Get(ctx context.Context, id uuid.UUID, actor lifecycle.Actor) (*models.Complaint, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canRead(c, actor) {
		return nil, ErrForbidden
	}
	return c, nil
}

// List returns complaints filtered by status and ward (admin dashboards).
func (s *ComplaintService) List(ctx context.Context, f store.ComplaintFilter) ([]models.Complaint, error) {
	return s.repo.List(ctx, f)
}

// ListBySubmitter returns a citizen's own complaints.
func (s *ComplaintService) ListBySubmitter(ctx context.Context, email string) ([]models.Complaint, error) {
	return s.repo.ListBySubmitter(ctx, email)
}

// ListForEmployee returns the complaints assigned to one employee.
func (s *ComplaintService) ListForEmployee(ctx context.Context, email string) ([]models.Complaint, error) {
	return s.repo.List(ctx, store.ComplaintFilter{EmployeeID: email})
}

// View executes the Pending → Viewed transition.
func (s *ComplaintService) View(ctx context.Context, id uuid.UUID, actor lifecycle.Actor) (*models.Complaint, error) {
	return s.transition(ctx, id, models.StatusViewed, actor, lifecycle.Payload{})
}

// Assign executes the Viewed → Assigned transition. The target must be
// an active (non-suspended) employee.
func (s *ComplaintService) Assign(ctx context.Context, id uuid.UUID, actor lifecycle.Actor, employeeID string) (*models.Complaint, error) {
	employee, err := s.users.GetByEmail(ctx, employeeID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, &ValidationError{Field: "employee_id", Message: "no such employee"}
		}
		return nil, err
	}
	if employee.Role != models.RoleEmployee {
		return nil, &ValidationError{Field: "employee_id", Message: "target is not an employee"}
	}
	if employee.Suspended {
		return nil, &ValidationError{Field: "employee_id", Message: "employee is suspended"}
	}
	return s.transition(ctx, id, models.StatusAssigned, actor, lifecycle.Payload{EmployeeID: employeeID})
}

// Start executes the Assigned → Ongoing transition (the assignee
// opening the complaint).
func (s *ComplaintService) Start(ctx context.Context, id uuid.UUID, actor lifecycle.Actor) (*models.Complaint, error) {
	return s.transition(ctx, id, models.StatusOngoing, actor, lifecycle.Payload{})
}

// Resolve executes the Ongoing → Resolved transition. At least one
// photo is required; a rejected resolution deletes the photos that were
// uploaded for it.
func (s *ComplaintService) Resolve(ctx context.Context, id uuid.UUID, actor lifecycle.Actor, req *models.ResolveRequest) (*models.Complaint, error) {
	c, err := s.transition(ctx, id, models.StatusResolved, actor, lifecycle.Payload{
		MediaURLs: req.MediaURLs,
		Comment:   req.Comment,
	})
	if err != nil {
		s.cleanupMedia(ctx, req.MediaURLs)
		return nil, err
	}
	return c, nil
}

// transition applies the lifecycle policy inside the store's row-locked
// transaction, so the guard is evaluated against the committed status
// rather than a stale client copy. A rejection writes nothing.
func (s *ComplaintService) transition(ctx context.Context, id uuid.UUID, to models.Status, actor lifecycle.Actor, p lifecycle.Payload) (*models.Complaint, error) {
	c, err := s.repo.Transition(ctx, id, func(c *models.Complaint) error {
		return lifecycle.Apply(c, to, actor, p, s.now())
	})
	if err != nil {
		return nil, err
	}

	s.activity.Record(ctx, &c.ID, strings.ToLower(string(to)), actor.Email, "status changed to "+string(to))
	s.logger.Infow("Complaint transitioned",
		"id", c.ID,
		"status", c.Status,
		"actor", actor.Email,
	)
	return c, nil
}

func (s *ComplaintService) cleanupMedia(ctx context.Context, urls []string) {
	if s.media == nil {
		return
	}
	for _, url := range urls {
		if err := s.media.RemoveByURL(ctx, url); err != nil {
			s.logger.Warnw("Failed to delete orphaned media", "url", url, "error", err)
		}
	}
}

func canRead(c *models.Complaint, actor lifecycle.Actor) bool {
	switch actor.Role {
	case models.RoleAdministrative:
		return true
	case models.RoleEmployee:
		return c.EmployeeID != nil && *c.EmployeeID == actor.Email
	case models.RoleCitizen:
		return c.Submitter == actor.Email
	}
	return false
}
