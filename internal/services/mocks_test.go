package services_test

import (
	"context"

	"github.com/google/uuid"
	"github.com/nagorik/grievance-server/internal/models"
	"github.com/nagorik/grievance-server/internal/store"
	"github.com/stretchr/testify/mock"
)

// MockComplaintRepo is a testify mock of services.ComplaintRepository.
// Transition runs the mutate callback against the stored complaint,
// mirroring the row-locked read-modify-write of the real store.
type MockComplaintRepo struct {
	mock.Mock
	current *models.Complaint
}

func (m *MockComplaintRepo) Create(ctx context.Context, c *models.Complaint) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockComplaintRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Complaint, error) {
	args := m.Called(ctx, id)
	if c := args.Get(0); c != nil {
		return c.(*models.Complaint), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockComplaintRepo) List(ctx context.Context, f store.ComplaintFilter) ([]models.Complaint, error) {
	args := m.Called(ctx, f)
	if c := args.Get(0); c != nil {
		return c.([]models.Complaint), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockComplaintRepo) ListBySubmitter(ctx context.Context, email string) ([]models.Complaint, error) {
	args := m.Called(ctx, email)
	if c := args.Get(0); c != nil {
		return c.([]models.Complaint), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockComplaintRepo) Transition(ctx context.Context, id uuid.UUID, mutate func(*models.Complaint) error) (*models.Complaint, error) {
	args := m.Called(ctx, id)
	if err := args.Error(0); err != nil {
		return nil, err
	}
	if err := mutate(m.current); err != nil {
		return nil, err
	}
	return m.current, nil
}

// MockUserRepo is a testify mock of services.UserRepository.
type MockUserRepo struct {
	mock.Mock
}

func (m *MockUserRepo) Create(ctx context.Context, u *models.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

func (m *MockUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if u := args.Get(0); u != nil {
		return u.(*models.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepo) List(ctx context.Context, role models.Role) ([]models.User, error) {
	args := m.Called(ctx, role)
	if u := args.Get(0); u != nil {
		return u.([]models.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepo) SetSuspended(ctx context.Context, email string, suspended bool) error {
	args := m.Called(ctx, email, suspended)
	return args.Error(0)
}

func (m *MockUserRepo) UpdateProfile(ctx context.Context, email, name, photoURL string) error {
	args := m.Called(ctx, email, name, photoURL)
	return args.Error(0)
}

func (m *MockUserRepo) Departments(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if d := args.Get(0); d != nil {
		return d.([]string), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepo) Designations(ctx context.Context, department string) ([]string, error) {
	args := m.Called(ctx, department)
	if d := args.Get(0); d != nil {
		return d.([]string), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepo) SearchEmployees(ctx context.Context, department, designation, search string) ([]models.User, error) {
	args := m.Called(ctx, department, designation, search)
	if u := args.Get(0); u != nil {
		return u.([]models.User), args.Error(1)
	}
	return nil, args.Error(1)
}

// MockMediaRemover is a testify mock of services.MediaRemover.
type MockMediaRemover struct {
	mock.Mock
}

func (m *MockMediaRemover) RemoveByURL(ctx context.Context, url string) error {
	args := m.Called(ctx, url)
	return args.Error(0)
}

// MockActivityRepo is a testify mock of services.ActivityRepository.
type MockActivityRepo struct {
	mock.Mock
}

func (m *MockActivityRepo) Insert(ctx context.Context, entry *models.ActivityLog) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockActivityRepo) ByComplaint(ctx context.Context, complaintID uuid.UUID, limit int) ([]models.ActivityLog, error) {
	args := m.Called(ctx, complaintID, limit)
	if l := args.Get(0); l != nil {
		return l.([]models.ActivityLog), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockActivityRepo) Recent(ctx context.Context, limit int) ([]models.ActivityLog, error) {
	args := m.Called(ctx, limit)
	if l := args.Get(0); l != nil {
		return l.([]models.ActivityLog), args.Error(1)
	}
	return nil, args.Error(1)
}
