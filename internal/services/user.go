package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/nagorik/grievance-server/internal/models"
	"github.com/nagorik/grievance-server/internal/store"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials is returned when login fails. It deliberately
// does not distinguish an unknown email from a wrong password.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ErrSuspended is returned when a suspended account attempts to log in.
var ErrSuspended = errors.New("account is suspended")

// UserRepository defines persistence operations for users.
type UserRepository interface {
	Create(ctx context.Context, u *models.User) error
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context, role models.Role) ([]models.User, error)
	SetSuspended(ctx context.Context, email string, suspended bool) error
	UpdateProfile(ctx context.Context, email, name, photoURL string) error
	Departments(ctx context.Context) ([]string, error)
	Designations(ctx context.Context, department string) ([]string, error)
	SearchEmployees(ctx context.Context, department, designation, search string) ([]models.User, error)
}

// EmployeeRegistration is the input for an administrator creating an
// employee account.
type EmployeeRegistration struct {
	Email       string `json:"email"`
	Name        string `json:"name"`
	Password    string `json:"password"`
	Department  string `json:"department"`
	Designation string `json:"designation"`
	Mobile      string `json:"mobile"`
}

// UserService handles accounts: citizen self-registration, employee
// provisioning, authentication, suspension, and the assignment funnel
// over the employee directory.
type UserService struct {
	repo   UserRepository
	logger *zap.SugaredLogger
	now    func() time.Time
}

// NewUserService creates a new user service.
func NewUserService(repo UserRepository, logger *zap.SugaredLogger) *UserService {
	return &UserService{repo: repo, logger: logger, now: time.Now}
}

// RegisterCitizen provisions a citizen account. Role is fixed to
// citizen at creation and never changes afterwards.
func (s *UserService) RegisterCitizen(ctx context.Context, email, name, password string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	name = strings.TrimSpace(name)
	if email == "" || !strings.Contains(email, "@") {
		return nil, &ValidationError{Field: "email", Message: "a valid email is required"}
	}
	if name == "" {
		return nil, &ValidationError{Field: "name", Message: "name is required"}
	}
	if len(password) < 6 {
		return nil, &ValidationError{Field: "password", Message: "password must be at least 6 characters"}
	}
	return s.create(ctx, &models.User{
		Email: email,
		Name:  name,
		Role:  models.RoleCitizen,
	}, password)
}

// RegisterEmployee provisions an employee account. Only administrators
// reach this path; the handler enforces the role gate.
func (s *UserService) RegisterEmployee(ctx context.Context, reg *EmployeeRegistration) (*models.User, error) {
	email := strings.ToLower(strings.TrimSpace(reg.Email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, &ValidationError{Field: "email", Message: "a valid email is required"}
	}
	if strings.TrimSpace(reg.Name) == "" {
		return nil, &ValidationError{Field: "name", Message: "name is required"}
	}
	if strings.TrimSpace(reg.Department) == "" {
		return nil, &ValidationError{Field: "department", Message: "department is required"}
	}
	if strings.TrimSpace(reg.Designation) == "" {
		return nil, &ValidationError{Field: "designation", Message: "designation is required"}
	}
	if len(reg.Password) < 6 {
		return nil, &ValidationError{Field: "password", Message: "password must be at least 6 characters"}
	}
	return s.create(ctx, &models.User{
		Email:       email,
		Name:        strings.TrimSpace(reg.Name),
		Role:        models.RoleEmployee,
		Department:  strings.TrimSpace(reg.Department),
		Designation: strings.TrimSpace(reg.Designation),
		Mobile:      strings.TrimSpace(reg.Mobile),
	}, reg.Password)
}

func (s *UserService) create(ctx context.Context, u *models.User, password string) (*models.User, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	now := s.now()
	u.PasswordHash = string(hashed)
	u.CreatedAt = now
	u.UpdatedAt = now

	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}
	s.logger.Infow("User created", "email", u.Email, "role", u.Role)
	return u, nil
}

// Authenticate verifies credentials and returns the account.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	if user.Suspended {
		return nil, ErrSuspended
	}
	return user, nil
}

// GetByEmail returns one account.
func (s *UserService) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.repo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
}

// List returns accounts, optionally filtered by role.
func (s *UserService) List(ctx context.Context, role models.Role) ([]models.User, error) {
	if role != "" && !role.Valid() {
		return nil, &ValidationError{Field: "role", Message: "unknown role"}
	}
	return s.repo.List(ctx, role)
}

// SetSuspended toggles the reversible suspension flag on an employee.
func (s *UserService) SetSuspended(ctx context.Context, email string, suspended bool) error {
	if err := s.repo.SetSuspended(ctx, strings.ToLower(strings.TrimSpace(email)), suspended); err != nil {
		return err
	}
	s.logger.Infow("User suspension updated", "email", email, "suspended", suspended)
	return nil
}

// UpdateProfile updates display name and photo for the given account.
func (s *UserService) UpdateProfile(ctx context.Context, email, name, photoURL string) error {
	if strings.TrimSpace(name) == "" {
		return &ValidationError{Field: "name", Message: "name is required"}
	}
	return s.repo.UpdateProfile(ctx, email, strings.TrimSpace(name), strings.TrimSpace(photoURL))
}

// Departments is the first level of the assignment funnel.
func (s *UserService) Departments(ctx context.Context) ([]string, error) {
	return s.repo.Departments(ctx)
}

// Designations is the second level of the funnel, narrowed to one
// department.
func (s *UserService) Designations(ctx context.Context, department string) ([]string, error) {
	if strings.TrimSpace(department) == "" {
		return nil, &ValidationError{Field: "department", Message: "department is required"}
	}
	return s.repo.Designations(ctx, department)
}

// SearchEmployees is the final funnel level: employees narrowed by the
// selections above plus a live text search.
func (s *UserService) SearchEmployees(ctx context.Context, department, designation, search string) ([]models.User, error) {
	return s.repo.SearchEmployees(ctx, department, designation, strings.TrimSpace(search))
}
