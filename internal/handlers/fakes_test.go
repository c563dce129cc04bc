package handlers_test

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/nagorik/grievance-server/internal/models"
	"github.com/nagorik/grievance-server/internal/store"
)

// memComplaintRepo is an in-memory services.ComplaintRepository.
type memComplaintRepo struct {
	mu         sync.Mutex
	complaints map[uuid.UUID]*models.Complaint
}

func newMemComplaintRepo() *memComplaintRepo {
	return &memComplaintRepo{complaints: make(map[uuid.UUID]*models.Complaint)}
}

func (r *memComplaintRepo) Create(ctx context.Context, c *models.Complaint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *c
	r.complaints[c.ID] = &clone
	return nil
}

func (r *memComplaintRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Complaint, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.complaints[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	clone := *c
	return &clone, nil
}

func (r *memComplaintRepo) List(ctx context.Context, f store.ComplaintFilter) ([]models.Complaint, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Complaint
	for _, c := range r.complaints {
		if f.Status != "" && c.Status != f.Status {
			continue
		}
		if f.Ward != "" && c.Ward != f.Ward {
			continue
		}
		if f.EmployeeID != "" && (c.EmployeeID == nil || *c.EmployeeID != f.EmployeeID) {
			continue
		}
		out = append(out, *c)
	}
	return out, nil
}

func (r *memComplaintRepo) ListBySubmitter(ctx context.Context, email string) ([]models.Complaint, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Complaint
	for _, c := range r.complaints {
		if c.Submitter == email {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (r *memComplaintRepo) Transition(ctx context.Context, id uuid.UUID, mutate func(*models.Complaint) error) (*models.Complaint, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.complaints[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	// Mutate a copy and only commit it if the policy passed, matching
	// the transactional store.
	clone := *c
	clone.History = append([]models.HistoryEntry(nil), c.History...)
	if err := mutate(&clone); err != nil {
		return nil, err
	}
	r.complaints[id] = &clone
	result := clone
	return &result, nil
}

// memUserRepo is an in-memory services.UserRepository.
type memUserRepo struct {
	mu    sync.Mutex
	users map[string]*models.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[string]*models.User)}
}

func (r *memUserRepo) Create(ctx context.Context, u *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[u.Email]; ok {
		return store.ErrDuplicate
	}
	clone := *u
	r.users[u.Email] = &clone
	return nil
}

func (r *memUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[email]
	if !ok {
		return nil, store.ErrNotFound
	}
	clone := *u
	return &clone, nil
}

func (r *memUserRepo) List(ctx context.Context, role models.Role) ([]models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.User
	for _, u := range r.users {
		if role == "" || u.Role == role {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (r *memUserRepo) SetSuspended(ctx context.Context, email string, suspended bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[email]
	if !ok {
		return store.ErrNotFound
	}
	u.Suspended = suspended
	return nil
}

func (r *memUserRepo) UpdateProfile(ctx context.Context, email, name, photoURL string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[email]
	if !ok {
		return store.ErrNotFound
	}
	u.Name = name
	u.PhotoURL = photoURL
	return nil
}

func (r *memUserRepo) Departments(ctx context.Context) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	seen := map[string]bool{}
	var out []string
	for _, u := range r.users {
		if u.Role == models.RoleEmployee && !u.Suspended && u.Department != "" && !seen[u.Department] {
			seen[u.Department] = true
			out = append(out, u.Department)
		}
	}
	return out, nil
}

func (r *memUserRepo) Designations(ctx context.Context, department string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	seen := map[string]bool{}
	var out []string
	for _, u := range r.users {
		if u.Role == models.RoleEmployee && !u.Suspended && u.Department == department && u.Designation != "" && !seen[u.Designation] {
			seen[u.Designation] = true
			out = append(out, u.Designation)
		}
	}
	return out, nil
}

func (r *memUserRepo) SearchEmployees(ctx context.Context, department, designation, search string) ([]models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.User
	for _, u := range r.users {
		if u.Role != models.RoleEmployee || u.Suspended {
			continue
		}
		if department != "" && u.Department != department {
			continue
		}
		if designation != "" && u.Designation != designation {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(u.Name), strings.ToLower(search)) {
			continue
		}
		out = append(out, *u)
	}
	return out, nil
}

// memActivityRepo is an in-memory services.ActivityRepository.
type memActivityRepo struct {
	mu   sync.Mutex
	logs []models.ActivityLog
}

func (r *memActivityRepo) Insert(ctx context.Context, entry *models.ActivityLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logs = append(r.logs, *entry)
	return nil
}

func (r *memActivityRepo) ByComplaint(ctx context.Context, complaintID uuid.UUID, limit int) ([]models.ActivityLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.ActivityLog
	for _, l := range r.logs {
		if l.ComplaintID != nil && *l.ComplaintID == complaintID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (r *memActivityRepo) Recent(ctx context.Context, limit int) ([]models.ActivityLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.ActivityLog(nil), r.logs...), nil
}

// noopMediaRemover records compensating deletes.
type noopMediaRemover struct {
	mu      sync.Mutex
	removed []string
}

func (m *noopMediaRemover) RemoveByURL(ctx context.Context, url string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.removed = append(m.removed, url)
	return nil
}
