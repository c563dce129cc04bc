// Package models defines the data structures used across the application.
// These map to the PostgreSQL schema under internal/db/migrations.
package models

import (
	"time"

	"github.com/google/uuid"
)

// Status is the closed set of complaint lifecycle states.
type Status string

const (
	StatusPending  Status = "Pending"
	StatusViewed   Status = "Viewed"
	StatusAssigned Status = "Assigned"
	StatusOngoing  Status = "Ongoing"
	StatusResolved Status = "Resolved" // terminal
)

// Valid reports whether s is one of the known lifecycle states.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusViewed, StatusAssigned, StatusOngoing, StatusResolved:
		return true
	}
	return false
}

// Role is the closed set of user roles.
type Role string

const (
	RoleCitizen        Role = "citizen"
	RoleEmployee       Role = "employee"
	RoleAdministrative Role = "administrative"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleCitizen, RoleEmployee, RoleAdministrative:
		return true
	}
	return false
}

// AnonymousName is the canonical display name stored for anonymous
// submissions. The typed name is discarded, never persisted.
const AnonymousName = "Anonymous"

// HistoryEntry is one immutable record in a complaint's history log.
// History is append-only: entries are never mutated or reordered.
type HistoryEntry struct {
	Status    Status    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Actor     string    `json:"actor,omitempty"` // email of the acting user, or "SYSTEM"
	Comment   string    `json:"comment,omitempty"`
	MediaURLs []string  `json:"media_urls,omitempty"`
}

// Location is a decimal-degree coordinate pair attached to a complaint
// when the citizen granted geolocation permission.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Complaint is the central entity: a citizen grievance moving through
// the Pending → Viewed → Assigned → Ongoing → Resolved lifecycle.
type Complaint struct {
	ID          uuid.UUID      `json:"id" db:"id"`
	Reference   string         `json:"reference" db:"reference"`
	Title       string         `json:"title" db:"title"`
	Category    string         `json:"category" db:"category"`
	Description string         `json:"description" db:"description"`
	Ward        string         `json:"ward" db:"ward"`
	MediaURLs   []string       `json:"media_urls" db:"media_urls"`
	Location    *Location      `json:"location,omitempty" db:"location"`
	Submitter   string         `json:"submitter" db:"submitter"` // email
	Name        string         `json:"name" db:"name"`           // display name or AnonymousName
	Anonymous   bool           `json:"anonymous" db:"anonymous"`
	Mobile      string         `json:"mobile" db:"mobile"`
	EmployeeID  *string        `json:"employee_id,omitempty" db:"employee_id"` // assignee email
	Status      Status         `json:"status" db:"status"`
	History     []HistoryEntry `json:"history" db:"history"`
	CreatedAt   time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at" db:"updated_at"`
}

// LastHistory returns the most recent history entry, or nil when the
// history is empty.
func (c *Complaint) LastHistory() *HistoryEntry {
	if len(c.History) == 0 {
		return nil
	}
	return &c.History[len(c.History)-1]
}

// ComplaintSubmission is the request body for filing a new complaint.
type ComplaintSubmission struct {
	Title       string    `json:"title"`
	Category    string    `json:"category" validate:"required"`
	Description string    `json:"description" validate:"required"`
	Ward        string    `json:"ward" validate:"required"`
	MediaURLs   []string  `json:"media_urls" validate:"required,min=1"`
	Location    *Location `json:"location,omitempty"`
	Name        string    `json:"name"`
	Anonymous   bool      `json:"anonymous"`
	Mobile      string    `json:"mobile" validate:"required"`
}

// AssignRequest is the request body for the Viewed → Assigned transition.
type AssignRequest struct {
	EmployeeID string `json:"employee_id" validate:"required"`
}

// ResolveRequest is the request body for the Ongoing → Resolved transition.
// At least one photo is mandatory; the comment is optional.
type ResolveRequest struct {
	MediaURLs []string `json:"media_urls" validate:"required,min=1"`
	Comment   string   `json:"comment,omitempty"`
}

// User is a citizen, employee, or administrator. Email is the natural key.
type User struct {
	Email        string    `json:"email" db:"email"`
	Name         string    `json:"name" db:"name"`
	Role         Role      `json:"role" db:"role"`
	PhotoURL     string    `json:"photo_url,omitempty" db:"photo_url"`
	Department   string    `json:"department,omitempty" db:"department"`   // employees only
	Designation  string    `json:"designation,omitempty" db:"designation"` // employees only
	Mobile       string    `json:"mobile,omitempty" db:"mobile"`           // employees only
	Suspended    bool      `json:"suspended" db:"suspended"`
	PasswordHash string    `json:"-" db:"password_hash"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// ActivityLog is an audit record of an authority action on a complaint.
type ActivityLog struct {
	ID          uuid.UUID  `json:"id" db:"id"`
	ComplaintID *uuid.UUID `json:"complaint_id,omitempty" db:"complaint_id"`
	Action      string     `json:"action" db:"action"`
	Actor       string     `json:"actor" db:"actor"` // email or "SYSTEM"
	Detail      string     `json:"detail,omitempty" db:"detail"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
}

// StatusCount is an aggregated complaint count per lifecycle state.
type StatusCount struct {
	Status Status `json:"status"`
	Count  int    `json:"count"`
}

// WardCount is an aggregated complaint count per municipal ward.
type WardCount struct {
	Ward  string `json:"ward"`
	Count int    `json:"count"`
}

// CategoryCount is an aggregated complaint count per category, for the
// admin dashboard charts.
type CategoryCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

// HealthStatus represents the server health check response.
type HealthStatus struct {
	Status   string `json:"status"`
	Version  string `json:"version"`
	Uptime   string `json:"uptime"`
	Database string `json:"database,omitempty"`
}
