// Package lifecycle implements the complaint state machine and its
// role-gated transition rules. It is pure policy: no I/O, no clock
// beyond the timestamp handed to Apply, so every rule is testable in
// isolation and every caller shares one authoritative copy.
//
// States and transitions:
//
//	Pending  → Viewed    administrative
//	Viewed   → Assigned  administrative, requires target employee
//	Assigned → Ongoing   assignee employee
//	Ongoing  → Resolved  assignee employee, requires at least one photo
//
// Resolved is terminal. Any other transition attempt is rejected and
// leaves the complaint untouched.
package lifecycle

import (
	"errors"
	"time"

	"github.com/nagorik/grievance-server/internal/models"
)

// Error taxonomy for rejected transitions. A rejection is a strict
// no-op: no status change, no history append.
var (
	// ErrInvalidTransition is returned when the requested (from, to)
	// pair is not in the transition table.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrUnauthorized is returned when the actor's role is not allowed
	// to perform the requested transition.
	ErrUnauthorized = errors.New("role not permitted for this transition")

	// ErrNotAssignee is returned when an employee other than the
	// complaint's assignee attempts an assignee-only transition.
	ErrNotAssignee = errors.New("complaint is assigned to a different employee")

	// ErrMissingAttachment is returned when a resolution carries no
	// photo attachment.
	ErrMissingAttachment = errors.New("resolution requires at least one photo")

	// ErrMissingEmployee is returned when an assignment names no
	// target employee.
	ErrMissingEmployee = errors.New("assignment requires a target employee")
)

// Actor identifies who is requesting a transition.
type Actor struct {
	Email string
	Role  models.Role
}

// Payload carries the side-effect data accompanying a transition.
// EmployeeID is consumed by Viewed→Assigned; MediaURLs and Comment by
// Ongoing→Resolved.
type Payload struct {
	EmployeeID string
	MediaURLs  []string
	Comment    string
}

// rule describes one row of the transition table.
type rule struct {
	role         models.Role
	assigneeOnly bool
}

var transitions = map[models.Status]map[models.Status]rule{
	models.StatusPending: {
		models.StatusViewed: {role: models.RoleAdministrative},
	},
	models.StatusViewed: {
		models.StatusAssigned: {role: models.RoleAdministrative},
	},
	models.StatusAssigned: {
		models.StatusOngoing: {role: models.RoleEmployee, assigneeOnly: true},
	},
	models.StatusOngoing: {
		models.StatusResolved: {role: models.RoleEmployee, assigneeOnly: true},
	},
}

// CanTransition reports whether an actor with the given role may move a
// complaint from one status to another. isAssignee must be true when
// the actor is the complaint's assigned employee.
func CanTransition(from, to models.Status, role models.Role, isAssignee bool) bool {
	r, ok := transitions[from][to]
	if !ok {
		return false
	}
	if r.role != role {
		return false
	}
	if r.assigneeOnly && !isAssignee {
		return false
	}
	return true
}

// Next returns the sole legal successor of the given status, and false
// for Resolved (terminal) or unknown states. The lifecycle is linear,
// so every non-terminal state has exactly one successor.
func Next(from models.Status) (models.Status, bool) {
	switch from {
	case models.StatusPending:
		return models.StatusViewed, true
	case models.StatusViewed:
		return models.StatusAssigned, true
	case models.StatusAssigned:
		return models.StatusOngoing, true
	case models.StatusOngoing:
		return models.StatusResolved, true
	}
	return "", false
}

// Apply validates and executes a transition on the complaint in place.
// On success it sets the new status, records the assignee for
// assignments, and appends exactly one history entry stamped with now.
// On any error the complaint is left exactly as it was.
func Apply(c *models.Complaint, to models.Status, actor Actor, p Payload, now time.Time) error {
	r, ok := transitions[c.Status][to]
	if !ok {
		return ErrInvalidTransition
	}
	if r.role != actor.Role {
		return ErrUnauthorized
	}
	if r.assigneeOnly {
		if c.EmployeeID == nil || *c.EmployeeID != actor.Email {
			return ErrNotAssignee
		}
	}

	switch to {
	case models.StatusAssigned:
		if p.EmployeeID == "" {
			return ErrMissingEmployee
		}
	case models.StatusResolved:
		if len(p.MediaURLs) == 0 {
			return ErrMissingAttachment
		}
	}

	// Validation is complete; mutate atomically from here on.
	c.Status = to
	if to == models.StatusAssigned {
		employeeID := p.EmployeeID
		c.EmployeeID = &employeeID
	}
	c.History = append(c.History, models.HistoryEntry{
		Status:    to,
		Timestamp: now,
		Actor:     actor.Email,
		Comment:   p.Comment,
		MediaURLs: p.MediaURLs,
	})
	c.UpdatedAt = now
	return nil
}

// SeedHistory returns the single Pending entry a freshly submitted
// complaint starts with, so the status/history invariant holds from
// creation onward.
func SeedHistory(submitter string, now time.Time) []models.HistoryEntry {
	return []models.HistoryEntry{{
		Status:    models.StatusPending,
		Timestamp: now,
		Actor:     submitter,
	}}
}

// CheckInvariant verifies that the complaint's status matches the
// status of its most recent history entry. An empty history is allowed
// for records created before history seeding existed.
func CheckInvariant(c *models.Complaint) error {
	last := c.LastHistory()
	if last == nil {
		return nil
	}
	if last.Status != c.Status {
		return errors.New("status does not match last history entry")
	}
	return nil
}
