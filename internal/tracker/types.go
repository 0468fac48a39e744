package tracker

import (
	"errors"
	"strings"
	"time"

	"taskhub.org/internal/authz"
)

var (
	ErrNotFound     = errors.New("tracker: not found")
	ErrConflict     = errors.New("tracker: resource conflict")
	ErrInvalidInput = errors.New("tracker: invalid input")
)

// TaskStatus tracks a task through its lifecycle.
type TaskStatus string

const (
	TaskStatusAssigned  TaskStatus = "ASSIGNED"
	TaskStatusPending   TaskStatus = "PENDING"
	TaskStatusCompleted TaskStatus = "COMPLETED"
)

// ParseTaskStatus normalizes a status name case-insensitively.
func ParseTaskStatus(s string) (TaskStatus, bool) {
	switch TaskStatus(strings.ToUpper(strings.TrimSpace(s))) {
	case TaskStatusAssigned:
		return TaskStatusAssigned, true
	case TaskStatusPending:
		return TaskStatusPending, true
	case TaskStatusCompleted:
		return TaskStatusCompleted, true
	}
	return "", false
}

// User is a human or service account tracked by the system.
type User struct {
	ID           string       `json:"id"`
	FullName     string       `json:"full_name"`
	Email        string       `json:"email"`
	PasswordHash string       `json:"-"`
	Roles        []authz.Role `json:"roles"`
	IsActive     bool         `json:"is_active"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

// Actor returns the authorization view of the user.
func (u *User) Actor() authz.Actor {
	return authz.Actor{ID: u.ID, Roles: u.Roles, IsActive: u.IsActive}
}

// Project groups tasks under a single owning manager.
type Project struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	OwnerID     string    `json:"owner_id"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Ref returns the authorization reference for the project.
func (p *Project) Ref() authz.ProjectRef {
	return authz.ProjectRef{ID: p.ID, OwnerID: p.OwnerID, IsActive: p.IsActive}
}

// Task belongs to exactly one project and is optionally assigned to a user.
// Its effective owner for scoping is the assignee, or transitively the owner
// of the parent project.
type Task struct {
	ID          string     `json:"id"`
	ProjectID   string     `json:"project_id"`
	Description string     `json:"description"`
	AssignedTo  string     `json:"assigned_to,omitempty"`
	Status      TaskStatus `json:"status"`
	IsActive    bool       `json:"is_active"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Ref returns the authorization reference for the task.
func (t *Task) Ref() authz.TaskRef {
	return authz.TaskRef{ID: t.ID, ProjectID: t.ProjectID, AssignedTo: t.AssignedTo}
}
