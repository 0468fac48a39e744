package tracker

import (
	"context"

	"taskhub.org/internal/authz"
)

// UserStore manages user records.
type UserStore interface {
	CreateUser(ctx context.Context, u *User) error
	GetUser(ctx context.Context, id string) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	ListUsers(ctx context.Context, scope *authz.Scope, limit, offset int) ([]*User, error)
	UpdateUser(ctx context.Context, id string, upd UserUpdate) (*User, error)
	DeleteUser(ctx context.Context, id string) error
}

// ProjectStore manages project records.
type ProjectStore interface {
	CreateProject(ctx context.Context, p *Project) error
	GetProject(ctx context.Context, id string) (*Project, error)
	ListProjects(ctx context.Context, scope *authz.Scope, limit, offset int) ([]*Project, error)
	UpdateProject(ctx context.Context, id string, upd ProjectUpdate) (*Project, error)
	DeleteProject(ctx context.Context, id string) error
}

// TaskStore manages task records.
type TaskStore interface {
	CreateTask(ctx context.Context, t *Task) error
	GetTask(ctx context.Context, id string) (*Task, error)
	ListTasks(ctx context.Context, scope *authz.Scope, limit, offset int) ([]*Task, error)
	UpdateTask(ctx context.Context, id string, upd TaskUpdate) (*Task, error)
	DeleteTask(ctx context.Context, id string) error
}

// UserUpdate mutates the non-zero fields of a user.
type UserUpdate struct {
	FullName     *string
	Email        *string
	PasswordHash *string
	Roles        []authz.Role
	IsActive     *bool
}

// ProjectUpdate mutates the non-zero fields of a project.
type ProjectUpdate struct {
	Name        *string
	Description *string
	OwnerID     *string
	IsActive    *bool
}

// TaskUpdate mutates the non-zero fields of a task.
type TaskUpdate struct {
	Description *string
	AssignedTo  *string
	Status      *TaskStatus
	IsActive    *bool
}
