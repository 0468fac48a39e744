package tracker

import (
	"context"
	"testing"

	"taskhub.org/internal/audit"
	"taskhub.org/internal/authz"
)

type fixture struct {
	store    *InMemory
	recorder *audit.Recorder
	users    *UserService
	projects *ProjectService
	tasks    *TaskService
	audits   *AuditService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := NewInMemory()
	eval := authz.NewEvaluator(authz.DefaultPolicy(), authz.NewResolver(store))
	recorder := audit.NewRecorder(store, audit.WithBackoff(0))

	users, err := NewUserService(store, eval, recorder)
	if err != nil {
		t.Fatalf("NewUserService: %v", err)
	}
	projects, err := NewProjectService(store, eval, recorder)
	if err != nil {
		t.Fatalf("NewProjectService: %v", err)
	}
	tasks, err := NewTaskService(store, store, eval, recorder)
	if err != nil {
		t.Fatalf("NewTaskService: %v", err)
	}
	audits, err := NewAuditService(store, eval)
	if err != nil {
		t.Fatalf("NewAuditService: %v", err)
	}
	return &fixture{store: store, recorder: recorder, users: users, projects: projects, tasks: tasks, audits: audits}
}

// flush drains the audit queue so entries become observable. The fixture must
// not be used for further mutations afterwards.
func (f *fixture) flush() {
	f.recorder.Close()
}

func asActor(id string, role authz.Role) context.Context {
	return authz.ContextWithActor(context.Background(), authz.Actor{
		ID:       id,
		Roles:    []authz.Role{role},
		IsActive: true,
	})
}

func seedUser(t *testing.T, f *fixture, id string, role authz.Role) *User {
	t.Helper()
	u := &User{
		ID:       id,
		FullName: "Seed " + id,
		Email:    id + "@example.com",
		Roles:    []authz.Role{role},
		IsActive: true,
	}
	if err := f.store.CreateUser(context.Background(), u); err != nil {
		t.Fatalf("seed user %s: %v", id, err)
	}
	return u
}

func seedProject(t *testing.T, f *fixture, id, ownerID string, active bool) *Project {
	t.Helper()
	p := &Project{ID: id, Name: "Project " + id, OwnerID: ownerID, IsActive: active}
	if err := f.store.CreateProject(context.Background(), p); err != nil {
		t.Fatalf("seed project %s: %v", id, err)
	}
	return p
}

func seedTask(t *testing.T, f *fixture, id, projectID, assignedTo string) *Task {
	t.Helper()
	task := &Task{
		ID:          id,
		ProjectID:   projectID,
		Description: "Task " + id,
		AssignedTo:  assignedTo,
		Status:      TaskStatusPending,
		IsActive:    true,
	}
	if err := f.store.CreateTask(context.Background(), task); err != nil {
		t.Fatalf("seed task %s: %v", id, err)
	}
	return task
}
