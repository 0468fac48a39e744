package tracker

import (
	"errors"
	"testing"

	"taskhub.org/internal/authz"
)

func TestTaskCreateRequiresActiveProject(t *testing.T) {
	f := newFixture(t)
	seedProject(t, f, "p1", "m1", true)
	seedProject(t, f, "p2", "m1", false)

	manager := asActor("m1", authz.RoleManager)

	task, err := f.tasks.Create(manager, CreateTaskInput{ProjectID: "p1", Description: "write docs"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if task.Status != TaskStatusPending {
		t.Fatalf("expected default pending status, got %s", task.Status)
	}

	if _, err := f.tasks.Create(manager, CreateTaskInput{ProjectID: "p2", Description: "x"}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("inactive project: expected ErrInvalidInput, got %v", err)
	}
	if _, err := f.tasks.Create(manager, CreateTaskInput{ProjectID: "missing", Description: "x"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing project: expected ErrNotFound, got %v", err)
	}
}

func TestTaskCreateOwnershipViaProject(t *testing.T) {
	f := newFixture(t)
	seedProject(t, f, "p1", "m1", true)

	// A manager who does not own the project may not create tasks in it.
	if _, err := f.tasks.Create(asActor("m2", authz.RoleManager), CreateTaskInput{ProjectID: "p1", Description: "x"}); !errors.Is(err, authz.ErrNotOwner) {
		t.Fatalf("expected ErrNotOwner, got %v", err)
	}
	// A plain user may not create tasks at all.
	if _, err := f.tasks.Create(asActor("u1", authz.RoleUser), CreateTaskInput{ProjectID: "p1", Description: "x"}); !errors.Is(err, authz.ErrRoleForbidden) {
		t.Fatalf("expected ErrRoleForbidden, got %v", err)
	}
}

func TestTaskCreateAssignmentFlipsStatus(t *testing.T) {
	f := newFixture(t)
	seedProject(t, f, "p1", "m1", true)

	task, err := f.tasks.Create(asActor("m1", authz.RoleManager), CreateTaskInput{
		ProjectID:   "p1",
		Description: "triage bugs",
		AssignedTo:  "u1",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if task.Status != TaskStatusAssigned {
		t.Fatalf("expected assigned status, got %s", task.Status)
	}
}

func TestTaskUpdateByAssignee(t *testing.T) {
	f := newFixture(t)
	seedProject(t, f, "p1", "m1", true)
	seedTask(t, f, "t1", "p1", "u1")

	// The assignee updates the task although the project belongs to m1.
	status := "COMPLETED"
	task, err := f.tasks.Update(asActor("u1", authz.RoleUser), "t1", UpdateTaskInput{Status: &status})
	if err != nil {
		t.Fatalf("assignee update: %v", err)
	}
	if task.Status != TaskStatusCompleted {
		t.Fatalf("unexpected status: %s", task.Status)
	}

	// An unrelated user is denied.
	if _, err := f.tasks.Update(asActor("u2", authz.RoleUser), "t1", UpdateTaskInput{Status: &status}); !errors.Is(err, authz.ErrNotOwner) {
		t.Fatalf("stranger update: expected ErrNotOwner, got %v", err)
	}

	// The assignee may not delete; the role row denies it before ownership.
	if err := f.tasks.Delete(asActor("u1", authz.RoleUser), "t1"); !errors.Is(err, authz.ErrRoleForbidden) {
		t.Fatalf("assignee delete: expected ErrRoleForbidden, got %v", err)
	}
}

func TestTaskUpdateByProjectOwner(t *testing.T) {
	f := newFixture(t)
	seedProject(t, f, "p1", "m1", true)
	seedTask(t, f, "t1", "p1", "u1")

	description := "re-scoped"
	if _, err := f.tasks.Update(asActor("m1", authz.RoleManager), "t1", UpdateTaskInput{Description: &description}); err != nil {
		t.Fatalf("project owner update: %v", err)
	}
	if _, err := f.tasks.Update(asActor("m2", authz.RoleManager), "t1", UpdateTaskInput{Description: &description}); !errors.Is(err, authz.ErrNotOwner) {
		t.Fatalf("foreign manager update: expected ErrNotOwner, got %v", err)
	}
}

func TestTaskListUnrestricted(t *testing.T) {
	f := newFixture(t)
	seedProject(t, f, "p1", "m1", true)
	seedProject(t, f, "p2", "m2", true)
	seedTask(t, f, "t1", "p1", "u1")
	seedTask(t, f, "t2", "p1", "")
	seedTask(t, f, "t3", "p2", "")

	// Tasks are readable by everyone; the scope only applies where the
	// policy says allow_owned, which reads never are here. All roles see
	// all tasks.
	tasks, err := f.tasks.List(asActor("u1", authz.RoleUser), 0, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(tasks) != 3 {
		t.Fatalf("expected 3 tasks, got %d", len(tasks))
	}
}

func TestTaskMutationsAudited(t *testing.T) {
	f := newFixture(t)
	seedProject(t, f, "p1", "m1", true)
	seedTask(t, f, "t1", "p1", "u1")

	status := "COMPLETED"
	if _, err := f.tasks.Update(asActor("u1", authz.RoleUser), "t1", UpdateTaskInput{Status: &status}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if err := f.tasks.Delete(asActor("m1", authz.RoleManager), "t1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	f.flush()

	entries := f.store.AuditEntries()
	if len(entries) != 2 {
		t.Fatalf("expected 2 audit entries, got %d", len(entries))
	}
	if entries[0].Action != "task.update" || entries[0].ActorID != "u1" {
		t.Fatalf("unexpected first entry: %+v", entries[0])
	}
	if entries[1].Action != "task.delete" || entries[1].ActorID != "m1" {
		t.Fatalf("unexpected second entry: %+v", entries[1])
	}
}
