package tracker

import (
	"errors"
	"testing"

	"taskhub.org/internal/authz"
)

func TestProjectCreate(t *testing.T) {
	f := newFixture(t)

	if _, err := f.projects.Create(asActor("u1", authz.RoleUser), CreateProjectInput{Name: "Apollo"}); !errors.Is(err, authz.ErrRoleForbidden) {
		t.Fatalf("user create: expected ErrRoleForbidden, got %v", err)
	}

	project, err := f.projects.Create(asActor("m1", authz.RoleManager), CreateProjectInput{Name: "Apollo"})
	if err != nil {
		t.Fatalf("manager create: %v", err)
	}
	if project.OwnerID != "m1" {
		t.Fatalf("manager must own the created project, got owner %s", project.OwnerID)
	}

	// A manager may not create a project owned by someone else.
	_, err = f.projects.Create(asActor("m1", authz.RoleManager), CreateProjectInput{Name: "Hermes", OwnerID: "m2"})
	if !errors.Is(err, authz.ErrNotOwner) {
		t.Fatalf("create on behalf: expected ErrNotOwner, got %v", err)
	}

	// An admin may.
	onBehalf, err := f.projects.Create(asActor("a1", authz.RoleAdmin), CreateProjectInput{Name: "Hermes", OwnerID: "m2"})
	if err != nil {
		t.Fatalf("admin create on behalf: %v", err)
	}
	if onBehalf.OwnerID != "m2" {
		t.Fatalf("unexpected owner: %s", onBehalf.OwnerID)
	}
}

func TestProjectCreateAuditTrail(t *testing.T) {
	f := newFixture(t)

	if _, err := f.projects.Create(asActor("a1", authz.RoleAdmin), CreateProjectInput{Name: "Apollo"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	f.flush()

	entries := f.store.AuditEntries()
	if len(entries) != 1 {
		t.Fatalf("expected exactly one audit entry, got %d", len(entries))
	}
	if entries[0].Action != "project.create" || entries[0].ActorID != "a1" {
		t.Fatalf("unexpected entry: %+v", entries[0])
	}
}

func TestProjectDeleteOwnership(t *testing.T) {
	f := newFixture(t)
	seedProject(t, f, "p1", "u2", true)
	seedProject(t, f, "p2", "u1", true)

	manager := asActor("u1", authz.RoleManager)
	if err := f.projects.Delete(manager, "p1"); !errors.Is(err, authz.ErrNotOwner) {
		t.Fatalf("foreign delete: expected ErrNotOwner, got %v", err)
	}
	if err := f.projects.Delete(manager, "p2"); err != nil {
		t.Fatalf("own delete: %v", err)
	}

	f.flush()
	entries := f.store.AuditEntries()
	if len(entries) != 1 || entries[0].Action != "project.delete" {
		t.Fatalf("expected one project.delete entry, got %+v", entries)
	}
}

func TestProjectUpdateDeniedAfterTransfer(t *testing.T) {
	f := newFixture(t)
	seedProject(t, f, "p1", "m1", true)

	name := "Renamed"
	if _, err := f.projects.Update(asActor("m1", authz.RoleManager), "p1", UpdateProjectInput{Name: &name}); err != nil {
		t.Fatalf("owner update: %v", err)
	}

	// Transfer ownership; the former owner loses write access on the next
	// freshly-resolved check.
	newOwner := "m2"
	if _, err := f.projects.Update(asActor("a1", authz.RoleAdmin), "p1", UpdateProjectInput{OwnerID: &newOwner}); err != nil {
		t.Fatalf("admin transfer: %v", err)
	}
	if _, err := f.projects.Update(asActor("m1", authz.RoleManager), "p1", UpdateProjectInput{Name: &name}); !errors.Is(err, authz.ErrNotOwner) {
		t.Fatalf("former owner update: expected ErrNotOwner, got %v", err)
	}
}

func TestProjectListUnrestricted(t *testing.T) {
	f := newFixture(t)
	seedProject(t, f, "p1", "m1", true)
	seedProject(t, f, "p2", "m2", true)

	// Project reads are unrestricted for every active role.
	for _, role := range []authz.Role{authz.RoleUser, authz.RoleManager, authz.RoleAdmin} {
		projects, err := f.projects.List(asActor("anyone", role), 0, 0)
		if err != nil {
			t.Fatalf("%s list: %v", role, err)
		}
		if len(projects) != 2 {
			t.Fatalf("%s list: expected 2 projects, got %d", role, len(projects))
		}
	}
}

func TestProjectGetNotFound(t *testing.T) {
	f := newFixture(t)
	if _, err := f.projects.Get(asActor("u1", authz.RoleUser), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
