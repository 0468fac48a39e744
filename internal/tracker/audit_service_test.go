package tracker

import (
	"errors"
	"testing"

	"taskhub.org/internal/authz"
)

func TestAuditListAdminOnly(t *testing.T) {
	f := newFixture(t)
	seedProject(t, f, "p1", "m1", true)

	if _, err := f.projects.Update(asActor("m1", authz.RoleManager), "p1", UpdateProjectInput{Name: strptr("renamed")}); err != nil {
		t.Fatalf("update: %v", err)
	}
	f.flush()

	if _, err := f.audits.List(asActor("u1", authz.RoleUser), 0, 0); !errors.Is(err, authz.ErrRoleForbidden) {
		t.Fatalf("user: expected ErrRoleForbidden, got %v", err)
	}
	if _, err := f.audits.List(asActor("m1", authz.RoleManager), 0, 0); !errors.Is(err, authz.ErrRoleForbidden) {
		t.Fatalf("manager: expected ErrRoleForbidden, got %v", err)
	}

	entries, err := f.audits.List(asActor("a1", authz.RoleAdmin), 0, 0)
	if err != nil {
		t.Fatalf("admin list: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].Action != "project.update" || entries[0].ActorID != "m1" {
		t.Fatalf("unexpected entry: %+v", entries[0])
	}
}

func strptr(s string) *string { return &s }
