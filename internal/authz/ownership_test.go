package authz

import (
	"context"
	"errors"
	"testing"
)

type fakeProjectLookup struct {
	projects map[string]ProjectRef
	err      error
	calls    int
}

func (f *fakeProjectLookup) LookupProject(_ context.Context, id string) (ProjectRef, error) {
	f.calls++
	if f.err != nil {
		return ProjectRef{}, f.err
	}
	project, ok := f.projects[id]
	if !ok {
		return ProjectRef{}, ErrNotFound
	}
	return project, nil
}

func TestOwnsUser(t *testing.T) {
	resolver := NewResolver(nil)
	actor := Actor{ID: "u1", Roles: []Role{RoleUser}, IsActive: true}

	if owns, _ := resolver.Owns(context.Background(), actor, UserRef{ID: "u1"}); !owns {
		t.Fatal("expected self ownership")
	}
	if owns, _ := resolver.Owns(context.Background(), actor, UserRef{ID: "u2"}); owns {
		t.Fatal("unexpected ownership of another user")
	}
}

func TestOwnsProject(t *testing.T) {
	resolver := NewResolver(nil)
	actor := Actor{ID: "m1", Roles: []Role{RoleManager}, IsActive: true}

	if owns, _ := resolver.Owns(context.Background(), actor, ProjectRef{ID: "p1", OwnerID: "m1"}); !owns {
		t.Fatal("expected project ownership")
	}
	if owns, _ := resolver.Owns(context.Background(), actor, ProjectRef{ID: "p2", OwnerID: "m2"}); owns {
		t.Fatal("unexpected ownership of another manager's project")
	}
}

func TestOwnsTask(t *testing.T) {
	lookup := &fakeProjectLookup{projects: map[string]ProjectRef{
		"p1": {ID: "p1", OwnerID: "m1", IsActive: true},
		"p2": {ID: "p2", OwnerID: "m2", IsActive: false},
	}}
	resolver := NewResolver(lookup)
	ctx := context.Background()

	cases := []struct {
		name  string
		actor string
		task  TaskRef
		want  bool
	}{
		{"assignee owns directly", "u1", TaskRef{ID: "t1", ProjectID: "p2", AssignedTo: "u1"}, true},
		{"project owner owns transitively", "m1", TaskRef{ID: "t2", ProjectID: "p1", AssignedTo: "u1"}, true},
		{"unrelated actor", "u9", TaskRef{ID: "t2", ProjectID: "p1", AssignedTo: "u1"}, false},
		{"missing project fails closed", "m1", TaskRef{ID: "t3", ProjectID: "p404"}, false},
		{"inactive project fails closed", "m2", TaskRef{ID: "t4", ProjectID: "p2"}, false},
		{"unassigned task without project", "u1", TaskRef{ID: "t5"}, false},
	}
	for _, tc := range cases {
		actor := Actor{ID: tc.actor, IsActive: true}
		owns, err := resolver.Owns(ctx, actor, tc.task)
		if err != nil {
			t.Fatalf("%s: unexpected error %v", tc.name, err)
		}
		if owns != tc.want {
			t.Fatalf("%s: got %v, want %v", tc.name, owns, tc.want)
		}
	}
}

func TestOwnsTaskAssigneeSkipsLookup(t *testing.T) {
	lookup := &fakeProjectLookup{projects: map[string]ProjectRef{}}
	resolver := NewResolver(lookup)
	actor := Actor{ID: "u1", IsActive: true}

	owns, err := resolver.Owns(context.Background(), actor, TaskRef{ID: "t1", ProjectID: "p1", AssignedTo: "u1"})
	if err != nil || !owns {
		t.Fatalf("expected direct assignee ownership, got owns=%v err=%v", owns, err)
	}
	if lookup.calls != 0 {
		t.Fatalf("expected no project lookup for a direct assignee, got %d", lookup.calls)
	}
}

func TestOwnsPropagatesStoreFailure(t *testing.T) {
	storeErr := errors.New("connection reset")
	resolver := NewResolver(&fakeProjectLookup{err: storeErr})
	actor := Actor{ID: "m1", IsActive: true}

	owns, err := resolver.Owns(context.Background(), actor, TaskRef{ID: "t1", ProjectID: "p1"})
	if owns {
		t.Fatal("ownership must fail closed on store errors")
	}
	if !errors.Is(err, storeErr) {
		t.Fatalf("expected store error, got %v", err)
	}
}

func TestOwnsNoCaching(t *testing.T) {
	lookup := &fakeProjectLookup{projects: map[string]ProjectRef{
		"p1": {ID: "p1", OwnerID: "m1", IsActive: true},
	}}
	resolver := NewResolver(lookup)
	actor := Actor{ID: "m1", IsActive: true}
	task := TaskRef{ID: "t1", ProjectID: "p1"}

	if owns, _ := resolver.Owns(context.Background(), actor, task); !owns {
		t.Fatal("expected ownership before reassignment")
	}
	// Simulate a concurrent project transfer: the next check must see the
	// fresh state, not a cached result.
	lookup.projects["p1"] = ProjectRef{ID: "p1", OwnerID: "m2", IsActive: true}
	if owns, _ := resolver.Owns(context.Background(), actor, task); owns {
		t.Fatal("expected ownership loss after reassignment")
	}
	if lookup.calls != 2 {
		t.Fatalf("expected one lookup per check, got %d", lookup.calls)
	}
}
