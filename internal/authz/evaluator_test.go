package authz

import (
	"context"
	"reflect"
	"testing"
)

func newTestEvaluator(projects map[string]ProjectRef) *Evaluator {
	lookup := &fakeProjectLookup{projects: projects}
	return NewEvaluator(DefaultPolicy(), NewResolver(lookup))
}

func TestAuthorizeAdminAlwaysPermit(t *testing.T) {
	eval := newTestEvaluator(nil)
	admin := Actor{ID: "a1", Roles: []Role{RoleAdmin}, IsActive: true}

	refs := map[Action]Ref{
		ActionUserUpdate:    UserRef{ID: "u5"},
		ActionProjectDelete: ProjectRef{ID: "p1", OwnerID: "m9"},
		ActionTaskUpdate:    TaskRef{ID: "t1", ProjectID: "p1"},
	}
	for _, action := range allActions {
		d, err := eval.Authorize(context.Background(), admin, action, refs[action])
		if err != nil {
			t.Fatalf("%s: unexpected error %v", action, err)
		}
		if d.Effect != EffectPermit {
			t.Fatalf("%s: got %s, want permit", action, d.Effect)
		}
	}
}

func TestAuthorizeInactiveActorShortCircuits(t *testing.T) {
	eval := newTestEvaluator(nil)

	// Even an admin, and even a self-read, is denied while inactive.
	actors := []Actor{
		{ID: "a1", Roles: []Role{RoleAdmin}, IsActive: false},
		{ID: "u1", Roles: []Role{RoleUser}, IsActive: false},
	}
	for _, actor := range actors {
		d, err := eval.Authorize(context.Background(), actor, ActionUserRead, UserRef{ID: actor.ID})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if d.Effect != EffectDeny || d.Reason != ReasonActorInactive {
			t.Fatalf("got %s/%s, want deny/actor_inactive", d.Effect, d.Reason)
		}
	}
}

func TestAuthorizeManagerProjectOwnership(t *testing.T) {
	eval := newTestEvaluator(nil)
	manager := Actor{ID: "u1", Roles: []Role{RoleManager}, IsActive: true}

	d, err := eval.Authorize(context.Background(), manager, ActionProjectDelete, ProjectRef{ID: "p1", OwnerID: "u2"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Effect != EffectDeny || d.Reason != ReasonNotOwner {
		t.Fatalf("foreign project: got %s/%s, want deny/not_owner", d.Effect, d.Reason)
	}

	d, err = eval.Authorize(context.Background(), manager, ActionProjectDelete, ProjectRef{ID: "p2", OwnerID: "u1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Effect != EffectPermit {
		t.Fatalf("own project: got %s, want permit", d.Effect)
	}
}

func TestAuthorizeAssigneeTaskUpdate(t *testing.T) {
	eval := newTestEvaluator(map[string]ProjectRef{
		"p1": {ID: "p1", OwnerID: "m1", IsActive: true},
	})
	task := TaskRef{ID: "t1", ProjectID: "p1", AssignedTo: "u1"}

	// The assignee may update regardless of who owns the parent project.
	assignee := Actor{ID: "u1", Roles: []Role{RoleUser}, IsActive: true}
	d, err := eval.Authorize(context.Background(), assignee, ActionTaskUpdate, task)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Effect != EffectPermit {
		t.Fatalf("assignee update: got %s, want permit", d.Effect)
	}

	// A user with no relation to the task is denied.
	stranger := Actor{ID: "u2", Roles: []Role{RoleUser}, IsActive: true}
	d, err = eval.Authorize(context.Background(), stranger, ActionTaskUpdate, task)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Effect != EffectDeny || d.Reason != ReasonNotOwner {
		t.Fatalf("stranger update: got %s/%s, want deny/not_owner", d.Effect, d.Reason)
	}

	// The assignee still cannot delete: the policy row denies the role.
	d, err = eval.Authorize(context.Background(), assignee, ActionTaskDelete, task)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Effect != EffectDeny || d.Reason != ReasonRoleForbidden {
		t.Fatalf("assignee delete: got %s/%s, want deny/role_forbidden", d.Effect, d.Reason)
	}
}

func TestAuthorizeCollectionScopes(t *testing.T) {
	eval := newTestEvaluator(nil)

	cases := []struct {
		name   string
		actor  Actor
		action Action
		want   Decision
	}{
		{
			"user list users scoped to self",
			Actor{ID: "u1", Roles: []Role{RoleUser}, IsActive: true},
			ActionUserList,
			PermitScoped(Scope{Entity: EntityUser, ActorID: "u1"}),
		},
		{
			"user list projects unrestricted",
			Actor{ID: "u1", Roles: []Role{RoleUser}, IsActive: true},
			ActionProjectList,
			Permit(),
		},
		{
			"admin list users unrestricted",
			Actor{ID: "a1", Roles: []Role{RoleAdmin}, IsActive: true},
			ActionUserList,
			Permit(),
		},
		{
			"manager list audit denied",
			Actor{ID: "m1", Roles: []Role{RoleManager}, IsActive: true},
			ActionAuditList,
			Deny(ReasonRoleForbidden),
		},
	}
	for _, tc := range cases {
		got, err := eval.Authorize(context.Background(), tc.actor, tc.action, nil)
		if err != nil {
			t.Fatalf("%s: unexpected error %v", tc.name, err)
		}
		if !reflect.DeepEqual(got, tc.want) {
			t.Fatalf("%s: got %+v, want %+v", tc.name, got, tc.want)
		}
	}
}

func TestAuthorizeScopeDeterministic(t *testing.T) {
	eval := newTestEvaluator(nil)
	user := Actor{ID: "u1", Roles: []Role{RoleUser}, IsActive: true}

	first, err := eval.Authorize(context.Background(), user, ActionUserList, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := eval.Authorize(context.Background(), user, ActionUserList, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("identical inputs produced different decisions: %+v vs %+v", first, second)
	}
}

func TestAuthorizeOwnedWithoutRef(t *testing.T) {
	eval := newTestEvaluator(nil)
	manager := Actor{ID: "m1", Roles: []Role{RoleManager}, IsActive: true}

	d, err := eval.Authorize(context.Background(), manager, ActionProjectUpdate, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Effect != EffectDeny || d.Reason != ReasonNotOwner {
		t.Fatalf("got %s/%s, want deny/not_owner", d.Effect, d.Reason)
	}
}

func TestDecisionErr(t *testing.T) {
	if err := Permit().Err(); err != nil {
		t.Fatalf("permit must not map to an error, got %v", err)
	}
	cases := map[Reason]error{
		ReasonRoleForbidden: ErrRoleForbidden,
		ReasonNotOwner:      ErrNotOwner,
		ReasonActorInactive: ErrActorInactive,
	}
	for reason, want := range cases {
		if err := Deny(reason).Err(); err != want {
			t.Fatalf("Deny(%s).Err()=%v, want %v", reason, err, want)
		}
	}
}
