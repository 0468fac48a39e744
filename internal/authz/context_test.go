package authz

import (
	"context"
	"errors"
	"testing"
)

func TestActorContextRoundTrip(t *testing.T) {
	ctx := context.Background()
	if _, ok := ActorFromContext(ctx); ok {
		t.Fatal("unexpected actor in empty context")
	}
	if _, err := RequireActor(ctx); !errors.Is(err, ErrNoActor) {
		t.Fatalf("expected ErrNoActor, got %v", err)
	}

	actor := Actor{ID: "u1", Roles: []Role{RoleManager}, IsActive: true}
	ctx = ContextWithActor(ctx, actor)

	got, ok := ActorFromContext(ctx)
	if !ok {
		t.Fatal("expected actor in context")
	}
	if got.ID != "u1" || !got.HasRole(RoleManager) || !got.IsActive {
		t.Fatalf("unexpected actor: %+v", got)
	}
}
