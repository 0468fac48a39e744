package authz

import "errors"

// Reason is the structured denial code surfaced to callers. Reasons never
// leak entity state such as the identity of a resource owner.
type Reason string

const (
	ReasonRoleForbidden Reason = "role_forbidden"
	ReasonNotOwner      Reason = "not_owner"
	ReasonActorInactive Reason = "actor_inactive"
)

var (
	ErrRoleForbidden = errors.New("authz: role forbidden")
	ErrNotOwner      = errors.New("authz: not owner")
	ErrActorInactive = errors.New("authz: actor inactive")
	ErrNoActor       = errors.New("authz: no actor in context")

	// ErrNotFound is returned by entity lookups when the referenced record
	// is absent. The resolver treats it as ownership=false, never as a
	// hard failure.
	ErrNotFound = errors.New("authz: entity not found")
)

// Err maps a denial reason to its sentinel error.
func (r Reason) Err() error {
	switch r {
	case ReasonNotOwner:
		return ErrNotOwner
	case ReasonActorInactive:
		return ErrActorInactive
	default:
		return ErrRoleForbidden
	}
}
