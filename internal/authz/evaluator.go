package authz

import (
	"context"

	"taskhub.org/internal/obs"
)

// Effect is the kind of decision the evaluator produced.
type Effect int

const (
	EffectDeny Effect = iota
	EffectPermit
	EffectPermitScoped
)

func (e Effect) String() string {
	switch e {
	case EffectPermit:
		return "permit"
	case EffectPermitScoped:
		return "permit_scoped"
	default:
		return "deny"
	}
}

// Scope restricts a collection read to records related to the actor. The
// calling entity service translates it into a storage predicate: projects to
// owner_id = ActorID, tasks to assigned_to = ActorID or parent project owned
// by ActorID, users to id = ActorID.
type Scope struct {
	Entity  Entity
	ActorID string
}

// Decision is the outcome of one authorization check.
type Decision struct {
	Effect Effect
	Reason Reason // set when Effect is EffectDeny
	Scope  *Scope // set when Effect is EffectPermitScoped
}

// Permit grants unrestricted access.
func Permit() Decision {
	return Decision{Effect: EffectPermit}
}

// PermitScoped grants access restricted to the given scope filter.
func PermitScoped(scope Scope) Decision {
	return Decision{Effect: EffectPermitScoped, Scope: &scope}
}

// Deny refuses access with a structured reason code.
func Deny(reason Reason) Decision {
	return Decision{Effect: EffectDeny, Reason: reason}
}

// Allowed reports whether the decision grants any access at all.
func (d Decision) Allowed() bool {
	return d.Effect != EffectDeny
}

// Err returns the sentinel error for a denial, or nil for a grant.
func (d Decision) Err() error {
	if d.Allowed() {
		return nil
	}
	return d.Reason.Err()
}

// Evaluator combines the policy table with the ownership resolver. Decisions
// are pure functions of the actor, the action and freshly-read entity state;
// the evaluator holds no mutable state and is safe for concurrent use.
type Evaluator struct {
	policy   Policy
	resolver *Resolver
}

// NewEvaluator constructs an Evaluator. The policy is loaded once at startup
// and passed in explicitly; it must not change afterwards.
func NewEvaluator(policy Policy, resolver *Resolver) *Evaluator {
	return &Evaluator{policy: policy, resolver: resolver}
}

// Authorize decides whether actor may perform action, optionally against the
// entity instance ref. Collection reads under an owned outcome return a
// scoped decision; single-instance operations require ref and consult the
// ownership resolver. An inactive actor is denied before any table lookup.
func (e *Evaluator) Authorize(ctx context.Context, actor Actor, action Action, ref Ref) (Decision, error) {
	d, err := e.authorize(ctx, actor, action, ref)
	if err == nil {
		obs.ObserveAuthzDecision(action.String(), d.Effect.String())
	}
	return d, err
}

func (e *Evaluator) authorize(ctx context.Context, actor Actor, action Action, ref Ref) (Decision, error) {
	if !actor.IsActive {
		return Deny(ReasonActorInactive), nil
	}

	switch e.policy.DecideRoles(actor.Roles, action) {
	case OutcomeAllowAll:
		return Permit(), nil
	case OutcomeAllowOwned:
		if action.IsCollection() {
			return PermitScoped(Scope{Entity: action.Entity(), ActorID: actor.ID}), nil
		}
		if ref == nil {
			return Deny(ReasonNotOwner), nil
		}
		owns, err := e.resolver.Owns(ctx, actor, ref)
		if err != nil {
			return Decision{}, err
		}
		if !owns {
			return Deny(ReasonNotOwner), nil
		}
		return Permit(), nil
	default:
		return Deny(ReasonRoleForbidden), nil
	}
}
