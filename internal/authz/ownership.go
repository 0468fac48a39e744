package authz

import (
	"context"
	"errors"
)

// Ref points the evaluator at a concrete entity instance. The set of
// implementations is closed.
type Ref interface {
	refEntity() Entity
}

// UserRef references a user record.
type UserRef struct {
	ID string
}

// ProjectRef references a project record, or a project about to be created.
type ProjectRef struct {
	ID       string
	OwnerID  string
	IsActive bool
}

// TaskRef references a task record, or a task about to be created under
// ProjectID.
type TaskRef struct {
	ID         string
	ProjectID  string
	AssignedTo string
}

func (UserRef) refEntity() Entity    { return EntityUser }
func (ProjectRef) refEntity() Entity { return EntityProject }
func (TaskRef) refEntity() Entity    { return EntityTask }

// ProjectLookup reads the parent project during transitive task ownership
// checks. Implementations return ErrNotFound for absent projects.
type ProjectLookup interface {
	LookupProject(ctx context.Context, id string) (ProjectRef, error)
}

// Resolver decides whether an actor owns an entity instance. Results are
// never cached across calls, so a check after a concurrent reassignment sees
// whichever state the store returns at resolution time.
type Resolver struct {
	projects ProjectLookup
}

// NewResolver constructs a Resolver backed by the given project reader.
func NewResolver(projects ProjectLookup) *Resolver {
	return &Resolver{projects: projects}
}

// Owns reports whether the actor owns ref. Task ownership is direct through
// the assignee or transitive through the parent project's owner. A missing or
// inactive parent project resolves to false rather than an error.
func (r *Resolver) Owns(ctx context.Context, actor Actor, ref Ref) (bool, error) {
	if actor.ID == "" {
		return false, nil
	}
	switch t := ref.(type) {
	case UserRef:
		return t.ID == actor.ID, nil
	case ProjectRef:
		return t.OwnerID == actor.ID, nil
	case TaskRef:
		if t.AssignedTo != "" && t.AssignedTo == actor.ID {
			return true, nil
		}
		if t.ProjectID == "" || r.projects == nil {
			return false, nil
		}
		project, err := r.projects.LookupProject(ctx, t.ProjectID)
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		if err != nil {
			return false, err
		}
		if !project.IsActive {
			return false, nil
		}
		return project.OwnerID == actor.ID, nil
	default:
		return false, nil
	}
}
