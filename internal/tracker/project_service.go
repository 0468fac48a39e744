package tracker

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"taskhub.org/internal/audit"
	"taskhub.org/internal/authz"
	"taskhub.org/internal/ids"
)

// ProjectService implements project CRUD behind the authorization engine.
type ProjectService struct {
	store ProjectStore
	eval  *authz.Evaluator
	audit *audit.Recorder
}

// NewProjectService constructs a ProjectService.
func NewProjectService(store ProjectStore, eval *authz.Evaluator, recorder *audit.Recorder) (*ProjectService, error) {
	if store == nil || eval == nil || recorder == nil {
		return nil, errors.New("project service requires store, evaluator and recorder")
	}
	return &ProjectService{store: store, eval: eval, audit: recorder}, nil
}

// CreateProjectInput carries the fields accepted on project creation.
type CreateProjectInput struct {
	Name        string
	Description string
	OwnerID     string
}

// Create registers a new project. Managers create projects they own; only an
// admin may create a project on behalf of another owner.
func (s *ProjectService) Create(ctx context.Context, input CreateProjectInput) (*Project, error) {
	actor, err := authz.RequireActor(ctx)
	if err != nil {
		return nil, err
	}
	ownerID := strings.TrimSpace(input.OwnerID)
	if ownerID == "" {
		ownerID = actor.ID
	}
	decision, err := s.eval.Authorize(ctx, actor, authz.ActionProjectCreate, authz.ProjectRef{OwnerID: ownerID, IsActive: true})
	if err != nil {
		return nil, err
	}
	if err := decision.Err(); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: project name is required", ErrInvalidInput)
	}

	project := &Project{
		ID:          ids.New(),
		Name:        name,
		Description: strings.TrimSpace(input.Description),
		OwnerID:     ownerID,
		IsActive:    true,
	}
	if err := s.store.CreateProject(ctx, project); err != nil {
		return nil, err
	}
	s.audit.Record(ctx, actor.ID, authz.ActionProjectCreate.String(), "project="+project.ID)
	return project, nil
}

// Get reads a single project. Reads are unrestricted for active actors.
func (s *ProjectService) Get(ctx context.Context, id string) (*Project, error) {
	actor, err := authz.RequireActor(ctx)
	if err != nil {
		return nil, err
	}
	decision, err := s.eval.Authorize(ctx, actor, authz.ActionProjectRead, nil)
	if err != nil {
		return nil, err
	}
	if err := decision.Err(); err != nil {
		return nil, err
	}
	return s.store.GetProject(ctx, id)
}

// List returns projects visible to the actor with pagination.
func (s *ProjectService) List(ctx context.Context, limit, offset int) ([]*Project, error) {
	actor, err := authz.RequireActor(ctx)
	if err != nil {
		return nil, err
	}
	scope, err := authorizeList(ctx, s.eval, actor, authz.ActionProjectList)
	if err != nil {
		return nil, err
	}
	limit, offset = normalizePage(limit, offset)
	return s.store.ListProjects(ctx, scope, limit, offset)
}

// UpdateProjectInput carries optional project mutations.
type UpdateProjectInput struct {
	Name        *string
	Description *string
	OwnerID     *string
	IsActive    *bool
}

// Update mutates a project. The ownership check runs against the current
// record, so a transferred project immediately stops accepting writes from
// its former owner.
func (s *ProjectService) Update(ctx context.Context, id string, input UpdateProjectInput) (*Project, error) {
	actor, err := authz.RequireActor(ctx)
	if err != nil {
		return nil, err
	}
	current, err := s.store.GetProject(ctx, id)
	if err != nil {
		return nil, err
	}
	decision, err := s.eval.Authorize(ctx, actor, authz.ActionProjectUpdate, current.Ref())
	if err != nil {
		return nil, err
	}
	if err := decision.Err(); err != nil {
		return nil, err
	}

	upd := ProjectUpdate{Description: input.Description, OwnerID: input.OwnerID, IsActive: input.IsActive}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: project name is required", ErrInvalidInput)
		}
		upd.Name = &name
	}

	project, err := s.store.UpdateProject(ctx, id, upd)
	if err != nil {
		return nil, err
	}
	s.audit.Record(ctx, actor.ID, authz.ActionProjectUpdate.String(), "project="+id)
	return project, nil
}

// Delete removes a project.
func (s *ProjectService) Delete(ctx context.Context, id string) error {
	actor, err := authz.RequireActor(ctx)
	if err != nil {
		return err
	}
	current, err := s.store.GetProject(ctx, id)
	if err != nil {
		return err
	}
	decision, err := s.eval.Authorize(ctx, actor, authz.ActionProjectDelete, current.Ref())
	if err != nil {
		return err
	}
	if err := decision.Err(); err != nil {
		return err
	}
	if err := s.store.DeleteProject(ctx, id); err != nil {
		return err
	}
	s.audit.Record(ctx, actor.ID, authz.ActionProjectDelete.String(), "project="+id)
	return nil
}
