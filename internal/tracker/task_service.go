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

// TaskService implements task CRUD behind the authorization engine. It reads
// projects only to validate the parent reference; ownership traversal happens
// inside the resolver.
type TaskService struct {
	store    TaskStore
	projects ProjectStore
	eval     *authz.Evaluator
	audit    *audit.Recorder
}

// NewTaskService constructs a TaskService.
func NewTaskService(store TaskStore, projects ProjectStore, eval *authz.Evaluator, recorder *audit.Recorder) (*TaskService, error) {
	if store == nil || projects == nil || eval == nil || recorder == nil {
		return nil, errors.New("task service requires stores, evaluator and recorder")
	}
	return &TaskService{store: store, projects: projects, eval: eval, audit: recorder}, nil
}

// CreateTaskInput carries the fields accepted on task creation.
type CreateTaskInput struct {
	ProjectID   string
	Description string
	AssignedTo  string
	Status      string
}

// Create registers a task under an existing, active project. Managers may
// create tasks only in projects they own.
func (s *TaskService) Create(ctx context.Context, input CreateTaskInput) (*Task, error) {
	actor, err := authz.RequireActor(ctx)
	if err != nil {
		return nil, err
	}
	projectID := strings.TrimSpace(input.ProjectID)
	if projectID == "" {
		return nil, fmt.Errorf("%w: project_id is required", ErrInvalidInput)
	}
	project, err := s.projects.GetProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if !project.IsActive {
		return nil, fmt.Errorf("%w: project %s is not active", ErrInvalidInput, projectID)
	}

	decision, err := s.eval.Authorize(ctx, actor, authz.ActionTaskCreate, authz.TaskRef{ProjectID: projectID})
	if err != nil {
		return nil, err
	}
	if err := decision.Err(); err != nil {
		return nil, err
	}

	description := strings.TrimSpace(input.Description)
	if description == "" {
		return nil, fmt.Errorf("%w: task description is required", ErrInvalidInput)
	}
	status := TaskStatusPending
	if input.Status != "" {
		parsed, ok := ParseTaskStatus(input.Status)
		if !ok {
			return nil, fmt.Errorf("%w: unsupported status %s", ErrInvalidInput, input.Status)
		}
		status = parsed
	}
	assignedTo := strings.TrimSpace(input.AssignedTo)
	if assignedTo != "" && status == TaskStatusPending {
		status = TaskStatusAssigned
	}

	task := &Task{
		ID:          ids.New(),
		ProjectID:   projectID,
		Description: description,
		AssignedTo:  assignedTo,
		Status:      status,
		IsActive:    true,
	}
	if err := s.store.CreateTask(ctx, task); err != nil {
		return nil, err
	}
	s.audit.Record(ctx, actor.ID, authz.ActionTaskCreate.String(), "task="+task.ID)
	return task, nil
}

// Get reads a single task. Reads are unrestricted for active actors.
func (s *TaskService) Get(ctx context.Context, id string) (*Task, error) {
	actor, err := authz.RequireActor(ctx)
	if err != nil {
		return nil, err
	}
	decision, err := s.eval.Authorize(ctx, actor, authz.ActionTaskRead, nil)
	if err != nil {
		return nil, err
	}
	if err := decision.Err(); err != nil {
		return nil, err
	}
	return s.store.GetTask(ctx, id)
}

// List returns tasks visible to the actor with pagination.
func (s *TaskService) List(ctx context.Context, limit, offset int) ([]*Task, error) {
	actor, err := authz.RequireActor(ctx)
	if err != nil {
		return nil, err
	}
	scope, err := authorizeList(ctx, s.eval, actor, authz.ActionTaskList)
	if err != nil {
		return nil, err
	}
	limit, offset = normalizePage(limit, offset)
	return s.store.ListTasks(ctx, scope, limit, offset)
}

// UpdateTaskInput carries optional task mutations.
type UpdateTaskInput struct {
	Description *string
	AssignedTo  *string
	Status      *string
	IsActive    *bool
}

// Update mutates a task. The assignee may update their own task even when the
// parent project belongs to someone else.
func (s *TaskService) Update(ctx context.Context, id string, input UpdateTaskInput) (*Task, error) {
	actor, err := authz.RequireActor(ctx)
	if err != nil {
		return nil, err
	}
	current, err := s.store.GetTask(ctx, id)
	if err != nil {
		return nil, err
	}
	decision, err := s.eval.Authorize(ctx, actor, authz.ActionTaskUpdate, current.Ref())
	if err != nil {
		return nil, err
	}
	if err := decision.Err(); err != nil {
		return nil, err
	}

	upd := TaskUpdate{AssignedTo: input.AssignedTo, IsActive: input.IsActive}
	if input.Description != nil {
		description := strings.TrimSpace(*input.Description)
		if description == "" {
			return nil, fmt.Errorf("%w: task description is required", ErrInvalidInput)
		}
		upd.Description = &description
	}
	if input.Status != nil {
		status, ok := ParseTaskStatus(*input.Status)
		if !ok {
			return nil, fmt.Errorf("%w: unsupported status %s", ErrInvalidInput, *input.Status)
		}
		upd.Status = &status
	}

	task, err := s.store.UpdateTask(ctx, id, upd)
	if err != nil {
		return nil, err
	}
	s.audit.Record(ctx, actor.ID, authz.ActionTaskUpdate.String(), "task="+id)
	return task, nil
}

// Delete removes a task.
func (s *TaskService) Delete(ctx context.Context, id string) error {
	actor, err := authz.RequireActor(ctx)
	if err != nil {
		return err
	}
	current, err := s.store.GetTask(ctx, id)
	if err != nil {
		return err
	}
	decision, err := s.eval.Authorize(ctx, actor, authz.ActionTaskDelete, current.Ref())
	if err != nil {
		return err
	}
	if err := decision.Err(); err != nil {
		return err
	}
	if err := s.store.DeleteTask(ctx, id); err != nil {
		return err
	}
	s.audit.Record(ctx, actor.ID, authz.ActionTaskDelete.String(), "task="+id)
	return nil
}
