package tracker

import (
	"context"
	"errors"
	"fmt"

	"taskhub.org/internal/audit"
	"taskhub.org/internal/auth"
	"taskhub.org/internal/authz"
	"taskhub.org/internal/ids"
)

// UserService implements user CRUD behind the authorization engine. Every
// mutation is authorized first and audited after the store commit.
type UserService struct {
	store UserStore
	eval  *authz.Evaluator
	audit *audit.Recorder
}

// NewUserService constructs a UserService.
func NewUserService(store UserStore, eval *authz.Evaluator, recorder *audit.Recorder) (*UserService, error) {
	if store == nil || eval == nil || recorder == nil {
		return nil, errors.New("user service requires store, evaluator and recorder")
	}
	return &UserService{store: store, eval: eval, audit: recorder}, nil
}

// CreateUserInput carries the fields accepted on user creation.
type CreateUserInput struct {
	FullName string
	Email    string
	Password string
	Roles    []string
}

// Create registers a new user. Admin only.
func (s *UserService) Create(ctx context.Context, input CreateUserInput) (*User, error) {
	actor, err := authz.RequireActor(ctx)
	if err != nil {
		return nil, err
	}
	decision, err := s.eval.Authorize(ctx, actor, authz.ActionUserCreate, nil)
	if err != nil {
		return nil, err
	}
	if err := decision.Err(); err != nil {
		return nil, err
	}

	email := normalizeEmail(input.Email)
	if !validEmail(email) {
		return nil, fmt.Errorf("%w: valid email is required", ErrInvalidInput)
	}
	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	roles := authz.ParseRoles(input.Roles)
	if len(roles) == 0 {
		roles = []authz.Role{authz.RoleUser}
	}

	user := &User{
		ID:           ids.New(),
		FullName:     input.FullName,
		Email:        email,
		PasswordHash: hash,
		Roles:        roles,
		IsActive:     true,
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	s.audit.Record(ctx, actor.ID, authz.ActionUserCreate.String(), "user="+user.ID)
	return user, nil
}

// Get reads a single user; non-admins may only read themselves.
func (s *UserService) Get(ctx context.Context, id string) (*User, error) {
	actor, err := authz.RequireActor(ctx)
	if err != nil {
		return nil, err
	}
	decision, err := s.eval.Authorize(ctx, actor, authz.ActionUserRead, authz.UserRef{ID: id})
	if err != nil {
		return nil, err
	}
	if err := decision.Err(); err != nil {
		return nil, err
	}
	return s.store.GetUser(ctx, id)
}

// List returns users visible to the actor with pagination.
func (s *UserService) List(ctx context.Context, limit, offset int) ([]*User, error) {
	actor, err := authz.RequireActor(ctx)
	if err != nil {
		return nil, err
	}
	scope, err := authorizeList(ctx, s.eval, actor, authz.ActionUserList)
	if err != nil {
		return nil, err
	}
	limit, offset = normalizePage(limit, offset)
	return s.store.ListUsers(ctx, scope, limit, offset)
}

// UpdateUserInput carries optional user mutations.
type UpdateUserInput struct {
	FullName *string
	Email    *string
	Password *string
	Roles    []string
	IsActive *bool
}

// Update mutates a user record; non-admins may only update themselves, and
// only an admin can change roles or the active flag.
func (s *UserService) Update(ctx context.Context, id string, input UpdateUserInput) (*User, error) {
	actor, err := authz.RequireActor(ctx)
	if err != nil {
		return nil, err
	}
	decision, err := s.eval.Authorize(ctx, actor, authz.ActionUserUpdate, authz.UserRef{ID: id})
	if err != nil {
		return nil, err
	}
	if err := decision.Err(); err != nil {
		return nil, err
	}

	upd := UserUpdate{FullName: input.FullName, IsActive: input.IsActive}
	if input.Email != nil {
		email := normalizeEmail(*input.Email)
		if !validEmail(email) {
			return nil, fmt.Errorf("%w: valid email is required", ErrInvalidInput)
		}
		upd.Email = &email
	}
	if input.Password != nil {
		hash, err := auth.HashPassword(*input.Password)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		upd.PasswordHash = &hash
	}
	if len(input.Roles) > 0 || input.IsActive != nil {
		if !actor.HasRole(authz.RoleAdmin) {
			return nil, authz.ErrRoleForbidden
		}
		upd.Roles = authz.ParseRoles(input.Roles)
	}

	user, err := s.store.UpdateUser(ctx, id, upd)
	if err != nil {
		return nil, err
	}
	s.audit.Record(ctx, actor.ID, authz.ActionUserUpdate.String(), "user="+id)
	return user, nil
}

// Delete removes a user record.
func (s *UserService) Delete(ctx context.Context, id string) error {
	actor, err := authz.RequireActor(ctx)
	if err != nil {
		return err
	}
	decision, err := s.eval.Authorize(ctx, actor, authz.ActionUserDelete, authz.UserRef{ID: id})
	if err != nil {
		return err
	}
	if err := decision.Err(); err != nil {
		return err
	}
	if err := s.store.DeleteUser(ctx, id); err != nil {
		return err
	}
	s.audit.Record(ctx, actor.ID, authz.ActionUserDelete.String(), "user="+id)
	return nil
}

// Lookup fetches a user without an authorization check. It exists for the
// authentication middleware, which needs the stored roles and active flag
// before any actor is attached to the context.
func (s *UserService) Lookup(ctx context.Context, id string) (*User, error) {
	return s.store.GetUser(ctx, id)
}

// Authenticate verifies email/password credentials and returns the user.
// Used by the token-issuing login handler; not an authorization-gated action.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*User, error) {
	email = normalizeEmail(email)
	if !validEmail(email) || password == "" {
		return nil, auth.ErrInvalidCredentials
	}
	user, err := s.store.GetUserByEmail(ctx, email)
	if errors.Is(err, ErrNotFound) {
		return nil, auth.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, auth.ErrInvalidCredentials
	}
	if err := auth.VerifyPassword(user.PasswordHash, password); err != nil {
		return nil, auth.ErrInvalidCredentials
	}
	return user, nil
}
