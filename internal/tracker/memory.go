package tracker

import (
	"context"
	"sync"
	"time"

	"taskhub.org/internal/audit"
	"taskhub.org/internal/authz"
)

// InMemory implements every store contract with process-local maps. It backs
// tests and DSN-less development runs; production uses the pg store.
type InMemory struct {
	mu       sync.Mutex
	users    map[string]*User
	projects map[string]*Project
	tasks    map[string]*Task
	entries  []audit.Entry
}

var (
	_ UserStore           = (*InMemory)(nil)
	_ ProjectStore        = (*InMemory)(nil)
	_ TaskStore           = (*InMemory)(nil)
	_ authz.ProjectLookup = (*InMemory)(nil)
	_ audit.Store         = (*InMemory)(nil)
)

func NewInMemory() *InMemory {
	return &InMemory{
		users:    map[string]*User{},
		projects: map[string]*Project{},
		tasks:    map[string]*Task{},
	}
}

func (m *InMemory) CreateUser(_ context.Context, u *User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if existing.Email == u.Email {
			return ErrConflict
		}
	}
	u.CreatedAt = time.Now().UTC()
	u.UpdatedAt = u.CreatedAt
	cp := *u
	m.users[u.ID] = &cp
	return nil
}

func (m *InMemory) GetUser(_ context.Context, id string) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *InMemory) GetUserByEmail(_ context.Context, email string) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (m *InMemory) ListUsers(_ context.Context, scope *authz.Scope, limit, offset int) ([]*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*User
	for _, u := range m.users {
		if scope != nil && u.ID != scope.ActorID {
			continue
		}
		cp := *u
		out = append(out, &cp)
	}
	return page(out, limit, offset), nil
}

func (m *InMemory) UpdateUser(_ context.Context, id string, upd UserUpdate) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	if upd.FullName != nil {
		u.FullName = *upd.FullName
	}
	if upd.Email != nil {
		u.Email = *upd.Email
	}
	if upd.PasswordHash != nil {
		u.PasswordHash = *upd.PasswordHash
	}
	if len(upd.Roles) > 0 {
		u.Roles = upd.Roles
	}
	if upd.IsActive != nil {
		u.IsActive = *upd.IsActive
	}
	u.UpdatedAt = time.Now().UTC()
	cp := *u
	return &cp, nil
}

func (m *InMemory) DeleteUser(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[id]; !ok {
		return ErrNotFound
	}
	delete(m.users, id)
	return nil
}

func (m *InMemory) CreateProject(_ context.Context, p *Project) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p.CreatedAt = time.Now().UTC()
	p.UpdatedAt = p.CreatedAt
	cp := *p
	m.projects[p.ID] = &cp
	return nil
}

func (m *InMemory) GetProject(_ context.Context, id string) (*Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.projects[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *InMemory) ListProjects(_ context.Context, scope *authz.Scope, limit, offset int) ([]*Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*Project
	for _, p := range m.projects {
		if scope != nil && p.OwnerID != scope.ActorID {
			continue
		}
		cp := *p
		out = append(out, &cp)
	}
	return page(out, limit, offset), nil
}

func (m *InMemory) UpdateProject(_ context.Context, id string, upd ProjectUpdate) (*Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.projects[id]
	if !ok {
		return nil, ErrNotFound
	}
	if upd.Name != nil {
		p.Name = *upd.Name
	}
	if upd.Description != nil {
		p.Description = *upd.Description
	}
	if upd.OwnerID != nil {
		p.OwnerID = *upd.OwnerID
	}
	if upd.IsActive != nil {
		p.IsActive = *upd.IsActive
	}
	p.UpdatedAt = time.Now().UTC()
	cp := *p
	return &cp, nil
}

func (m *InMemory) DeleteProject(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.projects[id]; !ok {
		return ErrNotFound
	}
	delete(m.projects, id)
	return nil
}

func (m *InMemory) CreateTask(_ context.Context, t *Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t.CreatedAt = time.Now().UTC()
	t.UpdatedAt = t.CreatedAt
	cp := *t
	m.tasks[t.ID] = &cp
	return nil
}

func (m *InMemory) GetTask(_ context.Context, id string) (*Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tasks[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (m *InMemory) ListTasks(_ context.Context, scope *authz.Scope, limit, offset int) ([]*Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*Task
	for _, t := range m.tasks {
		if scope != nil && !m.taskVisible(t, scope.ActorID) {
			continue
		}
		cp := *t
		out = append(out, &cp)
	}
	return page(out, limit, offset), nil
}

// taskVisible mirrors the scope predicate the pg store expresses in SQL: the
// assignee sees the task, and so does the parent project's owner.
func (m *InMemory) taskVisible(t *Task, actorID string) bool {
	if t.AssignedTo == actorID {
		return true
	}
	p, ok := m.projects[t.ProjectID]
	return ok && p.OwnerID == actorID
}

func (m *InMemory) UpdateTask(_ context.Context, id string, upd TaskUpdate) (*Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tasks[id]
	if !ok {
		return nil, ErrNotFound
	}
	if upd.Description != nil {
		t.Description = *upd.Description
	}
	if upd.AssignedTo != nil {
		t.AssignedTo = *upd.AssignedTo
	}
	if upd.Status != nil {
		t.Status = *upd.Status
	}
	if upd.IsActive != nil {
		t.IsActive = *upd.IsActive
	}
	t.UpdatedAt = time.Now().UTC()
	cp := *t
	return &cp, nil
}

func (m *InMemory) DeleteTask(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tasks[id]; !ok {
		return ErrNotFound
	}
	delete(m.tasks, id)
	return nil
}

func (m *InMemory) AppendAudit(_ context.Context, entry *audit.Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, *entry)
	return nil
}

func (m *InMemory) ListAudit(_ context.Context, limit, offset int) ([]audit.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]audit.Entry, len(m.entries))
	copy(out, m.entries)
	return page(out, limit, offset), nil
}

func (m *InMemory) LookupProject(ctx context.Context, id string) (authz.ProjectRef, error) {
	p, err := m.GetProject(ctx, id)
	if err != nil {
		return authz.ProjectRef{}, authz.ErrNotFound
	}
	return p.Ref(), nil
}

// AuditEntries returns a snapshot of everything appended so far.
func (m *InMemory) AuditEntries() []audit.Entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]audit.Entry, len(m.entries))
	copy(out, m.entries)
	return out
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return nil
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
