package authz

import "strings"

// Entity names an authorizable entity type.
type Entity string

const (
	EntityUser    Entity = "user"
	EntityProject Entity = "project"
	EntityTask    Entity = "task"
	EntityAudit   Entity = "audit"
)

// Action identifies an operation gated by the policy table. The value is the
// entity name and the verb joined by a dot, e.g. "project.update".
type Action string

const (
	ActionUserCreate Action = "user.create"
	ActionUserRead   Action = "user.read"
	ActionUserList   Action = "user.list"
	ActionUserUpdate Action = "user.update"
	ActionUserDelete Action = "user.delete"

	ActionProjectCreate Action = "project.create"
	ActionProjectRead   Action = "project.read"
	ActionProjectList   Action = "project.list"
	ActionProjectUpdate Action = "project.update"
	ActionProjectDelete Action = "project.delete"

	ActionTaskCreate Action = "task.create"
	ActionTaskRead   Action = "task.read"
	ActionTaskList   Action = "task.list"
	ActionTaskUpdate Action = "task.update"
	ActionTaskDelete Action = "task.delete"

	ActionAuditRead Action = "audit.read"
	ActionAuditList Action = "audit.list"
)

// Entity returns the entity segment of the action.
func (a Action) Entity() Entity {
	name, _, _ := strings.Cut(string(a), ".")
	return Entity(name)
}

// IsCollection reports whether the action reads a collection rather than a
// single instance. Collection reads under ALLOW_OWNED yield a scoped filter
// instead of an ownership check.
func (a Action) IsCollection() bool {
	return strings.HasSuffix(string(a), ".list")
}

func (a Action) String() string { return string(a) }
