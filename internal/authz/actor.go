package authz

import "strings"

// Role labels an actor with a coarse permission class.
type Role string

const (
	RoleUser    Role = "USER"
	RoleManager Role = "MANAGER"
	RoleAdmin   Role = "ADMIN"
)

// ParseRole normalizes a role name case-insensitively.
func ParseRole(s string) (Role, bool) {
	switch Role(strings.ToUpper(strings.TrimSpace(s))) {
	case RoleUser:
		return RoleUser, true
	case RoleManager:
		return RoleManager, true
	case RoleAdmin:
		return RoleAdmin, true
	}
	return "", false
}

// Actor is the authenticated identity performing a request, resolved by the
// token-verification layer. It is immutable for the lifetime of the request.
type Actor struct {
	ID       string
	Roles    []Role
	IsActive bool
}

// HasRole reports whether the actor carries the given role.
func (a Actor) HasRole(role Role) bool {
	for _, r := range a.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// ParseRoles normalizes a list of role names, dropping unknown entries and
// duplicates.
func ParseRoles(names []string) []Role {
	if len(names) == 0 {
		return nil
	}
	seen := make(map[Role]struct{}, len(names))
	var roles []Role
	for _, name := range names {
		role, ok := ParseRole(name)
		if !ok {
			continue
		}
		if _, dup := seen[role]; dup {
			continue
		}
		seen[role] = struct{}{}
		roles = append(roles, role)
	}
	return roles
}
