package tracker

import (
	"context"
	"strings"

	"taskhub.org/internal/authz"
)

const (
	defaultPageLimit = 50
	maxPageLimit     = 200
)

// normalizePage clamps list pagination to sane bounds.
func normalizePage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// normalizeEmail lowercases and trims an address; emails are matched
// case-insensitively throughout.
func normalizeEmail(email string) string {
	return strings.TrimSpace(strings.ToLower(email))
}

func validEmail(email string) bool {
	return email != "" && strings.Contains(email, "@")
}

// authorizeList resolves a collection read into an optional scope filter for
// the storage query.
func authorizeList(ctx context.Context, eval *authz.Evaluator, actor authz.Actor, action authz.Action) (*authz.Scope, error) {
	decision, err := eval.Authorize(ctx, actor, action, nil)
	if err != nil {
		return nil, err
	}
	if err := decision.Err(); err != nil {
		return nil, err
	}
	return decision.Scope, nil
}
