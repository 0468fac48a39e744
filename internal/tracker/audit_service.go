package tracker

import (
	"context"
	"errors"

	"taskhub.org/internal/audit"
	"taskhub.org/internal/authz"
)

// AuditService exposes the read side of the audit trail. Admin only; there is
// no write path here because entries are emitted by the recorder after
// committed mutations.
type AuditService struct {
	store audit.Store
	eval  *authz.Evaluator
}

// NewAuditService constructs an AuditService.
func NewAuditService(store audit.Store, eval *authz.Evaluator) (*AuditService, error) {
	if store == nil || eval == nil {
		return nil, errors.New("audit service requires store and evaluator")
	}
	return &AuditService{store: store, eval: eval}, nil
}

// List returns audit entries, newest first.
func (s *AuditService) List(ctx context.Context, limit, offset int) ([]audit.Entry, error) {
	actor, err := authz.RequireActor(ctx)
	if err != nil {
		return nil, err
	}
	decision, err := s.eval.Authorize(ctx, actor, authz.ActionAuditList, nil)
	if err != nil {
		return nil, err
	}
	if err := decision.Err(); err != nil {
		return nil, err
	}
	limit, offset = normalizePage(limit, offset)
	return s.store.ListAudit(ctx, limit, offset)
}
