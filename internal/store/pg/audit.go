package pg

import (
	"context"

	"taskhub.org/internal/audit"
)

// AppendAudit persists one audit entry. Entries are append-only; there is no
// update or delete path.
func (s *Store) AppendAudit(ctx context.Context, entry *audit.Entry) error {
	_, err := s.db.ExecContext(ctx, `
		insert into audit_log (id, actor_id, action, detail, created_at)
		values ($1, $2, $3, $4, $5)
	`, entry.ID, entry.ActorID, entry.Action, nullIfEmpty(entry.Detail), entry.CreatedAt)
	return mapWriteErr(err)
}

// ListAudit returns entries newest first.
func (s *Store) ListAudit(ctx context.Context, limit, offset int) ([]audit.Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
		select id, actor_id, action, coalesce(detail, ''), created_at
		from audit_log
		order by created_at desc, id desc
		limit $1 offset $2
	`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []audit.Entry
	for rows.Next() {
		var e audit.Entry
		if err := rows.Scan(&e.ID, &e.ActorID, &e.Action, &e.Detail, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}
