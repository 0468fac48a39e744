package pg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"taskhub.org/internal/authz"
	"taskhub.org/internal/tracker"
)

func (s *Store) CreateProject(ctx context.Context, p *tracker.Project) error {
	row := s.db.QueryRowContext(ctx, `
		insert into projects (id, name, description, owner_id, is_active)
		values ($1, $2, $3, $4, $5)
		returning created_at, updated_at
	`, p.ID, p.Name, nullIfEmpty(p.Description), p.OwnerID, p.IsActive)
	if err := row.Scan(&p.CreatedAt, &p.UpdatedAt); err != nil {
		return mapWriteErr(err)
	}
	return nil
}

func (s *Store) GetProject(ctx context.Context, id string) (*tracker.Project, error) {
	var (
		p    tracker.Project
		desc sql.NullString
	)
	err := s.db.QueryRowContext(ctx, `
		select id, name, description, owner_id, is_active, created_at, updated_at
		from projects
		where id = $1
	`, id).Scan(&p.ID, &p.Name, &desc, &p.OwnerID, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, tracker.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if desc.Valid {
		p.Description = desc.String
	}
	return &p, nil
}

// LookupProject serves ownership resolution for tasks. Missing projects map
// to the resolver's own not-found sentinel so the lookup stays fail-closed.
func (s *Store) LookupProject(ctx context.Context, id string) (authz.ProjectRef, error) {
	var ref authz.ProjectRef
	err := s.db.QueryRowContext(ctx, `
		select id, owner_id, is_active
		from projects
		where id = $1
	`, id).Scan(&ref.ID, &ref.OwnerID, &ref.IsActive)
	if errors.Is(err, sql.ErrNoRows) {
		return authz.ProjectRef{}, authz.ErrNotFound
	}
	if err != nil {
		return authz.ProjectRef{}, err
	}
	return ref, nil
}

func (s *Store) ListProjects(ctx context.Context, scope *authz.Scope, limit, offset int) ([]*tracker.Project, error) {
	query := `
		select id, name, description, owner_id, is_active, created_at, updated_at
		from projects
	`
	args := []any{}
	if scope != nil {
		query += ` where owner_id = $1`
		args = append(args, scope.ActorID)
	}
	query += fmt.Sprintf(` order by name limit $%d offset $%d`, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var projects []*tracker.Project
	for rows.Next() {
		var (
			p    tracker.Project
			desc sql.NullString
		)
		if err := rows.Scan(&p.ID, &p.Name, &desc, &p.OwnerID, &p.IsActive, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		if desc.Valid {
			p.Description = desc.String
		}
		projects = append(projects, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return projects, nil
}

func (s *Store) UpdateProject(ctx context.Context, id string, upd tracker.ProjectUpdate) (*tracker.Project, error) {
	var (
		sets []string
		args []any
		idx  = 1
	)
	if upd.Name != nil {
		sets = append(sets, fmt.Sprintf("name = $%d", idx))
		args = append(args, *upd.Name)
		idx++
	}
	if upd.Description != nil {
		if *upd.Description == "" {
			sets = append(sets, "description = NULL")
		} else {
			sets = append(sets, fmt.Sprintf("description = $%d", idx))
			args = append(args, *upd.Description)
			idx++
		}
	}
	if upd.OwnerID != nil {
		sets = append(sets, fmt.Sprintf("owner_id = $%d", idx))
		args = append(args, *upd.OwnerID)
		idx++
	}
	if upd.IsActive != nil {
		sets = append(sets, fmt.Sprintf("is_active = $%d", idx))
		args = append(args, *upd.IsActive)
		idx++
	}
	if len(sets) > 0 {
		sets = append(sets, "updated_at = now()")
		query := fmt.Sprintf(`update projects set %s where id = $%d`, strings.Join(sets, ", "), idx)
		args = append(args, id)
		res, err := s.db.ExecContext(ctx, query, args...)
		if err != nil {
			return nil, mapWriteErr(err)
		}
		aff, err := res.RowsAffected()
		if err != nil {
			return nil, err
		}
		if aff == 0 {
			return nil, tracker.ErrNotFound
		}
	}
	return s.GetProject(ctx, id)
}

func (s *Store) DeleteProject(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `delete from projects where id = $1`, id)
	if err != nil {
		return err
	}
	aff, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if aff == 0 {
		return tracker.ErrNotFound
	}
	return nil
}
