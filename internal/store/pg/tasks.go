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

func (s *Store) CreateTask(ctx context.Context, t *tracker.Task) error {
	row := s.db.QueryRowContext(ctx, `
		insert into tasks (id, project_id, description, assigned_to, status, is_active)
		values ($1, $2, $3, $4, $5, $6)
		returning created_at, updated_at
	`, t.ID, t.ProjectID, t.Description, nullIfEmpty(t.AssignedTo), string(t.Status), t.IsActive)
	if err := row.Scan(&t.CreatedAt, &t.UpdatedAt); err != nil {
		return mapWriteErr(err)
	}
	return nil
}

func (s *Store) GetTask(ctx context.Context, id string) (*tracker.Task, error) {
	var (
		t        tracker.Task
		assignee sql.NullString
		status   string
	)
	err := s.db.QueryRowContext(ctx, `
		select id, project_id, description, assigned_to, status, is_active, created_at, updated_at
		from tasks
		where id = $1
	`, id).Scan(&t.ID, &t.ProjectID, &t.Description, &assignee, &status, &t.IsActive, &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, tracker.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if assignee.Valid {
		t.AssignedTo = assignee.String
	}
	t.Status = tracker.TaskStatus(status)
	return &t, nil
}

func (s *Store) ListTasks(ctx context.Context, scope *authz.Scope, limit, offset int) ([]*tracker.Task, error) {
	query := `
		select id, project_id, description, assigned_to, status, is_active, created_at, updated_at
		from tasks
	`
	args := []any{}
	if scope != nil {
		// A task is owned by its assignee or, transitively, by the owner of
		// its parent project.
		query += ` where (assigned_to = $1 or project_id in (select id from projects where owner_id = $1))`
		args = append(args, scope.ActorID)
	}
	query += fmt.Sprintf(` order by created_at limit $%d offset $%d`, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []*tracker.Task
	for rows.Next() {
		var (
			t        tracker.Task
			assignee sql.NullString
			status   string
		)
		if err := rows.Scan(&t.ID, &t.ProjectID, &t.Description, &assignee, &status, &t.IsActive, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		if assignee.Valid {
			t.AssignedTo = assignee.String
		}
		t.Status = tracker.TaskStatus(status)
		tasks = append(tasks, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return tasks, nil
}

func (s *Store) UpdateTask(ctx context.Context, id string, upd tracker.TaskUpdate) (*tracker.Task, error) {
	var (
		sets []string
		args []any
		idx  = 1
	)
	if upd.Description != nil {
		sets = append(sets, fmt.Sprintf("description = $%d", idx))
		args = append(args, *upd.Description)
		idx++
	}
	if upd.AssignedTo != nil {
		if *upd.AssignedTo == "" {
			sets = append(sets, "assigned_to = NULL")
		} else {
			sets = append(sets, fmt.Sprintf("assigned_to = $%d", idx))
			args = append(args, *upd.AssignedTo)
			idx++
		}
	}
	if upd.Status != nil {
		sets = append(sets, fmt.Sprintf("status = $%d", idx))
		args = append(args, string(*upd.Status))
		idx++
	}
	if upd.IsActive != nil {
		sets = append(sets, fmt.Sprintf("is_active = $%d", idx))
		args = append(args, *upd.IsActive)
		idx++
	}
	if len(sets) > 0 {
		sets = append(sets, "updated_at = now()")
		query := fmt.Sprintf(`update tasks set %s where id = $%d`, strings.Join(sets, ", "), idx)
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
	return s.GetTask(ctx, id)
}

func (s *Store) DeleteTask(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `delete from tasks where id = $1`, id)
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
