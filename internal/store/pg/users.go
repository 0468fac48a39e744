package pg

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"taskhub.org/internal/authz"
	"taskhub.org/internal/tracker"
)

// Roles are stored as a jsonb array of role names. encodeRoles and
// decodeRoles keep the representation in one place.
func encodeRoles(roles []authz.Role) ([]byte, error) {
	if len(roles) == 0 {
		return []byte("[]"), nil
	}
	return json.Marshal(roles)
}

func decodeRoles(raw []byte) ([]authz.Role, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var names []string
	if err := json.Unmarshal(raw, &names); err != nil {
		return nil, fmt.Errorf("decode roles: %w", err)
	}
	return authz.ParseRoles(names), nil
}

func (s *Store) CreateUser(ctx context.Context, u *tracker.User) error {
	roles, err := encodeRoles(u.Roles)
	if err != nil {
		return err
	}
	row := s.db.QueryRowContext(ctx, `
		insert into users (id, full_name, email, password_hash, roles, is_active)
		values ($1, $2, $3, $4, $5, $6)
		returning created_at, updated_at
	`, u.ID, u.FullName, u.Email, u.PasswordHash, roles, u.IsActive)
	if err := row.Scan(&u.CreatedAt, &u.UpdatedAt); err != nil {
		return mapWriteErr(err)
	}
	return nil
}

func (s *Store) GetUser(ctx context.Context, id string) (*tracker.User, error) {
	return s.userBy(ctx, `id = $1`, id)
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*tracker.User, error) {
	return s.userBy(ctx, `email = $1`, email)
}

func (s *Store) userBy(ctx context.Context, predicate string, arg any) (*tracker.User, error) {
	var (
		u        tracker.User
		rawRoles []byte
	)
	err := s.db.QueryRowContext(ctx, `
		select id, full_name, email, password_hash, roles, is_active, created_at, updated_at
		from users
		where `+predicate,
		arg,
	).Scan(&u.ID, &u.FullName, &u.Email, &u.PasswordHash, &rawRoles, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, tracker.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if u.Roles, err = decodeRoles(rawRoles); err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *Store) ListUsers(ctx context.Context, scope *authz.Scope, limit, offset int) ([]*tracker.User, error) {
	query := `
		select id, full_name, email, password_hash, roles, is_active, created_at, updated_at
		from users
	`
	args := []any{}
	if scope != nil {
		query += ` where id = $1`
		args = append(args, scope.ActorID)
	}
	query += fmt.Sprintf(` order by email limit $%d offset $%d`, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*tracker.User
	for rows.Next() {
		var (
			u        tracker.User
			rawRoles []byte
		)
		if err := rows.Scan(&u.ID, &u.FullName, &u.Email, &u.PasswordHash, &rawRoles, &u.IsActive, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, err
		}
		if u.Roles, err = decodeRoles(rawRoles); err != nil {
			return nil, err
		}
		users = append(users, &u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return users, nil
}

func (s *Store) UpdateUser(ctx context.Context, id string, upd tracker.UserUpdate) (*tracker.User, error) {
	var (
		sets []string
		args []any
		idx  = 1
	)
	if upd.FullName != nil {
		sets = append(sets, fmt.Sprintf("full_name = $%d", idx))
		args = append(args, *upd.FullName)
		idx++
	}
	if upd.Email != nil {
		sets = append(sets, fmt.Sprintf("email = $%d", idx))
		args = append(args, *upd.Email)
		idx++
	}
	if upd.PasswordHash != nil {
		sets = append(sets, fmt.Sprintf("password_hash = $%d", idx))
		args = append(args, *upd.PasswordHash)
		idx++
	}
	if upd.Roles != nil {
		roles, err := encodeRoles(upd.Roles)
		if err != nil {
			return nil, err
		}
		sets = append(sets, fmt.Sprintf("roles = $%d", idx))
		args = append(args, roles)
		idx++
	}
	if upd.IsActive != nil {
		sets = append(sets, fmt.Sprintf("is_active = $%d", idx))
		args = append(args, *upd.IsActive)
		idx++
	}
	if len(sets) > 0 {
		sets = append(sets, "updated_at = now()")
		query := fmt.Sprintf(`update users set %s where id = $%d`, strings.Join(sets, ", "), idx)
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
	return s.GetUser(ctx, id)
}

func (s *Store) DeleteUser(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `delete from users where id = $1`, id)
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
