package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sakif/promptmaster/internal/apperror"
	"github.com/sakif/promptmaster/internal/model"
	"github.com/sakif/promptmaster/internal/repository"
)

// compile-time check that *DB implements repository.UserRepository
var _ repository.UserRepository = (*DB)(nil)

func (db *DB) CreateUser(ctx context.Context, user *model.User) error {
	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO users (id, name, avatar, role, password_hash, is_first_login, created_at, last_login_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		user.ID,
		user.Name,
		user.Avatar,
		user.Role,
		user.PasswordHash,
		user.IsFirstLogin,
		user.CreatedAt,
		user.LastLoginAt,
	)
	if err != nil {
		// The UNIQUE COLLATE NOCASE constraint on name turns a duplicate
		// display name (any casing) into a constraint violation.
		if isUniqueViolation(err) {
			return apperror.Conflict("user", user.Name)
		}
		return fmt.Errorf("sqlite: inserting user %s: %w", user.Name, err)
	}
	return nil
}

// GetUserByID retrieves a user by their internal ID.
// Returns apperror.ErrNotFound if no user exists with that ID.
func (db *DB) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	return db.getUser(ctx, `WHERE id = ?`, id)
}

// GetUserByName looks a user up by display name. The comparison is
// case-insensitive because the column is COLLATE NOCASE — "admin user"
// and "Admin User" hit the same row.
func (db *DB) GetUserByName(ctx context.Context, name string) (*model.User, error) {
	return db.getUser(ctx, `WHERE name = ?`, name)
}

func (db *DB) getUser(ctx context.Context, where string, arg any) (*model.User, error) {
	var u model.User
	err := db.conn.QueryRowContext(ctx,
		`SELECT id, name, avatar, role, password_hash, is_first_login, created_at, last_login_at
		 FROM users `+where,
		arg,
	).Scan(
		&u.ID,
		&u.Name,
		&u.Avatar,
		&u.Role,
		&u.PasswordHash,
		&u.IsFirstLogin,
		&u.CreatedAt,
		&u.LastLoginAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("user", fmt.Sprint(arg))
		}
		return nil, fmt.Errorf("sqlite: getting user %v: %w", arg, err)
	}
	return &u, nil
}

func (db *DB) ListUsers(ctx context.Context) ([]model.User, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, name, avatar, role, password_hash, is_first_login, created_at, last_login_at
		 FROM users ORDER BY created_at ASC, name ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing users: %w", err)
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		var u model.User
		if err := rows.Scan(
			&u.ID,
			&u.Name,
			&u.Avatar,
			&u.Role,
			&u.PasswordHash,
			&u.IsFirstLogin,
			&u.CreatedAt,
			&u.LastLoginAt,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scanning user row: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating user rows: %w", err)
	}
	return users, nil
}

// UpdatePassword stores the new hash and clears the first-login flag in the
// same statement — a changed password is always a completed first login.
func (db *DB) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	res, err := db.conn.ExecContext(ctx,
		`UPDATE users SET password_hash = ?, is_first_login = 0 WHERE id = ?`,
		passwordHash, id,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating password for user %s: %w", id, err)
	}
	return requireRow(res, "user", id)
}

func (db *DB) TouchLastLogin(ctx context.Context, id string, when int64) error {
	res, err := db.conn.ExecContext(ctx,
		`UPDATE users SET last_login_at = ? WHERE id = ?`,
		when, id,
	)
	if err != nil {
		return fmt.Errorf("sqlite: touching last login for user %s: %w", id, err)
	}
	return requireRow(res, "user", id)
}

// DeleteUser removes a user and reassigns everything they owned, in one
// transaction:
//
//   - their prompts move to the heir (owner id AND the denormalized
//     author_name column, so listings show the new owner immediately)
//   - their user categories lose their owner via ON DELETE SET NULL
//   - their favorite rows disappear via ON DELETE CASCADE
//
// The reassignment runs BEFORE the DELETE — otherwise the prompts cascade
// away with the user and there is nothing left to reassign.
func (db *DB) DeleteUser(ctx context.Context, id, heirID, heirName string) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning user delete transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`UPDATE prompts SET user_id = ?, author_name = ? WHERE user_id = ?`,
		heirID, heirName, id,
	); err != nil {
		return fmt.Errorf("sqlite: reassigning prompts of user %s: %w", id, err)
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting user %s: %w", id, err)
	}
	if err := requireRow(res, "user", id); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing user delete: %w", err)
	}
	return nil
}

// requireRow converts "UPDATE/DELETE touched zero rows" into a not-found
// error, so callers never report success against a missing id.
func requireRow(res sql.Result, resource, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: reading rows affected: %w", err)
	}
	if n == 0 {
		return apperror.NotFound(resource, id)
	}
	return nil
}
