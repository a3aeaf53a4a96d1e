package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/reviewhub/internal/apperror"
	"github.com/sakif/reviewhub/internal/model"
	"github.com/sakif/reviewhub/internal/repository"
)

// compile-time check that *DB implements repository.UserRepository
var _ repository.UserRepository = (*DB)(nil)

const userColumns = `id, username, email, first_name, last_name, bio, role,
	is_superuser, confirmation_code, created_at, updated_at`

// CreateUser inserts a new account. Duplicate username or email surfaces as
// an apperror conflict, same as the service-level pre-check would report.
func (db *DB) CreateUser(ctx context.Context, user *model.User) error {
	user.ID = xid.New().String()
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now
	if user.Role == "" {
		user.Role = model.RoleUser
	}

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO users (id, username, email, first_name, last_name, bio,
			role, is_superuser, confirmation_code, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		user.ID, user.Username, user.Email, user.FirstName, user.LastName,
		user.Bio, user.Role, user.IsSuperuser, user.ConfirmationCode,
		user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict(fmt.Sprintf("user %q already exists", user.Username))
		}
		return fmt.Errorf("sqlite: creating user %s: %w", user.Username, err)
	}
	return nil
}

func (db *DB) scanUser(row interface{ Scan(...any) error }) (*model.User, error) {
	var u model.User
	err := row.Scan(
		&u.ID, &u.Username, &u.Email, &u.FirstName, &u.LastName, &u.Bio,
		&u.Role, &u.IsSuperuser, &u.ConfirmationCode, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// GetUserByID retrieves a user by internal ID.
func (db *DB) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	u, err := db.scanUser(row)
	if err != nil {
		if errIsNoRows(err) {
			return nil, apperror.NotFound("user", id)
		}
		return nil, fmt.Errorf("sqlite: getting user %s: %w", id, err)
	}
	return u, nil
}

// GetUserByUsername retrieves a user by their unique username.
func (db *DB) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE username = ?`, username)
	u, err := db.scanUser(row)
	if err != nil {
		if errIsNoRows(err) {
			return nil, apperror.NotFound("user", username)
		}
		return nil, fmt.Errorf("sqlite: getting user %s: %w", username, err)
	}
	return u, nil
}

// GetUserByEmail retrieves a user by their unique email address.
func (db *DB) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ?`, email)
	u, err := db.scanUser(row)
	if err != nil {
		if errIsNoRows(err) {
			return nil, apperror.NotFound("user", email)
		}
		return nil, fmt.Errorf("sqlite: getting user by email: %w", err)
	}
	return u, nil
}

// ListUsers returns accounts ordered by username, optionally filtered by a
// username substring search.
func (db *DB) ListUsers(ctx context.Context, opts repository.ListOptions) ([]model.User, error) {
	limit, offset := clampList(opts.Limit, opts.Offset)

	query := `SELECT ` + userColumns + ` FROM users`
	args := []any{}
	if opts.Search != "" {
		query += ` WHERE username LIKE ?`
		args = append(args, "%"+opts.Search+"%")
	}
	query += ` ORDER BY username LIMIT ? OFFSET ?`
	args = append(args, limit, offset)

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing users: %w", err)
	}
	defer rows.Close()

	users := make([]model.User, 0, limit)
	for rows.Next() {
		u, err := db.scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning user row: %w", err)
		}
		users = append(users, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating users: %w", err)
	}
	return users, nil
}

// UpdateUser saves profile fields, role, and confirmation code. The ID,
// username, and created_at are immutable.
func (db *DB) UpdateUser(ctx context.Context, user *model.User) error {
	user.UpdatedAt = time.Now().UTC()

	result, err := db.conn.ExecContext(ctx,
		`UPDATE users
		 SET email = ?, first_name = ?, last_name = ?, bio = ?, role = ?,
		     confirmation_code = ?, updated_at = ?
		 WHERE id = ?`,
		user.Email, user.FirstName, user.LastName, user.Bio, user.Role,
		user.ConfirmationCode, user.UpdatedAt, user.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict(fmt.Sprintf("email %q already in use", user.Email))
		}
		return fmt.Errorf("sqlite: updating user %s: %w", user.ID, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if affected == 0 {
		return apperror.NotFound("user", user.ID)
	}
	return nil
}

// DeleteUser removes an account by username. The user's reviews and comments
// go with it via ON DELETE CASCADE.
func (db *DB) DeleteUser(ctx context.Context, username string) error {
	result, err := db.conn.ExecContext(ctx,
		`DELETE FROM users WHERE username = ?`, username)
	if err != nil {
		return fmt.Errorf("sqlite: deleting user %s: %w", username, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if affected == 0 {
		return apperror.NotFound("user", username)
	}
	return nil
}
