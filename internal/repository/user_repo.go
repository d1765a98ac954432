package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"natours/internal/model"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrDuplicate is returned when an insert or update violates a unique
// constraint (duplicate email, duplicate (tour, user) review).
var ErrDuplicate = errors.New("duplicate key")

// isUniqueViolation translates pgx driver errors into ErrDuplicate
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}

const userColumns = `id, name, email, photo, role, password_hash, password_changed_at,
            password_reset_token, password_reset_expires, active, created_at`

// UserRepository defines operations for user data. Every read excludes
// soft-deleted users; the filter is part of the query construction, not a
// hidden lifecycle hook.
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByID(ctx context.Context, id int) (*model.User, error)
	FindByResetToken(ctx context.Context, hashedToken string) (*model.User, error)
	FindAll(ctx context.Context) ([]model.User, error)
	UpdateProfile(ctx context.Context, id int, name, email, photo *string, role *string) (*model.User, error)
	UpdatePassword(ctx context.Context, id int, passwordHash string, changedAt time.Time) error
	SetResetToken(ctx context.Context, id int, hashedToken string, expires time.Time) error
	ClearResetToken(ctx context.Context, id int) error
	SoftDelete(ctx context.Context, id int) error
	Delete(ctx context.Context, id int) error
}

type userRepository struct {
	db DBTX
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db DBTX) UserRepository {
	return &userRepository{db: db}
}

func scanUser(row pgx.Row) (*model.User, error) {
	user := &model.User{}
	err := row.Scan(&user.ID, &user.Name, &user.Email, &user.Photo, &user.Role,
		&user.PasswordHash, &user.PasswordChangedAt, &user.PasswordResetToken,
		&user.PasswordResetExpires, &user.Active, &user.CreatedAt)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// Create inserts a new user into the database
func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	sql := `INSERT INTO users (name, email, photo, role, password_hash, created_at)
            VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`
	err := r.db.QueryRow(ctx, sql, user.Name, user.Email, user.Photo, user.Role,
		user.PasswordHash, user.CreatedAt).Scan(&user.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// FindByEmail retrieves an active user by email
func (r *userRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	sql := `SELECT ` + userColumns + ` FROM users WHERE email = $1 AND active = TRUE`
	user, err := scanUser(r.db.QueryRow(ctx, sql, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // User not found is not an error for this method's contract, service layer handles it
		}
		return nil, fmt.Errorf("failed to find user by email: %w", err)
	}
	return user, nil
}

// FindByID retrieves an active user by their ID
func (r *userRepository) FindByID(ctx context.Context, id int) (*model.User, error) {
	sql := `SELECT ` + userColumns + ` FROM users WHERE id = $1 AND active = TRUE`
	user, err := scanUser(r.db.QueryRow(ctx, sql, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // User not found
		}
		return nil, fmt.Errorf("failed to find user by ID: %w", err)
	}
	return user, nil
}

// FindByResetToken retrieves the user holding a non-expired reset token
func (r *userRepository) FindByResetToken(ctx context.Context, hashedToken string) (*model.User, error) {
	sql := `SELECT ` + userColumns + ` FROM users
            WHERE password_reset_token = $1 AND password_reset_expires > NOW() AND active = TRUE`
	user, err := scanUser(r.db.QueryRow(ctx, sql, hashedToken))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find user by reset token: %w", err)
	}
	return user, nil
}

// FindAll lists every active user
func (r *userRepository) FindAll(ctx context.Context) ([]model.User, error) {
	sql := `SELECT ` + userColumns + ` FROM users WHERE active = TRUE ORDER BY id`
	rows, err := r.db.Query(ctx, sql)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, *user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate users: %w", err)
	}
	return users, nil
}

// UpdateProfile patches the given profile fields and returns the updated
// row. Nil fields are left untouched; the password is never writable here.
func (r *userRepository) UpdateProfile(ctx context.Context, id int, name, email, photo *string, role *string) (*model.User, error) {
	sql := `UPDATE users SET
              name  = COALESCE($2, name),
              email = COALESCE($3, email),
              photo = COALESCE($4, photo),
              role  = COALESCE($5, role)
            WHERE id = $1 AND active = TRUE
            RETURNING ` + userColumns
	user, err := scanUser(r.db.QueryRow(ctx, sql, id, name, email, photo, role))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		if isUniqueViolation(err) {
			return nil, ErrDuplicate
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return user, nil
}

// UpdatePassword replaces the stored hash and records the change time
func (r *userRepository) UpdatePassword(ctx context.Context, id int, passwordHash string, changedAt time.Time) error {
	sql := `UPDATE users SET password_hash = $2, password_changed_at = $3,
              password_reset_token = NULL, password_reset_expires = NULL
            WHERE id = $1`
	tag, err := r.db.Exec(ctx, sql, id, passwordHash, changedAt)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("failed to update password: no such user %d", id)
	}
	return nil
}

// SetResetToken stores the hashed reset token and its expiry
func (r *userRepository) SetResetToken(ctx context.Context, id int, hashedToken string, expires time.Time) error {
	sql := `UPDATE users SET password_reset_token = $2, password_reset_expires = $3 WHERE id = $1`
	if _, err := r.db.Exec(ctx, sql, id, hashedToken, expires); err != nil {
		return fmt.Errorf("failed to set reset token: %w", err)
	}
	return nil
}

// ClearResetToken removes any pending reset token, used both after a
// successful reset and to roll back when delivery fails
func (r *userRepository) ClearResetToken(ctx context.Context, id int) error {
	sql := `UPDATE users SET password_reset_token = NULL, password_reset_expires = NULL WHERE id = $1`
	if _, err := r.db.Exec(ctx, sql, id); err != nil {
		return fmt.Errorf("failed to clear reset token: %w", err)
	}
	return nil
}

// SoftDelete marks the user inactive; the row stays behind but default
// reads no longer see it
func (r *userRepository) SoftDelete(ctx context.Context, id int) error {
	sql := `UPDATE users SET active = FALSE WHERE id = $1`
	if _, err := r.db.Exec(ctx, sql, id); err != nil {
		return fmt.Errorf("failed to soft-delete user: %w", err)
	}
	return nil
}

// Delete removes the user row entirely (admin only)
func (r *userRepository) Delete(ctx context.Context, id int) error {
	sql := `DELETE FROM users WHERE id = $1`
	if _, err := r.db.Exec(ctx, sql, id); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}
