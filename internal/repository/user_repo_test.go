package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"natours/internal/model"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUserRepoMock(t *testing.T) (pgxmock.PgxPoolIface, UserRepository) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock, NewUserRepository(mock)
}

func userRows() *pgxmock.Rows {
	return pgxmock.NewRows([]string{
		"id", "name", "email", "photo", "role", "password_hash",
		"password_changed_at", "password_reset_token", "password_reset_expires",
		"active", "created_at",
	})
}

func TestUserRepository_Create(t *testing.T) {
	mock, repo := newUserRepoMock(t)

	user := &model.User{
		Name: "Test User", Email: "test@example.com", Photo: "default.jpg",
		Role: model.RoleUser, PasswordHash: "hashed", CreatedAt: time.Now(),
	}

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO users")).
		WithArgs(user.Name, user.Email, user.Photo, user.Role, user.PasswordHash, user.CreatedAt).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(1))

	require.NoError(t, repo.Create(context.Background(), user))
	assert.Equal(t, 1, user.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_Create_DuplicateEmail(t *testing.T) {
	mock, repo := newUserRepoMock(t)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO users")).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(&pgconn.PgError{Code: pgerrcode.UniqueViolation})

	err := repo.Create(context.Background(), &model.User{Email: "dup@example.com"})
	assert.ErrorIs(t, err, ErrDuplicate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_FindByEmail_FiltersInactive(t *testing.T) {
	mock, repo := newUserRepoMock(t)

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE email = $1 AND active = TRUE")).
		WithArgs("test@example.com").
		WillReturnRows(userRows().AddRow(
			1, "Test User", "test@example.com", "default.jpg", model.RoleUser, "hashed",
			nil, nil, nil, true, now,
		))

	user, err := repo.FindByEmail(context.Background(), "test@example.com")

	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, 1, user.ID)
	assert.Nil(t, user.PasswordChangedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_FindByEmail_NotFound(t *testing.T) {
	mock, repo := newUserRepoMock(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE email = $1 AND active = TRUE")).
		WithArgs("nobody@example.com").
		WillReturnRows(userRows())

	user, err := repo.FindByEmail(context.Background(), "nobody@example.com")

	require.NoError(t, err)
	assert.Nil(t, user)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_FindByResetToken_RequiresUnexpired(t *testing.T) {
	mock, repo := newUserRepoMock(t)

	mock.ExpectQuery(regexp.QuoteMeta("password_reset_token = $1 AND password_reset_expires > NOW() AND active = TRUE")).
		WithArgs("hashedtoken").
		WillReturnRows(userRows())

	user, err := repo.FindByResetToken(context.Background(), "hashedtoken")

	require.NoError(t, err)
	assert.Nil(t, user)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_UpdateProfile_PatchesOnlyGivenFields(t *testing.T) {
	mock, repo := newUserRepoMock(t)

	name := "New Name"
	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("UPDATE users SET")).
		WithArgs(1, &name, (*string)(nil), (*string)(nil), (*string)(nil)).
		WillReturnRows(userRows().AddRow(
			1, "New Name", "test@example.com", "default.jpg", model.RoleUser, "hashed",
			nil, nil, nil, true, now,
		))

	user, err := repo.UpdateProfile(context.Background(), 1, &name, nil, nil, nil)

	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "New Name", user.Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_UpdatePassword_ClearsResetToken(t *testing.T) {
	mock, repo := newUserRepoMock(t)

	changedAt := time.Now()
	mock.ExpectExec(regexp.QuoteMeta("password_reset_token = NULL, password_reset_expires = NULL")).
		WithArgs(1, "newhash", changedAt).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := repo.UpdatePassword(context.Background(), 1, "newhash", changedAt)

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_UpdatePassword_NoSuchUser(t *testing.T) {
	mock, repo := newUserRepoMock(t)

	changedAt := time.Now()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET password_hash")).
		WithArgs(99, "newhash", changedAt).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := repo.UpdatePassword(context.Background(), 99, "newhash", changedAt)

	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_SoftDelete(t *testing.T) {
	mock, repo := newUserRepoMock(t)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET active = FALSE WHERE id = $1")).
		WithArgs(1).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	assert.NoError(t, repo.SoftDelete(context.Background(), 1))
	assert.NoError(t, mock.ExpectationsWereMet())
}
