package user

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupUserMock(t *testing.T) (Repository, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	repo := NewRepository(sqlxDB)

	closer := func() { sqlxDB.Close() }
	return repo, mock, closer
}

func userRows(id int, name, email, role string) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{"id", "name", "email", "password_hash", "phone", "role", "created_at", "updated_at"}).
		AddRow(id, name, email, "hash", "677001122", role, now, now)
}

func TestCreate(t *testing.T) {
	repo, mock, close := setupUserMock(t)
	defer close()

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO users (name, email, password_hash, phone, role)")).
		WithArgs("Alice", "alice@example.com", "hash", "677001122", "seeker").
		WillReturnRows(userRows(1, "Alice", "alice@example.com", "seeker"))

	user, err := repo.Create(context.Background(), "Alice", "alice@example.com", "hash", "677001122", "seeker")
	require.NoError(t, err)
	assert.Equal(t, 1, user.ID)
	assert.Equal(t, "seeker", user.Role)
}

func TestFindByEmail_NotFound(t *testing.T) {
	repo, mock, close := setupUserMock(t)
	defer close()

	mock.ExpectQuery("SELECT .* FROM users WHERE email").
		WithArgs("missing@example.com").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByEmail(context.Background(), "missing@example.com")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestFindByID(t *testing.T) {
	repo, mock, close := setupUserMock(t)
	defer close()

	mock.ExpectQuery("SELECT .* FROM users WHERE id").
		WithArgs(5).
		WillReturnRows(userRows(5, "Bob", "bob@example.com", "provider"))

	user, err := repo.FindByID(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, "bob@example.com", user.Email)
}

func TestEmailExists(t *testing.T) {
	repo, mock, close := setupUserMock(t)
	defer close()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)")).
		WithArgs("alice@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	exists, err := repo.EmailExists(context.Background(), "alice@example.com")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestUpdateRole_NotFound(t *testing.T) {
	repo, mock, close := setupUserMock(t)
	defer close()

	mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET role = $2, updated_at = NOW() WHERE id = $1")).
		WithArgs(99, "provider").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateRole(context.Background(), 99, "provider")
	assert.ErrorIs(t, err, ErrUserNotFound)
}
