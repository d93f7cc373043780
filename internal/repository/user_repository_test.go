package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/auth-backend/internal/model"
)

const (
	qInsert  = `(?s)^INSERT\s+INTO\s+users\s*\(email,\s*hashed_password,\s*first_name,\s*last_name,\s*is_active\)\s*VALUES\s*\(\?,\?,\?,\?,\?\)$`
	qByID    = `(?s)^SELECT\s+id,email,hashed_password,first_name,last_name,is_active,created_at,updated_at\s+FROM\s+users\s+WHERE\s+id=\?\s+LIMIT\s+1$`
	qByEmail = `(?s)^SELECT\s+id,email,hashed_password,first_name,last_name,is_active,created_at,updated_at\s+FROM\s+users\s+WHERE\s+email=\?\s+LIMIT\s+1$`
	qUpdate  = `(?s)^UPDATE\s+users\s+SET\s+email=\?.*WHERE\s+id=\?$`
	qDelete  = `(?s)^DELETE\s+FROM\s+users\s+WHERE\s+id=\?$`
)

var userCols = []string{"id", "email", "hashed_password", "first_name", "last_name", "is_active", "created_at", "updated_at"}

func newRepoWithMock(t *testing.T) (*UserRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewUserRepo(db), mock
}

func TestUserRepo_Create(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	mock.ExpectExec(qInsert).
		WithArgs("ada@example.com", "digest", "Ada", "Lovelace", true).
		WillReturnResult(sqlmock.NewResult(7, 1))
	mock.ExpectQuery(qByID).
		WithArgs(uint64(7)).
		WillReturnRows(sqlmock.NewRows(userCols).
			AddRow(7, "ada@example.com", "digest", "Ada", "Lovelace", true, now, now))

	got, err := repo.Create(context.Background(), model.User{
		Email: "ada@example.com", HashedPassword: "digest", FirstName: "Ada", LastName: "Lovelace",
	})
	require.NoError(t, err)
	assert.Equal(t, uint64(7), got.ID)
	assert.True(t, got.IsActive)
	assert.Equal(t, now, got.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepo_Create_Duplicate(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectExec(qInsert).
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'ada@example.com'"})

	_, err := repo.Create(context.Background(), model.User{Email: "ada@example.com"})
	assert.ErrorIs(t, err, ErrDuplicateEmail)
}

func TestUserRepo_Create_DBError(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectExec(qInsert).WillReturnError(errors.New("db down"))

	_, err := repo.Create(context.Background(), model.User{Email: "ada@example.com"})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrDuplicateEmail)
	assert.Contains(t, err.Error(), "db down")
}

func TestUserRepo_FindByEmail(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	now := time.Now().UTC()

	mock.ExpectQuery(qByEmail).
		WithArgs("ada@example.com").
		WillReturnRows(sqlmock.NewRows(userCols).
			AddRow(3, "ada@example.com", "digest", "Ada", "Lovelace", false, now, now))

	got, err := repo.FindByEmail(context.Background(), "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, uint64(3), got.ID)
	assert.False(t, got.IsActive)
	assert.Equal(t, "digest", got.HashedPassword)
}

func TestUserRepo_FindNotFound(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(qByEmail).WithArgs("nobody@example.com").WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery(qByID).WithArgs(uint64(99)).WillReturnRows(sqlmock.NewRows(userCols))

	_, err := repo.FindByEmail(context.Background(), "nobody@example.com")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = repo.FindByID(context.Background(), 99)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUserRepo_Update(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	now := time.Now().UTC()

	mock.ExpectExec(qUpdate).
		WithArgs("ada@example.com", "digest", "Ada", "Lovelace", false, uint64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(qByID).
		WithArgs(uint64(3)).
		WillReturnRows(sqlmock.NewRows(userCols).
			AddRow(3, "ada@example.com", "digest", "Ada", "Lovelace", false, now, now))

	got, err := repo.Update(context.Background(), model.User{
		ID: 3, Email: "ada@example.com", HashedPassword: "digest", FirstName: "Ada", LastName: "Lovelace",
	})
	require.NoError(t, err)
	assert.False(t, got.IsActive)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepo_Update_Missing(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectExec(qUpdate).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(qByID).WithArgs(uint64(5)).WillReturnRows(sqlmock.NewRows(userCols))

	_, err := repo.Update(context.Background(), model.User{ID: 5})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUserRepo_Delete(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectExec(qDelete).WithArgs(uint64(3)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(qDelete).WithArgs(uint64(4)).WillReturnResult(sqlmock.NewResult(0, 0))

	assert.NoError(t, repo.Delete(context.Background(), 3))
	assert.ErrorIs(t, repo.Delete(context.Background(), 4), ErrNotFound)
}
