package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"

	"github.com/iliyamo/auth-backend/internal/model"
)

// mysqlDuplicateEntry is the MySQL error number for a unique key violation.
const mysqlDuplicateEntry = 1062

const userColumns = "id,email,hashed_password,first_name,last_name,is_active,created_at,updated_at"

// UserRepo is the MySQL backed UserStore.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

// Create inserts the user and reads it back so the caller sees the
// timestamps assigned by the database.
func (r *UserRepo) Create(ctx context.Context, draft model.User) (model.User, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (email, hashed_password, first_name, last_name, is_active) VALUES (?,?,?,?,?)",
		draft.Email, draft.HashedPassword, draft.FirstName, draft.LastName, true)
	if err != nil {
		if isDuplicate(err) {
			return model.User{}, ErrDuplicateEmail
		}
		return model.User{}, fmt.Errorf("insert user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.User{}, fmt.Errorf("insert user: %w", err)
	}
	return r.FindByID(ctx, uint64(id))
}

// FindByID fetches a user by id.
func (r *UserRepo) FindByID(ctx context.Context, id uint64) (model.User, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id)
	return scanUser(row)
}

// FindByEmail fetches a user by email exactly as stored.
func (r *UserRepo) FindByEmail(ctx context.Context, email string) (model.User, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email=? LIMIT 1", email)
	return scanUser(row)
}

// Update writes every mutable column and bumps updated_at.
func (r *UserRepo) Update(ctx context.Context, u model.User) (model.User, error) {
	_, err := r.DB.ExecContext(ctx,
		`UPDATE users SET email=?, hashed_password=?, first_name=?, last_name=?, is_active=?, updated_at=UTC_TIMESTAMP(6)
		 WHERE id=?`,
		u.Email, u.HashedPassword, u.FirstName, u.LastName, u.IsActive, u.ID)
	if err != nil {
		if isDuplicate(err) {
			return model.User{}, ErrDuplicateEmail
		}
		return model.User{}, fmt.Errorf("update user: %w", err)
	}
	// MySQL reports zero affected rows for unchanged values, so existence
	// is checked by reading the row back.
	return r.FindByID(ctx, u.ID)
}

// Delete removes a user row.
func (r *UserRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM users WHERE id=?", id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func scanUser(row *sql.Row) (model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.Email, &u.HashedPassword, &u.FirstName, &u.LastName,
		&u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.User{}, ErrNotFound
		}
		return model.User{}, fmt.Errorf("query user: %w", err)
	}
	return u, nil
}

func isDuplicate(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == mysqlDuplicateEntry
}
