package repository

import (
	"context"

	"github.com/iliyamo/auth-backend/internal/model"
)

// UserStore is durable keyed storage of user records. Implementations own
// email uniqueness and the atomicity of a single write; callers perform no
// locking of their own.
type UserStore interface {
	// Create stores draft and returns it with ID, IsActive and timestamps
	// assigned. Returns ErrDuplicateEmail if the email is taken.
	Create(ctx context.Context, draft model.User) (model.User, error)

	// FindByID returns ErrNotFound if no user has the id.
	FindByID(ctx context.Context, id uint64) (model.User, error)

	// FindByEmail matches the email exactly as stored.
	// Returns ErrNotFound if no user has the email.
	FindByEmail(ctx context.Context, email string) (model.User, error)

	// Update overwrites the mutable fields of u and refreshes UpdatedAt.
	Update(ctx context.Context, u model.User) (model.User, error)

	// Delete removes the user. Returns ErrNotFound if it did not exist.
	Delete(ctx context.Context, id uint64) error
}
