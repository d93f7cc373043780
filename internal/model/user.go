package model

import "time"

// User represents a registered identity as stored in the `users` table.
// ID is assigned by the store on creation and never changes; it is the
// only value embedded in issued tokens.
//
// Fields:
//
//	ID             - primary key identifier of the user.
//	Email          - unique login key, compared case-sensitively as stored.
//	HashedPassword - bcrypt digest; never the plaintext, never serialised.
//	FirstName      - first word of the full name given at registration.
//	LastName       - second word of the full name given at registration.
//	IsActive       - login and refresh require this to be true.
//	CreatedAt      - timestamp of creation.
//	UpdatedAt      - timestamp of the last mutation.
type User struct {
	ID             uint64    `json:"id"`
	Email          string    `json:"email"`
	HashedPassword string    `json:"-"`
	FirstName      string    `json:"first_name"`
	LastName       string    `json:"last_name"`
	IsActive       bool      `json:"is_active"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
