// Package repository defines the user store contract, its storage
// variants and the sentinel errors they share. Higher layers match these
// values with errors.Is to tell a missing record from a storage failure.
package repository

import "errors"

// ErrNotFound is returned when no user matches the requested id or email.
var ErrNotFound = errors.New("user not found")

// ErrDuplicateEmail is returned by Create or Update when another user
// already owns the email address. Handlers should translate this into an
// HTTP 409 response.
var ErrDuplicateEmail = errors.New("email already exists")
