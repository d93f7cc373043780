package service

import "errors"

// Error kinds returned by AuthService. Callers match them with errors.Is;
// the transport layer decides how each kind is presented.
var (
	// ErrInvalidInput reports malformed registration fields. It may be
	// wrapped with a field-specific message.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUserAlreadyExists reports a registration for a taken email.
	ErrUserAlreadyExists = errors.New("user already exists")

	// ErrInvalidCredentials covers an unknown email, a wrong password and
	// an inactive account. The three are deliberately indistinguishable.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrInvalidToken covers bad signatures, malformed or expired tokens
	// and tokens of the wrong type.
	ErrInvalidToken = errors.New("invalid token")

	// ErrUserNotFound reports an access token whose subject no longer
	// resolves to a user.
	ErrUserNotFound = errors.New("user not found")
)
