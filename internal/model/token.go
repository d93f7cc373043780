package model

import "time"

// TokenType distinguishes access tokens from refresh tokens. A token's type
// is fixed at issuance and checked at every use.
type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)

// Valid reports whether t is one of the known token types.
func (t TokenType) Valid() bool {
	return t == TokenTypeAccess || t == TokenTypeRefresh
}

// TokenPayload is the decoded content of a signed token. It is never
// persisted; validity is decided by signature and ExpiresAt alone.
type TokenPayload struct {
	Subject   string
	Type      TokenType
	ExpiresAt time.Time
}

// TokenPair is returned by register, login and refresh.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}
