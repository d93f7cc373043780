package utils // package utils provides password hashing and token signing

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/iliyamo/auth-backend/internal/model"
)

var (
	// ErrInvalidToken covers bad signatures, malformed tokens, expired tokens
	// and unknown token types alike.
	ErrInvalidToken = errors.New("invalid token")

	// ErrUnsupportedAlgorithm is returned by NewTokenCodec for anything
	// outside the HMAC family.
	ErrUnsupportedAlgorithm = errors.New("unsupported signing algorithm")
)

// tokenClaims is the JWT body: the standard claims plus the token type.
type tokenClaims struct {
	Type model.TokenType `json:"type"`
	jwt.RegisteredClaims
}

// TokenCodec signs and verifies stateless access and refresh tokens with a
// shared secret. TTLs are supplied per call by the caller.
type TokenCodec struct {
	secret []byte
	method jwt.SigningMethod
	now    func() time.Time
}

// CodecOption customises a TokenCodec.
type CodecOption func(*TokenCodec)

// WithClock replaces time.Now for issuance and expiry checks.
func WithClock(now func() time.Time) CodecOption {
	return func(c *TokenCodec) { c.now = now }
}

// NewTokenCodec builds a codec for an HMAC algorithm (HS256, HS384, HS512).
func NewTokenCodec(secret, algorithm string, opts ...CodecOption) (*TokenCodec, error) {
	if secret == "" {
		return nil, errors.New("token secret is empty")
	}
	method, ok := jwt.GetSigningMethod(strings.ToUpper(algorithm)).(*jwt.SigningMethodHMAC)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedAlgorithm, algorithm)
	}
	c := &TokenCodec{
		secret: []byte(secret),
		method: method,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Issue signs a token for userID of the given type that expires ttl from now.
// Every token carries a random jti so two tokens issued in the same second
// never collide.
func (c *TokenCodec) Issue(userID string, typ model.TokenType, ttl time.Duration) (string, error) {
	if !typ.Valid() {
		return "", fmt.Errorf("unknown token type %q", typ)
	}
	now := c.now().UTC()
	claims := tokenClaims{
		Type: typ,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
	}
	return jwt.NewWithClaims(c.method, claims).SignedString(c.secret)
}

// Decode verifies the signature and expiry of token and returns its payload.
// Every failure wraps ErrInvalidToken; the cause is kept for logging only.
func (c *TokenCodec) Decode(token string) (model.TokenPayload, error) {
	claims := &tokenClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return c.secret, nil
	},
		jwt.WithValidMethods([]string{c.method.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		return model.TokenPayload{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Subject == "" || !claims.Type.Valid() {
		return model.TokenPayload{}, fmt.Errorf("%w: missing subject or type", ErrInvalidToken)
	}
	return model.TokenPayload{
		Subject:   claims.Subject,
		Type:      claims.Type,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}
