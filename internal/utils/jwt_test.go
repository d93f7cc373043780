package utils

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/auth-backend/internal/model"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestTokenCodec_RoundTrip(t *testing.T) {
	codec, err := NewTokenCodec("super-secret", "HS256")
	require.NoError(t, err)

	for _, typ := range []model.TokenType{model.TokenTypeAccess, model.TokenTypeRefresh} {
		t.Run(string(typ), func(t *testing.T) {
			tok, err := codec.Issue("42", typ, time.Hour)
			require.NoError(t, err)

			payload, err := codec.Decode(tok)
			require.NoError(t, err)
			assert.Equal(t, "42", payload.Subject)
			assert.Equal(t, typ, payload.Type)
			assert.WithinDuration(t, time.Now().Add(time.Hour), payload.ExpiresAt, 2*time.Second)
		})
	}
}

func TestTokenCodec_TokensAreUnique(t *testing.T) {
	codec, err := NewTokenCodec("k", "HS512")
	require.NoError(t, err)

	a, err := codec.Issue("1", model.TokenTypeAccess, time.Minute)
	require.NoError(t, err)
	b, err := codec.Issue("1", model.TokenTypeAccess, time.Minute)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestTokenCodec_Expired(t *testing.T) {
	issuedAt := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	issuer, err := NewTokenCodec("secret", "HS256", WithClock(fixedClock(issuedAt)))
	require.NoError(t, err)
	tok, err := issuer.Issue("7", model.TokenTypeAccess, time.Minute)
	require.NoError(t, err)

	later, err := NewTokenCodec("secret", "HS256", WithClock(fixedClock(issuedAt.Add(2*time.Minute))))
	require.NoError(t, err)
	_, err = later.Decode(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)

	// Same codec, still inside the window.
	_, err = issuer.Decode(tok)
	assert.NoError(t, err)
}

func TestTokenCodec_DecodeFailures(t *testing.T) {
	codec, err := NewTokenCodec("right-secret", "HS256")
	require.NoError(t, err)

	other, err := NewTokenCodec("wrong-secret", "HS256")
	require.NoError(t, err)
	foreign, err := other.Issue("1", model.TokenTypeAccess, time.Hour)
	require.NoError(t, err)

	hs512, err := NewTokenCodec("right-secret", "HS512")
	require.NoError(t, err)
	otherAlg, err := hs512.Issue("1", model.TokenTypeAccess, time.Hour)
	require.NoError(t, err)

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"sub":  "1",
		"type": "access",
		"exp":  time.Now().Add(time.Hour).Unix(),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	noType, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "1",
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("right-secret"))
	require.NoError(t, err)

	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  "1",
		"type": "access",
	}).SignedString([]byte("right-secret"))
	require.NoError(t, err)

	valid, err := codec.Issue("1", model.TokenTypeAccess, time.Hour)
	require.NoError(t, err)
	tampered := valid[:len(valid)-2] + flip(valid[len(valid)-2:])

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"garbage", "not.a.jwt"},
		{"wrong secret", foreign},
		{"other algorithm", otherAlg},
		{"alg none", unsigned},
		{"missing type", noType},
		{"missing expiry", noExpiry},
		{"tampered signature", tampered},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := codec.Decode(tt.token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestNewTokenCodec_Validation(t *testing.T) {
	_, err := NewTokenCodec("", "HS256")
	assert.Error(t, err)

	for _, alg := range []string{"RS256", "none", "ES256", "bogus"} {
		_, err := NewTokenCodec("k", alg)
		assert.ErrorIs(t, err, ErrUnsupportedAlgorithm, alg)
	}

	_, err = NewTokenCodec("k", "hs384")
	assert.NoError(t, err)
}

func TestTokenCodec_IssueUnknownType(t *testing.T) {
	codec, err := NewTokenCodec("k", "HS256")
	require.NoError(t, err)
	_, err = codec.Issue("1", model.TokenType("session"), time.Minute)
	assert.Error(t, err)
}

// flip swaps the case of letters so the signature no longer matches.
func flip(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z':
			b.WriteRune(r - 32)
		case r >= 'A' && r <= 'Z':
			b.WriteRune(r + 32)
		default:
			if r == '0' {
				b.WriteRune('1')
			} else {
				b.WriteRune('0')
			}
		}
	}
	return b.String()
}
