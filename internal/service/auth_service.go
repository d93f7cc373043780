// Package service contains the authentication core: registration, login,
// token refresh and access-token identity resolution, composed from a
// password hasher, a token codec and a user store.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/auth-backend/internal/config"
	"github.com/iliyamo/auth-backend/internal/logging"
	"github.com/iliyamo/auth-backend/internal/model"
	"github.com/iliyamo/auth-backend/internal/queue"
	"github.com/iliyamo/auth-backend/internal/repository"
	"github.com/iliyamo/auth-backend/internal/utils"
)

// fullNamePattern accepts exactly two alphabetic words.
var fullNamePattern = regexp.MustCompile(`^[A-Za-z]+\s+[A-Za-z]+$`)

// PasswordHasher hashes and checks passwords.
type PasswordHasher interface {
	Hash(plain string) (string, error)
	Verify(plain, digest string) bool
}

// TokenCodec mints and parses signed tokens.
type TokenCodec interface {
	Issue(userID string, typ model.TokenType, ttl time.Duration) (string, error)
	Decode(token string) (model.TokenPayload, error)
}

// EventPublisher delivers auth events. Failures never fail the operation
// that produced the event.
type EventPublisher interface {
	Publish(ctx context.Context, ev queue.AuthEvent) error
}

// AuthService orchestrates the user store, hasher and codec. It keeps no
// state between calls and is safe for concurrent use.
type AuthService struct {
	users      repository.UserStore
	hasher     PasswordHasher
	codec      TokenCodec
	events     EventPublisher
	log        *slog.Logger
	accessTTL  time.Duration
	refreshTTL time.Duration

	dummyOnce   sync.Once
	dummyDigest string
}

// NewAuthService wires the service. events and log may be nil.
func NewAuthService(cfg config.JWTConfig, users repository.UserStore, hasher PasswordHasher, codec TokenCodec,
	events EventPublisher, log *slog.Logger) *AuthService {
	if log == nil {
		log = logging.Discard()
	}
	return &AuthService{
		users:      users,
		hasher:     hasher,
		codec:      codec,
		events:     events,
		log:        log,
		accessTTL:  cfg.AccessTTL,
		refreshTTL: cfg.RefreshTTL,
	}
}

// Register creates a user and returns a fresh token pair for it.
func (s *AuthService) Register(ctx context.Context, email, password, fullName string) (model.TokenPair, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return model.TokenPair{}, fmt.Errorf("%w: email is required", ErrInvalidInput)
	}

	_, err := s.users.FindByEmail(ctx, email)
	switch {
	case err == nil:
		return model.TokenPair{}, ErrUserAlreadyExists
	case !errors.Is(err, repository.ErrNotFound):
		return model.TokenPair{}, fmt.Errorf("lookup user: %w", err)
	}

	first, last, err := splitFullName(fullName)
	if err != nil {
		return model.TokenPair{}, err
	}
	if err := validatePassword(password); err != nil {
		return model.TokenPair{}, err
	}

	digest, err := s.hasher.Hash(password)
	if err != nil {
		return model.TokenPair{}, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.users.Create(ctx, model.User{
		Email:          email,
		HashedPassword: digest,
		FirstName:      first,
		LastName:       last,
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			// lost a race with a concurrent registration
			return model.TokenPair{}, ErrUserAlreadyExists
		}
		return model.TokenPair{}, fmt.Errorf("create user: %w", err)
	}

	pair, err := s.issuePair(ctx, user.ID)
	if err != nil {
		return model.TokenPair{}, err
	}
	s.log.InfoContext(ctx, "user registered", "user_id", user.ID)
	s.publish(ctx, queue.EventUserRegistered, user)
	return pair, nil
}

// Login checks credentials and returns a fresh token pair.
func (s *AuthService) Login(ctx context.Context, email, password string) (model.TokenPair, error) {
	user, err := s.users.FindByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			return model.TokenPair{}, fmt.Errorf("lookup user: %w", err)
		}
		// Spend the same bcrypt time as a real check.
		s.hasher.Verify(password, s.dummy())
		s.log.DebugContext(ctx, "login rejected", "reason", "unknown email")
		return model.TokenPair{}, ErrInvalidCredentials
	}
	if !user.IsActive {
		s.log.InfoContext(ctx, "login rejected", "reason", "inactive account", "user_id", user.ID)
		return model.TokenPair{}, ErrInvalidCredentials
	}
	if !s.hasher.Verify(password, user.HashedPassword) {
		s.log.InfoContext(ctx, "login rejected", "reason", "password mismatch", "user_id", user.ID)
		return model.TokenPair{}, ErrInvalidCredentials
	}

	pair, err := s.issuePair(ctx, user.ID)
	if err != nil {
		return model.TokenPair{}, err
	}
	s.publish(ctx, queue.EventUserLoggedIn, user)
	return pair, nil
}

// ResolveIdentity returns the user an access token belongs to. It does not
// look at IsActive: a user deactivated mid-session keeps access until the
// access token expires.
func (s *AuthService) ResolveIdentity(ctx context.Context, accessToken string) (model.User, error) {
	id, err := s.subject(ctx, accessToken, model.TokenTypeAccess)
	if err != nil {
		return model.User{}, err
	}
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.User{}, ErrUserNotFound
		}
		return model.User{}, fmt.Errorf("lookup user: %w", err)
	}
	return user, nil
}

// Refresh exchanges a refresh token for a new token pair. The presented
// token is not invalidated; tokens are stateless.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (model.TokenPair, error) {
	id, err := s.subject(ctx, refreshToken, model.TokenTypeRefresh)
	if err != nil {
		return model.TokenPair{}, err
	}
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			return model.TokenPair{}, fmt.Errorf("lookup user: %w", err)
		}
		s.log.InfoContext(ctx, "refresh rejected", "reason", "user gone", "user_id", id)
		return model.TokenPair{}, ErrInvalidCredentials
	}
	if !user.IsActive {
		s.log.InfoContext(ctx, "refresh rejected", "reason", "inactive account", "user_id", id)
		return model.TokenPair{}, ErrInvalidCredentials
	}
	return s.issuePair(ctx, user.ID)
}

// Deactivate clears IsActive. Login and refresh fail for the user from
// then on.
func (s *AuthService) Deactivate(ctx context.Context, id uint64) (model.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.User{}, ErrUserNotFound
		}
		return model.User{}, fmt.Errorf("lookup user: %w", err)
	}
	user.IsActive = false
	updated, err := s.users.Update(ctx, user)
	if err != nil {
		return model.User{}, fmt.Errorf("update user: %w", err)
	}
	s.log.InfoContext(ctx, "user deactivated", "user_id", id)
	return updated, nil
}

// subject decodes token, checks its type and returns the user id.
func (s *AuthService) subject(ctx context.Context, token string, want model.TokenType) (uint64, error) {
	payload, err := s.codec.Decode(token)
	if err != nil {
		s.log.DebugContext(ctx, "token rejected", "reason", err.Error())
		return 0, ErrInvalidToken
	}
	if payload.Type != want {
		s.log.DebugContext(ctx, "token rejected", "reason", "wrong type", "got", payload.Type, "want", want)
		return 0, ErrInvalidToken
	}
	id, err := strconv.ParseUint(payload.Subject, 10, 64)
	if err != nil {
		s.log.DebugContext(ctx, "token rejected", "reason", "bad subject")
		return 0, ErrInvalidToken
	}
	return id, nil
}

func (s *AuthService) issuePair(ctx context.Context, id uint64) (model.TokenPair, error) {
	// A caller that gave up gets no tokens.
	if err := ctx.Err(); err != nil {
		return model.TokenPair{}, err
	}
	sub := strconv.FormatUint(id, 10)
	access, err := s.codec.Issue(sub, model.TokenTypeAccess, s.accessTTL)
	if err != nil {
		return model.TokenPair{}, fmt.Errorf("issue access token: %w", err)
	}
	refresh, err := s.codec.Issue(sub, model.TokenTypeRefresh, s.refreshTTL)
	if err != nil {
		return model.TokenPair{}, fmt.Errorf("issue refresh token: %w", err)
	}
	return model.TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func (s *AuthService) publish(ctx context.Context, typ string, u model.User) {
	if s.events == nil {
		return
	}
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 3*time.Second)
	defer cancel()
	ev := queue.AuthEvent{
		ID:         uuid.NewString(),
		Type:       typ,
		UserID:     u.ID,
		Email:      u.Email,
		OccurredAt: time.Now().UTC(),
	}
	if err := s.events.Publish(pubCtx, ev); err != nil {
		s.log.WarnContext(ctx, "publish auth event failed", "type", typ, "error", err)
	}
}

// dummy returns a digest used to keep unknown-email logins as slow as
// real ones.
func (s *AuthService) dummy() string {
	s.dummyOnce.Do(func() {
		s.dummyDigest, _ = s.hasher.Hash(uuid.NewString())
	})
	return s.dummyDigest
}

// splitFullName accepts exactly two alphabetic words: no hyphens,
// apostrophes, digits or middle names.
func splitFullName(fullName string) (string, string, error) {
	name := strings.TrimSpace(fullName)
	if !fullNamePattern.MatchString(name) {
		return "", "", fmt.Errorf("%w: full_name must consist of exactly two words containing only letters", ErrInvalidInput)
	}
	parts := strings.Fields(name)
	return parts[0], parts[1], nil
}

func validatePassword(password string) error {
	if password == "" {
		return fmt.Errorf("%w: password is required", ErrInvalidInput)
	}
	if len(password) > utils.MaxPasswordBytes {
		return fmt.Errorf("%w: password must be at most %d bytes", ErrInvalidInput, utils.MaxPasswordBytes)
	}
	return nil
}
