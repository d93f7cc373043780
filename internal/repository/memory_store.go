package repository

import (
	"context"
	"sync"
	"time"

	"github.com/iliyamo/auth-backend/internal/model"
)

// MemoryStore is an in-process UserStore used in dev mode and tests. It
// enforces the same email uniqueness as the MySQL schema.
type MemoryStore struct {
	mu      sync.RWMutex
	users   map[uint64]model.User
	byEmail map[string]uint64
	nextID  uint64
	now     func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:   make(map[uint64]model.User),
		byEmail: make(map[string]uint64),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (s *MemoryStore) Create(ctx context.Context, draft model.User) (model.User, error) {
	if err := ctx.Err(); err != nil {
		return model.User{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byEmail[draft.Email]; ok {
		return model.User{}, ErrDuplicateEmail
	}
	s.nextID++
	now := s.now()
	u := draft
	u.ID = s.nextID
	u.IsActive = true
	u.CreatedAt = now
	u.UpdatedAt = now
	s.users[u.ID] = u
	s.byEmail[u.Email] = u.ID
	return u, nil
}

func (s *MemoryStore) FindByID(ctx context.Context, id uint64) (model.User, error) {
	if err := ctx.Err(); err != nil {
		return model.User{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return model.User{}, ErrNotFound
	}
	return u, nil
}

func (s *MemoryStore) FindByEmail(ctx context.Context, email string) (model.User, error) {
	if err := ctx.Err(); err != nil {
		return model.User{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byEmail[email]
	if !ok {
		return model.User{}, ErrNotFound
	}
	return s.users[id], nil
}

func (s *MemoryStore) Update(ctx context.Context, u model.User) (model.User, error) {
	if err := ctx.Err(); err != nil {
		return model.User{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	prev, ok := s.users[u.ID]
	if !ok {
		return model.User{}, ErrNotFound
	}
	if owner, taken := s.byEmail[u.Email]; taken && owner != u.ID {
		return model.User{}, ErrDuplicateEmail
	}
	// id and created_at are owned by the store
	u.CreatedAt = prev.CreatedAt
	u.UpdatedAt = s.now()
	delete(s.byEmail, prev.Email)
	s.byEmail[u.Email] = u.ID
	s.users[u.ID] = u
	return u, nil
}

func (s *MemoryStore) Delete(ctx context.Context, id uint64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return ErrNotFound
	}
	delete(s.byEmail, u.Email)
	delete(s.users, id)
	return nil
}
