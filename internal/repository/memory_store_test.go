package repository

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/auth-backend/internal/model"
)

func TestMemoryStore_Lifecycle(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	created, err := s.Create(ctx, model.User{Email: "ada@example.com", FirstName: "Ada", LastName: "Lovelace"})
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.True(t, created.IsActive)
	assert.False(t, created.CreatedAt.IsZero())

	byEmail, err := s.FindByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, created, byEmail)

	_, err = s.FindByEmail(ctx, "ADA@example.com")
	assert.ErrorIs(t, err, ErrNotFound, "emails are case-sensitive")

	created.IsActive = false
	updated, err := s.Update(ctx, created)
	require.NoError(t, err)
	assert.False(t, updated.IsActive)
	assert.Equal(t, created.CreatedAt, updated.CreatedAt)

	require.NoError(t, s.Delete(ctx, created.ID))
	_, err = s.FindByID(ctx, created.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.Delete(ctx, created.ID), ErrNotFound)
}

func TestMemoryStore_DuplicateEmail(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	a, err := s.Create(ctx, model.User{Email: "a@example.com"})
	require.NoError(t, err)
	_, err = s.Create(ctx, model.User{Email: "a@example.com"})
	assert.ErrorIs(t, err, ErrDuplicateEmail)

	b, err := s.Create(ctx, model.User{Email: "b@example.com"})
	require.NoError(t, err)
	b.Email = a.Email
	_, err = s.Update(ctx, b)
	assert.ErrorIs(t, err, ErrDuplicateEmail)
}

func TestMemoryStore_ConcurrentCreateKeepsEmailUnique(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		success int
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.Create(ctx, model.User{Email: "race@example.com"}); err == nil {
				mu.Lock()
				success++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, success)
}

func TestMemoryStore_IDsAreUnique(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	seen := map[uint64]bool{}
	for i := 0; i < 5; i++ {
		u, err := s.Create(ctx, model.User{Email: fmt.Sprintf("u%d@example.com", i)})
		require.NoError(t, err)
		assert.False(t, seen[u.ID])
		seen[u.ID] = true
	}
}

func TestMemoryStore_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s := NewMemoryStore()

	_, err := s.Create(ctx, model.User{Email: "a@example.com"})
	assert.ErrorIs(t, err, context.Canceled)
	_, err = s.FindByEmail(ctx, "a@example.com")
	assert.ErrorIs(t, err, context.Canceled)
}
