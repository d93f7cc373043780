package repository

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/auth-backend/internal/config"
	"github.com/iliyamo/auth-backend/internal/model"
)

// cachedUser is the redis representation. model.User hides the password
// hash from JSON, so the cache carries its own field set.
type cachedUser struct {
	ID             uint64    `json:"id"`
	Email          string    `json:"email"`
	HashedPassword string    `json:"hashed_password"`
	FirstName      string    `json:"first_name"`
	LastName       string    `json:"last_name"`
	IsActive       bool      `json:"is_active"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// CachedUserStore is a read-through redis cache in front of another
// UserStore. Users are cached under their id; an email key maps to the id.
// Writes go to the inner store first and then drop the affected keys.
// Redis failures never fail a call; the inner store answers instead.
type CachedUserStore struct {
	inner  UserStore
	rdb    *redis.Client
	ttl    time.Duration
	prefix string
}

// NewCachedUserStore wraps inner with a redis cache. When caching is
// disabled or no client is available, inner is returned unchanged.
func NewCachedUserStore(inner UserStore, rdb *redis.Client, cfg config.CacheConfig) UserStore {
	if !cfg.Enabled || rdb == nil {
		return inner
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &CachedUserStore{inner: inner, rdb: rdb, ttl: ttl, prefix: cfg.Prefix}
}

// versionTTL outlives any in-flight lookup by a wide margin; a version key
// that expires just resets to zero.
const versionTTL = 24 * time.Hour

// errStaleRead aborts a cache fill that raced with a write.
var errStaleRead = errors.New("cache: user changed during read")

func (s *CachedUserStore) idKey(id uint64) string {
	return s.prefix + ":user:id:" + strconv.FormatUint(id, 10)
}

func (s *CachedUserStore) emailKey(email string) string {
	return s.prefix + ":user:email:" + email
}

// Version keys are bumped by every write. A lookup notes the version before
// reading the inner store and only fills the cache if it is unchanged, so a
// row read before a write can never be cached after it.
func (s *CachedUserStore) idVerKey(id uint64) string {
	return s.prefix + ":user:ver:id:" + strconv.FormatUint(id, 10)
}

func (s *CachedUserStore) emailVerKey(email string) string {
	return s.prefix + ":user:ver:email:" + email
}

func (s *CachedUserStore) Create(ctx context.Context, draft model.User) (model.User, error) {
	return s.inner.Create(ctx, draft)
}

func (s *CachedUserStore) FindByID(ctx context.Context, id uint64) (model.User, error) {
	if u, ok := s.get(ctx, s.idKey(id)); ok {
		return u, nil
	}
	verKey := s.idVerKey(id)
	ver, verOK := s.version(ctx, verKey)
	u, err := s.inner.FindByID(ctx, id)
	if err != nil {
		return model.User{}, err
	}
	if verOK {
		s.put(ctx, u, verKey, ver)
	}
	return u, nil
}

func (s *CachedUserStore) FindByEmail(ctx context.Context, email string) (model.User, error) {
	if id, err := s.rdb.Get(ctx, s.emailKey(email)).Uint64(); err == nil {
		if u, ok := s.get(ctx, s.idKey(id)); ok && u.Email == email {
			return u, nil
		}
	}
	verKey := s.emailVerKey(email)
	ver, verOK := s.version(ctx, verKey)
	u, err := s.inner.FindByEmail(ctx, email)
	if err != nil {
		return model.User{}, err
	}
	if verOK {
		s.put(ctx, u, verKey, ver)
	}
	return u, nil
}

func (s *CachedUserStore) Update(ctx context.Context, u model.User) (model.User, error) {
	prev, err := s.inner.FindByID(ctx, u.ID)
	if err != nil {
		return model.User{}, err
	}
	updated, err := s.inner.Update(ctx, u)
	if err != nil {
		return model.User{}, err
	}
	s.evict(ctx, prev.ID, prev.Email, updated.Email)
	return updated, nil
}

func (s *CachedUserStore) Delete(ctx context.Context, id uint64) error {
	prev, err := s.inner.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.inner.Delete(ctx, id); err != nil {
		return err
	}
	s.evict(ctx, id, prev.Email)
	return nil
}

func (s *CachedUserStore) get(ctx context.Context, key string) (model.User, bool) {
	bs, err := s.rdb.Get(ctx, key).Bytes()
	if err != nil {
		return model.User{}, false
	}
	var cu cachedUser
	if err := json.Unmarshal(bs, &cu); err != nil {
		return model.User{}, false
	}
	return model.User(cu), true
}

// version reads a version key. A missing key is version 0; ok is false when
// redis cannot answer, in which case the caller skips the cache fill.
func (s *CachedUserStore) version(ctx context.Context, key string) (int64, bool) {
	v, err := s.rdb.Get(ctx, key).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return 0, false
	}
	return v, true
}

// put caches u unless verKey moved past ver since the caller read it.
func (s *CachedUserStore) put(ctx context.Context, u model.User, verKey string, ver int64) {
	bs, err := json.Marshal(cachedUser(u))
	if err != nil {
		return
	}
	// errStaleRead and redis errors both just leave the cache empty
	_ = s.rdb.Watch(ctx, func(tx *redis.Tx) error {
		cur, err := tx.Get(ctx, verKey).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if cur != ver {
			return errStaleRead
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.SetEx(ctx, s.idKey(u.ID), bs, s.ttl)
			pipe.SetEx(ctx, s.emailKey(u.Email), u.ID, s.ttl)
			return nil
		})
		return err
	}, verKey)
}

// evict drops the cached entries of a user and bumps its version keys so
// lookups that started before the write cannot refill them.
func (s *CachedUserStore) evict(ctx context.Context, id uint64, emails ...string) {
	keys := []string{s.idKey(id)}
	verKeys := []string{s.idVerKey(id)}
	for _, e := range emails {
		keys = append(keys, s.emailKey(e))
		verKeys = append(verKeys, s.emailVerKey(e))
	}
	pipe := s.rdb.TxPipeline()
	pipe.Del(ctx, keys...)
	for _, k := range verKeys {
		pipe.Incr(ctx, k)
		pipe.Expire(ctx, k, versionTTL)
	}
	// on failure a stale entry lives until its ttl
	_, _ = pipe.Exec(ctx)
}
