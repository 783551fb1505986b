package service

import (
	"context"
	"errors"
	"time"

	"github.com/maarifahub/maarifa-backend/internal/config"
	"github.com/redis/go-redis/v9"
)

// ErrNoSession is returned when no active session exists for a user.
var ErrNoSession = errors.New("no active session")

// SessionStore holds the single active token JTI per user. Issuing a new
// token overwrites the stored JTI, which invalidates every previously issued
// token for that identity.
type SessionStore interface {
	Put(ctx context.Context, userID int64, jti string, ttl time.Duration) error
	Get(ctx context.Context, userID int64) (string, error)
	Delete(ctx context.Context, userID int64) error
}

// RedisSessionStore is the production SessionStore backed by Redis.
type RedisSessionStore struct {
	rdb *redis.Client
}

// NewRedisSessionStore creates a Redis-backed session store.
func NewRedisSessionStore(rdb *redis.Client) *RedisSessionStore {
	return &RedisSessionStore{rdb: rdb}
}

func (s *RedisSessionStore) Put(ctx context.Context, userID int64, jti string, ttl time.Duration) error {
	return s.rdb.Set(ctx, config.CacheKey.UserSessionKey(userID), jti, ttl).Err()
}

func (s *RedisSessionStore) Get(ctx context.Context, userID int64) (string, error) {
	val, err := s.rdb.Get(ctx, config.CacheKey.UserSessionKey(userID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrNoSession
		}
		return "", err
	}
	return val, nil
}

func (s *RedisSessionStore) Delete(ctx context.Context, userID int64) error {
	return s.rdb.Del(ctx, config.CacheKey.UserSessionKey(userID)).Err()
}
