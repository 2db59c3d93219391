// Package session keeps login sessions in redis.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "session:"

// ErrNoSession is returned for unknown or expired session IDs.
var ErrNoSession = errors.New("session not found")

// Store creates and resolves sessions. Lookup returns ErrNoSession for
// unknown or expired IDs; any other error means the store is unavailable.
type Store interface {
	Create(ctx context.Context, user string) (string, error)
	Lookup(ctx context.Context, sid string) (string, error)
	TTL() time.Duration
}

// RedisStore stores the user name of each session under session:<id>.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

var _ Store = (*RedisStore)(nil)

// NewRedisStore returns a store whose sessions expire after ttl.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

// TTL is the lifetime of new sessions.
func (s *RedisStore) TTL() time.Duration { return s.ttl }

func (s *RedisStore) Create(ctx context.Context, user string) (string, error) {
	sid := uuid.NewString()
	if err := s.client.Set(ctx, keyPrefix+sid, user, s.ttl).Err(); err != nil {
		return "", fmt.Errorf("create session: %w", err)
	}
	return sid, nil
}

func (s *RedisStore) Lookup(ctx context.Context, sid string) (string, error) {
	user, err := s.client.Get(ctx, keyPrefix+sid).Result()
	if errors.Is(err, redis.Nil) || (err == nil && user == "") {
		return "", ErrNoSession
	}
	if err != nil {
		return "", fmt.Errorf("lookup session: %w", err)
	}
	return user, nil
}
