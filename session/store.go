package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrRedisUnavailable wraps every Redis failure other than a missing key.
var ErrRedisUnavailable = errors.New("redis unavailable")

// ErrSessionNotFound is returned by Get when no entry exists for the key.
var ErrSessionNotFound = errors.New("session not found")

// DefaultTombstoneTTL is how long an invalidated entry stays readable as "".
const DefaultTombstoneTTL = 3 * time.Second

// Config controls key layout and tombstone lifetime.
type Config struct {
	Prefix       string
	TombstoneTTL time.Duration
}

// Store is a TTL-keyed string cache of renewal token → email.
type Store struct {
	redis        redis.UniversalClient
	prefix       string
	tombstoneTTL time.Duration
}

// NewStore creates a [Store] over the given Redis client.
func NewStore(redis redis.UniversalClient, cfg Config) *Store {
	if cfg.TombstoneTTL <= 0 {
		cfg.TombstoneTTL = DefaultTombstoneTTL
	}
	if cfg.Prefix == "" {
		cfg.Prefix = "rt"
	}
	return &Store{
		redis:        redis,
		prefix:       cfg.Prefix,
		tombstoneTTL: cfg.TombstoneTTL,
	}
}

func (s *Store) key(token string) string {
	return s.prefix + ":" + token
}

// TombstoneTTL returns the lifetime of an invalidated entry.
func (s *Store) TombstoneTTL() time.Duration { return s.tombstoneTTL }

// Put upserts key with value and ttl, replacing any existing value and TTL.
//
//	Performance: 1 Redis SET.
func (s *Store) Put(ctx context.Context, key, value string, ttl time.Duration) error {
	if ttl <= 0 {
		return errors.New("session ttl must be positive")
	}
	if err := s.redis.Set(ctx, s.key(key), value, ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

// Get returns the stored value. A tombstoned entry returns "" and a nil
// error; a missing entry returns ErrSessionNotFound.
//
//	Performance: 1 Redis GET.
func (s *Store) Get(ctx context.Context, key string) (string, error) {
	value, err := s.redis.Get(ctx, s.key(key)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrSessionNotFound
		}
		return "", fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return value, nil
}

// Invalidate overwrites key with an empty value that expires after the
// tombstone TTL. Invalidating an unknown key is not an error.
//
//	Performance: 1 Redis SET.
func (s *Store) Invalidate(ctx context.Context, key string) error {
	return s.Put(ctx, key, "", s.tombstoneTTL)
}

// Rotate stores newKey → value and tombstones oldKey in one MULTI/EXEC, so
// either both writes land or neither does.
//
//	Performance: 1 round trip (2 SETs in a transaction).
func (s *Store) Rotate(ctx context.Context, oldKey, newKey, value string, ttl time.Duration) error {
	if ttl <= 0 {
		return errors.New("session ttl must be positive")
	}
	if oldKey == newKey {
		return errors.New("rotation requires a new key")
	}

	_, err := s.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.key(newKey), value, ttl)
		pipe.Set(ctx, s.key(oldKey), "", s.tombstoneTTL)
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

// Ping returns a point-in-time Redis availability check and latency.
func (s *Store) Ping(ctx context.Context) (time.Duration, error) {
	start := time.Now()
	if err := s.redis.Ping(ctx).Err(); err != nil {
		return time.Since(start), fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return time.Since(start), nil
}
