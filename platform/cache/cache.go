// Package cache provides a Redis-backed view cache and idempotency store
// with an in-process fallback when Redis is not configured.
package cache

import (
	"context"
	"sync"
	"time"

	"conciergerie_backend/platform/config"
	"conciergerie_backend/platform/logger"

	"github.com/redis/go-redis/v9"
)

// Store caches serialized views and tracks idempotency keys. All methods
// degrade gracefully: a cache failure is never surfaced to callers beyond
// a miss, and idempotency falls back to an in-process map when Redis is
// unavailable.
type Store struct {
	client *redis.Client
	logger *logger.Logger

	mu    sync.Mutex
	local map[string]time.Time
}

// New connects to Redis when a URL is configured. With no URL the store
// still works using process-local memory only.
func New(cfg config.RedisConfig, log *logger.Logger) (*Store, error) {
	store := &Store{
		logger: log,
		local:  make(map[string]time.Time),
	}

	if !cfg.IsRedisEnabled() {
		return store, nil
	}

	opt, err := redis.ParseURL(cfg.GetRedisURL())
	if err != nil {
		return nil, err
	}
	store.client = redis.NewClient(opt)
	return store, nil
}

// Close releases the Redis connection if one was opened.
func (s *Store) Close() error {
	if s == nil || s.client == nil {
		return nil
	}
	return s.client.Close()
}

// Get returns the cached payload for key, or ok=false on a miss.
func (s *Store) Get(ctx context.Context, key string) ([]byte, bool) {
	if s == nil || s.client == nil {
		return nil, false
	}
	payload, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			s.logger.Warn("cache get failed", "key", key, "error", err)
		}
		return nil, false
	}
	return payload, true
}

// Set stores payload under key for ttl. Failures are logged and swallowed.
func (s *Store) Set(ctx context.Context, key string, payload []byte, ttl time.Duration) {
	if s == nil || s.client == nil {
		return
	}
	if err := s.client.Set(ctx, key, payload, ttl).Err(); err != nil {
		s.logger.Warn("cache set failed", "key", key, "error", err)
	}
}

// Invalidate removes the given keys, typically after a write to the
// underlying rows.
func (s *Store) Invalidate(ctx context.Context, keys ...string) {
	if s == nil || s.client == nil || len(keys) == 0 {
		return
	}
	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		s.logger.Warn("cache invalidate failed", "keys", keys, "error", err)
	}
}

// Acquire claims key for ttl and reports whether this caller won the claim.
// A false return means another caller already holds the key. Uses Redis
// SETNX when available, otherwise a process-local map, so duplicate
// suppression holds per instance even without Redis.
func (s *Store) Acquire(ctx context.Context, key string, ttl time.Duration) bool {
	if s == nil {
		// No store means no duplicate suppression; every claim wins.
		return true
	}
	if s.client != nil {
		ok, err := s.client.SetNX(ctx, key, "1", ttl).Result()
		if err == nil {
			return ok
		}
		s.logger.Warn("idempotency check degraded to local memory", "key", key, "error", err)
	}
	return s.acquireLocal(key, ttl)
}

// Release frees an acquired key early, for use when the guarded operation
// failed and should be retryable immediately.
func (s *Store) Release(ctx context.Context, key string) {
	if s == nil {
		return
	}
	if s.client != nil {
		if err := s.client.Del(ctx, key).Err(); err != nil {
			s.logger.Warn("idempotency release failed", "key", key, "error", err)
		}
	}
	s.mu.Lock()
	delete(s.local, key)
	s.mu.Unlock()
}

func (s *Store) acquireLocal(key string, ttl time.Duration) bool {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	for k, expiry := range s.local {
		if now.After(expiry) {
			delete(s.local, k)
		}
	}

	if expiry, held := s.local[key]; held && now.Before(expiry) {
		return false
	}
	s.local[key] = now.Add(ttl)
	return true
}
