// Package cache holds the one-shot state store used by the OAuth
// redirect flow: a nonce is written before the redirect and must be
// consumed exactly once by the callback.
package cache

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

type StateStore interface {
	Put(ctx context.Context, key string, ttl time.Duration) error
	// Take reports whether key existed, consuming it either way.
	Take(ctx context.Context, key string) (bool, error)
}

type RedisStore struct {
	rdb *redis.Client
}

func NewRedis(addr, pass string, db int) *RedisStore {
	return &RedisStore{
		rdb: redis.NewClient(&redis.Options{Addr: addr, Password: pass, DB: db}),
	}
}

func (s *RedisStore) Put(ctx context.Context, key string, ttl time.Duration) error {
	return s.rdb.Set(ctx, key, 1, ttl).Err()
}

func (s *RedisStore) Take(ctx context.Context, key string) (bool, error) {
	n, err := s.rdb.Del(ctx, key).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// MemoryStore backs deployments without Redis. Single-process only.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]time.Time
}

func NewMemory() *MemoryStore {
	return &MemoryStore{entries: make(map[string]time.Time)}
}

func (s *MemoryStore) Put(_ context.Context, key string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for k, exp := range s.entries {
		if now.After(exp) {
			delete(s.entries, k)
		}
	}
	s.entries[key] = now.Add(ttl)
	return nil
}

func (s *MemoryStore) Take(_ context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	exp, ok := s.entries[key]
	if !ok {
		return false, nil
	}
	delete(s.entries, key)
	return time.Now().Before(exp), nil
}
