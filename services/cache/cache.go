// Package cache is the read-through cache in front of expensive listings.
//
// Entries are never invalidated on writes. A value can be stale for up to the TTL it was set
// with, and callers choose TTLs with that window in mind.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/ristretto/v2"
	goredis "github.com/redis/go-redis/v9"
)

// Cache stores JSON-encoded values under string keys.
type Cache interface {
	// Get decodes the value for key into dst and reports whether it was present.
	Get(ctx context.Context, key string, dst interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Close() error
}

// MemoryCache is a process-local cache backed by ristretto.
type MemoryCache struct {
	c *ristretto.Cache[string, []byte]
}

func NewMemoryCache(maxBytes int64) (*MemoryCache, error) {
	c, err := ristretto.NewCache(&ristretto.Config[string, []byte]{
		NumCounters: 10_000,
		MaxCost:     maxBytes,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("create memory cache: %w", err)
	}
	return &MemoryCache{c: c}, nil
}

func (m *MemoryCache) Get(ctx context.Context, key string, dst interface{}) (bool, error) {
	raw, ok := m.c.Get(key)
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, fmt.Errorf("decode cached %s: %w", key, err)
	}
	return true, nil
}

func (m *MemoryCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	m.c.SetWithTTL(key, raw, int64(len(raw)), ttl)
	// make the write visible to the next Get
	m.c.Wait()
	return nil
}

func (m *MemoryCache) Close() error {
	m.c.Close()
	return nil
}

// RedisCache shares entries between processes through redis.
type RedisCache struct {
	rdb    *goredis.Client
	prefix string
}

func NewRedisCache(ctx context.Context, addr, prefix string) (*RedisCache, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &RedisCache{rdb: rdb, prefix: prefix}, nil
}

func (r *RedisCache) Get(ctx context.Context, key string, dst interface{}) (bool, error) {
	raw, err := r.rdb.Get(ctx, r.prefix+key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("redis get %s: %w", key, err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, fmt.Errorf("decode cached %s: %w", key, err)
	}
	return true, nil
}

func (r *RedisCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return r.rdb.Set(ctx, r.prefix+key, raw, ttl).Err()
}

func (r *RedisCache) Close() error {
	return r.rdb.Close()
}
