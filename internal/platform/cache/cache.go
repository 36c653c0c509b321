// Package cache wraps Redis for the few places the API needs shared,
// short-lived state. A nil client turns every call into a no-op.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Deduper remembers keys for a while so repeated deliveries can be skipped.
type Deduper interface {
	// FirstSeen reports whether key was not seen within ttl, recording it.
	FirstSeen(ctx context.Context, key string, ttl time.Duration) (bool, error)
	// Forget drops key so the next FirstSeen reports it as new.
	Forget(ctx context.Context, key string) error
}

// Connect opens a Redis client and pings it. An empty addr returns nil.
func Connect(ctx context.Context, addr, password string) (*redis.Client, error) {
	if addr == "" {
		return nil, nil
	}
	rdb := redis.NewClient(&redis.Options{Addr: addr, Password: password})
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("cache: redis ping: %w", err)
	}
	return rdb, nil
}

type redisDeduper struct {
	rdb    *redis.Client
	prefix string
}

// NewDeduper returns a Redis-backed Deduper, or one that treats every key as
// new when rdb is nil.
func NewDeduper(rdb *redis.Client, prefix string) Deduper {
	if rdb == nil {
		return nopDeduper{}
	}
	return &redisDeduper{rdb: rdb, prefix: prefix}
}

func (d *redisDeduper) FirstSeen(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := d.rdb.SetNX(ctx, d.prefix+key, 1, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("cache: setnx: %w", err)
	}
	return ok, nil
}

func (d *redisDeduper) Forget(ctx context.Context, key string) error {
	if err := d.rdb.Del(ctx, d.prefix+key).Err(); err != nil {
		return fmt.Errorf("cache: del: %w", err)
	}
	return nil
}

type nopDeduper struct{}

func (nopDeduper) FirstSeen(context.Context, string, time.Duration) (bool, error) {
	return true, nil
}

func (nopDeduper) Forget(context.Context, string) error { return nil }
