package cache

import (
	"context"
	"time"
)

// Counter is the subset of Redis used by the counters in this package.
// *RedisClient implements it.
type Counter interface {
	GetInt(ctx context.Context, key string) (int64, error)
	Incr(ctx context.Context, key string) (int64, error)
	IncrWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error)
}
