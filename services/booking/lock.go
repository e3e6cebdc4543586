package booking

import (
	"context"
	"time"

	"guruconnect/utils"

	"github.com/go-redis/redis/v8"
)

// Locker serializes commits that share a payment reference.
type Locker interface {
	// Acquire returns ok=false when someone else holds key.
	Acquire(ctx context.Context, key string, ttl time.Duration) (release func(), ok bool, err error)
}

// RedisLocker implements Locker with SETNX.
type RedisLocker struct {
	client *redis.Client
}

func NewRedisLocker(client *redis.Client) *RedisLocker {
	return &RedisLocker{client: client}
}

func (l *RedisLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (func(), bool, error) {
	fullKey := utils.BookingLockPrefix + key
	ok, err := l.client.SetNX(ctx, fullKey, "1", ttl).Result()
	if err != nil || !ok {
		return func() {}, false, err
	}
	release := func() {
		// Release with a fresh context; the request context may already be done.
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		l.client.Del(ctx, fullKey)
	}
	return release, true, nil
}
