package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/lanzy-lanzy/LansonesScan-sub000/internal/fingerprint"
)

// RedisOutcomeCache implements OutcomeCache on Redis. Capacity is advisory
// here: Redis expires entries by TTL and the server's own eviction policy
// handles memory pressure, so MaxSize in Stats reports the configured bound
// for symmetry with the memory backend.
type RedisOutcomeCache struct {
	client   *redis.Client
	prefix   string
	ttl      time.Duration
	capacity int
}

func NewRedisOutcomeCache(client *redis.Client, cfg Config) *RedisOutcomeCache {
	cfg = cfg.WithDefaults()
	prefix := cfg.Prefix
	if prefix == "" {
		prefix = "lansones"
	}
	return &RedisOutcomeCache{
		client:   client,
		prefix:   prefix,
		ttl:      cfg.TTL,
		capacity: cfg.Capacity,
	}
}

func (c *RedisOutcomeCache) key(fp fingerprint.Fingerprint) string {
	return c.prefix + ":outcome:" + fp.String()
}

// Get retrieves a serialized outcome. A Redis error is returned so the
// caller can log it and treat the lookup as a miss.
func (c *RedisOutcomeCache) Get(ctx context.Context, fp fingerprint.Fingerprint) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, fmt.Errorf("context error: %w", err)
	}

	value, err := c.client.Get(ctx, c.key(fp)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get failed: %w", err)
	}
	return value, true, nil
}

func (c *RedisOutcomeCache) Put(ctx context.Context, fp fingerprint.Fingerprint, value []byte) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	if err := c.client.Set(ctx, c.key(fp), value, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

// Clear removes every outcome entry under the configured prefix.
func (c *RedisOutcomeCache) Clear(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, c.prefix+":outcome:*", 0).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			return fmt.Errorf("redis del failed: %w", err)
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("redis scan failed: %w", err)
	}
	return nil
}

func (c *RedisOutcomeCache) Stats(ctx context.Context) (Stats, error) {
	size := 0
	iter := c.client.Scan(ctx, 0, c.prefix+":outcome:*", 0).Iterator()
	for iter.Next(ctx) {
		size++
	}
	if err := iter.Err(); err != nil {
		return Stats{}, fmt.Errorf("redis scan failed: %w", err)
	}
	return Stats{Size: size, MaxSize: c.capacity}, nil
}

// Ping checks that the Redis connection is healthy.
func (c *RedisOutcomeCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}
