package cache

import (
	"github.com/redis/go-redis/v9"
)

// NewOutcomeCache selects the outcome cache backend from config:
// Redis when configured, the in-process LRU otherwise.
func NewOutcomeCache(cfg Config, redisClient *redis.Client) OutcomeCache {
	cfg = cfg.WithDefaults()
	switch cfg.Backend {
	case "redis":
		return NewRedisOutcomeCache(redisClient, cfg)
	default:
		return NewMemoryOutcomeCache(cfg.Capacity, cfg.TTL)
	}
}
