// Package cache holds the two fingerprint-keyed caches in front of the model
// gateway: the outcome cache (serialized analysis outcomes, bounded LRU with
// TTL) and the preprocessed-image cache (normalized image artifacts, bounded
// LRU only). Both key on the same image fingerprint domain but are otherwise
// independent.
package cache

import (
	"context"
	"time"

	"github.com/lanzy-lanzy/LansonesScan-sub000/internal/fingerprint"
)

const (
	// DefaultOutcomeCapacity bounds the outcome cache.
	DefaultOutcomeCapacity = 50
	// DefaultOutcomeTTL is how long a cached outcome stays servable.
	DefaultOutcomeTTL = 24 * time.Hour
	// DefaultImageCapacity bounds the preprocessed-image cache.
	DefaultImageCapacity = 10
)

// Stats reports cache occupancy for the operational endpoints.
type Stats struct {
	Size    int `json:"size"`
	MaxSize int `json:"maxSize"`
}

// OutcomeCache stores fully-resolved analysis outcomes, serialized as JSON,
// keyed by image fingerprint. Implemented by the in-process LRU (dev) and
// Redis (prod).
type OutcomeCache interface {
	Get(ctx context.Context, key fingerprint.Fingerprint) ([]byte, bool, error)
	Put(ctx context.Context, key fingerprint.Fingerprint, value []byte) error
	Clear(ctx context.Context) error
	Stats(ctx context.Context) (Stats, error)
}

// Config selects and sizes the outcome cache backend.
type Config struct {
	Backend  string // "memory" or "redis"
	Capacity int
	TTL      time.Duration
	Prefix   string
}

// WithDefaults returns a copy of Config with policy defaults applied.
func (c Config) WithDefaults() Config {
	cfg := c
	if cfg.Capacity <= 0 {
		cfg.Capacity = DefaultOutcomeCapacity
	}
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultOutcomeTTL
	}
	return cfg
}
