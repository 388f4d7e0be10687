package cache

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/lanzy-lanzy/LansonesScan-sub000/internal/fingerprint"
	"github.com/lanzy-lanzy/LansonesScan-sub000/internal/metrics"
	"github.com/lanzy-lanzy/LansonesScan-sub000/pkg/logging"
)

// LoggingOutcomeCache wraps an OutcomeCache with structured logging and
// hit/miss metrics.
type LoggingOutcomeCache struct {
	inner OutcomeCache
}

func NewLoggingOutcomeCache(inner OutcomeCache) OutcomeCache {
	return &LoggingOutcomeCache{inner: inner}
}

func (c *LoggingOutcomeCache) Get(ctx context.Context, key fingerprint.Fingerprint) ([]byte, bool, error) {
	start := time.Now()
	value, ok, err := c.inner.Get(ctx, key)
	latencyMs := float64(time.Since(start).Microseconds()) / 1000.0

	logger := logging.L(ctx)

	result := "miss"
	switch {
	case err != nil:
		result = "error"
	case ok:
		result = "hit"
		metrics.OutcomeCacheHitsTotal.Inc()
	default:
		metrics.OutcomeCacheMissesTotal.Inc()
	}

	fields := []zap.Field{
		zap.String("fingerprint", key.Short()),
		zap.String("cache_result", result), // hit | miss | error
		zap.Float64("latency_ms", latencyMs),
	}

	if err != nil {
		logger.Error("outcome_cache_get", append(fields, zap.Error(err))...)
	} else {
		logger.Debug("outcome_cache_get", fields...)
	}

	return value, ok, err
}

func (c *LoggingOutcomeCache) Put(ctx context.Context, key fingerprint.Fingerprint, value []byte) error {
	start := time.Now()
	err := c.inner.Put(ctx, key, value)
	latencyMs := float64(time.Since(start).Microseconds()) / 1000.0

	logger := logging.L(ctx)

	fields := []zap.Field{
		zap.String("fingerprint", key.Short()),
		zap.Int("size_bytes", len(value)),
		zap.Float64("latency_ms", latencyMs),
	}

	if err != nil {
		logger.Error("outcome_cache_put", append(fields, zap.Error(err))...)
	} else {
		logger.Debug("outcome_cache_put", fields...)
	}

	return err
}

func (c *LoggingOutcomeCache) Clear(ctx context.Context) error {
	err := c.inner.Clear(ctx)
	if err != nil {
		logging.L(ctx).Error("outcome_cache_clear", zap.Error(err))
	} else {
		logging.L(ctx).Info("outcome_cache_clear")
	}
	return err
}

func (c *LoggingOutcomeCache) Stats(ctx context.Context) (Stats, error) {
	return c.inner.Stats(ctx)
}
