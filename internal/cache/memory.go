package cache

import (
	"context"
	"time"

	"github.com/lanzy-lanzy/LansonesScan-sub000/internal/fingerprint"
)

// MemoryOutcomeCache is the in-process outcome cache: bounded LRU with
// lazy TTL expiry on lookup.
type MemoryOutcomeCache struct {
	store *lruStore[[]byte]
}

func NewMemoryOutcomeCache(capacity int, ttl time.Duration) *MemoryOutcomeCache {
	return &MemoryOutcomeCache{store: newLRUStore[[]byte](capacity, ttl)}
}

func (c *MemoryOutcomeCache) Get(_ context.Context, key fingerprint.Fingerprint) ([]byte, bool, error) {
	value, ok := c.store.get(key.String())
	if !ok {
		return nil, false, nil
	}
	return value, true, nil
}

func (c *MemoryOutcomeCache) Put(_ context.Context, key fingerprint.Fingerprint, value []byte) error {
	// Copy to decouple from the caller's buffer.
	stored := make([]byte, len(value))
	copy(stored, value)
	c.store.put(key.String(), stored)
	return nil
}

func (c *MemoryOutcomeCache) Clear(_ context.Context) error {
	c.store.clear()
	return nil
}

func (c *MemoryOutcomeCache) Stats(_ context.Context) (Stats, error) {
	return Stats{Size: c.store.len(), MaxSize: c.store.capacity}, nil
}

// setClock overrides the store clock. Test hook.
func (c *MemoryOutcomeCache) setClock(now func() time.Time) {
	c.store.now = now
}
