package cache

import (
	"github.com/lanzy-lanzy/LansonesScan-sub000/internal/fingerprint"
)

// ImageCache holds normalized image artifacts keyed by the same fingerprint
// domain as the outcome cache. It is a session-scoped performance shortcut,
// not a correctness-bearing record, so entries are evicted by capacity only:
// no TTL, no remote backend.
type ImageCache struct {
	store *lruStore[Artifact]
}

// Artifact is a preprocessed image ready to send to the gateway.
type Artifact struct {
	Data     []byte
	MIMEType string
}

func NewImageCache(capacity int) *ImageCache {
	return &ImageCache{store: newLRUStore[Artifact](capacity, 0)}
}

func (c *ImageCache) Get(key fingerprint.Fingerprint) (Artifact, bool) {
	return c.store.get(key.String())
}

func (c *ImageCache) Put(key fingerprint.Fingerprint, artifact Artifact) {
	c.store.put(key.String(), artifact)
}

func (c *ImageCache) Clear() {
	c.store.clear()
}

func (c *ImageCache) Stats() Stats {
	return Stats{Size: c.store.len(), MaxSize: c.store.capacity}
}
