package cache

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/lanzy-lanzy/LansonesScan-sub000/internal/fingerprint"
)

func fp(s string) fingerprint.Fingerprint {
	return fingerprint.Sum([]byte(s))
}

func TestMemoryOutcomeCachePutGet(t *testing.T) {
	c := NewMemoryOutcomeCache(10, time.Hour)
	ctx := context.Background()

	key := fp("img-1")
	if err := c.Put(ctx, key, []byte(`{"ok":true}`)); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	got, hit, err := c.Get(ctx, key)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !hit {
		t.Fatalf("expected hit immediately after Put")
	}
	if string(got) != `{"ok":true}` {
		t.Fatalf("unexpected value: %q", got)
	}

	if _, hit, _ := c.Get(ctx, fp("never-stored")); hit {
		t.Fatalf("expected miss for absent key")
	}
}

func TestMemoryOutcomeCacheTTL(t *testing.T) {
	c := NewMemoryOutcomeCache(10, 24*time.Hour)
	ctx := context.Background()

	now := time.Unix(1_700_000_000, 0)
	c.setClock(func() time.Time { return now })

	key := fp("img-ttl")
	if err := c.Put(ctx, key, []byte("v")); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	// Just inside the expiry window.
	now = now.Add(24*time.Hour - time.Second)
	if _, hit, _ := c.Get(ctx, key); !hit {
		t.Fatalf("expected hit just before expiry")
	}

	// Just past it. Note the hit above refreshed recency, not the timestamp.
	now = now.Add(2 * time.Second)
	if _, hit, _ := c.Get(ctx, key); hit {
		t.Fatalf("expected miss just after expiry")
	}

	// Expired entry is evicted lazily, not merely hidden.
	stats, err := c.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats.Size != 0 {
		t.Fatalf("expected expired entry to be evicted, size=%d", stats.Size)
	}
}

func TestMemoryOutcomeCacheCapacityEviction(t *testing.T) {
	const capacity = 3
	c := NewMemoryOutcomeCache(capacity, time.Hour)
	ctx := context.Background()

	keys := make([]fingerprint.Fingerprint, 0, capacity+1)
	for i := 0; i < capacity+1; i++ {
		keys = append(keys, fp(fmt.Sprintf("img-%d", i)))
	}

	for i := 0; i < capacity; i++ {
		if err := c.Put(ctx, keys[i], []byte{byte(i)}); err != nil {
			t.Fatalf("Put failed: %v", err)
		}
	}

	// Touch the oldest entry so it is no longer least-recently-used.
	if _, hit, _ := c.Get(ctx, keys[0]); !hit {
		t.Fatalf("expected hit on keys[0]")
	}

	// Inserting one more must evict keys[1], the actual LRU entry.
	if err := c.Put(ctx, keys[capacity], []byte("new")); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	if _, hit, _ := c.Get(ctx, keys[1]); hit {
		t.Fatalf("expected keys[1] to be evicted")
	}
	if _, hit, _ := c.Get(ctx, keys[0]); !hit {
		t.Fatalf("recently-used keys[0] should have survived eviction")
	}

	stats, _ := c.Stats(ctx)
	if stats.Size != capacity || stats.MaxSize != capacity {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}

func TestMemoryOutcomeCacheClear(t *testing.T) {
	c := NewMemoryOutcomeCache(10, time.Hour)
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		if err := c.Put(ctx, fp(fmt.Sprintf("img-%d", i)), []byte("v")); err != nil {
			t.Fatalf("Put failed: %v", err)
		}
	}

	if err := c.Clear(ctx); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}

	stats, _ := c.Stats(ctx)
	if stats.Size != 0 {
		t.Fatalf("expected empty cache after Clear, size=%d", stats.Size)
	}
}

func TestMemoryOutcomeCacheOverwriteRefreshes(t *testing.T) {
	c := NewMemoryOutcomeCache(10, time.Hour)
	ctx := context.Background()

	now := time.Unix(1_700_000_000, 0)
	c.setClock(func() time.Time { return now })

	key := fp("img-ow")
	_ = c.Put(ctx, key, []byte("old"))

	now = now.Add(50 * time.Minute)
	_ = c.Put(ctx, key, []byte("new"))

	// The overwrite reset the entry age; 40 more minutes is still inside TTL.
	now = now.Add(40 * time.Minute)
	got, hit, _ := c.Get(ctx, key)
	if !hit || string(got) != "new" {
		t.Fatalf("expected refreshed entry, hit=%v value=%q", hit, got)
	}
}

func TestImageCacheNoTTL(t *testing.T) {
	c := NewImageCache(2)

	key := fp("artifact")
	c.Put(key, Artifact{Data: []byte{0xFF, 0xD8}, MIMEType: "image/jpeg"})

	got, hit := c.Get(key)
	if !hit {
		t.Fatalf("expected hit")
	}
	if got.MIMEType != "image/jpeg" || len(got.Data) != 2 {
		t.Fatalf("unexpected artifact: %+v", got)
	}

	// Capacity-only eviction.
	c.Put(fp("a2"), Artifact{})
	c.Put(fp("a3"), Artifact{})
	if _, hit := c.Get(key); hit {
		t.Fatalf("expected original artifact evicted at capacity")
	}
	if stats := c.Stats(); stats.Size != 2 || stats.MaxSize != 2 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}
