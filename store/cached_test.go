package store

import (
	"context"
	"testing"
)

// countingStore counts Get calls that reach the underlying backend.
type countingStore struct {
	*Memory
	gets int
}

func (c *countingStore) Get(ctx context.Context, token string) (*FileRecord, error) {
	c.gets++
	return c.Memory.Get(ctx, token)
}

func TestCachedServesRepeatGetsFromCache(t *testing.T) {
	ctx := context.Background()
	counting := &countingStore{Memory: NewMemory(0)}
	c, err := NewCached(counting, 8)
	if err != nil {
		t.Fatalf("NewCached: %v", err)
	}

	rec := testRecord("cache-token-000000001")
	if err := c.Put(ctx, rec); err != nil {
		t.Fatalf("Put: %v", err)
	}
	for i := 0; i < 5; i++ {
		got, err := c.Get(ctx, rec.Token)
		if err != nil {
			t.Fatalf("Get %d: %v", i, err)
		}
		if got.Name != rec.Name {
			t.Fatalf("Get %d returned %q, want %q", i, got.Name, rec.Name)
		}
	}
	if counting.gets != 0 {
		t.Errorf("underlying gets = %d, want 0 (put should prime the cache)", counting.gets)
	}
}

func TestCachedTouchInvalidates(t *testing.T) {
	ctx := context.Background()
	counting := &countingStore{Memory: NewMemory(0)}
	c, err := NewCached(counting, 8)
	if err != nil {
		t.Fatalf("NewCached: %v", err)
	}

	rec := testRecord("cache-token-000000002")
	if err := c.Put(ctx, rec); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := c.Touch(ctx, rec.Token); err != nil {
		t.Fatalf("Touch: %v", err)
	}
	got, err := c.Get(ctx, rec.Token)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.AccessCount != 1 {
		t.Errorf("AccessCount = %d, want 1 (stale cache entry served?)", got.AccessCount)
	}
	if counting.gets != 1 {
		t.Errorf("underlying gets = %d, want 1 after invalidation", counting.gets)
	}
}
