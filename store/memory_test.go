package store

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestMemoryFIFOEviction(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(3)
	for i := 0; i < 5; i++ {
		rec := testRecord(fmt.Sprintf("evict-token-%010d", i))
		if err := m.Put(ctx, rec); err != nil {
			t.Fatalf("Put %d: %v", i, err)
		}
	}

	stats, err := m.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.Files != 3 {
		t.Fatalf("Files = %d, want 3 after eviction", stats.Files)
	}

	// The two oldest inserts are gone, the three newest remain.
	for i := 0; i < 2; i++ {
		_, err := m.Get(ctx, fmt.Sprintf("evict-token-%010d", i))
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("Get oldest %d = %v, want ErrNotFound", i, err)
		}
	}
	for i := 2; i < 5; i++ {
		if _, err := m.Get(ctx, fmt.Sprintf("evict-token-%010d", i)); err != nil {
			t.Errorf("Get %d: %v", i, err)
		}
	}
}

func TestMemoryUnbounded(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(0)
	for i := 0; i < 100; i++ {
		if err := m.Put(ctx, testRecord(fmt.Sprintf("nolimit-token-%08d", i))); err != nil {
			t.Fatalf("Put %d: %v", i, err)
		}
	}
	stats, _ := m.Stats(ctx)
	if stats.Files != 100 {
		t.Fatalf("Files = %d, want 100", stats.Files)
	}
}
