package store

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Cached layers an LRU record cache over a persistent backend, so hot
// links don't reload the whole JSON document or hit SQLite on every
// redemption.
type Cached struct {
	next  Store
	cache *lru.Cache[string, FileRecord]
}

// NewCached wraps next with an LRU cache holding up to size records.
func NewCached(next Store, size int) (*Cached, error) {
	cache, err := lru.New[string, FileRecord](size)
	if err != nil {
		return nil, fmt.Errorf("create record cache: %w", err)
	}
	return &Cached{next: next, cache: cache}, nil
}

func (c *Cached) Put(ctx context.Context, rec *FileRecord) error {
	if err := c.next.Put(ctx, rec); err != nil {
		return err
	}
	c.cache.Add(rec.Token, *rec)
	return nil
}

func (c *Cached) Get(ctx context.Context, token string) (*FileRecord, error) {
	if rec, ok := c.cache.Get(token); ok {
		return &rec, nil
	}
	rec, err := c.next.Get(ctx, token)
	if err != nil {
		return nil, err
	}
	c.cache.Add(token, *rec)
	return rec, nil
}

func (c *Cached) Touch(ctx context.Context, token string) error {
	if err := c.next.Touch(ctx, token); err != nil {
		return err
	}
	// Drop the cached copy so the next Get sees fresh counters.
	c.cache.Remove(token)
	return nil
}

func (c *Cached) SeenUser(ctx context.Context, userID int64) error {
	return c.next.SeenUser(ctx, userID)
}

func (c *Cached) Stats(ctx context.Context) (Stats, error) {
	return c.next.Stats(ctx)
}

func (c *Cached) Close() error { return c.next.Close() }
