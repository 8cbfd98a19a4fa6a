package store

import (
	"context"
	"errors"
	"time"
)

const (
	putAttempts  = 3
	getAttempts  = 2
	retryBackoff = 500 * time.Millisecond
)

// Retry wraps a backend with bounded retries around I/O failures.
// Expected outcomes (ErrNotFound, ErrTokenExists) pass straight
// through: retrying those would only repeat the same answer.
type Retry struct {
	next    Store
	backoff time.Duration
}

// NewRetry wraps next with the default attempt counts and backoff.
func NewRetry(next Store) *Retry {
	return &Retry{next: next, backoff: retryBackoff}
}

func (r *Retry) retry(ctx context.Context, attempts int, op func() error) error {
	var err error
	for i := 0; i < attempts; i++ {
		err = op()
		if err == nil || errors.Is(err, ErrNotFound) || errors.Is(err, ErrTokenExists) {
			return err
		}
		if i == attempts-1 {
			break
		}
		select {
		case <-time.After(r.backoff):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return err
}

func (r *Retry) Put(ctx context.Context, rec *FileRecord) error {
	return r.retry(ctx, putAttempts, func() error { return r.next.Put(ctx, rec) })
}

func (r *Retry) Get(ctx context.Context, token string) (*FileRecord, error) {
	var rec *FileRecord
	err := r.retry(ctx, getAttempts, func() error {
		var err error
		rec, err = r.next.Get(ctx, token)
		return err
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

func (r *Retry) Touch(ctx context.Context, token string) error {
	return r.next.Touch(ctx, token)
}

func (r *Retry) SeenUser(ctx context.Context, userID int64) error {
	return r.next.SeenUser(ctx, userID)
}

func (r *Retry) Stats(ctx context.Context) (Stats, error) {
	return r.next.Stats(ctx)
}

func (r *Retry) Close() error { return r.next.Close() }
