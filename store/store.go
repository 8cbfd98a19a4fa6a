// Package store persists the token -> file mapping behind the bot.
// Every backend satisfies the same Store interface, so the handlers
// never know whether records live in memory, a JSON document, a Bolt
// file or a SQLite database.
package store

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound is returned by Get for tokens that were never issued
	// or have been evicted. It is an expected outcome, not a failure.
	ErrNotFound = errors.New("store: record not found")

	// ErrTokenExists is returned by Put when the token already maps to
	// a record. The token generator makes this astronomically unlikely,
	// so hitting it indicates a caller bug rather than bad luck.
	ErrTokenExists = errors.New("store: token already exists")
)

// FileRecord describes one shared file. The actual bytes stay on
// Telegram's servers; FileRef is the opaque handle used to redeliver
// them. Records are immutable after Put except for the access counters
// maintained by Touch.
type FileRecord struct {
	Token        string    `json:"token" db:"token"`
	FileRef      string    `json:"file_ref" db:"file_ref"`
	Name         string    `json:"file_name" db:"file_name"`
	Size         int64     `json:"file_size" db:"file_size"`
	UploaderID   int64     `json:"uploader_id" db:"uploader_id"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	AccessCount  int64     `json:"access_count" db:"access_count"`
	LastAccessAt time.Time `json:"last_access_at,omitempty" db:"last_access_at"`
}

// UserRecord tracks when a user was first seen. Purely informational.
type UserRecord struct {
	ID        int64     `json:"user_id"`
	FirstSeen time.Time `json:"first_seen_at"`
}

// Stats holds the aggregate counts shown by /stats and /api/stats.
type Stats struct {
	Files int `json:"total_files"`
	Users int `json:"total_users"`
}

// Store is the persistence contract shared by all backends.
type Store interface {
	// Put inserts a new record under rec.Token. A colliding token is a
	// logic error (ErrTokenExists), never a silent merge.
	Put(ctx context.Context, rec *FileRecord) error

	// Get returns the record for token, or ErrNotFound.
	Get(ctx context.Context, token string) (*FileRecord, error)

	// Touch bumps the access counters after a successful redemption.
	Touch(ctx context.Context, token string) error

	// SeenUser records that a user interacted with the bot. Repeated
	// calls for the same user are no-ops.
	SeenUser(ctx context.Context, userID int64) error

	// Stats returns aggregate record counts.
	Stats(ctx context.Context) (Stats, error)

	Close() error
}
