package store

import (
	"fmt"
)

// Backend names accepted by Open.
const (
	BackendMemory = "memory"
	BackendJSON   = "json"
	BackendBolt   = "bolt"
	BackendSQLite = "sqlite"
)

// Options selects and tunes a backend.
type Options struct {
	// Backend is one of the Backend* constants.
	Backend string
	// Path is the database/document location for persistent backends.
	Path string
	// MaxRecords bounds the memory backend; 0 means unbounded.
	MaxRecords int
	// CacheSize enables a read-through LRU in front of persistent
	// backends; 0 disables it.
	CacheSize int
}

// Open builds the configured backend and layers the retry and cache
// wrappers on top of persistent ones.
func Open(opts Options) (Store, error) {
	switch opts.Backend {
	case BackendMemory, "":
		return NewMemory(opts.MaxRecords), nil
	case BackendJSON, BackendBolt, BackendSQLite:
		if opts.Path == "" {
			return nil, fmt.Errorf("backend %q requires a storage path", opts.Backend)
		}
	default:
		return nil, fmt.Errorf("unknown storage backend %q", opts.Backend)
	}

	var (
		base Store
		err  error
	)
	switch opts.Backend {
	case BackendJSON:
		base = NewJSONFile(opts.Path)
	case BackendBolt:
		base, err = NewBolt(opts.Path)
	case BackendSQLite:
		base, err = NewSQLite(opts.Path)
	}
	if err != nil {
		return nil, err
	}

	var st Store = NewRetry(base)
	if opts.CacheSize > 0 {
		st, err = NewCached(st, opts.CacheSize)
		if err != nil {
			base.Close()
			return nil, err
		}
	}
	return st, nil
}
