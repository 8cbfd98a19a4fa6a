package store

import (
	"context"
	"sync"
	"time"
)

// Memory is the default backend: a process-wide map guarded by a
// mutex. When maxRecords > 0 the oldest-inserted record is trimmed
// once the bound is exceeded.
type Memory struct {
	mu         sync.Mutex
	files      map[string]FileRecord
	order      []string // insertion order, for FIFO trimming
	users      map[int64]time.Time
	maxRecords int
}

// NewMemory returns an in-memory store. maxRecords of 0 means
// unbounded.
func NewMemory(maxRecords int) *Memory {
	return &Memory{
		files:      make(map[string]FileRecord),
		users:      make(map[int64]time.Time),
		maxRecords: maxRecords,
	}
}

func (m *Memory) Put(_ context.Context, rec *FileRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.files[rec.Token]; ok {
		return ErrTokenExists
	}
	m.files[rec.Token] = *rec
	m.order = append(m.order, rec.Token)
	for m.maxRecords > 0 && len(m.files) > m.maxRecords {
		oldest := m.order[0]
		m.order = m.order[1:]
		delete(m.files, oldest)
	}
	return nil
}

func (m *Memory) Get(_ context.Context, token string) (*FileRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.files[token]
	if !ok {
		return nil, ErrNotFound
	}
	return &rec, nil
}

func (m *Memory) Touch(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.files[token]
	if !ok {
		return ErrNotFound
	}
	rec.AccessCount++
	rec.LastAccessAt = time.Now().UTC()
	m.files[token] = rec
	return nil
}

func (m *Memory) SeenUser(_ context.Context, userID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[userID]; !ok {
		m.users[userID] = time.Now().UTC()
	}
	return nil
}

func (m *Memory) Stats(_ context.Context) (Stats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Stats{Files: len(m.files), Users: len(m.users)}, nil
}

func (m *Memory) Close() error { return nil }
