package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"
)

// document is the on-disk layout of the JSON backend:
// {"files": {token: record}, "users": {userID: record}}.
type document struct {
	Files map[string]FileRecord `json:"files"`
	Users map[string]UserRecord `json:"users"`
}

// JSONFile stores everything in a single JSON document. Each mutation
// is a full load-modify-save under one in-process mutex, and the save
// goes through a temp file rename so a crash mid-write cannot corrupt
// the previous state.
type JSONFile struct {
	mu   sync.Mutex
	path string
}

// NewJSONFile returns a JSON-document backed store at path. The file
// is created on first write.
func NewJSONFile(path string) *JSONFile {
	return &JSONFile{path: path}
}

func (j *JSONFile) load() (*document, error) {
	data, err := os.ReadFile(j.path)
	if errors.Is(err, fs.ErrNotExist) {
		return &document{Files: map[string]FileRecord{}, Users: map[string]UserRecord{}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", j.path, err)
	}
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse %s: %w", j.path, err)
	}
	if doc.Files == nil {
		doc.Files = map[string]FileRecord{}
	}
	if doc.Users == nil {
		doc.Users = map[string]UserRecord{}
	}
	return &doc, nil
}

func (j *JSONFile) save(doc *document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal store document: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(j.path), ".filelinkbot-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write %s: %w", tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close %s: %w", tmp.Name(), err)
	}
	if err := os.Rename(tmp.Name(), j.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("rename into %s: %w", j.path, err)
	}
	return nil
}

func (j *JSONFile) Put(_ context.Context, rec *FileRecord) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	doc, err := j.load()
	if err != nil {
		return err
	}
	if _, ok := doc.Files[rec.Token]; ok {
		return ErrTokenExists
	}
	doc.Files[rec.Token] = *rec
	return j.save(doc)
}

func (j *JSONFile) Get(_ context.Context, token string) (*FileRecord, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	doc, err := j.load()
	if err != nil {
		return nil, err
	}
	rec, ok := doc.Files[token]
	if !ok {
		return nil, ErrNotFound
	}
	return &rec, nil
}

func (j *JSONFile) Touch(_ context.Context, token string) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	doc, err := j.load()
	if err != nil {
		return err
	}
	rec, ok := doc.Files[token]
	if !ok {
		return ErrNotFound
	}
	rec.AccessCount++
	rec.LastAccessAt = time.Now().UTC()
	doc.Files[token] = rec
	return j.save(doc)
}

func (j *JSONFile) SeenUser(_ context.Context, userID int64) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	doc, err := j.load()
	if err != nil {
		return err
	}
	key := strconv.FormatInt(userID, 10)
	if _, ok := doc.Users[key]; ok {
		return nil
	}
	doc.Users[key] = UserRecord{ID: userID, FirstSeen: time.Now().UTC()}
	return j.save(doc)
}

func (j *JSONFile) Stats(_ context.Context) (Stats, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	doc, err := j.load()
	if err != nil {
		return Stats{}, err
	}
	return Stats{Files: len(doc.Files), Users: len(doc.Users)}, nil
}

func (j *JSONFile) Close() error { return nil }
