package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/boltdb/bolt"
)

var (
	filesBucket = []byte("files")
	usersBucket = []byte("users")
)

// Bolt keeps records in a single-file Bolt database. Unlike the JSON
// backend, every mutation is an atomic transaction, so concurrent
// uploads cannot clobber each other even without the coarse mutex.
type Bolt struct {
	db *bolt.DB
}

// NewBolt opens (or creates) the Bolt database at path and ensures
// both buckets exist.
func NewBolt(path string) (*Bolt, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bolt database %s: %w", path, err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(filesBucket); err != nil {
			return err
		}
		_, err := tx.CreateBucketIfNotExists(usersBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure buckets exist: %w", err)
	}
	return &Bolt{db: db}, nil
}

func (b *Bolt) Put(_ context.Context, rec *FileRecord) error {
	return b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(filesBucket)
		if bucket.Get([]byte(rec.Token)) != nil {
			return ErrTokenExists
		}
		value, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("marshal record: %w", err)
		}
		return bucket.Put([]byte(rec.Token), value)
	})
}

func (b *Bolt) Get(_ context.Context, token string) (*FileRecord, error) {
	var rec FileRecord
	err := b.db.View(func(tx *bolt.Tx) error {
		value := tx.Bucket(filesBucket).Get([]byte(token))
		if value == nil {
			return ErrNotFound
		}
		return json.Unmarshal(value, &rec)
	})
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (b *Bolt) Touch(_ context.Context, token string) error {
	return b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(filesBucket)
		value := bucket.Get([]byte(token))
		if value == nil {
			return ErrNotFound
		}
		var rec FileRecord
		if err := json.Unmarshal(value, &rec); err != nil {
			return err
		}
		rec.AccessCount++
		rec.LastAccessAt = time.Now().UTC()
		value, err := json.Marshal(&rec)
		if err != nil {
			return err
		}
		return bucket.Put([]byte(token), value)
	})
}

func (b *Bolt) SeenUser(_ context.Context, userID int64) error {
	return b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(usersBucket)
		key := []byte(strconv.FormatInt(userID, 10))
		if bucket.Get(key) != nil {
			return nil
		}
		value, err := json.Marshal(&UserRecord{ID: userID, FirstSeen: time.Now().UTC()})
		if err != nil {
			return err
		}
		return bucket.Put(key, value)
	})
}

func (b *Bolt) Stats(_ context.Context) (Stats, error) {
	var stats Stats
	err := b.db.View(func(tx *bolt.Tx) error {
		stats.Files = tx.Bucket(filesBucket).Stats().KeyN
		stats.Users = tx.Bucket(usersBucket).Stats().KeyN
		return nil
	})
	return stats, err
}

func (b *Bolt) Close() error { return b.db.Close() }
