package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	bolt "go.etcd.io/bbolt"
)

// Bucket names
const (
	BucketCollections = "collections"
	BucketAPI         = "api"
)

var buckets = []string{BucketCollections, BucketAPI}

// BoltStore is the local BoltDB file backing the collections and the API cache.
// With an empty path it runs memory-only (no persistence), which tests use.
type BoltStore struct {
	db *bolt.DB
	mu sync.RWMutex // Protects memory cache

	// In-memory cache for hot-path reads (promoted on access)
	cache map[string][]byte
}

// Open opens (or creates) the database at path and ensures all buckets exist.
func Open(path string) (*BoltStore, error) {
	if path == "" {
		return &BoltStore{cache: make(map[string][]byte)}, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}

	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range buckets {
			if _, err := tx.CreateBucketIfNotExists([]byte(bucket)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &BoltStore{db: db, cache: make(map[string][]byte)}, nil
}

// Close releases the database file lock
func (s *BoltStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Path returns the database file path, or "" in memory-only mode
func (s *BoltStore) Path() string {
	if s.db == nil {
		return ""
	}
	return s.db.Path()
}

// Bucket returns a key-value view scoped to one bucket
func (s *BoltStore) Bucket(name string) *Bucket {
	return &Bucket{store: s, name: []byte(name)}
}

// === Generic helpers ===

func (s *BoltStore) get(bucket []byte, key string) ([]byte, bool, error) {
	cacheKey := string(bucket) + ":" + key

	// Check memory cache first
	s.mu.RLock()
	if data, ok := s.cache[cacheKey]; ok {
		s.mu.RUnlock()
		return data, true, nil
	}
	s.mu.RUnlock()

	if s.db == nil {
		return nil, false, nil
	}

	var data []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucket)
		if b == nil {
			return fmt.Errorf("bucket %q missing", bucket)
		}
		if v := b.Get([]byte(key)); v != nil {
			data = make([]byte, len(v))
			copy(data, v)
		}
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	if data == nil {
		return nil, false, nil
	}

	// Promote to memory cache
	s.mu.Lock()
	s.cache[cacheKey] = data
	s.mu.Unlock()

	return data, true, nil
}

func (s *BoltStore) set(bucket []byte, key string, value []byte) error {
	data := make([]byte, len(value))
	copy(data, value)

	if s.db != nil {
		err := s.db.Update(func(tx *bolt.Tx) error {
			b := tx.Bucket(bucket)
			if b == nil {
				return fmt.Errorf("bucket %q missing", bucket)
			}
			return b.Put([]byte(key), data)
		})
		if err != nil {
			return err
		}
	}

	// Memory cache only reflects committed writes
	s.mu.Lock()
	s.cache[string(bucket)+":"+key] = data
	s.mu.Unlock()
	return nil
}

func (s *BoltStore) delete(bucket []byte, keys []string) error {
	s.mu.Lock()
	for _, key := range keys {
		delete(s.cache, string(bucket)+":"+key)
	}
	s.mu.Unlock()

	if s.db == nil {
		return nil
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucket)
		if b == nil {
			return nil
		}
		for _, key := range keys {
			if err := b.Delete([]byte(key)); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *BoltStore) deletePrefix(bucket []byte, prefix string) error {
	// Clear from memory cache
	s.mu.Lock()
	cachePrefix := string(bucket) + ":" + prefix
	for k := range s.cache {
		if strings.HasPrefix(k, cachePrefix) {
			delete(s.cache, k)
		}
	}
	s.mu.Unlock()

	if s.db == nil {
		return nil
	}

	// Collect first: deleting while iterating a cursor skips keys
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucket)
		if b == nil {
			return nil
		}
		var matched [][]byte
		c := b.Cursor()
		prefixBytes := []byte(prefix)
		for k, _ := c.Seek(prefixBytes); k != nil && strings.HasPrefix(string(k), prefix); k, _ = c.Next() {
			matched = append(matched, append([]byte(nil), k...))
		}
		for _, k := range matched {
			if err := b.Delete(k); err != nil {
				return err
			}
		}
		return nil
	})
}

// Bucket implements domain.KVStore over one BoltDB bucket.
type Bucket struct {
	store *BoltStore
	name  []byte
}

func (b *Bucket) Get(_ context.Context, key string) ([]byte, bool, error) {
	return b.store.get(b.name, key)
}

func (b *Bucket) Set(_ context.Context, key string, value []byte) error {
	return b.store.set(b.name, key, value)
}

func (b *Bucket) Delete(_ context.Context, keys ...string) error {
	return b.store.delete(b.name, keys)
}

func (b *Bucket) DeletePrefix(_ context.Context, prefix string) error {
	return b.store.deletePrefix(b.name, prefix)
}
