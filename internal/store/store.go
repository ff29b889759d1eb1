// Package store persists fetched collection contexts with BoltDB so the
// catalog survives restarts and works offline.
package store

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	bolt "go.etcd.io/bbolt"

	"shelfarr/internal/domain"
)

// Bucket names
var (
	bucketContexts = []byte("contexts")
	bucketMeta     = []byte("meta")
)

// ContextStore implements domain.Store using BoltDB with an in-memory
// cache promoted on access.
type ContextStore struct {
	db *bolt.DB
	mu sync.RWMutex // Protects memory cache

	cache map[string][]byte
}

// NewContextStore opens (or creates) the store under baseCacheDir. The
// provider URL namespaces the database so switching servers never mixes
// caches. An empty baseCacheDir gives a memory-only store.
func NewContextStore(baseCacheDir, providerURL string) (*ContextStore, error) {
	if baseCacheDir == "" {
		return &ContextStore{cache: make(map[string][]byte)}, nil
	}

	dir := baseCacheDir
	if providerURL != "" {
		dir = filepath.Join(baseCacheDir, hashProviderURL(providerURL))
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	dbPath := filepath.Join(dir, "shelfarr.db")
	db, err := bolt.Open(dbPath, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{bucketContexts, bucketMeta} {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &ContextStore{db: db, cache: make(map[string][]byte)}, nil
}

func hashProviderURL(providerURL string) string {
	normalized := strings.TrimRight(strings.ToLower(providerURL), "/")
	hash := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(hash[:6])
}

func (s *ContextStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// === Generic helpers ===

func (s *ContextStore) get(bucket []byte, key string, dest any) bool {
	cacheKey := string(bucket) + ":" + key

	s.mu.RLock()
	if data, ok := s.cache[cacheKey]; ok {
		s.mu.RUnlock()
		return json.Unmarshal(data, dest) == nil
	}
	s.mu.RUnlock()

	if s.db == nil {
		return false
	}

	var data []byte
	s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucket)
		if b == nil {
			return nil
		}
		if v := b.Get([]byte(key)); v != nil {
			data = make([]byte, len(v))
			copy(data, v)
		}
		return nil
	})

	if data == nil {
		return false
	}

	// Promote to memory cache
	s.mu.Lock()
	s.cache[cacheKey] = data
	s.mu.Unlock()

	return json.Unmarshal(data, dest) == nil
}

func (s *ContextStore) set(bucket []byte, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	cacheKey := string(bucket) + ":" + key

	s.mu.Lock()
	s.cache[cacheKey] = data
	s.mu.Unlock()

	if s.db == nil {
		return nil // Memory-only mode
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucket)
		return b.Put([]byte(key), data)
	})
}

func (s *ContextStore) delete(bucket []byte, key string) {
	cacheKey := string(bucket) + ":" + key

	s.mu.Lock()
	delete(s.cache, cacheKey)
	s.mu.Unlock()

	if s.db == nil {
		return
	}

	s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucket)
		if b != nil {
			b.Delete([]byte(key))
		}
		return nil
	})
}

// === domain.Store ===

// GetContext returns the persisted entry list for a context key.
func (s *ContextStore) GetContext(key domain.ContextKey) ([]*domain.CatalogEntry, bool) {
	var entries []*domain.CatalogEntry
	ok := s.get(bucketContexts, string(key), &entries)
	return entries, ok
}

// SaveContext persists a context's entry list and records the fetch time.
func (s *ContextStore) SaveContext(key domain.ContextKey, entries []*domain.CatalogEntry) error {
	if err := s.set(bucketContexts, string(key), entries); err != nil {
		return err
	}
	return s.set(bucketMeta, string(key)+":ts", time.Now().Unix())
}

// FetchedAt returns when a context was last persisted.
func (s *ContextStore) FetchedAt(key domain.ContextKey) (time.Time, bool) {
	var ts int64
	if !s.get(bucketMeta, string(key)+":ts", &ts) {
		return time.Time{}, false
	}
	return time.Unix(ts, 0), true
}

// IsFresh reports whether a persisted context is younger than maxAge.
func (s *ContextStore) IsFresh(key domain.ContextKey, maxAge time.Duration) bool {
	fetched, ok := s.FetchedAt(key)
	if !ok {
		return false
	}
	return time.Since(fetched) < maxAge
}

// InvalidateContext drops one persisted context.
func (s *ContextStore) InvalidateContext(key domain.ContextKey) {
	s.delete(bucketContexts, string(key))
	s.delete(bucketMeta, string(key)+":ts")
}

// InvalidateAll wipes every persisted context.
func (s *ContextStore) InvalidateAll() {
	s.mu.Lock()
	s.cache = make(map[string][]byte)
	s.mu.Unlock()

	if s.db == nil {
		return
	}

	s.db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{bucketContexts, bucketMeta} {
			b := tx.Bucket(bucket)
			if b == nil {
				continue
			}
			c := b.Cursor()
			for k, _ := c.First(); k != nil; k, _ = c.Next() {
				if err := b.Delete(k); err != nil {
					return err
				}
			}
		}
		return nil
	})
}
