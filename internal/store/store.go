package store

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/mmcdole/boxoffice/internal/domain"
	"github.com/pierrec/lz4/v4"
	bolt "go.etcd.io/bbolt"
)

const dbFileName = "boxoffice.db"

// Values at or above this size are stored lz4-compressed (posters, search results).
const compressThreshold = 4 << 10

// Value encodings (first byte of every stored value)
const (
	encodingRaw byte = iota
	encodingLZ4
)

// Store implements domain.KVStore using BoltDB, one bucket per namespace.
type Store struct {
	db *bolt.DB
	mu sync.RWMutex // Protects memory cache

	// In-memory cache for hot-path reads (promoted on access)
	cache map[string][]byte
}

// Open opens (or creates) the store under dir. An empty dir gives a
// memory-only store that forgets everything on Close.
func Open(dir string) (*Store, error) {
	if dir == "" {
		return &Store{cache: make(map[string][]byte)}, nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}

	dbPath := filepath.Join(dir, dbFileName)
	db, err := bolt.Open(dbPath, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open bolt db: %v", domain.ErrStoreUnavailable, err)
	}

	return &Store{db: db, cache: make(map[string][]byte)}, nil
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func cacheKey(namespace, key string) string {
	return namespace + ":" + key
}

// Get returns a copy of the stored value.
func (s *Store) Get(namespace, key string) ([]byte, bool, error) {
	ck := cacheKey(namespace, key)

	// Check memory cache first
	s.mu.RLock()
	if data, ok := s.cache[ck]; ok {
		s.mu.RUnlock()
		return bytes.Clone(data), true, nil
	}
	s.mu.RUnlock()

	if s.db == nil {
		return nil, false, nil
	}

	var stored []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(namespace))
		if b == nil {
			return nil
		}
		if v := b.Get([]byte(key)); v != nil {
			stored = bytes.Clone(v)
		}
		return nil
	})
	if err != nil {
		return nil, false, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	if stored == nil {
		return nil, false, nil
	}

	data, err := decode(stored)
	if err != nil {
		return nil, false, fmt.Errorf("%w: %s/%s: %v", domain.ErrCorruptEntry, namespace, key, err)
	}

	// Promote to memory cache
	s.mu.Lock()
	s.cache[ck] = data
	s.mu.Unlock()

	return bytes.Clone(data), true, nil
}

// Put writes the value to disk first and then to the memory cache, so a
// failed write never leaves memory claiming the value is durable.
func (s *Store) Put(namespace, key string, value []byte) error {
	data := bytes.Clone(value)

	if s.db != nil {
		encoded, err := encode(data)
		if err != nil {
			return err
		}
		err = s.db.Update(func(tx *bolt.Tx) error {
			b, err := tx.CreateBucketIfNotExists([]byte(namespace))
			if err != nil {
				return err
			}
			return b.Put([]byte(key), encoded)
		})
		if err != nil {
			return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
		}
	}

	s.mu.Lock()
	s.cache[cacheKey(namespace, key)] = data
	s.mu.Unlock()
	return nil
}

func (s *Store) Delete(namespace, key string) error {
	s.mu.Lock()
	delete(s.cache, cacheKey(namespace, key))
	s.mu.Unlock()

	if s.db == nil {
		return nil
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(namespace))
		if b == nil {
			return nil
		}
		return b.Delete([]byte(key))
	})
}

// Keys lists every key in the namespace, sorted.
func (s *Store) Keys(namespace string) ([]string, error) {
	seen := make(map[string]struct{})

	s.mu.RLock()
	prefix := namespace + ":"
	for k := range s.cache {
		if strings.HasPrefix(k, prefix) {
			seen[strings.TrimPrefix(k, prefix)] = struct{}{}
		}
	}
	s.mu.RUnlock()

	if s.db != nil {
		err := s.db.View(func(tx *bolt.Tx) error {
			b := tx.Bucket([]byte(namespace))
			if b == nil {
				return nil
			}
			return b.ForEach(func(k, _ []byte) error {
				seen[string(k)] = struct{}{}
				return nil
			})
		})
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
		}
	}

	keys := make([]string, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

// Clear wipes a namespace (memory and disk).
func (s *Store) Clear(namespace string) error {
	s.mu.Lock()
	prefix := namespace + ":"
	for k := range s.cache {
		if strings.HasPrefix(k, prefix) {
			delete(s.cache, k)
		}
	}
	s.mu.Unlock()

	if s.db == nil {
		return nil
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		err := tx.DeleteBucket([]byte(namespace))
		if errors.Is(err, bolt.ErrBucketNotFound) {
			return nil
		}
		return err
	})
}

func encode(data []byte) ([]byte, error) {
	if len(data) < compressThreshold {
		return append([]byte{encodingRaw}, data...), nil
	}

	var buf bytes.Buffer
	buf.WriteByte(encodingLZ4)
	zw := lz4.NewWriter(&buf)
	if _, err := zw.Write(data); err != nil {
		return nil, fmt.Errorf("lz4 compress: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("lz4 compress: %w", err)
	}
	return buf.Bytes(), nil
}

func decode(stored []byte) ([]byte, error) {
	if len(stored) == 0 {
		return nil, errors.New("empty value")
	}
	switch stored[0] {
	case encodingRaw:
		return stored[1:], nil
	case encodingLZ4:
		return io.ReadAll(lz4.NewReader(bytes.NewReader(stored[1:])))
	default:
		return nil, fmt.Errorf("unknown encoding %d", stored[0])
	}
}
