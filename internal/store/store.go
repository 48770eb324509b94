package store

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	bolt "go.etcd.io/bbolt"
)

// Bucket names
var (
	bucketImages = []byte("images") // key -> poster bytes
	bucketMeta   = []byte("meta")   // key -> 8 byte unix nano of last write
)

// ImageStore implements domain.ImageStore using BoltDB.
// With an empty directory it is disabled: reads miss and writes are dropped.
type ImageStore struct {
	db  *bolt.DB
	now func() time.Time

	mu sync.Mutex // serialises prune against writes
}

// NewImageStore opens (or creates) the poster database under baseCacheDir.
// serverURL scopes the database so switching servers starts clean.
func NewImageStore(baseCacheDir, serverURL string) (*ImageStore, error) {
	if baseCacheDir == "" {
		return &ImageStore{now: time.Now}, nil
	}

	dir := baseCacheDir
	if strings.HasPrefix(dir, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		dir = filepath.Join(home, dir[1:])
	}
	if serverURL != "" {
		dir = filepath.Join(dir, hashServerURL(serverURL))
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	dbPath := filepath.Join(dir, "posters.db")
	db, err := bolt.Open(dbPath, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{bucketImages, bucketMeta} {
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

	return &ImageStore{db: db, now: time.Now}, nil
}

func hashServerURL(serverURL string) string {
	normalized := strings.TrimRight(strings.ToLower(serverURL), "/")
	hash := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(hash[:6])
}

func imageKey(url string) []byte {
	hash := sha256.Sum256([]byte(url))
	return []byte(hex.EncodeToString(hash[:16]))
}

// Enabled reports whether the store persists anything
func (s *ImageStore) Enabled() bool {
	return s.db != nil
}

func (s *ImageStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// GetImage returns the stored bytes for url
func (s *ImageStore) GetImage(url string) ([]byte, bool) {
	if s.db == nil {
		return nil, false
	}

	var data []byte
	s.db.View(func(tx *bolt.Tx) error {
		if v := tx.Bucket(bucketImages).Get(imageKey(url)); v != nil {
			data = make([]byte, len(v))
			copy(data, v)
		}
		return nil
	})
	return data, data != nil
}

// SaveImage stores data for url, replacing any previous copy
func (s *ImageStore) SaveImage(url string, data []byte) error {
	if s.db == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := imageKey(url)
	var ts [8]byte
	binary.BigEndian.PutUint64(ts[:], uint64(s.now().UnixNano()))

	return s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.Bucket(bucketImages).Put(key, data); err != nil {
			return err
		}
		return tx.Bucket(bucketMeta).Put(key, ts[:])
	})
}

// Prune deletes the oldest images until at most maxEntries remain.
// It returns the number removed.
func (s *ImageStore) Prune(maxEntries int) (int, error) {
	if s.db == nil || maxEntries < 0 {
		return 0, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	type aged struct {
		key []byte
		ts  uint64
	}

	removed := 0
	err := s.db.Update(func(tx *bolt.Tx) error {
		meta := tx.Bucket(bucketMeta)
		images := tx.Bucket(bucketImages)

		var entries []aged
		c := meta.Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			var ts uint64
			if len(v) == 8 {
				ts = binary.BigEndian.Uint64(v)
			}
			entries = append(entries, aged{key: append([]byte(nil), k...), ts: ts})
		}
		if len(entries) <= maxEntries {
			return nil
		}

		sort.Slice(entries, func(i, j int) bool { return entries[i].ts < entries[j].ts })
		for _, e := range entries[:len(entries)-maxEntries] {
			if err := images.Delete(e.key); err != nil {
				return err
			}
			if err := meta.Delete(e.key); err != nil {
				return err
			}
			removed++
		}
		return nil
	})
	return removed, err
}

// Count returns the number of stored images
func (s *ImageStore) Count() int {
	if s.db == nil {
		return 0
	}
	n := 0
	s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(bucketImages).Cursor()
		for k, _ := c.First(); k != nil; k, _ = c.Next() {
			n++
		}
		return nil
	})
	return n
}

// InvalidateAll wipes every stored image
func (s *ImageStore) InvalidateAll() error {
	if s.db == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{bucketImages, bucketMeta} {
			if err := tx.DeleteBucket(bucket); err != nil {
				return err
			}
			if _, err := tx.CreateBucket(bucket); err != nil {
				return err
			}
		}
		return nil
	})
}
