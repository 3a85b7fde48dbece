package registry

import (
	"os"
	"strconv"
	"time"

	"github.com/pkg/errors"
	bolt "go.etcd.io/bbolt"
)

var cacheBucket = []byte("metadata-files")

// Cache is an optional on-disk cache of repository metadata file contents
// keyed by path and mtime, grounded on the teacher's bolt-backed source
// cache (golang-dep's internal/gps/source_cache_bolt.go). It holds raw file
// bytes, not parsed documents, and only LoadAvailable accepts one;
// LoadInstalled always reads its files directly. It is a pure performance
// layer: a cache miss or staleness always falls back to a fresh
// os.ReadFile, so its presence or absence never changes what
// LoadAvailable returns.
type Cache struct {
	db *bolt.DB
}

// OpenCache opens (creating if necessary) a bbolt database at path.
func OpenCache(path string) (*Cache, error) {
	db, err := bolt.Open(path, 0o644, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, errors.Wrapf(err, "opening registry cache %q", path)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(cacheBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, errors.Wrap(err, "initializing registry cache bucket")
	}
	return &Cache{db: db}, nil
}

// Close releases the underlying bbolt database.
func (c *Cache) Close() error {
	return c.db.Close()
}

// Bytes returns the contents of the file at path, serving from cache when
// the file's mtime matches a previously cached entry and reading through
// (then repopulating the cache) otherwise.
func (c *Cache) Bytes(path string) ([]byte, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	stamp := strconv.FormatInt(fi.ModTime().UnixNano(), 10)

	var cached []byte
	err = c.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(cacheBucket)
		entry := b.Get([]byte(path))
		if entry == nil || len(entry) < len(stamp)+1 || string(entry[:len(stamp)]) != stamp {
			return nil
		}
		cached = append([]byte(nil), entry[len(stamp)+1:]...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if cached != nil {
		return cached, nil
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	entry := append([]byte(stamp+"\x00"), b...)
	if err := c.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(cacheBucket).Put([]byte(path), entry)
	}); err != nil {
		return nil, errors.Wrap(err, "updating registry cache")
	}

	return b, nil
}
