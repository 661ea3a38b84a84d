package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
)

// FileCache stores each entry as a JSON file under a base directory.
type FileCache struct {
	baseDir string
	now     func() time.Time
}

// NewFileCache creates a cache in the OS cache directory.
func NewFileCache(appName string) (*FileCache, error) {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		return nil, errors.Wrap(err, "locating user cache directory")
	}
	return NewFileCacheWithDir(filepath.Join(cacheDir, appName))
}

// NewFileCacheWithDir creates a cache rooted at dir.
func NewFileCacheWithDir(dir string) (*FileCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "creating cache directory %s", dir)
	}
	return &FileCache{baseDir: dir, now: time.Now}, nil
}

func (c *FileCache) Get(key string, value any) error {
	data, err := os.ReadFile(c.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return ErrCacheMiss
		}
		return errors.Wrap(err, "reading cache entry")
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		return errors.Wrap(err, "decoding cache entry")
	}
	if entry.expiredAt(c.now()) {
		_ = c.Delete(key)
		return ErrCacheMiss
	}
	if err := json.Unmarshal(entry.Data, value); err != nil {
		return errors.Wrap(err, "decoding cached value")
	}
	return nil
}

func (c *FileCache) Set(key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return errors.Wrap(err, "encoding value")
	}

	now := c.now()
	entry := Entry{Data: data, CreatedAt: now}
	if ttl > 0 {
		expiresAt := now.Add(ttl)
		entry.ExpiresAt = &expiresAt
	}
	raw, err := json.Marshal(entry)
	if err != nil {
		return errors.Wrap(err, "encoding cache entry")
	}

	path := c.path(key)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrap(err, "creating cache subdirectory")
	}
	// write then rename so readers never see a partial entry
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return errors.Wrap(err, "writing cache entry")
	}
	return errors.Wrap(os.Rename(tmp, path), "committing cache entry")
}

func (c *FileCache) Delete(key string) error {
	if err := os.Remove(c.path(key)); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "deleting cache entry")
	}
	return nil
}

// Close is a no-op for the file cache.
func (c *FileCache) Close() error {
	return nil
}

// path hashes the key into a two-level layout to keep names short and
// directories small.
func (c *FileCache) path(key string) string {
	sum := sha256.Sum256([]byte(key))
	h := hex.EncodeToString(sum[:])
	return filepath.Join(c.baseDir, h[:2], h[2:]+".json")
}
