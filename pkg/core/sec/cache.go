package sec

import (
	"os"
	"path/filepath"
	"strings"
	"time"
)

// DefaultCacheTTL is how long a cached SEC response stays fresh.
const DefaultCacheTTL = 24 * time.Hour

// FileCache is a read-through file cache for SEC API responses, keyed by
// endpoint+identifier. Entries older than the TTL are considered stale but
// are kept on disk so a failed live fetch can still fall back to them.
type FileCache struct {
	dir string
	ttl time.Duration
}

// NewFileCache creates a cache rooted at dir. An empty dir defaults to
// .cache/sec in the current working directory.
func NewFileCache(dir string, ttl time.Duration) *FileCache {
	if dir == "" {
		dir = filepath.Join(".cache", "sec")
	}
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	os.MkdirAll(dir, 0755)
	return &FileCache{dir: dir, ttl: ttl}
}

// Dir returns the cache directory path.
func (c *FileCache) Dir() string {
	return c.dir
}

func (c *FileCache) path(key string) string {
	// Keys embed identifiers; keep them filesystem-safe.
	key = strings.NewReplacer("/", "_", ":", "_").Replace(key)
	return filepath.Join(c.dir, key)
}

// Get returns a fresh cache entry, or ok=false when missing or stale.
func (c *FileCache) Get(key string) ([]byte, bool) {
	p := c.path(key)
	info, err := os.Stat(p)
	if err != nil {
		return nil, false
	}
	if time.Since(info.ModTime()) > c.ttl {
		return nil, false
	}
	data, err := os.ReadFile(p)
	if err != nil {
		return nil, false
	}
	return data, true
}

// GetStale returns a cache entry regardless of age. Used as the fallback
// path when a live fetch fails.
func (c *FileCache) GetStale(key string) ([]byte, bool) {
	data, err := os.ReadFile(c.path(key))
	if err != nil {
		return nil, false
	}
	return data, true
}

// Put stores a cache entry.
func (c *FileCache) Put(key string, data []byte) error {
	return os.WriteFile(c.path(key), data, 0644)
}
