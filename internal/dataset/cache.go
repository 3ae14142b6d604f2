package dataset

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"statlab/domain/core"
	"statlab/domain/table"
	"statlab/internal"
)

// Entry is one memoized upload: the parsed table plus upload metadata.
type Entry struct {
	ID         core.DatasetID
	Filename   string
	Table      *table.Table
	Size       int64
	UploadedAt time.Time
}

// Cache memoizes parse results keyed by the exact uploaded byte content.
// Parsing is a pure function of the bytes, so entries never need
// invalidation; there is no eviction at this scale. Concurrent uploads of
// identical content collapse into a single parse.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]*Entry
	group   singleflight.Group
	logger  *internal.Logger
}

// NewCache creates an empty parse cache.
func NewCache() *Cache {
	return &Cache{
		entries: make(map[string]*Entry),
		logger:  internal.DefaultLogger,
	}
}

// Key derives the cache key for uploaded content: the hex SHA-256 of the
// bytes. The key doubles as the dataset's URL handle.
func Key(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

// Put parses the uploaded content, memoizing by content identity. A repeated
// upload of the same bytes returns the already-parsed entry.
func (c *Cache) Put(content []byte, filename string) (string, *Entry, error) {
	key := Key(content)

	v, err, shared := c.group.Do(key, func() (interface{}, error) {
		c.mu.RLock()
		entry, ok := c.entries[key]
		c.mu.RUnlock()
		if ok {
			c.logger.Debug("parse cache hit for %s (%s)", filename, key[:12])
			return entry, nil
		}

		tbl, err := Load(content)
		if err != nil {
			return nil, err
		}

		entry = &Entry{
			ID:         core.DatasetID(core.NewID()),
			Filename:   filename,
			Table:      tbl,
			Size:       int64(len(content)),
			UploadedAt: time.Now(),
		}
		c.mu.Lock()
		c.entries[key] = entry
		c.mu.Unlock()

		c.logger.Info("parsed dataset %s: %d columns, %d rows", filename, tbl.FieldCount(), tbl.RowCount())
		return entry, nil
	})
	if err != nil {
		return "", nil, err
	}
	if shared {
		c.logger.Debug("parse for %s shared with a concurrent upload", key[:12])
	}
	return key, v.(*Entry), nil
}

// Get returns the entry for a content key, if present.
func (c *Cache) Get(key string) (*Entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.entries[key]
	return entry, ok
}

// Len reports how many distinct uploads are cached.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
