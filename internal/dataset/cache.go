package dataset

import (
	"context"
	"log/slog"
	"sync"

	"github.com/corpfin/dashboard/internal/models"
)

// Cache holds the loaded dataset for the lifetime of the process. The file is
// read on first use and again only after Invalidate or Swap.
type Cache struct {
	mu      sync.RWMutex
	loader  *Loader
	path    string
	data    *models.Dataset
	version int64

	subMu       sync.Mutex
	subscribers []func(version int64)
}

// NewCache creates a cache over the CSV at path.
func NewCache(loader *Loader, path string) *Cache {
	if loader == nil {
		loader = NewLoader(nil)
	}
	return &Cache{loader: loader, path: path}
}

// Get returns the cached dataset, loading it if needed.
func (c *Cache) Get(ctx context.Context) (*models.Dataset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.mu.RLock()
	data := c.data
	c.mu.RUnlock()
	if data != nil {
		return data, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// Another caller may have loaded while we waited for the lock
	if c.data != nil {
		return c.data, nil
	}

	ds, err := c.loader.LoadFile(c.path)
	if err != nil {
		return nil, err
	}
	c.version++
	ds.Version = c.version
	c.data = ds

	slog.Info("dataset loaded",
		"path", c.path,
		"rows", len(ds.Records),
		"skipped", len(ds.Errors),
		"version", ds.Version)
	return ds, nil
}

// Invalidate drops the cached dataset so the next Get reloads it.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	c.data = nil
	version := c.version
	c.mu.Unlock()

	c.notify(version)
}

// Swap points the cache at another file and drops the cached dataset.
func (c *Cache) Swap(path string) {
	c.mu.Lock()
	c.path = path
	c.data = nil
	version := c.version
	c.mu.Unlock()

	slog.Info("dataset swapped", "path", path)
	c.notify(version)
}

// Path returns the file the cache reads from.
func (c *Cache) Path() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.path
}

// Version returns the load generation of the most recent successful load.
// It is 0 before the first load.
func (c *Cache) Version() int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.version
}

// Loaded reports whether a dataset is currently held in memory.
func (c *Cache) Loaded() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.data != nil
}

// Subscribe registers fn to be called after every Invalidate or Swap with the
// version that was dropped.
func (c *Cache) Subscribe(fn func(version int64)) {
	c.subMu.Lock()
	defer c.subMu.Unlock()
	c.subscribers = append(c.subscribers, fn)
}

func (c *Cache) notify(version int64) {
	c.subMu.Lock()
	subs := make([]func(int64), len(c.subscribers))
	copy(subs, c.subscribers)
	c.subMu.Unlock()

	for _, fn := range subs {
		fn(version)
	}
}
