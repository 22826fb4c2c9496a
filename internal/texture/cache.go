// Package texture indexes, decodes and caches diffuse textures.
package texture

import (
	"context"
	"image"
	"runtime"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var defaultTexture = func() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, 1, 1))
	copy(img.Pix, []uint8{255, 255, 255, 255})
	return img
}()

// Default is the shared 1×1 opaque white texture handed out when a
// texture cannot be loaded. Callers must not modify it.
func Default() *image.NRGBA {
	return defaultTexture
}

// Cache is a concurrency-safe texture cache keyed by resolved path.
type Cache struct {
	mu    sync.RWMutex
	items map[string]*image.NRGBA
	// failed IDs that did not resolve, so each warns once
	missing map[string]struct{}
	index   *Index
	log     *zap.Logger
}

// NewCache creates a new texture cache backed by the given index.
func NewCache(index *Index, log *zap.Logger) *Cache {
	if log == nil {
		log = zap.NewNop()
	}
	return &Cache{
		items:   make(map[string]*image.NRGBA),
		missing: make(map[string]struct{}),
		index:   index,
		log:     log,
	}
}

// GetTextureOrDefault never fails. An empty id means untextured and yields
// the default without a warning.
func (c *Cache) GetTextureOrDefault(id string) *image.NRGBA {
	if id == "" {
		return defaultTexture
	}
	path, ok := c.index.ResolvePath(id)
	if !ok {
		c.warnMissing(id)
		return defaultTexture
	}
	return c.load(id, path)
}

func (c *Cache) warnMissing(id string) {
	c.mu.RLock()
	_, seen := c.missing[id]
	c.mu.RUnlock()
	if seen {
		return
	}

	c.mu.Lock()
	_, seen = c.missing[id]
	c.missing[id] = struct{}{}
	c.mu.Unlock()
	if !seen {
		c.log.Warn("texture not found, using default", zap.String("texture", id))
	}
}

func (c *Cache) load(id, path string) *image.NRGBA {
	// Fast path: read lock
	c.mu.RLock()
	if img, exists := c.items[path]; exists {
		c.mu.RUnlock()
		return img
	}
	c.mu.RUnlock()

	// Slow path: load from disk
	img, err := LoadTexture(path)

	// Write lock with double-check
	c.mu.Lock()
	if cached, exists := c.items[path]; exists {
		c.mu.Unlock()
		return cached
	}
	if err != nil {
		img = defaultTexture
	}
	c.items[path] = img
	c.mu.Unlock()

	if err != nil {
		c.log.Warn("texture load failed, using default", zap.String("texture", id), zap.Error(err))
	}
	return img
}

// Preload decodes every indexed texture in parallel. Load failures are
// cached as the default texture and logged; only cancellation is returned.
func (c *Cache) Preload(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for _, path := range c.index.Paths() {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			c.load(path, path)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

// Len returns the number of cached entries, failures included.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}
