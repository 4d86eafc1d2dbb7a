package cache

import (
	"io"
	"time"

	"github.com/ppiankov/brandlens/internal/model"
)

// LayeredCache puts a fast front (memory) over a slower, longer-lived back
// (disk or redis)
type LayeredCache struct {
	front Cache
	back  Cache
}

// NewLayeredCache creates a memory + disk layered cache
func NewLayeredCache(memoryTTL time.Duration, diskDir string, diskTTL time.Duration) *LayeredCache {
	return NewLayered(NewMemoryCache(memoryTTL, 10*time.Minute), NewDiskCache(diskDir, diskTTL))
}

// NewLayered layers any two caches
func NewLayered(front, back Cache) *LayeredCache {
	return &LayeredCache{
		front: front,
		back:  back,
	}
}

// Get checks the front first, then the back, promoting back hits
func (c *LayeredCache) Get(key Key) (Answer, bool) {
	if answer, found := c.front.Get(key); found {
		return answer, true
	}

	if answer, found := c.back.Get(key); found {
		_ = c.front.Put(answer, 0)
		return answer, true
	}

	return Answer{}, false
}

// Put stores the answer in both layers
func (c *LayeredCache) Put(answer Answer, ttl time.Duration) error {
	if err := c.front.Put(answer, ttl); err != nil {
		return err
	}
	return c.back.Put(answer, ttl)
}

// Clear clears both layers and reports the back layer's error
func (c *LayeredCache) Clear(provider model.ProviderID) error {
	_ = c.front.Clear(provider)
	return c.back.Clear(provider)
}

// Close closes whichever layers hold connections
func (c *LayeredCache) Close() error {
	var err error
	for _, layer := range []Cache{c.front, c.back} {
		if closer, ok := layer.(io.Closer); ok {
			if cerr := closer.Close(); cerr != nil && err == nil {
				err = cerr
			}
		}
	}
	return err
}
