package cache

import (
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/ppiankov/brandlens/internal/model"
)

// MemoryCache keeps answers in process; they are lost on exit
type MemoryCache struct {
	cache *gocache.Cache
}

// NewMemoryCache creates a memory cache whose entries live for defaultTTL
func NewMemoryCache(defaultTTL time.Duration, cleanupInterval time.Duration) *MemoryCache {
	return &MemoryCache{
		cache: gocache.New(defaultTTL, cleanupInterval),
	}
}

// Get returns the answer stored under key
func (c *MemoryCache) Get(key Key) (Answer, bool) {
	val, found := c.cache.Get(key.String())
	if !found {
		return Answer{}, false
	}
	answer, ok := val.(Answer)
	return answer, ok
}

// Put stores the answer; a zero ttl uses the cache default
func (c *MemoryCache) Put(answer Answer, ttl time.Duration) error {
	if ttl == 0 {
		ttl = gocache.DefaultExpiration
	}
	c.cache.Set(answer.Key().String(), answer, ttl)
	return nil
}

// Clear drops the provider's answers, or all of them for ""
func (c *MemoryCache) Clear(provider model.ProviderID) error {
	if provider == "" {
		c.cache.Flush()
		return nil
	}

	prefix := string(provider) + "/"
	for k := range c.cache.Items() {
		if strings.HasPrefix(k, prefix) {
			c.cache.Delete(k)
		}
	}
	return nil
}

