// Package cache keeps provider answers so reruns of a brief with unchanged
// questions do not pay for the same completion twice.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/ppiankov/brandlens/internal/model"
)

// Key identifies one answer: the same question asked of the same model
type Key struct {
	Provider model.ProviderID
	Model    string
	Question string
}

// Hash is the provider-independent part of the key
func (k Key) Hash() string {
	sum := sha256.Sum256([]byte(k.Model + "\x00" + k.Question))
	return "v1-" + hex.EncodeToString(sum[:])
}

// String is "<provider>/<hash>", which keeps each provider's answers together
func (k Key) String() string {
	return string(k.Provider) + "/" + k.Hash()
}

// Answer is a cached provider answer. Only real answers are cached, never
// error sentinels.
type Answer struct {
	Provider model.ProviderID `json:"provider"`
	Model    string           `json:"model,omitempty"`
	Question string           `json:"question"`
	Text     string           `json:"text"`
	CachedAt time.Time        `json:"cached_at"`
}

// Key returns the key the answer is stored under
func (a Answer) Key() Key {
	return Key{Provider: a.Provider, Model: a.Model, Question: a.Question}
}

// Cache stores answers. A zero ttl means the backend default.
type Cache interface {
	Get(key Key) (Answer, bool)
	Put(answer Answer, ttl time.Duration) error

	// Clear drops every answer of provider, or everything when provider is ""
	Clear(provider model.ProviderID) error
}

// New builds the cache selected by cfg. It returns nil when caching is disabled.
func New(cfg model.CacheConfig) (Cache, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	switch strings.ToLower(cfg.Backend) {
	case "", "memory":
		return NewMemoryCache(cfg.MemoryTTL, 10*time.Minute), nil
	case "disk":
		return NewDiskCache(cfg.Dir, cfg.DiskTTL), nil
	case "layered":
		return NewLayeredCache(cfg.MemoryTTL, cfg.Dir, cfg.DiskTTL), nil
	case "redis":
		if cfg.RedisAddr == "" {
			return nil, fmt.Errorf("redis cache requires redis_addr")
		}
		return NewLayered(NewMemoryCache(cfg.MemoryTTL, 10*time.Minute), NewRedisCache(cfg.RedisAddr, cfg.DiskTTL)), nil
	default:
		return nil, fmt.Errorf("unknown cache backend: %s (supported: memory, disk, layered, redis)", cfg.Backend)
	}
}
