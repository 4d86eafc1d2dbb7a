package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ppiankov/brandlens/internal/model"
)

// DiskCache stores one JSON file per answer under <dir>/<provider>/, so a
// single provider's answers can be inspected or dropped on their own
type DiskCache struct {
	dir string
	ttl time.Duration
}

// NewDiskCache creates a disk cache rooted at dir
func NewDiskCache(dir string, ttl time.Duration) *DiskCache {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &DiskCache{
		dir: dir,
		ttl: ttl,
	}
}

type diskEntry struct {
	Answer
	ExpiresAt time.Time `json:"expires_at"`
}

// Get returns the answer stored under key. Expired or unreadable files miss
// and are removed.
func (c *DiskCache) Get(key Key) (Answer, bool) {
	path := c.path(key)

	data, err := os.ReadFile(path)
	if err != nil {
		return Answer{}, false
	}

	var entry diskEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		_ = os.Remove(path)
		return Answer{}, false
	}

	if time.Now().After(entry.ExpiresAt) {
		_ = os.Remove(path)
		return Answer{}, false
	}

	return entry.Answer, true
}

// Put writes the answer through a temp file so readers never see half an entry
func (c *DiskCache) Put(answer Answer, ttl time.Duration) error {
	if ttl == 0 {
		ttl = c.ttl
	}

	data, err := json.MarshalIndent(diskEntry{Answer: answer, ExpiresAt: time.Now().Add(ttl)}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal entry: %w", err)
	}

	path := c.path(answer.Key())
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".answer-*")
	if err != nil {
		return fmt.Errorf("create cache file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("write cache file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("write cache file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("write cache file: %w", err)
	}
	return nil
}

// Clear removes the provider's directory, or the whole cache for ""
func (c *DiskCache) Clear(provider model.ProviderID) error {
	if provider == "" {
		return os.RemoveAll(c.dir)
	}
	return os.RemoveAll(filepath.Join(c.dir, string(provider)))
}

func (c *DiskCache) path(key Key) string {
	return filepath.Join(c.dir, string(key.Provider), key.Hash()+".json")
}
