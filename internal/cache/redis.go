package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ppiankov/brandlens/internal/model"
)

const redisOpTimeout = 2 * time.Second

// RedisCache implements a shared cache backed by Redis, so answers survive
// restarts and are shared across serve instances
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

// NewRedisCache creates a Redis cache for addr (host:port, redis:// prefix allowed)
func NewRedisCache(addr string, ttl time.Duration) *RedisCache {
	addr = strings.TrimPrefix(addr, "redis://")
	return NewRedisCacheWithClient(redis.NewClient(&redis.Options{Addr: addr}), ttl)
}

// NewRedisCacheWithClient wraps an existing client
func NewRedisCacheWithClient(client *redis.Client, ttl time.Duration) *RedisCache {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RedisCache{
		client: client,
		ttl:    ttl,
		prefix: "brandlens:answer:",
	}
}

func (c *RedisCache) key(k Key) string {
	return c.prefix + k.String()
}

// Get returns the answer stored under key. Connection failures count as misses.
func (c *RedisCache) Get(key Key) (Answer, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	data, err := c.client.Get(ctx, c.key(key)).Bytes()
	if err != nil {
		return Answer{}, false
	}

	var answer Answer
	if err := json.Unmarshal(data, &answer); err != nil {
		return Answer{}, false
	}
	return answer, true
}

// Put stores the answer as JSON with the given TTL (the cache default when zero)
func (c *RedisCache) Put(answer Answer, ttl time.Duration) error {
	if ttl == 0 {
		ttl = c.ttl
	}

	data, err := json.Marshal(answer)
	if err != nil {
		return fmt.Errorf("marshal answer: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	if err := c.client.Set(ctx, c.key(answer.Key()), data, ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Clear deletes the provider's keys, or every answer key for ""
func (c *RedisCache) Clear(provider model.ProviderID) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pattern := c.prefix + "*"
	if provider != "" {
		pattern = c.prefix + string(provider) + "/*"
	}

	iter := c.client.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil && !errors.Is(err, redis.Nil) {
			return fmt.Errorf("redis del: %w", err)
		}
	}
	return iter.Err()
}

// Close releases the underlying connection pool
func (c *RedisCache) Close() error {
	return c.client.Close()
}
