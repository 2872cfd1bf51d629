package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache is a Redis wrapper that degrades to a no-op when Redis is not
// reachable. Every cached value can be recomputed from the in-memory graph,
// so a missing cache must never fail a request; reads report a miss and
// writes are dropped, with a single warning logged.
//
// Report caching keys on the graph revision, so stale entries are never
// served: a write to the graph changes the revision and with it the key,
// and old entries simply age out through their TTL.
type Cache struct {
	client *redis.Client
	logger *log.Logger

	warned atomic.Bool
}

func New(logger *log.Logger) *Cache {
	host := strings.TrimSpace(os.Getenv("REDIS_HOST"))
	if host == "" {
		host = "localhost"
	}
	port := strings.TrimSpace(os.Getenv("REDIS_PORT"))
	if port == "" {
		port = "6379"
	}
	pass := strings.TrimSpace(os.Getenv("REDIS_PASSWORD"))

	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", host, port),
		Password: pass,
		DB:       0,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		if logger != nil {
			logger.Printf("[Cache] Redis unavailable, bypassing cache: %v", err)
		}
		_ = client.Close()
		return &Cache{client: nil, logger: logger}
	}

	return &Cache{client: client, logger: logger}
}

func (c *Cache) bypassed() bool {
	return c == nil || c.client == nil
}

// Enabled reports whether a live Redis backs this cache.
func (c *Cache) Enabled() bool {
	return !c.bypassed()
}

func (c *Cache) warnOnce(err error) {
	if c == nil || c.logger == nil {
		return
	}
	if c.warned.CompareAndSwap(false, true) {
		c.logger.Printf("[Cache] Redis unavailable, bypassing cache: %v", err)
	}
}

func (c *Cache) Ping(ctx context.Context) error {
	if c.bypassed() {
		return errors.New("redis unavailable")
	}
	return c.client.Ping(ctx).Err()
}

// GetJSON reads key into out. The bool reports whether the key was present;
// an unreachable Redis is a miss, not an error.
func (c *Cache) GetJSON(ctx context.Context, key string, out any) (bool, error) {
	if c.bypassed() {
		return false, nil
	}
	b, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		c.warnOnce(err)
		return false, nil
	}
	if len(b) == 0 {
		return false, nil
	}
	if err := json.Unmarshal(b, out); err != nil {
		return false, err
	}
	return true, nil
}

func (c *Cache) SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error {
	if c.bypassed() {
		return nil
	}
	if ttl <= 0 {
		ttl = DefaultTTL()
	}
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if err := c.client.Set(ctx, key, b, ttl).Err(); err != nil {
		c.warnOnce(err)
	}
	return nil
}

func (c *Cache) Delete(ctx context.Context, key string) error {
	if c.bypassed() {
		return nil
	}
	if err := c.client.Del(ctx, key).Err(); err != nil {
		c.warnOnce(err)
	}
	return nil
}

// SetIfNotExists is the cheap distributed lock used to keep replicas from
// running the decay sweep at the same time. Without Redis it reports the
// lock as taken-by-us so a single node still sweeps.
func (c *Cache) SetIfNotExists(ctx context.Context, key string, value string, ttl time.Duration) (bool, error) {
	if c.bypassed() {
		return true, nil
	}
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	ok, err := c.client.SetNX(ctx, key, value, ttl).Result()
	if err != nil {
		c.warnOnce(err)
		return true, nil
	}
	return ok, nil
}

func DefaultTTL() time.Duration {
	raw := strings.TrimSpace(os.Getenv("REDIS_TTL"))
	if raw == "" {
		return 600 * time.Second
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return 600 * time.Second
	}
	return time.Duration(v) * time.Second
}
