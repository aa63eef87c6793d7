package llm

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// cacheEntry is a generated response and when it stops being served.
type cacheEntry struct {
	expiry time.Time
	text   string
}

// responseCache is a TTL cache of generated text keyed by request.
// Expired entries are dropped lazily on access and on insert.
type responseCache struct {
	entries map[Request]cacheEntry
	now     func() time.Time
	ttl     time.Duration
	mu      sync.Mutex
}

func newResponseCache(ttl time.Duration) *responseCache {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &responseCache{
		entries: make(map[Request]cacheEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (c *responseCache) get(key Request) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return "", false
	}
	if c.now().After(entry.expiry) {
		delete(c.entries, key)
		return "", false
	}
	return entry.text, true
}

func (c *responseCache) set(key Request, text string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for k, entry := range c.entries {
		if now.After(entry.expiry) {
			delete(c.entries, k)
		}
	}
	c.entries[key] = cacheEntry{text: text, expiry: now.Add(c.ttl)}
}

func (c *responseCache) size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// cachingClient serves repeated identical requests from a responseCache.
// Failures are never cached.
type cachingClient struct {
	next  Client
	cache *responseCache
}

func (c *cachingClient) Generate(ctx context.Context, req Request) (string, error) {
	if text, ok := c.cache.get(req); ok {
		return text, nil
	}

	text, err := c.next.Generate(ctx, req)
	if err != nil {
		return "", err
	}
	c.cache.set(req, text)
	return text, nil
}

// limitedClient waits for a rate limiter token before each call.
type limitedClient struct {
	next    Client
	limiter *rateLimiter
}

func (c *limitedClient) Generate(ctx context.Context, req Request) (string, error) {
	if err := c.limiter.wait(ctx); err != nil {
		return "", fmt.Errorf("rate limit: %w", err)
	}
	return c.next.Generate(ctx, req)
}
