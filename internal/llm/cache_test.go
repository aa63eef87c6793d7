package llm

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestResponseCache(t *testing.T) {
	t.Run("basic operations", func(t *testing.T) {
		cache := newResponseCache(5 * time.Minute)

		_, found := cache.get(Request{Prompt: "missing"})
		assert.False(t, found)

		key := Request{Prompt: "p", Temperature: 0.8}
		cache.set(key, "text")

		got, found := cache.get(key)
		assert.True(t, found)
		assert.Equal(t, "text", got)
		assert.Equal(t, 1, cache.size())
	})

	t.Run("expiration", func(t *testing.T) {
		now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		cache := newResponseCache(time.Minute)
		cache.now = func() time.Time { return now }

		cache.set(Request{Prompt: "old"}, "a")
		_, found := cache.get(Request{Prompt: "old"})
		assert.True(t, found)

		now = now.Add(2 * time.Minute)
		_, found = cache.get(Request{Prompt: "old"})
		assert.False(t, found)
		assert.Zero(t, cache.size(), "expired entries are dropped on access")

		cache.now = func() time.Time { return now.Add(-time.Hour) }
		cache.set(Request{Prompt: "stale"}, "b")
		cache.now = func() time.Time { return now }
		cache.set(Request{Prompt: "fresh"}, "c")
		assert.Equal(t, 1, cache.size(), "expired entries are dropped on insert")
	})

	t.Run("concurrent access", func(t *testing.T) {
		cache := newResponseCache(time.Minute)

		var wg sync.WaitGroup
		for i := 0; i < 10; i++ {
			i := i
			wg.Add(1)
			go func() {
				defer wg.Done()
				key := Request{Prompt: fmt.Sprintf("p%d", i%3)}
				for j := 0; j < 100; j++ {
					cache.set(key, "v")
					_, _ = cache.get(key)
				}
			}()
		}
		wg.Wait()

		assert.Equal(t, 3, cache.size())
	})
}
