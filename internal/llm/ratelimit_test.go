package llm

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimiter(t *testing.T) {
	t.Run("burst up to capacity", func(t *testing.T) {
		rl := newRateLimiter(10)
		now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		rl.now = func() time.Time { return now }
		rl.lastRefill = now

		for i := 0; i < 10; i++ {
			_, ok := rl.tryAcquire()
			require.True(t, ok)
		}

		delay, ok := rl.tryAcquire()
		assert.False(t, ok)
		assert.InDelta(t, float64(6*time.Second), float64(delay), float64(time.Millisecond))

		now = now.Add(6 * time.Second)
		_, ok = rl.tryAcquire()
		assert.True(t, ok, "one token refills every six seconds at 10/min")
	})

	t.Run("refill never exceeds capacity", func(t *testing.T) {
		rl := newRateLimiter(2)
		now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		rl.now = func() time.Time { return now }
		rl.lastRefill = now

		now = now.Add(time.Hour)
		for i := 0; i < 2; i++ {
			_, ok := rl.tryAcquire()
			require.True(t, ok)
		}
		_, ok := rl.tryAcquire()
		assert.False(t, ok)
	})

	t.Run("context cancellation", func(t *testing.T) {
		rl := newRateLimiter(1)
		require.NoError(t, rl.wait(context.Background()))

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()

		err := rl.wait(ctx)
		require.Error(t, err)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})
}
