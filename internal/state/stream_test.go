package state

import (
	"context"
	"runtime"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func receive[T any](t *testing.T, ch <-chan T) T {
	t.Helper()
	select {
	case v, ok := <-ch:
		require.True(t, ok, "channel closed unexpectedly")
		return v
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for value")
	}
	var zero T
	return zero
}

func TestStream_SubscribeReceivesLatest(t *testing.T) {
	s := NewStream[int]()
	defer s.Close()

	_, ok := s.Value()
	assert.False(t, ok)

	s.Publish(1)
	s.Publish(2)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch := s.Subscribe(ctx)
	assert.Equal(t, 2, receive(t, ch))

	s.Publish(3)
	assert.Equal(t, 3, receive(t, ch))

	v, ok := s.Value()
	assert.True(t, ok)
	assert.Equal(t, 3, v)
}

func TestStream_SlowSubscriberSeesOnlyNewest(t *testing.T) {
	s := NewStream[string]()
	defer s.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ch := s.Subscribe(ctx)

	for _, v := range []string{"a", "b", "c"} {
		s.Publish(v)
	}

	assert.Equal(t, "c", receive(t, ch))
	select {
	case v := <-ch:
		t.Fatalf("unexpected buffered value %q", v)
	default:
	}
}

func TestStream_EmptySubscribeWaits(t *testing.T) {
	s := NewStream[int]()
	defer s.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ch := s.Subscribe(ctx)

	select {
	case v := <-ch:
		t.Fatalf("got %d before anything was published", v)
	default:
	}

	s.Publish(7)
	assert.Equal(t, 7, receive(t, ch))
}

func TestStream_CancelClosesSubscription(t *testing.T) {
	s := NewStream[int]()
	defer s.Close()

	ctx, cancel := context.WithCancel(context.Background())
	ch := s.Subscribe(ctx)
	cancel()

	require.Eventually(t, func() bool { return s.Subscribers() == 0 }, time.Second, 5*time.Millisecond)
	_, ok := <-ch
	assert.False(t, ok)

	s.Publish(1)
}

func TestStream_Close(t *testing.T) {
	s := NewStream[int]()
	ch := s.Subscribe(context.Background())

	s.Close()
	s.Close()

	_, ok := <-ch
	assert.False(t, ok)

	late := s.Subscribe(context.Background())
	_, ok = <-late
	assert.False(t, ok)

	s.Publish(5)
	_, has := s.Value()
	assert.False(t, has)
}

func TestStream_SubscriptionsHoldNoGoroutines(t *testing.T) {
	s := NewStream[int]()

	before := runtime.NumGoroutine()
	for i := 0; i < 100; i++ {
		s.Subscribe(context.Background())
	}
	assert.Less(t, runtime.NumGoroutine()-before, 10)
	assert.Equal(t, 100, s.Subscribers())

	ctx, cancel := context.WithCancel(context.Background())
	ch := s.Subscribe(ctx)
	s.Close()
	cancel()

	_, ok := <-ch
	assert.False(t, ok)
	assert.Zero(t, s.Subscribers())
}

func TestStream_ConcurrentSubscribers(t *testing.T) {
	s := NewStream[int]()
	defer s.Close()

	const readers = 8
	const last = 100

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var wg sync.WaitGroup
	results := make([]int, readers)
	for i := 0; i < readers; i++ {
		i := i
		ch := s.Subscribe(ctx)
		wg.Add(1)
		go func() {
			defer wg.Done()
			prev := 0
			for v := range ch {
				assert.Greater(t, v, prev, "values arrive in publish order")
				prev = v
				if v == last {
					results[i] = v
					return
				}
			}
		}()
	}

	for v := 1; v <= last; v++ {
		s.Publish(v)
	}
	wg.Wait()

	for _, got := range results {
		assert.Equal(t, last, got)
	}
}
