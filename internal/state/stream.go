// Package state provides a latest-value broadcast used to push ledger changes
// to whatever is rendering them.
package state

import (
	"context"
	"sync"
)

// Stream holds the most recent value published by a single writer and fans
// it out to any number of subscribers. A subscriber that falls behind skips
// intermediate values and only ever sees the newest one.
type Stream[T any] struct {
	latest T
	subs   map[*subscriber[T]]struct{}
	mu     sync.Mutex
	has    bool
	closed bool
}

type subscriber[T any] struct {
	ch   chan T
	stop func() bool
}

// NewStream creates an empty stream.
func NewStream[T any]() *Stream[T] {
	return &Stream[T]{
		subs: make(map[*subscriber[T]]struct{}),
	}
}

// Publish replaces the latest value and offers it to every subscriber.
// Publishing on a closed stream is a no-op.
func (s *Stream[T]) Publish(v T) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.latest = v
	s.has = true
	for sub := range s.subs {
		offer(sub.ch, v)
	}
}

// offer replaces whatever is buffered in ch with v. Callers hold the stream lock.
func offer[T any](ch chan T, v T) {
	select {
	case <-ch:
	default:
	}
	ch <- v
}

// Value returns the latest value and whether anything has been published.
func (s *Stream[T]) Value() (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.latest, s.has
}

// Subscribe returns a channel that first yields the current value, if any,
// then every later value a reader is fast enough to observe. The channel is
// closed when ctx is done or the stream is closed. No goroutine is held
// for the subscription, so a context that is never canceled costs nothing
// once the stream is closed.
func (s *Stream[T]) Subscribe(ctx context.Context) <-chan T {
	sub := &subscriber[T]{ch: make(chan T, 1)}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		close(sub.ch)
		return sub.ch
	}
	if s.has {
		sub.ch <- s.latest
	}
	s.subs[sub] = struct{}{}
	sub.stop = context.AfterFunc(ctx, func() { s.unsubscribe(sub) })

	return sub.ch
}

func (s *Stream[T]) unsubscribe(sub *subscriber[T]) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.subs[sub]; !ok {
		return
	}
	delete(s.subs, sub)
	close(sub.ch)
}

// Close ends every subscription. Later subscriptions receive a closed channel.
func (s *Stream[T]) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.closed = true
	for sub := range s.subs {
		sub.stop()
		delete(s.subs, sub)
		close(sub.ch)
	}
}

// Subscribers reports how many subscriptions are live.
func (s *Stream[T]) Subscribers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs)
}
