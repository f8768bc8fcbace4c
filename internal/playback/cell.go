// Package playback republishes queue state as independently observable
// latest-value cells, for consumers that only care about the current value.
package playback

import (
	"context"
	"slices"
	"sync"
)

// Cell holds a value and broadcasts every update to its subscribers.
// One producer, any number of consumers, each draining at its own pace.
// Intermediate values may be skipped; the latest value never is.
type Cell[T any] struct {
	mu    sync.Mutex
	value T
	subs  []*Subscription[T]
}

// NewCell creates a cell holding initial.
func NewCell[T any](initial T) *Cell[T] {
	return &Cell[T]{value: initial}
}

// Get returns the current value.
func (c *Cell[T]) Get() T {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.value
}

// Set stores v and offers it to every subscriber.
func (c *Cell[T]) Set(v T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.value = v
	for _, s := range c.subs {
		s.offer(v)
	}
}

// Subscribe registers a new subscriber. The current value is delivered
// immediately, so a late subscriber does not wait for the next change.
func (c *Cell[T]) Subscribe() *Subscription[T] {
	s := newSubscription(c.remove)
	c.mu.Lock()
	defer c.mu.Unlock()
	c.subs = append(c.subs, s)
	s.offer(c.value)
	return s
}

// Subscribers returns the number of open subscriptions.
func (c *Cell[T]) Subscribers() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.subs)
}

// Close closes every subscription.
func (c *Cell[T]) Close() {
	c.mu.Lock()
	subs := c.subs
	c.subs = nil
	c.mu.Unlock()

	for _, s := range subs {
		s.Close()
	}
}

func (c *Cell[T]) remove(s *Subscription[T]) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.subs = slices.DeleteFunc(c.subs, func(x *Subscription[T]) bool { return x == s })
}

// Watch calls fn with every value delivered to a new subscription of c until
// ctx is done. fn runs on the calling goroutine.
func Watch[T any](ctx context.Context, c *Cell[T], fn func(T)) {
	sub := c.Subscribe()
	defer sub.Close()
	for {
		select {
		case <-ctx.Done():
			return
		case <-sub.Done:
			return
		case v := <-sub.Updates:
			fn(v)
		}
	}
}
