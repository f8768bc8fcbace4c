// Package nowplaying follows the current track and keeps per-track lookups
// (lyrics, favorite state) in step with it.
package nowplaying

import (
	"context"
	"sync"
)

// Slot runs at most one lookup per key and publishes a result only while
// its key is still current. Starting a lookup for a new key cancels the
// previous one.
type Slot[K comparable, V any] struct {
	mu      sync.Mutex
	key     K
	active  bool
	gen     uint64
	cancel  context.CancelFunc
	value   V
	ready   bool
	publish func(key K, v V, err error)
	wg      sync.WaitGroup
}

// NewSlot creates a slot. publish, if not nil, is called with every result
// that is accepted. It runs with the slot locked and must not call back
// into the slot.
func NewSlot[K comparable, V any](publish func(key K, v V, err error)) *Slot[K, V] {
	return &Slot[K, V]{publish: publish}
}

// Start cancels the lookup in flight, makes key current and runs fn for it
// in a new goroutine.
func (s *Slot[K, V]) Start(ctx context.Context, key K, fn func(ctx context.Context, key K) (V, error)) {
	ctx, cancel := context.WithCancel(ctx)

	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	s.gen++
	gen := s.gen
	s.key = key
	s.active = true
	s.cancel = cancel
	var zero V
	s.value = zero
	s.ready = false
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer cancel()
		v, err := fn(ctx, key)
		s.finish(gen, key, v, err)
	}()
}

func (s *Slot[K, V]) finish(gen uint64, key K, v V, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		return
	}
	s.cancel = nil
	if err == nil {
		s.value = v
		s.ready = true
	}
	if s.publish != nil {
		s.publish(key, v, err)
	}
}

// Get returns the result for the current key, if it arrived.
func (s *Slot[K, V]) Get() (key K, v V, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.key, s.value, s.ready
}

// Key returns the current key. ok is false before the first Start and
// after Reset.
func (s *Slot[K, V]) Key() (key K, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.key, s.active
}

// Reset cancels the lookup in flight and forgets the current key.
func (s *Slot[K, V]) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.gen++
	var zeroK K
	var zeroV V
	s.key = zeroK
	s.value = zeroV
	s.active = false
	s.ready = false
}

// Wait blocks until every lookup goroutine has returned.
func (s *Slot[K, V]) Wait() {
	s.wg.Wait()
}
