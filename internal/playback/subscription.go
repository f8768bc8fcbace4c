package playback

import "sync"

// Subscription delivers the latest value of a Cell.
//
// Updates has capacity one and only ever holds the newest value: a slow
// consumer skips intermediate values but always ends up with the latest one.
type Subscription[T any] struct {
	Updates <-chan T
	Done    <-chan struct{}

	// Internal write channels
	ch     chan T
	doneCh chan struct{}

	mu     sync.Mutex
	closed bool
	detach func(*Subscription[T])
}

// newSubscription creates a subscription that calls detach once on Close.
func newSubscription[T any](detach func(*Subscription[T])) *Subscription[T] {
	s := &Subscription[T]{
		ch:     make(chan T, 1),
		doneCh: make(chan struct{}),
		detach: detach,
	}
	s.Updates = s.ch
	s.Done = s.doneCh
	return s
}

// offer replaces whatever value is buffered with v (non-blocking).
func (s *Subscription[T]) offer(v T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	for {
		select {
		case s.ch <- v:
			return
		default:
		}
		// Full: drop the stale value. The consumer may have taken it already.
		select {
		case <-s.ch:
		default:
		}
	}
}

// Close detaches the subscription from its cell and closes Done.
// Safe to call more than once.
func (s *Subscription[T]) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	close(s.doneCh)
	s.mu.Unlock()

	if s.detach != nil {
		s.detach(s)
	}
}

// Closed reports whether Close was called.
func (s *Subscription[T]) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}
