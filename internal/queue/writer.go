package queue

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/llehouerou/cadence/internal/errmsg"
)

// writer persists snapshots on its own goroutine, in commit order.
// Snapshots waiting to be written coalesce into the newest one, so the store
// always holds the state of some prefix of the committed mutations.
type writer struct {
	store    Store
	logger   zerolog.Logger
	debounce time.Duration

	mu      sync.Mutex
	idle    *sync.Cond
	pending *Snapshot
	queued  uint64 // sequence of the newest enqueued snapshot
	written uint64 // sequence of the newest persisted (or failed) snapshot
	closed  bool

	wake    chan struct{}
	urgent  chan struct{}
	quit    chan struct{}
	stopped chan struct{}
}

func newWriter(store Store, logger zerolog.Logger, debounce time.Duration) *writer {
	w := &writer{
		store:    store,
		logger:   logger,
		debounce: debounce,
		wake:     make(chan struct{}, 1),
		urgent:   make(chan struct{}, 1),
		quit:     make(chan struct{}),
		stopped:  make(chan struct{}),
	}
	w.idle = sync.NewCond(&w.mu)
	go w.run()
	return w
}

// enqueue schedules s for persistence.
func (w *writer) enqueue(s Snapshot) {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.pending = &s
	w.queued++
	w.mu.Unlock()

	select {
	case w.wake <- struct{}{}:
	default:
	}
}

// flush blocks until every enqueued snapshot has been handled.
func (w *writer) flush() {
	w.mu.Lock()
	if w.written < w.queued {
		select {
		case w.urgent <- struct{}{}:
		default:
		}
	}
	for w.written < w.queued {
		w.idle.Wait()
	}
	w.mu.Unlock()
}

// close writes what is pending and stops the goroutine.
func (w *writer) close() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		<-w.stopped
		return
	}
	w.closed = true
	w.mu.Unlock()

	close(w.quit)
	<-w.stopped
}

func (w *writer) run() {
	defer close(w.stopped)

	for {
		urgent := false
		select {
		case <-w.wake:
		case <-w.urgent:
			urgent = true
		case <-w.quit:
			w.drain()
			return
		}

		if w.debounce > 0 && !urgent {
			timer := time.NewTimer(w.debounce)
			select {
			case <-timer.C:
			case <-w.urgent:
				timer.Stop()
			case <-w.quit:
				timer.Stop()
				w.drain()
				return
			}
		}

		w.drain()
	}
}

func (w *writer) drain() {
	for {
		w.mu.Lock()
		s, seq := w.pending, w.queued
		w.pending = nil
		w.mu.Unlock()

		if s == nil {
			return
		}

		w.write(*s)

		w.mu.Lock()
		w.written = seq
		w.idle.Broadcast()
		w.mu.Unlock()
	}
}

func (w *writer) write(s Snapshot) {
	var err error
	if ss, ok := w.store.(SnapshotStore); ok {
		err = ss.SaveSnapshot(s)
	} else {
		err = w.store.Save(s.Playing, s.Original)
	}
	if err != nil {
		// Memory stays authoritative; the next commit retries with newer state.
		w.logger.Warn().
			Err(err).
			Int("tracks", len(s.Playing)).
			Msg(errmsg.Format(errmsg.OpQueueSave, err))
	}
}
