package mpris

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/llehouerou/cadence/internal/playlist"
	"github.com/llehouerou/cadence/internal/queue"
)

// Emitter pushes property changes to MPRIS clients.
// events.EventHandler.Player implements it.
type Emitter interface {
	OnTitle() error
	OnOptions() error
}

const (
	titleChanged = 1 << iota
	optionsChanged
)

// relay turns queue notifications into PropertiesChanged signals. Emission
// happens on the goroutine running run, never inside an observer callback.
type relay struct {
	emitter Emitter
	logger  zerolog.Logger

	mu      sync.Mutex
	pending int
	wake    chan struct{}
	done    chan struct{}

	observer *queue.ObserverFuncs
}

func newRelay(e Emitter, logger zerolog.Logger) *relay {
	r := &relay{
		emitter: e,
		logger:  logger,
		wake:    make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
	// CanGoNext and CanGoPrevious depend on the position too.
	r.observer = &queue.ObserverFuncs{
		QueueChanged:    func(_, _ []playlist.Track) { r.mark(titleChanged | optionsChanged) },
		PositionChanged: func(int) { r.mark(titleChanged | optionsChanged) },
		ShuffleChanged:  func(queue.ShuffleMode) { r.mark(optionsChanged) },
		RepeatChanged:   func(queue.RepeatMode) { r.mark(optionsChanged) },
	}
	return r
}

func (r *relay) mark(flags int) {
	r.mu.Lock()
	r.pending |= flags
	r.mu.Unlock()
	select {
	case r.wake <- struct{}{}:
	default:
	}
}

// run emits pending changes until stop is closed. Bursts of notifications
// collapse into one signal per property group.
func (r *relay) run(stop <-chan struct{}) {
	defer close(r.done)
	for {
		select {
		case <-stop:
			return
		case <-r.wake:
		}

		r.mu.Lock()
		flags := r.pending
		r.pending = 0
		r.mu.Unlock()

		if flags&titleChanged != 0 {
			r.emit("metadata", r.emitter.OnTitle)
		}
		if flags&optionsChanged != 0 {
			r.emit("options", r.emitter.OnOptions)
		}
	}
}

func (r *relay) emit(what string, fn func() error) {
	if err := fn(); err != nil {
		r.logger.Debug().Err(err).Str("properties", what).Msg("mpris signal not sent")
	}
}
