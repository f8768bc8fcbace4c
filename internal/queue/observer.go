package queue

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/llehouerou/cadence/internal/playlist"
)

// Observer reacts to committed queue mutations.
//
// Callbacks run synchronously on the mutating goroutine while the mutation
// lock is held: they must return promptly and must not call mutating Manager
// methods. Reads (Snapshot, CurrentPosition, ...) are safe.
//
// Observers are compared by identity, so implementations must be comparable
// (pointer types in practice).
type Observer interface {
	OnQueueChanged(playing, original []playlist.Track)
	OnCurrentPositionChanged(position int)
	OnShuffleModeChanged(mode ShuffleMode)
	OnRepeatModeChanged(mode RepeatMode)
}

// ObserverFuncs is an Observer built from optional callbacks.
// Register it by pointer.
type ObserverFuncs struct {
	QueueChanged    func(playing, original []playlist.Track)
	PositionChanged func(position int)
	ShuffleChanged  func(mode ShuffleMode)
	RepeatChanged   func(mode RepeatMode)
}

var _ Observer = (*ObserverFuncs)(nil)

func (f *ObserverFuncs) OnQueueChanged(playing, original []playlist.Track) {
	if f.QueueChanged != nil {
		f.QueueChanged(playing, original)
	}
}

func (f *ObserverFuncs) OnCurrentPositionChanged(position int) {
	if f.PositionChanged != nil {
		f.PositionChanged(position)
	}
}

func (f *ObserverFuncs) OnShuffleModeChanged(mode ShuffleMode) {
	if f.ShuffleChanged != nil {
		f.ShuffleChanged(mode)
	}
}

func (f *ObserverFuncs) OnRepeatModeChanged(mode RepeatMode) {
	if f.RepeatChanged != nil {
		f.RepeatChanged(mode)
	}
}

// change lists the facets that a mutation modified.
type change struct {
	queue    bool
	position bool
	shuffle  bool
	repeat   bool
}

func (c change) any() bool {
	return c.queue || c.position || c.shuffle || c.repeat
}

// Registry is an ordered set of observers. Registration order is
// notification order. There are no weak references: callers unregister
// before disposing of an observer.
type Registry struct {
	mu        sync.Mutex
	observers []Observer

	slow   time.Duration
	logger zerolog.Logger
}

// NewRegistry creates a registry. Callbacks slower than slow are logged;
// zero disables the check.
func NewRegistry(logger zerolog.Logger, slow time.Duration) *Registry {
	return &Registry{slow: slow, logger: logger}
}

// Add registers o. Adding an already registered observer is a no-op.
// Returns true if o was newly registered.
func (r *Registry) Add(o Observer) bool {
	if o == nil {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.observers {
		if existing == o {
			return false
		}
	}
	r.observers = append(r.observers, o)
	return true
}

// Remove unregisters o. Removing an unknown observer is a no-op.
// Returns true if o was registered.
func (r *Registry) Remove(o Observer) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, existing := range r.observers {
		if existing == o {
			r.observers = append(r.observers[:i:i], r.observers[i+1:]...)
			return true
		}
	}
	return false
}

// Len returns the number of registered observers.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.observers)
}

func (r *Registry) list() []Observer {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Observer(nil), r.observers...)
}

// notify delivers c to every observer, in registration order, using the
// final values from s. The observer list is copied first so callbacks may
// unregister themselves.
func (r *Registry) notify(c change, s *Snapshot) {
	for i, o := range r.list() {
		start := time.Now()
		if c.queue {
			o.OnQueueChanged(s.Playing, s.Original)
		}
		if c.position {
			o.OnCurrentPositionChanged(s.Position)
		}
		if c.shuffle {
			o.OnShuffleModeChanged(s.Shuffle)
		}
		if c.repeat {
			o.OnRepeatModeChanged(s.Repeat)
		}
		if elapsed := time.Since(start); r.slow > 0 && elapsed > r.slow {
			r.logger.Warn().
				Int("observer", i).
				Dur("elapsed", elapsed).
				Dur("limit", r.slow).
				Msg("slow queue observer")
		}
	}
}
