// Package remote is the entry point user actions go through to change the
// queue. Every method reports whether it had an effect and never fails
// loudly: problems are logged and reported as false.
package remote

import (
	"errors"
	"math/rand/v2"
	"strconv"
	"sync"

	"github.com/rs/zerolog"

	"github.com/llehouerou/cadence/internal/errmsg"
	"github.com/llehouerou/cadence/internal/playlist"
	"github.com/llehouerou/cadence/internal/queue"
)

// Controller is the queue surface the facade drives. *queue.Manager
// implements it.
type Controller interface {
	OpenQueue(tracks []playlist.Track, start int, startPlaying bool)
	OpenAndShuffleQueue(tracks []playlist.Track, start int, startPlaying bool)
	PlayNow(tracks ...playlist.Track) error
	PlayNext(tracks ...playlist.Track) error
	Enqueue(tracks ...playlist.Track) error
	RemoveAt(index int) error
	Move(from, to int) error
	JumpTo(index int) error
	Skip(dir queue.Direction) (playlist.Track, error)
	SetShuffleMode(mode queue.ShuffleMode) error
	ToggleShuffle() queue.ShuffleMode
	SetRepeatMode(mode queue.RepeatMode) error
	CycleRepeatMode() queue.RepeatMode
	Clear()
	Undo() bool
	Redo() bool
	Len() int
}

var _ Controller = (*queue.Manager)(nil)

// Remote translates user intents into queue operations.
type Remote struct {
	queue  Controller
	logger zerolog.Logger

	rngMu sync.Mutex
	rng   *rand.Rand
}

// Option configures a Remote.
type Option func(*Remote)

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(r *Remote) { r.logger = l }
}

// WithRand sets the source used to pick a random start track.
func WithRand(rng *rand.Rand) Option {
	return func(r *Remote) { r.rng = rng }
}

// New creates a facade over q.
func New(q Controller, opts ...Option) *Remote {
	r := &Remote{queue: q, logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(r)
	}
	if r.rng == nil {
		r.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return r
}

// PlayNow plays tracks right away, keeping the rest of the queue.
// On an empty queue the tracks become the queue.
func (r *Remote) PlayNow(tracks ...playlist.Track) bool {
	if len(tracks) == 0 {
		r.logger.Debug().Msg("play now: no tracks")
		return false
	}
	if r.queue.Len() == 0 {
		r.queue.OpenQueue(tracks, 0, true)
		return true
	}
	return r.check(errmsg.OpPlaybackStart, "", r.queue.PlayNow(tracks...))
}

// PlayNext queues tracks right after the current one.
func (r *Remote) PlayNext(tracks ...playlist.Track) bool {
	return r.check(errmsg.OpQueueAdd, "", r.queue.PlayNext(tracks...))
}

// Enqueue appends tracks to the queue.
func (r *Remote) Enqueue(tracks ...playlist.Track) bool {
	return r.check(errmsg.OpQueueAdd, "", r.queue.Enqueue(tracks...))
}

// RemoveFromQueue removes the track at index.
func (r *Remote) RemoveFromQueue(index int) bool {
	return r.check(errmsg.OpQueueRemove, strconv.Itoa(index), r.queue.RemoveAt(index))
}

// Move moves a queued track.
func (r *Remote) Move(from, to int) bool {
	return r.check(errmsg.OpQueueMove, strconv.Itoa(from), r.queue.Move(from, to))
}

// JumpTo selects the track at index.
func (r *Remote) JumpTo(index int) bool {
	return r.check(errmsg.OpQueueJump, strconv.Itoa(index), r.queue.JumpTo(index))
}

// OpenQueue replaces the queue with tracks. An empty list clears the queue
// and reports false.
func (r *Remote) OpenQueue(tracks []playlist.Track, start int, startPlaying bool) bool {
	r.queue.OpenQueue(tracks, start, startPlaying)
	if len(tracks) == 0 {
		r.logger.Debug().Msg("open queue: no tracks, queue cleared")
		return false
	}
	return true
}

// OpenAndShuffleQueue replaces the queue with tracks in shuffled order,
// starting from a random track.
func (r *Remote) OpenAndShuffleQueue(tracks []playlist.Track, startPlaying bool) bool {
	if len(tracks) == 0 {
		r.queue.OpenQueue(nil, -1, false)
		r.logger.Debug().Msg("shuffle queue: no tracks, queue cleared")
		return false
	}
	r.rngMu.Lock()
	start := r.rng.IntN(len(tracks))
	r.rngMu.Unlock()

	r.queue.OpenAndShuffleQueue(tracks, start, startPlaying)
	return true
}

// Next skips to the next track.
func (r *Remote) Next() bool {
	_, err := r.queue.Skip(queue.Forward)
	return r.checkSkip(err)
}

// Previous skips to the previous track.
func (r *Remote) Previous() bool {
	_, err := r.queue.Skip(queue.Backward)
	return r.checkSkip(err)
}

// SetShuffle sets the shuffle mode.
func (r *Remote) SetShuffle(mode queue.ShuffleMode) bool {
	return r.check(errmsg.OpQueueMode, mode.String(), r.queue.SetShuffleMode(mode))
}

// ToggleShuffle flips the shuffle mode.
func (r *Remote) ToggleShuffle() bool {
	mode := r.queue.ToggleShuffle()
	r.logger.Debug().Stringer("shuffle", mode).Msg("shuffle toggled")
	return true
}

// SetRepeat sets the repeat mode.
func (r *Remote) SetRepeat(mode queue.RepeatMode) bool {
	return r.check(errmsg.OpQueueMode, mode.String(), r.queue.SetRepeatMode(mode))
}

// CycleRepeat moves to the next repeat mode.
func (r *Remote) CycleRepeat() bool {
	mode := r.queue.CycleRepeatMode()
	r.logger.Debug().Stringer("repeat", mode).Msg("repeat cycled")
	return true
}

// Clear empties the queue. Returns false if it was already empty.
func (r *Remote) Clear() bool {
	if r.queue.Len() == 0 {
		return false
	}
	r.queue.Clear()
	return true
}

// Undo reverts the last queue change.
func (r *Remote) Undo() bool {
	return r.queue.Undo()
}

// Redo re-applies the last undone queue change.
func (r *Remote) Redo() bool {
	return r.queue.Redo()
}

func (r *Remote) check(op errmsg.Op, context string, err error) bool {
	switch {
	case err == nil:
		return true
	case errors.Is(err, queue.ErrNoTracks):
		r.logger.Debug().Msg(errmsg.FormatWith(op, context, err))
	default:
		r.logger.Warn().Err(err).Msg(errmsg.FormatWith(op, context, err))
	}
	return false
}

func (r *Remote) checkSkip(err error) bool {
	if err == nil {
		return true
	}
	// Boundaries are expected when repeat is off.
	r.logger.Debug().Err(err).Msg(errmsg.Format(errmsg.OpQueueSkip, err))
	return false
}
