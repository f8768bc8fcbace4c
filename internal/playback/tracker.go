package playback

import (
	"github.com/llehouerou/cadence/internal/playlist"
	"github.com/llehouerou/cadence/internal/queue"
)

// QueueState is the value of the tracker's queue cell.
type QueueState struct {
	Playing  []playlist.Track
	Original []playlist.Track
}

// Source is what a Tracker follows. *queue.Manager implements it.
type Source interface {
	AddObserver(o queue.Observer) bool
	RemoveObserver(o queue.Observer) bool
	View(fn func(queue.Snapshot))
}

var _ Source = (*queue.Manager)(nil)

// Tracker mirrors queue state into four independent cells.
type Tracker struct {
	Queue    *Cell[QueueState]
	Position *Cell[int]
	Shuffle  *Cell[queue.ShuffleMode]
	Repeat   *Cell[queue.RepeatMode]
}

var _ queue.Observer = (*Tracker)(nil)

// NewTracker creates a tracker holding the empty queue state.
func NewTracker() *Tracker {
	return &Tracker{
		Queue:    NewCell(QueueState{}),
		Position: NewCell(-1),
		Shuffle:  NewCell(queue.ShuffleNone),
		Repeat:   NewCell(queue.RepeatNone),
	}
}

// Register starts following src. Returns false if already registered.
func (t *Tracker) Register(src Source) bool {
	return src.AddObserver(t)
}

// Unregister stops following src.
func (t *Tracker) Unregister(src Source) bool {
	return src.RemoveObserver(t)
}

// Init pulls the current state of src into every cell.
// It runs while src cannot commit, so a concurrent mutation is either
// fully included or delivered afterwards through the observer callbacks.
func (t *Tracker) Init(src Source) {
	src.View(func(s queue.Snapshot) {
		t.Queue.Set(QueueState{Playing: s.Playing, Original: s.Original})
		t.Position.Set(s.Position)
		t.Shuffle.Set(s.Shuffle)
		t.Repeat.Set(s.Repeat)
	})
}

// Attach registers with src and initializes from it.
func (t *Tracker) Attach(src Source) {
	t.Register(src)
	t.Init(src)
}

// Close closes every subscription of every cell.
func (t *Tracker) Close() {
	t.Queue.Close()
	t.Position.Close()
	t.Shuffle.Close()
	t.Repeat.Close()
}

func (t *Tracker) OnQueueChanged(playing, original []playlist.Track) {
	t.Queue.Set(QueueState{Playing: playing, Original: original})
}

func (t *Tracker) OnCurrentPositionChanged(position int) {
	t.Position.Set(position)
}

func (t *Tracker) OnShuffleModeChanged(mode queue.ShuffleMode) {
	t.Shuffle.Set(mode)
}

func (t *Tracker) OnRepeatModeChanged(mode queue.RepeatMode) {
	t.Repeat.Set(mode)
}
