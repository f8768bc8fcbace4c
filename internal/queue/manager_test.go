package queue

import (
	"errors"
	"math/rand/v2"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llehouerou/cadence/internal/playlist"
)

func tracks(ids ...int64) []playlist.Track {
	result := make([]playlist.Track, len(ids))
	for i, id := range ids {
		result[i] = playlist.Track{ID: id, Path: "/music/" + string(rune('a'+id)) + ".mp3"}
	}
	return result
}

func ids(ts []playlist.Track) []int64 {
	result := make([]int64, len(ts))
	for i, t := range ts {
		result[i] = t.ID
	}
	return result
}

func newTestManager(t *testing.T, opts ...Option) *Manager {
	t.Helper()
	opts = append([]Option{WithRand(rand.New(rand.NewPCG(1, 2)))}, opts...)
	m := New(nil, opts...)
	t.Cleanup(func() { _ = m.Close() })
	return m
}

// recorder captures every callback in order.
type recorder struct {
	mu     sync.Mutex
	events []string
	last   Snapshot
}

func (r *recorder) OnQueueChanged(playing, original []playlist.Track) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, "queue")
	r.last.Playing = playing
	r.last.Original = original
}

func (r *recorder) OnCurrentPositionChanged(position int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, "position")
	r.last.Position = position
}

func (r *recorder) OnShuffleModeChanged(mode ShuffleMode) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, "shuffle")
	r.last.Shuffle = mode
}

func (r *recorder) OnRepeatModeChanged(mode RepeatMode) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, "repeat")
	r.last.Repeat = mode
}

func (r *recorder) take() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	events := r.events
	r.events = nil
	return events
}

func TestOpenQueue(t *testing.T) {
	tests := []struct {
		name     string
		tracks   []playlist.Track
		start    int
		wantPos  int
		wantIDs  []int64
		wantPlay bool
	}{
		{"valid start", tracks(1, 2, 3), 1, 1, []int64{1, 2, 3}, true},
		{"first", tracks(1, 2, 3), 0, 0, []int64{1, 2, 3}, true},
		{"negative start clamps to first", tracks(1, 2), -5, 0, []int64{1, 2}, true},
		{"start past end clamps to last", tracks(1, 2), 9, 1, []int64{1, 2}, true},
		{"empty with start", nil, 3, -1, []int64{}, false},
		{"empty with -1", nil, -1, -1, []int64{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			transport := &fakeTransport{}
			m := newTestManager(t, WithTransport(transport))
			m.OpenQueue(tracks(7, 8, 9), 2, false)
			require.NoError(t, m.SetShuffleMode(ShuffleOn))

			m.OpenQueue(tt.tracks, tt.start, true)

			assert.Equal(t, tt.wantIDs, ids(m.PlayingQueue()))
			assert.Equal(t, tt.wantIDs, ids(m.OriginalQueue()))
			assert.Equal(t, tt.wantPos, m.CurrentPosition())
			assert.Equal(t, ShuffleNone, m.ShuffleMode())
			if tt.wantPlay {
				require.Len(t, transport.played(), 1)
				assert.Equal(t, tt.wantIDs[tt.wantPos], transport.played()[0].ID)
			} else {
				assert.Empty(t, transport.played())
			}
		})
	}
}

func TestOpenQueue_CopiesInput(t *testing.T) {
	m := newTestManager(t)
	in := tracks(1, 2, 3)
	m.OpenQueue(in, 0, false)

	in[0] = playlist.Track{ID: 99}
	out := m.PlayingQueue()
	out[1] = playlist.Track{ID: 98}

	assert.Equal(t, []int64{1, 2, 3}, ids(m.PlayingQueue()))
}

func TestOpenAndShuffleQueue(t *testing.T) {
	m := newTestManager(t)
	in := tracks(1, 2, 3, 4, 5, 6)

	m.OpenAndShuffleQueue(in, 3, false)

	assert.Equal(t, ids(in), ids(m.OriginalQueue()))
	assert.ElementsMatch(t, ids(in), ids(m.PlayingQueue()))
	assert.Equal(t, ShuffleOn, m.ShuffleMode())
	current, ok := m.CurrentTrack()
	require.True(t, ok)
	assert.Equal(t, int64(4), current.ID)
}

func TestOpenAndShuffleQueue_OutOfRangeStart(t *testing.T) {
	m := newTestManager(t)
	m.OpenAndShuffleQueue(tracks(1, 2, 3), -1, false)
	assert.Equal(t, 0, m.CurrentPosition())

	m.OpenAndShuffleQueue(tracks(1, 2, 3), 10, false)
	assert.Equal(t, 0, m.CurrentPosition())

	m.OpenAndShuffleQueue(nil, 0, false)
	assert.Equal(t, -1, m.CurrentPosition())
}

func TestOpenAndShuffleQueue_Uniform(t *testing.T) {
	const rounds = 20000
	m := newTestManager(t)
	in := tracks(1, 2, 3, 4)

	// counts[track][position]
	counts := make(map[int64][]int)
	for _, id := range ids(in) {
		counts[id] = make([]int, len(in))
	}
	for range rounds {
		m.OpenAndShuffleQueue(in, 0, false)
		for pos, tr := range m.PlayingQueue() {
			counts[tr.ID][pos]++
		}
	}

	want := float64(rounds) / float64(len(in))
	for id, perPos := range counts {
		for pos, n := range perPos {
			assert.InDelta(t, want, float64(n), want*0.06, "track %d at position %d", id, pos)
		}
	}
}

func TestPlayNext(t *testing.T) {
	m := newTestManager(t)
	m.OpenQueue(tracks(24, 25, 26), 0, false) // X, Y, Z

	require.NoError(t, m.PlayNext(tracks(1, 2)...)) // A, B

	assert.Equal(t, []int64{24, 1, 2, 25, 26}, ids(m.PlayingQueue()))
	assert.Equal(t, []int64{24, 1, 2, 25, 26}, ids(m.OriginalQueue()))
	assert.Equal(t, 0, m.CurrentPosition())
	current, _ := m.CurrentTrack()
	assert.Equal(t, int64(24), current.ID)
}

func TestPlayNext_ShuffledAppendsToOriginal(t *testing.T) {
	m := newTestManager(t)
	m.OpenAndShuffleQueue(tracks(1, 2, 3, 4), 0, false)
	before := m.Snapshot()

	require.NoError(t, m.PlayNext(tracks(9)...))

	after := m.Snapshot()
	assert.Equal(t, before.Position, after.Position)
	assert.Equal(t, int64(9), after.Playing[after.Position+1].ID)
	assert.Equal(t, []int64{1, 2, 3, 4, 9}, ids(after.Original))
}

func TestPlayNext_EmptyQueueSelectsFirst(t *testing.T) {
	m := newTestManager(t)

	require.NoError(t, m.PlayNext(tracks(1, 2)...))

	assert.Equal(t, []int64{1, 2}, ids(m.PlayingQueue()))
	assert.Equal(t, 0, m.CurrentPosition())
}

func TestPlayNext_NoTracks(t *testing.T) {
	m := newTestManager(t)
	assert.ErrorIs(t, m.PlayNext(), ErrNoTracks)
	assert.ErrorIs(t, m.Enqueue(), ErrNoTracks)
	assert.ErrorIs(t, m.PlayNow(), ErrNoTracks)
}

func TestPlayNow(t *testing.T) {
	transport := &fakeTransport{}
	m := newTestManager(t, WithTransport(transport))
	m.OpenQueue(tracks(1, 2, 3), 1, false)

	require.NoError(t, m.PlayNow(tracks(7, 8)...))

	assert.Equal(t, []int64{1, 2, 7, 8, 3}, ids(m.PlayingQueue()))
	assert.Equal(t, 2, m.CurrentPosition())
	require.Len(t, transport.played(), 1)
	assert.Equal(t, int64(7), transport.played()[0].ID)
}

func TestEnqueue(t *testing.T) {
	m := newTestManager(t)
	m.OpenQueue(tracks(1, 2), 1, false)

	require.NoError(t, m.Enqueue(tracks(3, 4)...))

	assert.Equal(t, []int64{1, 2, 3, 4}, ids(m.PlayingQueue()))
	assert.Equal(t, []int64{1, 2, 3, 4}, ids(m.OriginalQueue()))
	assert.Equal(t, 1, m.CurrentPosition())
}

func TestRemoveAt(t *testing.T) {
	tests := []struct {
		name    string
		queue   []int64
		pos     int
		remove  int
		wantIDs []int64
		wantPos int
	}{
		{"current in middle", []int64{1, 2, 3}, 1, 1, []int64{1, 3}, 1},
		{"before current", []int64{1, 2, 3}, 2, 0, []int64{2, 3}, 1},
		{"after current", []int64{1, 2, 3}, 0, 2, []int64{1, 2}, 0},
		{"current is last", []int64{1, 2, 3}, 2, 2, []int64{1, 2}, 1},
		{"only track", []int64{1}, 0, 0, []int64{}, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestManager(t)
			m.OpenQueue(tracks(tt.queue...), tt.pos, false)

			require.NoError(t, m.RemoveAt(tt.remove))

			assert.Equal(t, tt.wantIDs, ids(m.PlayingQueue()))
			assert.Equal(t, tt.wantIDs, ids(m.OriginalQueue()))
			assert.Equal(t, tt.wantPos, m.CurrentPosition())
		})
	}
}

func TestRemoveAt_OutOfRange(t *testing.T) {
	m := newTestManager(t)
	m.OpenQueue(tracks(1, 2, 3), 1, false)
	rec := &recorder{}
	m.AddObserver(rec)

	assert.ErrorIs(t, m.RemoveAt(-1), ErrIndexOutOfRange)
	assert.ErrorIs(t, m.RemoveAt(3), ErrIndexOutOfRange)

	assert.Equal(t, []int64{1, 2, 3}, ids(m.PlayingQueue()))
	assert.Equal(t, 1, m.CurrentPosition())
	assert.Empty(t, rec.take())
}

func TestRemoveAt_ShuffledRemovesSameEntryFromOriginal(t *testing.T) {
	m := newTestManager(t)
	// Duplicates: the same track queued twice.
	in := tracks(1, 2, 1, 3)
	m.OpenAndShuffleQueue(in, 0, false)

	removed := m.PlayingQueue()[2]
	require.NoError(t, m.RemoveAt(2))

	s := m.Snapshot()
	assert.Len(t, s.Playing, 3)
	assert.ElementsMatch(t, ids(s.Playing), ids(s.Original))
	want := ids(in)
	want = removeFirst(want, removed.ID)
	assert.ElementsMatch(t, want, ids(s.Original))
}

func removeFirst(xs []int64, v int64) []int64 {
	for i, x := range xs {
		if x == v {
			return append(xs[:i:i], xs[i+1:]...)
		}
	}
	return xs
}

func TestMove(t *testing.T) {
	tests := []struct {
		name     string
		pos      int
		from, to int
		wantIDs  []int64
		wantPos  int
	}{
		{"move current forward", 0, 0, 2, []int64{2, 3, 1, 4}, 2},
		{"move over current backward", 1, 3, 0, []int64{4, 1, 2, 3}, 2},
		{"move from before to after current", 1, 0, 2, []int64{2, 3, 1, 4}, 0},
		{"move unrelated", 0, 2, 3, []int64{1, 2, 4, 3}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestManager(t)
			m.OpenQueue(tracks(1, 2, 3, 4), tt.pos, false)
			current, _ := m.CurrentTrack()

			require.NoError(t, m.Move(tt.from, tt.to))

			assert.Equal(t, tt.wantIDs, ids(m.PlayingQueue()))
			assert.Equal(t, tt.wantIDs, ids(m.OriginalQueue()))
			assert.Equal(t, tt.wantPos, m.CurrentPosition())
			after, _ := m.CurrentTrack()
			assert.Equal(t, current, after)
		})
	}
}

func TestMove_OutOfRange(t *testing.T) {
	m := newTestManager(t)
	m.OpenQueue(tracks(1, 2), 0, false)
	assert.ErrorIs(t, m.Move(0, 2), ErrIndexOutOfRange)
	assert.ErrorIs(t, m.Move(-1, 0), ErrIndexOutOfRange)
}

func TestJumpTo(t *testing.T) {
	m := newTestManager(t)
	m.OpenQueue(tracks(1, 2, 3), 0, false)
	rec := &recorder{}
	m.AddObserver(rec)

	require.NoError(t, m.JumpTo(2))
	assert.Equal(t, 2, m.CurrentPosition())
	assert.Equal(t, []string{"position"}, rec.take())

	require.NoError(t, m.JumpTo(2))
	assert.Empty(t, rec.take(), "same position does not notify")

	assert.ErrorIs(t, m.JumpTo(3), ErrIndexOutOfRange)
	assert.Equal(t, 2, m.CurrentPosition())
}

func TestClear(t *testing.T) {
	m := newTestManager(t)
	m.OpenQueue(tracks(1, 2), 1, false)

	m.Clear()

	assert.Empty(t, m.PlayingQueue())
	assert.Empty(t, m.OriginalQueue())
	assert.Equal(t, -1, m.CurrentPosition())
	_, ok := m.CurrentTrack()
	assert.False(t, ok)
}

func TestShuffle_RoundTrip(t *testing.T) {
	m := newTestManager(t)
	m.OpenQueue(tracks(1, 2, 3, 4, 5, 6, 7, 8), 5, false)
	before, _ := m.CurrentTrack()

	require.NoError(t, m.SetShuffleMode(ShuffleOn))
	assert.ElementsMatch(t, []int64{1, 2, 3, 4, 5, 6, 7, 8}, ids(m.PlayingQueue()))
	during, _ := m.CurrentTrack()
	assert.Equal(t, before, during)

	require.NoError(t, m.SetShuffleMode(ShuffleNone))
	assert.Equal(t, ids(m.OriginalQueue()), ids(m.PlayingQueue()))
	assert.Equal(t, 5, m.CurrentPosition())
}

func TestShuffle_RoundTripWithDuplicates(t *testing.T) {
	m := newTestManager(t)
	m.OpenQueue(tracks(1, 2, 1, 2, 1), 2, false)

	require.NoError(t, m.SetShuffleMode(ShuffleOn))
	require.NoError(t, m.SetShuffleMode(ShuffleNone))

	// Relocation follows the queued slot, not the first matching track.
	assert.Equal(t, 2, m.CurrentPosition())
}

func TestShuffle_SetSameModeTwice(t *testing.T) {
	m := newTestManager(t)
	m.OpenQueue(tracks(1, 2, 3), 0, false)
	rec := &recorder{}
	m.AddObserver(rec)

	require.NoError(t, m.SetShuffleMode(ShuffleNone))
	first := m.PlayingQueue()
	require.NoError(t, m.SetShuffleMode(ShuffleNone))

	assert.Equal(t, first, m.PlayingQueue())
	assert.Empty(t, rec.take())

	require.NoError(t, m.SetShuffleMode(ShuffleOn))
	rec.take()
	require.NoError(t, m.SetShuffleMode(ShuffleOn))
	assert.Empty(t, rec.take())
}

func TestShuffle_Invalid(t *testing.T) {
	m := newTestManager(t)
	assert.ErrorIs(t, m.SetShuffleMode(ShuffleMode(7)), ErrInvalidMode)
	assert.ErrorIs(t, m.SetRepeatMode(RepeatMode(-1)), ErrInvalidMode)
}

func TestToggleShuffle(t *testing.T) {
	m := newTestManager(t)
	m.OpenQueue(tracks(1, 2, 3), 0, false)

	assert.Equal(t, ShuffleOn, m.ToggleShuffle())
	assert.Equal(t, ShuffleNone, m.ToggleShuffle())
	assert.Equal(t, []int64{1, 2, 3}, ids(m.PlayingQueue()))
}

func TestRepeatMode(t *testing.T) {
	m := newTestManager(t)
	m.OpenQueue(tracks(1, 2), 0, false)
	rec := &recorder{}
	m.AddObserver(rec)

	require.NoError(t, m.SetRepeatMode(RepeatAll))
	assert.Equal(t, []string{"repeat"}, rec.take())
	assert.Equal(t, []int64{1, 2}, ids(m.PlayingQueue()))

	assert.Equal(t, RepeatOne, m.CycleRepeatMode())
	assert.Equal(t, RepeatNone, m.CycleRepeatMode())
	assert.Equal(t, RepeatAll, m.CycleRepeatMode())
}

func TestAdvance(t *testing.T) {
	tests := []struct {
		name    string
		repeat  RepeatMode
		pos     int
		dir     Direction
		wantPos int
		wantErr error
	}{
		{"none forward", RepeatNone, 0, Forward, 1, nil},
		{"none at end", RepeatNone, 2, Forward, 2, ErrEndOfQueue},
		{"none at start", RepeatNone, 0, Backward, 0, ErrStartOfQueue},
		{"all wraps forward", RepeatAll, 2, Forward, 0, nil},
		{"all wraps backward", RepeatAll, 0, Backward, 2, nil},
		{"one holds", RepeatOne, 1, Forward, 1, nil},
		{"one holds backward", RepeatOne, 0, Backward, 0, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestManager(t)
			m.OpenQueue(tracks(1, 2, 3), tt.pos, false)
			require.NoError(t, m.SetRepeatMode(tt.repeat))

			track, err := m.Advance(tt.dir)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
				assert.Equal(t, m.PlayingQueue()[tt.wantPos], track)
			}
			assert.Equal(t, tt.wantPos, m.CurrentPosition())
		})
	}
}

func TestAdvance_EmptyQueue(t *testing.T) {
	m := newTestManager(t)
	_, err := m.Advance(Forward)
	assert.ErrorIs(t, err, ErrEmptyQueue)
}

func TestSkip_RepeatOneMoves(t *testing.T) {
	transport := &fakeTransport{}
	m := newTestManager(t, WithTransport(transport))
	m.OpenQueue(tracks(1, 2, 3), 2, false)
	require.NoError(t, m.SetRepeatMode(RepeatOne))

	track, err := m.Skip(Forward)

	require.NoError(t, err)
	assert.Equal(t, int64(1), track.ID)
	assert.Equal(t, 0, m.CurrentPosition())
	assert.Equal(t, []int64{1}, ids(transport.played()))
}

func TestSkip_TransportFailureKeepsPosition(t *testing.T) {
	transport := &fakeTransport{err: errors.New("no device")}
	m := newTestManager(t, WithTransport(transport))
	m.OpenQueue(tracks(1, 2), 0, false)

	_, err := m.Skip(Forward)

	require.NoError(t, err)
	assert.Equal(t, 1, m.CurrentPosition())
}

func TestHasNextPrevious(t *testing.T) {
	m := newTestManager(t)
	assert.False(t, m.HasNext())
	assert.False(t, m.HasPrevious())

	m.OpenQueue(tracks(1, 2), 0, false)
	assert.True(t, m.HasNext())
	assert.False(t, m.HasPrevious())

	require.NoError(t, m.SetRepeatMode(RepeatAll))
	assert.True(t, m.HasPrevious())
}

func TestReplaceQueues(t *testing.T) {
	m := newTestManager(t)

	m.ReplaceQueues(tracks(3, 1, 2), tracks(1, 2, 3))
	assert.Equal(t, []int64{3, 1, 2}, ids(m.PlayingQueue()))
	assert.Equal(t, []int64{1, 2, 3}, ids(m.OriginalQueue()))
	assert.Equal(t, ShuffleOn, m.ShuffleMode())
	assert.Equal(t, 0, m.CurrentPosition())

	// Turning shuffle off returns to the backed up original order.
	require.NoError(t, m.SetShuffleMode(ShuffleNone))
	assert.Equal(t, []int64{1, 2, 3}, ids(m.PlayingQueue()))
	assert.Equal(t, 2, m.CurrentPosition())
}

func TestReplaceQueues_MismatchedOriginal(t *testing.T) {
	m := newTestManager(t)

	m.ReplaceQueues(tracks(1, 2, 3), tracks(1, 4))

	assert.Equal(t, []int64{1, 2, 3}, ids(m.OriginalQueue()))
	assert.Equal(t, ShuffleNone, m.ShuffleMode())
}

func TestRefreshTracks(t *testing.T) {
	m := newTestManager(t)
	m.OpenQueue(tracks(1, 2, 3, 4), 2, false)

	m.RefreshTracks(func(t playlist.Track) (playlist.Track, bool) {
		switch t.ID {
		case 1:
			return playlist.Track{}, false
		case 3:
			t.Title = "Renamed"
			return t, true
		}
		return t, true
	})

	s := m.Snapshot()
	assert.Equal(t, []int64{2, 3, 4}, ids(s.Playing))
	assert.Equal(t, []int64{2, 3, 4}, ids(s.Original))
	assert.Equal(t, 1, s.Position)
	current, _ := s.Current()
	assert.Equal(t, "Renamed", current.Title)
}

func TestRefreshTracks_NoChangeDoesNotNotify(t *testing.T) {
	m := newTestManager(t)
	m.OpenQueue(tracks(1, 2), 0, false)
	rec := &recorder{}
	m.AddObserver(rec)

	m.RefreshTracks(func(t playlist.Track) (playlist.Track, bool) { return t, true })

	assert.Empty(t, rec.take())
}

func TestUndoRedo(t *testing.T) {
	m := newTestManager(t)
	m.OpenQueue(tracks(1, 2), 0, false)
	require.NoError(t, m.Enqueue(tracks(3)...))
	require.NoError(t, m.RemoveAt(0))

	require.True(t, m.Undo())
	assert.Equal(t, []int64{1, 2, 3}, ids(m.PlayingQueue()))

	require.True(t, m.Undo())
	assert.Equal(t, []int64{1, 2}, ids(m.PlayingQueue()))

	require.True(t, m.Redo())
	assert.Equal(t, []int64{1, 2, 3}, ids(m.PlayingQueue()))

	require.NoError(t, m.Enqueue(tracks(4)...))
	assert.False(t, m.Redo(), "new mutation drops redo states")
}

func TestUndo_NothingToUndo(t *testing.T) {
	m := newTestManager(t)
	assert.False(t, m.Undo())
	assert.False(t, m.Redo())
}

func TestUndo_KeepsRepeatMode(t *testing.T) {
	m := newTestManager(t)
	m.OpenQueue(tracks(1, 2), 0, false)
	require.NoError(t, m.SetRepeatMode(RepeatAll))
	require.NoError(t, m.Enqueue(tracks(3)...))

	require.True(t, m.Undo())
	assert.Equal(t, RepeatAll, m.RepeatMode())
}

func TestUndo_KeepsCurrentTrack(t *testing.T) {
	m := newTestManager(t)
	m.OpenQueue(tracks(1, 2, 3), 0, false)
	_, err := m.Advance(Forward)
	require.NoError(t, err)
	_, err = m.Advance(Forward)
	require.NoError(t, err)
	require.NoError(t, m.Enqueue(tracks(4)...))

	require.True(t, m.Undo())
	assert.Equal(t, []int64{1, 2, 3}, ids(m.PlayingQueue()))
	current, ok := m.CurrentTrack()
	require.True(t, ok)
	assert.Equal(t, int64(3), current.ID)

	require.True(t, m.Redo())
	current, _ = m.CurrentTrack()
	assert.Equal(t, int64(3), current.ID)
}

func TestUndo_CurrentTrackGoneUsesRecordedPosition(t *testing.T) {
	m := newTestManager(t)
	m.OpenQueue(tracks(1, 2), 1, false)
	require.NoError(t, m.PlayNow(tracks(3)...))

	require.True(t, m.Undo())
	assert.Equal(t, 1, m.CurrentPosition())
}

func TestView_SeesCommittedState(t *testing.T) {
	m := newTestManager(t)
	m.OpenQueue(tracks(1, 2), 1, false)

	var seen Snapshot
	m.View(func(s Snapshot) { seen = s })

	assert.Equal(t, 1, seen.Position)
	assert.Equal(t, []int64{1, 2}, ids(seen.Playing))
}
