package queue

import (
	"bytes"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llehouerou/cadence/internal/playlist"
)

func TestRegistry_AddIsIdempotent(t *testing.T) {
	r := NewRegistry(zerolog.Nop(), 0)
	o := &ObserverFuncs{}

	assert.True(t, r.Add(o))
	assert.False(t, r.Add(o))
	assert.Equal(t, 1, r.Len())

	assert.True(t, r.Remove(o))
	assert.False(t, r.Remove(o))
	assert.Equal(t, 0, r.Len())
}

func TestRegistry_RejectsNil(t *testing.T) {
	r := NewRegistry(zerolog.Nop(), 0)
	assert.False(t, r.Add(nil))
	assert.Equal(t, 0, r.Len())
}

func TestRegistry_DistinctFuncStructs(t *testing.T) {
	r := NewRegistry(zerolog.Nop(), 0)
	assert.True(t, r.Add(&ObserverFuncs{}))
	assert.True(t, r.Add(&ObserverFuncs{}))
	assert.Equal(t, 2, r.Len())
}

func TestRegistry_NotifiesInRegistrationOrder(t *testing.T) {
	m := newTestManager(t)
	var order []string
	for _, name := range []string{"a", "b", "c"} {
		m.AddObserver(&ObserverFuncs{
			QueueChanged: func(_, _ []playlist.Track) { order = append(order, name) },
		})
	}

	m.OpenQueue(tracks(1), 0, false)

	assert.Equal(t, []string{"a", "b", "c"}, order)
}

func TestRegistry_SlowObserverLogged(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	m := newTestManager(t, WithLogger(logger), WithSlowObserverThreshold(time.Millisecond))
	m.AddObserver(&ObserverFuncs{
		QueueChanged: func(_, _ []playlist.Track) { time.Sleep(5 * time.Millisecond) },
	})

	m.OpenQueue(tracks(1), 0, false)

	assert.Contains(t, buf.String(), "slow queue observer")
	assert.Contains(t, buf.String(), `"observer":0`)
}

func TestNotify_OneCallPerFacetInOrder(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Manager)
		want   []string
	}{
		{
			name:   "open",
			mutate: func(m *Manager) { m.OpenQueue(tracks(4, 5), 1, false) },
			want:   []string{"queue", "position"},
		},
		{
			name:   "enqueue",
			mutate: func(m *Manager) { _ = m.Enqueue(tracks(9)...) },
			want:   []string{"queue", "position"},
		},
		{
			name:   "jump",
			mutate: func(m *Manager) { _ = m.JumpTo(2) },
			want:   []string{"position"},
		},
		{
			name:   "shuffle on",
			mutate: func(m *Manager) { _ = m.SetShuffleMode(ShuffleOn) },
			want:   []string{"queue", "position", "shuffle"},
		},
		{
			name:   "repeat",
			mutate: func(m *Manager) { m.CycleRepeatMode() },
			want:   []string{"repeat"},
		},
		{
			name:   "remove before current",
			mutate: func(m *Manager) { _ = m.JumpTo(2); _ = m.RemoveAt(0) },
			want:   []string{"position", "queue", "position"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestManager(t)
			m.OpenQueue(tracks(1, 2, 3), 0, false)
			rec := &recorder{}
			m.AddObserver(rec)

			tt.mutate(m)

			assert.Equal(t, tt.want, rec.take())
		})
	}
}

func TestNotify_ObserversSeeFinalState(t *testing.T) {
	m := newTestManager(t)
	m.OpenQueue(tracks(1, 2, 3), 0, false)

	var seen []Snapshot
	for range 3 {
		m.AddObserver(&ObserverFuncs{
			QueueChanged: func(_, _ []playlist.Track) {
				// Reads from inside a callback see the committed state.
				seen = append(seen, m.Snapshot())
			},
		})
	}

	require.NoError(t, m.PlayNext(tracks(9)...))

	require.Len(t, seen, 3)
	for _, s := range seen {
		assert.Equal(t, []int64{1, 9, 2, 3}, ids(s.Playing))
		assert.Equal(t, 0, s.Position)
	}
}

func TestNotify_ObserverCanUnregisterItself(t *testing.T) {
	m := newTestManager(t)
	calls := 0
	var self *ObserverFuncs
	self = &ObserverFuncs{
		PositionChanged: func(int) {
			calls++
			m.RemoveObserver(self)
		},
	}
	m.AddObserver(self)

	m.OpenQueue(tracks(1, 2), 0, false)
	m.OpenQueue(tracks(1, 2), 1, false)

	assert.Equal(t, 1, calls)
}

func TestNotify_ConcurrentMutationsNeverTear(t *testing.T) {
	m := newTestManager(t)
	m.OpenQueue(tracks(1, 2, 3), 0, false)

	var mu sync.Mutex
	var bad []string
	m.AddObserver(&ObserverFuncs{
		QueueChanged: func(playing, original []playlist.Track) {
			if len(playing) != len(original) {
				mu.Lock()
				bad = append(bad, "length mismatch")
				mu.Unlock()
			}
		},
	})

	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range 50 {
				switch (i + j) % 4 {
				case 0:
					_ = m.Enqueue(tracks(int64(j%5 + 1))...)
				case 1:
					_ = m.RemoveAt(0)
				case 2:
					m.ToggleShuffle()
				case 3:
					_ = m.PlayNext(tracks(int64(i%5 + 1))...)
				}
				s := m.Snapshot()
				if s.Len() != len(s.Original) {
					mu.Lock()
					bad = append(bad, "snapshot mismatch")
					mu.Unlock()
				}
				if (s.Len() == 0 && s.Position != -1) || (s.Len() > 0 && (s.Position < 0 || s.Position >= s.Len())) {
					mu.Lock()
					bad = append(bad, "position out of range")
					mu.Unlock()
				}
			}
		}()
	}
	wg.Wait()

	assert.Empty(t, bad)
	s := m.Snapshot()
	assert.ElementsMatch(t, ids(s.Playing), ids(s.Original))
}
