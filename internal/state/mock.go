package state

import (
	"context"
	"database/sql"
	"slices"
	"sync"

	"github.com/llehouerou/cadence/internal/playlist"
	"github.com/llehouerou/cadence/internal/queue"
)

// Mock is a test double for Manager. Every path resolves unless it was
// marked missing.
type Mock struct {
	mu        sync.Mutex
	playing   []playlist.Track
	original  []playlist.Track
	settings  *queue.Settings
	favorites []playlist.Track
	pinned    []PinnedPlaylist
	filters   map[FilterKind][]string
	missing   map[string]bool
	saves     int
	closed    bool
}

// NewMock creates a new mock state manager for testing.
func NewMock() *Mock {
	return &Mock{
		filters: make(map[FilterKind][]string),
		missing: make(map[string]bool),
	}
}

func (m *Mock) DB() *sql.DB { return nil }

func (m *Mock) Save(playing, original []playlist.Track) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.playing = slices.Clone(playing)
	m.original = slices.Clone(original)
	m.saves++
	return nil
}

func (m *Mock) SaveSnapshot(s queue.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.playing = slices.Clone(s.Playing)
	m.original = slices.Clone(s.Original)
	settings := s.Settings()
	m.settings = &settings
	m.saves++
	return nil
}

func (m *Mock) LoadPlayingQueue() ([]playlist.Track, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.live(m.playing), nil
}

func (m *Mock) LoadOriginalQueue() ([]playlist.Track, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.live(m.original), nil
}

func (m *Mock) LoadSettings() (queue.Settings, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.settings == nil {
		return queue.Settings{Position: -1}, false, nil
	}
	s := *m.settings
	for _, t := range m.playing[:min(max(s.Position, 0), len(m.playing))] {
		if m.missing[t.Path] {
			s.Position--
		}
	}
	return s, true, nil
}

func (m *Mock) ResolvePath(path string, fallback playlist.Track) (playlist.Track, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if path == "" || m.missing[path] {
		return playlist.Track{}, false
	}
	fallback.Path = path
	return fallback, true
}

func (m *Mock) IsFavorite(_ context.Context, t playlist.Track) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.favoriteIndex(t) >= 0, nil
}

func (m *Mock) ToggleFavorite(_ context.Context, t playlist.Track) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if i := m.favoriteIndex(t); i >= 0 {
		m.favorites = slices.Delete(m.favorites, i, i+1)
		return false, nil
	}
	m.favorites = append(m.favorites, t)
	return true, nil
}

func (m *Mock) Favorites(_ context.Context) ([]playlist.Track, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.live(m.favorites), nil
}

func (m *Mock) SetFavorites(_ context.Context, tracks []playlist.Track) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.favorites = slices.Clone(tracks)
	return nil
}

func (m *Mock) PinnedPlaylists(_ context.Context) ([]PinnedPlaylist, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.pinned), nil
}

func (m *Mock) SetPinnedPlaylists(_ context.Context, pinned []PinnedPlaylist) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pinned = slices.Clone(pinned)
	return nil
}

func (m *Mock) PathFilters(_ context.Context, kind FilterKind) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.filters[kind]), nil
}

func (m *Mock) SetPathFilters(_ context.Context, kind FilterKind, paths []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.filters[kind] = slices.Clone(paths)
	return nil
}

func (m *Mock) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func (m *Mock) favoriteIndex(t playlist.Track) int {
	return slices.IndexFunc(m.favorites, func(f playlist.Track) bool {
		return f.Key() == t.Key() || f.Path == t.Path
	})
}

func (m *Mock) live(tracks []playlist.Track) []playlist.Track {
	out := make([]playlist.Track, 0, len(tracks))
	for _, t := range tracks {
		if !m.missing[t.Path] {
			out = append(out, t)
		}
	}
	return out
}

// Test helpers

// SetMissing makes path unresolvable.
func (m *Mock) SetMissing(path string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.missing[path] = true
}

// Saves returns how many times a queue was saved.
func (m *Mock) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}

func (m *Mock) IsClosed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// Verify Mock implements Interface at compile time.
var _ Interface = (*Mock)(nil)
