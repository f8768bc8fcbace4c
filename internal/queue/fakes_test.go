package queue

import (
	"errors"
	"slices"
	"sync"

	"github.com/llehouerou/cadence/internal/playlist"
)

type fakeTransport struct {
	mu    sync.Mutex
	calls []playlist.Track
	err   error
}

func (f *fakeTransport) Play(t playlist.Track) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, t)
	return f.err
}

func (f *fakeTransport) played() []playlist.Track {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.calls)
}

// memStore is an in-memory SnapshotStore that records every write.
type memStore struct {
	mu       sync.Mutex
	writes   []Snapshot
	settings *Settings
	failing  bool
	block    chan struct{}

	playing  []playlist.Track
	original []playlist.Track
}

var errStoreDown = errors.New("store down")

func (s *memStore) Save(playing, original []playlist.Track) error {
	return s.SaveSnapshot(Snapshot{Playing: playing, Original: original})
}

func (s *memStore) SaveSnapshot(snap Snapshot) error {
	if s.block != nil {
		<-s.block
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failing {
		return errStoreDown
	}
	s.writes = append(s.writes, snap)
	s.playing = slices.Clone(snap.Playing)
	s.original = slices.Clone(snap.Original)
	settings := snap.Settings()
	s.settings = &settings
	return nil
}

func (s *memStore) LoadPlayingQueue() ([]playlist.Track, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failing {
		return nil, errStoreDown
	}
	return slices.Clone(s.playing), nil
}

func (s *memStore) LoadOriginalQueue() ([]playlist.Track, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failing {
		return nil, errStoreDown
	}
	return slices.Clone(s.original), nil
}

func (s *memStore) LoadSettings() (Settings, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.settings == nil {
		return Settings{}, false, nil
	}
	return *s.settings, true, nil
}

func (s *memStore) setFailing(v bool) {
	s.mu.Lock()
	s.failing = v
	s.mu.Unlock()
}

func (s *memStore) written() []Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.writes)
}

// plainStore implements only Store.
type plainStore struct {
	mu       sync.Mutex
	playing  []playlist.Track
	original []playlist.Track
	saves    int
}

func (s *plainStore) Save(playing, original []playlist.Track) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.playing = slices.Clone(playing)
	s.original = slices.Clone(original)
	s.saves++
	return nil
}

func (s *plainStore) LoadPlayingQueue() ([]playlist.Track, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.playing), nil
}

func (s *plainStore) LoadOriginalQueue() ([]playlist.Track, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.original), nil
}
